package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"asset-system/internal/dto"
	"asset-system/internal/services"
	apperrors "asset-system/pkg/errors"
	"asset-system/pkg/utils"
)

type MaintenanceController struct {
	maintenanceService services.MaintenanceServiceInterface
	logger             *zap.Logger
}

func NewMaintenanceController(maintenanceService services.MaintenanceServiceInterface, logger *zap.Logger) *MaintenanceController {
	return &MaintenanceController{maintenanceService: maintenanceService, logger: logger}
}

func (c *MaintenanceController) GetMaintenances(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	maintenances, total, err := c.maintenanceService.GetMaintenances(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("failed to list maintenances", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, maintenances, "Maintenances fetched", http.StatusOK, total)
}

func (c *MaintenanceController) FindMaintenance(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	maintenance, err := c.maintenanceService.FindMaintenance(ctx.Request().Context(), id)
	if err != nil {
		c.logger.Error("failed to find maintenance", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, maintenance, "Maintenance found", http.StatusOK)
}

func (c *MaintenanceController) CreateMaintenance(ctx echo.Context) error {
	var payload dto.CreateMaintenanceDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Invalid request body"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	id, err := c.maintenanceService.CreateMaintenance(ctx.Request().Context(), payload)
	if err != nil {
		c.logger.Error("failed to create maintenance", zap.Uint64("unitId", payload.UnitID), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, map[string]uint64{"id": id}, "Maintenance created", http.StatusCreated)
}

func (c *MaintenanceController) ProgressMaintenance(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	var payload dto.ProgressMaintenanceDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Invalid request body"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	if err := c.maintenanceService.ProgressMaintenance(ctx.Request().Context(), id, payload); err != nil {
		c.logger.Error("failed to progress maintenance", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Maintenance in progress", http.StatusOK)
}

func (c *MaintenanceController) CompleteMaintenance(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	var payload dto.CompleteMaintenanceDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Invalid request body"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	if err := c.maintenanceService.CompleteMaintenance(ctx.Request().Context(), id, payload); err != nil {
		c.logger.Error("failed to complete maintenance", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Maintenance completed", http.StatusOK)
}
