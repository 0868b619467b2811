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

type MaintenanceRequestController struct {
	requestService services.MaintenanceRequestServiceInterface
	logger         *zap.Logger
}

func NewMaintenanceRequestController(requestService services.MaintenanceRequestServiceInterface, logger *zap.Logger) *MaintenanceRequestController {
	return &MaintenanceRequestController{requestService: requestService, logger: logger}
}

func (c *MaintenanceRequestController) GetRequests(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	requests, total, err := c.requestService.GetRequests(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("failed to list maintenance requests", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, requests, "Maintenance requests fetched", http.StatusOK, total)
}

func (c *MaintenanceRequestController) FindRequest(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	request, err := c.requestService.FindRequest(ctx.Request().Context(), id)
	if err != nil {
		c.logger.Error("failed to find maintenance request", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, request, "Maintenance request found", http.StatusOK)
}

func (c *MaintenanceRequestController) CreateRequest(ctx echo.Context) error {
	var payload dto.CreateMaintenanceRequestDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Invalid request body"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	id, err := c.requestService.CreateRequest(ctx.Request().Context(), payload)
	if err != nil {
		c.logger.Error("failed to create maintenance request", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, map[string]uint64{"id": id}, "Maintenance request created", http.StatusCreated)
}

func (c *MaintenanceRequestController) ConfirmRequest(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	if err := c.requestService.ConfirmRequest(ctx.Request().Context(), id); err != nil {
		c.logger.Error("failed to confirm maintenance request", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Maintenance request confirmed", http.StatusOK)
}

func (c *MaintenanceRequestController) CancelRequest(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	if err := c.requestService.CancelRequest(ctx.Request().Context(), id); err != nil {
		c.logger.Warn("failed to cancel maintenance request", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Maintenance request cancelled", http.StatusOK)
}

// TriggerScheduledMaintenance is the callback the deferred-job trigger posts
// to when a registered job fires.
func (c *MaintenanceRequestController) TriggerScheduledMaintenance(ctx echo.Context) error {
	var payload dto.MaintenanceTriggerDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Invalid request body"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	if err := c.requestService.TriggerScheduledMaintenance(ctx.Request().Context(), payload); err != nil {
		c.logger.Error("failed to run scheduled maintenance trigger",
			zap.Uint64("requestId", payload.RequestID), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Scheduled maintenance started", http.StatusOK)
}
