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

type UnitController struct {
	unitService services.UnitServiceInterface
	logger      *zap.Logger
}

func NewUnitController(unitService services.UnitServiceInterface, logger *zap.Logger) *UnitController {
	return &UnitController{unitService: unitService, logger: logger}
}

func (c *UnitController) GetUnits(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	units, total, err := c.unitService.GetUnits(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("failed to list equipment units", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, units, "Equipment units fetched", http.StatusOK, total)
}

func (c *UnitController) FindUnit(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	unit, err := c.unitService.FindUnit(ctx.Request().Context(), id)
	if err != nil {
		c.logger.Error("failed to find equipment unit", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, unit, "Equipment unit found", http.StatusOK)
}

func (c *UnitController) CreateUnit(ctx echo.Context) error {
	var payload dto.CreateUnitDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Invalid request body"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	id, err := c.unitService.CreateUnit(ctx.Request().Context(), payload)
	if err != nil {
		c.logger.Error("failed to create equipment unit", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, map[string]uint64{"id": id}, "Equipment unit created", http.StatusCreated)
}

func (c *UnitController) UpdateUnit(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	var payload dto.UpdateUnitDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Invalid request body"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	if err := c.unitService.UpdateUnit(ctx.Request().Context(), id, payload); err != nil {
		c.logger.Error("failed to update equipment unit", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Equipment unit updated", http.StatusOK)
}

func (c *UnitController) DeleteUnit(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	if err := c.unitService.DeleteUnit(ctx.Request().Context(), id); err != nil {
		c.logger.Error("failed to delete equipment unit", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Equipment unit deleted", http.StatusOK)
}

func (c *UnitController) ActivateUnit(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	if err := c.unitService.ActivateUnit(ctx.Request().Context(), id); err != nil {
		c.logger.Warn("failed to activate equipment unit", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Equipment unit activated", http.StatusOK)
}

func (c *UnitController) StockUnit(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	if err := c.unitService.StockUnit(ctx.Request().Context(), id); err != nil {
		c.logger.Warn("failed to stock equipment unit", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Equipment unit moved to stock", http.StatusOK)
}
