package controllers

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"asset-system/internal/dto"
	"asset-system/internal/services"
	apperrors "asset-system/pkg/errors"
	"asset-system/pkg/utils"
)

type MaintenancePlanController struct {
	planService services.MaintenancePlanServiceInterface
	logger      *zap.Logger
}

func NewMaintenancePlanController(planService services.MaintenancePlanServiceInterface, logger *zap.Logger) *MaintenancePlanController {
	return &MaintenancePlanController{planService: planService, logger: logger}
}

func (c *MaintenancePlanController) GetPlans(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	plans, total, err := c.planService.GetPlans(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("failed to list maintenance plans", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, plans, "Maintenance plans fetched", http.StatusOK, total)
}

func (c *MaintenancePlanController) CreatePlan(ctx echo.Context) error {
	var payload dto.CreateMaintenancePlanDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Invalid request body"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	id, err := c.planService.CreatePlan(ctx.Request().Context(), payload)
	if err != nil {
		c.logger.Error("failed to create maintenance plan", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, map[string]uint64{"id": id}, "Maintenance plan created", http.StatusCreated)
}

func (c *MaintenancePlanController) UpdatePlan(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	var payload dto.UpdateMaintenancePlanDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Invalid request body"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	if err := c.planService.UpdatePlan(ctx.Request().Context(), id, payload); err != nil {
		c.logger.Error("failed to update maintenance plan", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Maintenance plan updated", http.StatusOK)
}

// RunDueReminders is hit by an external cron to fan out reminders for overdue
// plans.
func (c *MaintenancePlanController) RunDueReminders(ctx echo.Context) error {
	reminded, err := c.planService.RunDueReminders(ctx.Request().Context(), time.Now())
	if err != nil {
		c.logger.Error("failed to run maintenance plan reminders", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, map[string]int{"reminded": reminded}, "Maintenance plan reminders sent", http.StatusOK)
}
