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

type DisposalController struct {
	disposalService services.DisposalServiceInterface
	logger          *zap.Logger
}

func NewDisposalController(disposalService services.DisposalServiceInterface, logger *zap.Logger) *DisposalController {
	return &DisposalController{disposalService: disposalService, logger: logger}
}

func (c *DisposalController) GetDisposals(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	disposals, total, err := c.disposalService.GetDisposals(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("failed to list disposals", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, disposals, "Disposals fetched", http.StatusOK, total)
}

func (c *DisposalController) FindDisposal(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	disposal, err := c.disposalService.FindDisposal(ctx.Request().Context(), id)
	if err != nil {
		c.logger.Error("failed to find disposal", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, disposal, "Disposal found", http.StatusOK)
}

func (c *DisposalController) CreateDisposal(ctx echo.Context) error {
	var payload dto.CreateDisposalDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Invalid request body"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	id, err := c.disposalService.CreateDisposal(ctx.Request().Context(), payload)
	if err != nil {
		c.logger.Error("failed to create disposal", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, map[string]uint64{"id": id}, "Disposal created", http.StatusCreated)
}
