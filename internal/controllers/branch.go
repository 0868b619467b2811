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

type BranchController struct {
	branchService services.BranchServiceInterface
	logger        *zap.Logger
}

func NewBranchController(branchService services.BranchServiceInterface, logger *zap.Logger) *BranchController {
	return &BranchController{branchService: branchService, logger: logger}
}

func (c *BranchController) GetBranches(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	branches, total, err := c.branchService.GetBranches(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("failed to list branches", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, branches, "Branches fetched", http.StatusOK, total)
}

func (c *BranchController) FindBranch(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	branch, err := c.branchService.FindBranch(ctx.Request().Context(), id)
	if err != nil {
		c.logger.Error("failed to find branch", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, branch, "Branch found", http.StatusOK)
}

func (c *BranchController) CreateBranch(ctx echo.Context) error {
	var payload dto.CreateBranchDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Invalid request body"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	id, err := c.branchService.CreateBranch(ctx.Request().Context(), payload)
	if err != nil {
		c.logger.Error("failed to create branch", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, map[string]uint64{"id": id}, "Branch created", http.StatusCreated)
}

func (c *BranchController) UpdateBranch(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	var payload dto.UpdateBranchDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Invalid request body"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	if err := c.branchService.UpdateBranch(ctx.Request().Context(), id, payload); err != nil {
		c.logger.Error("failed to update branch", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Branch updated", http.StatusOK)
}
