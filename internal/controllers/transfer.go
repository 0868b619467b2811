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

type TransferController struct {
	transferService services.TransferServiceInterface
	logger          *zap.Logger
}

func NewTransferController(transferService services.TransferServiceInterface, logger *zap.Logger) *TransferController {
	return &TransferController{transferService: transferService, logger: logger}
}

func (c *TransferController) GetTransfers(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	transfers, total, err := c.transferService.GetTransfers(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("failed to list transfers", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, transfers, "Transfers fetched", http.StatusOK, total)
}

func (c *TransferController) FindTransfer(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	transfer, err := c.transferService.FindTransfer(ctx.Request().Context(), id)
	if err != nil {
		c.logger.Error("failed to find transfer", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, transfer, "Transfer found", http.StatusOK)
}

func (c *TransferController) CreateTransfer(ctx echo.Context) error {
	var payload dto.CreateTransferDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Invalid request body"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	transfer, err := c.transferService.CreateTransfer(ctx.Request().Context(), payload)
	if err != nil {
		c.logger.Error("failed to create transfer", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, transfer, "Transfer created", http.StatusCreated)
}

func (c *TransferController) CompleteTransfer(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	var payload dto.CompleteTransferDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Invalid request body"))
	}

	if err := c.transferService.CompleteTransfer(ctx.Request().Context(), id, payload); err != nil {
		c.logger.Error("failed to complete transfer", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Transfer completed", http.StatusOK)
}

func (c *TransferController) CancelTransfer(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	if err := c.transferService.CancelTransfer(ctx.Request().Context(), id); err != nil {
		c.logger.Warn("failed to request transfer cancellation", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Transfer cancellation requested", http.StatusOK)
}

func (c *TransferController) ConfirmCancelTransfer(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	if err := c.transferService.ConfirmCancelTransfer(ctx.Request().Context(), id); err != nil {
		c.logger.Warn("failed to confirm transfer cancellation", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Transfer cancelled", http.StatusOK)
}

func (c *TransferController) GetTransferHistories(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	histories, total, err := c.transferService.GetTransferHistories(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("failed to list transfer history", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, histories, "Transfer history fetched", http.StatusOK, total)
}

// ExportTransferHistory streams the audit trail as an XLSX attachment.
func (c *TransferController) ExportTransferHistory(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	file, err := c.transferService.ExportTransferHistory(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("failed to export transfer history", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}

	ctx.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="transfer-history.xlsx"`)
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().WriteHeader(http.StatusOK)

	if err := file.Write(ctx.Response().Writer); err != nil {
		c.logger.Error("failed to stream transfer history export", zap.Error(err))
		return err
	}
	return nil
}
