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

type VendorController struct {
	vendorService services.VendorServiceInterface
	logger        *zap.Logger
}

func NewVendorController(vendorService services.VendorServiceInterface, logger *zap.Logger) *VendorController {
	return &VendorController{vendorService: vendorService, logger: logger}
}

func (c *VendorController) GetVendors(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())

	vendors, total, err := c.vendorService.GetVendors(ctx.Request().Context(), filter)
	if err != nil {
		c.logger.Error("failed to list vendors", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, vendors, "Vendors fetched", http.StatusOK, total)
}

func (c *VendorController) FindVendor(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	vendor, err := c.vendorService.FindVendor(ctx.Request().Context(), id)
	if err != nil {
		c.logger.Error("failed to find vendor", zap.Uint64("id", id), zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, vendor, "Vendor found", http.StatusOK)
}

func (c *VendorController) CreateVendor(ctx echo.Context) error {
	var payload dto.CreateVendorDTO
	if err := ctx.Bind(&payload); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewBadRequestError("Invalid request body"))
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err)
	}

	id, err := c.vendorService.CreateVendor(ctx.Request().Context(), payload)
	if err != nil {
		c.logger.Error("failed to create vendor", zap.Error(err))
		return utils.ErrorResponse(ctx, err)
	}
	return utils.SuccessResponse(ctx, map[string]uint64{"id": id}, "Vendor created", http.StatusCreated)
}
