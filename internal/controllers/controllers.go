package controllers

import (
	"strconv"

	"github.com/labstack/echo/v4"

	apperrors "asset-system/pkg/errors"
)

func parseIDParam(ctx echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, apperrors.NewBadRequestError("Invalid id parameter: %s", ctx.Param("id"))
	}
	return id, nil
}
