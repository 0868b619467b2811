package routes

import (
	"github.com/labstack/echo/v4"

	"asset-system/internal/controllers"
)

func runTransferRouter(g *echo.Group, ctrl *controllers.TransferController) {
	g.GET("/transfers", ctrl.GetTransfers)
	g.GET("/transfers/:id", ctrl.FindTransfer)
	g.POST("/transfers", ctrl.CreateTransfer)
	g.POST("/transfers/:id/complete", ctrl.CompleteTransfer)
	g.POST("/transfers/:id/cancel", ctrl.CancelTransfer)
	g.POST("/transfers/:id/confirm-cancel", ctrl.ConfirmCancelTransfer)
	g.GET("/transfer-histories", ctrl.GetTransferHistories)
	g.GET("/transfer-histories/export", ctrl.ExportTransferHistory)
}
