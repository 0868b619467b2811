package routes

import (
	"github.com/labstack/echo/v4"

	"asset-system/internal/controllers"
)

func runUnitRouter(g *echo.Group, ctrl *controllers.UnitController) {
	g.GET("/units", ctrl.GetUnits)
	g.GET("/units/:id", ctrl.FindUnit)
	g.POST("/units", ctrl.CreateUnit)
	g.PUT("/units/:id", ctrl.UpdateUnit)
	g.DELETE("/units/:id", ctrl.DeleteUnit)
	g.POST("/units/:id/activate", ctrl.ActivateUnit)
	g.POST("/units/:id/stock", ctrl.StockUnit)
}
