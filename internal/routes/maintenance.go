package routes

import (
	"github.com/labstack/echo/v4"

	"asset-system/internal/controllers"
)

func runMaintenanceRouter(g *echo.Group, ctrl *controllers.MaintenanceController) {
	g.GET("/maintenances", ctrl.GetMaintenances)
	g.GET("/maintenances/:id", ctrl.FindMaintenance)
	g.POST("/maintenances", ctrl.CreateMaintenance)
	g.POST("/maintenances/:id/progress", ctrl.ProgressMaintenance)
	g.POST("/maintenances/:id/complete", ctrl.CompleteMaintenance)
}

func runMaintenanceRequestRouter(g *echo.Group, ctrl *controllers.MaintenanceRequestController) {
	g.GET("/maintenance-requests", ctrl.GetRequests)
	g.GET("/maintenance-requests/:id", ctrl.FindRequest)
	g.POST("/maintenance-requests", ctrl.CreateRequest)
	g.POST("/maintenance-requests/:id/confirm", ctrl.ConfirmRequest)
	g.POST("/maintenance-requests/:id/cancel", ctrl.CancelRequest)
}

func runMaintenancePlanRouter(g *echo.Group, ctrl *controllers.MaintenancePlanController) {
	g.GET("/maintenance-plans", ctrl.GetPlans)
	g.POST("/maintenance-plans", ctrl.CreatePlan)
	g.PUT("/maintenance-plans/:id", ctrl.UpdatePlan)
}
