package routes

import (
	"github.com/labstack/echo/v4"

	"asset-system/internal/controllers"
)

func runBranchRouter(g *echo.Group, ctrl *controllers.BranchController) {
	g.GET("/branches", ctrl.GetBranches)
	g.GET("/branches/:id", ctrl.FindBranch)
	g.POST("/branches", ctrl.CreateBranch)
	g.PUT("/branches/:id", ctrl.UpdateBranch)
}

func runVendorRouter(g *echo.Group, ctrl *controllers.VendorController) {
	g.GET("/vendors", ctrl.GetVendors)
	g.GET("/vendors/:id", ctrl.FindVendor)
	g.POST("/vendors", ctrl.CreateVendor)
}

func runEquipmentRouter(g *echo.Group, ctrl *controllers.EquipmentController) {
	g.GET("/equipments", ctrl.GetEquipments)
	g.GET("/equipments/:id", ctrl.FindEquipment)
	g.POST("/equipments", ctrl.CreateEquipment)
	g.PUT("/equipments/:id", ctrl.UpdateEquipment)
}
