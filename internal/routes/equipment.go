package routes

import (
	"github.com/labstack/echo/v4"

	"equipment-register/internal/controllers"
)

func runEquipmentRouter(g *echo.Group, equipmentCtrl *controllers.EquipmentController, downtimeCtrl *controllers.DowntimeController, mutating echo.MiddlewareFunc) {
	g.GET("/equipment", equipmentCtrl.ListAssets)
	g.GET("/equipment/:id", equipmentCtrl.GetAsset)
	g.GET("/equipment/:id/downtime", equipmentCtrl.ListDowntime)

	g.POST("/equipment", equipmentCtrl.RegisterAsset, mutating)
	g.PATCH("/equipment/:id", equipmentCtrl.UpdateAsset, mutating)
	g.POST("/equipment/:id/retire", equipmentCtrl.RetireAsset, mutating)

	// В echo статический сегмент приоритетнее параметра :id.
	g.POST("/equipment/downtime", downtimeCtrl.OpenDowntime, mutating)
	g.POST("/equipment/downtime/close", downtimeCtrl.CloseDowntime, mutating)
}

func runEquipmentAlertsRouter(g *echo.Group, alertsCtrl *controllers.EquipmentAlertsController) {
	g.GET("/equipment-summary", alertsCtrl.GetSummary)
	g.GET("/equipment-alerts", alertsCtrl.GetAlerts)
	g.GET("/equipment-alerts/export", alertsCtrl.ExportAlerts)
}

func runWebSocketRouter(g *echo.Group, wsCtrl *controllers.WebSocketController) {
	g.GET("/ws", wsCtrl.ServeWs)
}
