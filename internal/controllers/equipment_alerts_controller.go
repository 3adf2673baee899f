package controllers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-register/internal/services"
	"equipment-register/pkg/utils"
)

type EquipmentAlertsController struct {
	alertsService services.EquipmentAlertsServiceInterface
	logger        *zap.Logger
}

func NewEquipmentAlertsController(service services.EquipmentAlertsServiceInterface, logger *zap.Logger) *EquipmentAlertsController {
	return &EquipmentAlertsController{alertsService: service, logger: logger}
}

func (c *EquipmentAlertsController) GetSummary(ctx echo.Context) error {
	summary, err := c.alertsService.GetSummary(ctx.Request().Context(), ctx.QueryParam("branchId"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, summary, "Сводка по оборудованию успешно получена", http.StatusOK)
}

func (c *EquipmentAlertsController) GetAlerts(ctx echo.Context) error {
	within, err := utils.QueryInt(ctx.QueryParams(), "withinDays")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	alerts, err := c.alertsService.GetAlerts(ctx.Request().Context(), ctx.QueryParam("branchId"), within)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, alerts, "Предупреждения по оборудованию успешно получены", http.StatusOK)
}

func (c *EquipmentAlertsController) ExportAlerts(ctx echo.Context) error {
	within, err := utils.QueryInt(ctx.QueryParams(), "withinDays")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	branchID := ctx.QueryParam("branchId")
	book, err := c.alertsService.ExportAlerts(ctx.Request().Context(), branchID, within)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	defer book.Close()

	fileName := fmt.Sprintf("equipment_alerts_%s_%s.xlsx", branchID, time.Now().Format("2006-01-02"))
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set(echo.HeaderContentDisposition, "attachment; filename="+fileName)
	ctx.Response().WriteHeader(http.StatusOK)
	return book.Write(ctx.Response().Writer)
}
