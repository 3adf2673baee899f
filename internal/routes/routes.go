package routes

import (
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-register/internal/alerting"
	"equipment-register/internal/compliance"
	"equipment-register/internal/controllers"
	"equipment-register/internal/repositories"
	"equipment-register/internal/services"
	"equipment-register/pkg/eventbus"
	"equipment-register/pkg/middleware"
	"equipment-register/pkg/websocket"
)

// Dependencies - собранная в main инфраструктура. Cache, Bus и Hub необязательны.
type Dependencies struct {
	EquipmentRepo   repositories.EquipmentRepositoryInterface
	Cache           repositories.CacheRepositoryInterface
	Bus             *eventbus.Bus
	Hub             *websocket.Hub
	Gate            *compliance.Gate
	Projector       *alerting.Projector
	SummaryCacheTTL time.Duration
	RateLimitRPS    float64
	Now             func() time.Time
}

func InitRouter(e *echo.Echo, deps Dependencies, logger *zap.Logger) {
	logger.Info("InitRouter: Начало создания маршрутов")

	api := e.Group("/api/infra")
	mutating := middleware.RateLimiter(deps.RateLimitRPS)

	// --- СЕРВИСЫ ---
	base := services.NewBaseService(deps.Cache, deps.Bus, logger, deps.Now)
	equipmentService := services.NewEquipmentService(base, deps.EquipmentRepo, deps.Gate)
	downtimeService := services.NewDowntimeService(base, deps.EquipmentRepo)
	alertsService := services.NewEquipmentAlertsService(base, deps.EquipmentRepo, deps.Projector, deps.SummaryCacheTTL)

	// --- КОНТРОЛЛЕРЫ ---
	equipmentCtrl := controllers.NewEquipmentController(equipmentService, logger)
	downtimeCtrl := controllers.NewDowntimeController(downtimeService, logger)
	alertsCtrl := controllers.NewEquipmentAlertsController(alertsService, logger)

	// --- РОУТЕРЫ ---
	runEquipmentRouter(api, equipmentCtrl, downtimeCtrl, mutating)
	runEquipmentAlertsRouter(api, alertsCtrl)
	if deps.Hub != nil {
		runWebSocketRouter(api, controllers.NewWebSocketController(deps.Hub, logger))
	}

	logger.Info("INIT_ROUTER: Создание маршрутов завершено")
}
