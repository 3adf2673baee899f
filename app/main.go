package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-redis/redis/v8"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"equipment-register/internal/alerting"
	"equipment-register/internal/compliance"
	"equipment-register/internal/listeners"
	"equipment-register/internal/repositories"
	"equipment-register/internal/repositories/memory"
	"equipment-register/internal/routes"
	"equipment-register/internal/services"
	"equipment-register/migrations"
	"equipment-register/pkg/config"
	"equipment-register/pkg/customvalidator"
	"equipment-register/pkg/database/postgresql"
	apperrors "equipment-register/pkg/errors"
	"equipment-register/pkg/eventbus"
	applogger "equipment-register/pkg/logger"
	"equipment-register/pkg/middleware"
	"equipment-register/pkg/telemetry"
	"equipment-register/pkg/utils"
	"equipment-register/pkg/websocket"
)

func main() {
	cfg := config.New()
	logger := applogger.NewLogger(cfg.Log.Level, cfg.Log.File)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing := telemetry.Setup(ctx, cfg.Telemetry, logger)

	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.RecoverWithConfig(echomw.RecoverConfig{
		DisableStackAll: true,
		StackSize:       1 << 10,
		LogErrorFunc: func(c echo.Context, err error, stack []byte) error {
			logger.Error("!!! ОБНАРУЖЕНА ПАНИКА (PANIC) !!!",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Error(err),
				zap.String("stack", string(stack)),
			)
			if !c.Response().Committed {
				httpErr := apperrors.NewHttpError(http.StatusInternalServerError, "Внутренняя ошибка сервера", err, nil)
				_ = utils.ErrorResponse(c, httpErr, logger)
			}
			return err
		},
	}))

	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:  allowedOrigins(),
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowHeaders:  []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
		ExposeHeaders: []string{echo.HeaderContentDisposition},
	}))
	e.Use(echo.WrapMiddleware(func(next http.Handler) http.Handler {
		return otelhttp.NewHandler(next, cfg.Telemetry.ServiceName)
	}))
	e.Use(middleware.RequestLogger(logger))
	e.Use(middleware.InjectLogger(logger))

	v := validator.New()
	if err := customvalidator.RegisterCustomValidations(v); err != nil {
		logger.Fatal("Ошибка регистрации кастомных правил валидации", zap.Error(err))
	}
	e.Validator = utils.NewValidator(v)

	// Хранилище
	var equipmentRepo repositories.EquipmentRepositoryInterface
	switch cfg.Storage.Driver {
	case "memory":
		logger.Warn("Используется хранилище в памяти, данные не сохраняются между запусками")
		equipmentRepo = memory.NewEquipmentRepository()
	default:
		pool, err := postgresql.ConnectDB(ctx, cfg.Postgres.DSN, logger)
		if err != nil {
			logger.Fatal("не удалось подключиться к PostgreSQL", zap.Error(err))
		}
		defer pool.Close()
		if err := migrations.Up(ctx, pool); err != nil {
			logger.Fatal("ошибка применения миграций", zap.Error(err))
		}
		equipmentRepo = repositories.NewEquipmentRepository(pool, logger)
	}

	// Redis необязателен: без него сводка считается на каждый запрос.
	var cacheRepo repositories.CacheRepositoryInterface
	if cfg.Redis.Address != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		_, err := redisClient.Ping(pingCtx).Result()
		cancel()
		if err != nil {
			logger.Warn("Redis недоступен, кэш сводки отключен", zap.Error(err), zap.String("address", cfg.Redis.Address))
			_ = redisClient.Close()
		} else {
			defer redisClient.Close()
			cacheRepo = repositories.NewRedisCacheRepository(redisClient)
		}
	}

	bus := eventbus.New(logger)
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	notifier := services.NewWebSocketNotificationService(hub, logger)
	listeners.NewEquipmentListener(notifier, logger).Register(bus)

	policy := cfg.Policy
	gate := compliance.NewGate(compliance.Policy{
		Mode:                       compliance.Mode(strings.ToUpper(policy.Compliance.Mode)),
		RequireAerbForRadiology:    policy.Compliance.RequireAerbForRadiology,
		RequireValidAerb:           policy.Compliance.RequireValidAerb,
		RequirePcpndtForUltrasound: policy.Compliance.RequirePcpndtForUltrasound,
		RequireValidPcpndt:         policy.Compliance.RequireValidPcpndt,
	})
	projector := alerting.NewProjector(alerting.Policy{
		Tiers: alerting.Tiers{
			HighWithinDays:     policy.Alerts.HighWithinDays,
			ElevatedWithinDays: policy.Alerts.ElevatedWithinDays,
		},
		SummaryWindowDays: policy.Alerts.SummaryWindowDays,
		DefaultWithinDays: policy.Alerts.DefaultWithinDays,
		MaxWithinDays:     policy.Alerts.MaxWithinDays,
		ListLimit:         policy.Alerts.ListLimit,
	})

	routes.InitRouter(e, routes.Dependencies{
		EquipmentRepo:   equipmentRepo,
		Cache:           cacheRepo,
		Bus:             bus,
		Hub:             hub,
		Gate:            gate,
		Projector:       projector,
		SummaryCacheTTL: cfg.Storage.SummaryCacheTTL,
		RateLimitRPS:    cfg.Server.RateLimitRPS,
	}, logger)

	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("🚀 Сервер запущен", zap.String("addr", addr), zap.String("storage", cfg.Storage.Driver))
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Ошибка запуска сервера", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Получен сигнал остановки, завершаем работу")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки HTTP-сервера", zap.Error(err))
	}
	bus.Wait()
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("Ошибка остановки трассировки", zap.Error(err))
	}
}

// allowedOrigins читает CORS_ORIGINS через запятую. По умолчанию - dev-сервер фронта.
func allowedOrigins() []string {
	raw := os.Getenv("CORS_ORIGINS")
	if raw == "" {
		return []string{"http://localhost:5173"}
	}
	var out []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
