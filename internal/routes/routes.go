package routes

import (
	"context"

	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"invoice-system/internal/controllers"
	"invoice-system/internal/listeners"
	"invoice-system/internal/repositories"
	"invoice-system/internal/services"
	"invoice-system/pkg/config"
	"invoice-system/pkg/eventbus"
	"invoice-system/pkg/middleware"
	"invoice-system/pkg/service"
	"invoice-system/pkg/validation"
	"invoice-system/pkg/websocket"
)

// Dependencies are the long-lived clients main owns and closes.
type Dependencies struct {
	DB        *pgxpool.Pool
	Redis     *redis.Client
	JWT       service.JWTService
	Bus       *eventbus.Bus
	Hub       *websocket.Hub
	Validator *validation.CustomValidator
	Config    *config.Config
	Logger    *zap.Logger
}

func InitRouter(e *echo.Echo, deps Dependencies) {
	logger := deps.Logger
	cfg := deps.Config
	logger.Info("InitRouter: building routes")

	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(deps.JWT, logger)

	// --- repositories ---
	txManager := repositories.NewTxManager(deps.DB)
	invoiceRepo := repositories.NewInvoiceRepository(deps.DB)
	logRepo := repositories.NewStatusLogRepository(deps.DB)
	auditRepo := repositories.NewAuditRepository(deps.DB)
	userRepo := repositories.NewUserRepository(deps.DB)
	cacheRepo := repositories.NewRedisCacheRepository(deps.Redis)

	// --- invalidation ---
	listeners.NewInvalidationListener(deps.Hub, logger).Register(deps.Bus)
	invalidator := services.NewEventBusInvalidator(deps.Bus, cacheRepo, logger)

	// --- services ---
	identity := services.NewContextIdentityProvider()
	transitions := services.NewStatusTransitionService(txManager, invoiceRepo, logRepo, deps.Validator, cfg.Audit, deps.Bus, logger)
	invoiceService := services.NewInvoiceService(invoiceRepo, logRepo, cacheRepo, transitions, invalidator, deps.Validator, cfg.Redis, logger)
	editWorkflow := services.NewInvoiceEditWorkflow(transitions, invalidator, deps.Validator, logger)
	restoreWorkflow := services.NewRestoreWorkflow(transitions, invalidator, logger)
	authService := services.NewAuthService(userRepo, deps.JWT, deps.Validator, logger)
	auditService := services.NewAuditCheckService(auditRepo, logger)

	// --- controllers ---
	timeout := cfg.Server.RequestTimeout
	invoiceCtrl := controllers.NewInvoiceController(invoiceService, editWorkflow, restoreWorkflow, identity, timeout, logger)
	authCtrl := controllers.NewAuthController(authService, logger)
	auditCtrl := controllers.NewAuditController(auditService, timeout, logger)
	wsCtrl := controllers.NewWebSocketController(deps.Hub, cfg.Server.CORSOrigins, logger)
	healthCtrl := controllers.NewHealthController(map[string]controllers.HealthCheck{
		"postgres": deps.DB.Ping,
		"redis": func(ctx context.Context) error {
			return deps.Redis.Ping(ctx).Err()
		},
	}, timeout, logger)

	// --- routers ---
	api.GET("/health", healthCtrl.Health)
	api.GET("/ws", wsCtrl.ServeWs, authMW.QueryAuth)
	runAuthRouter(api, authCtrl)

	secureGroup := api.Group("", authMW.Auth)
	runInvoiceRouter(secureGroup, invoiceCtrl)
	runAuditRouter(secureGroup, auditCtrl)

	logger.Info("InitRouter: routes ready")
}
