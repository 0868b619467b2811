package routes

import (
	"github.com/go-redis/redis/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"asset-system/internal/controllers"
	"asset-system/internal/repositories"
	"asset-system/internal/services"
	"asset-system/pkg/config"
	"asset-system/pkg/middleware"
	"asset-system/pkg/scheduler"
	"asset-system/pkg/service"
)

// InitRouter builds the full dependency graph and mounts every route.
// /api/auth and /api/scheduler stay public (the trigger service and the cron
// authenticate out of band); everything else sits behind the JWT middleware.
func InitRouter(e *echo.Echo, dbConn *pgxpool.Pool, redisClient *redis.Client, jwtSvc service.JWTService, logger *zap.Logger, cfg *config.Config) {
	api := e.Group("/api")
	authMW := middleware.NewAuthMiddleware(jwtSvc, logger)
	txManager := repositories.NewTxManager(dbConn)
	schedulerClient := scheduler.NewService(cfg.Scheduler.BaseURL, cfg.Scheduler.APIKey, cfg.Scheduler.CallbackURL)

	userRepo := repositories.NewUserRepository(dbConn)
	branchRepo := repositories.NewBranchRepository(dbConn)
	vendorRepo := repositories.NewVendorRepository(dbConn)
	equipmentRepo := repositories.NewEquipmentRepository(dbConn)
	unitRepo := repositories.NewUnitRepository(dbConn, logger)
	transferRepo := repositories.NewTransferRepository(dbConn, logger)
	historyRepo := repositories.NewTransferHistoryRepository(dbConn)
	maintenanceRepo := repositories.NewMaintenanceRepository(dbConn, logger)
	requestRepo := repositories.NewMaintenanceRequestRepository(dbConn, logger)
	planRepo := repositories.NewMaintenancePlanRepository(dbConn)
	disposalRepo := repositories.NewDisposalRepository(dbConn)
	cacheRepo := repositories.NewRedisCacheRepository(redisClient)

	aggregator := services.NewAggregator(unitRepo, equipmentRepo, branchRepo, userRepo, cacheRepo, logger)
	notifier := services.NewNotificationService(userRepo, logger)

	authService := services.NewAuthService(userRepo, jwtSvc, logger)
	branchService := services.NewBranchService(branchRepo, logger)
	vendorService := services.NewVendorService(vendorRepo, logger)
	equipmentService := services.NewEquipmentService(equipmentRepo, vendorRepo, logger)
	unitService := services.NewUnitService(unitRepo, aggregator, logger)
	transferService := services.NewTransferService(txManager, transferRepo, historyRepo, unitRepo, aggregator, notifier, logger)
	maintenanceService := services.NewMaintenanceService(txManager, maintenanceRepo, unitRepo, aggregator, notifier, logger)
	requestService := services.NewMaintenanceRequestService(
		txManager, requestRepo, maintenanceRepo, unitRepo, aggregator, notifier,
		schedulerClient, cfg.Scheduler.Timezone, logger,
	)
	planService := services.NewMaintenancePlanService(planRepo, equipmentRepo, notifier, logger)
	disposalService := services.NewDisposalService(txManager, disposalRepo, unitRepo, aggregator, notifier, logger)

	authCtrl := controllers.NewAuthController(authService, logger)
	branchCtrl := controllers.NewBranchController(branchService, logger)
	vendorCtrl := controllers.NewVendorController(vendorService, logger)
	equipmentCtrl := controllers.NewEquipmentController(equipmentService, logger)
	unitCtrl := controllers.NewUnitController(unitService, logger)
	transferCtrl := controllers.NewTransferController(transferService, logger)
	maintenanceCtrl := controllers.NewMaintenanceController(maintenanceService, logger)
	requestCtrl := controllers.NewMaintenanceRequestController(requestService, logger)
	planCtrl := controllers.NewMaintenancePlanController(planService, logger)
	disposalCtrl := controllers.NewDisposalController(disposalService, logger)

	secureGroup := api.Group("", authMW.Auth)

	runAuthRouter(api, authCtrl)
	runSchedulerRouter(api, requestCtrl, planCtrl)
	runBranchRouter(secureGroup, branchCtrl)
	runVendorRouter(secureGroup, vendorCtrl)
	runEquipmentRouter(secureGroup, equipmentCtrl)
	runUnitRouter(secureGroup, unitCtrl)
	runTransferRouter(secureGroup, transferCtrl)
	runMaintenanceRouter(secureGroup, maintenanceCtrl)
	runMaintenanceRequestRouter(secureGroup, requestCtrl)
	runMaintenancePlanRouter(secureGroup, planCtrl)
	runDisposalRouter(secureGroup, disposalCtrl)

	logger.Info("router initialized")
}

func runAuthRouter(g *echo.Group, ctrl *controllers.AuthController) {
	g.POST("/auth/login", ctrl.Login)
}

// runSchedulerRouter mounts the callback endpoints hit by the external
// trigger service and the reminder cron.
func runSchedulerRouter(g *echo.Group, requestCtrl *controllers.MaintenanceRequestController, planCtrl *controllers.MaintenancePlanController) {
	g.POST("/scheduler/maintenance", requestCtrl.TriggerScheduledMaintenance)
	g.POST("/scheduler/plan-reminders", planCtrl.RunDueReminders)
}
