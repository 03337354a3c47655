package bootstrap

import (
	"context"
	"log"

	"medassist-be/internal/config"
	"medassist-be/internal/controller"
	"medassist-be/internal/pkg/logger"
	"medassist-be/internal/pkg/serverutils"
	"medassist-be/internal/repository/unitofwork"
	"medassist-be/internal/service"
	"medassist-be/internal/websocket"
	"medassist-be/pkg/genai"
	pktNats "medassist-be/pkg/nats"
	"medassist-be/pkg/report"
	"medassist-be/pkg/storage"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController        controller.IAuthController
	UserController        controller.IUserController
	ExaminationController controller.IExaminationController
	ChatController        controller.IChatController
	DashboardController   controller.IDashboardController
	ReportController      controller.IReportController
	WsController          controller.IWsController

	// Background services (run by main.go)
	ConsumerService   service.IConsumerService
	ReconcilerService service.IReconcilerService

	WebSocketHub *websocket.Hub
	RateLimiter  *serverutils.RateLimiter
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	serverutils.InitJWT(cfg.Auth.JwtSecret)

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. AI collaborator
	aiProvider, err := genai.NewProvider(
		cfg.Ai.Provider,
		cfg.Ai.GeminiAPIKey,
		cfg.Ai.GeminiModel,
		cfg.Ai.OpenAIAPIKey,
		cfg.Ai.OpenAIModel,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize AI provider: %v", err)
	}
	log.Printf("[INFO] Using AI provider: %s (%s)", cfg.Ai.Provider, aiProvider.ModelName())

	// 4. Infrastructure
	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS publisher: %v", err)
		}
	}

	var rdb *redis.Client
	if cfg.App.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.App.RedisURL)
		if err != nil {
			log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
			opt = &redis.Options{Addr: cfg.App.RedisURL}
		}
		rdb = redis.NewClient(opt)
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			log.Printf("[WARN] Failed to connect to Redis: %v", err)
		}
	}

	store := storage.NewLocalStore(cfg.Upload.Dir, cfg.Upload.MaxSizeBytes)

	renderer, err := report.NewRenderer()
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize report renderer: %v", err)
	}

	// WebSocket hub
	wsLogger := logger.NewIsolatedLogger("logs/websocket.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 5. Services
	publisherService := service.NewPublisherService(cfg.App.EnrichTopic, pubSub)

	enrichmentService := service.NewEnrichmentService(
		uowFactory,
		aiProvider,
		store,
		wsHub,
		natsPub,
		sysLogger,
		cfg.Ai.RequestTimeout,
	)

	consumerService := service.NewConsumerService(
		pubSub,
		cfg.App.EnrichTopic,
		enrichmentService,
		sysLogger,
	)

	reconcilerService := service.NewReconcilerService(
		uowFactory,
		wsHub,
		sysLogger,
		cfg.Ai.StuckThreshold,
		cfg.Ai.SweepInterval,
	)

	authService := service.NewAuthService(uowFactory, cfg.Auth.TokenExpiry, natsPub)
	userService := service.NewUserService(uowFactory)
	examinationService := service.NewExaminationService(
		uowFactory,
		store,
		enrichmentService,
		publisherService,
		natsPub,
		sysLogger,
	)
	chatService := service.NewChatService(uowFactory, aiProvider, sysLogger, cfg.Ai.RequestTimeout)
	dashboardService := service.NewDashboardService(uowFactory)
	reportService := service.NewReportService(uowFactory, store, renderer, natsPub, sysLogger, cfg.App.BaseURL)

	// 6. Controllers
	return &Container{
		AuthController:        controller.NewAuthController(authService),
		UserController:        controller.NewUserController(userService),
		ExaminationController: controller.NewExaminationController(examinationService),
		ChatController:        controller.NewChatController(chatService),
		DashboardController:   controller.NewDashboardController(dashboardService),
		ReportController:      controller.NewReportController(reportService),
		WsController:          controller.NewWsController(wsHub, wsLogger),

		ConsumerService:   consumerService,
		ReconcilerService: reconcilerService,

		WebSocketHub: wsHub,
		RateLimiter:  serverutils.NewRateLimiter(cfg.Limits.Requests, cfg.Limits.Window),
	}
}
