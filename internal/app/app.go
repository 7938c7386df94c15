package app

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"artlink_backend/database"
	"artlink_backend/internal/config"
	"artlink_backend/internal/handlers"
	"artlink_backend/internal/logger"
	"artlink_backend/internal/push"
	"artlink_backend/internal/realtime/bus"
	"artlink_backend/internal/repositories"
	repoChat "artlink_backend/internal/repositories/chat"
	"artlink_backend/internal/routes"
	"artlink_backend/internal/services"
	svcChat "artlink_backend/internal/services/chat"
	"artlink_backend/internal/validator"
	"artlink_backend/internal/workers"
	"artlink_backend/ws"
)

// Run starts the service: configuration, database, event bus, workers,
// connection manager, HTTP surface.
func Run() {
	config.LoadConfig()
	cfg := config.AppConfig

	logger.Init(cfg.Server.Env)
	logger.Info("logger initialized", "env", cfg.Server.Env)

	gormDB, err := gorm.Open(postgres.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		logger.Fatal("failed to connect to database", "error", err)
	}
	if err := database.Migrate(gormDB); err != nil {
		logger.Fatal("failed to run migrations", "error", err)
	}
	logger.Info("database connected")

	ctx := context.Background()
	ginRouter := SetupRouter(ctx, cfg, gormDB)

	address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("server starting", "address", address)
	if err := ginRouter.Run(address); err != nil {
		logger.Fatal("server startup error", "error", err)
	}
}

// SetupRouter builds the full dependency graph and returns the router.
// Construction order matters: bus first, then the connection manager, then
// services that need presence, then the socket handler that needs services.
func SetupRouter(ctx context.Context, cfg *config.Config, gormDB *gorm.DB) *gin.Engine {
	// Repositories.
	notificationRepo := repositories.NewNotificationRepository(gormDB)
	deviceRepo := repositories.NewDeviceRepository(gormDB)
	socialRepo := repositories.NewSocialRepository(gormDB)
	conversationRepo := repoChat.NewConversationRepository(gormDB)
	participantRepo := repoChat.NewParticipantRepository(gormDB)
	messageRepo := repoChat.NewMessageRepository(gormDB)
	receiptRepo := repoChat.NewReceiptRepository(gormDB)
	reactionRepo := repoChat.NewReactionRepository(gormDB)
	typingRepo := repoChat.NewTypingRepository(gormDB)

	// Event bus: redis when configured, in-process otherwise.
	var eventBus bus.Bus
	if cfg.Redis.Addr != "" {
		var err error
		eventBus, err = bus.NewRedisBus(cfg.Redis.Addr, cfg.Redis.Channel)
		if err != nil {
			logger.Fatal("failed to connect to redis", "error", err)
		}
		logger.Info("redis event bus connected", "addr", cfg.Redis.Addr)
	} else {
		eventBus = bus.NewMemoryBus()
		logger.Warn("redis not configured, using in-process event bus")
	}

	wsManager := ws.NewManager(eventBus)
	dispatcher := push.NewDispatcher(cfg, deviceRepo)

	// Services.
	fanout := services.NewFanoutService(notificationRepo, receiptRepo, deviceRepo, dispatcher, eventBus, wsManager)
	notificationService := services.NewNotificationService(notificationRepo)
	deviceService := services.NewDeviceService(deviceRepo)
	socialService := services.NewSocialService(socialRepo, fanout)
	chatService := svcChat.NewChatService(conversationRepo, participantRepo, messageRepo, receiptRepo, fanout)
	receiptService := svcChat.NewReadReceiptService(participantRepo, messageRepo, receiptRepo, fanout)
	reactionService := svcChat.NewReactionService(participantRepo, messageRepo, reactionRepo, fanout)

	typingTTL := time.Duration(cfg.Workers.TypingTTLSeconds) * time.Second
	typingService := svcChat.NewTypingService(participantRepo, typingRepo, fanout, typingTTL)

	// Typing state dies with the connection.
	wsManager.OnDisconnect = func(userID string, joinedConversations []string) {
		typingService.ClearForUser(ctx, userID, joinedConversations)
	}

	// Workers.
	pool := workers.NewPool(cfg.Workers.PoolSize, cfg.Workers.QueueSize)
	sweeper := workers.NewTypingSweeper(typingRepo, typingTTL)
	sweeper.Start(ctx)

	go wsManager.Run(ctx)
	wsHandler := ws.NewHandler(wsManager, chatService, typingService, pool)

	// HTTP handlers.
	v := validator.New()
	base := handlers.NewBaseHandler(v)
	appHandlers := &handlers.AppHandlers{
		ChatHandler:         handlers.NewChatHandler(base, chatService, receiptService, reactionService, typingService, notificationService),
		NotificationHandler: handlers.NewNotificationHandler(base, notificationService),
		SocialHandler:       handlers.NewSocialHandler(base, socialService),
		DeviceHandler:       handlers.NewDeviceHandler(base, deviceService),
	}

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	ginRouter := gin.New()
	ginRouter.Use(gin.Recovery(), requestLogger())

	routes.RegisterRoutes(ginRouter, appHandlers, wsHandler)

	return ginRouter
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.HTTPLog(c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start), c.Writer.Size())
	}
}
