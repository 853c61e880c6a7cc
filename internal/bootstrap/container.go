package bootstrap

import (
	"context"
	"log"
	"time"

	"medibook-be/internal/config"
	"medibook-be/internal/constant"
	"medibook-be/internal/controller"
	"medibook-be/internal/pkg/logger"
	"medibook-be/internal/pkg/mailer"
	"medibook-be/internal/repository/memory"
	"medibook-be/internal/repository/unitofwork"
	"medibook-be/internal/service"
	"medibook-be/internal/websocket"

	pkgNats "medibook-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	ChatController controller.IChatController

	// Realtime gateway
	ChatGateway  *websocket.Gateway
	WebSocketHub *websocket.Hub

	// Background services (exposed for main.go to run)
	ConsumerService service.IConsumerService
	SweeperService  service.ISweeperService

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.Email,
		cfg.SMTP.SenderName,
	)

	// 2. Event bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 2.5 Infrastructure
	// NATS is best effort: the conversation flow never depends on it.
	var eventPublisher service.EventPublisher
	natsPub, err := pkgNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
	} else {
		eventPublisher = natsPub
	}
	natsSub, err := pkgNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS Subscriber: %v", err)
	}

	// Redis backs cross-instance frame fanout, optional in single-node runs.
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

	// 3. Services
	sessionLocker := memory.NewSessionLocker()
	publisherService := service.NewPublisherService(constant.TopicAppointmentConfirmed, pubSub)

	availabilityService := service.NewAvailabilityService(uowFactory, cfg.Chat.DefaultSlotDurationMin)
	appointmentService := service.NewAppointmentService(uowFactory)

	chatService := service.NewChatService(
		uowFactory,
		availabilityService,
		appointmentService,
		sessionLocker,
		publisherService,
		sysLogger,
		service.ChatServiceConfig{
			SlotSearchDays:    cfg.Chat.SlotSearchDays,
			MaxSlotsPresented: cfg.Chat.MaxSlotsPresented,
		},
	)

	consumerService := service.NewConsumerService(
		pubSub,
		constant.TopicAppointmentConfirmed,
		emailService,
		eventPublisher,
		sysLogger,
	)

	sweeperService := service.NewSweeperService(
		uowFactory,
		eventPublisher,
		sysLogger,
		time.Duration(cfg.Chat.SessionTimeoutMin)*time.Minute,
		time.Duration(cfg.Chat.SweepIntervalMin)*time.Minute,
	)

	// 4. Realtime gateway
	wsLogger := logger.NewIsolatedLogger(cfg.App.WsLogFilePath)
	wsHub := websocket.NewHub(rdb, cfg.Chat.RetryQueueCapacity, wsLogger)
	go wsHub.Run()
	wsHub.SubscribeFanout(context.Background())
	wsHub.StartHeartbeat(time.Duration(cfg.Chat.HeartbeatIntervalSec) * time.Second)

	if natsSub != nil {
		notifier := websocket.NewAbandonmentNotifier(wsHub, wsLogger)
		if err := notifier.Start(natsSub); err != nil {
			log.Printf("[WARN] Failed to start abandonment notifier: %v", err)
		}
	}

	chatGateway := websocket.NewGateway(
		wsHub,
		chatService,
		wsLogger,
		cfg.Chat.ReplayLimit,
		time.Duration(cfg.Chat.InitTimeoutSec)*time.Second,
	)

	// 5. Controllers
	chatController := controller.NewChatController(chatService)

	return &Container{
		ChatController:  chatController,
		ChatGateway:     chatGateway,
		WebSocketHub:    wsHub,
		ConsumerService: consumerService,
		SweeperService:  sweeperService,
		Logger:          sysLogger,
	}
}
