package bootstrap

import (
	"context"
	"log"

	"noteshare-be/internal/config"
	"noteshare-be/internal/controller"
	"noteshare-be/internal/pkg/logger"
	"noteshare-be/internal/pkg/mailer"
	"noteshare-be/internal/pkg/serverutils"
	"noteshare-be/internal/pkg/token"
	"noteshare-be/internal/repository/unitofwork"
	"noteshare-be/internal/service"
	"noteshare-be/internal/websocket"

	pktNats "noteshare-be/pkg/nats"
	"noteshare-be/pkg/store"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Container struct {
	// Controllers
	AuthController    controller.IAuthController
	NoteController    controller.INoteController
	CatalogController controller.ICatalogController
	UserController    controller.IUserController

	// Background services (exposed for main.go to run)
	IndexerService *service.IndexerService

	// WebSockets
	WebSocketHub  *websocket.Hub
	Authenticator service.IAuthenticator

	Logger logger.ILogger
}

func NewContainer(db *gorm.DB, cfg *config.Config) *Container {
	// 1. Core facades
	uowFactory := unitofwork.NewRepositoryFactory(db)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	if cfg.Auth.JWTSecret == "" {
		log.Fatal("[FATAL] JWT_SECRET must be set")
	}
	codec := token.NewCodec(cfg.Auth.JWTSecret)

	emailService := mailer.NewEmailService(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Email,
		cfg.SMTP.Password,
		cfg.SMTP.SenderEmail,
		cfg.App.ClientURL,
	)

	// 2. Infrastructure
	natsPub, err := pktNats.NewPublisher(cfg.App.NatsURL)
	if err != nil {
		log.Printf("[WARN] Failed to connect to NATS publisher: %v", err)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		log.Printf("[WARN] Failed to parse Redis URL: %v. Using direct Addr", err)
		opt = &redis.Options{
			Addr: cfg.App.RedisURL,
		}
	}
	rdb := redis.NewClient(opt)
	if _, err := rdb.Ping(context.Background()).Result(); err != nil {
		log.Printf("[WARN] Failed to connect to Redis: %v", err)
	}

	// In-process bus for the search-vector indexer.
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// WebSocket hub
	wsLogger := logger.NewIsolatedLogger("logs/notification.log")
	wsHub := websocket.NewHub(rdb, wsLogger)
	go wsHub.Run()

	// 3. Services
	indexPublisher := service.NewIndexPublisher(pubSub)
	indexerService := service.NewIndexerService(pubSub, uowFactory, sysLogger)

	resendThrottle := store.NewResendThrottle(rdb, cfg.Auth.ResendWindow)
	notificationService := service.NewNotificationService(rdb, wsLogger)

	authenticator := service.NewAuthenticator(codec, uowFactory)
	policy := service.NewNotePolicy(uowFactory)

	authService := service.NewAuthService(uowFactory, codec, emailService, natsPub, resendThrottle)
	userService := service.NewUserService(uowFactory)
	searchService := service.NewSearchService(uowFactory)
	noteService := service.NewNoteService(
		uowFactory,
		policy,
		emailService,
		natsPub,
		indexPublisher,
		notificationService,
	)

	// 4. Controllers
	requireAuth := serverutils.RequireAuth(authenticator, sysLogger)
	optionalAuth := serverutils.OptionalAuth(authenticator, sysLogger)

	return &Container{
		AuthController:    controller.NewAuthController(authService),
		NoteController:    controller.NewNoteController(noteService, searchService, requireAuth),
		CatalogController: controller.NewCatalogController(searchService, optionalAuth),
		UserController:    controller.NewUserController(userService, requireAuth),

		IndexerService: indexerService,
		WebSocketHub:   wsHub,
		Authenticator:  authenticator,
		Logger:         sysLogger,
	}
}
