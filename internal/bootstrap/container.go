package bootstrap

import (
	"context"
	"errors"
	"time"

	"fellowship-chat-be/internal/config"
	"fellowship-chat-be/internal/controller"
	"fellowship-chat-be/internal/handler"
	"fellowship-chat-be/internal/pkg/logger"
	"fellowship-chat-be/internal/pkg/serverutils"
	"fellowship-chat-be/internal/repository/memory"
	"fellowship-chat-be/internal/repository/snapshot"
	"fellowship-chat-be/internal/service"
	"fellowship-chat-be/internal/websocket"

	pktNats "fellowship-chat-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
)

// eventTopic is the in-process topic every domain event passes through.
const eventTopic = "fellowship.events"

type Container struct {
	// Controllers
	CharacterController controller.ICharacterController
	ChatController      controller.IChatController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService

	// WebSockets
	ChatHandler  *handler.ChatHandler
	WebSocketHub *websocket.Hub

	Logger logger.ILogger

	core     *Core
	pubSub   *gochannel.GoChannel
	natsPub  *pktNats.Publisher
	rdb      *redis.Client
	sessions *memory.SessionRepository
}

func NewContainer(cfg *config.Config, sysLogger logger.ILogger) (*Container, error) {
	if cfg.Auth.JwtSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	// 1. Dialogue core
	core, err := NewCore(cfg, sysLogger)
	if err != nil {
		return nil, err
	}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermillLogger)

	// 3. Infrastructure
	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		natsPub, err = pktNats.NewPublisher(cfg.App.NatsURL, sysLogger)
		if err != nil {
			sysLogger.Warn("BOOTSTRAP", "Failed to connect to NATS Publisher, events stay in-process", map[string]interface{}{"error": err.Error()})
			natsPub = nil
		}
	}

	var rdb *redis.Client
	var snapshots service.SnapshotStore
	if cfg.App.RedisURL != "" {
		rdb = newRedisClient(cfg.App.RedisURL, sysLogger)
		snapshots = snapshot.NewRedisRepository(rdb)
	}

	sessionRepo := memory.NewSessionRepository(cfg.App.SessionTTL)

	wsLogger := logger.NewIsolatedLogger("logs/websocket.log")
	wsHub := websocket.NewHub(rdb, wsLogger)

	// 4. Services
	publisherService := service.NewPublisherService(eventTopic, pubSub)
	var sink service.EventSink
	if natsPub != nil {
		sink = natsPub
	}
	consumerService := service.NewConsumerService(pubSub, eventTopic, sink, sysLogger)

	chatService := service.NewChatService(
		core.Registry,
		core.Factory,
		sessionRepo,
		snapshots,
		publisherService,
		sysLogger,
		service.ChatServiceConfig{
			JwtSecret:    cfg.Auth.JwtSecret,
			SnapshotTTL:  cfg.App.SnapshotTTL,
			AskTimeout:   cfg.Rag.AskTimeout,
			WarmOnCreate: true,
		},
	)
	characterService := service.NewCharacterService(core.Registry)

	rateLimiter := serverutils.NewRateLimiter(cfg.App.RateLimitRPS, cfg.App.RateLimitBurst)

	// 5. Controllers
	return &Container{
		CharacterController: controller.NewCharacterController(characterService),
		ChatController:      controller.NewChatController(chatService, cfg.Auth.JwtSecret, rateLimiter),
		ConsumerService:     consumerService,
		ChatHandler:         handler.NewChatHandler(chatService, wsHub, cfg.Auth.JwtSecret, wsLogger),
		WebSocketHub:        wsHub,
		Logger:              sysLogger,

		core:     core,
		pubSub:   pubSub,
		natsPub:  natsPub,
		rdb:      rdb,
		sessions: sessionRepo,
	}, nil
}

// Close tears down every live session and infrastructure client.
func (c *Container) Close(ctx context.Context) error {
	var errs []error
	c.sessions.CloseAll()
	if err := c.pubSub.Close(); err != nil {
		errs = append(errs, err)
	}
	if c.natsPub != nil {
		c.natsPub.Close()
	}
	if c.rdb != nil {
		if err := c.rdb.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := c.core.Close(ctx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func newRedisClient(url string, log logger.ILogger) *redis.Client {
	opt, err := redis.ParseURL(url)
	if err != nil {
		log.Warn("BOOTSTRAP", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: url}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Warn("BOOTSTRAP", "Failed to connect to Redis", map[string]interface{}{"error": err.Error()})
	}
	return rdb
}
