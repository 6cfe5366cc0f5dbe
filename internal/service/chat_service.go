package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"fellowship-chat-be/internal/dto"
	"fellowship-chat-be/internal/pkg/logger"
	"fellowship-chat-be/internal/pkg/serverutils"
	"fellowship-chat-be/internal/repository/memory"
	"fellowship-chat-be/internal/repository/snapshot"
	"fellowship-chat-be/pkg/character"
	"fellowship-chat-be/pkg/dialogue"
	"fellowship-chat-be/pkg/events"
	"fellowship-chat-be/pkg/intent"
	"fellowship-chat-be/pkg/llm"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrSessionNotFound  = errors.New("chat session not found")
	ErrUnknownCharacter = errors.New("unknown character")
)

// SnapshotStore persists conversation state outside the process.
type SnapshotStore interface {
	Save(ctx context.Context, snap dialogue.Snapshot, ttl time.Duration) error
	Load(ctx context.Context, sessionID string) (*dialogue.Snapshot, error)
	Delete(ctx context.Context, sessionID string) error
}

type ChatServiceConfig struct {
	JwtSecret   string
	SnapshotTTL time.Duration
	AskTimeout  time.Duration
	// WarmOnCreate builds the start character's RAG session in the background.
	WarmOnCreate bool
}

type IChatService interface {
	CreateSession(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error)
	SendChat(ctx context.Context, sessionID string, req *dto.SendChatRequest) (*dto.SendChatResponse, error)
	GetHistory(ctx context.Context, sessionID, characterName string) (*dto.GetChatHistoryResponse, error)
	EndSession(ctx context.Context, sessionID string) error
}

type chatService struct {
	registry   *character.Registry
	classifier *intent.Classifier
	factory    dialogue.Factory
	sessions   *memory.SessionRepository
	snapshots  SnapshotStore
	publisher  IPublisherService
	logger     logger.ILogger
	cfg        ChatServiceConfig
	tracer     trace.Tracer

	restoreMu sync.Mutex
}

// NewChatService wires the dialogue core to storage and events. snapshots may
// be nil when no Redis is configured.
func NewChatService(
	registry *character.Registry,
	factory dialogue.Factory,
	sessions *memory.SessionRepository,
	snapshots SnapshotStore,
	publisher IPublisherService,
	logger logger.ILogger,
	cfg ChatServiceConfig,
) IChatService {
	return &chatService{
		registry:   registry,
		classifier: intent.NewClassifier(registry.Names()),
		factory:    factory,
		sessions:   sessions,
		snapshots:  snapshots,
		publisher:  publisher,
		logger:     logger,
		cfg:        cfg,
		tracer:     otel.Tracer("fellowship-chat/chat-service"),
	}
}

func (c *chatService) CreateSession(ctx context.Context, req *dto.CreateSessionRequest) (*dto.CreateSessionResponse, error) {
	ctx, span := c.tracer.Start(ctx, "ChatService.CreateSession")
	defer span.End()

	opts := c.sessionOptions()
	if req.Character != "" {
		if !c.registry.Contains(req.Character) {
			return nil, ErrUnknownCharacter
		}
		opts = append(opts, dialogue.WithStartCharacter(req.Character))
	}

	id := uuid.NewString()
	sess, err := dialogue.NewSession(id, c.registry, c.factory, c.logger, opts...)
	if err != nil {
		return nil, err
	}
	c.sessions.Save(sess)
	c.persist(ctx, sess)

	if c.cfg.WarmOnCreate {
		go sess.Warm(context.Background())
	}

	expiresAt := time.Now().Add(c.cfg.SnapshotTTL)
	token, err := serverutils.IssueSessionToken(c.cfg.JwtSecret, id, c.cfg.SnapshotTTL)
	if err != nil {
		return nil, err
	}

	active := sess.ActiveCharacter()
	span.SetAttributes(attribute.String("chat.session_id", id), attribute.String("chat.character", active))
	c.publish(ctx, events.NewSessionStarted(id, active))
	c.logger.Info("CHAT", "Session created", map[string]interface{}{"session_id": id, "character": active})

	return &dto.CreateSessionResponse{
		SessionId: id,
		Token:     token,
		ExpiresAt: expiresAt,
		Character: active,
		History:   toMessageDTOs(sess.History(active)),
	}, nil
}

func (c *chatService) SendChat(ctx context.Context, sessionID string, req *dto.SendChatRequest) (*dto.SendChatResponse, error) {
	ctx, span := c.tracer.Start(ctx, "ChatService.SendChat")
	defer span.End()

	sess, err := c.resolve(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	reply := sess.Handle(ctx, req.Chat)
	latency := time.Since(start)

	span.SetAttributes(
		attribute.String("chat.session_id", sessionID),
		attribute.String("chat.character", reply.Character),
		attribute.String("chat.intent", reply.Intent.String()),
		attribute.Bool("chat.switched", reply.Switched),
	)

	c.persist(ctx, sess)
	c.publish(ctx, events.NewChatTurn(sessionID, reply.Character, reply.Intent.String(), reply.Switched, latency))

	return &dto.SendChatResponse{
		Character:     reply.Character,
		Intent:        reply.Intent.String(),
		Switched:      reply.Switched,
		Reply:         reply.Message.Content,
		HistoryLength: len(sess.History(reply.Character)),
	}, nil
}

func (c *chatService) GetHistory(ctx context.Context, sessionID, characterName string) (*dto.GetChatHistoryResponse, error) {
	sess, err := c.resolve(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	active := sess.ActiveCharacter()
	if characterName == "" {
		characterName = active
	}
	if !c.registry.Contains(characterName) {
		return nil, ErrUnknownCharacter
	}

	return &dto.GetChatHistoryResponse{
		Character: characterName,
		Active:    characterName == active,
		History:   toMessageDTOs(sess.History(characterName)),
	}, nil
}

// EndSession tears the session down: RAG sessions are closed and the snapshot is removed.
func (c *chatService) EndSession(ctx context.Context, sessionID string) error {
	_, live := c.sessions.Get(sessionID)

	stored := false
	if c.snapshots != nil {
		if _, err := c.snapshots.Load(ctx, sessionID); err == nil {
			stored = true
		}
		if err := c.snapshots.Delete(ctx, sessionID); err != nil {
			c.logger.Warn("CHAT", "Failed to delete snapshot", map[string]interface{}{"session_id": sessionID, "error": err.Error()})
		}
	}

	if !live && !stored {
		return ErrSessionNotFound
	}

	c.sessions.Delete(sessionID)
	c.publish(ctx, events.NewSessionEnded(sessionID))
	c.logger.Info("CHAT", "Session ended", map[string]interface{}{"session_id": sessionID})
	return nil
}

// resolve finds a live session, restoring it from its snapshot when the
// in-process cache no longer has it.
func (c *chatService) resolve(ctx context.Context, sessionID string) (*dialogue.Session, error) {
	if sess, ok := c.sessions.Get(sessionID); ok {
		return sess, nil
	}
	if c.snapshots == nil {
		return nil, ErrSessionNotFound
	}

	c.restoreMu.Lock()
	defer c.restoreMu.Unlock()

	if sess, ok := c.sessions.Get(sessionID); ok {
		return sess, nil
	}

	snap, err := c.snapshots.Load(ctx, sessionID)
	if errors.Is(err, snapshot.ErrSnapshotNotFound) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	sess, err := dialogue.NewSession(sessionID, c.registry, c.factory, c.logger, c.sessionOptions()...)
	if err != nil {
		return nil, err
	}
	sess.Restore(*snap)
	c.sessions.Save(sess)

	c.logger.Info("CHAT", "Session restored from snapshot", map[string]interface{}{
		"session_id": sessionID,
		"character":  sess.ActiveCharacter(),
	})
	return sess, nil
}

func (c *chatService) sessionOptions() []dialogue.Option {
	return []dialogue.Option{
		dialogue.WithClassifier(c.classifier),
		dialogue.WithAskTimeout(c.cfg.AskTimeout),
	}
}

func (c *chatService) persist(ctx context.Context, sess *dialogue.Session) {
	if c.snapshots == nil {
		return
	}
	if err := c.snapshots.Save(ctx, sess.Snapshot(), c.cfg.SnapshotTTL); err != nil {
		c.logger.Warn("CHAT", "Failed to save snapshot", map[string]interface{}{"session_id": sess.ID(), "error": err.Error()})
	}
}

func (c *chatService) publish(ctx context.Context, event events.Event) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(ctx, event); err != nil {
		c.logger.Warn("CHAT", "Failed to publish event", map[string]interface{}{"type": event.EventType(), "error": err.Error()})
	}
}

func toMessageDTOs(history []llm.Message) []dto.ChatMessageDTO {
	out := make([]dto.ChatMessageDTO, len(history))
	for i, m := range history {
		out[i] = dto.ChatMessageDTO{Role: m.Role, Content: m.Content}
	}
	return out
}
