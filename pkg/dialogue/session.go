package dialogue

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"fellowship-chat-be/internal/pkg/logger"
	"fellowship-chat-be/pkg/character"
	"fellowship-chat-be/pkg/intent"
	"fellowship-chat-be/pkg/llm"
	"fellowship-chat-be/pkg/rag"
)

const module = "DIALOGUE"

// ErrUnknownStart is returned when the picker chose a name outside the registry.
var ErrUnknownStart = errors.New("start character is not in the registry")

// Reply is the outcome of one user turn.
type Reply struct {
	Character string
	Intent    intent.Kind
	Switched  bool
	Message   llm.Message
}

// Snapshot is the persistable part of a session. RAG handles are not part of
// it and are rebuilt on demand after Restore.
type Snapshot struct {
	ID              string                   `json:"id"`
	ActiveCharacter string                   `json:"active_character"`
	Histories       map[string][]llm.Message `json:"histories"`
}

type Option func(*options)

type options struct {
	start      string
	picker     func(names []string) string
	askTimeout time.Duration
	classifier *intent.Classifier
}

// WithStartCharacter fixes the first active character. Unknown names are ignored.
func WithStartCharacter(name string) Option {
	return func(o *options) { o.start = name }
}

// WithPicker overrides the random choice of the first active character.
func WithPicker(picker func(names []string) string) Option {
	return func(o *options) { o.picker = picker }
}

// WithAskTimeout bounds every generation call. Zero means no bound.
func WithAskTimeout(d time.Duration) Option {
	return func(o *options) { o.askTimeout = d }
}

// WithClassifier shares a prebuilt classifier between sessions of the same registry.
func WithClassifier(c *intent.Classifier) Option {
	return func(o *options) { o.classifier = c }
}

func randomPick(names []string) string {
	return names[rand.IntN(len(names))]
}

// Session is one user's conversation with the Fellowship. Turns are
// serialized; a Session never shares state with another Session.
type Session struct {
	id         string
	registry   *character.Registry
	classifier *intent.Classifier
	logger     logger.ILogger
	askTimeout time.Duration

	mu        sync.Mutex
	active    string
	histories map[string][]llm.Message
	handles   *handleCache
}

func NewSession(id string, registry *character.Registry, factory Factory, logger logger.ILogger, opts ...Option) (*Session, error) {
	if registry == nil || registry.Len() == 0 {
		return nil, character.ErrEmptyRegistry
	}

	o := options{picker: randomPick}
	for _, opt := range opts {
		opt(&o)
	}
	if o.classifier == nil {
		o.classifier = intent.NewClassifier(registry.Names())
	}

	start := o.start
	if !registry.Contains(start) {
		start = o.picker(registry.Names())
		if !registry.Contains(start) {
			return nil, fmt.Errorf("start character %q: %w", start, ErrUnknownStart)
		}
	}

	s := &Session{
		id:         id,
		registry:   registry,
		classifier: o.classifier,
		logger:     logger,
		askTimeout: o.askTimeout,
		active:     start,
		histories:  make(map[string][]llm.Message),
		handles:    newHandleCache(factory),
	}
	s.seedGreeting(start)
	return s, nil
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) ActiveCharacter() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// History returns a copy of name's transcript.
func (s *Session) History(name string) []llm.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]llm.Message(nil), s.histories[name]...)
}

// Warm builds the active character's RAG session ahead of the first question.
func (s *Session) Warm(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ensureHandle(ctx, s.active)
}

// Handle processes one user message and returns the single assistant reply
// recorded for it.
func (s *Session) Handle(ctx context.Context, text string) Reply {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.appendTo(s.active, llm.Message{Role: llm.RoleUser, Content: text})

	in := s.classifier.ClassifyTurn(text, s.active)
	if in.Kind == intent.CharacterSwitch {
		return s.switchTo(ctx, in.Name)
	}

	var content string
	switch {
	case in.Kind == intent.IdentityClaim:
		content = fmt.Sprintf(identityClaimLine, s.active)
	case in.Kind == intent.OutOfCharacter:
		content = fmt.Sprintf(outOfCharacterLine, s.active)
	case in.Kind == intent.PastConversationQuery && in.Name != s.active:
		content = fmt.Sprintf(pastQueryLine, in.Name)
	default:
		in = intent.Intent{Kind: intent.Default}
		content = s.ask(ctx, text)
	}

	msg := llm.Message{Role: llm.RoleAssistant, Content: content}
	s.appendTo(s.active, msg)
	return Reply{Character: s.active, Intent: in.Kind, Message: msg}
}

// Snapshot copies the histories and active character.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	histories := make(map[string][]llm.Message, len(s.histories))
	for name, h := range s.histories {
		histories[name] = append([]llm.Message(nil), h...)
	}
	return Snapshot{ID: s.id, ActiveCharacter: s.active, Histories: histories}
}

// Restore replaces the conversation state with snap. Histories of characters
// missing from the registry are dropped; an unknown active character keeps
// the current one.
func (s *Session) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.histories = make(map[string][]llm.Message, len(snap.Histories))
	for name, h := range snap.Histories {
		if s.registry.Contains(name) {
			s.histories[name] = append([]llm.Message(nil), h...)
		}
	}
	if s.registry.Contains(snap.ActiveCharacter) {
		s.active = snap.ActiveCharacter
	}
	if len(s.histories[s.active]) == 0 {
		s.seedGreeting(s.active)
	}
}

// Close releases every RAG session built for this conversation.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.handles.closeAll(ctx)
}

func (s *Session) switchTo(ctx context.Context, name string) Reply {
	previous := s.active
	s.active = name
	s.ensureHandle(ctx, name)

	if len(s.histories[name]) == 0 {
		s.seedGreeting(name)
	} else {
		kept := s.histories[name][:0]
		for _, m := range s.histories[name] {
			if m.Role == llm.RoleAssistant && isSwitchBanner(m.Content) {
				continue
			}
			kept = append(kept, m)
		}
		s.histories[name] = kept
	}

	msg := llm.Message{Role: llm.RoleAssistant, Content: switchBanner(name)}
	s.appendTo(name, msg)

	s.logger.Info(module, "Character switched", map[string]interface{}{
		"session_id": s.id,
		"from":       previous,
		"to":         name,
	})
	return Reply{Character: name, Intent: intent.CharacterSwitch, Switched: true, Message: msg}
}

func (s *Session) ask(ctx context.Context, text string) string {
	handle, ok := s.ensureHandle(ctx, s.active)
	if !ok {
		return initializingLine
	}

	if s.askTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.askTimeout)
		defer cancel()
	}

	answer, err := handle.Ask(ctx, text, generatedTranscript(s.active, s.histories[s.active]))
	if err != nil {
		s.logger.Error(module, "Generation failed", map[string]interface{}{
			"session_id": s.id,
			"character":  s.active,
			"error":      err.Error(),
		})
		return fmt.Sprintf(generationLine, s.active)
	}
	return answer
}

// ensureHandle is the single get-or-create path for RAG sessions. Failures
// are logged and leave the cache empty for name.
func (s *Session) ensureHandle(ctx context.Context, name string) (rag.Session, bool) {
	h, err := s.handles.getOrCreate(ctx, name)
	if err != nil {
		s.logger.Warn(module, "RAG session unavailable", map[string]interface{}{
			"session_id": s.id,
			"character":  name,
			"error":      err.Error(),
		})
		return nil, false
	}
	return h, true
}

func (s *Session) seedGreeting(name string) {
	rec, _ := s.registry.Get(name)
	s.histories[name] = []llm.Message{{Role: llm.RoleAssistant, Content: greetingLine(name, rec.Greeting)}}
}

func (s *Session) appendTo(name string, msg llm.Message) {
	s.histories[name] = append(s.histories[name], msg)
}
