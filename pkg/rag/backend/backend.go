package backend

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"fellowship-chat-be/pkg/embedding"
	"fellowship-chat-be/pkg/llm"
	"fellowship-chat-be/pkg/rag"
	"fellowship-chat-be/pkg/rag/index"
	"fellowship-chat-be/pkg/utils"
)

type Config struct {
	ChunkSize       int
	ChunkOverlap    int
	TopK            int
	MaxContextTurns int
}

func DefaultConfig() Config {
	return Config{
		ChunkSize:       1000,
		ChunkOverlap:    200,
		TopK:            4,
		MaxContextTurns: 10,
	}
}

// Retrieval is the conversational retrieval backend: passages are chunked,
// embedded and indexed once per session, and every question is answered
// from the top-k chunks plus the session's own memory.
type Retrieval struct {
	embedder embedding.EmbeddingProvider
	provider llm.LLMProvider
	newIndex index.Builder
	cfg      Config
}

var _ rag.Backend = (*Retrieval)(nil)

func NewRetrieval(embedder embedding.EmbeddingProvider, provider llm.LLMProvider, newIndex index.Builder, cfg Config) *Retrieval {
	defaults := DefaultConfig()
	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = defaults.ChunkSize
	}
	if cfg.ChunkOverlap < 0 || cfg.ChunkOverlap >= cfg.ChunkSize {
		cfg.ChunkOverlap = defaults.ChunkOverlap
	}
	if cfg.TopK <= 0 {
		cfg.TopK = defaults.TopK
	}
	if cfg.MaxContextTurns <= 0 {
		cfg.MaxContextTurns = defaults.MaxContextTurns
	}
	return &Retrieval{embedder: embedder, provider: provider, newIndex: newIndex, cfg: cfg}
}

func (r *Retrieval) BuildSession(ctx context.Context, passages []string, systemPrompt string) (rag.Session, error) {
	var chunks []index.Chunk
	for _, passage := range passages {
		for _, text := range utils.SplitText(passage, r.cfg.ChunkSize, r.cfg.ChunkOverlap) {
			res, err := r.embedder.Generate(ctx, text, embedding.TaskRetrievalDocument)
			if err != nil {
				return nil, fmt.Errorf("embed chunk %d: %w", len(chunks), err)
			}
			chunks = append(chunks, index.Chunk{
				Text:   text,
				Index:  len(chunks),
				Vector: res.Embedding.Values,
			})
		}
	}

	idx, err := r.newIndex(ctx)
	if err != nil {
		return nil, fmt.Errorf("create index: %w", err)
	}
	if err := idx.Add(ctx, chunks); err != nil {
		_ = idx.Close(context.Background())
		return nil, fmt.Errorf("index chunks: %w", err)
	}

	return &session{
		embedder:     r.embedder,
		provider:     r.provider,
		index:        idx,
		systemPrompt: systemPrompt,
		topK:         r.cfg.TopK,
		maxTurns:     r.cfg.MaxContextTurns,
	}, nil
}

type turn struct {
	question string
	answer   string
}

type session struct {
	embedder     embedding.EmbeddingProvider
	provider     llm.LLMProvider
	index        index.VectorIndex
	systemPrompt string
	topK         int
	maxTurns     int

	mu     sync.Mutex
	memory []turn
}

func (s *session) Ask(ctx context.Context, question string, history []llm.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.memory) == 0 && len(history) > 0 {
		s.remember(pairsFromTranscript(history)...)
	}

	standalone := question
	if len(s.memory) > 0 {
		condensed, err := s.provider.Generate(ctx, buildCondensePrompt(s.memory, question))
		if err != nil {
			return "", fmt.Errorf("condense question: %w", err)
		}
		if condensed = strings.TrimSpace(condensed); condensed != "" {
			standalone = condensed
		}
	}

	res, err := s.embedder.Generate(ctx, standalone, embedding.TaskRetrievalQuery)
	if err != nil {
		return "", fmt.Errorf("embed question: %w", err)
	}
	chunks, err := s.index.Search(ctx, res.Embedding.Values, s.topK)
	if err != nil {
		return "", fmt.Errorf("search index: %w", err)
	}

	answer, err := s.provider.Generate(ctx, buildAnswerPrompt(s.systemPrompt, s.memory, chunks, standalone))
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}

	s.remember(turn{question: question, answer: answer})
	return answer, nil
}

func (s *session) Close(ctx context.Context) error {
	return s.index.Close(ctx)
}

func (s *session) remember(turns ...turn) {
	s.memory = append(s.memory, turns...)
	if over := len(s.memory) - s.maxTurns; over > 0 {
		s.memory = append([]turn(nil), s.memory[over:]...)
	}
}

// pairsFromTranscript keeps every user message directly answered by an
// assistant message. Greetings, banners and the pending question are dropped.
func pairsFromTranscript(history []llm.Message) []turn {
	var turns []turn
	for i := 0; i+1 < len(history); i++ {
		if history[i].Role == llm.RoleUser && history[i+1].Role == llm.RoleAssistant {
			turns = append(turns, turn{question: history[i].Content, answer: history[i+1].Content})
			i++
		}
	}
	return turns
}
