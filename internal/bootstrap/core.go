package bootstrap

import (
	"context"
	"errors"
	"fmt"

	"fellowship-chat-be/internal/config"
	"fellowship-chat-be/internal/pkg/logger"
	"fellowship-chat-be/pkg/character"
	"fellowship-chat-be/pkg/database"
	"fellowship-chat-be/pkg/document"
	"fellowship-chat-be/pkg/embedding"
	"fellowship-chat-be/pkg/llm/factory"
	"fellowship-chat-be/pkg/rag"
	"fellowship-chat-be/pkg/rag/backend"
	"fellowship-chat-be/pkg/rag/index"

	"gorm.io/gorm"
)

// Core is the dialogue machinery shared by the HTTP server and the console.
type Core struct {
	Registry *character.Registry
	Factory  *rag.Factory
	DB       *gorm.DB
}

// NewCore loads the character documents and wires the RAG backend. It fails
// when no character could be extracted.
func NewCore(cfg *config.Config, log logger.ILogger) (*Core, error) {
	pages, err := document.NewLoader().LoadPages(cfg.App.CharacterDocuments)
	if err != nil {
		return nil, fmt.Errorf("load character documents: %w", err)
	}

	registry := character.Extract(pages)
	if registry.Len() == 0 {
		return nil, character.ErrEmptyRegistry
	}
	log.Info("BOOTSTRAP", "Characters loaded", map[string]interface{}{
		"count":      registry.Len(),
		"characters": registry.Names(),
		"pages":      len(pages),
	})

	embedder, err := newEmbeddingProvider(cfg, log)
	if err != nil {
		return nil, err
	}

	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		cfg.Ai.LLMTemperature,
	)
	if err != nil {
		return nil, fmt.Errorf("initialize LLM provider: %w", err)
	}
	log.Info("BOOTSTRAP", "Using LLM provider", map[string]interface{}{"provider": cfg.Ai.LLMProvider, "model": cfg.Ai.LLMModel})

	core := &Core{Registry: registry}

	builder := index.MemoryBuilder()
	if cfg.Database.VectorStore == "pgvector" {
		db, err := database.NewGormDBFromDSN(cfg.Database.Connection, log, cfg.IsProduction())
		if err != nil {
			return nil, fmt.Errorf("connect vector store: %w", err)
		}
		if err := index.Migrate(db); err != nil {
			return nil, fmt.Errorf("migrate vector store: %w", err)
		}
		core.DB = db
		builder = index.PgVectorBuilder(db)
	}
	log.Info("BOOTSTRAP", "Using vector store", map[string]interface{}{"store": cfg.Database.VectorStore})

	retrieval := backend.NewRetrieval(embedder, llmProvider, builder, backend.Config{
		ChunkSize:       cfg.Rag.ChunkSize,
		ChunkOverlap:    cfg.Rag.ChunkOverlap,
		TopK:            cfg.Rag.TopK,
		MaxContextTurns: cfg.Rag.MaxContextTurns,
	})
	core.Factory = rag.NewFactory(pages, registry, retrieval, cfg.Rag.BuildTimeout, log)

	return core, nil
}

// Close releases the database pool when pgvector is in use.
func (c *Core) Close(context.Context) error {
	if c.DB == nil {
		return nil
	}
	sqlDB, err := c.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func newEmbeddingProvider(cfg *config.Config, log logger.ILogger) (embedding.EmbeddingProvider, error) {
	switch cfg.Ai.EmbeddingProvider {
	case "ollama", "":
		log.Info("BOOTSTRAP", "Using embedding provider", map[string]interface{}{"provider": "ollama", "model": cfg.Ai.OllamaModel})
		return embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.OllamaModel), nil
	case "gemini":
		if cfg.Ai.GeminiAPIKey == "" {
			return nil, errors.New("GOOGLE_GEMINI_API_KEY is required for the gemini embedding provider")
		}
		log.Info("BOOTSTRAP", "Using embedding provider", map[string]interface{}{"provider": "gemini"})
		return embedding.NewGeminiProvider(cfg.Ai.GeminiAPIKey), nil
	default:
		return nil, fmt.Errorf("unsupported embedding provider: %s", cfg.Ai.EmbeddingProvider)
	}
}
