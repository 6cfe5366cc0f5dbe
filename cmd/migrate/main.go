package main

import (
	"os"

	"fellowship-chat-be/internal/config"
	"fellowship-chat-be/internal/pkg/logger"
	"fellowship-chat-be/pkg/database"
	"fellowship-chat-be/pkg/rag/index"
)

// Prepares Postgres for VECTOR_STORE=pgvector.
func main() {
	cfg := config.Load()
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.IsProduction())
	defer sysLogger.Sync()

	if cfg.Database.Connection == "" {
		sysLogger.Error("MIGRATE", "DB_CONNECTION_STRING is not set", nil)
		os.Exit(1)
	}

	db, err := database.NewGormDBFromDSN(cfg.Database.Connection, sysLogger, cfg.IsProduction())
	if err != nil {
		sysLogger.Error("MIGRATE", "Failed to connect to database", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}

	if err := index.Migrate(db); err != nil {
		sysLogger.Error("MIGRATE", "Migration failed", map[string]interface{}{"error": err.Error()})
		os.Exit(1)
	}
	sysLogger.Info("MIGRATE", "Vector store schema is up to date", nil)
}
