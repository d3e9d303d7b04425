package logger

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"npo-crm/internal/config"
	"npo-crm/internal/database"

	"go.uber.org/zap/zapcore"
)

// LogEntry holds the data passed from Zap to the background worker.
type LogEntry struct {
	Level     zapcore.Level
	Message   string
	RequestID string
	Caller    string
}

// DBLogWriter handles the async writing into app_logs.
type DBLogWriter struct {
	db      *sql.DB
	logChan chan LogEntry
	appId   string
}

// NewDBLogWriter initializes the worker
func NewDBLogWriter(pg *database.PostgresDB, cfg *config.Config) *DBLogWriter {
	writer := &DBLogWriter{
		db:      pg.DB,
		logChan: make(chan LogEntry, 1000), // Buffer 1000 logs
		appId:   cfg.AppId,
	}

	// Start the background worker immediately
	go writer.processLogs()

	return writer
}

// AddLog is called by the Zap hook. Never blocks the request path.
func (w *DBLogWriter) AddLog(entry LogEntry) {
	select {
	case w.logChan <- entry:
	default:
		// Channel full: drop rather than blocking the API
		fmt.Println("DB Log Channel Full! Dropping log:", entry.Message)
	}
}

func (w *DBLogWriter) processLogs() {
	for entry := range w.logChan {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		// Insert errors are swallowed to keep the app running
		_, _ = w.db.ExecContext(ctx,
			`INSERT INTO app_logs (level, message, caller, request_id, created_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			entry.Level.String(), entry.Message, entry.Caller, entry.RequestID, time.Now().UTC(),
		)
		cancel()
	}
}
