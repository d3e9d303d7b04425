package logger

import (
	"npo-crm/internal/config"
	"npo-crm/internal/database"

	"go.uber.org/zap"
)

// NewLogger builds the application logger: console/JSON output teed into the
// async app_logs writer.
func NewLogger(cfg *config.Config, pg *database.PostgresDB) (*zap.Logger, error) {
	var zapConfig zap.Config
	if cfg.Environment == "production" {
		zapConfig = zap.NewProductionConfig()
	} else {
		zapConfig = zap.NewDevelopmentConfig()
	}

	// Enable Caller so the DB sink can record the emitting function
	zapConfig.EncoderConfig.FunctionKey = "func"

	baseLogger, err := zapConfig.Build()
	if err != nil {
		return nil, err
	}

	dbWriter := NewDBLogWriter(pg, cfg)

	// Tee core: every entry still goes to console, plus the DB writer
	finalCore := NewDBCore(baseLogger.Core(), dbWriter)

	return zap.New(finalCore, zap.AddCaller()), nil
}
