package commands

import (
	"fmt"

	"github.com/objectiveSquid/Chat-site/internal/logger"
	"github.com/objectiveSquid/Chat-site/pkg/config"
)

// InitLogger initializes the structured logger from configuration.
func InitLogger(cfg config.LoggingConfig) error {
	loggerCfg := logger.Config{
		Level:  cfg.Level,
		Format: cfg.Format,
		Output: cfg.Output,
	}
	if err := logger.Init(loggerCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// configSource describes where a config file was loaded from.
func configSource(path, fallback string) string {
	if path != "" {
		return path
	}
	return fallback
}
