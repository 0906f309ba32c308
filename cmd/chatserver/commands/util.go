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

// formatBytes formats a byte count as a human-readable string.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
