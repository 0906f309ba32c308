package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateShared checks a shared config. The header widths must all be
// present and within the codec's 1..8 byte range.
func ValidateShared(cfg *SharedConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid shared config: %w", err)
	}
	if err := cfg.Widths().Validate(); err != nil {
		return fmt.Errorf("invalid shared config: %w", err)
	}
	return nil
}

// ValidateServer checks a server config, including the database section's
// own rules (backend requirements, account policy sanity).
func ValidateServer(cfg *ServerConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid server config: %w", err)
	}
	if err := cfg.Database.Validate(); err != nil {
		return fmt.Errorf("invalid server config: database: %w", err)
	}
	return nil
}

// ValidateClient checks a client config.
func ValidateClient(cfg *ClientConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid client config: %w", err)
	}
	return nil
}
