package config

import (
	"fmt"
	"strings"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateConfig checks that the values the process cannot run without are set.
func ValidateConfig(cfg *Config) error {
	var errs []string

	if cfg.DBUser == "" {
		errs = append(errs, "DB_USER is required")
	}
	if cfg.DBPassword == "" {
		errs = append(errs, "DB_PASSWORD is required")
	}
	if cfg.JWTSecret == "" {
		errs = append(errs, "JWT_SECRET is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("missing configuration:\n%s", strings.Join(errs, "\n"))
	}
	return nil
}
