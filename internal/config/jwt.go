// Package config provides JWT configuration functionality.
package config

import (
	"os"
	"strconv"
)

// JWTConfig holds configuration for API token generation and validation.
type JWTConfig struct {
	Secret          string
	ExpirationHours int
}

// NewJWTConfig creates a new JWT configuration from environment variables.
// It reads JWT_SECRET (required) and JWT_EXPIRATION_HOURS (default: 24).
func NewJWTConfig() (*JWTConfig, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return nil, &ConfigurationError{Key: "JWT_SECRET", Message: "required but not set"}
	}

	expirationStr := os.Getenv("JWT_EXPIRATION_HOURS")
	if expirationStr == "" {
		expirationStr = "24" // default
	}

	expirationHours, err := strconv.Atoi(expirationStr)
	if err != nil {
		return nil, &ConfigurationError{Key: "JWT_EXPIRATION_HOURS", Message: "must be an integer"}
	}
	if expirationHours < 1 {
		return nil, &ConfigurationError{Key: "JWT_EXPIRATION_HOURS", Message: "must be at least 1 hour"}
	}

	return &JWTConfig{
		Secret:          secret,
		ExpirationHours: expirationHours,
	}, nil
}
