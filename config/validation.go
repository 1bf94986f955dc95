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

// ValidateConfig checks that the configuration is usable in the current
// environment. Development and test tolerate the built-in defaults;
// production must supply its own credentials.
func ValidateConfig(cfg *Config) error {
	var errs []string

	if cfg.ServerPort == "" {
		errs = append(errs, ValidationError{Field: "SERVER_PORT", Message: "must not be empty"}.Error())
	}
	if cfg.DBHost == "" || cfg.DBName == "" {
		errs = append(errs, ValidationError{Field: "DB_HOST/DB_NAME", Message: "database target must be set"}.Error())
	}
	if cfg.JWTSecret == "" {
		errs = append(errs, ValidationError{Field: "JWT_SECRET", Message: "must not be empty"}.Error())
	}

	if IsProduction() {
		if cfg.JWTSecret == "dev-secret" {
			errs = append(errs, ValidationError{Field: "JWT_SECRET", Message: "default secret is not allowed in production"}.Error())
		}
		if cfg.DBPassword == "postgres" {
			errs = append(errs, ValidationError{Field: "DB_PASSWORD", Message: "default password is not allowed in production"}.Error())
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, "; "))
	}
	return nil
}
