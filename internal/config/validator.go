package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validate checks struct tags and the cross-field backend rules.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	if err := v.Struct(c); err != nil {
		return formatValidationErrors(err)
	}

	if err := c.validateBackends(); err != nil {
		return err
	}
	return nil
}

// validateBackends ensures every selected backend has its connection settings.
func (c *Config) validateBackends() error {
	if c.App.StoreBackend == BackendPostgres || c.App.SessionBackend == BackendPostgres {
		if c.Postgres.DSN == "" {
			return errors.New("postgres backend selected but POSTGRES_DSN is empty")
		}
	}
	if c.App.SessionBackend == BackendRedis || c.Catalog.DurableBackend == BackendRedis {
		if c.Redis.Addr == "" {
			return errors.New("redis backend selected but REDIS_ADDR is empty")
		}
	}
	if c.Catalog.DurableBackend == BackendSQLite && c.SQLite.Path == "" {
		return errors.New("sqlite durable backend selected but SQLITE_PATH is empty")
	}
	return nil
}

// formatValidationErrors converts validator.ValidationErrors to readable messages.
func formatValidationErrors(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		messages := make([]string, 0, len(validationErrors))
		for _, e := range validationErrors {
			messages = append(messages, formatSingleValidationError(e))
		}
		return errors.New(strings.Join(messages, "; "))
	}
	return err
}

func formatSingleValidationError(e validator.FieldError) string {
	field := e.Namespace()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	case "numeric":
		return fmt.Sprintf("%s must be numeric", field)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	default:
		return fmt.Sprintf("%s failed validation: %s", field, e.Tag())
	}
}
