package bootstrap

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/flowra/flowdi"
	"github.com/flowra/flowdi/internal/config"
)

// Core keys.
const (
	KeyConfig            = "config"
	KeyLogger            = "logger"
	KeyValidationFactory = "validationFactory"
)

// Validator checks that payloads carry the required fields.
type Validator struct {
	required   []string
	connection string
	logger     *slog.Logger
}

// ValidatorFactory creates a Validator for a set of required fields.
type ValidatorFactory func(connection string, required ...string) *Validator

// Validate returns the missing required fields, in rule order.
func (v *Validator) Validate(payload map[string]any) []string {
	var missing []string
	for _, field := range v.required {
		value, ok := payload[field]
		if !ok || value == nil {
			missing = append(missing, field)
			continue
		}
		if s, isString := value.(string); isString && strings.TrimSpace(s) == "" {
			missing = append(missing, field)
		}
	}

	if len(missing) > 0 {
		v.logger.Debug("validation.failed", slog.String("connection", v.connection), slog.Any("missing", missing))
	}
	return missing
}

// Connection returns the connection name the validator was created for.
func (v *Validator) Connection() string {
	return v.connection
}

// RegisterCore registers config, logger and validationFactory.
func RegisterCore(c *flowdi.Container, cfg *config.Config, logger *slog.Logger) error {
	if err := c.Register(KeyConfig, cfg); err != nil {
		return fmt.Errorf("register %s: %w", KeyConfig, err)
	}
	if err := c.Register(KeyLogger, logger); err != nil {
		return fmt.Errorf("register %s: %w", KeyLogger, err)
	}

	validationFactory := flowdi.Provide(KeyLogger, func(logger *slog.Logger) (any, error) {
		return ValidatorFactory(func(connection string, required ...string) *Validator {
			if connection == "" {
				connection = "default"
			}
			return &Validator{required: required, connection: connection, logger: logger}
		}), nil
	})
	if err := c.Register(KeyValidationFactory, validationFactory, flowdi.AsTransient()); err != nil {
		return fmt.Errorf("register %s: %w", KeyValidationFactory, err)
	}

	return nil
}
