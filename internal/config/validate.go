package config

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks constraints the JSON schema cannot express.
func Validate(cfg *Config) error {
	if err := ValidateVersion(cfg.Package.Version); err != nil {
		return err
	}
	return nil
}

// ValidateVersion checks that v is a semantic version.
func ValidateVersion(v string) error {
	if _, err := semver.StrictNewVersion(v); err != nil {
		return &ValidationError{
			Field:   "package.version",
			Message: fmt.Sprintf("%q is not a semantic version (%v)", v, err),
		}
	}
	return nil
}
