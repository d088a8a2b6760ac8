package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalid is wrapped by the error returned from Validate.
var ErrInvalid = errors.New("config: invalid configuration")

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validate checks the configuration and returns an error wrapping ErrInvalid
// that lists every problem found, or nil.
func (c *Config) Validate() error {
	errs := ValidateConfig(c)
	if len(errs) == 0 {
		return nil
	}

	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = err.Error()
	}
	return errors.Wrap(ErrInvalid, strings.Join(msgs, "; "))
}

// ValidateConfig validates the configuration and returns a list of validation errors.
// An empty slice indicates the configuration is valid.
func ValidateConfig(config *Config) []error {
	var errs []error
	errs = append(errs, validateServerConfig(&config.Server)...)
	errs = append(errs, validateBackendConfig(&config.Backend)...)
	errs = append(errs, validateDirectoryConfig(&config.Directory)...)
	errs = append(errs, validateLogConfig(&config.Logging)...)
	return errs
}

func validateServerConfig(config *ServerConfig) []error {
	var errs []error

	if config.Address == "" {
		errs = append(errs, ValidationError{Field: "server.address", Message: "is required"})
	} else if err := validateAddress(config.Address); err != nil {
		errs = append(errs, ValidationError{Field: "server.address", Message: err.Error()})
	}

	if config.MaxConnections < 0 {
		errs = append(errs, ValidationError{Field: "server.maxConnections", Message: "must not be negative"})
	}
	if config.ReadTimeout < 0 {
		errs = append(errs, ValidationError{Field: "server.readTimeout", Message: "must not be negative"})
	}
	if config.WriteTimeout < 0 {
		errs = append(errs, ValidationError{Field: "server.writeTimeout", Message: "must not be negative"})
	}

	return errs
}

func validateBackendConfig(config *BackendConfig) []error {
	var errs []error

	switch strings.ToLower(config.Type) {
	case BackendMemory:
	case BackendRedis:
		if config.Redis.Address == "" {
			errs = append(errs, ValidationError{
				Field:   "backend.redis.address",
				Message: "is required for the redis backend",
			})
		} else if err := validateAddress(config.Redis.Address); err != nil {
			errs = append(errs, ValidationError{Field: "backend.redis.address", Message: err.Error()})
		}
		if config.Redis.DB < 0 {
			errs = append(errs, ValidationError{Field: "backend.redis.db", Message: "must not be negative"})
		}
	default:
		errs = append(errs, ValidationError{
			Field:   "backend.type",
			Message: fmt.Sprintf("must be %s or %s", BackendMemory, BackendRedis),
		})
	}

	return errs
}

func validateDirectoryConfig(config *DirectoryConfig) []error {
	var errs []error

	if err := validateDN(config.BaseDN); err != nil {
		errs = append(errs, ValidationError{Field: "directory.baseDN", Message: err.Error()})
	}
	if err := validateDN(config.RootDN); err != nil {
		errs = append(errs, ValidationError{Field: "directory.rootDN", Message: err.Error()})
	}
	if config.RootDN != "" && config.RootPassword == "" {
		errs = append(errs, ValidationError{
			Field:   "directory.rootPassword",
			Message: "is required when rootDN is set",
		})
	}

	return errs
}

func validateLogConfig(config *LogConfig) []error {
	var errs []error

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if config.Level != "" && !validLevels[strings.ToLower(config.Level)] {
		errs = append(errs, ValidationError{
			Field:   "logging.level",
			Message: "must be debug, info, warn, or error",
		})
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if config.Format != "" && !validFormats[strings.ToLower(config.Format)] {
		errs = append(errs, ValidationError{
			Field:   "logging.format",
			Message: "must be text or json",
		})
	}

	if config.MaxSizeMB < 0 || config.MaxBackups < 0 || config.MaxAgeDays < 0 {
		errs = append(errs, ValidationError{
			Field:   "logging",
			Message: "rotation limits must not be negative",
		})
	}

	return errs
}

// validateAddress validates a network address in host:port format.
func validateAddress(addr string) error {
	_, port, err := net.SplitHostPort(addr)
	if err != nil {
		return errors.Errorf("invalid address format: %v", err)
	}
	if port == "" {
		return errors.Errorf("port is required")
	}
	return nil
}

// validateDN validates a distinguished name format. Empty is valid.
func validateDN(dn string) error {
	for _, part := range strings.Split(dn, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !strings.Contains(part, "=") {
			return errors.Errorf("invalid RDN format: %s", part)
		}
	}
	return nil
}
