// Package nexus loads module configuration from the environment, with an
// optional file underlay. Environment variables win over file values, and
// the merged result is validated before use.
package nexus

import (
	"fmt"
	"os"
	"reflect"

	"dario.cat/mergo"
	"github.com/go-playground/validator/v10"
	"github.com/ilyakaznacheev/cleanenv"
)

// ConfigError wraps a loading failure with a stable code.
type ConfigError struct {
	Code    string
	Message string
	Cause   error
}

func (e ConfigError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e ConfigError) Unwrap() error {
	return e.Cause
}

const (
	ErrCodeInvalidType  = "CONFIG_INVALID_TYPE"
	ErrCodeFileNotFound = "CONFIG_FILE_NOT_FOUND"
	ErrCodeValidation   = "CONFIG_VALIDATION_FAILED"
	ErrCodeEnvironment  = "CONFIG_ENV_READ_FAILED"
	ErrCodeMerge        = "CONFIG_MERGE_FAILED"
)

// Loader reads configuration into a struct with env tags.
type Loader struct {
	fileName string
	validate *validator.Validate
}

// LoaderOption is a functional option for configuring the loader
type LoaderOption func(*Loader)

// WithFileName sets a configuration file read underneath the environment.
// A missing file is only an error when it was requested explicitly.
func WithFileName(fileName string) LoaderOption {
	return func(l *Loader) {
		l.fileName = fileName
	}
}

// NewLoader creates a new configuration loader with options
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{validate: validator.New()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load populates cfg from the environment (and the configured file), then
// validates it. cfg must be a pointer to struct.
func (l *Loader) Load(cfg interface{}) error {
	if reflect.ValueOf(cfg).Kind() != reflect.Ptr {
		return &ConfigError{
			Code:    ErrCodeInvalidType,
			Message: fmt.Sprintf("configuration must be a pointer to struct, got %T", cfg),
		}
	}

	if err := cleanenv.ReadEnv(cfg); err != nil {
		return &ConfigError{
			Code:    ErrCodeEnvironment,
			Message: "failed to read environment variables",
			Cause:   err,
		}
	}

	if l.fileName != "" {
		if err := l.mergeFile(cfg); err != nil {
			return err
		}
	}

	if err := l.validate.Struct(cfg); err != nil {
		return &ConfigError{
			Code:    ErrCodeValidation,
			Message: "configuration validation failed",
			Cause:   err,
		}
	}

	return nil
}

func (l *Loader) mergeFile(cfg interface{}) error {
	if _, err := os.Stat(l.fileName); err != nil {
		return &ConfigError{
			Code:    ErrCodeFileNotFound,
			Message: fmt.Sprintf("failed to read configuration file: %s", l.fileName),
			Cause:   err,
		}
	}

	fileCfg := reflect.New(reflect.ValueOf(cfg).Elem().Type()).Interface()
	if err := cleanenv.ReadConfig(l.fileName, fileCfg); err != nil {
		return &ConfigError{
			Code:    ErrCodeFileNotFound,
			Message: fmt.Sprintf("failed to read configuration file: %s", l.fileName),
			Cause:   err,
		}
	}

	// Environment values already in cfg take precedence over file values.
	if err := mergo.Merge(cfg, fileCfg); err != nil {
		return &ConfigError{
			Code:    ErrCodeMerge,
			Message: "failed to merge configuration sources",
			Cause:   err,
		}
	}

	return nil
}
