// Package config loads the geosymbol configuration file.
package config

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/njchilds90/geosymbol"
)

var (
	// ErrInvalidConfig wraps every parse and validation failure.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrConfigNotFound is returned when the config path does not exist.
	ErrConfigNotFound = errors.New("config file not found")
	// ErrUnsupportedFormat is returned for file extensions other than yaml, yml and json.
	ErrUnsupportedFormat = errors.New("unsupported config format")
)

type Config struct {
	Log       LogConfig       `yaml:"log"`
	Server    ServerConfig    `yaml:"server"`
	Store     StoreConfig     `yaml:"store"`
	Engine    EngineConfig    `yaml:"engine"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=trace debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required,hostname_port"`
	Rate            int           `yaml:"rate" validate:"gte=0"`
	Burst           int           `yaml:"burst" validate:"gte=0"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" validate:"gt=0"`
	ReadTimeout     time.Duration `yaml:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `yaml:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gt=0"`
}

type StoreConfig struct {
	Path       string `yaml:"path" validate:"required_without=InMemory"`
	InMemory   bool   `yaml:"in_memory"`
	SyncWrites bool   `yaml:"sync_writes"`
}

// EngineConfig selects the rules a run uses. An empty list means the three
// default rules.
type EngineConfig struct {
	Rules []string `yaml:"rules" validate:"dive,rule"`
}

type TelemetryConfig struct {
	ServiceName   string `yaml:"service_name" validate:"required"`
	TraceExporter string `yaml:"trace_exporter" validate:"oneof=none stdout"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "console"},
		Server: ServerConfig{
			Addr:            ":8080",
			Rate:            20,
			Burst:           40,
			MaxBodyBytes:    1 << 20,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Store: StoreConfig{Path: "geosymbol-data", SyncWrites: true},
		Telemetry: TelemetryConfig{
			ServiceName:   "geosymbol",
			TraceExporter: "none",
		},
	}
}

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("rule", validateRuleName)
}

func validateRuleName(fl validator.FieldLevel) bool {
	_, err := geosymbol.RulesByName([]string{fl.Field().String()})
	return err == nil
}

// Validate checks every field and reports all violations at once.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errors.Wrap(ErrInvalidConfig, err.Error())
	}
	var combined error
	for _, fe := range fieldErrs {
		combined = multierr.Append(combined, errors.Errorf("%s: failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
	}
	return errors.Wrap(ErrInvalidConfig, combined.Error())
}

// RuleSet resolves the configured rule names.
func (c *Config) RuleSet() ([]geosymbol.Rule, error) {
	return geosymbol.RulesByName(c.Engine.Rules)
}
