// Package config loads process settings from the environment, after an
// optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Environment keys.
const (
	EnvAppEnv      = "APP_ENV"
	EnvPort        = "APP_PORT"
	EnvLogLevel    = "LOG_LEVEL"
	EnvLogDir      = "LOG_DIR"
	EnvSchemaDir   = "VOICEFORM_SCHEMA_DIR"
	EnvBaseMinutes = "VOICEFORM_BASE_MINUTES"
	EnvRateLimit   = "VOICEFORM_RATE_LIMIT"
	EnvRateBurst   = "VOICEFORM_RATE_BURST"
	EnvSessionTTL  = "VOICEFORM_SESSION_TTL"

	// Comma separated payload keys tried, in order, for the field name and
	// the value of a tool call. Unset keeps the built-in lists.
	EnvPayloadFieldKeys = "VOICEFORM_PAYLOAD_FIELD_KEYS"
	EnvPayloadValueKeys = "VOICEFORM_PAYLOAD_VALUE_KEYS"
)

// Config holds every runtime setting.
type Config struct {
	Env         string        `validate:"required,oneof=development production test"`
	Port        string        `validate:"required,numeric"`
	LogLevel    string        `validate:"required,oneof=trace debug info warn warning error fatal panic"`
	LogDir      string
	SchemaDir   string
	BaseMinutes int           `validate:"gte=1,lte=600"`
	RateLimit   float64       `validate:"gt=0"`
	RateBurst   int           `validate:"gte=1"`
	SessionTTL  time.Duration `validate:"gte=1s"`

	PayloadFieldKeys []string `validate:"dive,required"`
	PayloadValueKeys []string `validate:"dive,required"`
}

// Default returns the settings used when no variable is set.
func Default() Config {
	return Config{
		Env:         "development",
		Port:        "3000",
		LogLevel:    "info",
		BaseMinutes: 15,
		RateLimit:   50,
		RateBurst:   100,
		SessionTTL:  2 * time.Hour,
	}
}

// NewValidator returns the validator shared by config and request DTOs.
func NewValidator() *validator.Validate {
	return validator.New(validator.WithRequiredStructEnabled())
}

// Load reads the given .env files (".env" when none are named) into the
// process environment and builds a validated Config. Missing files are
// ignored.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", file, err)
		}
	}
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a validated Config from lookup, typically os.LookupEnv.
func FromLookup(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvAppEnv); ok {
		cfg.Env = strings.ToLower(v)
	}
	if v, ok := get(EnvPort); ok {
		cfg.Port = v
	}
	if v, ok := get(EnvLogLevel); ok {
		cfg.LogLevel = strings.ToLower(v)
	}
	if v, ok := get(EnvLogDir); ok {
		cfg.LogDir = v
	}
	if v, ok := get(EnvSchemaDir); ok {
		cfg.SchemaDir = v
	}

	if v, ok := get(EnvPayloadFieldKeys); ok {
		cfg.PayloadFieldKeys = splitList(v)
	}
	if v, ok := get(EnvPayloadValueKeys); ok {
		cfg.PayloadValueKeys = splitList(v)
	}

	var err error
	if v, ok := get(EnvBaseMinutes); ok {
		if cfg.BaseMinutes, err = strconv.Atoi(v); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvBaseMinutes, err)
		}
	}
	if v, ok := get(EnvRateLimit); ok {
		if cfg.RateLimit, err = strconv.ParseFloat(v, 64); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvRateLimit, err)
		}
	}
	if v, ok := get(EnvRateBurst); ok {
		if cfg.RateBurst, err = strconv.Atoi(v); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvRateBurst, err)
		}
	}
	if v, ok := get(EnvSessionTTL); ok {
		if cfg.SessionTTL, err = time.ParseDuration(v); err != nil {
			return Config{}, fmt.Errorf("config: %s: %w", EnvSessionTTL, err)
		}
	}

	if err := NewValidator().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// IsTest reports whether the process runs under tests.
func (c Config) IsTest() bool {
	return c.Env == "test"
}
