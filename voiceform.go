package voiceform

import (
	"errors"
	"io/fs"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/goliatone/go-voiceform/pkg/metrics"
	"github.com/goliatone/go-voiceform/pkg/model"
	"github.com/goliatone/go-voiceform/pkg/schema"
	"github.com/goliatone/go-voiceform/pkg/session"
)

// Schema aliases model.Schema for callers that only import the root package.
type Schema = model.Schema

// Session aliases session.Session.
type Session = session.Session

// Registry aliases session.Registry.
type Registry = session.Registry

// Notification aliases session.Notification.
type Notification = session.Notification

// Engine holds the schema and session registry shared by every interview a
// process runs.
type Engine struct {
	schema   *model.Schema
	registry *session.Registry
	logger   *logrus.Logger
}

type engineConfig struct {
	schema      *model.Schema
	schemaFS    fs.FS
	schemaPath  string
	logger      *logrus.Logger
	recorder    metrics.Recorder
	baseMinutes int
	ttl         time.Duration
	sessionOpts []session.Option
}

// Option configures New.
type Option func(*engineConfig)

// WithSchema uses s instead of the embedded life-insurance questionnaire.
func WithSchema(s *model.Schema) Option {
	return func(c *engineConfig) {
		c.schema = s
	}
}

// WithSchemaFS loads the schema document at path from fsys.
func WithSchemaFS(fsys fs.FS, path string) Option {
	return func(c *engineConfig) {
		c.schemaFS = fsys
		c.schemaPath = path
	}
}

// WithLogger sets the logger handed to every session.
func WithLogger(logger *logrus.Logger) Option {
	return func(c *engineConfig) {
		c.logger = logger
	}
}

// WithRecorder reports session and pipeline metrics to rec.
func WithRecorder(rec metrics.Recorder) Option {
	return func(c *engineConfig) {
		c.recorder = rec
	}
}

// WithBaseMinutes sets the estimated interview length in minutes.
func WithBaseMinutes(minutes int) Option {
	return func(c *engineConfig) {
		c.baseMinutes = minutes
	}
}

// WithSessionTTL sets how long idle sessions survive Registry.Sweep.
func WithSessionTTL(ttl time.Duration) Option {
	return func(c *engineConfig) {
		c.ttl = ttl
	}
}

// WithSessionOptions applies opts to every session the engine creates.
func WithSessionOptions(opts ...session.Option) Option {
	return func(c *engineConfig) {
		c.sessionOpts = append(c.sessionOpts, opts...)
	}
}

// New builds an Engine. Without a schema option the embedded questionnaire
// is used.
func New(options ...Option) (*Engine, error) {
	cfg := engineConfig{recorder: metrics.Nop{}}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}

	s, err := cfg.loadSchema()
	if err != nil {
		return nil, err
	}

	logger := cfg.logger
	if logger == nil {
		logger = logrus.New()
		logger.SetLevel(logrus.PanicLevel)
	}

	sessionOpts := []session.Option{session.WithLogger(logger)}
	if cfg.baseMinutes > 0 {
		sessionOpts = append(sessionOpts, session.WithBaseMinutes(cfg.baseMinutes))
	}
	sessionOpts = append(sessionOpts, cfg.sessionOpts...)

	registry := session.NewRegistry(s,
		session.WithTTL(cfg.ttl),
		session.WithRegistryRecorder(cfg.recorder),
		session.WithSessionOptions(sessionOpts...),
	)
	return &Engine{schema: s, registry: registry, logger: logger}, nil
}

func (c engineConfig) loadSchema() (*model.Schema, error) {
	switch {
	case c.schema != nil && c.schemaFS != nil:
		return nil, errors.New("voiceform: WithSchema and WithSchemaFS are mutually exclusive")
	case c.schema != nil:
		return c.schema, c.schema.Validate()
	case c.schemaFS != nil:
		return schema.LoadFS(c.schemaFS, c.schemaPath)
	default:
		return schema.Default()
	}
}

// Schema returns the questionnaire the engine serves.
func (e *Engine) Schema() *Schema {
	return e.schema
}

// Registry exposes the live sessions.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Logger returns the logger handed to sessions.
func (e *Engine) Logger() *logrus.Logger {
	return e.logger
}

// NewSession starts and registers a new interview.
func (e *Engine) NewSession(opts ...session.Option) (*Session, error) {
	return e.registry.Create(opts...)
}

// DefaultSchema returns the embedded life-insurance questionnaire.
func DefaultSchema() (*Schema, error) {
	return schema.Default()
}

// LoadSchema reads a YAML or JSON questionnaire from fsys.
func LoadSchema(fsys fs.FS, path string) (*Schema, error) {
	return schema.LoadFS(fsys, path)
}
