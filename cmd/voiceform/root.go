package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-voiceform"
	"github.com/goliatone/go-voiceform/internal/config"
	"github.com/goliatone/go-voiceform/internal/logging"
	"github.com/goliatone/go-voiceform/pkg/extract"
	"github.com/goliatone/go-voiceform/pkg/interview"
	"github.com/goliatone/go-voiceform/pkg/metrics"
	"github.com/goliatone/go-voiceform/pkg/schema"
	"github.com/goliatone/go-voiceform/pkg/session"
)

type rootFlags struct {
	envFiles  []string
	schemaDir string
}

func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "voiceform",
		Short:         "Voice-driven life insurance e-interview",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringSliceVar(&flags.envFiles, "env-file", nil, "dotenv files to load (default .env)")
	cmd.PersistentFlags().StringVar(&flags.schemaDir, "schema-dir", "", "directory holding the questionnaire document (overrides VOICEFORM_SCHEMA_DIR)")

	cmd.AddCommand(
		newServeCmd(flags),
		newMCPCmd(flags),
		newInterviewCmd(flags),
		newSchemaCmd(flags),
		newExtractCmd(flags),
		newResolveCmd(flags),
	)
	return cmd
}

// app is the wiring shared by every subcommand.
type app struct {
	cfg      config.Config
	logger   *logrus.Logger
	engine   *voiceform.Engine
	gatherer prometheus.Gatherer
}

func bootstrap(flags *rootFlags, logOpts ...logging.Option) (*app, error) {
	cfg, err := config.Load(flags.envFiles...)
	if err != nil {
		return nil, err
	}
	if flags.schemaDir != "" {
		cfg.SchemaDir = flags.schemaDir
	}

	logger, err := logging.New(cfg, logOpts...)
	if err != nil {
		return nil, err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())

	opts := []voiceform.Option{
		voiceform.WithLogger(logger),
		voiceform.WithRecorder(metrics.NewPrometheusRecorder(reg)),
		voiceform.WithBaseMinutes(cfg.BaseMinutes),
		voiceform.WithSessionTTL(cfg.SessionTTL),
		voiceform.WithSessionOptions(
			session.WithNotifier(session.LogNotifier{Logger: logger}),
			session.WithObserver(auditEvents(logger)),
			session.WithExtractorOptions(extract.WithPayloadKeys(cfg.PayloadFieldKeys, cfg.PayloadValueKeys)),
		),
	}
	if cfg.SchemaDir != "" {
		s, err := schema.LoadDir(cfg.SchemaDir)
		if err != nil {
			return nil, err
		}
		opts = append(opts, voiceform.WithSchema(s))
	}

	engine, err := voiceform.New(opts...)
	if err != nil {
		return nil, err
	}

	logger.WithFields(logrus.Fields{
		"env":      cfg.Env,
		"sections": engine.Schema().SectionCount(),
		"fields":   engine.Schema().TotalFields(),
	}).Debug("questionnaire loaded")

	return &app{cfg: cfg, logger: logger, engine: engine, gatherer: reg}, nil
}

// auditEvents logs interview state changes without the answer values.
func auditEvents(logger logrus.FieldLogger) interview.Observer {
	return func(ev interview.Event) {
		logger.WithFields(logrus.Fields{
			"event":    string(ev.Kind),
			"field_id": ev.FieldID,
			"cursor":   ev.Cursor,
		}).Debug("interview state changed")
	}
}
