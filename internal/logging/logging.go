// Package logging builds the process logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	formatter "github.com/antonfisher/nested-logrus-formatter"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/goliatone/go-voiceform/internal/config"
)

// Fields aliases logrus.Fields for callers that only import this package.
type Fields = logrus.Fields

// Option customises New.
type Option func(*options)

type options struct {
	stderr io.Writer
	colors bool
	caller bool
}

// WithOutput replaces stderr as the console writer.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.stderr = w
		}
	}
}

// WithoutColors disables ANSI colours, e.g. for the MCP stdio transport.
func WithoutColors() Option {
	return func(o *options) {
		o.colors = false
	}
}

// WithoutCaller drops the caller prefix.
func WithoutCaller() Option {
	return func(o *options) {
		o.caller = false
	}
}

// New returns a logger configured from cfg. Logs go to stderr and, unless the
// environment is "test" or no log directory is set, to a rotating daily file.
func New(cfg config.Config, opts ...Option) (*logrus.Logger, error) {
	o := &options{stderr: os.Stderr, colors: true, caller: true}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&formatter.Formatter{
		NoColors:        !o.colors,
		TimestampFormat: "02 Jan 06 - 15:04:05",
		HideKeys:        false,
		CallerFirst:     true,
		CustomCallerFormatter: func(f *runtime.Frame) string {
			s := strings.Split(f.Function, ".")
			funcName := s[len(s)-1]
			if !o.colors {
				return fmt.Sprintf(" [%s:%d][%s()]", path.Base(f.File), f.Line, funcName)
			}
			return fmt.Sprintf(" \x1b[%dm[%s:%d][%s()]", 34, path.Base(f.File), f.Line, funcName)
		},
	})

	writers := []io.Writer{o.stderr}
	if !cfg.IsTest() && cfg.LogDir != "" {
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(cfg.LogDir, fmt.Sprintf("voiceform-%s.log", time.Now().Format("2006-01-02"))),
			LocalTime:  true,
			Compress:   true,
			MaxSize:    100,
			MaxAge:     7,
			MaxBackups: 3,
		})
	}

	logger.SetOutput(io.MultiWriter(writers...))
	logger.SetReportCaller(o.caller)
	return logger, nil
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
