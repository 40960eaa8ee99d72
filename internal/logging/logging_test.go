package logging_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-voiceform/internal/config"
	"github.com/goliatone/go-voiceform/internal/logging"
)

func TestNew_WritesFormattedFields(t *testing.T) {
	cfg := config.Default()
	cfg.Env = "test"
	cfg.LogLevel = "debug"

	var buf bytes.Buffer
	logger, err := logging.New(cfg, logging.WithOutput(&buf), logging.WithoutColors(), logging.WithoutCaller())
	require.NoError(t, err)
	assert.Equal(t, logrus.DebugLevel, logger.GetLevel())

	logger.WithField("session_id", "abc").Debug("field updated")
	out := buf.String()
	assert.Contains(t, out, "field updated")
	assert.Contains(t, out, "session_id:abc")
}

func TestNew_RotatingFile(t *testing.T) {
	cfg := config.Default()
	cfg.LogDir = t.TempDir()

	var buf bytes.Buffer
	logger, err := logging.New(cfg, logging.WithOutput(&buf), logging.WithoutColors())
	require.NoError(t, err)

	logger.Info("hello file")

	matches, err := filepath.Glob(filepath.Join(cfg.LogDir, "voiceform-*.log"))
	require.NoError(t, err)
	require.Len(t, matches, 1)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello file")
}

func TestNew_RejectsUnknownLevel(t *testing.T) {
	cfg := config.Default()
	cfg.LogLevel = "chatty"
	_, err := logging.New(cfg)
	assert.Error(t, err)
}
