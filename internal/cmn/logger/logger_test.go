package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dagucloud/txtwriter/internal/cmn/logger"
	"github.com/dagucloud/txtwriter/internal/cmn/logger/tag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger(t *testing.T) {
	t.Parallel()

	t.Run("TextToConsole", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.NewLogger(logger.WithConsole(&buf))
		log.Info("hello", tag.Task("t-1"))

		out := buf.String()
		assert.Contains(t, out, "msg=hello")
		assert.Contains(t, out, "task=t-1")
	})

	t.Run("DebugFilteredByDefault", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.NewLogger(logger.WithConsole(&buf))
		log.Debug("hidden")
		assert.Empty(t, buf.String())
	})

	t.Run("DebugEnabled", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.NewLogger(logger.WithConsole(&buf), logger.WithDebug())
		log.Debug("shown")
		assert.Contains(t, buf.String(), "shown")
	})

	t.Run("QuietStillWritesToFile", func(t *testing.T) {
		t.Parallel()
		var console, file bytes.Buffer
		log := logger.NewLogger(
			logger.WithConsole(&console),
			logger.WithWriter(&file),
			logger.WithQuiet(),
			logger.WithFormat("json"),
		)
		log.Warn("careful", tag.Count(3))

		assert.Empty(t, console.String())
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(file.String())), &entry))
		assert.Equal(t, "careful", entry["msg"])
		assert.Equal(t, "WARN", entry["level"])
		assert.EqualValues(t, 3, entry["count"])
	})

	t.Run("WithAttrs", func(t *testing.T) {
		t.Parallel()
		var buf bytes.Buffer
		log := logger.NewLogger(logger.WithConsole(&buf)).With(tag.Job("daily"))
		log.Error("boom")
		assert.Contains(t, buf.String(), "job=daily")
	})
}

func TestContext(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := logger.WithLogger(context.Background(), logger.NewLogger(logger.WithConsole(&buf)))
	ctx = logger.WithValues(ctx, tag.Task("w-2"))

	logger.Info(ctx, "from context", tag.File("/tmp/a"))
	out := buf.String()
	assert.Contains(t, out, "task=w-2")
	assert.Contains(t, out, "file=/tmp/a")

	assert.NotNil(t, logger.FromContext(context.Background()))
}
