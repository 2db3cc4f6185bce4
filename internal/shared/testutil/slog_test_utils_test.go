package testutil

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBufferedSlogHandler(t *testing.T) {
	t.Run("captures log records", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Info("test message", slog.String("key", "value"))
		logger.Error("error message", slog.Int("code", 500))

		assert.Len(t, handler.GetRecords(), 2)
		assert.True(t, handler.ContainsMessage("test message"))
		assert.True(t, handler.ContainsAttr("key", "value"))
	})

	t.Run("filters by level", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.Debug("debug msg")
		logger.Info("info msg")
		logger.Warn("warn msg")

		assert.Len(t, handler.GetRecordsByLevel(slog.LevelDebug), 1)
		assert.Len(t, handler.GetRecordsByLevel(slog.LevelWarn), 1)
		assert.Empty(t, handler.GetRecordsByLevel(slog.LevelError))
	})

	t.Run("derived loggers share records and keep attrs", func(t *testing.T) {
		logger, handler := NewTestLogger(t)

		logger.With("component", "loader").Warn("fallback", "file_type", "json")

		rec, ok := handler.FindRecord("fallback")
		require.True(t, ok)
		assert.Equal(t, "loader", rec.Attrs["component"])
		assert.Equal(t, "json", rec.Attrs["file_type"])
		assert.Equal(t, 1, handler.Count())
	})

	t.Run("clear", func(t *testing.T) {
		logger, handler := NewTestLogger(t)
		logger.Info("x")
		handler.Clear()
		assert.Zero(t, handler.Count())
	})
}
