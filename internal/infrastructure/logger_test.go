package infrastructure

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Zeyna175/data-processor-app/internal/config"
)

func readLastLogLine(t *testing.T, path string) map[string]interface{} {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(content)), "\n")
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &entry))
	return entry
}

func TestInitializeLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "test.log")
	logger, err := InitializeLogger(config.LoggingConfig{
		Level:    "info",
		Output:   "file",
		FilePath: logFile,
	})
	require.NoError(t, err)
	require.NotNil(t, logger)

	logger.Info("test message", "key", "value")
	require.NoError(t, CloseLogFile())

	entry := readLastLogLine(t, logFile)
	assert.Equal(t, "test message", entry["msg"])
	assert.Equal(t, "value", entry["key"])
	assert.Equal(t, "INFO", entry["level"])
	assert.Same(t, logger, GetLogger())
}

func TestTraceIDInjection(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	logFile := filepath.Join(t.TempDir(), "test.log")
	_, err := InitializeLogger(config.LoggingConfig{
		Level:    "debug",
		Output:   "file",
		FilePath: logFile,
	})
	require.NoError(t, err)

	ctx := WithTraceID(context.Background(), "test-trace-123")
	GetLogger().InfoContext(ctx, "test with trace")
	require.NoError(t, CloseLogFile())

	entry := readLastLogLine(t, logFile)
	assert.Equal(t, "test-trace-123", entry["trace_id"])
}

func TestLogLevels(t *testing.T) {
	tests := []struct {
		level   string
		logged  []string
		dropped []string
	}{
		{level: "debug", logged: []string{"debug", "info", "error"}},
		{level: "info", logged: []string{"info", "warn"}, dropped: []string{"debug"}},
		{level: "warning", logged: []string{"warn"}, dropped: []string{"info"}},
		{level: "error", logged: []string{"error"}, dropped: []string{"warn"}},
		{level: "unknown", logged: []string{"info"}, dropped: []string{"debug"}},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			var buf bytes.Buffer
			logger := NewLoggerWithWriter(&buf, &slog.HandlerOptions{Level: parseLogLevel(tt.level)})

			emit := map[string]func(string, ...any){
				"debug": logger.Debug,
				"info":  logger.Info,
				"warn":  logger.Warn,
				"error": logger.Error,
			}
			for _, l := range append(append([]string{}, tt.logged...), tt.dropped...) {
				emit[l]("msg-" + l)
			}

			out := buf.String()
			for _, l := range tt.logged {
				assert.Contains(t, out, "msg-"+l)
			}
			for _, l := range tt.dropped {
				assert.NotContains(t, out, "msg-"+l)
			}
		})
	}
}

func TestContextHelpers(t *testing.T) {
	ctx := EnsureTraceID(context.Background())
	traceID := GetTraceID(ctx)
	assert.NotEmpty(t, traceID)

	// existing trace ids are kept
	assert.Equal(t, traceID, GetTraceID(EnsureTraceID(ctx)))
	assert.Empty(t, GetTraceID(context.Background()))
}

func TestLoggerHelpers(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(&buf, nil)

	WithComponent(logger, "loader").Info("component message")
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "loader", entry["component"])

	buf.Reset()
	WithError(logger, os.ErrNotExist).Info("error message")
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, os.ErrNotExist.Error(), entry["error"])

	assert.Same(t, logger, WithError(logger, nil))
}

func TestWithComponent_NilLoggerUsesProcessLogger(t *testing.T) {
	ResetLoggerForTesting()
	defer ResetLoggerForTesting()

	var buf bytes.Buffer
	globalLogger = NewLoggerWithWriter(&buf, nil)

	ctx := WithTraceID(context.Background(), "abc")
	WithComponent(nil, "pipeline").InfoContext(ctx, "hello")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))[0], &entry))
	assert.Equal(t, "pipeline", entry["component"])
	assert.Equal(t, "abc", entry["trace_id"])
}
