package logging

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_DefaultIsSlogAdapter(t *testing.T) {
	logger := NewLogger(Config{})
	require.NotNil(t, logger)

	_, ok := logger.(*SlogAdapter)
	assert.True(t, ok, "NewLogger должен возвращать *SlogAdapter")
}

func TestNewLoggerWithWriter_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(Config{Format: FormatText, Level: LevelWarn}, &buf)

	logger.Debug("debug строка")
	logger.Info("info строка")
	logger.Warn("warn строка")
	logger.Error("error строка")

	output := buf.String()
	assert.NotContains(t, output, "debug строка")
	assert.NotContains(t, output, "info строка")
	assert.Contains(t, output, "warn строка")
	assert.Contains(t, output, "error строка")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected slog.Level
	}{
		{LevelDebug, slog.LevelDebug},
		{LevelInfo, slog.LevelInfo},
		{LevelWarn, slog.LevelWarn},
		{LevelError, slog.LevelError},
		{"", slog.LevelWarn},
		{"trace", slog.LevelWarn},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestNewLoggerWithWriter_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(Config{Format: FormatJSON, Level: LevelInfo}, &buf)

	logger.Info("ранг готов", "rank", 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "ранг готов", entry["msg"])
	assert.Equal(t, "INFO", entry["level"])
	assert.EqualValues(t, 2, entry["rank"])
}

func TestForRank(t *testing.T) {
	var buf bytes.Buffer
	base := NewLoggerWithWriter(Config{Format: FormatText, Level: LevelInfo}, &buf)

	ForRank(base, 3, 8).Info("барьер пройден")

	output := buf.String()
	assert.Contains(t, output, "rank=3")
	assert.Contains(t, output, "size=8")

	assert.NotNil(t, ForRank(nil, 0, 1), "nil logger заменяется на NopLogger")
}

func TestSlogAdapter_WithReturnsNewLogger(t *testing.T) {
	var buf bytes.Buffer
	adapter := NewSlogAdapter(slog.New(slog.NewTextHandler(&buf, nil)))

	child := adapter.With("component", "hub")
	assert.NotSame(t, adapter, child)

	child.Info("child")
	adapter.Info("parent")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "component=hub")
	assert.NotContains(t, lines[1], "component=hub")
}

func TestNewSlogAdapter_Nil(t *testing.T) {
	adapter := NewSlogAdapter(nil)
	require.NotNil(t, adapter)
	assert.Equal(t, slog.Default(), adapter.Slog())
}

func TestNopLogger(t *testing.T) {
	var _ Logger = (*NopLogger)(nil)

	logger := NewNopLogger()
	assert.NotPanics(t, func() {
		logger.Debug("d")
		logger.Info("i", "k", "v")
		logger.Warn("w")
		logger.Error("e")
	})
	assert.Same(t, logger, logger.With("k", "v"))
}

func TestConfig_RankFilePath(t *testing.T) {
	cfg := Config{FilePath: "/tmp/rm/rank-" + RankPlaceholder + ".log", Rank: 5}
	assert.Equal(t, "/tmp/rm/rank-5.log", cfg.RankFilePath())

	cfg = Config{FilePath: "/tmp/single.log", Rank: 5}
	assert.Equal(t, "/tmp/single.log", cfg.RankFilePath())
}

func TestNewLogger_FileOutputPerRank(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.Output = OutputFile
	cfg.Level = LevelInfo
	cfg.FilePath = filepath.Join(dir, "nested", "rank-"+RankPlaceholder+".log")

	for _, rank := range []int{0, 1} {
		cfg.Rank = rank
		NewLogger(cfg).Info("запись ранга", "rank", rank)
	}

	for _, name := range []string{"rank-0.log", "rank-1.log"} {
		data, err := os.ReadFile(filepath.Join(dir, "nested", name))
		require.NoError(t, err, name)
		assert.Contains(t, string(data), "запись ранга")
	}
}

func TestNewLumberjackWriter_EmptyPathFallsBackToStderr(t *testing.T) {
	w := newLumberjackWriter(Config{Output: OutputFile})
	assert.Equal(t, os.Stderr, w)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultLevel, cfg.Level)
	assert.Equal(t, DefaultOutput, cfg.Output)
	assert.Contains(t, cfg.FilePath, RankPlaceholder)
}
