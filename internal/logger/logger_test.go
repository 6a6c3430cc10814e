package logger

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, ParseLevel("debug"))
	assert.Equal(t, slog.LevelWarn, ParseLevel(" WARN "))
	assert.Equal(t, slog.LevelError, ParseLevel("error"))
	assert.Equal(t, slog.LevelInfo, ParseLevel(""))
	assert.Equal(t, slog.LevelInfo, ParseLevel("verbose"))
}

func TestDailyFileRotatesAndPrunes(t *testing.T) {
	dir := t.TempDir()
	day := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	old := filepath.Join(dir, "app-2024-06-01.log")
	require.NoError(t, os.WriteFile(old, []byte("old\n"), 0o644))
	unrelated := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(unrelated, []byte("keep\n"), 0o644))

	now := day
	file, err := newDailyFile(dir, 3, func() time.Time { return now })
	require.NoError(t, err)
	defer file.Close()

	_, err = file.Write([]byte("first\n"))
	require.NoError(t, err)
	now = day.Add(24 * time.Hour)
	_, err = file.Write([]byte("second\n"))
	require.NoError(t, err)

	first, err := os.ReadFile(filepath.Join(dir, "app-2024-06-10.log"))
	require.NoError(t, err)
	assert.Equal(t, "first\n", string(first))
	second, err := os.ReadFile(filepath.Join(dir, "app-2024-06-11.log"))
	require.NoError(t, err)
	assert.Equal(t, "second\n", string(second))

	_, err = os.Stat(old)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(unrelated)
	assert.NoError(t, err)
}

func TestSetupWithoutDirectory(t *testing.T) {
	previous := slog.Default()
	defer slog.SetDefault(previous)

	cleanup, err := Setup(Config{Level: "debug"})
	require.NoError(t, err)
	cleanup()
	assert.True(t, slog.Default().Enabled(context.Background(), slog.LevelDebug))
}
