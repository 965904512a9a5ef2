package tui

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplog(t *testing.T) {
	t.Run("writes info warnings and errors to the console", func(t *testing.T) {
		var buf bytes.Buffer
		splog, err := NewSplogWithConfig(SplogOptions{Writer: &buf})
		require.NoError(t, err)

		splog.Info("picked %d commits", 3)
		splog.Warn("tree is dirty")
		splog.Error("fast-forward failed")

		out := buf.String()
		require.Contains(t, out, "picked 3 commits\n")
		require.Contains(t, out, "⚠️  tree is dirty\n")
		require.Contains(t, out, "❌ fast-forward failed\n")
	})

	t.Run("debug only shows in verbose mode", func(t *testing.T) {
		t.Setenv("DEBUG", "")
		var quiet, verbose bytes.Buffer

		s1, err := NewSplogWithConfig(SplogOptions{Writer: &quiet})
		require.NoError(t, err)
		s1.Debug("hidden")

		s2, err := NewSplogWithConfig(SplogOptions{Writer: &verbose, Verbose: true})
		require.NoError(t, err)
		s2.Debug("shown")

		require.Empty(t, quiet.String())
		require.Equal(t, "shown\n", verbose.String())
	})

	t.Run("log file receives debug records tagged with the run id", func(t *testing.T) {
		t.Setenv("DEBUG", "")
		var buf bytes.Buffer
		logPath := filepath.Join(t.TempDir(), "logs", "backport.log")

		splog, err := NewSplogWithConfig(SplogOptions{Writer: &buf, LogFilePath: logPath, RunID: "run-1234"})
		require.NoError(t, err)
		splog.Debug("considering %s", "abc123")
		require.NoError(t, splog.Close())

		data, err := os.ReadFile(logPath)
		require.NoError(t, err)
		require.Contains(t, string(data), "considering abc123")
		require.Contains(t, string(data), "run=run-1234")
		require.Empty(t, buf.String())
	})
}

func TestRotatingLog(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		t.Setenv(LogMaxSizeEnv, "")
		t.Setenv(LogMaxBackupsEnv, "")
		t.Setenv(LogMaxAgeEnv, "")

		l := rotatingLog("backport.log")
		require.Equal(t, "backport.log", l.Filename)
		require.Equal(t, 1, l.MaxSize)
		require.Equal(t, 2, l.MaxBackups)
		require.Equal(t, 30, l.MaxAge)
		require.False(t, l.Compress)
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv(LogMaxSizeEnv, "5")
		t.Setenv(LogMaxBackupsEnv, "0")
		t.Setenv(LogMaxAgeEnv, "7")

		l := rotatingLog("backport.log")
		require.Equal(t, 5, l.MaxSize)
		require.Equal(t, 0, l.MaxBackups)
		require.Equal(t, 7, l.MaxAge)
	})

	t.Run("invalid values are ignored", func(t *testing.T) {
		t.Setenv(LogMaxSizeEnv, "0")
		t.Setenv(LogMaxBackupsEnv, "-1")
		t.Setenv(LogMaxAgeEnv, "soon")

		l := rotatingLog("backport.log")
		require.Equal(t, 1, l.MaxSize)
		require.Equal(t, 2, l.MaxBackups)
		require.Equal(t, 30, l.MaxAge)
	})
}
