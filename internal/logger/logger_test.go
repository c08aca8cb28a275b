package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestInitWritesDailyFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(dir))
	t.Cleanup(Close)

	Warn("chdir %s failed", "/home/alice")
	Close()

	name := filepath.Join(dir, "logs", time.Now().Format("2006-01-02")+".log")
	b, err := os.ReadFile(name)
	require.NoError(t, err)
	assert.Contains(t, string(b), "chdir /home/alice failed")
	assert.Contains(t, string(b), "WARN")
}

func TestInitKeepsLogsSuffix(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	require.NoError(t, Init(dir))
	t.Cleanup(Close)

	_, err := os.Stat(dir)
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "logs"))
	assert.True(t, os.IsNotExist(err))
}

func TestSetOutputCapturesConsole(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(zapcore.AddSync(&buf))
	t.Cleanup(Close)

	Info("session %d started", 7)
	With("tty", "tty3").Info("structured")

	out := buf.String()
	assert.Contains(t, out, "session 7 started")
	assert.Contains(t, out, "tty3")
}

func TestEmptyDirIsNoop(t *testing.T) {
	require.NoError(t, Init(""))
}
