package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMissingFileUsesDefaults(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "config.toml"))
	cfg, err := s.Get()
	require.NoError(t, err)

	assert.Equal(t, "/etc/passwd", cfg.Login.UserFile)
	assert.Equal(t, "/etc/shadow", cfg.Login.ShadowFile)
	assert.Equal(t, 1000, cfg.Login.MinUID)
	assert.True(t, cfg.Login.SaveSelection)
	assert.True(t, cfg.Login.SuFallback)
	assert.False(t, cfg.Login.IncludeRoot)
	assert.Equal(t, "/var/run/utmp", cfg.Accounting.UtmpFile)
	assert.Equal(t, "/var/log/wtmp", cfg.Accounting.WtmpFile)
	assert.Equal(t, "", cfg.Log.Dir)
	assert.Equal(t, time.Second, cfg.Launch.SpawnFailureDelay)
	assert.Equal(t, 3*time.Second, cfg.Launch.RegistryTimeout)
}

func TestEnsureWritesLoadableDefaults(t *testing.T) {
	p := filepath.Join(t.TempDir(), "etc", "config.toml")
	s := NewStore(p)
	require.NoError(t, s.Ensure())

	b, err := os.ReadFile(p)
	require.NoError(t, err)
	assert.Contains(t, string(b), "[login]")
	assert.Contains(t, string(b), "spawn_failure_delay")

	cfg, err := s.Get()
	require.NoError(t, err)
	assert.Equal(t, 1000, cfg.Login.MinUID)
	assert.Equal(t, time.Second, cfg.Launch.SpawnFailureDelay)

	// An existing file is left alone.
	require.NoError(t, os.WriteFile(p, []byte("[login]\nmin_uid = 500\n"), 0o644))
	require.NoError(t, s.Ensure())
	cfg, err = s.Get()
	require.NoError(t, err)
	assert.Equal(t, 500, cfg.Login.MinUID)
}

func TestGetFileOverrides(t *testing.T) {
	p := filepath.Join(t.TempDir(), "config.toml")
	body := `
[login]
min_uid = 100
include_root = true
session_file = "/tmp/sessions.toml"

[accounting]
wtmp_file = ""

[launch]
spawn_failure_delay = "250ms"
`
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))

	cfg, err := NewStore(p).Get()
	require.NoError(t, err)
	assert.Equal(t, 100, cfg.Login.MinUID)
	assert.True(t, cfg.Login.IncludeRoot)
	assert.Equal(t, "/tmp/sessions.toml", cfg.Login.SessionFile)
	assert.Equal(t, "", cfg.Accounting.WtmpFile)
	assert.Equal(t, 250*time.Millisecond, cfg.Launch.SpawnFailureDelay)
	assert.Equal(t, 3*time.Second, cfg.Launch.RegistryTimeout)
	assert.Equal(t, "/etc/shadow", cfg.Login.ShadowFile)
}

func TestGetEnvOverride(t *testing.T) {
	t.Setenv("TTYLOGIN_LOGIN_MIN_UID", "2000")
	t.Setenv("TTYLOGIN_LOG_DIR", "/var/log/ttylogin")
	cfg, err := NewStore(filepath.Join(t.TempDir(), "config.toml")).Get()
	require.NoError(t, err)
	assert.Equal(t, 2000, cfg.Login.MinUID)
	assert.Equal(t, "/var/log/ttylogin", cfg.Log.Dir)
}

func TestGetRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	broken := filepath.Join(dir, "broken.toml")
	require.NoError(t, os.WriteFile(broken, []byte("[login\nmin_uid = "), 0o644))
	_, err := NewStore(broken).Get()
	require.Error(t, err)

	negative := filepath.Join(dir, "negative.toml")
	require.NoError(t, os.WriteFile(negative, []byte("[login]\nmin_uid = -1\n"), 0o644))
	_, err = NewStore(negative).Get()
	require.Error(t, err)
}

func TestNewStoreDefaultPath(t *testing.T) {
	assert.Equal(t, "/etc/ttylogin/config.toml", NewStore("").Path())
}
