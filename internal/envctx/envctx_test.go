package envctx

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnrobert/ttylogin/internal/catalog"
	"github.com/hnrobert/ttylogin/internal/seat"
	"github.com/hnrobert/ttylogin/internal/tty"
)

func aliceInputs() Inputs {
	return Inputs{
		User:    catalog.User{Name: "alice", UID: 1001, GID: 1001, Home: "/home/alice", Shell: "/bin/bash"},
		Session: catalog.Session{Name: "bash", Type: catalog.SessionTTY, Cmd: "/bin/bash"},
		Binding: seat.Binding{SessionID: "5", Seat: "seat0", Found: true},
		TTY:     tty.FromPath("/dev/tty3"),
	}
}

func TestKeysAreFifteenAndUnique(t *testing.T) {
	keys := Keys()
	assert.Len(t, keys, 15)
	seen := map[string]bool{}
	for _, k := range keys {
		assert.False(t, seen[k], "duplicate key %s", k)
		seen[k] = true
	}
	assert.Len(t, Values(aliceInputs()), 15, "every key has a computed value")
}

func TestApplySetsValues(t *testing.T) {
	env := NewMap("PATH=/usr/bin")
	require.NoError(t, Apply(env, aliceInputs()))

	want := map[string]string{
		"HOME":                     "/home/alice",
		"PWD":                      "/home/alice",
		"USER":                     "alice",
		"LOGNAME":                  "alice",
		"SHELL":                    "/bin/bash",
		"XDG_SESSION_TYPE":         "tty",
		"XDG_DATA_HOME":            "/home/alice/.local/share",
		"XDG_CONFIG_HOME":          "/home/alice/.config",
		"XDG_CACHE_HOME":           "/home/alice/.cache",
		"DBUS_SESSION_BUS_ADDRESS": "unix:path=/run/user/1001/bus",
		"XDG_SESSION_CLASS":        "user",
		"XDG_RUNTIME_DIR":          "/run/user/1001",
		"XDG_VTNR":                 "3",
		"XDG_SEAT":                 "seat0",
		"XDG_SESSION_ID":           "5",
	}
	for k, v := range want {
		got, ok := env.Lookup(k)
		assert.True(t, ok, k)
		assert.Equal(t, v, got, k)
	}
	path, _ := env.Lookup("PATH")
	assert.Equal(t, "/usr/bin", path)
}

func TestApplyVTNRZeroWithoutNumber(t *testing.T) {
	in := aliceInputs()
	in.TTY = tty.FromPath(tty.Unknown)
	env := NewMap()
	require.NoError(t, Apply(env, in))
	v, _ := env.Lookup("XDG_VTNR")
	assert.Equal(t, "0", v)
}

func TestApplyKeepsCooperativeKeys(t *testing.T) {
	env := NewMap("XDG_SEAT=seat9", "XDG_RUNTIME_DIR=/run/user/custom", "HOME=/old")
	require.NoError(t, Apply(env, aliceInputs()))

	seatVal, _ := env.Lookup("XDG_SEAT")
	assert.Equal(t, "seat9", seatVal)
	rt, _ := env.Lookup("XDG_RUNTIME_DIR")
	assert.Equal(t, "/run/user/custom", rt)
	home, _ := env.Lookup("HOME")
	assert.Equal(t, "/home/alice", home, "always-set keys are overwritten")

	require.NoError(t, Reset(env))
	_, ok := env.Lookup("XDG_SEAT")
	assert.False(t, ok, "reset clears keys set by others too")
}

func TestRoundTripClearsEveryKey(t *testing.T) {
	initial := [][]string{
		nil,
		{"XDG_SEAT=seat1", "XDG_SESSION_ID=c2"},
		{"HOME=/root", "XDG_VTNR=9", "TERM=linux"},
	}
	for _, pairs := range initial {
		env := NewMap(pairs...)
		require.NoError(t, Apply(env, aliceInputs()))
		require.NoError(t, Reset(env))
		for _, k := range Keys() {
			_, ok := env.Lookup(k)
			assert.False(t, ok, "%s survived reset (initial %v)", k, pairs)
		}
	}
}

func TestResetIsIdempotent(t *testing.T) {
	env := NewMap("TERM=linux")
	require.NoError(t, Reset(env))
	require.NoError(t, Reset(env))
	assert.Equal(t, []string{"TERM=linux"}, env.Environ())
}

type failingEnv struct {
	*Map
	failOn string
	unset  []string
}

func (f *failingEnv) Unset(key string) error {
	f.unset = append(f.unset, key)
	if key == f.failOn {
		return errors.New("boom")
	}
	return f.Map.Unset(key)
}

func TestResetAttemptsAllKeys(t *testing.T) {
	env := &failingEnv{Map: NewMap(), failOn: "HOME"}
	require.NoError(t, Apply(env, aliceInputs()))

	err := Reset(env)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unset HOME")
	assert.Equal(t, Keys(), env.unset)
}

func TestProcessEnvRoundTrip(t *testing.T) {
	for _, k := range Keys() {
		t.Setenv(k, "preset")
	}
	env := Process()
	require.NoError(t, Reset(env))
	require.NoError(t, Apply(env, aliceInputs()))
	require.NoError(t, Reset(env))
	for _, k := range Keys() {
		_, ok := env.Lookup(k)
		assert.False(t, ok, k)
	}
}
