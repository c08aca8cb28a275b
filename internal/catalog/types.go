// Package catalog supplies the users that may log in and the sessions they
// may start.
package catalog

import (
	"errors"
	"fmt"

	shlex "github.com/anmitsu/go-shlex"
)

var ErrEmptyCommand = errors.New("empty session command")

// User is an immutable login identity.
type User struct {
	Name  string
	UID   int
	GID   int
	Home  string
	Shell string
}

type SessionType string

const (
	SessionTTY     SessionType = "tty"
	SessionX11     SessionType = "x11"
	SessionWayland SessionType = "wayland"
)

func (t SessionType) Valid() bool {
	switch t {
	case SessionTTY, SessionX11, SessionWayland:
		return true
	}
	return false
}

// Session is a launchable command.
type Session struct {
	Name string      `toml:"name"`
	Type SessionType `toml:"type"`
	Cmd  string      `toml:"cmd"`
}

// Argv splits Cmd into a program and its arguments using shell word rules.
func (s Session) Argv() ([]string, error) {
	argv, err := shlex.Split(s.Cmd, true)
	if err != nil {
		return nil, fmt.Errorf("session %q: %w", s.Name, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("session %q: %w", s.Name, ErrEmptyCommand)
	}
	return argv, nil
}
