// Package envctx applies and reverses the session-scoped environment.
package envctx

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/hnrobert/ttylogin/internal/catalog"
	"github.com/hnrobert/ttylogin/internal/seat"
	"github.com/hnrobert/ttylogin/internal/tty"
)

// Always-set keys.
var owned = []string{
	"SHELL",
	"LOGNAME",
	"USER",
	"PWD",
	"HOME",
	"XDG_SESSION_TYPE",
	"XDG_DATA_HOME",
	"XDG_CONFIG_HOME",
	"XDG_CACHE_HOME",
	"DBUS_SESSION_BUS_ADDRESS",
}

// Keys set only when absent: pam_systemd or another session layer may have
// populated them already.
var cooperative = []string{
	"XDG_SESSION_CLASS",
	"XDG_RUNTIME_DIR",
	"XDG_VTNR",
	"XDG_SEAT",
	"XDG_SESSION_ID",
}

// Keys returns every key Apply may set and Reset always clears.
func Keys() []string {
	out := make([]string, 0, len(owned)+len(cooperative))
	out = append(out, owned...)
	return append(out, cooperative...)
}

// Inputs is everything Apply derives values from.
type Inputs struct {
	User    catalog.User
	Session catalog.Session
	Binding seat.Binding
	TTY     tty.Identity
}

// Values computes the value of every key in Keys for in.
func Values(in Inputs) map[string]string {
	home := in.User.Home
	uid := strconv.Itoa(in.User.UID)
	runtime := "/run/user/" + uid
	return map[string]string{
		"SHELL":                    in.User.Shell,
		"LOGNAME":                  in.User.Name,
		"USER":                     in.User.Name,
		"PWD":                      home,
		"HOME":                     home,
		"XDG_SESSION_TYPE":         string(in.Session.Type),
		"XDG_DATA_HOME":            filepath.Join(home, ".local/share"),
		"XDG_CONFIG_HOME":          filepath.Join(home, ".config"),
		"XDG_CACHE_HOME":           filepath.Join(home, ".cache"),
		"DBUS_SESSION_BUS_ADDRESS": "unix:path=" + runtime + "/bus",
		"XDG_SESSION_CLASS":        "user",
		"XDG_RUNTIME_DIR":          runtime,
		"XDG_VTNR":                 strconv.Itoa(in.TTY.VT(0)),
		"XDG_SEAT":                 in.Binding.Seat,
		"XDG_SESSION_ID":           in.Binding.SessionID,
	}
}

// Apply sets the session environment on env.
func Apply(env Environ, in Inputs) error {
	vals := Values(in)
	for _, k := range owned {
		if err := env.Set(k, vals[k]); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}
	for _, k := range cooperative {
		if _, ok := env.Lookup(k); ok {
			continue
		}
		if err := env.Set(k, vals[k]); err != nil {
			return fmt.Errorf("set %s: %w", k, err)
		}
	}
	return nil
}

// Reset removes every key in Keys from env, whoever set it. Every key is
// attempted even when one fails.
func Reset(env Environ) error {
	var errs []error
	for _, k := range Keys() {
		if err := env.Unset(k); err != nil {
			errs = append(errs, fmt.Errorf("unset %s: %w", k, err))
		}
	}
	return errors.Join(errs...)
}
