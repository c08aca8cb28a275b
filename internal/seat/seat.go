// Package seat maps a (user, tty) pair to the host's logind session and seat.
package seat

import (
	"context"
	"strings"

	"github.com/hnrobert/ttylogin/internal/logger"
)

const (
	DefaultSessionID = "1"
	DefaultSeat      = "seat0"
)

// Binding is the logical session and seat of a login. Found is false when the
// values are the documented defaults rather than a registry match.
type Binding struct {
	SessionID string
	Seat      string
	Found     bool
}

func Default() Binding {
	return Binding{SessionID: DefaultSessionID, Seat: DefaultSeat}
}

// Registry resolves bindings. Implementations never fail; a miss is Default().
type Registry interface {
	Lookup(ctx context.Context, user, tty string) Binding
}

// Parse scans `loginctl list-sessions --no-legend` output for the first line
// whose user column equals user and whose tty column equals tty.
//
// Columns by position: session-id(0), user(2), seat(3), tty(5). Lines with
// fewer than four fields are skipped.
func Parse(out, user, tty string) Binding {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 4 {
			continue
		}
		if field(fields, 2, "-") != user || field(fields, 5, "-") != tty {
			continue
		}
		return Binding{
			SessionID: field(fields, 0, DefaultSessionID),
			Seat:      field(fields, 3, DefaultSeat),
			Found:     true,
		}
	}
	return Default()
}

func field(fields []string, i int, def string) string {
	if i < len(fields) {
		return fields[i]
	}
	return def
}

// Lister produces the raw session listing.
type Lister interface {
	ListSessions(ctx context.Context) ([]byte, error)
}

// Loginctl queries logind through the loginctl command.
type Loginctl struct {
	Lister Lister
}

func (l Loginctl) Lookup(ctx context.Context, user, tty string) Binding {
	out, err := l.Lister.ListSessions(ctx)
	if err != nil {
		logger.Warn("session listing unavailable (%v); using %s/%s", err, DefaultSessionID, DefaultSeat)
		return Default()
	}
	b := Parse(string(out), user, tty)
	if !b.Found {
		logger.Warn("no logind session for %s on %s; using %s/%s", user, tty, DefaultSessionID, DefaultSeat)
	}
	return b
}

// Static answers from a fixed table keyed by "user@tty".
type Static map[string]Binding

func (s Static) Lookup(_ context.Context, user, tty string) Binding {
	if b, ok := s[user+"@"+tty]; ok {
		b.Found = true
		return b
	}
	return Default()
}
