package console

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hnrobert/ttylogin/internal/auth"
	"github.com/hnrobert/ttylogin/internal/catalog"
	"github.com/hnrobert/ttylogin/internal/tty"
)

type fakeAuth struct {
	password string
	calls    []string
}

func (a *fakeAuth) Authenticate(username, password, ttyPath string) (*auth.Handle, error) {
	a.calls = append(a.calls, username+"@"+ttyPath)
	if password != a.password {
		return nil, auth.ErrInvalidCredentials
	}
	return &auth.Handle{}, nil
}

type launched struct {
	user, session string
}

type fakeLauncher struct {
	runs []launched
	err  error
}

func (l *fakeLauncher) Launch(_ context.Context, u catalog.User, s catalog.Session, h *auth.Handle) error {
	if h == nil {
		return errors.New("nil handle")
	}
	l.runs = append(l.runs, launched{u.Name, s.Name})
	return l.err
}

type fakePower struct{ actions []string }

func (p *fakePower) Reboot(context.Context) error {
	p.actions = append(p.actions, "reboot")
	return nil
}

func (p *fakePower) Poweroff(context.Context) error {
	p.actions = append(p.actions, "poweroff")
	return nil
}

type fakeSelection struct {
	ui, si int
	saved  []launched
}

func (s *fakeSelection) Indices([]catalog.User, []catalog.Session) (int, int) { return s.ui, s.si }

func (s *fakeSelection) Save(u catalog.User, sess catalog.Session) error {
	s.saved = append(s.saved, launched{u.Name, sess.Name})
	return nil
}

type harness struct {
	out      bytes.Buffer
	auth     *fakeAuth
	launcher *fakeLauncher
	power    *fakePower
	sel      *fakeSelection
	active   int
	c        *Console
}

func newHarness(input string, passwords ...string) *harness {
	h := &harness{
		auth:     &fakeAuth{password: "secret"},
		launcher: &fakeLauncher{},
		power:    &fakePower{},
		sel:      &fakeSelection{},
	}
	h.c = &Console{
		In:  strings.NewReader(input),
		Out: &h.out,
		ReadPassword: func() (string, error) {
			if len(passwords) == 0 {
				return "", errors.New("no more passwords")
			}
			p := passwords[0]
			passwords = passwords[1:]
			return p, nil
		},
		Auth:        h.auth,
		Launcher:    h.launcher,
		Power:       h.power,
		ActiveUsers: func() (int, error) { return h.active, nil },
		Selection:   h.sel,
		Issue:       "Welcome\n",
		Hostname:    "box",
		TTY:         tty.FromPath("/dev/tty3"),
		Users: []catalog.User{
			{Name: "alice", UID: 1000, GID: 1000, Home: "/home/alice"},
			{Name: "bob", UID: 1001, GID: 1001, Home: "/home/bob"},
		},
		Sessions: []catalog.Session{
			{Name: "bash", Type: catalog.SessionTTY, Cmd: "/bin/bash"},
			{Name: "zsh", Type: catalog.SessionTTY, Cmd: "/bin/zsh"},
		},
	}
	return h
}

func TestRunLaunchesChosenSession(t *testing.T) {
	h := newHarness("2\nzsh\n", "secret")
	require.NoError(t, h.c.Run(context.Background()))

	assert.Equal(t, []launched{{"bob", "zsh"}}, h.launcher.runs)
	assert.Equal(t, []launched{{"bob", "zsh"}}, h.sel.saved)
	assert.Equal(t, []string{"bob@/dev/tty3"}, h.auth.calls)

	out := h.out.String()
	assert.Contains(t, out, "Welcome")
	assert.Contains(t, out, "box tty3")
	assert.Contains(t, out, "*  1) alice")
	assert.Contains(t, out, "login [alice]: ")
}

func TestRunUsesLastSelection(t *testing.T) {
	h := newHarness("\n\n", "secret")
	h.sel.ui, h.sel.si = 1, 1
	require.NoError(t, h.c.Run(context.Background()))

	assert.Equal(t, []launched{{"bob", "zsh"}}, h.launcher.runs)
	assert.Contains(t, h.out.String(), "login [bob]: ")
	assert.Contains(t, h.out.String(), "session [zsh]: ")
}

func TestRunRetriesAfterFailedLogin(t *testing.T) {
	h := newHarness("alice\nbash\nalice\nbash\n", "wrong", "secret")
	require.NoError(t, h.c.Run(context.Background()))

	assert.Contains(t, h.out.String(), "Invalid username or password.")
	assert.Equal(t, []launched{{"alice", "bash"}}, h.launcher.runs)
	assert.Len(t, h.auth.calls, 2)
}

func TestRunReportsLaunchFailureAndContinues(t *testing.T) {
	h := newHarness("alice\nbash\nalice\nbash\n", "secret", "secret")
	h.launcher.err = errors.New("boom")
	require.NoError(t, h.c.Run(context.Background()))

	assert.Len(t, h.launcher.runs, 2)
	assert.Contains(t, h.out.String(), "Session bash could not be started: boom")
}

func TestRunUnknownChoices(t *testing.T) {
	h := newHarness("mallory\n9\nalice\nfish\n1\n", "secret")
	require.NoError(t, h.c.Run(context.Background()))

	out := h.out.String()
	assert.Contains(t, out, `Unknown user "mallory".`)
	assert.Contains(t, out, `Unknown user "9".`)
	assert.Contains(t, out, `Unknown session "fish".`)
	assert.Equal(t, []launched{{"alice", "bash"}}, h.launcher.runs)
}

func TestSingleSessionSkipsMenu(t *testing.T) {
	h := newHarness("alice\n", "secret")
	h.c.Sessions = h.c.Sessions[:1]
	require.NoError(t, h.c.Run(context.Background()))

	assert.Equal(t, []launched{{"alice", "bash"}}, h.launcher.runs)
	assert.NotContains(t, h.out.String(), "session [")
}

func TestPowerActionsRefusedWhileUsersLoggedIn(t *testing.T) {
	h := newHarness("reboot\npoweroff\n")
	h.active = 2
	require.NoError(t, h.c.Run(context.Background()))

	assert.Empty(t, h.power.actions)
	assert.Contains(t, h.out.String(), "Cannot reboot: 2 user(s) still logged in.")
	assert.Contains(t, h.out.String(), "Cannot poweroff: 2 user(s) still logged in.")

	h = newHarness("poweroff\n")
	require.NoError(t, h.c.Run(context.Background()))
	assert.Equal(t, []string{"poweroff"}, h.power.actions)
}

func TestRunNeedsUsersAndSessions(t *testing.T) {
	h := newHarness("")
	h.c.Users = nil
	require.Error(t, h.c.Run(context.Background()))

	h = newHarness("")
	h.c.Sessions = nil
	require.ErrorIs(t, h.c.Run(context.Background()), catalog.ErrNoSessions)
}

func TestRunStopsOnCancel(t *testing.T) {
	h := newHarness("alice\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, h.c.Run(ctx), context.Canceled)
	assert.Empty(t, h.auth.calls)
}
