// Package console is the text login screen: banner, user and session menus,
// password prompt and power actions.
package console

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/hnrobert/ttylogin/internal/auth"
	"github.com/hnrobert/ttylogin/internal/catalog"
	"github.com/hnrobert/ttylogin/internal/logger"
	"github.com/hnrobert/ttylogin/internal/tty"
)

type Authenticator interface {
	Authenticate(username, password, ttyPath string) (*auth.Handle, error)
}

type Launcher interface {
	Launch(ctx context.Context, user catalog.User, sess catalog.Session, h *auth.Handle) error
}

type Power interface {
	Reboot(ctx context.Context) error
	Poweroff(ctx context.Context) error
}

// Selection remembers the last choice between screens.
type Selection interface {
	Indices(users []catalog.User, sessions []catalog.Session) (int, int)
	Save(user catalog.User, sess catalog.Session) error
}

type Console struct {
	In  io.Reader
	Out io.Writer
	// ReadPassword reads one line without echo.
	ReadPassword func() (string, error)

	Auth     Authenticator
	Launcher Launcher
	Power    Power
	// ActiveUsers counts logged-in users; power actions are refused while it
	// is non-zero.
	ActiveUsers func() (int, error)
	Selection   Selection

	Issue    string
	Hostname string
	TTY      tty.Identity
	Users    []catalog.User
	Sessions []catalog.Session

	lines *bufio.Reader
}

// errRestart sends the loop back to a fresh screen.
var errRestart = errors.New("restart")

// Run shows login screens until the input ends or ctx is done.
func (c *Console) Run(ctx context.Context) error {
	if len(c.Users) == 0 {
		return errors.New("no users can log in")
	}
	if len(c.Sessions) == 0 {
		return catalog.ErrNoSessions
	}
	for ctx.Err() == nil {
		err := c.Screen(ctx)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil && !errors.Is(err, errRestart) {
			return err
		}
	}
	return ctx.Err()
}

// Screen runs one pass of the login screen. A completed session, a failed
// login and a refused action all return so the screen can be redrawn.
func (c *Console) Screen(ctx context.Context) error {
	ui, si := 0, 0
	if c.Selection != nil {
		ui, si = c.Selection.Indices(c.Users, c.Sessions)
	}

	c.printf("\n")
	if c.Issue != "" {
		c.printf("%s\n", c.Issue)
	}
	c.printf("%s %s\n\n", c.hostname(), c.TTY.Name)
	for i, u := range c.Users {
		c.printf("%s %2d) %s\n", marker(i == ui), i+1, u.Name)
	}
	c.printf("\n")

	answer, err := c.ask(fmt.Sprintf("login [%s]: ", c.Users[ui].Name))
	if err != nil {
		return err
	}
	switch answer {
	case "reboot", "poweroff":
		c.power(ctx, answer)
		return errRestart
	}
	user, ok := pickUser(c.Users, answer, ui)
	if !ok {
		c.printf("Unknown user %q.\n", answer)
		return errRestart
	}

	sess, err := c.pickSession(si)
	if err != nil {
		return err
	}

	c.printf("Password: ")
	password, err := c.readPassword()
	c.printf("\n")
	if err != nil {
		return err
	}
	h, err := c.Auth.Authenticate(user.Name, password, c.TTY.Path)
	if err != nil {
		if msg := auth.HumanAuthError(err); msg != "" {
			c.printf("%s\n", msg)
		} else {
			c.printf("Login failed: %v\n", err)
		}
		logger.Warn("login failed for %s on %s: %v", user.Name, c.TTY.Name, err)
		return errRestart
	}

	if c.Selection != nil {
		if err := c.Selection.Save(user, sess); err != nil {
			logger.Warn("could not save last selection: %v", err)
		}
	}
	if err := c.Launcher.Launch(ctx, user, sess, h); err != nil {
		c.printf("Session %s could not be started: %v\n", sess.Name, err)
	}
	return nil
}

func (c *Console) pickSession(def int) (catalog.Session, error) {
	if len(c.Sessions) == 1 {
		return c.Sessions[0], nil
	}
	for i, s := range c.Sessions {
		c.printf("%s %2d) %s (%s)\n", marker(i == def), i+1, s.Name, s.Type)
	}
	for {
		answer, err := c.ask(fmt.Sprintf("session [%s]: ", c.Sessions[def].Name))
		if err != nil {
			return catalog.Session{}, err
		}
		if s, ok := pickSession(c.Sessions, answer, def); ok {
			return s, nil
		}
		c.printf("Unknown session %q.\n", answer)
	}
}

func (c *Console) power(ctx context.Context, action string) {
	if c.Power == nil {
		c.printf("%s is not available.\n", action)
		return
	}
	if c.ActiveUsers != nil {
		n, err := c.ActiveUsers()
		if err != nil {
			logger.Warn("counting logged in users: %v", err)
			c.printf("Cannot %s: logged in users unknown.\n", action)
			return
		}
		if n > 0 {
			c.printf("Cannot %s: %d user(s) still logged in.\n", action, n)
			return
		}
	}
	logger.Info("%s requested from %s", action, c.TTY.Name)
	var err error
	if action == "reboot" {
		err = c.Power.Reboot(ctx)
	} else {
		err = c.Power.Poweroff(ctx)
	}
	if err != nil {
		logger.Error("%s failed: %v", action, err)
		c.printf("%s failed: %v\n", action, err)
	}
}

func (c *Console) ask(prompt string) (string, error) {
	c.printf("%s", prompt)
	if c.lines == nil {
		c.lines = bufio.NewReader(c.In)
	}
	line, err := c.lines.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (c *Console) readPassword() (string, error) {
	if c.ReadPassword != nil {
		return c.ReadPassword()
	}
	line, err := c.ask("")
	return line, err
}

func (c *Console) hostname() string {
	if c.Hostname != "" {
		return c.Hostname
	}
	h, err := os.Hostname()
	if err != nil {
		return "localhost"
	}
	return h
}

func (c *Console) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.Out, format, args...)
}

func marker(selected bool) string {
	if selected {
		return "*"
	}
	return " "
}

// pickUser resolves an answer given as empty (keep def), a menu number or a
// user name.
func pickUser(users []catalog.User, answer string, def int) (catalog.User, bool) {
	if answer == "" {
		return users[def], true
	}
	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(users) {
			return catalog.User{}, false
		}
		return users[n-1], true
	}
	return catalog.Find(users, answer)
}

func pickSession(sessions []catalog.Session, answer string, def int) (catalog.Session, bool) {
	if answer == "" {
		return sessions[def], true
	}
	if n, err := strconv.Atoi(answer); err == nil {
		if n < 1 || n > len(sessions) {
			return catalog.Session{}, false
		}
		return sessions[n-1], true
	}
	for _, s := range sessions {
		if s.Name == answer {
			return s, true
		}
	}
	return catalog.Session{}, false
}

// TerminalPassword reads a password from fd with echo disabled.
func TerminalPassword(fd int) func() (string, error) {
	return func() (string, error) {
		if !term.IsTerminal(fd) {
			return "", errors.New("password input is not a terminal")
		}
		b, err := term.ReadPassword(fd)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
}
