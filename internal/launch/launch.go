// Package launch runs one login session: it takes an authenticated user and a
// chosen session, turns them into a privilege-dropped process with the right
// terminal ownership, environment and accounting records, waits for it, and
// reverses every one of those steps afterwards.
package launch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/hnrobert/ttylogin/internal/auth"
	"github.com/hnrobert/ttylogin/internal/catalog"
	"github.com/hnrobert/ttylogin/internal/envctx"
	"github.com/hnrobert/ttylogin/internal/logger"
	"github.com/hnrobert/ttylogin/internal/seat"
	"github.com/hnrobert/ttylogin/internal/tty"
)

var (
	ErrOwnership   = errors.New("terminal ownership not acquired")
	ErrEnvironment = errors.New("session environment not applied")
	ErrSpawn       = errors.New("session command did not start")
)

const DefaultSpawnFailureDelay = time.Second

type Ownership interface {
	Acquire(uid int, path string) error
	Release(path string) error
}

type Accounting interface {
	RecordLogin(username, tty string, pid int) error
	RecordLogout(tty string) error
}

// AuthCloser ends the authenticated session a handle stands for.
type AuthCloser interface {
	Close(h *auth.Handle) error
}

// Orchestrator sequences a launch. Launches are strictly one at a time.
type Orchestrator struct {
	Ownership  Ownership
	Accounting Accounting
	Registry   seat.Registry
	Auth       AuthCloser
	Spawner    Spawner
	Env        envctx.Environ

	// Optional hooks; zero values use the real host.
	TTY               func() tty.Identity
	Chdir             func(dir string) error
	Sleep             func(time.Duration)
	Groups            func(user string, gid int) []uint32
	SpawnFailureDelay time.Duration
	// Trace observes every state transition.
	Trace func(State)
}

// Launch runs sess as user and returns once the session process has exited
// and all host state acquired for it has been reverted.
//
// h is closed exactly once, including when the launch is aborted because the
// terminal could not be acquired. A nil error means the session ran; its exit
// status is only logged.
func (o *Orchestrator) Launch(ctx context.Context, user catalog.User, sess catalog.Session, h *auth.Handle) error {
	id := o.currentTTY()
	log := logger.With("user", user.Name, "tty", id.Name, "session", sess.Name)

	if err := o.Ownership.Acquire(user.UID, id.Path); err != nil {
		log.Errorf("cannot take ownership of %s: %v", id.Path, err)
		o.closeAuth(log, h)
		o.trace(Idle)
		return fmt.Errorf("%w: %w", ErrOwnership, err)
	}
	o.trace(OwnershipAcquired)

	if err := o.chdir(user.Home); err != nil {
		log.Warnf("failed to change directory to %s: %v", user.Home, err)
	} else {
		o.trace(DirectoryChanged)
	}

	launchErr := o.run(ctx, log, user, sess, id)

	o.teardown(log, h, id)
	return launchErr
}

func (o *Orchestrator) run(ctx context.Context, log *zap.SugaredLogger, user catalog.User, sess catalog.Session, id tty.Identity) error {
	binding := o.Registry.Lookup(ctx, user.Name, id.Name)
	if !binding.Found {
		log.Infof("using default session %s on %s", binding.SessionID, binding.Seat)
	}
	in := envctx.Inputs{User: user, Session: sess, Binding: binding, TTY: id}
	if err := envctx.Apply(o.Env, in); err != nil {
		log.Errorf("environment: %v", err)
		o.pause()
		return fmt.Errorf("%w: %w", ErrEnvironment, err)
	}
	o.trace(EnvironmentApplied)

	argv, err := sess.Argv()
	if err == nil {
		var proc Process
		proc, err = o.Spawner.Spawn(SpawnRequest{
			Argv:   argv,
			Env:    o.Env.Environ(),
			UID:    uint32(user.UID),
			GID:    uint32(user.GID),
			Groups: o.groups(user),
		})
		if err == nil {
			o.trace(ChildSpawned)
			o.wait(log, user, id, proc)
			return nil
		}
	}
	log.Errorf("failed to execute %q: %v", sess.Cmd, err)
	o.pause()
	return fmt.Errorf("%w: %w", ErrSpawn, err)
}

func (o *Orchestrator) wait(log *zap.SugaredLogger, user catalog.User, id tty.Identity, proc Process) {
	pid := proc.Pid()
	if err := o.Accounting.RecordLogin(user.Name, id.Name, pid); err != nil {
		log.Warnf("failed to write login record: %v", err)
	}
	o.trace(ChildRunning)
	log.Infof("session started, pid %d", pid)

	if err := proc.Wait(); err != nil {
		log.Infof("session pid %d ended: %v", pid, err)
	} else {
		log.Infof("session pid %d ended", pid)
	}
	o.trace(ChildExited)
}

// teardown reverts everything Launch acquired. No step stops a later one.
func (o *Orchestrator) teardown(log *zap.SugaredLogger, h *auth.Handle, id tty.Identity) {
	o.closeAuth(log, h)

	if err := envctx.Reset(o.Env); err != nil {
		log.Errorf("environment reset: %v", err)
	}
	o.trace(EnvironmentReset)

	if err := o.Ownership.Release(id.Path); err != nil {
		log.Errorf("cannot return %s to root: %v", id.Path, err)
	}
	o.trace(OwnershipReleased)

	if err := o.Accounting.RecordLogout(id.Name); err != nil {
		log.Warnf("failed to write logout record: %v", err)
	}
	o.trace(AccountingClosed)
	o.trace(Idle)
}

func (o *Orchestrator) closeAuth(log *zap.SugaredLogger, h *auth.Handle) {
	if err := o.Auth.Close(h); err != nil {
		log.Errorf("closing auth session: %v", err)
	}
	o.trace(AuthSessionClosed)
}

func (o *Orchestrator) currentTTY() tty.Identity {
	if o.TTY != nil {
		return o.TTY()
	}
	return tty.Current()
}

func (o *Orchestrator) chdir(dir string) error {
	if o.Chdir != nil {
		return o.Chdir(dir)
	}
	return os.Chdir(dir)
}

func (o *Orchestrator) groups(user catalog.User) []uint32 {
	if o.Groups != nil {
		return o.Groups(user.Name, user.GID)
	}
	return []uint32{uint32(user.GID)}
}

// pause keeps an error on screen before the presentation layer redraws.
func (o *Orchestrator) pause() {
	d := o.SpawnFailureDelay
	if d == 0 {
		d = DefaultSpawnFailureDelay
	}
	if o.Sleep != nil {
		o.Sleep(d)
		return
	}
	time.Sleep(d)
}

func (o *Orchestrator) trace(s State) {
	if o.Trace != nil {
		o.Trace(s)
	}
}
