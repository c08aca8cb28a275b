package hostcmd

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// Runner executes short-lived host commands (loginctl, reboot, poweroff)
// with a bounded runtime.
type Runner struct {
	Timeout time.Duration
}

func New() *Runner {
	return &Runner{Timeout: 10 * time.Second}
}

func (r *Runner) context(ctx context.Context) (context.Context, context.CancelFunc) {
	if ctx == nil {
		ctx = context.Background()
	}
	if r == nil || r.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.Timeout)
}

// Run executes name with args and discards stdout. A failing command's stderr
// is folded into the returned error.
func (r *Runner) Run(ctx context.Context, name string, args ...string) error {
	_, err := r.Output(ctx, name, args...)
	return err
}

// Output executes name with args and returns its stdout.
func (r *Runner) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	ctx, cancel := r.context(ctx)
	defer cancel()
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		s := strings.TrimSpace(stderr.String())
		if s == "" {
			return stdout.Bytes(), err
		}
		return stdout.Bytes(), fmt.Errorf("%s %v: %s: %w", name, args, s, err)
	}
	return stdout.Bytes(), nil
}

// ListSessions returns the raw `loginctl list-sessions --no-legend` output.
func (r *Runner) ListSessions(ctx context.Context) ([]byte, error) {
	return r.Output(ctx, "loginctl", "list-sessions", "--no-legend")
}

func (r *Runner) Reboot(ctx context.Context) error {
	return r.Run(ctx, "reboot")
}

func (r *Runner) Poweroff(ctx context.Context) error {
	return r.Run(ctx, "shutdown", "--poweroff", "now")
}
