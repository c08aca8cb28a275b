package auth

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/creack/pty"
)

var ErrAuthBackend = errors.New("auth backend error")

// suProbeUID is the identity su(1) runs under. su skips the password prompt
// for root callers, so the probe must not run as root.
const suProbeUID = 65534

var suTimeout = 6 * time.Second

func verifyWithSu(username, password string) (bool, error) {
	// Use su(1) behind a PTY so it can prompt for a password. This covers
	// yescrypt ($y$) and whatever else the host's PAM stack supports.
	if strings.TrimSpace(username) == "" {
		return false, ErrInvalidCredentials
	}

	ctx, cancel := context.WithTimeout(context.Background(), suTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "su", "-s", "/bin/sh", "-c", "true", username)
	cmd.Env = []string{"LANG=C", "PATH=/usr/sbin:/usr/bin:/sbin:/bin"}
	f, err := pty.StartWithAttrs(cmd, nil, &syscall.SysProcAttr{
		Setsid:     true,
		Setctty:    true,
		Credential: &syscall.Credential{Uid: suProbeUID, Gid: suProbeUID},
	})
	if err != nil {
		return false, fmt.Errorf("%w: start su: %v", ErrAuthBackend, err)
	}
	defer func() { _ = f.Close() }()

	prompted := false
	var out bytes.Buffer
	readerDone := make(chan struct{})

	go func() {
		defer close(readerDone)
		buf := make([]byte, 4096)
		for {
			_ = f.SetReadDeadline(time.Now().Add(500 * time.Millisecond))
			n, rerr := f.Read(buf)
			if n > 0 {
				out.Write(buf[:n])
				if !prompted && strings.Contains(strings.ToLower(out.String()), "password") {
					prompted = true
					_, _ = io.WriteString(f, password+"\n")
				}
			}
			if errors.Is(rerr, os.ErrDeadlineExceeded) && ctx.Err() == nil {
				continue
			}
			if rerr != nil {
				// EIO once the child side of the pty is gone.
				return
			}
		}
	}()

	err = cmd.Wait()
	<-readerDone

	if ctx.Err() != nil {
		return false, fmt.Errorf("%w: su timed out", ErrAuthBackend)
	}
	// Without a prompt su never checked the password.
	return err == nil && prompted, nil
}
