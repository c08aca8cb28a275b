package hostcmd

import (
	"context"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutputCapturesStdout(t *testing.T) {
	r := New()
	out, err := r.Output(context.Background(), "sh", "-c", "printf 'c1 1000 alice seat0'")
	require.NoError(t, err)
	assert.Equal(t, "c1 1000 alice seat0", string(out))
}

func TestRunFoldsStderrIntoError(t *testing.T) {
	r := New()
	err := r.Run(context.Background(), "sh", "-c", "echo nope >&2; exit 3")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope")
}

func TestTimeout(t *testing.T) {
	r := &Runner{Timeout: 50 * time.Millisecond}
	start := time.Now()
	err := r.Run(context.Background(), "sleep", "5")
	require.Error(t, err)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestRunWrapsExitError(t *testing.T) {
	r := New()
	err := r.Run(context.Background(), "sh", "-c", "echo nope >&2; exit 3")
	var exitErr *exec.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 3, exitErr.ExitCode())
}
