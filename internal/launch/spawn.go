package launch

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"github.com/hnrobert/ttylogin/internal/logger"
	"github.com/hnrobert/ttylogin/internal/usermgr"
)

// SpawnRequest describes the session process.
type SpawnRequest struct {
	Argv []string
	Env  []string
	UID  uint32
	GID  uint32
	// Groups is the supplementary group list. nil keeps the caller's groups.
	Groups []uint32
}

// Process is a started session process.
type Process interface {
	Pid() int
	Wait() error
}

type Spawner interface {
	Spawn(req SpawnRequest) (Process, error)
}

// ExecSpawner starts the session with os/exec. The credential switch happens
// in the child between fork and exec, before any session code runs. Standard
// streams are the login manager's own terminal.
type ExecSpawner struct{}

func (ExecSpawner) Spawn(req SpawnRequest) (Process, error) {
	if len(req.Argv) == 0 {
		return nil, errors.New("empty argv")
	}
	cmd := exec.Command(req.Argv[0], req.Argv[1:]...)
	cmd.Env = req.Env
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Credential: &syscall.Credential{
			Uid:         req.UID,
			Gid:         req.GID,
			Groups:      req.Groups,
			NoSetGroups: req.Groups == nil,
		},
	}
	if err := cmd.Start(); err != nil {
		return nil, err
	}
	return execProcess{cmd}, nil
}

type execProcess struct{ cmd *exec.Cmd }

func (p execProcess) Pid() int    { return p.cmd.Process.Pid }
func (p execProcess) Wait() error { return p.cmd.Wait() }

// GroupsFromFile resolves supplementary groups from a group database. The
// primary gid is always included so root's groups never leak into a session.
func GroupsFromFile(path string) func(user string, gid int) []uint32 {
	return func(user string, gid int) []uint32 {
		gr, err := usermgr.LoadGroup(path)
		if err != nil {
			logger.Warn("supplementary groups for %s unavailable: %v", user, err)
			return []uint32{uint32(gid)}
		}
		ids := gr.GIDsOf(user, gid)
		out := make([]uint32, 0, len(ids))
		for _, id := range ids {
			out = append(out, uint32(id))
		}
		return out
	}
}
