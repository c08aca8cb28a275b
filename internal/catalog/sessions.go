package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/hnrobert/ttylogin/internal/hostfs"
	"github.com/hnrobert/ttylogin/internal/logger"
)

var ErrNoSessions = errors.New("no sessions available")

type sessionFile struct {
	Session []Session `toml:"session"`
}

// LoadSessions reads the session list. When the file does not exist, one TTY
// session per login shell is generated and written back best effort.
func LoadSessions(path string, shells []string) ([]Session, error) {
	b, err := hostfs.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read sessions: %w", err)
		}
		sessions := FromShells(shells)
		if len(sessions) == 0 {
			return nil, ErrNoSessions
		}
		if err := SaveSessions(path, sessions); err != nil {
			logger.Warn("could not write %s: %v", path, err)
		}
		return sessions, nil
	}
	sessions, err := ParseSessions(b)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(sessions) == 0 {
		return nil, ErrNoSessions
	}
	return sessions, nil
}

// ParseSessions decodes a sessions.toml document, dropping entries without a
// command and defaulting missing names and types.
func ParseSessions(b []byte) ([]Session, error) {
	var f sessionFile
	if err := toml.Unmarshal(b, &f); err != nil {
		return nil, err
	}
	out := make([]Session, 0, len(f.Session))
	for _, s := range f.Session {
		if s.Cmd == "" {
			continue
		}
		if s.Type == "" {
			s.Type = SessionTTY
		}
		if !s.Type.Valid() {
			logger.Warn("session %q has unknown type %q; treating as tty", s.Name, s.Type)
			s.Type = SessionTTY
		}
		if s.Name == "" {
			s.Name = filepath.Base(s.Cmd)
		}
		out = append(out, s)
	}
	return out, nil
}

func SaveSessions(path string, sessions []Session) error {
	b, err := toml.Marshal(sessionFile{Session: sessions})
	if err != nil {
		return err
	}
	return hostfs.WriteFileAtomic(path, b, 0o644)
}

// FromShells builds one TTY session per shell, named after the binary.
func FromShells(shells []string) []Session {
	out := make([]Session, 0, len(shells))
	for _, sh := range shells {
		out = append(out, Session{Name: filepath.Base(sh), Type: SessionTTY, Cmd: sh})
	}
	return out
}
