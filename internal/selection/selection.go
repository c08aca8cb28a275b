// Package selection remembers the last user and session picked at the login
// prompt.
package selection

import (
	"errors"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/hnrobert/ttylogin/internal/catalog"
	"github.com/hnrobert/ttylogin/internal/hostfs"
	"github.com/hnrobert/ttylogin/internal/usermgr"
)

type Last struct {
	User    string `yaml:"user"`
	Session string `yaml:"session"`
}

type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Get returns the stored selection. A missing file is an empty selection.
func (s *Store) Get() (Last, error) {
	b, err := hostfs.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Last{}, nil
		}
		return Last{}, err
	}
	var l Last
	if err := yaml.Unmarshal(b, &l); err != nil {
		return Last{}, err
	}
	if !usermgr.ValidUsername(l.User) {
		l.User = ""
	}
	return l, nil
}

func (s *Store) Save(user catalog.User, sess catalog.Session) error {
	b, err := yaml.Marshal(Last{User: user.Name, Session: sess.Name})
	if err != nil {
		return err
	}
	return hostfs.WriteFileAtomic(s.path, b, 0o600)
}

// Indices maps the stored selection onto the current catalog. Names that no
// longer exist select index 0.
func (s *Store) Indices(users []catalog.User, sessions []catalog.Session) (int, int) {
	l, err := s.Get()
	if err != nil {
		return 0, 0
	}
	ui, si := 0, 0
	for i, u := range users {
		if u.Name == l.User {
			ui = i
			break
		}
	}
	for i, sess := range sessions {
		if sess.Name == l.Session {
			si = i
			break
		}
	}
	return ui, si
}
