package catalog

import (
	"fmt"

	"github.com/hnrobert/ttylogin/internal/usermgr"
)

// UserFilter selects which passwd entries are offered at the login prompt.
type UserFilter struct {
	MinUID      int
	IncludeRoot bool
	// Shells, when non-nil, restricts users to these login shells.
	Shells []string
}

func (f UserFilter) allows(e usermgr.PasswdEntry) bool {
	if e.UID == 0 {
		if !f.IncludeRoot {
			return false
		}
	} else if e.UID < f.MinUID {
		return false
	}
	if f.Shells == nil {
		return true
	}
	for _, s := range f.Shells {
		if s == e.Shell {
			return true
		}
	}
	return false
}

// LoadUsers reads passwdPath and returns the entries allowed by f, in file order.
func LoadUsers(passwdPath string, f UserFilter) ([]User, error) {
	pw, err := usermgr.LoadPasswd(passwdPath)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}
	var out []User
	for _, e := range pw.List() {
		if !f.allows(e) {
			continue
		}
		out = append(out, User{Name: e.Name, UID: e.UID, GID: e.GID, Home: e.Home, Shell: e.Shell})
	}
	return out, nil
}

// Find returns the user named name.
func Find(users []User, name string) (User, bool) {
	for _, u := range users {
		if u.Name == name {
			return u, true
		}
	}
	return User{}, false
}
