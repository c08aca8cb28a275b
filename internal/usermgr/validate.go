package usermgr

import "regexp"

// Login names as useradd(8) accepts them by default on Debian and Ubuntu.
var usernameRe = regexp.MustCompile(`^[a-z_][a-z0-9_-]{0,31}$`)

// ValidUsername reports whether u is safe to use as a login name, for example
// one read back from a state file.
func ValidUsername(u string) bool {
	return usernameRe.MatchString(u)
}
