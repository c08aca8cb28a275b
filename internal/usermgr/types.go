package usermgr

import "strings"

type PasswdEntry struct {
	Name   string
	Passwd string
	UID    int
	GID    int
	Gecos  string
	Home   string
	Shell  string
}

// ShadowEntry keeps the aging fields as raw strings; only Hash is interpreted.
type ShadowEntry struct {
	Name       string
	Hash       string
	LastChange string
	Min        string
	Max        string
	Warn       string
	Inactive   string
	Expire     string
	Reserved   string
}

type GroupEntry struct {
	Name    string
	Passwd  string
	GID     int
	Members []string
}

// Locked reports whether the hash field disables password login.
func (e ShadowEntry) Locked() bool {
	return e.Hash == "" || strings.HasPrefix(e.Hash, "!") || strings.HasPrefix(e.Hash, "*")
}
