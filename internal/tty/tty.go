// Package tty identifies the controlling terminal of the login manager.
package tty

import (
	"os"
	"regexp"
	"strconv"
	"strings"
)

const (
	// StdinLink is the fd link whose target is the controlling terminal.
	StdinLink = "/proc/self/fd/0"
	// Unknown is returned when the terminal cannot be resolved.
	Unknown = "/dev/tty?"

	devPrefix = "/dev/"
)

var trailingDigits = regexp.MustCompile(`(\d+)$`)

// Identity describes a terminal device. It is recomputed for every launch.
type Identity struct {
	Path      string // /dev/tty2
	Name      string // tty2
	Number    int    // 2, valid only when HasNumber
	HasNumber bool
}

// Known is false for the sentinel identity.
func (id Identity) Known() bool {
	return id.Path != "" && id.Path != Unknown
}

// VT returns the virtual terminal number or def when the name has none.
func (id Identity) VT(def int) int {
	if !id.HasNumber {
		return def
	}
	return id.Number
}

// Current resolves the terminal attached to standard input.
func Current() Identity {
	return Resolve(StdinLink)
}

// Resolve follows link to a device path. It never fails; an unreadable link
// yields the Unknown sentinel.
func Resolve(link string) Identity {
	target, err := os.Readlink(link)
	if err != nil || target == "" {
		return FromPath(Unknown)
	}
	return FromPath(target)
}

// FromPath derives the short name and trailing number from a device path.
func FromPath(path string) Identity {
	id := Identity{Path: path, Name: Name(path)}
	if m := trailingDigits.FindString(path); m != "" {
		if n, err := strconv.Atoi(m); err == nil {
			id.Number = n
			id.HasNumber = true
		}
	}
	return id
}

// Name strips the device directory prefix.
func Name(path string) string {
	return strings.TrimPrefix(path, devPrefix)
}
