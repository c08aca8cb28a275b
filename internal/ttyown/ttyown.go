// Package ttyown hands the terminal device to the logging-in user and takes it
// back afterwards.
package ttyown

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// Controller changes the owning user of a terminal device. The group is never
// touched.
type Controller struct {
	// Chown defaults to unix.Chown.
	Chown func(path string, uid, gid int) error
}

func (c Controller) chown(path string, uid int) error {
	fn := c.Chown
	if fn == nil {
		fn = unix.Chown
	}
	// gid -1 leaves the group unchanged.
	if err := fn(path, uid, -1); err != nil {
		return fmt.Errorf("chown %s to uid %d: %w", path, uid, err)
	}
	return nil
}

// Acquire gives path to uid.
func (c Controller) Acquire(uid int, path string) error {
	return c.chown(path, uid)
}

// Release returns path to root.
func (c Controller) Release(path string) error {
	return c.chown(path, 0)
}
