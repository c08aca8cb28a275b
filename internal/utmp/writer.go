package utmp

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sys/unix"
)

// Writer updates the utmp database and, when WtmpPath is set, appends the
// matching events to wtmp.
//
// Updates touch a single record slot, located by terminal, under an fcntl
// write lock. Other terminals' records are never rewritten.
type Writer struct {
	Path     string
	WtmpPath string
	Now      func() time.Time
}

func (w *Writer) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}
	return time.Now()
}

// RecordLogin marks tty as used by username's process pid.
func (w *Writer) RecordLogin(username, tty string, pid int) error {
	rec := NewUserProcess(username, tty, pid, w.now())
	err := w.update(func(slot Record) bool {
		switch slot.Type {
		case InitProcess, LoginProcess, UserProcess, DeadProcess:
			return slot.ID == rec.ID
		}
		return false
	}, func(Record) (Record, bool) { return rec, true }, true)
	if err != nil {
		return fmt.Errorf("utmp login %s: %w", tty, err)
	}
	if err := w.appendWtmp(rec); err != nil {
		return fmt.Errorf("wtmp login %s: %w", tty, err)
	}
	return nil
}

// RecordLogout reverts the user-process record of tty to a session leader
// owned by LogoutUser. A terminal without a live user record is left alone,
// so getty's own slots and already freed slots are never touched twice.
func (w *Writer) RecordLogout(tty string) error {
	key := LineKey(tty)
	var freed *Record
	err := w.update(func(slot Record) bool {
		return slot.Type == UserProcess && slot.Line == key
	}, func(slot Record) (Record, bool) {
		slot.Type = LoginProcess
		slot.SetUser(LogoutUser)
		freed = &slot
		return slot, true
	}, false)
	if err != nil {
		return fmt.Errorf("utmp logout %s: %w", tty, err)
	}
	if freed == nil {
		return nil
	}
	dead := Record{Type: DeadProcess, PID: freed.PID, Line: freed.Line, ID: freed.ID}
	dead.SetTime(w.now())
	if err := w.appendWtmp(dead); err != nil {
		return fmt.Errorf("wtmp logout %s: %w", tty, err)
	}
	return nil
}

// update locks the database, rewrites the first slot matching match with the
// result of edit, or appends edit's result when nothing matched and appendMiss
// is set.
func (w *Writer) update(match func(Record) bool, edit func(Record) (Record, bool), appendMiss bool) error {
	flags := os.O_RDWR
	if appendMiss {
		flags |= os.O_CREATE
	}
	f, err := os.OpenFile(w.Path, flags, 0o664)
	if err != nil {
		if !appendMiss && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer func() { _ = f.Close() }()

	unlock, err := lock(f)
	if err != nil {
		return err
	}
	defer unlock()

	var (
		buf  = make([]byte, RecordSize)
		slot int64
	)
	for ; ; slot++ {
		_, err := f.ReadAt(buf, slot*RecordSize)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return err
		}
		var rec Record
		if err := rec.UnmarshalBinary(buf); err != nil {
			return err
		}
		if !match(rec) {
			continue
		}
		out, ok := edit(rec)
		if !ok {
			return nil
		}
		return writeSlot(f, slot, out)
	}
	if !appendMiss {
		return nil
	}
	out, ok := edit(Record{})
	if !ok {
		return nil
	}
	// A trailing partial record is overwritten.
	return writeSlot(f, slot, out)
}

func writeSlot(f *os.File, slot int64, r Record) error {
	b, err := r.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = f.WriteAt(b, slot*RecordSize)
	return err
}

func (w *Writer) appendWtmp(r Record) error {
	if w.WtmpPath == "" {
		return nil
	}
	f, err := os.OpenFile(w.WtmpPath, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o664)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	unlock, err := lock(f)
	if err != nil {
		return err
	}
	defer unlock()
	b, err := r.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = f.Write(b)
	return err
}

// lock takes a whole-file fcntl write lock, as glibc does for utmp updates.
func lock(f *os.File) (func(), error) {
	lk := unix.Flock_t{Type: unix.F_WRLCK, Whence: io.SeekStart}
	if err := unix.FcntlFlock(f.Fd(), unix.F_SETLKW, &lk); err != nil {
		return nil, fmt.Errorf("lock %s: %w", f.Name(), err)
	}
	return func() {
		lk.Type = unix.F_UNLCK
		_ = unix.FcntlFlock(f.Fd(), unix.F_SETLK, &lk)
	}, nil
}
