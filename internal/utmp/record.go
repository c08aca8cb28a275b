// Package utmp reads and updates the host login accounting databases
// (utmp(5) / wtmp) in the Linux glibc record layout.
package utmp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Type is ut_type.
type Type int16

const (
	Empty        Type = 0
	RunLevel     Type = 1
	BootTime     Type = 2
	NewTime      Type = 3
	OldTime      Type = 4
	InitProcess  Type = 5
	LoginProcess Type = 6 // session leader waiting for a login
	UserProcess  Type = 7 // normal user process
	DeadProcess  Type = 8
	Accounting   Type = 9
)

// Field widths of the fixed-size buffers.
const (
	LineSize = 32
	IDSize   = 4
	UserSize = 32
	HostSize = 256
)

// RecordSize is the on-disk size of one record.
const RecordSize = 384

// LogoutUser is written into the user field of a freed terminal.
const LogoutUser = "LOGIN"

var ErrShortRecord = errors.New("short utmp record")

type ExitStatus struct {
	Termination int16
	Exit        int16
}

// Timeval is the 32-bit time pair used on disk even on 64-bit hosts.
type Timeval struct {
	Sec  int32
	Usec int32
}

// Record is one utmp slot. String fields are fixed-width byte buffers; a value
// that fills its buffer completely is not NUL terminated.
type Record struct {
	Type    Type
	_       [2]byte
	PID     int32
	Line    [LineSize]byte
	ID      [IDSize]byte
	User    [UserSize]byte
	Host    [HostSize]byte
	Exit    ExitStatus
	Session int32
	Tv      Timeval
	AddrV6  [4]int32
	_       [20]byte
}

// NewUserProcess builds the login record for user on tty (with or without the
// /dev/ prefix).
func NewUserProcess(user, tty string, pid int, now time.Time) Record {
	line := strings.TrimPrefix(tty, "/dev/")
	var r Record
	r.Type = UserProcess
	r.PID = int32(pid)
	putString(r.Line[:], line)
	putString(r.ID[:], line)
	putString(r.User[:], user)
	r.SetTime(now)
	return r
}

func (r *Record) SetTime(t time.Time) {
	r.Tv.Sec = int32(t.Unix())
	r.Tv.Usec = int32(t.Nanosecond() / 1000)
}

func (r Record) Time() time.Time {
	return time.Unix(int64(r.Tv.Sec), int64(r.Tv.Usec)*1000)
}

func (r Record) LineString() string { return cString(r.Line[:]) }
func (r Record) IDString() string   { return cString(r.ID[:]) }
func (r Record) UserString() string { return cString(r.User[:]) }
func (r Record) HostString() string { return cString(r.Host[:]) }

// SetUser replaces the user field, truncating to UserSize.
func (r *Record) SetUser(user string) {
	putString(r.User[:], user)
}

func (r Record) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(RecordSize)
	if err := binary.Write(&buf, binary.NativeEndian, &r); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (r *Record) UnmarshalBinary(b []byte) error {
	if len(b) < RecordSize {
		return fmt.Errorf("%w: %d bytes", ErrShortRecord, len(b))
	}
	return binary.Read(bytes.NewReader(b[:RecordSize]), binary.NativeEndian, r)
}

// LineKey returns tty as it would be stored in the line field, for exact
// comparison against Record.Line.
func LineKey(tty string) [LineSize]byte {
	var k [LineSize]byte
	putString(k[:], strings.TrimPrefix(tty, "/dev/"))
	return k
}

// putString copies s into dst, truncating to len(dst) and zero-filling the rest.
func putString(dst []byte, s string) {
	n := copy(dst, s)
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

func cString(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		return string(b[:i])
	}
	return string(b)
}
