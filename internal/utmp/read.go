package utmp

import (
	"errors"
	"io"
	"os"
)

// ReadAll decodes every complete record in path. A trailing partial record is
// ignored.
func ReadAll(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var out []Record
	buf := make([]byte, RecordSize)
	for {
		if _, err := io.ReadFull(f, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return out, nil
			}
			return nil, err
		}
		var r Record
		if err := r.UnmarshalBinary(buf); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
}

// Active returns the user-process records of path, the set who(1) lists.
// A missing database has no active users.
func Active(path string) ([]Record, error) {
	all, err := ReadAll(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	var out []Record
	for _, r := range all {
		if r.Type == UserProcess {
			out = append(out, r)
		}
	}
	return out, nil
}

// CountUsers returns len(Active(path)).
func CountUsers(path string) (int, error) {
	recs, err := Active(path)
	return len(recs), err
}
