package usermgr

import (
	"bufio"
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/hnrobert/ttylogin/internal/hostfs"
	"github.com/hnrobert/ttylogin/internal/logger"
)

// db is a colon-separated database in file order. Lines that do not parse are
// counted and left out.
type db[T any] struct {
	entries []T
	skipped int
}

// eachLine calls fn for every non-blank, non-comment line of path.
func eachLine(path string, fn func(line string)) error {
	b, err := hostfs.ReadFile(path)
	if err != nil {
		return err
	}
	s := bufio.NewScanner(bytes.NewReader(b))
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for s.Scan() {
		line := s.Text()
		trim := strings.TrimSpace(line)
		if trim == "" || strings.HasPrefix(trim, "#") {
			continue
		}
		fn(line)
	}
	return s.Err()
}

func loadDB[T any](path string, minFields int, parse func(fields []string) (T, error)) (db[T], error) {
	var d db[T]
	err := eachLine(path, func(line string) {
		// Trailing empty fields are significant.
		fields := strings.Split(line, ":")
		if len(fields) < minFields {
			d.skipped++
			return
		}
		e, err := parse(fields)
		if err != nil {
			d.skipped++
			return
		}
		d.entries = append(d.entries, e)
	})
	if err != nil {
		return db[T]{}, err
	}
	if d.skipped > 0 {
		logger.Warn("%s: ignored %d malformed line(s)", path, d.skipped)
	}
	return d, nil
}

func (d *db[T]) find(match func(*T) bool) *T {
	for i := range d.entries {
		if match(&d.entries[i]) {
			return &d.entries[i]
		}
	}
	return nil
}

func atoi(field, what string) (int, error) {
	n, err := strconv.Atoi(field)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", what, field, err)
	}
	return n, nil
}
