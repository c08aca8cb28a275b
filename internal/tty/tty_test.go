package tty

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromPath(t *testing.T) {
	tests := []struct {
		path      string
		name      string
		number    int
		hasNumber bool
	}{
		{"/dev/tty2", "tty2", 2, true},
		{"/dev/tty12", "tty12", 12, true},
		{"/dev/pts/0", "pts/0", 0, true},
		{"/dev/console", "console", 0, false},
		{"/dev/tty?", "tty?", 0, false},
		{"/dev/ttyS01", "ttyS01", 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			id := FromPath(tt.path)
			assert.Equal(t, tt.path, id.Path)
			assert.Equal(t, tt.name, id.Name)
			assert.Equal(t, tt.hasNumber, id.HasNumber)
			assert.Equal(t, tt.number, id.Number)
		})
	}
}

func TestVTDefaultWhenAbsent(t *testing.T) {
	assert.Equal(t, 0, FromPath("/dev/console").VT(0))
	assert.Equal(t, 7, FromPath("/dev/tty7").VT(0))
}

func TestResolveFollowsLink(t *testing.T) {
	dir := t.TempDir()
	link := filepath.Join(dir, "0")
	if err := os.Symlink("/dev/tty3", link); err != nil {
		t.Fatalf("symlink: %v", err)
	}
	id := Resolve(link)
	assert.Equal(t, "/dev/tty3", id.Path)
	assert.Equal(t, "tty3", id.Name)
	assert.True(t, id.Known())
}

func TestResolveFallsBackToSentinel(t *testing.T) {
	id := Resolve(filepath.Join(t.TempDir(), "missing"))
	assert.Equal(t, Unknown, id.Path)
	assert.Equal(t, "tty?", id.Name)
	assert.False(t, id.HasNumber)
	assert.False(t, id.Known())
}
