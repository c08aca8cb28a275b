package envctx

import (
	"os"
	"sort"
	"strings"
	"sync"
)

// Environ is a mutable set of environment variables. The orchestrator threads
// one value through Apply, the child spawn and Reset.
type Environ interface {
	Lookup(key string) (string, bool)
	Set(key, value string) error
	Unset(key string) error
	// Environ returns KEY=VALUE pairs suitable for exec.Cmd.Env.
	Environ() []string
}

type processEnv struct{}

// Process returns the environment of the running process.
func Process() Environ { return processEnv{} }

func (processEnv) Lookup(key string) (string, bool) { return os.LookupEnv(key) }
func (processEnv) Set(key, value string) error      { return os.Setenv(key, value) }
func (processEnv) Unset(key string) error           { return os.Unsetenv(key) }
func (processEnv) Environ() []string                { return os.Environ() }

// Map is an in-memory Environ detached from the process.
type Map struct {
	mu   sync.Mutex
	vars map[string]string
}

// NewMap builds a Map from KEY=VALUE pairs; malformed pairs are ignored.
func NewMap(pairs ...string) *Map {
	m := &Map{vars: map[string]string{}}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			continue
		}
		m.vars[k] = v
	}
	return m
}

func (m *Map) Lookup(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.vars[key]
	return v, ok
}

func (m *Map) Set(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vars[key] = value
	return nil
}

func (m *Map) Unset(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vars, key)
	return nil
}

func (m *Map) Environ() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.vars))
	for k, v := range m.vars {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}
