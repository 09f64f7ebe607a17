package backend

import (
	"os"
	"sort"
	"sync"
)

// Environ is the adapter's view of the process environment.
type Environ interface {
	Getenv(key string) string
	Setenv(key, value string) error
	Unsetenv(key string) error
	// Environ returns KEY=VALUE pairs handed to child processes.
	Environ() []string
}

// OSEnv reads and writes the real process environment.
type OSEnv struct{}

func (OSEnv) Getenv(key string) string { return os.Getenv(key) }
func (OSEnv) Setenv(key, value string) error { return os.Setenv(key, value) }
func (OSEnv) Unsetenv(key string) error { return os.Unsetenv(key) }
func (OSEnv) Environ() []string { return os.Environ() }

// MapEnv is an in-memory environment for tests.
type MapEnv struct {
	mu   sync.Mutex
	vars map[string]string
}

func NewMapEnv(vars map[string]string) *MapEnv {
	copied := make(map[string]string, len(vars))
	for k, v := range vars {
		copied[k] = v
	}
	return &MapEnv{vars: copied}
}

func (m *MapEnv) Getenv(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.vars[key]
}

func (m *MapEnv) Setenv(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.vars == nil {
		m.vars = make(map[string]string)
	}
	m.vars[key] = value
	return nil
}

func (m *MapEnv) Unsetenv(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.vars, key)
	return nil
}

func (m *MapEnv) Environ() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.vars))
	for k, v := range m.vars {
		out = append(out, k+"="+v)
	}
	sort.Strings(out)
	return out
}

var (
	_ Environ = OSEnv{}
	_ Environ = (*MapEnv)(nil)
)
