package revocation

import (
	"context"
	"sync"
	"time"
)

// Memory is a process-local denylist. It is lost on restart and is not
// shared between replicas.
type Memory struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

func (m *Memory) Revoke(_ context.Context, jti string, until time.Time) error {
	if jti == "" || !until.After(m.now()) {
		return nil
	}

	m.mu.Lock()
	m.entries[jti] = until
	m.mu.Unlock()
	return nil
}

func (m *Memory) IsRevoked(_ context.Context, jti string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	until, ok := m.entries[jti]
	if !ok {
		return false, nil
	}
	if !until.After(m.now()) {
		delete(m.entries, jti)
		return false, nil
	}
	return true, nil
}

// Sweep drops expired entries and returns how many were removed.
func (m *Memory) Sweep(_ context.Context) (int, error) {
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	n := 0
	for jti, until := range m.entries {
		if !until.After(now) {
			delete(m.entries, jti)
			n++
		}
	}
	return n, nil
}

// Len returns the number of live and not yet swept entries.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

func (m *Memory) Ping(context.Context) error { return nil }
func (m *Memory) Close() error               { return nil }
