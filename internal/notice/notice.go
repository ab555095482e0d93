// Package notice implements the transient user-message slot and the
// confirmation gate that fronts destructive actions.
package notice

import (
	"sync"
	"time"
)

// DismissAfter is the wall-clock lifetime of a notice.
const DismissAfter = 5 * time.Second

// Notice kind constants
const (
	KindSuccess = "success"
	KindError   = "error"
)

// Notice is the single active transient message.
type Notice struct {
	Kind    string
	Message string
}

// Manager holds at most one notice at a time. Showing a new notice cancels
// any pending auto-dismiss timer and starts a fresh one.
type Manager struct {
	mu      sync.Mutex
	current *Notice
	timer   *time.Timer
	ttl     time.Duration
}

func NewManager() *Manager {
	return &Manager{ttl: DismissAfter}
}

// NewManagerTTL builds a manager with a custom lifetime, used by tests.
func NewManagerTTL(ttl time.Duration) *Manager {
	return &Manager{ttl: ttl}
}

// Show replaces the current notice and restarts the dismiss timer.
func (m *Manager) Show(kind, message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timer != nil {
		m.timer.Stop()
	}
	m.current = &Notice{Kind: kind, Message: message}
	m.timer = time.AfterFunc(m.ttl, m.Dismiss)
}

func (m *Manager) Success(message string) { m.Show(KindSuccess, message) }
func (m *Manager) Error(message string)   { m.Show(KindError, message) }

// Dismiss clears the notice. Dismissing an already-empty slot is a no-op.
func (m *Manager) Dismiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	m.current = nil
}

// Current returns the active notice, nil when dismissed.
func (m *Manager) Current() *Notice {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return nil
	}
	n := *m.current
	return &n
}
