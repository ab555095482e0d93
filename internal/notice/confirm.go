package notice

import (
	"context"
	"sync"
)

// ActionKind tags a pending confirmation so it can be resolved by a
// registered handler instead of a closure captured at open time.
type ActionKind string

// Action describes what the user is being asked to confirm. Payload carries
// the identifiers the handler needs (an attachment id, a category, ...).
type Action struct {
	Kind         ActionKind
	Title        string
	Message      string
	ConfirmLabel string
	CancelLabel  string
	Intent       string
	Payload      interface{}
}

// Handler executes a confirmed action. Failures must be surfaced through the
// notice manager by the handler itself; the gate only clears its own state.
type Handler func(ctx context.Context, payload interface{})

// Gate is the modal confirmation barrier in front of destructive actions.
// Confirm runs the handler under a busy flag that blocks Cancel; the pending
// descriptor is cleared after the handler settles either way.
type Gate struct {
	mu       sync.Mutex
	pending  *Action
	busy     bool
	handlers map[ActionKind]Handler
}

func NewGate() *Gate {
	return &Gate{handlers: make(map[ActionKind]Handler)}
}

// Register binds the handler resolved when an action of this kind is
// confirmed. Registering twice replaces the previous handler.
func (g *Gate) Register(kind ActionKind, handler Handler) {
	g.mu.Lock()
	g.handlers[kind] = handler
	g.mu.Unlock()
}

// Open sets the pending action, filling in default labels.
func (g *Gate) Open(action Action) {
	if action.Title == "" {
		action.Title = "Confirmar"
	}
	if action.ConfirmLabel == "" {
		action.ConfirmLabel = "Confirmar"
	}
	if action.CancelLabel == "" {
		action.CancelLabel = "Cancelar"
	}
	if action.Intent == "" {
		action.Intent = "danger"
	}
	g.mu.Lock()
	g.pending = &action
	g.mu.Unlock()
}

// Pending returns the open action descriptor, nil when the gate is closed.
func (g *Gate) Pending() *Action {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pending == nil {
		return nil
	}
	a := *g.pending
	return &a
}

// Busy reports whether a confirmed action is still running.
func (g *Gate) Busy() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.busy
}

// Cancel closes the gate without running the action. It is a no-op while
// the confirmed action is running.
func (g *Gate) Cancel() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.busy {
		return
	}
	g.pending = nil
}

// Confirm resolves the pending action through its registered handler. While
// the confirmed action runs, further Confirm calls are no-ops like Cancel.
// With no pending action or no handler for its kind the gate simply closes.
func (g *Gate) Confirm(ctx context.Context) {
	g.mu.Lock()
	if g.busy || g.pending == nil {
		g.mu.Unlock()
		return
	}
	confirmed := g.pending
	action := *confirmed
	handler := g.handlers[action.Kind]
	if handler == nil {
		g.pending = nil
		g.mu.Unlock()
		return
	}
	g.busy = true
	g.mu.Unlock()

	// Settling clears only the descriptor that ran: an action opened while
	// the handler was running stays pending.
	defer func() {
		g.mu.Lock()
		g.busy = false
		if g.pending == confirmed {
			g.pending = nil
		}
		g.mu.Unlock()
	}()
	handler(ctx, action.Payload)
}

// Reset force-clears the gate, used when the session is invalidated.
func (g *Gate) Reset() {
	g.mu.Lock()
	g.pending = nil
	g.busy = false
	g.mu.Unlock()
}
