package dispatch

import (
	"sync"

	"github.com/google/uuid"
)

type pendingConfirmation struct {
	token   uuid.UUID
	message string
	run     func(confirmed bool)
}

// Confirmer holds at most one pending confirmation. A new request replaces
// the outstanding one: the old prompt refers to a decision the user can no
// longer see, so its token goes stale and resolving it is a no-op.
type Confirmer struct {
	mu      sync.Mutex
	pending *pendingConfirmation
}

func NewConfirmer() *Confirmer {
	return &Confirmer{}
}

// Request parks an action behind a prompt and returns its token. run is
// invoked exactly once per resolved request, on the resolver's goroutine;
// superseded requests are never run.
func (c *Confirmer) Request(message string, run func(confirmed bool)) uuid.UUID {
	token := uuid.New()
	c.mu.Lock()
	c.pending = &pendingConfirmation{token: token, message: message, run: run}
	c.mu.Unlock()
	return token
}

// Pending returns the live prompt, if any.
func (c *Confirmer) Pending() (message string, token uuid.UUID, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.pending == nil {
		return "", uuid.UUID{}, false
	}
	return c.pending.message, c.pending.token, true
}

// Resolve settles the prompt identified by token. Stale tokens (superseded
// or already resolved) are ignored and Resolve reports false.
func (c *Confirmer) Resolve(token uuid.UUID, confirmed bool) bool {
	c.mu.Lock()
	pending := c.pending
	if pending == nil || pending.token != token {
		c.mu.Unlock()
		return false
	}
	c.pending = nil
	c.mu.Unlock()

	pending.run(confirmed)
	return true
}

// Clear drops any pending prompt without running it. Used on logout.
func (c *Confirmer) Clear() {
	c.mu.Lock()
	c.pending = nil
	c.mu.Unlock()
}
