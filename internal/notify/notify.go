package notify

import (
	"sync"
	"time"
)

type Severity int

const (
	Info Severity = iota
	Success
	Error
)

// Notification is a transient user-facing message. At most one is live at a
// time; a new one supersedes whatever is showing.
type Notification struct {
	Message  string
	Severity Severity
}

// Notifier owns the single live notification and its auto-clear timer.
type Notifier struct {
	mu         sync.Mutex
	current    *Notification
	timer      *time.Timer
	generation uint64
	defaultTTL time.Duration
}

func New(defaultTTL time.Duration) *Notifier {
	return &Notifier{defaultTTL: defaultTTL}
}

// Show replaces the current notification and re-arms the auto-clear. A ttl
// of zero uses the notifier's default.
func (n *Notifier) Show(message string, severity Severity, ttl time.Duration) {
	if ttl <= 0 {
		ttl = n.defaultTTL
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.current = &Notification{Message: message, Severity: severity}
	n.generation++
	gen := n.generation

	if n.timer != nil {
		n.timer.Stop()
	}
	n.timer = time.AfterFunc(ttl, func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		// A newer Show or Dismiss happened after this timer was armed.
		if n.generation != gen {
			return
		}
		n.current = nil
	})
}

func (n *Notifier) Infof(message string)    { n.Show(message, Info, 0) }
func (n *Notifier) Successf(message string) { n.Show(message, Success, 0) }
func (n *Notifier) Errorf(message string)   { n.Show(message, Error, 0) }

// Current returns the live notification, or nil.
func (n *Notifier) Current() *Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Dismiss clears the live notification and cancels its pending auto-clear.
func (n *Notifier) Dismiss() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.generation++
	if n.timer != nil {
		n.timer.Stop()
		n.timer = nil
	}
	n.current = nil
}
