package detect

import (
	"sync"
	"time"

	"github.com/zombor/swiftcart/internal/catalog"
)

// State is the confirmation gate's current phase
type State int

const (
	// StateEmpty is the resting state: nothing in flight
	StateEmpty State = iota
	// StateAnalyzing means an identification request is in flight
	StateAnalyzing
	// StatePending means a candidate awaits the user's decision
	StatePending
	// StateFailed holds a transient failure message
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateAnalyzing:
		return "analyzing"
	case StatePending:
		return "pending"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// PendingItem is an identified product awaiting user confirmation
type PendingItem struct {
	Product    catalog.Product `json:"product"`
	Confidence float64         `json:"confidence"`
}

const defaultFailureTimeout = 4000 * time.Millisecond

// Gate owns the single in-flight detection candidate. At most one of
// analyzing, pending or failed holds at any time. Results carry the request
// token issued by Begin; a result for anything but the latest token is
// dropped, so a stale response can never overwrite a newer request's state.
type Gate struct {
	failureTimeout time.Duration

	mu         sync.Mutex
	state      State
	seq        uint64
	pending    PendingItem
	failure    string
	clearTimer *time.Timer
}

// NewGate creates a Gate. A zero failureTimeout uses the 4 second default.
func NewGate(failureTimeout time.Duration) *Gate {
	if failureTimeout <= 0 {
		failureTimeout = defaultFailureTimeout
	}
	return &Gate{failureTimeout: failureTimeout}
}

// Begin clears any prior candidate or failure, enters the analyzing state and
// returns the token for this request
func (g *Gate) Begin() uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clearLocked()
	g.state = StateAnalyzing
	g.seq++
	return g.seq
}

// Succeed presents a candidate for confirmation. Returns false when the token
// is stale or the gate is no longer analyzing.
func (g *Gate) Succeed(token uint64, item PendingItem) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if token != g.seq || g.state != StateAnalyzing {
		return false
	}
	g.state = StatePending
	g.pending = item
	return true
}

// Fail records a transient failure that auto-clears after the failure
// timeout. Returns false when the token is stale.
func (g *Gate) Fail(token uint64, message string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if token != g.seq || g.state != StateAnalyzing {
		return false
	}
	g.state = StateFailed
	g.failure = message
	g.clearTimer = time.AfterFunc(g.failureTimeout, func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.state == StateFailed && g.seq == token {
			g.state = StateEmpty
			g.failure = ""
		}
	})
	return true
}

// Confirm resolves a pending candidate, returning it for the cart add
func (g *Gate) Confirm() (PendingItem, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StatePending {
		return PendingItem{}, false
	}
	item := g.pending
	g.state = StateEmpty
	g.pending = PendingItem{}
	return item, true
}

// Discard drops a pending candidate without touching the cart
func (g *Gate) Discard() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StatePending {
		return false
	}
	g.state = StateEmpty
	g.pending = PendingItem{}
	return true
}

// Reset returns the gate to empty immediately. Used when the user starts a
// new action (removing the image, toggling the camera).
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.clearLocked()
}

// State returns the gate's current state
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Pending returns the current candidate, if one awaits confirmation
func (g *Gate) Pending() (PendingItem, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StatePending {
		return PendingItem{}, false
	}
	return g.pending, true
}

// Failure returns the current failure message, if the gate is failed
func (g *Gate) Failure() (string, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateFailed {
		return "", false
	}
	return g.failure, true
}

func (g *Gate) clearLocked() {
	if g.clearTimer != nil {
		g.clearTimer.Stop()
		g.clearTimer = nil
	}
	g.state = StateEmpty
	g.pending = PendingItem{}
	g.failure = ""
}
