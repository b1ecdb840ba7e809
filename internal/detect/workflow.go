package detect

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/zombor/swiftcart/internal/cart"
	"github.com/zombor/swiftcart/internal/catalog"
	"github.com/zombor/swiftcart/internal/vision"
)

// analyzeFailureMessage is shown for unidentifiable images and provider errors
const analyzeFailureMessage = "Could not analyze the image. Please try again."

// Workflow runs image-driven identification: it asks the identifier to name
// the item, matches the label against the catalog and routes the outcome
// through the confirmation gate.
type Workflow struct {
	gate       *Gate
	identifier vision.Identifier
	store      *cart.Store

	mu  sync.Mutex
	rng *rand.Rand
}

// NewWorkflow creates a Workflow around gate, identifier and the cart store
func NewWorkflow(gate *Gate, identifier vision.Identifier, store *cart.Store) *Workflow {
	return &Workflow{
		gate:       gate,
		identifier: identifier,
		store:      store,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Gate exposes the workflow's confirmation gate
func (w *Workflow) Gate() *Gate {
	return w.gate
}

// Analyze identifies the item in an uploaded image. Every path leaves the
// analyzing state: a match presents a candidate, everything else records a
// transient failure. A newer Analyze invalidates this one's result.
func (w *Workflow) Analyze(imageData []byte, contentType string) {
	token := w.gate.Begin()

	label, err := w.identifier.IdentifyItem(imageData, contentType)
	if err != nil {
		slog.Error("Error identifying item", "error", err)
		w.gate.Fail(token, analyzeFailureMessage)
		return
	}
	if vision.IsUnknown(label) {
		w.gate.Fail(token, analyzeFailureMessage)
		return
	}

	product, ok := catalog.MatchLabel(label)
	if !ok {
		slog.Warn("Identified item has no catalog match", "label", label)
		w.gate.Fail(token, fmt.Sprintf("'%s' is not in our catalog.", label))
		return
	}

	w.gate.Succeed(token, PendingItem{
		Product:    product,
		Confidence: w.confidence(),
	})
}

// Confirm adds the pending candidate to the cart
func (w *Workflow) Confirm() (PendingItem, bool) {
	item, ok := w.gate.Confirm()
	if !ok {
		return PendingItem{}, false
	}
	w.store.Add(item.Product)
	return item, true
}

// Discard drops the pending candidate without a cart mutation
func (w *Workflow) Discard() bool {
	return w.gate.Discard()
}

// confidence samples a simulated confidence in [0.89, 0.99)
func (w *Workflow) confidence() float64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.rng.Float64()*0.1 + 0.89
}
