package suggest

import (
	"log/slog"
	"sync"
	"time"

	"github.com/zombor/swiftcart/internal/cart"
	"github.com/zombor/swiftcart/internal/vision"
)

const (
	// EmptyCartSuggestion is shown without a service call when the cart is empty
	EmptyCartSuggestion = "Add items to your cart to get suggestions!"
	// failedSuggestion is shown when the suggestion service errors
	failedSuggestion = "Sorry, I couldn't fetch suggestions right now."

	defaultDelay = 1000 * time.Millisecond
)

// Refresher watches the cart and keeps a complementary-product suggestion
// fresh. Cart changes are debounced on the trailing edge: only after the cart
// has been quiet for the delay does the suggester get called, with the cart
// contents as they are at that moment.
type Refresher struct {
	store     *cart.Store
	suggester vision.Suggester
	delay     time.Duration
	onChange  func(string)

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	current string
}

// Config configures a Refresher
type Config struct {
	Store     *cart.Store
	Suggester vision.Suggester
	// Delay is the debounce quiet period; zero uses the 1 second default
	Delay time.Duration
	// OnSuggestion is invoked with every published suggestion (optional)
	OnSuggestion func(string)
}

// NewRefresher creates a Refresher and subscribes it to cart changes
func NewRefresher(cfg Config) *Refresher {
	if cfg.Delay <= 0 {
		cfg.Delay = defaultDelay
	}
	r := &Refresher{
		store:     cfg.Store,
		suggester: cfg.Suggester,
		delay:     cfg.Delay,
		onChange:  cfg.OnSuggestion,
		current:   EmptyCartSuggestion,
	}
	cfg.Store.Subscribe(r.cartChanged)
	return r
}

// Current returns the last published suggestion
func (r *Refresher) Current() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *Refresher) cartChanged() {
	r.mu.Lock()
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.gen++
	gen := r.gen

	if r.store.Len() == 0 {
		r.current = EmptyCartSuggestion
		onChange := r.onChange
		r.mu.Unlock()
		if onChange != nil {
			onChange(EmptyCartSuggestion)
		}
		return
	}

	r.timer = time.AfterFunc(r.delay, func() {
		r.refresh(gen)
	})
	r.mu.Unlock()
}

// refresh calls the suggester and publishes the result, unless the cart has
// changed again since this refresh was scheduled
func (r *Refresher) refresh(gen uint64) {
	items := r.store.Items()
	names := make([]string, 0, len(items))
	for _, e := range items {
		names = append(names, e.Product.Name)
	}
	if len(names) == 0 {
		return
	}

	text, err := r.suggester.SuggestProducts(names)
	if err != nil {
		slog.Error("Error fetching product suggestions", "error", err)
		text = failedSuggestion
	}

	r.mu.Lock()
	if gen != r.gen {
		// A newer cart change owns the suggestion now
		r.mu.Unlock()
		return
	}
	r.current = text
	onChange := r.onChange
	r.mu.Unlock()

	if onChange != nil {
		onChange(text)
	}
}
