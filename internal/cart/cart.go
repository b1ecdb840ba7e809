package cart

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/zombor/swiftcart/internal/catalog"
)

// Entry is one catalog product plus its quantity in the cart
type Entry struct {
	Product  catalog.Product `json:"product"`
	Quantity int             `json:"quantity"`
}

// Store holds the cart contents. It is the only writer of entries; reads get
// snapshot copies. Safe for concurrent use.
type Store struct {
	mu          sync.Mutex
	entries     []Entry
	db          DB
	subscribers []func()
}

// NewStore creates a Store backed by db. A nil db gives an in-memory cart.
// Persisted entries are loaded eagerly; missing or corrupt data starts empty.
func NewStore(db DB) *Store {
	s := &Store{db: db}
	if db != nil {
		entries, err := db.LoadEntries()
		if err == nil {
			s.entries = entries
		}
	}
	return s
}

// Add inserts the product with quantity 1, or increments its quantity if an
// entry already exists. First-add order is preserved.
func (s *Store) Add(p catalog.Product) {
	s.mu.Lock()
	for i := range s.entries {
		if s.entries[i].Product.ID == p.ID {
			s.entries[i].Quantity++
			s.persistLocked()
			s.mu.Unlock()
			s.notify()
			return
		}
	}
	s.entries = append(s.entries, Entry{Product: p, Quantity: 1})
	s.persistLocked()
	s.mu.Unlock()
	s.notify()
}

// Clear removes all entries
func (s *Store) Clear() {
	s.mu.Lock()
	s.entries = nil
	s.persistLocked()
	s.mu.Unlock()
	s.notify()
}

// Items returns a snapshot copy of the cart entries
func (s *Store) Items() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of distinct entries
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// TotalCents returns the exact cart total in cents, recomputed on demand
func (s *Store) TotalCents() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, e := range s.entries {
		total += e.Product.Price * e.Quantity
	}
	return total
}

// Subscribe registers a listener invoked after every mutation
func (s *Store) Subscribe(fn func()) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

// FormatCents renders a cent amount as a dollar string, e.g. "$12.50"
func FormatCents(cents int) string {
	return fmt.Sprintf("$%d.%02d", cents/100, cents%100)
}

func (s *Store) persistLocked() {
	if s.db == nil {
		return
	}
	entries := make([]Entry, len(s.entries))
	copy(entries, s.entries)
	// Persistence failures must not break the cart
	if err := s.db.SaveEntries(entries); err != nil {
		slog.Warn("Failed to persist cart", "error", err)
	}
}

func (s *Store) notify() {
	s.mu.Lock()
	subs := make([]func(), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()
	for _, fn := range subs {
		fn()
	}
}
