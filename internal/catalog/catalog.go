package catalog

import "strings"

// Product represents a purchasable item in the store catalog
type Product struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Price int    `json:"price"` // Price in cents
	Emoji string `json:"emoji"`
}

// products is the fixed demo catalog
var products = []Product{
	{ID: 1, Name: "Organic Apples", Price: 399, Emoji: "🍎"},
	{ID: 2, Name: "Whole Milk", Price: 249, Emoji: "🥛"},
	{ID: 3, Name: "Sourdough Bread", Price: 499, Emoji: "🍞"},
	{ID: 4, Name: "Avocado", Price: 199, Emoji: "🥑"},
	{ID: 5, Name: "Free-Range Eggs", Price: 529, Emoji: "🥚"},
	{ID: 6, Name: "Banana Bunch", Price: 189, Emoji: "🍌"},
	{ID: 7, Name: "Dark Chocolate Bar", Price: 379, Emoji: "🍫"},
	{ID: 8, Name: "Sparkling Water", Price: 125, Emoji: "💧"},
}

// Products returns a copy of the full catalog
func Products() []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}

// ByID retrieves a product by its ID
func ByID(id int) (Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return Product{}, false
}

// MatchLabel finds the first product whose name contains the given label,
// case-insensitively. Catalog order breaks ties.
func MatchLabel(label string) (Product, bool) {
	label = strings.ToLower(strings.TrimSpace(label))
	if label == "" {
		return Product{}, false
	}
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), label) {
			return p, true
		}
	}
	return Product{}, false
}
