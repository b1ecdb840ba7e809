package vision

import "strings"

// UnknownLabel is the sentinel an identifier returns when it cannot
// confidently name the item in an image.
const UnknownLabel = "Unknown"

// Identifier names the most prominent grocery item in an image
type Identifier interface {
	// IdentifyItem returns the item label, or UnknownLabel when the provider
	// cannot identify the item
	IdentifyItem(imageData []byte, contentType string) (string, error)
}

// Suggester produces a complementary-product suggestion for a cart
type Suggester interface {
	// SuggestProducts returns a short natural-language suggestion based on
	// the given product names
	SuggestProducts(productNames []string) (string, error)
}

// Provider is a full generative-AI backend
type Provider interface {
	Identifier
	Suggester
	// Close closes the provider and releases resources
	Close() error
}

// IsUnknown reports whether a label is the unknown sentinel
func IsUnknown(label string) bool {
	return strings.EqualFold(strings.TrimSpace(label), UnknownLabel)
}

// cleanModelText strips the markdown fences and quoting models sometimes wrap
// around a short answer
func cleanModelText(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	text = strings.Trim(text, `"'`)
	text = strings.TrimSuffix(text, ".")
	return strings.TrimSpace(text)
}
