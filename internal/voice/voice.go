package voice

import (
	"fmt"
	"strings"

	"github.com/zombor/swiftcart/internal/cart"
)

// Respond maps a recognized utterance to a spoken response, given a snapshot
// of the cart. Intents match case-insensitively, first match wins:
// cart contents, then total, then clear, then a generic apology.
func Respond(command string, items []cart.Entry, totalCents int) string {
	lower := strings.ToLower(command)

	switch {
	case strings.Contains(lower, "what's in my cart") || strings.Contains(lower, "what is in my cart"):
		if len(items) == 0 {
			return "Your cart is empty."
		}
		parts := make([]string, 0, len(items))
		for _, e := range items {
			parts = append(parts, fmt.Sprintf("%d %s", e.Quantity, e.Product.Name))
		}
		return fmt.Sprintf("You have: %s.", strings.Join(parts, ", "))

	case strings.Contains(lower, "how much is the total") || strings.Contains(lower, "what is the total"):
		if totalCents == 0 {
			return "Your total is zero."
		}
		return fmt.Sprintf("Your total is %s.", cart.FormatCents(totalCents))

	case strings.Contains(lower, "clear cart") || strings.Contains(lower, "empty cart"):
		return "This feature is not yet implemented via voice command."

	default:
		return "Sorry, I didn't understand that command."
	}
}
