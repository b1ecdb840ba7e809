package vision

import (
	"fmt"
	"strings"
)

// identifyPrompt is the shared prompt used by all providers to name the item
// in an uploaded image
const identifyPrompt = `Identify the single, most prominent grocery item in this image. Respond with only the name of the item (e.g., 'Apple', 'Banana', 'Avocado'). If you are unsure, respond with 'Unknown'.`

// suggestPrompt builds the shared suggestion prompt from the cart's product names
func suggestPrompt(productNames []string) string {
	return fmt.Sprintf(
		"Based on the following items in a shopping cart (%s), suggest one or two complementary products or a simple recipe idea. Keep the suggestion brief and friendly.",
		strings.Join(productNames, ", "),
	)
}
