package selection

import (
	"fmt"
	"sort"
	"strings"

	"merchify/models"
)

const maxProductsPerCategory = 10

// decision schema shown to the model verbatim. Primary and alternatives are
// catalog product ids; confidence is the enum the validator accepts.
const decisionSchemaExample = `{
  "primary": "123",
  "alternatives": ["456", "789"],
  "confidence": "high",
  "reasoning": "Best match for a comfortable cotton t-shirt"
}`

// buildCatalogSummary renders a bounded view of the snapshot for the model:
// every category, at most maxProductsPerCategory products each. The full
// catalog never fits a prompt; the selector supplements this with
// search-derived candidates for the specific request.
func buildCatalogSummary(snap *models.Snapshot) string {
	grouped := snap.Categories()

	categories := make([]string, 0, len(grouped))
	for cat := range grouped {
		categories = append(categories, cat)
	}
	sort.Strings(categories)

	var sb strings.Builder
	for _, cat := range categories {
		products := grouped[cat]
		sort.Slice(products, func(i, j int) bool { return products[i].Title < products[j].Title })
		if len(products) > maxProductsPerCategory {
			products = products[:maxProductsPerCategory]
		}

		fmt.Fprintf(&sb, "Category: %s\n", cat)
		for _, p := range products {
			fmt.Fprintf(&sb, "  - id=%s title=%q colors=%s\n", p.ID, p.Title, strings.Join(p.Colors(), ", "))
		}
	}
	return sb.String()
}

func buildProductPrompt(snap *models.Snapshot, userText string, convCtx *models.ConversationContext, candidates []models.Product) string {
	var sb strings.Builder

	sb.WriteString("You are a product selection assistant for a custom merchandise platform.\n")
	sb.WriteString("Select the single best product for the user's request from the catalog below.\n\n")

	sb.WriteString("CATALOG:\n")
	sb.WriteString(buildCatalogSummary(snap))

	if len(candidates) > 0 {
		sb.WriteString("\nMOST RELEVANT TO THIS REQUEST:\n")
		for _, p := range candidates {
			fmt.Fprintf(&sb, "  - id=%s title=%q category=%s\n", p.ID, p.Title, p.Category)
		}
	}

	if convCtx != nil && len(convCtx.History) > 0 {
		sb.WriteString("\nCONVERSATION SO FAR:\n")
		for _, turn := range convCtx.History {
			fmt.Fprintf(&sb, "  %s: %s\n", turn.Role, turn.Content)
		}
	}

	fmt.Fprintf(&sb, "\nUSER REQUEST: %s\n\n", userText)

	sb.WriteString("Respond with a single JSON object following exactly this schema:\n")
	sb.WriteString(decisionSchemaExample)
	sb.WriteString("\n\nRules:\n")
	sb.WriteString("1. primary and alternatives must be ids from the catalog above, never invented.\n")
	fmt.Fprintf(&sb, "2. At most %d alternatives, ordered by preference.\n", MaxAlternatives)
	sb.WriteString("3. confidence is one of: high, medium, low, none.\n")
	sb.WriteString("4. If nothing fits well, pick the closest product with confidence low and say why.\n")
	sb.WriteString("5. Output the JSON object only, no prose around it.\n")

	return sb.String()
}

func buildColorPrompt(requested string, available []string, productTitle string) string {
	var sb strings.Builder

	sb.WriteString("You are a color matching assistant for custom merchandise.\n\n")
	fmt.Fprintf(&sb, "User requested color: %q\n", requested)
	fmt.Fprintf(&sb, "Product: %s\n", productTitle)
	fmt.Fprintf(&sb, "Available colors: %s\n\n", strings.Join(available, ", "))

	sb.WriteString("Match the request to the best available color. Respond with JSON only:\n")
	sb.WriteString(`{"matched_color": "name from the available list or null", "alternatives": ["up to 3 available colors"], "explanation": "one sentence"}`)
	sb.WriteString("\n\nRules: prefer exact matches, then color families and synonyms ")
	sb.WriteString("(navy matches Navy Blue). matched_color must appear in the available list or be null.\n")

	return sb.String()
}
