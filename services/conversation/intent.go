package conversation

import (
	"strings"

	"merchify/models"
)

// ClassifyIntent decides what kind of turn this is from the utterance and
// the session context. Classification is deterministic keyword matching:
// the model picks products, not intents. Context matters: a bare color
// word is a color request only once a product is selected.
func ClassifyIntent(userText string, convCtx *models.ConversationContext) models.Intent {
	msg := strings.ToLower(strings.TrimSpace(userText))
	if msg == "" {
		return models.IntentGeneral
	}

	if containsAny(msg, "logo", "smaller", "bigger", "larger", "resize", "move it", "center it", "position") {
		return models.IntentLogoAdjustment
	}

	hasSelection := convCtx != nil && convCtx.SelectedProductID != ""
	if containsAny(msg, "change the color", "change the colour", "change color", "different color") {
		return models.IntentColorRequest
	}
	if containsAny(msg, "color", "colour") {
		if hasSelection {
			return models.IntentColorRequest
		}
		return models.IntentProductRequest
	}
	if hasSelection && mentionsColorWord(msg) && !containsAny(msg, productWords...) {
		return models.IntentColorRequest
	}

	if containsAny(msg, "recommend", "suggest", "ideas", "what do you have", "options", "popular") {
		return models.IntentRecommendation
	}

	if containsAny(msg, "want", "need", "looking for", "show me", "find", "buy", "get me") ||
		containsAny(msg, productWords...) {
		return models.IntentProductRequest
	}

	return models.IntentGeneral
}

var productWords = []string{
	"shirt", "tee", "hoodie", "sweatshirt", "hat", "cap", "beanie",
	"mug", "cup", "tumbler", "bottle", "bag", "tote", "backpack",
	"sticker", "pillow", "blanket", "poster", "case", "socks", "product",
}

var colorWords = []string{
	"black", "white", "red", "blue", "green", "yellow", "orange",
	"purple", "pink", "brown", "grey", "gray", "navy", "maroon",
	"teal", "olive", "gold", "silver", "charcoal", "crimson",
	"violet", "lavender", "burgundy", "turquoise", "beige", "cream",
}

func mentionsColorWord(msg string) bool {
	for _, word := range strings.Fields(msg) {
		word = strings.Trim(word, ".,!?")
		for _, color := range colorWords {
			if word == color {
				return true
			}
		}
	}
	return false
}

// extractColorPhrase pulls the color words out of an utterance like
// "make it navy blue please" so the selector sees just "navy blue".
func extractColorPhrase(userText string) string {
	msg := strings.ToLower(userText)
	var kept []string
	for _, word := range strings.Fields(msg) {
		word = strings.Trim(word, ".,!?")
		for _, color := range colorWords {
			if word == color {
				kept = append(kept, word)
				break
			}
		}
	}
	if len(kept) > 0 {
		return strings.Join(kept, " ")
	}

	// No known color word; strip command filler and hand over the rest.
	for _, filler := range []string{"make it", "change it to", "change to", "switch to", "colour", "color", "please", "instead"} {
		msg = strings.ReplaceAll(msg, filler, " ")
	}
	return strings.Join(strings.Fields(msg), " ")
}

func containsAny(msg string, terms ...string) bool {
	for _, term := range terms {
		if strings.Contains(msg, term) {
			return true
		}
	}
	return false
}
