package conversation

import (
	"testing"

	"merchify/models"

	"github.com/stretchr/testify/assert"
)

func TestClassifyIntent(t *testing.T) {
	withSelection := models.NewConversationContext("s1")
	withSelection.SelectedProductID = "101"
	noSelection := models.NewConversationContext("s2")

	tests := []struct {
		name    string
		text    string
		convCtx *models.ConversationContext
		want    models.Intent
	}{
		{"product request", "I want a t-shirt", noSelection, models.IntentProductRequest},
		{"product noun alone", "trucker hat", noSelection, models.IntentProductRequest},
		{"bare color with selection", "make it green", withSelection, models.IntentColorRequest},
		{"bare color without selection is not color", "green", noSelection, models.IntentGeneral},
		{"explicit color word with selection", "change the color to red", withSelection, models.IntentColorRequest},
		{"color mention without selection goes to products", "something in a nice color", noSelection, models.IntentProductRequest},
		{"logo smaller", "make the logo smaller", withSelection, models.IntentLogoAdjustment},
		{"logo move", "move it to the left a bit", withSelection, models.IntentLogoAdjustment},
		{"recommendation", "what would you suggest for team gifts", noSelection, models.IntentRecommendation},
		{"general greeting", "hello there", noSelection, models.IntentGeneral},
		{"empty", "   ", noSelection, models.IntentGeneral},
		{"color word inside product request stays product", "I want a red shirt", withSelection, models.IntentProductRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyIntent(tc.text, tc.convCtx))
		})
	}
}

func TestExtractColorPhrase(t *testing.T) {
	assert.Equal(t, "navy blue", extractColorPhrase("make it navy blue please"))
	assert.Equal(t, "green", extractColorPhrase("Green!"))
	assert.Equal(t, "chartreuse", extractColorPhrase("change it to chartreuse"))
}
