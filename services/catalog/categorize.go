package catalog

import "strings"

// categoryKeywords maps a derived category to title keywords. Used when the
// provider record carries no category of its own.
var categoryKeywords = []struct {
	category string
	keywords []string
}{
	{"shirt", []string{"shirt", "tee", "t-shirt", "tank", "polo"}},
	{"hoodie", []string{"hoodie", "sweatshirt", "pullover", "zip"}},
	{"hat", []string{"hat", "cap", "beanie", "bucket", "trucker"}},
	{"mug", []string{"mug", "cup", "tumbler", "bottle"}},
	{"bag", []string{"bag", "tote", "backpack", "drawstring", "sack"}},
	{"accessories", []string{"sticker", "magnet", "keychain", "pin"}},
	{"home", []string{"pillow", "blanket", "poster", "canvas", "lamp"}},
	{"phone", []string{"case", "cover", "sleeve"}},
	{"footwear", []string{"socks", "shoe", "sandal", "flip"}},
}

// CategorizeTitle derives a best-effort category from a product title.
func CategorizeTitle(title string) string {
	lower := strings.ToLower(title)
	for _, c := range categoryKeywords {
		for _, kw := range c.keywords {
			if strings.Contains(lower, kw) {
				return c.category
			}
		}
	}
	return "other"
}

var tagMaterials = []string{"cotton", "polyester", "fleece", "denim", "canvas", "leather", "metal", "ceramic"}

var tagStyles = []string{"vintage", "premium", "classic", "modern", "retro", "basic", "heavy", "light"}

var tagStopWords = map[string]struct{}{
	"the": {}, "and": {}, "with": {}, "for": {},
}

// ExtractTags pulls searchable tags out of a product title: known material
// and style words plus the significant title words themselves.
func ExtractTags(title string) []string {
	lower := strings.ToLower(title)
	seen := make(map[string]struct{})
	var tags []string

	add := func(tag string) {
		if _, ok := seen[tag]; ok {
			return
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}

	for _, m := range tagMaterials {
		if strings.Contains(lower, m) {
			add(m)
		}
	}
	for _, s := range tagStyles {
		if strings.Contains(lower, s) {
			add(s)
		}
	}

	for _, word := range strings.Fields(strings.ReplaceAll(lower, "-", " ")) {
		if len(word) <= 3 {
			continue
		}
		if _, stop := tagStopWords[word]; stop {
			continue
		}
		add(word)
	}
	return tags
}
