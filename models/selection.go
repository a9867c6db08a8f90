package models

// Confidence is the ordinal trust level attached to a selection decision.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceNone   Confidence = "none"
)

// ConfidenceLevels lists the valid levels from most to least trusted.
var ConfidenceLevels = []Confidence{ConfidenceHigh, ConfidenceMedium, ConfidenceLow, ConfidenceNone}

// Valid reports whether c is one of the enumerated levels.
func (c Confidence) Valid() bool {
	for _, l := range ConfidenceLevels {
		if c == l {
			return true
		}
	}
	return false
}

// AtLeast reports whether c meets or exceeds min on the ordinal scale.
func (c Confidence) AtLeast(min Confidence) bool {
	return c.rank() >= min.rank()
}

func (c Confidence) rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// SelectionDecision is the validated output of a product or color selection.
// A non-empty Primary always resolves against the catalog (or variant set)
// it was validated with; an unresolved choice is reported with Primary
// empty and Confidence "none", never as an error to the caller.
type SelectionDecision struct {
	Primary      string     `json:"primary,omitempty" bson:"primary,omitempty"`
	Alternatives []string   `json:"alternatives,omitempty" bson:"alternatives,omitempty"`
	Confidence   Confidence `json:"confidence" bson:"confidence"`
	Reasoning    string     `json:"reasoning,omitempty" bson:"reasoning,omitempty"`
}
