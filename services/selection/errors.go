package selection

import "fmt"

// ValidationError reports a model response that failed schema validation.
// It is never retried against the model; callers route to the
// deterministic fallback instead.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid selection response: field %q: %s", e.Field, e.Reason)
}
