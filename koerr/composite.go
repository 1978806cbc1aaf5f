package koerr

import "go.uber.org/multierr"

// HandlerOutcome is one handler's result within a composite dispatch or
// shutdown error.
type HandlerOutcome struct {
	HandlerID string
	Err       error
}

// Composite aggregates per-handler outcomes into a single error via
// multierr, tagging each underlying error with the handler identity
// that produced it so a caller inspecting the composite error's string
// form (or its errors.Join-compatible tree, via multierr.Errors) can
// tell which handler failed.
func Composite(code string, kind Kind, outcomes []HandlerOutcome) error {
	var combined error
	any := false
	for _, o := range outcomes {
		if o.Err == nil {
			continue
		}
		any = true
		tagged := New(kind, code, o.Err).WithContext("handler", o.HandlerID)
		combined = multierr.Append(combined, tagged)
	}
	if !any {
		return nil
	}
	return combined
}

// Errors unwraps a composite error built by Composite back into its
// constituent errors, preserving order.
func Errors(err error) []error {
	return multierr.Errors(err)
}
