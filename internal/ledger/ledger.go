package ledger

import (
	"errors"
	"fmt"
)

// DefaultSupported is the single ledger identifier enabled today.
const DefaultSupported = "algo"

// ErrUnsupportedLedger reports a requested target ledger outside the
// configured supported set. Callers match it with errors.Is.
var ErrUnsupportedLedger = errors.New("unsupported ledger")

// Validator checks requested target-ledger lists against the supported set.
// The set is fixed at construction; extending support means constructing a
// new Validator, not mutating shared state.
type Validator struct {
	supported map[string]struct{}
}

// NewValidator builds a Validator for the given ledger identifiers.
// An empty list falls back to DefaultSupported.
func NewValidator(supported []string) *Validator {
	if len(supported) == 0 {
		supported = []string{DefaultSupported}
	}
	set := make(map[string]struct{}, len(supported))
	for _, id := range supported {
		set[id] = struct{}{}
	}
	return &Validator{supported: set}
}

// Validate accepts a non-empty list in which every element is a supported
// identifier. Matching is exact: unknown values, empty strings, and case
// variants all reject the whole list.
func (v *Validator) Validate(selected []string) error {
	if len(selected) == 0 {
		return fmt.Errorf("%w: no target ledger selected", ErrUnsupportedLedger)
	}
	for _, id := range selected {
		if _, ok := v.supported[id]; !ok {
			return fmt.Errorf("%w: %q is not enabled", ErrUnsupportedLedger, id)
		}
	}
	return nil
}
