package stale

// State tracks whether a cached record needs re-fetching or
// re-propagation. The zero value is Handled so that fully processed
// entries serialize without a state field.
type State string

const (
	// Handled entries have been fully processed.
	Handled State = ""
	// Outdated entries must be re-fetched from their data source.
	Outdated State = "outdated"
	// Updated entries have been re-fetched but are awaiting recognition
	// by a downstream step.
	Updated State = "updated"
)

// IsHandled reports whether the entry needs no further work. Older cache
// files spell the default state out, so the literal form is accepted too.
func (s State) IsHandled() bool {
	return s == Handled || s == "handled"
}

// IsZero lets yaml omit the default state on marshal.
func (s State) IsZero() bool {
	return s.IsHandled()
}
