package domain

// NoEvent is the sentinel event index meaning "no prior event", used for
// the initial bound of a signed variable.
const NoEvent = -1

// Event records a single mutation to a signed variable's upper bound. The
// trail is the authoritative history of the domain store: every call to
// Store.Set that actually changes a bound pushes exactly one Event.
type Event struct {
	// Affected is the signed variable whose bound changed.
	Affected SignedVar
	// PreviousValue is the bound's value just before this event.
	PreviousValue Value
	// PreviousEvent is the index of the event that set PreviousValue, or
	// NoEvent if this is the variable's initial bound.
	PreviousEvent int
	// NewValue is the bound's value after this event.
	NewValue Value
	// Cause explains why the bound was set.
	Cause Cause
}

// MakesTrue reports whether this event is the one that first made lit
// true, i.e. it strengthened the bound to satisfy lit while the bound
// beforehand did not.
func (e Event) MakesTrue(lit Literal) bool {
	return e.NewValue <= lit.ub && e.PreviousValue > lit.ub
}

// NewLiteral returns the strongest literal entailed by this event's new
// value.
func (e Event) NewLiteral() Literal {
	return Literal{svar: e.Affected, ub: e.NewValue}
}

// PreviousLiteral returns the strongest literal entailed just before this
// event.
func (e Event) PreviousLiteral() Literal {
	return Literal{svar: e.Affected, ub: e.PreviousValue}
}
