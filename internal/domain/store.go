package domain

import (
	"fmt"

	"github.com/rhartert/lcgsolver/internal/trail"
)

// EmptyDomainError reports that setting a bound left a variable's domain
// empty (its upper bound fell below its lower bound). It is the one local
// failure the domain store can produce; callers convert it into a
// Contradiction by deriving an explanation.
type EmptyDomainError struct {
	Var Variable
}

func (e *EmptyDomainError) Error() string {
	return fmt.Sprintf("domain: variable %d has an empty domain", e.Var)
}

// Store is the backtrackable map from signed variables to their current
// upper bound, together with the event trail that makes every mutation
// reversible in O(1) amortized time.
type Store struct {
	bounds      []Value
	causesIndex []int
	tr          *trail.Trail[Event]
}

// NewStore returns a domain store containing only the reserved Zero
// variable, fixed to 0.
func NewStore() *Store {
	s := &Store{tr: trail.New[Event]()}
	v := s.allocSlots()
	if v != Zero {
		panic("domain: Zero variable must be the first allocated")
	}
	s.pushInitial(Plus(Zero), 0)
	s.pushInitial(Minus(Zero), 0)
	return s
}

func (s *Store) allocSlots() Variable {
	v := Variable(len(s.bounds) / 2)
	s.bounds = append(s.bounds, MaxValue, MaxValue)
	s.causesIndex = append(s.causesIndex, NoEvent, NoEvent)
	return v
}

func (s *Store) pushInitial(sv SignedVar, ub Value) {
	prev := s.bounds[sv.Index()]
	s.bounds[sv.Index()] = ub
	idx := s.tr.Len()
	s.tr.Push(Event{
		Affected:      sv,
		PreviousValue: prev,
		PreviousEvent: NoEvent,
		NewValue:      ub,
		Cause:         Encoding(),
	})
	s.causesIndex[sv.Index()] = idx
}

// NewVar allocates a new variable with initial bounds [lb, ub] and
// returns it. Two slots (plus, minus) are created and each pushes an
// initial-bound event with cause Encoding, per the spec's Event model.
func (s *Store) NewVar(lb, ub Value) Variable {
	if lb > ub {
		panic("domain: NewVar called with lb > ub")
	}
	v := s.allocSlots()
	s.pushInitial(Plus(v), ub)
	s.pushInitial(Minus(v), -lb)
	return v
}

// NumVariables returns the number of variables allocated so far,
// including the reserved Zero variable.
func (s *Store) NumVariables() int {
	return len(s.bounds) / 2
}

// UB returns the current upper bound of v.
func (s *Store) UB(v Variable) Value {
	return s.bounds[Plus(v).Index()]
}

// LB returns the current lower bound of v.
func (s *Store) LB(v Variable) Value {
	return -s.bounds[Minus(v).Index()]
}

// BoundValue returns the current upper-bound value stored for sv (raw,
// without translating back to lb/ub terms).
func (s *Store) BoundValue(sv SignedVar) Value {
	return s.bounds[sv.Index()]
}

// Entails reports whether lit currently holds: bounds[lit.svar] <= lit.ub.
func (s *Store) Entails(lit Literal) bool {
	return s.bounds[lit.svar.Index()] <= lit.ub
}

// IsGround reports whether v's bounds have collapsed to a single value.
func (s *Store) IsGround(v Variable) bool {
	return s.LB(v) == s.UB(v)
}

// Set strengthens the bound of lit.svar to lit.ub if that is an
// improvement, recording cause as the reason. It returns changed=true if
// the bound was written, or an *EmptyDomainError if doing so leaves the
// variable's domain empty (upper bound below lower bound).
func (s *Store) Set(lit Literal, cause Cause) (bool, error) {
	if s.Entails(lit) {
		return false, nil
	}
	sv := lit.svar
	prev := s.bounds[sv.Index()]
	prevEvt := s.causesIndex[sv.Index()]

	s.bounds[sv.Index()] = lit.ub
	idx := s.tr.Len()
	s.tr.Push(Event{
		Affected:      sv,
		PreviousValue: prev,
		PreviousEvent: prevEvt,
		NewValue:      lit.ub,
		Cause:         cause,
	})
	s.causesIndex[sv.Index()] = idx

	if s.bounds[sv.Index()]+s.bounds[sv.Neg().Index()] < 0 {
		return true, &EmptyDomainError{Var: sv.Variable()}
	}
	return true, nil
}

// ImplyingEvent walks the event chain of lit's signed variable backward
// and returns the index of the earliest event that already made lit
// true. It panics if lit is not currently entailed.
func (s *Store) ImplyingEvent(lit Literal) int {
	if !s.Entails(lit) {
		panic("domain: ImplyingEvent called on a non-entailed literal")
	}
	idx := s.causesIndex[lit.svar.Index()]
	for idx != NoEvent {
		e := s.tr.Event(idx)
		if e.PreviousValue <= lit.ub {
			idx = e.PreviousEvent
			continue
		}
		break
	}
	return idx
}

// LevelOfEvent returns the decision level during which the event at the
// given trail index was pushed.
func (s *Store) LevelOfEvent(index int) int {
	if index == NoEvent {
		return 0
	}
	return s.tr.LevelOfEvent(index)
}

// EntailingLevel returns the decision level at which lit became entailed.
func (s *Store) EntailingLevel(lit Literal) int {
	return s.LevelOfEvent(s.ImplyingEvent(lit))
}

// Event returns the event at the given trail index.
func (s *Store) Event(i int) Event {
	return s.tr.Event(i)
}

// Cursor returns a new stateful cursor over this store's event trail.
func (s *Store) Cursor() *trail.Cursor[Event] {
	return s.tr.Cursor()
}

// SaveState records a new decision level.
func (s *Store) SaveState() int {
	return s.tr.SaveState()
}

// NumSaved returns the number of decision levels currently saved.
func (s *Store) NumSaved() int {
	return s.tr.NumSaved()
}

// CurrentDecisionLevel returns the current decision level (0 at the root).
func (s *Store) CurrentDecisionLevel() int {
	return s.tr.CurrentDecisionLevel()
}

// TrailLen returns the number of events currently on the trail.
func (s *Store) TrailLen() int {
	return s.tr.Len()
}

// RestoreLast undoes every event pushed since the last SaveState,
// restoring bounds and causesIndex from each event's previous-* fields.
func (s *Store) RestoreLast() {
	s.RestoreLastWithHook(nil)
}

// RestoreLastWithHook behaves like RestoreLast but additionally invokes
// hook (if non-nil) with each undone event, in the same most-recent-first
// order they are undone. Callers use this to detect which variables left
// the ground state because of the restore (e.g. to reinsert them into a
// brancher's candidate pool).
func (s *Store) RestoreLastWithHook(hook func(Event)) {
	s.tr.RestoreLastWith(func(e Event) {
		s.bounds[e.Affected.Index()] = e.PreviousValue
		s.causesIndex[e.Affected.Index()] = e.PreviousEvent
		if hook != nil {
			hook(e)
		}
	})
}
