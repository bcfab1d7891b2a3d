package domain

import "fmt"

// Value is the type of bound values (and of edge weights in the STN
// theory, which share the same integer domain).
type Value int32

// MaxValue is used as the initial, unconstrained upper bound of a signed
// variable slot before a variable's real bounds are pushed.
const MaxValue Value = 1<<31 - 1

// Relation names the comparison a Literal expresses once unpacked back to
// variable/relation/value form. Internally every literal is stored as an
// upper bound on a signed variable; Relation is purely a presentation
// convenience.
type Relation int8

const (
	Leq Relation = iota
	Gt
)

func (r Relation) String() string {
	if r == Leq {
		return "<="
	}
	return ">"
}

// Literal is a pair (signed variable, upper-bound value) meaning "the
// bound of this signed variable is <= value". Negation, entailment and
// ordering all operate purely on this representation.
type Literal struct {
	svar SignedVar
	ub   Value
}

// TRUE is the literal that is always entailed: the zero variable's upper
// bound is <= 0, which holds by construction.
var TRUE = Literal{svar: Plus(Zero), ub: 0}

// FALSE is the negation of TRUE, never entailed.
var FALSE = TRUE.Not()

// NewLeq returns the literal "sv <= val".
func NewLeq(sv SignedVar, val Value) Literal { return Literal{svar: sv, ub: val} }

// NewLt returns the literal "sv < val".
func NewLt(sv SignedVar, val Value) Literal { return NewLeq(sv, val-1) }

// Geq returns the literal "v >= val", expressed on the minus signed
// variable of v.
func Geq(v Variable, val Value) Literal { return NewLeq(Minus(v), -val) }

// GtVar returns the literal "v > val".
func GtVar(v Variable, val Value) Literal { return NewLeq(Minus(v), -val-1) }

// LeqVar returns the literal "v <= val".
func LeqVar(v Variable, val Value) Literal { return NewLeq(Plus(v), val) }

// LtVar returns the literal "v < val".
func LtVar(v Variable, val Value) Literal { return NewLeq(Plus(v), val-1) }

// SVar returns the literal's signed variable.
func (l Literal) SVar() SignedVar { return l.svar }

// Bound returns the literal's upper-bound value.
func (l Literal) Bound() Value { return l.ub }

// Variable returns the variable this literal constrains.
func (l Literal) Variable() Variable { return l.svar.Variable() }

// Relation returns how this literal reads once unpacked to (variable,
// relation, value) form.
func (l Literal) Relation() Relation {
	if l.svar.IsPlus() {
		return Leq
	}
	return Gt
}

// Unpack returns the (variable, relation, value) triple this literal
// represents, e.g. NewLeq(Minus(x), -3) unpacks to (x, Gt, 2) since
// "-x <= -3" means "x >= 3" means "x > 2".
func (l Literal) Unpack() (Variable, Relation, Value) {
	if l.svar.IsPlus() {
		return l.svar.Variable(), Leq, l.ub
	}
	return l.svar.Variable(), Gt, -l.ub - 1
}

// Not returns the negation of l: (sv, ub) maps to (-sv, -ub-1).
func (l Literal) Not() Literal {
	return Literal{svar: l.svar.Neg(), ub: -l.ub - 1}
}

// Entails reports whether l being true necessarily makes other true. Two
// literals on different signed variables never entail each other.
func (l Literal) Entails(other Literal) bool {
	return l.svar == other.svar && l.ub <= other.ub
}

// Less defines a total order over literals: by variable, then by sign
// (minus before plus, i.e. lower-bound literals before upper-bound
// literals), then by bound value. Sorting a slice of literals with Less
// groups them by variable and, within a variable, orders them so that an
// earlier literal can only entail the ones immediately following it.
func Less(a, b Literal) bool {
	if a.svar.Variable() != b.svar.Variable() {
		return a.svar.Variable() < b.svar.Variable()
	}
	if a.svar.IsPlus() != b.svar.IsPlus() {
		return !a.svar.IsPlus()
	}
	return a.ub < b.ub
}

func (l Literal) String() string {
	switch l {
	case TRUE:
		return "true"
	case FALSE:
		return "false"
	}
	v, rel, val := l.Unpack()
	return fmt.Sprintf("x%d%s%d", v, rel, val)
}
