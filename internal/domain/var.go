// Package domain implements the backtrackable integer domain store: signed
// variables, literals over upper bounds, and the bounds/event trail that
// propagators read from and write to.
package domain

// Variable is an opaque dense integer identifier. Variable 0 is the
// reserved zero variable, permanently fixed to value 0, used to express
// constant truth (see Literal TRUE/FALSE).
type Variable int32

// Zero is the reserved zero variable. It is always present and fixed to 0.
const Zero Variable = 0

// SignedVar pairs a variable with a sign, giving 2*V slots for V
// variables. The "plus" slot of v tracks the upper bound of v; the
// "minus" slot tracks the negation of the lower bound of v. Encoded
// densely as 2*variable (+sign bit) so it can index directly into slices.
type SignedVar int32

// Plus returns the signed variable tracking the upper bound of v.
func Plus(v Variable) SignedVar { return SignedVar(v) * 2 }

// Minus returns the signed variable tracking the negated lower bound of v.
func Minus(v Variable) SignedVar { return SignedVar(v)*2 + 1 }

// Variable returns the underlying variable of a signed variable.
func (sv SignedVar) Variable() Variable { return Variable(sv / 2) }

// IsPlus reports whether sv tracks an upper bound (as opposed to a
// negated lower bound).
func (sv SignedVar) IsPlus() bool { return sv&1 == 0 }

// Neg returns the opposite signed variable on the same underlying
// variable (plus <-> minus).
func (sv SignedVar) Neg() SignedVar { return sv ^ 1 }

// Index returns the dense index of sv, suitable for slice indexing.
func (sv SignedVar) Index() int { return int(sv) }
