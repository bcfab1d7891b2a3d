// Package theory defines the contract between the CDCL search core and
// pluggable theory reasoners (currently the STN difference-logic theory).
// The core stores theories as a heterogeneous list and dispatches on a
// per-theory WriterID tag carried by every inference the theory produces,
// so that an explanation request can be routed back to the theory that
// generated it.
package theory

import "github.com/rhartert/lcgsolver/internal/domain"

// WriterID identifies a propagator module. It is embedded in every
// domain.Cause produced by that module's inferences (as Cause.WriterID)
// so the search core can route explain() calls back to the right theory.
type WriterID uint8

// BindResult is returned by Bind to tell the core how (or whether) a
// theory handles a reified expression.
type BindResult int

const (
	// Unsupported means the theory does not know this kind of expression;
	// the core should try another theory or reject the model at encoding
	// time.
	Unsupported BindResult = iota
	// Enforced means the theory has bound the literal exactly to the
	// expression: entailing the literal is necessary and sufficient for
	// the expression to hold.
	Enforced
	// Refined means the theory accepted the binding but only provides a
	// sound, possibly incomplete, propagation of it.
	Refined
)

// Theory is the contract a pluggable reasoner (e.g. the STN theory) must
// satisfy to be driven by the search core.
type Theory interface {
	// Identity returns the writer id this theory tags its inferences
	// with.
	Identity() WriterID

	// Propagate runs the theory to a local fixed point against the
	// current domains, writing any bound it can derive back through
	// domains.Set with a cause tagged by this theory's WriterID. It
	// returns a *domain.EmptyDomainError (wrapped) or a *Contradiction on
	// failure.
	Propagate(domains *domain.Store) error

	// Explain expands a theory-produced inference into a list of
	// literals whose conjunction implies lit, appending them to out. The
	// payload is the opaque token stored in the Cause that produced lit.
	Explain(lit domain.Literal, payload uint32, domains *domain.Store, out *[]domain.Literal)

	// SaveState/RestoreLast/NumSaved let the theory keep its own
	// backtrackable state (e.g. an edge activation trail) synchronized
	// with the core's decision level.
	SaveState() int
	RestoreLast()
	NumSaved() int
}

// Contradiction is returned by Propagate when the theory has detected
// that the current partial assignment is infeasible. Explanation is the
// list of literals whose conjunction is already inconsistent; it is
// always non-empty.
type Contradiction struct {
	Explanation []domain.Literal
}

func (c *Contradiction) Error() string {
	return "theory: contradiction"
}
