// Package brancher implements the search core's pluggable variable/value
// ordering heuristics: the contract every brancher satisfies, an
// activity-based (VSIDS-like) brancher, a learning-rate brancher, and a
// combinator that chains branchers together.
package brancher

import "github.com/rhartert/lcgsolver/internal/domain"

// Decision is what a Brancher proposes the search core do next: either
// assign a literal, or trigger a restart.
type Decision struct {
	Literal domain.Literal
	Restart bool
}

// SetLiteral returns a decision to assign lit.
func SetLiteral(lit domain.Literal) Decision {
	return Decision{Literal: lit}
}

// RestartDecision is the decision value signaling "restart now".
var RestartDecision = Decision{Restart: true}

// Brancher selects the next decision literal during search and must also
// support backtracking so that variables released by a backjump become
// eligible for selection again.
type Brancher interface {
	// Register marks v as a branching candidate. Variables the domain
	// store allocates for a theory's internal use (e.g. STN timepoints)
	// are never registered, so branchers never need to fully ground them
	// to consider search complete.
	Register(v domain.Variable)

	// NextDecision returns the next decision to apply, or false if every
	// registered variable is already assigned.
	NextDecision(domains *domain.Store) (Decision, bool)

	// Bump increases the priority of v, typically because it appeared in
	// a just-learned conflict clause.
	Bump(v domain.Variable)

	// Decay reduces the relative weight of past bumps versus future
	// ones. Called once per conflict.
	Decay()

	// Unassign notifies the brancher that v, previously assigned, has
	// become unassigned again because of a backjump, so that it is
	// re-inserted into the candidate pool.
	Unassign(v domain.Variable)

	// OnNewSolution lets the brancher record the just-found solution's
	// values as its default assignment for future decisions (value-
	// selection guidance), per spec.md's phase-saving / solution-guided
	// search.
	OnNewSolution(domains *domain.Store)

	SaveState() int
	RestoreLast()
	NumSaved() int
}
