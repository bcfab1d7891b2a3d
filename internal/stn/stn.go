// Package stn implements the Simple Temporal Network difference-logic
// theory: propagation of constraints target-source <= weight between
// integer timepoints, with optional (conditionally present) edges
// activated by a reified enabler literal, full backtracking, and
// explanation of every inference it produces.
//
// An edge is stored as a pair of directional constraints (forward and
// backward) derived once at insertion time, the way the teacher's clause
// database derives its two watch literals once at clause construction;
// negating an edge and inserting its mirror pair lets activation and
// deactivation of either polarity share the same machinery.
package stn

import "github.com/rhartert/lcgsolver/internal/domain"

// Weight is the type of edge weights; it shares the domain store's Value
// type since STN bounds and edge weights are added directly together.
type Weight = domain.Value

// edgeID indexes into constraintDb.edges. Edges are inserted in
// (base, negated) pairs, so base ids are always even and edgeID^1 is
// always the sibling of the pair.
type edgeID uint32

func (e edgeID) negated() edgeID { return e ^ 1 }

// edge is a directed difference constraint target-source <= weight.
type edge struct {
	source, target domain.Variable
	weight          Weight
}

// negate returns the logical negation of e: target-source <= weight
// becomes source-target <= -weight-1 (from the GLOSSARY's edge
// negation rule).
func (e edge) negate() edge {
	return edge{source: e.target, target: e.source, weight: -e.weight - 1}
}

// dirEdge names one of the two directional views of an edge: forward
// propagates a tightened upper bound of the source to the target;
// backward propagates a tightened lower bound of the target to the
// source. Packing is edgeID*2 (forward) / edgeID*2+1 (backward), so the
// two views of one edge are adjacent and a single arena serves both.
type dirEdge uint32

func forwardOf(e edgeID) dirEdge  { return dirEdge(e) * 2 }
func backwardOf(e edgeID) dirEdge { return dirEdge(e)*2 + 1 }
func (d dirEdge) edge() edgeID    { return edgeID(d / 2) }
func (d dirEdge) isForward() bool { return d%2 == 0 }

// dirConstraint is one directional view of an edge, expressed uniformly
// as "when sourceBound's value tightens to x, tighten targetBound to at
// most x+weight". Forward sets sourceBound=Plus(source),
// targetBound=Plus(target); backward sets sourceBound=Minus(target),
// targetBound=Minus(source) — the same propagation rule applied in the
// negated-bound space reads as lower-bound propagation.
type dirConstraint struct {
	sourceBound domain.SignedVar
	targetBound domain.SignedVar
	weight      Weight
	enabler     domain.Literal
	active      bool
}

// constraintDb is the arena-backed store of edges and their directional
// constraints, plus the adjacency lists propagation and theory
// propagation read. All cross-references are dense integer indices, per
// the cyclic-graph design note: no constraint ever owns a pointer to
// another.
type constraintDb struct {
	edges       []edge
	constraints []dirConstraint

	// potentialOut lists every directional constraint (active or not)
	// whose sourceBound is the given signed variable, keyed by
	// SignedVar.Index(). Used by bound-driven theory propagation, which
	// must inspect edges that are not yet active.
	potentialOut [][]dirEdge

	// activeOut/activeIn list only the currently active directional
	// constraints, keyed by source/target signed variable respectively.
	// Cesta96 propagation walks activeOut; edge-driven theory
	// propagation's predecessor search walks activeIn.
	activeOut [][]dirEdge
	activeIn  [][]dirEdge
}

func (db *constraintDb) growTo(n int) {
	for len(db.potentialOut) < n {
		db.potentialOut = append(db.potentialOut, nil)
		db.activeOut = append(db.activeOut, nil)
		db.activeIn = append(db.activeIn, nil)
	}
}

func (db *constraintDb) reserve(sv domain.SignedVar) {
	if n := sv.Index() + 1; n > len(db.potentialOut) {
		db.growTo(n)
	}
}

// pushEdge inserts a new base/negated pair of edges and their four
// directional constraints, returning the base edge's id.
func (db *constraintDb) pushEdge(source, target domain.Variable, weight Weight) edgeID {
	base := edgeID(len(db.edges))
	baseEdge := edge{source: source, target: target, weight: weight}
	negEdge := baseEdge.negate()
	db.edges = append(db.edges, baseEdge, negEdge)

	db.addDirConstraint(forwardOf(base), baseEdge)
	db.addDirConstraint(backwardOf(base), baseEdge)
	neg := base.negated()
	db.addDirConstraint(forwardOf(neg), negEdge)
	db.addDirConstraint(backwardOf(neg), negEdge)
	return base
}

func (db *constraintDb) addDirConstraint(de dirEdge, e edge) {
	var c dirConstraint
	c.weight = e.weight
	if de.isForward() {
		c.sourceBound = domain.Plus(e.source)
		c.targetBound = domain.Plus(e.target)
	} else {
		c.sourceBound = domain.Minus(e.target)
		c.targetBound = domain.Minus(e.source)
	}
	for int(de) >= len(db.constraints) {
		db.constraints = append(db.constraints, dirConstraint{})
	}
	db.constraints[de] = c

	db.reserve(c.sourceBound)
	db.reserve(c.targetBound)
	db.potentialOut[c.sourceBound.Index()] = append(db.potentialOut[c.sourceBound.Index()], de)
}

func (db *constraintDb) setEnabler(de dirEdge, lit domain.Literal) {
	db.constraints[de].enabler = lit
}

func (db *constraintDb) activate(de dirEdge) bool {
	c := &db.constraints[de]
	if c.active {
		return false
	}
	c.active = true
	db.activeOut[c.sourceBound.Index()] = append(db.activeOut[c.sourceBound.Index()], de)
	db.activeIn[c.targetBound.Index()] = append(db.activeIn[c.targetBound.Index()], de)
	return true
}

func (db *constraintDb) deactivate(de dirEdge) {
	c := &db.constraints[de]
	if !c.active {
		return
	}
	c.active = false
	db.activeOut[c.sourceBound.Index()] = removeDirEdge(db.activeOut[c.sourceBound.Index()], de)
	db.activeIn[c.targetBound.Index()] = removeDirEdge(db.activeIn[c.targetBound.Index()], de)
}

func removeDirEdge(s []dirEdge, de dirEdge) []dirEdge {
	for i, x := range s {
		if x == de {
			return append(s[:i], s[i+1:]...)
		}
	}
	return s
}

// PropagationLevel selects how much theory propagation (inference beyond
// direct Cesta96 bound tightening) the theory performs.
type PropagationLevel int

const (
	PropagateNone PropagationLevel = iota
	PropagateBounds
	PropagateEdges
	PropagateFull
)

func (l PropagationLevel) bounds() bool { return l == PropagateBounds || l == PropagateFull }
func (l PropagationLevel) edges() bool  { return l == PropagateEdges || l == PropagateFull }

// ParsePropagationLevel maps the spec's environment-variable values
// (none|bounds|edges|full) onto a PropagationLevel.
func ParsePropagationLevel(s string) (PropagationLevel, bool) {
	switch s {
	case "none", "":
		return PropagateNone, true
	case "bounds":
		return PropagateBounds, true
	case "edges":
		return PropagateEdges, true
	case "full":
		return PropagateFull, true
	default:
		return PropagateNone, false
	}
}

// Config toggles the theory's optional behaviors, resolved once at
// construction time (see internal/config) so the theory itself never
// reads global state.
type Config struct {
	PropagationLevel PropagationLevel
	DeepExplanation  bool
}

// DefaultConfig is the conservative default: no theory propagation beyond
// direct Cesta96 tightening, shallow explanations.
var DefaultConfig = Config{PropagationLevel: PropagateNone}

// maxExplainDepth bounds the deep-explanation walk so a pathological
// chain of STN propagations cannot loop the search core.
const maxExplainDepth = 64
