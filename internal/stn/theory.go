package stn

import (
	"fmt"

	"github.com/rhartert/lcgsolver/internal/domain"
	"github.com/rhartert/lcgsolver/internal/theory"
	"github.com/rhartert/lcgsolver/internal/trail"
)

// Identity is the writer id this theory tags every inference with. A
// solver registers at most one STN theory, so a single fixed id (the
// core's own writer id, 0, is reserved for clause propagation) suffices.
const Identity theory.WriterID = 1

// watchEntry fires edgeID's activation once lit becomes entailed.
// Watches are grouped by the signed variable lit bounds rather than by
// the exact literal, so an enabler whose bound is strengthened past the
// registered value in a single step (skipping it) still fires — unlike a
// literal-keyed watch list, which could miss it.
type watchEntry struct {
	lit  domain.Literal
	edge edgeID
}

// causeKind tags what kind of STN inference a cause arena entry records.
type causeKind uint8

const (
	edgePropagationCause causeKind = iota
	theoryPropagationCause
)

// stnCause is one entry of the theory's cause arena, indexed by
// domain.Cause.Payload. Edge-propagation causes are cheap to explain
// lazily (the source bound and the edge's enabler); theory-propagation
// causes capture their explanation eagerly, at the point the cycle is
// detected, since reconstructing it later would require rewinding both
// the theory's own state and the domain store's bounds to that exact
// point in history.
type stnCause struct {
	kind        causeKind
	dirEdge     dirEdge
	explanation []domain.Literal
}

// undoEntry is one entry of the theory's own backtrack log: the single
// directional constraint to deactivate.
type undoEntry struct {
	de dirEdge
}

// Theory is the STN difference-logic propagator: it watches model events
// for edges whose enabler just became true, activates them, propagates
// tightened bounds through the active graph (Cesta96), and optionally
// performs theory propagation (disabling edges that would, if activated,
// immediately close a negative cycle).
type Theory struct {
	cfg Config
	db  constraintDb

	watches            [][]watchEntry // keyed by SignedVar.Index()
	pendingActivations []edgeID
	consumed           int // number of domain store events already scanned
	savedConsumed      []int

	causes []stnCause
	tr     *trail.Trail[undoEntry]

	queue []domain.SignedVar // scratch BFS queue for Cesta96 propagation
}

// NewTheory returns an STN theory configured as cfg directs.
func NewTheory(cfg Config) *Theory {
	return &Theory{
		cfg: cfg,
		tr:  trail.New[undoEntry](),
	}
}

// Identity implements theory.Theory.
func (t *Theory) Identity() theory.WriterID { return Identity }

// NewTimepoint allocates a fresh integer timepoint in store with the
// given initial bounds. Timepoints are plain domain variables: the
// theory itself never special-cases them, and the search core's
// branchers never see them unless the caller separately registers one as
// a decision variable.
func (t *Theory) NewTimepoint(store *domain.Store, lb, ub Weight) domain.Variable {
	return store.NewVar(lb, ub)
}

// AddReifiedEdge registers that lit holds iff target-source <= weight. If
// lit (or its negation) is already entailed, the corresponding edge is
// queued for activation on the next Propagate call; otherwise lit watches
// the forward edge and ¬lit watches its negation.
func (t *Theory) AddReifiedEdge(store *domain.Store, lit domain.Literal, source, target domain.Variable, weight Weight) {
	base := t.db.pushEdge(source, target, weight)
	neg := base.negated()

	t.db.setEnabler(forwardOf(base), lit)
	t.db.setEnabler(backwardOf(base), lit)
	t.db.setEnabler(forwardOf(neg), lit.Not())
	t.db.setEnabler(backwardOf(neg), lit.Not())

	switch {
	case store.Entails(lit):
		t.pendingActivations = append(t.pendingActivations, base)
	case store.Entails(lit.Not()):
		t.pendingActivations = append(t.pendingActivations, neg)
	default:
		t.addWatch(lit, base)
		t.addWatch(lit.Not(), neg)
	}
}

func (t *Theory) addWatch(lit domain.Literal, e edgeID) {
	sv := lit.SVar()
	for len(t.watches) <= sv.Index() {
		t.watches = append(t.watches, nil)
	}
	t.watches[sv.Index()] = append(t.watches[sv.Index()], watchEntry{lit: lit, edge: e})
}

// Propagate implements theory.Theory: it drains model events since the
// last call, queuing edge activations, running bound-driven theory
// propagation if configured, and pushing each changed bound through the
// already active edges leaving it (Cesta96); then it drains activations
// with Cesta96 propagation, repeating until both are empty.
func (t *Theory) Propagate(store *domain.Store) error {
	for {
		for t.consumed < store.TrailLen() {
			ev := store.Event(t.consumed)
			t.consumed++

			if t.cfg.PropagationLevel.bounds() {
				if err := t.propagateBoundsDriven(store, ev.Affected); err != nil {
					return err
				}
			}
			t.fireWatches(store, ev.Affected)
			if ev.Affected.Index() < len(t.db.activeOut) && len(t.db.activeOut[ev.Affected.Index()]) > 0 {
				if err := t.propagateFrom(store, ev.Affected); err != nil {
					t.pendingActivations = t.pendingActivations[:0]
					return err
				}
			}
		}

		if len(t.pendingActivations) == 0 {
			return nil
		}
		e := t.pendingActivations[0]
		t.pendingActivations = t.pendingActivations[1:]
		if err := t.activateEdge(store, e); err != nil {
			t.pendingActivations = t.pendingActivations[:0]
			return err
		}
	}
}

func (t *Theory) fireWatches(store *domain.Store, sv domain.SignedVar) {
	if sv.Index() >= len(t.watches) {
		return
	}
	// Watches stay registered after firing, so an edge deactivated by
	// RestoreLast is activated again when its enabler is re-entailed.
	for _, w := range t.watches[sv.Index()] {
		if store.Entails(w.lit) && !t.db.constraints[forwardOf(w.edge)].active {
			t.pendingActivations = append(t.pendingActivations, w.edge)
		}
	}
}

func (t *Theory) activateEdge(store *domain.Store, e edgeID) error {
	if err := t.activateDir(store, forwardOf(e)); err != nil {
		return err
	}
	if err := t.activateDir(store, backwardOf(e)); err != nil {
		return err
	}
	if t.cfg.PropagationLevel.edges() {
		return t.propagateEdgesDriven(store, e)
	}
	return nil
}

func (t *Theory) activateDir(store *domain.Store, de dirEdge) error {
	if !t.db.activate(de) {
		return nil
	}
	t.tr.Push(undoEntry{de: de})
	return t.propagateFrom(store, t.db.constraints[de].sourceBound)
}

// propagateFrom runs Cesta96 incremental propagation: a FIFO-driven
// relaxation of every active directional constraint reachable from
// origin. A negative cycle through origin surfaces naturally as
// store.Set's EmptyDomainError once enough relaxations around the cycle
// have strictly tightened origin's bound past its symmetric partner (a
// chain that pushes a bound past its partner without a cycle fails the
// same way); the
// search core's 1-UIP analysis then reconstructs the cycle's enablers by
// repeatedly calling Explain across the chain of edge-propagation causes.
func (t *Theory) propagateFrom(store *domain.Store, origin domain.SignedVar) error {
	t.queue = append(t.queue[:0], origin)
	for head := 0; head < len(t.queue); head++ {
		sv := t.queue[head]
		cur := store.BoundValue(sv)

		for _, de := range t.db.activeOut[sv.Index()] {
			c := t.db.constraints[de]
			newVal := cur + c.weight
			if newVal >= store.BoundValue(c.targetBound) {
				continue
			}
			cause := domain.InferredBy(uint8(Identity), t.recordEdgePropagation(de))
			changed, err := store.Set(domain.NewLeq(c.targetBound, newVal), cause)
			if err != nil {
				return &theory.Contradiction{Explanation: t.explainCycle(store, de)}
			}
			if changed {
				t.queue = append(t.queue, c.targetBound)
			}
		}
	}
	return nil
}

func (t *Theory) recordEdgePropagation(de dirEdge) uint32 {
	idx := uint32(len(t.causes))
	t.causes = append(t.causes, stnCause{kind: edgePropagationCause, dirEdge: de})
	return idx
}

// explainCycle is used when store.Set itself rejects a Cesta96 tightening
// outright: de's source bound, reached by relaxing around a negative
// cycle through the propagation's origin, is inconsistent with de's
// target bound. Blaming de's enabler alone would be unsound — the
// contradiction only exists because every edge around the cycle is
// active — so this walks backward from de's source, following the
// implying-event chain of consecutive edge-propagation causes, collecting
// each edge's enabler until the chain closes back on de's own target
// (the cycle's starting point) or leaves the theory's causes entirely. In
// the second case the chain is not a cycle: the bound it starts from and
// the opposite bound of de's target are added, since the empty domain
// depends on both.
func (t *Theory) explainCycle(store *domain.Store, de dirEdge) []domain.Literal {
	target := t.db.constraints[de].targetBound
	var explanation []domain.Literal

	cur := de
	for depth := 0; depth < maxExplainDepth; depth++ {
		c := t.db.constraints[cur]
		explanation = append(explanation, c.enabler)
		if c.sourceBound == target {
			return explanation
		}

		lit := domain.NewLeq(c.sourceBound, store.BoundValue(c.sourceBound))
		idx := store.ImplyingEvent(lit)
		ev := store.Event(idx)
		if ev.Cause.Kind != domain.CauseInference || ev.Cause.WriterID != uint8(Identity) ||
			t.causes[ev.Cause.Payload].kind != edgePropagationCause {
			opposite := domain.NewLeq(target.Neg(), store.BoundValue(target.Neg()))
			return append(explanation, lit, opposite)
		}
		cur = t.causes[ev.Cause.Payload].dirEdge
	}
	return explanation
}

// propagateBoundsDriven implements bound-driven theory propagation: for
// every inactive directional constraint leaving the just-tightened bound,
// check whether activating it would immediately violate its target's
// symmetric partner; if so, the edge can never activate, so its enabler
// is forced false now.
func (t *Theory) propagateBoundsDriven(store *domain.Store, sv domain.SignedVar) error {
	if sv.Index() >= len(t.db.potentialOut) {
		return nil
	}
	for _, de := range t.db.potentialOut[sv.Index()] {
		c := t.db.constraints[de]
		if c.active {
			continue
		}
		if store.BoundValue(sv)+c.weight+store.BoundValue(c.targetBound.Neg()) < 0 {
			if err := t.forceDisabled(store, de, []domain.Literal{
				domain.NewLeq(sv, store.BoundValue(sv)),
				domain.NewLeq(c.targetBound.Neg(), store.BoundValue(c.targetBound.Neg())),
			}); err != nil {
				return err
			}
		}
	}
	return nil
}

// propagateEdgesDriven implements edge-driven theory propagation:
// reduced-cost Dijkstra from both ends of the just-activated edge finds
// every (predecessor, successor) pair whose intervening inactive edge
// would close a negative cycle through the new one, and disables it.
func (t *Theory) propagateEdgesDriven(store *domain.Store, e edgeID) error {
	ed := t.db.edges[e]
	baseEnabler := t.db.constraints[forwardOf(e)].enabler

	distFromTarget, prevFromTarget := t.shortestPaths(store, domain.Plus(ed.target), false)
	distToSource, prevToSource := t.shortestPaths(store, domain.Plus(ed.source), true)

	for q, dq := range distFromTarget {
		if q.Index() >= len(t.db.potentialOut) {
			continue
		}
		for _, de := range t.db.potentialOut[q.Index()] {
			c := t.db.constraints[de]
			if c.active {
				continue
			}
			p := c.targetBound
			dp, ok := distToSource[p]
			if !ok {
				continue
			}
			// Convert the reduced distances back to real path lengths.
			realDq := dq - store.BoundValue(domain.Plus(ed.target)) + store.BoundValue(q)
			realDp := dp - store.BoundValue(p) + store.BoundValue(domain.Plus(ed.source))
			if realDp+ed.weight+realDq+c.weight >= 0 {
				continue
			}
			explanation := []domain.Literal{baseEnabler}
			explanation = append(explanation, pathEnablers(&t.db, prevFromTarget, q, domain.Plus(ed.target), false)...)
			explanation = append(explanation, pathEnablers(&t.db, prevToSource, p, domain.Plus(ed.source), true)...)
			if err := t.forceDisabled(store, de, explanation); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *Theory) forceDisabled(store *domain.Store, de dirEdge, explanation []domain.Literal) error {
	c := t.db.constraints[de]
	idx := uint32(len(t.causes))
	t.causes = append(t.causes, stnCause{kind: theoryPropagationCause, explanation: explanation})
	_, err := store.Set(c.enabler.Not(), domain.InferredBy(uint8(Identity), idx))
	if err != nil {
		return &theory.Contradiction{Explanation: explanation}
	}
	return nil
}

// Explain implements theory.Theory.
func (t *Theory) Explain(lit domain.Literal, payload uint32, store *domain.Store, out *[]domain.Literal) {
	cause := t.causes[payload]
	switch cause.kind {
	case theoryPropagationCause:
		*out = append(*out, cause.explanation...)
	case edgePropagationCause:
		t.explainEdgePropagation(lit, cause.dirEdge, store, out, 0)
	default:
		panic(fmt.Sprintf("stn: unknown cause kind %d", cause.kind))
	}
}

// explainEdgePropagation expands one Cesta96 hop: the edge's enabler and
// the source-side literal that forced it. When deep explanation is
// configured, it keeps walking backward through consecutive
// edge-propagation causes on that source literal (bounded by
// maxExplainDepth) instead of leaving the remaining hops for the core's
// own 1-UIP walk to resolve one at a time.
func (t *Theory) explainEdgePropagation(lit domain.Literal, de dirEdge, store *domain.Store, out *[]domain.Literal, depth int) {
	c := t.db.constraints[de]
	*out = append(*out, c.enabler)
	srcLit := domain.NewLeq(c.sourceBound, lit.Bound()-c.weight)

	if t.cfg.DeepExplanation && depth < maxExplainDepth && store.Entails(srcLit) {
		idx := store.ImplyingEvent(srcLit)
		ev := store.Event(idx)
		if ev.Cause.Kind == domain.CauseInference && ev.Cause.WriterID == uint8(Identity) {
			inner := t.causes[ev.Cause.Payload]
			if inner.kind == edgePropagationCause {
				t.explainEdgePropagation(srcLit, inner.dirEdge, store, out, depth+1)
				return
			}
		}
	}
	*out = append(*out, srcLit)
}

// SaveState implements theory.Theory.
func (t *Theory) SaveState() int {
	t.savedConsumed = append(t.savedConsumed, t.consumed)
	return t.tr.SaveState()
}

// RestoreLast implements theory.Theory.
func (t *Theory) RestoreLast() {
	t.tr.RestoreLastWith(func(u undoEntry) {
		t.db.deactivate(u.de)
	})
	n := len(t.savedConsumed)
	t.consumed = t.savedConsumed[n-1]
	t.savedConsumed = t.savedConsumed[:n-1]
	t.pendingActivations = t.pendingActivations[:0]
}

// NumSaved implements theory.Theory.
func (t *Theory) NumSaved() int { return t.tr.NumSaved() }
