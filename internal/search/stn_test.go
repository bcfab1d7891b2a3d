package search

import (
	"testing"

	"github.com/rhartert/lcgsolver/internal/brancher"
	"github.com/rhartert/lcgsolver/internal/domain"
	"github.com/rhartert/lcgsolver/internal/stn"
)

// TestOptionalChain drives the SAT core and the STN theory together on the
// "optional chain" scenario: ten timepoints v0..v9 linked by
// v[i-1]+1 <= v[i], each edge i present iff p[i], with p[i] => p[i-1] wired
// as ordinary clauses. Forcing p4 true (and so, by unit propagation, p1..p4)
// should establish lb(v[i]) = i for i in 0..4. v5's upper bound is fixed low
// enough that activating edge 5 once v4's chain is present is infeasible;
// bound-driven theory propagation should force p5 false, which then
// propagates p6..p9 false by ordinary unit propagation.
func TestOptionalChain(t *testing.T) {
	store := domain.NewStore()
	br := brancher.NewActivityBrancher(0.95)
	s := NewSolver(store, br, nil, DefaultOptions)

	th := stn.NewTheory(stn.Config{PropagationLevel: stn.PropagateBounds})
	s.AddTheory(th)

	const n = 10
	v := make([]domain.Variable, n)
	for i := range v {
		ub := stn.Weight(20)
		if i == 5 {
			ub = 4 // too tight for v5 to ever sit 1 above a present v4 (lb 4)
		}
		v[i] = th.NewTimepoint(s.Store(), 0, ub)
	}

	p := make([]domain.Variable, n)
	for i := 1; i < n; i++ {
		p[i] = s.NewBoolVar()
	}
	for i := 2; i < n; i++ {
		must(t, s.AddClause([]domain.Literal{NegLit(p[i]), PosLit(p[i-1])}))
	}
	must(t, s.AddClause([]domain.Literal{PosLit(p[4])})) // force the v0..v4 prefix present

	for i := 1; i < n; i++ {
		// v[i-1] - v[i] <= -1, i.e. v[i] >= v[i-1]+1, enabled iff p[i].
		th.AddReifiedEdge(s.Store(), PosLit(p[i]), v[i], v[i-1], -1)
	}

	if err := s.propagate(); err != nil {
		t.Fatalf("propagate(): unexpected error: %v", err)
	}

	for i := 0; i <= 4; i++ {
		if got := s.Store().LB(v[i]); got != domain.Value(i) {
			t.Errorf("LB(v[%d]): want %d, got %d", i, i, got)
		}
	}
	for i := 5; i < n; i++ {
		if !s.Store().Entails(NegLit(p[i])) {
			t.Errorf("p[%d]: want forced false, got unforced", i)
		}
	}
}
