package brancher

import (
	"testing"

	"github.com/rhartert/lcgsolver/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestActivityBrancherPicksHighestScore(t *testing.T) {
	s := domain.NewStore()
	v1 := s.NewVar(0, 1)
	v2 := s.NewVar(0, 1)

	b := NewActivityBrancher(0.95)
	b.Register(v1)
	b.Register(v2)
	b.Bump(v2)
	b.Bump(v2)
	b.Bump(v1)

	d, ok := b.NextDecision(s)
	require.True(t, ok)
	require.Equal(t, v2, d.Literal.Variable())
}

func TestActivityBrancherSkipsGroundVariables(t *testing.T) {
	s := domain.NewStore()
	v1 := s.NewVar(0, 1)
	v2 := s.NewVar(0, 1)

	_, err := s.Set(domain.LeqVar(v1, 0), domain.Decision())
	require.NoError(t, err)

	b := NewActivityBrancher(0.95)
	b.Register(v1)
	b.Register(v2)

	d, ok := b.NextDecision(s)
	require.True(t, ok)
	require.Equal(t, v2, d.Literal.Variable())
}

func TestActivityBrancherExhausted(t *testing.T) {
	s := domain.NewStore()
	v1 := s.NewVar(0, 1)
	_, err := s.Set(domain.LeqVar(v1, 0), domain.Decision())
	require.NoError(t, err)

	b := NewActivityBrancher(0.95)
	b.Register(v1)

	_, ok := b.NextDecision(s)
	require.False(t, ok)
}

func TestActivityBrancherIgnoresUnregisteredVariables(t *testing.T) {
	s := domain.NewStore()
	_ = s.NewVar(0, 1) // never registered, e.g. a theory-internal variable

	b := NewActivityBrancher(0.95)
	_, ok := b.NextDecision(s)
	require.False(t, ok)
}

func TestActivityBrancherPhaseSavingFromSolution(t *testing.T) {
	s := domain.NewStore()
	v := s.NewVar(0, 10)

	b := NewActivityBrancher(0.95)
	b.Register(v)

	s.SaveState()
	_, err := s.Set(domain.LeqVar(v, 7), domain.Decision())
	require.NoError(t, err)
	s.SaveState()
	_, err = s.Set(domain.Geq(v, 7), domain.Decision())
	require.NoError(t, err)
	b.OnNewSolution(s)

	s.RestoreLast()
	s.RestoreLast()

	d, ok := b.NextDecision(s)
	require.True(t, ok)
	require.Equal(t, domain.Value(7), d.Literal.Bound())
}

func TestLearningRateBrancherRewardsRecentConflicts(t *testing.T) {
	s := domain.NewStore()
	v1 := s.NewVar(0, 1)
	v2 := s.NewVar(0, 1)

	b := NewLearningRateBrancher(0.95)
	b.Register(v1)
	b.Register(v2)

	_, _ = b.NextDecision(s) // assigns v1 (or v2) assignedAt=0
	b.Bump(v1)
	b.Decay() // conflicts -> 1
	_, _ = b.NextDecision(s)
	b.Bump(v2)

	require.Greater(t, b.avgs[v2].Val(), 0.0)
}

func TestChainFallsThroughToSecondBrancher(t *testing.T) {
	s := domain.NewStore()
	v1 := s.NewVar(0, 1)
	v2 := s.NewVar(0, 1)

	first := NewActivityBrancher(0.95)
	second := NewActivityBrancher(0.95)
	chain := NewChain(first, second)
	chain.Register(v1)
	chain.Register(v2)

	_, err := s.Set(domain.LeqVar(v1, 0), domain.Decision())
	require.NoError(t, err)
	_, err = s.Set(domain.LeqVar(v2, 0), domain.Decision())
	require.NoError(t, err)

	_, ok := chain.NextDecision(s)
	require.False(t, ok)
}

func TestChainBroadcastsBumpAndDecay(t *testing.T) {
	s := domain.NewStore()
	v := s.NewVar(0, 1)

	a := NewActivityBrancher(0.95)
	l := NewLearningRateBrancher(0.95)
	chain := NewChain(a, l)
	chain.Register(v)

	chain.Bump(v)
	require.Greater(t, a.scores[v], 0.0)

	chain.Unassign(v)
	chain.Decay()
	require.Equal(t, 1, l.conflicts)
}
