package stn

import (
	"testing"

	"github.com/rhartert/lcgsolver/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestSimplePropagation(t *testing.T) {
	store := domain.NewStore()
	a := store.NewVar(0, 10)
	b := store.NewVar(0, 10)

	th := NewTheory(DefaultConfig)
	th.AddReifiedEdge(store, domain.TRUE, a, b, 5) // b - a <= 5
	require.NoError(t, th.Propagate(store))

	_, err := store.Set(domain.LeqVar(a, 3), domain.Decision())
	require.NoError(t, err)
	require.NoError(t, th.Propagate(store))

	require.Equal(t, domain.Value(8), store.UB(b))
}

func TestCycleDetection(t *testing.T) {
	store := domain.NewStore()
	a := store.NewVar(0, 10)
	b := store.NewVar(0, 10)

	th := NewTheory(DefaultConfig)

	th.AddReifiedEdge(store, domain.TRUE, a, b, 2) // b - a <= 2
	require.NoError(t, th.Propagate(store))

	th.AddReifiedEdge(store, domain.TRUE, b, a, -3) // a - b <= -3
	err := th.Propagate(store)
	require.Error(t, err)
}

func TestBacktrackingRestoresBounds(t *testing.T) {
	store := domain.NewStore()
	a := store.NewVar(0, 10)
	b := store.NewVar(0, 10)

	th := NewTheory(DefaultConfig)
	th.AddReifiedEdge(store, domain.TRUE, a, b, 5) // b - a <= 5
	require.NoError(t, th.Propagate(store))
	_, err := store.Set(domain.LeqVar(a, 3), domain.Decision())
	require.NoError(t, err)
	require.NoError(t, th.Propagate(store))
	require.Equal(t, domain.Value(3), store.UB(a))
	require.Equal(t, domain.Value(8), store.UB(b))

	store.SaveState()
	th.SaveState()

	th.AddReifiedEdge(store, domain.TRUE, b, a, -6) // a - b <= -6
	propErr := th.Propagate(store)
	require.Error(t, propErr)

	store.RestoreLast()
	th.RestoreLast()

	require.Equal(t, domain.Value(0), store.LB(a))
	require.Equal(t, domain.Value(3), store.UB(a))
	require.Equal(t, domain.Value(0), store.LB(b))
	require.Equal(t, domain.Value(8), store.UB(b))
}

func TestTheoryPropagationEdges(t *testing.T) {
	store := domain.NewStore()
	a := store.NewVar(0, 30)
	b := store.NewVar(0, 30)
	a1 := store.NewVar(0, 30)
	b1 := store.NewVar(0, 30)
	topVar := store.NewVar(0, 1)
	bottomVar := store.NewVar(0, 1)
	topLit := domain.Geq(topVar, 1)
	bottomLit := domain.Geq(bottomVar, 1)

	cfg := Config{PropagationLevel: PropagateEdges}
	th := NewTheory(cfg)

	th.AddReifiedEdge(store, domain.TRUE, a, a1, 0)  // a1 - a <= 0
	th.AddReifiedEdge(store, domain.TRUE, a1, a, 0)  // a - a1 <= 0
	th.AddReifiedEdge(store, domain.TRUE, b, b1, 0)  // b1 - b <= 0
	th.AddReifiedEdge(store, domain.TRUE, b1, b, 0)  // b - b1 <= 0
	th.AddReifiedEdge(store, topLit, a, b, -1)       // b - a <= -1, iff topLit
	th.AddReifiedEdge(store, bottomLit, b1, a1, -1)  // a1 - b1 <= -1, iff bottomLit
	require.NoError(t, th.Propagate(store))

	_, err := store.Set(topLit, domain.Decision())
	require.NoError(t, err)
	require.NoError(t, th.Propagate(store))

	require.True(t, store.Entails(bottomLit.Not()), "activating top should force bottom's enabler false")
}

func TestSelfLoopNonNegativeIsNoOp(t *testing.T) {
	store := domain.NewStore()
	v := store.NewVar(0, 10)

	th := NewTheory(DefaultConfig)
	th.AddReifiedEdge(store, domain.TRUE, v, v, 0) // v - v <= 0
	require.NoError(t, th.Propagate(store))
	require.Equal(t, domain.Value(10), store.UB(v))
}

func TestSelfLoopNegativeIsContradiction(t *testing.T) {
	store := domain.NewStore()
	v := store.NewVar(0, 10)

	th := NewTheory(DefaultConfig)
	th.AddReifiedEdge(store, domain.TRUE, v, v, -1) // v - v <= -1
	require.Error(t, th.Propagate(store))
}
