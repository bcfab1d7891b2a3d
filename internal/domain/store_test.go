package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewVarInitialBounds(t *testing.T) {
	s := NewStore()
	v := s.NewVar(0, 10)

	require.Equal(t, Value(0), s.LB(v))
	require.Equal(t, Value(10), s.UB(v))
	require.True(t, s.Entails(LeqVar(v, 10)))
	require.False(t, s.Entails(LeqVar(v, 9)))
}

func TestSetStrengthensAndReportsChange(t *testing.T) {
	s := NewStore()
	v := s.NewVar(0, 10)

	changed, err := s.Set(LeqVar(v, 5), Decision())
	require.NoError(t, err)
	require.True(t, changed)
	require.Equal(t, Value(5), s.UB(v))

	// Setting a weaker bound is a no-op.
	changed, err = s.Set(LeqVar(v, 8), Decision())
	require.NoError(t, err)
	require.False(t, changed)
	require.Equal(t, Value(5), s.UB(v))
}

func TestSetDetectsEmptyDomain(t *testing.T) {
	s := NewStore()
	v := s.NewVar(0, 10)

	_, err := s.Set(LeqVar(v, 5), Decision())
	require.NoError(t, err)

	_, err = s.Set(Geq(v, 6), Decision())
	require.Error(t, err)

	var emptyErr *EmptyDomainError
	require.ErrorAs(t, err, &emptyErr)
	require.Equal(t, v, emptyErr.Var)
}

func TestSaveRestoreRoundTrips(t *testing.T) {
	s := NewStore()
	v := s.NewVar(0, 10)

	s.SaveState()
	_, err := s.Set(LeqVar(v, 3), Decision())
	require.NoError(t, err)
	require.Equal(t, Value(3), s.UB(v))

	s.RestoreLast()
	require.Equal(t, Value(10), s.UB(v))
	require.Equal(t, 0, s.NumSaved())
}

func TestNestedSaveRestore(t *testing.T) {
	s := NewStore()
	v := s.NewVar(0, 100)

	s.SaveState()
	s.Set(LeqVar(v, 50), Decision())

	s.SaveState()
	s.Set(LeqVar(v, 20), Decision())
	require.Equal(t, Value(20), s.UB(v))

	s.RestoreLast()
	require.Equal(t, Value(50), s.UB(v))

	s.RestoreLast()
	require.Equal(t, Value(100), s.UB(v))
}

func TestImplyingEventFindsEarliestCause(t *testing.T) {
	s := NewStore()
	v := s.NewVar(0, 100)

	s.Set(LeqVar(v, 50), InferredBy(1, 0))
	s.Set(LeqVar(v, 30), InferredBy(1, 1))
	s.Set(LeqVar(v, 30), InferredBy(1, 2)) // no-op, doesn't entail more strongly

	idx := s.ImplyingEvent(LeqVar(v, 60))
	ev := s.Event(idx)
	require.Equal(t, Value(50), ev.NewValue)

	idx = s.ImplyingEvent(LeqVar(v, 30))
	ev = s.Event(idx)
	require.Equal(t, Value(30), ev.NewValue)
	require.Equal(t, uint32(1), ev.Cause.Payload)
}

func TestZeroVariableIsFixed(t *testing.T) {
	s := NewStore()
	require.Equal(t, Value(0), s.UB(Zero))
	require.Equal(t, Value(0), s.LB(Zero))
	require.True(t, s.Entails(TRUE))
	require.False(t, s.Entails(FALSE))
}
