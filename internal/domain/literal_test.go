package domain

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNotIsInvolution(t *testing.T) {
	a := LeqVar(5, 3)
	require.Equal(t, a, a.Not().Not())
}

func TestTrueFalse(t *testing.T) {
	require.Equal(t, FALSE, TRUE.Not())
	require.Equal(t, TRUE, FALSE.Not())
	require.NotEqual(t, TRUE, FALSE)
}

func TestEntailment(t *testing.T) {
	a := LeqVar(1, 1)
	require.True(t, a.Entails(LeqVar(1, 1)))
	require.True(t, a.Entails(LeqVar(1, 2)))
	require.False(t, a.Entails(LeqVar(1, 0)))

	b := LeqVar(2, 1)
	require.False(t, a.Entails(b))
}

func TestGeqUnpacksCorrectly(t *testing.T) {
	v := Variable(7)
	lit := Geq(v, 3)
	gotVar, rel, val := lit.Unpack()
	require.Equal(t, v, gotVar)
	require.Equal(t, Gt, rel)
	require.Equal(t, Value(2), val)
}

func TestLexicalOrderingGroupsByVariable(t *testing.T) {
	x := Variable(1)
	y := Variable(2)

	lits := []Literal{
		Geq(y, 4),
		Geq(x, 1),
		LeqVar(x, 3),
		LeqVar(x, 4),
		LeqVar(x, 6),
		Geq(x, 2),
	}
	sort.Slice(lits, func(i, j int) bool { return Less(lits[i], lits[j]) })

	want := []Literal{
		Geq(x, 2),
		Geq(x, 1),
		LeqVar(x, 3),
		LeqVar(x, 4),
		LeqVar(x, 6),
		Geq(y, 4),
	}
	require.Equal(t, want, lits)
}
