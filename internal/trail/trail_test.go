package trail

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSaveRestore(t *testing.T) {
	tr := New[int]()

	tr.Push(1)
	tr.Push(2)
	lvl := tr.SaveState()
	require.Equal(t, 1, lvl)

	tr.Push(3)
	tr.Push(4)

	var undone []int
	tr.RestoreLastWith(func(e int) { undone = append(undone, e) })

	require.Equal(t, []int{4, 3}, undone)
	require.Equal(t, 2, tr.Len())
	require.Equal(t, 0, tr.NumSaved())
}

func TestNestedLevels(t *testing.T) {
	tr := New[string]()
	tr.Push("a")
	tr.SaveState()
	tr.Push("b")
	tr.SaveState()
	tr.Push("c")

	require.Equal(t, 2, tr.CurrentDecisionLevel())

	tr.RestoreLastWith(func(string) {})
	require.Equal(t, 1, tr.CurrentDecisionLevel())
	require.Equal(t, 2, tr.Len())

	tr.RestoreLastWith(func(string) {})
	require.Equal(t, 0, tr.CurrentDecisionLevel())
	require.Equal(t, 1, tr.Len())
}

func TestPopWithinLevel(t *testing.T) {
	tr := New[int]()
	tr.Push(1)
	tr.SaveState()
	tr.Push(2)
	tr.Push(3)

	e, ok := tr.PopWithinLevel()
	require.True(t, ok)
	require.Equal(t, 3, e)

	e, ok = tr.PopWithinLevel()
	require.True(t, ok)
	require.Equal(t, 2, e)

	// Cannot pop past the decision level marker.
	_, ok = tr.PopWithinLevel()
	require.False(t, ok)
}

func TestCursor(t *testing.T) {
	tr := New[int]()
	c1 := tr.Cursor()

	tr.Push(10)
	tr.Push(20)

	c2 := tr.Cursor()

	require.Equal(t, 2, c1.NumPending())
	v, ok := c1.Pop()
	require.True(t, ok)
	require.Equal(t, 10, v)

	tr.Push(30)
	require.Equal(t, 2, c1.NumPending())
	require.Equal(t, 3, c2.NumPending())

	c2.Rewind(0)
	require.Equal(t, 3, c2.NumPending())
}
