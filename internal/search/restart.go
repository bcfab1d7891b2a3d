package search

// RestartPolicy produces the sequence of conflict budgets between restarts.
// Search calls NextLimit once per restart to learn how many conflicts the
// next run may accumulate before restarting again.
type RestartPolicy interface {
	NextLimit() int64
}

// LubyRestarts follows the Luby sequence (1,1,2,1,1,2,4,1,1,2,1,1,2,4,8,...)
// scaled by a unit budget, which in practice outperforms a pure geometric
// schedule by avoiding long unlucky runs without ever growing unboundedly
// slow to recover from them.
type LubyRestarts struct {
	unit  int64
	index int64
}

// NewLubyRestarts returns a Luby-sequence restart policy scaled by unit
// conflicts.
func NewLubyRestarts(unit int64) *LubyRestarts {
	return &LubyRestarts{unit: unit}
}

// NextLimit implements RestartPolicy.
func (l *LubyRestarts) NextLimit() int64 {
	l.index++
	return l.unit * luby(l.index)
}

// luby returns the i-th term (1-indexed) of the Luby sequence.
func luby(i int64) int64 {
	// Find the finite Luby subsequence of length 2^k - 1 containing i.
	x := i - 1 // 0-indexed position
	k := int64(0)
	size := int64(1)
	for size < x+1 {
		k++
		size = 2*size + 1
	}
	for size-1 != x {
		size = (size - 1) / 2
		k--
		x = x % size
	}
	return int64(1) << uint(k)
}

// GeometricRestarts grows the conflict budget by a fixed factor after every
// restart, the schedule the teacher solver's Solve loop used directly
// inline (numConflicts += numConflicts/10).
type GeometricRestarts struct {
	limit  int64
	growth int64 // percent growth applied after each call, e.g. 10 for +10%
}

// NewGeometricRestarts returns a restart policy starting at initialLimit
// conflicts and growing by growthPercent% after each restart.
func NewGeometricRestarts(initialLimit int64, growthPercent int64) *GeometricRestarts {
	return &GeometricRestarts{limit: initialLimit, growth: growthPercent}
}

// NextLimit implements RestartPolicy.
func (g *GeometricRestarts) NextLimit() int64 {
	limit := g.limit
	g.limit += g.limit * g.growth / 100
	return limit
}
