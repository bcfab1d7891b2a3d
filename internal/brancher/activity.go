package brancher

import (
	"github.com/rhartert/lcgsolver/internal/domain"
	"github.com/rhartert/yagh"
)

// ActivityBrancher orders variables by a VSIDS-like activity score kept in a
// binary heap, breaking ties by declaration order, and proposes the variable
// with the highest score whenever it is not already ground. It picks the
// branching value by phase saving: the variable's value in the last
// solution found, or its lower bound if none was found yet.
type ActivityBrancher struct {
	order *yagh.IntMap[float64]

	scores     []float64
	scoreInc   float64
	scoreDecay float64

	phases     []domain.Value
	branchable []bool

	registered int
}

// NewActivityBrancher returns an activity brancher that decays scores by
// dividing the bump increment by decay (decay must be in (0, 1]) after
// every conflict.
func NewActivityBrancher(decay float64) *ActivityBrancher {
	return &ActivityBrancher{
		order:      yagh.New[float64](0),
		scoreInc:   1,
		scoreDecay: decay,
	}
}

// growTo grows the heap and bookkeeping slices to cover at least n
// variables, so that a variable's score/phase/branchable slot always
// exists by the time it is referenced by index, whether or not it has
// been registered as a branching candidate yet.
func (b *ActivityBrancher) growTo(n int) {
	for b.registered < n {
		b.scores = append(b.scores, 0)
		// No solution seen yet: NextDecision clamps this to the lower bound.
		b.phases = append(b.phases, -domain.MaxValue)
		b.branchable = append(b.branchable, false)
		b.order.GrowBy(1)
		b.registered++
	}
}

// Register implements Brancher: it makes v a branching candidate,
// inserting it into the heap immediately so it may be picked by a future
// NextDecision call.
func (b *ActivityBrancher) Register(v domain.Variable) {
	b.growTo(int(v) + 1)
	b.branchable[v] = true
	b.order.Put(int(v), -b.scores[v])
}

// NextDecision implements Brancher.
func (b *ActivityBrancher) NextDecision(domains *domain.Store) (Decision, bool) {
	for {
		next, ok := b.order.Pop()
		if !ok {
			return Decision{}, false
		}
		v := domain.Variable(next.Elem)
		if domains.IsGround(v) {
			continue
		}
		val := b.phases[v]
		lb, ub := domains.LB(v), domains.UB(v)
		if val < lb {
			val = lb
		}
		if val > ub {
			val = ub
		}
		return SetLiteral(domain.LeqVar(v, val)), true
	}
}

// Bump implements Brancher.
func (b *ActivityBrancher) Bump(v domain.Variable) {
	if int(v) >= len(b.scores) {
		return
	}
	newScore := b.scores[v] + b.scoreInc
	b.scores[v] = newScore
	if b.order.Contains(int(v)) {
		b.order.Put(int(v), -newScore)
	}
	if newScore > 1e100 {
		b.rescale()
	}
}

// Decay implements Brancher.
func (b *ActivityBrancher) Decay() {
	b.scoreInc /= b.scoreDecay
	if b.scoreInc > 1e100 {
		b.rescale()
	}
}

// Unassign implements Brancher.
func (b *ActivityBrancher) Unassign(v domain.Variable) {
	if int(v) >= len(b.scores) || !b.branchable[v] {
		return
	}
	b.order.Put(int(v), -b.scores[v])
}

// OnNewSolution implements Brancher: it records each variable's value in
// the found solution as the phase to try first next time it is branched
// on.
func (b *ActivityBrancher) OnNewSolution(domains *domain.Store) {
	for v := 0; v < len(b.phases); v++ {
		if b.branchable[v] {
			b.phases[v] = domains.UB(domain.Variable(v))
		}
	}
}

func (b *ActivityBrancher) rescale() {
	b.scoreInc *= 1e-100
	for v, s := range b.scores {
		newScore := s * 1e-100
		b.scores[v] = newScore
		if b.order.Contains(v) {
			b.order.Put(v, -newScore)
		}
	}
}

// SaveState, RestoreLast and NumSaved implement Brancher. The activity
// brancher carries no state that needs to track decision levels: scores and
// phases persist across backtracks by design (that is the point of phase
// saving), so these are no-ops reporting a level count of zero.
func (b *ActivityBrancher) SaveState() int { return 0 }
func (b *ActivityBrancher) RestoreLast()   {}
func (b *ActivityBrancher) NumSaved() int  { return 0 }
