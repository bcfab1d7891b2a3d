package brancher

import "github.com/rhartert/lcgsolver/internal/domain"

// Chain combines branchers in priority order: NextDecision asks each
// brancher in turn and returns the first one that still has an unassigned
// variable to propose. Bump, Decay, Unassign and OnNewSolution are
// broadcast to every brancher in the chain, and the save/restore triad
// aggregates each member's count of saved states.
type Chain struct {
	branchers []Brancher
}

// NewChain returns a brancher that tries each of bs in order.
func NewChain(bs ...Brancher) *Chain {
	return &Chain{branchers: bs}
}

// Register implements Brancher.
func (c *Chain) Register(v domain.Variable) {
	for _, b := range c.branchers {
		b.Register(v)
	}
}

// NextDecision implements Brancher.
func (c *Chain) NextDecision(domains *domain.Store) (Decision, bool) {
	for _, b := range c.branchers {
		if d, ok := b.NextDecision(domains); ok {
			return d, true
		}
	}
	return Decision{}, false
}

// Bump implements Brancher.
func (c *Chain) Bump(v domain.Variable) {
	for _, b := range c.branchers {
		b.Bump(v)
	}
}

// Decay implements Brancher.
func (c *Chain) Decay() {
	for _, b := range c.branchers {
		b.Decay()
	}
}

// Unassign implements Brancher.
func (c *Chain) Unassign(v domain.Variable) {
	for _, b := range c.branchers {
		b.Unassign(v)
	}
}

// OnNewSolution implements Brancher.
func (c *Chain) OnNewSolution(domains *domain.Store) {
	for _, b := range c.branchers {
		b.OnNewSolution(domains)
	}
}

// SaveState implements Brancher.
func (c *Chain) SaveState() int {
	level := 0
	for _, b := range c.branchers {
		level = b.SaveState()
	}
	return level
}

// RestoreLast implements Brancher.
func (c *Chain) RestoreLast() {
	for _, b := range c.branchers {
		if b.NumSaved() > 0 {
			b.RestoreLast()
		}
	}
}

// NumSaved implements Brancher.
func (c *Chain) NumSaved() int {
	max := 0
	for _, b := range c.branchers {
		if n := b.NumSaved(); n > max {
			max = n
		}
	}
	return max
}
