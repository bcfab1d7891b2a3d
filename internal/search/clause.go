package search

import (
	"strings"

	"github.com/rhartert/lcgsolver/internal/domain"
)

// Clause is a disjunction of bound literals. A clause of two or more
// literals is propagated with a two-watched-literal scheme: only
// clauses.literals[0] and
// clauses.literals[1] are registered as watches, so adding or strengthening
// a bound elsewhere in the domain store never touches the clause.
type Clause struct {
	id uint32 // index into the solver's clause arena, used as a Cause payload

	literals []domain.Literal

	activity float64 // relevance estimate for learnt clauses, used by ReduceDB
	lbd      uint32   // literal block distance: number of distinct decision levels spanned

	learnt    bool
	protected bool // exempted from the next ReduceDB pass
}

// newClause builds a clause from lits, watching its first two literals on
// s. If !learnt, lits is first simplified against the root-level domains:
// literals already false are dropped, a clause containing a literal and its
// negation (tautology) or already-true literal is discarded as trivially
// satisfied, and duplicates are removed.
//
// A clause reduced to a single literal is still registered (so that it
// remains a valid, explainable Cause for that literal: explainAssign on a
// one-literal clause naturally yields no antecedents, i.e. "holds
// unconditionally") but is not watched, since watching requires two
// literals.
//
// It returns (clause, ok, err): ok is false if the clause is
// unsatisfiable outright (the empty clause, or every literal already
// false); err is non-nil only when enqueuing a unit clause's sole literal
// produces a domain contradiction.
func newClause(s *Solver, lits []domain.Literal, learnt bool) (*Clause, bool, error) {
	size := len(lits)

	if !learnt {
		seen := map[domain.Literal]struct{}{}
		for i := size - 1; i >= 0; i-- {
			if _, ok := seen[lits[i].Not()]; ok {
				return nil, true, nil // tautology
			}
			if _, ok := seen[lits[i]]; ok {
				size--
				lits[i], lits[size] = lits[size], lits[i]
				continue
			}
			seen[lits[i]] = struct{}{}

			switch s.litValue(lits[i]) {
			case litTrue:
				return nil, true, nil
			case litFalse:
				size--
				lits[i], lits[size] = lits[size], lits[i]
			}
		}
		lits = lits[:size]
	}

	if size == 0 {
		return nil, false, nil
	}

	c := &Clause{
		learnt:   learnt,
		literals: append([]domain.Literal(nil), lits[:size]...),
	}
	if learnt {
		c.lbd = s.literalBlockDistance(c.literals)
	}
	c.id = s.registerClause(c)

	if size >= 2 {
		if learnt {
			// Watch the literal asserted at the highest decision level
			// besides the asserting (index 0) literal, so that backjumping
			// to the clause's backtrack level immediately re-triggers
			// propagation.
			maxLevel := -1
			wl := -1
			for i := 1; i < len(c.literals); i++ {
				if lvl := s.levelOf(c.literals[i].Not()); lvl > maxLevel {
					maxLevel = lvl
					wl = i
				}
			}
			c.literals[wl], c.literals[1] = c.literals[1], c.literals[wl]
		}
		s.watch(c, c.literals[0].Not(), c.literals[1])
		s.watch(c, c.literals[1].Not(), c.literals[0])
		return c, true, nil
	}

	// Unit clause: assert its one literal directly, citing this clause (with
	// its necessarily-empty antecedent list) as the cause.
	_, err := s.enqueue(c.literals[0], clauseCause(s, c))
	if err != nil {
		return c, false, err
	}
	return c, true, nil
}

// watched reports whether c has two or more literals and is therefore
// registered on the watch lists (a one-literal clause is only ever an
// arena entry recording a Cause).
func (c *Clause) watched() bool {
	return len(c.literals) >= 2
}

// locked reports whether c is the reason some currently-assigned variable
// was propagated, which makes it unsafe to remove.
func (c *Clause) locked(s *Solver) bool {
	return s.isReasonFor(c, c.literals[0])
}

func (c *Clause) remove(s *Solver) {
	if !c.watched() {
		return
	}
	s.unwatch(c, c.literals[0].Not())
	s.unwatch(c, c.literals[1].Not())
}

// simplify drops literals already false in the root domains and reports
// whether the clause as a whole is now satisfied and can be discarded.
func (c *Clause) simplify(s *Solver) bool {
	j := 0
	for i := 0; i < len(c.literals); i++ {
		switch s.litValue(c.literals[i]) {
		case litTrue:
			return true
		case litFalse:
			// drop
		default:
			c.literals[j] = c.literals[i]
			j++
		}
	}
	c.literals = c.literals[:j]
	return false
}

// propagate is invoked when l (one of the clause's watched negations)
// becomes true. It restores the two-watcher invariant and returns nil if
// the clause remains non-conflicting, or the contradiction produced by
// propagating its last remaining literal.
func (c *Clause) propagate(s *Solver, l domain.Literal) error {
	opp := l.Not()
	if c.literals[0] == opp {
		c.literals[0], c.literals[1] = c.literals[1], opp
	}

	if s.litValue(c.literals[0]) == litTrue {
		s.watch(c, l, c.literals[0])
		return nil
	}

	for i := 2; i < len(c.literals); i++ {
		if s.litValue(c.literals[i]) != litFalse {
			c.literals[1], c.literals[i] = c.literals[i], opp
			s.watch(c, c.literals[1].Not(), c.literals[0])
			return nil
		}
	}

	s.watch(c, l, c.literals[0])
	_, err := s.enqueue(c.literals[0], clauseCause(s, c))
	return err
}

// explainFailure returns the negation of every literal in c: since c is
// false, each of its literals is false, so their negations are the
// conjunction of literals that explain the contradiction.
func (c *Clause) explainFailure(s *Solver, out *[]domain.Literal) {
	for _, l := range c.literals {
		*out = append(*out, l.Not())
	}
	if c.learnt {
		s.bumpClauseActivity(c)
	}
}

// explainAssign returns why c propagated literals[0]: the negation of
// every other literal in the clause.
func (c *Clause) explainAssign(s *Solver, out *[]domain.Literal) {
	for _, l := range c.literals[1:] {
		*out = append(*out, l.Not())
	}
	if c.learnt {
		s.bumpClauseActivity(c)
	}
}

func (c *Clause) String() string {
	if len(c.literals) == 0 {
		return "Clause[]"
	}
	sb := strings.Builder{}
	sb.WriteString("Clause[")
	sb.WriteString(c.literals[0].String())
	for _, l := range c.literals[1:] {
		sb.WriteByte(' ')
		sb.WriteString(l.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
