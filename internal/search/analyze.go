package search

import (
	"github.com/rhartert/lcgsolver/internal/domain"
	"github.com/rhartert/lcgsolver/internal/theory"
)

// explainAssignment expands lit's Cause into the conjunction of literals
// that implied it, dispatching on whether the cause was written by clause
// propagation (this package) or a registered theory.
func (s *Solver) explainAssignment(lit domain.Literal, out *[]domain.Literal) {
	idx := s.store.ImplyingEvent(lit)
	ev := s.store.Event(idx)
	cause := ev.Cause

	if !cause.IsInference() {
		panic("search: explainAssignment called on a decision or encoding literal")
	}
	if cause.WriterID == coreWriterID {
		s.clauseArena[cause.Payload].explainAssign(s, out)
		return
	}
	s.theoryByWriter(cause.WriterID).Explain(lit, cause.Payload, s.store, out)
}

func (s *Solver) theoryByWriter(id uint8) theory.Theory {
	for _, t := range s.theories {
		if uint8(t.Identity()) == id {
			return t
		}
	}
	panic("search: no registered theory claims writer id")
}

// analyze performs first-UIP conflict analysis starting from conflict (the
// conjunction of currently entailed literals that a propagator reported as
// contradictory). It returns the learnt clause (asserting literal first)
// and the decision level to backjump to.
func (s *Solver) analyze(conflict []domain.Literal) ([]domain.Literal, int) {
	s.tmpLearnts = s.tmpLearnts[:0]
	s.tmpLearnts = append(s.tmpLearnts, domain.Literal{})
	// Theory-owned variables (e.g. STN timepoints) are allocated straight
	// from the domain store and never go through NewBoolVar, so seen must
	// be grown here rather than relying on NewBoolVar's growTo call alone.
	s.seen.growTo(s.store.NumVariables())
	s.seen.Clear()

	currentLevel := s.store.CurrentDecisionLevel()
	nextIndex := s.store.TrailLen()
	backtrackLevel := 0
	nImplicationPoints := 0

	toExplain := conflict
	var pivot domain.Literal

	for {
		for _, q := range toExplain {
			v := q.Variable()
			if s.seen.Contains(v) {
				continue
			}
			s.seen.Add(v)

			lvl := s.levelOf(q)
			if lvl == currentLevel {
				nImplicationPoints++
				continue
			}
			s.tmpLearnts = append(s.tmpLearnts, q.Not())
			if lvl > backtrackLevel {
				backtrackLevel = lvl
			}
		}

		for {
			nextIndex--
			ev := s.store.Event(nextIndex)
			v := ev.Affected.Variable()
			if s.seen.Contains(v) {
				pivot = ev.NewLiteral()
				break
			}
		}

		nImplicationPoints--
		if nImplicationPoints <= 0 {
			break
		}

		toExplain = toExplain[:0]
		s.explainAssignment(pivot, &toExplain)
	}

	s.tmpLearnts[0] = pivot.Not()
	learnt := append([]domain.Literal(nil), s.tmpLearnts...)
	return learnt, backtrackLevel
}

// record adds a learnt clause to the database and asserts its first
// (asserting) literal. Conflict analysis guarantees the clause's other
// literals are all false at the backjumped-to level, so this enqueue never
// fails.
//
// A one-literal learnt clause was already asserted by newClause itself (it
// has no other literals to be the antecedent of); a two-or-more literal
// clause is only watched by newClause, so its asserting literal must still
// be enqueued here, citing the clause as cause.
func (s *Solver) record(learnt []domain.Literal) error {
	c, ok, err := newClause(s, learnt, true)
	if err != nil {
		return err
	}
	if !ok {
		s.unsat = true
		return nil
	}
	if c == nil {
		return nil
	}
	if c.watched() {
		s.learnts = append(s.learnts, c)
		if _, err := s.enqueue(c.literals[0], clauseCause(s, c)); err != nil {
			return err
		}
	}
	return nil
}
