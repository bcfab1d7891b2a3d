package search

import (
	"errors"
	"fmt"
	"time"

	"github.com/rhartert/lcgsolver/internal/domain"
	"github.com/rhartert/lcgsolver/internal/theory"
)

// assume pushes a new decision level, saving every backtrackable
// component's state in lockstep, and enqueues lit as a free choice.
func (s *Solver) assume(lit domain.Literal) error {
	s.store.SaveState()
	for _, th := range s.theories {
		th.SaveState()
	}
	s.brancher.SaveState()
	_, err := s.enqueue(lit, domain.Decision())
	return err
}

// cancelUntil backjumps every backtrackable component to the given
// decision level, notifying the brancher of every variable that becomes
// unassigned in the process.
func (s *Solver) cancelUntil(level int) {
	unassigned := map[domain.Variable]struct{}{}
	for s.store.CurrentDecisionLevel() > level {
		s.store.RestoreLastWithHook(func(e domain.Event) {
			v := e.Affected.Variable()
			if !s.store.IsGround(v) {
				unassigned[v] = struct{}{}
			}
		})
		for _, th := range s.theories {
			if th.NumSaved() > 0 {
				th.RestoreLast()
			}
		}
		if s.brancher.NumSaved() > 0 {
			s.brancher.RestoreLast()
		}
		// The litQueue and event cursor only ever hold events between
		// decisions, never spanning a backjump, but clearing them here
		// keeps propagate's fixed-point loop from acting on now-stale
		// entries if a conflict is found mid-propagation.
		s.litQueue.Clear()
		s.cursor.Rewind(s.store.TrailLen())
	}
	for v := range unassigned {
		s.brancher.Unassign(v)
	}
}

// conflictExplanation turns a propagation error into the conjunction of
// literals whose simultaneous truth is contradictory, regardless of
// whether the contradiction came from clause propagation or a theory.
func (s *Solver) conflictExplanation(err error) []domain.Literal {
	var cc *clauseContradiction
	if errors.As(err, &cc) {
		var out []domain.Literal
		cc.clause.explainFailure(s, &out)
		return out
	}
	var contra *theory.Contradiction
	if errors.As(err, &contra) {
		return contra.Explanation
	}
	var empty *domain.EmptyDomainError
	if errors.As(err, &empty) {
		v := empty.Var
		return []domain.Literal{domain.Geq(v, s.store.LB(v)), domain.LeqVar(v, s.store.UB(v))}
	}
	panic(fmt.Sprintf("search: unexplainable conflict: %v", err))
}

// Solve runs Search in rounds, growing the conflict and learnt-clause
// budgets between rounds, until the status is decided or a configured stop
// condition (max conflicts, timeout) is reached.
func (s *Solver) Solve() Status {
	numLearnts := int64(len(s.constraints))/3 + 1
	status := Unknown
	s.startTime = time.Now()

	for status == Unknown {
		limit := s.restarts.NextLimit()
		status = s.runUntil(limit, numLearnts)
		numLearnts += numLearnts / 20

		if s.shouldStop() {
			break
		}
	}

	s.cancelUntil(0)
	return status
}

// runUntil searches until nConflicts conflicts have accumulated in this
// round, a solution or contradiction is found, or a stop condition fires.
func (s *Solver) runUntil(nConflicts int64, nLearnts int64) Status {
	if s.unsat {
		return Unsatisfiable
	}
	s.Stats.TotalRestarts++
	var roundConflicts int64

	for !s.shouldStop() {
		s.Stats.TotalIterations++

		if err := s.propagate(); err != nil {
			s.Stats.TotalConflicts++
			roundConflicts++

			if s.store.CurrentDecisionLevel() == 0 {
				s.unsat = true
				return Unsatisfiable
			}

			explanation := s.conflictExplanation(err)
			learnt, backtrackLevel := s.analyze(explanation)
			for _, lit := range learnt {
				s.brancher.Bump(lit.Variable())
			}

			s.cancelUntil(backtrackLevel)
			if err := s.record(learnt); err != nil {
				s.unsat = true
				return Unsatisfiable
			}

			s.decayClauseActivity()
			s.brancher.Decay()
			continue
		}

		if s.store.CurrentDecisionLevel() == 0 {
			s.Simplify()
		}

		if int64(len(s.learnts)) >= nLearnts {
			s.ReduceDB()
		}

		if roundConflicts > nConflicts {
			s.cancelUntil(0)
			return Unknown
		}

		d, ok := s.brancher.NextDecision(s.store)
		if !ok {
			s.saveModel()
			s.cancelUntil(0)
			return Satisfiable
		}
		if d.Restart {
			s.cancelUntil(0)
			return Unknown
		}

		if err := s.assume(d.Literal); err != nil {
			// The decision itself contradicted an existing bound; treat it
			// as an immediate conflict to analyze rather than asserting it.
			s.Stats.TotalConflicts++
			if s.store.CurrentDecisionLevel() == 0 {
				s.unsat = true
				return Unsatisfiable
			}
			explanation := s.conflictExplanation(err)
			learnt, backtrackLevel := s.analyze(explanation)
			s.cancelUntil(backtrackLevel)
			if err := s.record(learnt); err != nil {
				s.unsat = true
				return Unsatisfiable
			}
		}
	}

	return Unknown
}

func (s *Solver) saveModel() {
	model := make(Model, s.store.NumVariables())
	for v := 0; v < s.store.NumVariables(); v++ {
		model[v] = s.store.UB(domain.Variable(v))
	}
	s.Models = append(s.Models, model)
	s.brancher.OnNewSolution(s.store)
}
