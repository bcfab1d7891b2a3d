// Package search implements the lazy-clause-generation CDCL core: the
// clause database and its two-watched-literal propagator, 1-UIP conflict
// analysis, restart control, and the main decide/propagate/analyze loop
// that drives both clausal reasoning and any registered theories (e.g. the
// STN difference-logic theory) to a shared fixed point.
package search

import (
	"fmt"
	"sort"
	"time"

	"github.com/rhartert/lcgsolver/internal/brancher"
	"github.com/rhartert/lcgsolver/internal/domain"
	"github.com/rhartert/lcgsolver/internal/theory"
	"github.com/rhartert/lcgsolver/internal/trail"
	"github.com/sirupsen/logrus"
)

// coreWriterID tags every Cause produced directly by clause propagation, as
// opposed to causes produced by a registered theory (WriterID >= 1).
const coreWriterID uint8 = 0

type triState int8

const (
	litUnknown triState = iota
	litTrue
	litFalse
)

// watcher is one entry in a literal's watch list: the clause to wake and a
// guard literal that, if already true, lets propagation skip loading the
// clause entirely.
type watcher struct {
	clause *Clause
	guard  domain.Literal
}

// Status is the outcome of a solve attempt.
type Status int

const (
	Unknown Status = iota
	Satisfiable
	Unsatisfiable
)

func (s Status) String() string {
	switch s {
	case Satisfiable:
		return "SATISFIABLE"
	case Unsatisfiable:
		return "UNSATISFIABLE"
	default:
		return "UNKNOWN"
	}
}

// Options configures a Solver's search behavior.
type Options struct {
	ClauseDecay   float64
	VariableDecay float64
	MaxConflicts  int64
	Timeout       time.Duration
	RestartPolicy RestartPolicy
	Logger        *logrus.Logger

	// Cancel, if non-nil, is checked alongside MaxConflicts/Timeout at
	// every search-loop iteration boundary; a closed channel stops the
	// solver cooperatively without corrupting state, the way a portfolio
	// worker is told another worker already found the answer.
	Cancel <-chan struct{}
}

// DefaultOptions mirrors conventional MiniSat-family defaults.
var DefaultOptions = Options{
	ClauseDecay:   0.999,
	VariableDecay: 0.95,
	MaxConflicts:  -1,
	RestartPolicy: NewLubyRestarts(100),
}

// Solver is the CDCL search core: it owns the domain store, the clause
// database, and the set of registered theories and branchers it
// coordinates to find a satisfying assignment or prove none exists.
type Solver struct {
	store    *domain.Store
	theories []theory.Theory
	brancher brancher.Brancher
	log      *logrus.Logger

	constraints []*Clause
	learnts     []*Clause
	clauseArena []*Clause
	clauseInc   float64
	clauseDecay float64

	// watchers is keyed by the exact watched domain.Literal, and
	// propagate matches it against ev.NewLiteral() by equality. This is
	// sound only because every clause literal built by this package
	// bounds a boolean [0,1] variable, whose bound can only ever step
	// through the single value a clause watches, never skip past it in
	// one tightening. A clause built over a wider bound literal (e.g. an
	// STN timepoint) could have its watched value jumped over by a
	// single tightening and silently miss propagation; clauses over
	// non-boolean variables are not supported by this watch scheme.
	watchers  map[domain.Literal][]watcher
	litQueue  *litQueue
	cursor    *trail.Cursor[domain.Event]
	seen      *seenSet
	satTrail  []domain.Variable // order SAT variables were assigned, across all levels

	unsat bool

	restarts  RestartPolicy
	Stats     Stats
	startTime time.Time

	hasStopCond bool
	maxConflict int64
	timeout     time.Duration
	cancel      <-chan struct{}

	Models []Model

	tmpReason  []domain.Literal
	tmpLearnts []domain.Literal
}

// Model is a satisfying assignment: the upper bound every variable settled
// to when a solution was found.
type Model []domain.Value

// Stats tracks running search counters. The solver does not print them
// itself; callers such as cmd/lcgsolve report them after Solve returns.
type Stats struct {
	TotalConflicts  int64
	TotalRestarts   int64
	TotalIterations int64
}

// NewSolver returns a solver over the given domain store, driven by
// brancher br and the given (possibly empty) set of theories.
func NewSolver(store *domain.Store, br brancher.Brancher, theories []theory.Theory, opts Options) *Solver {
	log := opts.Logger
	if log == nil {
		log = logrus.StandardLogger()
	}
	restarts := opts.RestartPolicy
	if restarts == nil {
		restarts = NewLubyRestarts(100)
	}

	s := &Solver{
		store:       store,
		theories:    theories,
		brancher:    br,
		log:         log,
		clauseDecay: opts.ClauseDecay,
		clauseInc:   1,
		watchers:    make(map[domain.Literal][]watcher),
		litQueue:    newLitQueue(128),
		cursor:      store.Cursor(),
		seen:        &seenSet{},
		restarts:    restarts,
	}
	if opts.MaxConflicts >= 0 {
		s.hasStopCond = true
		s.maxConflict = opts.MaxConflicts
	} else {
		s.maxConflict = -1
	}
	if opts.Timeout > 0 {
		s.hasStopCond = true
		s.timeout = opts.Timeout
	}
	if opts.Cancel != nil {
		s.hasStopCond = true
		s.cancel = opts.Cancel
	}
	return s
}

func (s *Solver) shouldStop() bool {
	if !s.hasStopCond {
		return false
	}
	if s.maxConflict >= 0 && s.maxConflict <= s.Stats.TotalConflicts {
		return true
	}
	if s.timeout > 0 && s.timeout <= time.Since(s.startTime) {
		return true
	}
	if s.cancel != nil {
		select {
		case <-s.cancel:
			return true
		default:
		}
	}
	return false
}

// Store exposes the underlying domain store, e.g. so a theory can be
// constructed against it before being registered.
func (s *Solver) Store() *domain.Store { return s.store }

// NumVariables returns how many variables the domain store has allocated.
func (s *Solver) NumVariables() int { return s.store.NumVariables() }

// NumConstraints returns the number of original (non-learnt) clauses.
func (s *Solver) NumConstraints() int { return len(s.constraints) }

// NumLearnts returns the number of learnt clauses currently kept.
func (s *Solver) NumLearnts() int { return len(s.learnts) }

// NewBoolVar allocates a fresh boolean variable (domain [0,1]) and
// registers it with the brancher as a candidate decision variable.
func (s *Solver) NewBoolVar() domain.Variable {
	v := s.store.NewVar(0, 1)
	s.seen.growTo(s.store.NumVariables())
	s.brancher.Register(v)
	return v
}

// PosLit and NegLit are the two canonical literals of a boolean variable:
// "v is true" and "v is false".
func PosLit(v domain.Variable) domain.Literal { return domain.Geq(v, 1) }
func NegLit(v domain.Variable) domain.Literal { return domain.LeqVar(v, 0) }

func (s *Solver) litValue(lit domain.Literal) triState {
	if s.store.Entails(lit) {
		return litTrue
	}
	if s.store.Entails(lit.Not()) {
		return litFalse
	}
	return litUnknown
}

func (s *Solver) levelOf(lit domain.Literal) int {
	return s.store.EntailingLevel(lit)
}

func (s *Solver) registerClause(c *Clause) uint32 {
	id := uint32(len(s.clauseArena))
	s.clauseArena = append(s.clauseArena, c)
	return id
}

func clauseCause(s *Solver, c *Clause) domain.Cause {
	return domain.InferredBy(coreWriterID, c.id)
}

func (s *Solver) isReasonFor(c *Clause, lit domain.Literal) bool {
	if !s.store.Entails(lit) {
		return false
	}
	idx := s.store.ImplyingEvent(lit)
	ev := s.store.Event(idx)
	return ev.Cause.Kind == domain.CauseInference &&
		ev.Cause.WriterID == coreWriterID &&
		ev.Cause.Payload == c.id
}

func (s *Solver) watch(c *Clause, watchLit, guard domain.Literal) {
	s.watchers[watchLit] = append(s.watchers[watchLit], watcher{clause: c, guard: guard})
}

func (s *Solver) unwatch(c *Clause, watchLit domain.Literal) {
	ws := s.watchers[watchLit]
	j := 0
	for i := range ws {
		if ws[i].clause != c {
			ws[j] = ws[i]
			j++
		}
	}
	s.watchers[watchLit] = ws[:j]
}

// enqueue strengthens lit's bound with the given cause. It returns
// changed=false if lit was already entailed, or an error if doing so
// leaves the affected variable's domain empty (a contradiction).
func (s *Solver) enqueue(lit domain.Literal, cause domain.Cause) (bool, error) {
	changed, err := s.store.Set(lit, cause)
	if err != nil {
		return false, err
	}
	return changed, nil
}

// AddClause adds an original (non-learnt) clause at the root decision
// level. Passing zero or one literal is legal: an empty clause marks the
// problem unsatisfiable, a unit clause is enqueued directly.
func (s *Solver) AddClause(lits []domain.Literal) error {
	if s.store.CurrentDecisionLevel() != 0 {
		return fmt.Errorf("search: AddClause called below the root decision level")
	}
	c, ok, err := newClause(s, lits, false)
	if err != nil {
		s.unsat = true
		return nil
	}
	if c != nil && c.watched() {
		s.constraints = append(s.constraints, c)
	}
	if !ok {
		s.unsat = true
	}
	return nil
}

// AddTheory registers a propagator to be driven alongside clause
// propagation. Must be called before Solve.
func (s *Solver) AddTheory(t theory.Theory) {
	s.theories = append(s.theories, t)
}

// propagate runs clause propagation and every registered theory to a
// shared fixed point: any bound written by one (whether a clause unit
// propagation or a theory inference) is observed by the domain store's
// event trail and fed back into the others until nothing changes or a
// contradiction is found.
func (s *Solver) propagate() error {
	for {
		for {
			ev, ok := s.cursor.Pop()
			if !ok {
				break
			}
			s.litQueue.Push(ev.NewLiteral())
		}

		if s.litQueue.Size() > 0 {
			if err := s.propagateClauseQueue(); err != nil {
				return err
			}
			continue
		}

		before := s.store.TrailLen()
		for _, th := range s.theories {
			if err := th.Propagate(s.store); err != nil {
				return s.wrapTheoryContradiction(th, err)
			}
		}
		if s.store.TrailLen() == before {
			return nil
		}
	}
}

func (s *Solver) propagateClauseQueue() error {
	for s.litQueue.Size() > 0 {
		l := s.litQueue.Pop()

		ws := s.watchers[l]
		tmp := append([]watcher(nil), ws...)
		s.watchers[l] = s.watchers[l][:0]

		for i, w := range tmp {
			if s.litValue(w.guard) == litTrue {
				s.watchers[l] = append(s.watchers[l], w)
				continue
			}
			if err := w.clause.propagate(s, l); err != nil {
				s.watchers[l] = append(s.watchers[l], tmp[i+1:]...)
				s.litQueue.Clear()
				return &clauseContradiction{clause: w.clause, cause: err}
			}
		}
	}
	return nil
}

// clauseContradiction pairs the conflicting clause with the underlying
// domain error so analyze() can both explain the conflict and report it.
type clauseContradiction struct {
	clause *Clause
	cause  error
}

func (c *clauseContradiction) Error() string {
	return fmt.Sprintf("search: clause %s conflicts: %v", c.clause, c.cause)
}

func (c *clauseContradiction) Unwrap() error { return c.cause }

func (s *Solver) wrapTheoryContradiction(t theory.Theory, err error) error {
	return fmt.Errorf("search: theory %d: %w", t.Identity(), err)
}

// literalBlockDistance counts the number of distinct decision levels falsifying
// lits[1:] (lits[0] is the asserting literal, not yet entailed), the LBD
// (a.k.a. "glue") measure used to protect structurally useful learnt clauses
// from ReduceDB even once their activity has decayed.
func (s *Solver) literalBlockDistance(lits []domain.Literal) uint32 {
	if len(lits) <= 1 {
		return uint32(len(lits))
	}
	seen := map[int]struct{}{}
	for _, l := range lits[1:] {
		seen[s.levelOf(l.Not())] = struct{}{}
	}
	return uint32(len(seen))
}

func (s *Solver) bumpClauseActivity(c *Clause) {
	c.activity += s.clauseInc
	if c.activity > 1e100 {
		s.clauseInc *= 1e-100
		for _, l := range s.learnts {
			l.activity *= 1e-100
		}
	}
}

func (s *Solver) decayClauseActivity() {
	s.clauseInc /= s.clauseDecay
}

// Simplify removes root-level-satisfied clauses from the database. It must
// only be called at decision level 0.
func (s *Solver) Simplify() bool {
	if s.store.CurrentDecisionLevel() != 0 {
		panic("search: Simplify called below the root decision level")
	}
	if s.unsat {
		return false
	}
	if err := s.propagate(); err != nil {
		s.unsat = true
		return false
	}
	s.simplifySlice(&s.learnts)
	s.simplifySlice(&s.constraints)
	return true
}

func (s *Solver) simplifySlice(clauses *[]*Clause) {
	cs := *clauses
	j := 0
	for i := range cs {
		if cs[i].simplify(s) {
			cs[i].remove(s)
		} else {
			cs[j] = cs[i]
			j++
		}
	}
	*clauses = cs[:j]
}

// ReduceDB discards half of the unlocked learnt clauses, preferring to keep
// those with higher activity, the way MiniSat-family solvers do.
func (s *Solver) ReduceDB() {
	if len(s.learnts) == 0 {
		return
	}
	lim := s.clauseInc / float64(len(s.learnts))

	sort.Slice(s.learnts, func(i, j int) bool {
		return s.learnts[i].activity < s.learnts[j].activity
	})

	// lowLBD is the protect-on-glue threshold: a learnt clause that
	// spans two or fewer decision levels stays regardless of activity, since
	// a low LBD is a strong signal of continued usefulness that activity
	// decay alone doesn't capture.
	const lowLBD = 2

	i, j := 0, 0
	for ; i < len(s.learnts)/2; i++ {
		if s.learnts[i].locked(s) || s.learnts[i].protected || s.learnts[i].lbd <= lowLBD {
			s.learnts[j] = s.learnts[i]
			j++
		} else {
			s.learnts[i].remove(s)
		}
	}
	for ; i < len(s.learnts); i++ {
		if s.learnts[i].locked(s) || s.learnts[i].protected || s.learnts[i].lbd <= lowLBD || s.learnts[i].activity >= lim {
			s.learnts[j] = s.learnts[i]
			j++
		} else {
			s.learnts[i].remove(s)
		}
	}
	s.learnts = s.learnts[:j]
}
