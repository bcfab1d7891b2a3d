package portfolio

import (
	"context"
	"testing"
	"time"

	"github.com/rhartert/lcgsolver/internal/brancher"
	"github.com/rhartert/lcgsolver/internal/domain"
	"github.com/rhartert/lcgsolver/internal/search"
)

// satisfiableBuild returns a Build whose every worker solves the same
// trivially satisfiable instance, just to exercise the "first decided
// worker wins" path without caring which worker gets there first.
func satisfiableBuild(t *testing.T) Build {
	return func(worker int, cancel <-chan struct{}) *search.Solver {
		store := domain.NewStore()
		br := brancher.NewActivityBrancher(0.95)
		opts := search.DefaultOptions
		opts.Cancel = cancel
		s := search.NewSolver(store, br, nil, opts)

		v := s.NewBoolVar()
		if err := s.AddClause([]domain.Literal{search.PosLit(v)}); err != nil {
			t.Fatalf("AddClause: %v", err)
		}
		return s
	}
}

func TestRunReturnsFirstDecidedWorker(t *testing.T) {
	ctx := context.Background()
	r, err := Run(ctx, 4, satisfiableBuild(t), nil)
	if err != nil {
		t.Fatalf("Run(): unexpected error: %v", err)
	}
	if r.Status != search.Satisfiable {
		t.Errorf("Status: want SATISFIABLE, got %s", r.Status)
	}
	if len(r.Models) == 0 {
		t.Errorf("Models: want at least one model, got none")
	}
}

// unsatisfiableBuild gives every worker the same trivially unsatisfiable
// instance.
func unsatisfiableBuild(t *testing.T) Build {
	return func(worker int, cancel <-chan struct{}) *search.Solver {
		store := domain.NewStore()
		br := brancher.NewActivityBrancher(0.95)
		opts := search.DefaultOptions
		opts.Cancel = cancel
		s := search.NewSolver(store, br, nil, opts)

		v := s.NewBoolVar()
		if err := s.AddClause([]domain.Literal{search.PosLit(v)}); err != nil {
			t.Fatalf("AddClause: %v", err)
		}
		if err := s.AddClause([]domain.Literal{search.NegLit(v)}); err != nil {
			t.Fatalf("AddClause: %v", err)
		}
		return s
	}
}

func TestRunUnsatisfiable(t *testing.T) {
	ctx := context.Background()
	r, err := Run(ctx, 3, unsatisfiableBuild(t), nil)
	if err != nil {
		t.Fatalf("Run(): unexpected error: %v", err)
	}
	if r.Status != search.Unsatisfiable {
		t.Errorf("Status: want UNSATISFIABLE, got %s", r.Status)
	}
}

// TestRunNoWorkerDecides checks that every worker stopping on its own
// (here, a one-nanosecond timeout on an instance that needs at least one
// decision) surfaces as an Unknown Result rather than an error.
func TestRunNoWorkerDecides(t *testing.T) {
	build := func(worker int, cancel <-chan struct{}) *search.Solver {
		store := domain.NewStore()
		br := brancher.NewActivityBrancher(0.95)
		opts := search.DefaultOptions
		opts.Cancel = cancel
		opts.Timeout = time.Nanosecond
		s := search.NewSolver(store, br, nil, opts)

		a := s.NewBoolVar()
		b := s.NewBoolVar()
		_ = s.AddClause([]domain.Literal{search.PosLit(a), search.PosLit(b)})
		_ = s.AddClause([]domain.Literal{search.NegLit(a), search.PosLit(b)})
		_ = s.AddClause([]domain.Literal{search.PosLit(a), search.NegLit(b)})
		return s
	}

	ctx := context.Background()
	r, err := Run(ctx, 2, build, nil)
	if err != nil {
		t.Fatalf("Run(): unexpected error: %v", err)
	}
	if r.Status != search.Unknown {
		t.Errorf("Status: want UNKNOWN, got %s", r.Status)
	}
}

func TestRunContextCancelledBeforeAnyDecision(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	build := func(worker int, cancelCh <-chan struct{}) *search.Solver {
		store := domain.NewStore()
		br := brancher.NewActivityBrancher(0.95)
		opts := search.DefaultOptions
		opts.Cancel = cancelCh
		s := search.NewSolver(store, br, nil, opts)

		a := s.NewBoolVar()
		b := s.NewBoolVar()
		_ = s.AddClause([]domain.Literal{search.PosLit(a), search.PosLit(b)})
		return s
	}

	r, err := Run(ctx, 2, build, nil)
	if err != nil {
		t.Fatalf("Run(): unexpected error: %v", err)
	}
	if r.Status != search.Unknown {
		t.Errorf("Status: want UNKNOWN, got %s", r.Status)
	}
}
