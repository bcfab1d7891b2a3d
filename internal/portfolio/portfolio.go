// Package portfolio runs several independently configured search workers
// concurrently, each owning its own solver state, and reports whichever
// worker reaches a decided status first. No solver state is shared between
// workers; the only shared state is a cancellation signal and a buffered
// result channel, per the core solver's single-threaded-per-instance
// design.
package portfolio

import (
	"context"

	"github.com/rhartert/lcgsolver/internal/search"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Result is one worker's outcome.
type Result struct {
	WorkerID int
	Status   search.Status
	Models   []search.Model
	Stats    search.Stats
}

// decided reports whether the result settled the problem, as opposed to
// stopping early (cancelled or hit its own timeout/max-conflicts) without
// an answer.
func (r Result) decided() bool {
	return r.Status == search.Satisfiable || r.Status == search.Unsatisfiable
}

// Build constructs the worker-th solver: its own domain store, theories,
// and brancher configuration. Workers never share a domain store, so Build
// must return a fresh one every call rather than a clone of shared state.
// cancel is the shared cancellation channel Build must wire into the
// solver's Options.Cancel so the worker stops cooperatively once another
// worker wins.
type Build func(worker int, cancel <-chan struct{}) *search.Solver

// Run launches n workers built by build and blocks until one of them
// reaches a decided status (Satisfiable or Unsatisfiable), every worker
// stops on its own (timeout, max-conflicts, or ctx cancellation), or ctx is
// cancelled by the caller. It returns the first decided Result seen; if no
// worker decides, it returns the last Result observed (Status Unknown) and
// a nil error so the caller can still report best-effort stats.
//
// Ordering between workers that finish around the same time is not
// specified, matching the "first to finish wins" rule: Run does not wait
// for slower workers once a winner is chosen, it only cancels them.
func Run(ctx context.Context, n int, build Build, log *logrus.Logger) (Result, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if n <= 0 {
		n = 1
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	results := make(chan Result, n)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		worker := i
		g.Go(func() error {
			s := build(worker, gctx.Done())
			status := s.Solve()
			results <- Result{
				WorkerID: worker,
				Status:   status,
				Models:   s.Models,
				Stats:    s.Stats,
			}
			return nil
		})
	}

	go func() {
		g.Wait()
		close(results)
	}()

	var best Result
	haveResult := false
	for r := range results {
		if r.decided() {
			log.WithFields(logrus.Fields{
				"worker": r.WorkerID,
				"status": r.Status,
			}).Info("portfolio: worker decided, cancelling the rest")
			cancel()
			return r, nil
		}
		best = r
		haveResult = true
	}

	if !haveResult {
		return Result{}, ctx.Err()
	}
	return best, nil
}
