// Command lcgsolve is a thin CNF front end to the lazy-clause-generation
// solver kernel: it loads a DIMACS file, runs the SAT core, and reports the
// result and search statistics. It replaces the teacher's flag-based
// main.go with a cobra command, leaving problem encoding (PDDL, jobshop,
// and the like) and solution formatting to out-of-tree callers that embed
// the kernel packages directly.
package main

import (
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/rhartert/lcgsolver/internal/brancher"
	"github.com/rhartert/lcgsolver/internal/config"
	"github.com/rhartert/lcgsolver/internal/dimacs"
	"github.com/rhartert/lcgsolver/internal/domain"
	"github.com/rhartert/lcgsolver/internal/search"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var log = logrus.StandardLogger()

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "lcgsolve",
		Short:         "Run the lazy-clause-generation SAT core over a DIMACS CNF instance",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newSolveCmd())
	return root
}

type solveFlags struct {
	timeout      time.Duration
	maxConflicts int64
	gzipped      bool
	cpuProfile   string
	memProfile   string
}

func newSolveCmd() *cobra.Command {
	f := &solveFlags{maxConflicts: -1}

	cmd := &cobra.Command{
		Use:   "solve <file.cnf>",
		Short: "Solve a DIMACS CNF instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSolve(args[0], f)
		},
	}

	flags := cmd.Flags()
	flags.DurationVar(&f.timeout, "timeout", 0, "abort after this long with UNKNOWN (0 disables the timeout)")
	flags.Int64Var(&f.maxConflicts, "max-conflicts", -1, "abort after this many conflicts with UNKNOWN (-1 disables the limit)")
	flags.BoolVar(&f.gzipped, "gzip", false, "treat the input file as gzip-compressed")
	flags.StringVar(&f.cpuProfile, "cpuprofile", "", "write a pprof CPU profile to this file")
	flags.StringVar(&f.memProfile, "memprofile", "", "write a pprof heap profile to this file")

	return cmd
}

func runSolve(file string, f *solveFlags) error {
	if f.cpuProfile != "" {
		cpu, err := os.Create(f.cpuProfile)
		if err != nil {
			return fmt.Errorf("lcgsolve: creating cpu profile: %w", err)
		}
		defer cpu.Close()
		if err := pprof.StartCPUProfile(cpu); err != nil {
			return fmt.Errorf("lcgsolve: starting cpu profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("lcgsolve: %w", err)
	}

	store := domain.NewStore()
	br := brancher.NewActivityBrancher(0.95)
	opts := search.DefaultOptions
	opts.Logger = log
	if f.timeout > 0 {
		opts.Timeout = f.timeout
	}
	if f.maxConflicts >= 0 {
		opts.MaxConflicts = f.maxConflicts
	}
	s := search.NewSolver(store, br, nil, opts)

	if err := dimacs.Load(file, f.gzipped, s); err != nil {
		return fmt.Errorf("lcgsolve: loading %q: %w", file, err)
	}

	log.WithFields(logrus.Fields{
		"variables":          s.NumVariables(),
		"clauses":            s.NumConstraints(),
		"theory_propagation": cfg.TheoryPropagation,
	}).Info("lcgsolve: instance loaded")

	start := time.Now()
	status := s.Solve()
	elapsed := time.Since(start)

	fmt.Printf("c variables:  %d\n", s.NumVariables())
	fmt.Printf("c clauses:    %d\n", s.NumConstraints())
	fmt.Printf("c time (sec): %f\n", elapsed.Seconds())
	fmt.Printf("c conflicts:  %d (%.2f /sec)\n", s.Stats.TotalConflicts, float64(s.Stats.TotalConflicts)/elapsed.Seconds())
	fmt.Printf("c restarts:   %d\n", s.Stats.TotalRestarts)
	fmt.Printf("s %s\n", status)

	if status == search.Satisfiable {
		if err := dimacs.WriteModel(os.Stdout, s.Models[len(s.Models)-1]); err != nil {
			return fmt.Errorf("lcgsolve: writing model: %w", err)
		}
	}

	if f.memProfile != "" {
		mem, err := os.Create(f.memProfile)
		if err != nil {
			return fmt.Errorf("lcgsolve: creating mem profile: %w", err)
		}
		defer mem.Close()
		if err := pprof.WriteHeapProfile(mem); err != nil {
			return fmt.Errorf("lcgsolve: writing mem profile: %w", err)
		}
	}

	return nil
}
