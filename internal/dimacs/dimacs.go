// Package dimacs loads DIMACS CNF instances into a solver and parses the
// plain-text model format the benchmark scripts compare against. Scanning
// DIMACS syntax itself is delegated to github.com/rhartert/dimacs; this
// package only adapts its callback builder onto the kernel's own
// variable/clause API.
package dimacs

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"

	"github.com/rhartert/dimacs"
	"github.com/rhartert/lcgsolver/internal/domain"
	"github.com/rhartert/lcgsolver/internal/search"
)

// Solver is the subset of *search.Solver a CNF instance is loaded into. It's
// an interface so tests can load into a lightweight recorder instead of a
// full solver.
type Solver interface {
	NewBoolVar() domain.Variable
	AddClause(lits []domain.Literal) error
}

func reader(filename string, gzipped bool) (io.ReadCloser, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	rc := io.ReadCloser(file)
	if gzipped {
		rc, err = gzip.NewReader(rc)
		if err != nil {
			return nil, err
		}
	}
	return rc, nil
}

// Load parses the DIMACS CNF file at filename, allocating one boolean
// variable per declared variable and one clause per declared clause in s.
// gzipped selects whether the file is gzip-compressed.
func Load(filename string, gzipped bool, s Solver) error {
	r, err := reader(filename, gzipped)
	if err != nil {
		return fmt.Errorf("dimacs: opening %q: %w", filename, err)
	}
	defer r.Close()

	b := &builder{solver: s}
	return dimacs.ReadBuilder(r, b)
}

// builder adapts a Solver to the dimacs.Builder callback interface.
type builder struct {
	solver Solver
	vars   []domain.Variable
}

func (b *builder) Problem(problem string, nVars int, nClauses int) error {
	if problem != "cnf" {
		return fmt.Errorf("dimacs: instance of type %q is not supported", problem)
	}
	b.vars = make([]domain.Variable, nVars)
	for i := range b.vars {
		b.vars[i] = b.solver.NewBoolVar()
	}
	return nil
}

func (b *builder) Clause(tmpClause []int) error {
	lits := make([]domain.Literal, len(tmpClause))
	for i, l := range tmpClause {
		idx := l
		if idx < 0 {
			idx = -idx
		}
		v := b.vars[idx-1]
		if l < 0 {
			lits[i] = search.NegLit(v)
		} else {
			lits[i] = search.PosLit(v)
		}
	}
	return b.solver.AddClause(lits)
}

func (b *builder) Comment(_ string) error {
	return nil // ignore comments
}
