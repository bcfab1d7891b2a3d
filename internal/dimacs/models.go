// Model files are not DIMACS CNF: each line is a space-separated list of
// signed literals (one model per line, 0-terminated) produced by the
// benchmark scripts this solver is tested against. No library in the
// retrieved pack parses this ad hoc format, so it's scanned by hand.
package dimacs

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/rhartert/lcgsolver/internal/search"
)

// ParseModels reads every model recorded in filename, one []bool per line
// indexed by DIMACS variable order.
func ParseModels(filename string) ([][]bool, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	models := [][]bool{}
	scanner := bufio.NewScanner(file)
	for i := 0; scanner.Scan(); i++ {
		line := scanner.Text()
		if line == "" {
			continue
		}

		literals := strings.Fields(line)
		model := make([]bool, 0, len(literals))

		for _, ls := range literals {
			if ls == "0" {
				continue
			}
			l, err := strconv.Atoi(ls)
			if err != nil {
				return nil, fmt.Errorf("error parsing literal %s: %w", ls, err)
			}
			model = append(model, l > 0)
		}

		models = append(models, model)
	}

	return models, nil
}

// WriteModel writes m in the same signed-literal-per-line format ParseModels
// reads, one literal per boolean variable (1-indexed, negated when the
// variable settled to 0). Entry 0 of m, the reserved Zero variable, is not
// written.
func WriteModel(w io.Writer, m search.Model) error {
	for i := 1; i < len(m); i++ {
		lit := i
		if m[i] == 0 {
			lit = -lit
		}
		if _, err := fmt.Fprintf(w, "%d ", lit); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, "0")
	return err
}
