package geosymbol

import (
	"fmt"
	"maps"
	"math"
)

// ============================================================
// Solver: iterative single-unknown substitution
// ============================================================

// Derivation records how one variable was resolved.
type Derivation struct {
	Variable string
	Value    float64
	Origin   string
}

func (d Derivation) String() string {
	return fmt.Sprintf("%s = %s (from %s)", d.Variable, formatNum(d.Value), d.Origin)
}

// Solver resolves variables by repeatedly substituting known values into
// every equation and solving any equation left with a single unknown. It does
// not eliminate two or more unknowns at once: a genuinely simultaneous system
// stays unresolved without error.
//
// A Solver belongs to one reasoning run and is not safe for concurrent use.
type Solver struct {
	values      map[string]float64
	derivations []Derivation
}

func NewSolver() *Solver {
	return &Solver{values: map[string]float64{}}
}

// Seed marks variables as already resolved. Values that are already present
// are kept.
func (s *Solver) Seed(values map[string]float64) {
	for name, v := range values {
		if _, ok := s.values[name]; !ok {
			s.values[name] = v
		}
	}
}

// Values returns a copy of every resolved variable.
func (s *Solver) Values() map[string]float64 { return maps.Clone(s.values) }

// Value returns one resolved variable.
func (s *Solver) Value(name string) (float64, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Steps returns the human-readable derivation lines in resolution order.
func (s *Solver) Steps() []string {
	out := make([]string, len(s.derivations))
	for i, d := range s.derivations {
		out[i] = d.String()
	}
	return out
}

// Derivations returns the structured derivation trail in resolution order.
func (s *Solver) Derivations() []Derivation {
	return append([]Derivation(nil), s.derivations...)
}

type unknownTerm struct {
	name  string
	coeff float64
}

// Solve runs substitution passes over equations until a pass resolves nothing.
func (s *Solver) Solve(equations []Equation) {
	for progress := true; progress; {
		progress = false
		for _, eq := range equations {
			if s.solveOne(Normalize(eq)) {
				progress = true
			}
		}
	}
}

func (s *Solver) solveOne(n Normalized) bool {
	constant := n.Constant
	var unknowns []unknownTerm
	for _, name := range n.Variables() {
		coeff := n.Coefficients[name]
		if v, ok := s.values[name]; ok {
			constant += coeff * v
			continue
		}
		unknowns = append(unknowns, unknownTerm{name: name, coeff: coeff})
	}
	if len(unknowns) != 1 {
		return false
	}
	u := unknowns[0]
	if _, ok := s.values[u.name]; ok {
		return false
	}
	value := -constant / u.coeff
	if value == 0 || math.Abs(value) <= Epsilon {
		value = 0
	}
	s.values[u.name] = value
	s.derivations = append(s.derivations, Derivation{Variable: u.name, Value: value, Origin: n.Origin})
	return true
}
