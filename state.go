package geosymbol

import (
	"maps"
	"slices"
)

// ============================================================
// FactSet: insertion-ordered set of fact strings
// ============================================================

// FactSet is a duplicate-free list of facts that remembers insertion order.
// The zero value is an empty set ready to use.
type FactSet struct {
	order []string
	index map[string]struct{}
}

func NewFactSet(facts ...string) FactSet {
	var fs FactSet
	for _, f := range facts {
		fs.Add(f)
	}
	return fs
}

// Add inserts f and reports whether it was new.
func (fs *FactSet) Add(f string) bool {
	if fs.index == nil {
		fs.index = map[string]struct{}{}
	}
	if _, ok := fs.index[f]; ok {
		return false
	}
	fs.index[f] = struct{}{}
	fs.order = append(fs.order, f)
	return true
}

func (fs FactSet) Has(f string) bool {
	_, ok := fs.index[f]
	return ok
}

func (fs FactSet) Len() int { return len(fs.order) }

// All returns a copy of the facts in insertion order.
func (fs FactSet) All() []string { return slices.Clone(fs.order) }

// ============================================================
// Step: one entry of the explanation trail
// ============================================================

type StepKind string

const (
	StepGiven      StepKind = "given"
	StepGeometric  StepKind = "geometric"
	StepAlgebra    StepKind = "algebra"
	StepConclusion StepKind = "conclusion"
)

// Step records one inference. A nil Produces marks an informational step that
// carries no equations.
type Step struct {
	Kind        StepKind   `json:"kind"`
	Rule        string     `json:"rule"`
	Description string     `json:"description"`
	Produces    []Equation `json:"produces,omitempty"`
}

// ============================================================
// State: the reasoning context of one run
// ============================================================

// State is owned by a single Engine run. Facts are read-only during the run,
// Equations and Steps only grow, and a value in KnownValues is never replaced.
type State struct {
	Facts       FactSet            `json:"facts"`
	Equations   []Equation         `json:"equations"`
	KnownValues map[string]float64 `json:"known"`
	Steps       []Step             `json:"steps"`
}

func NewState(facts ...string) *State {
	return &State{
		Facts:       NewFactSet(facts...),
		KnownValues: map[string]float64{},
	}
}

// Known returns the resolved value of a variable.
func (s *State) Known(name string) (float64, bool) {
	v, ok := s.KnownValues[name]
	return v, ok
}

// Unresolved returns the variables mentioned by some equation that have no
// known value, sorted.
func (s *State) Unresolved() []string {
	missing := map[string]struct{}{}
	for _, eq := range s.Equations {
		for _, n := range Normalize(eq).Variables() {
			if _, ok := s.KnownValues[n]; !ok {
				missing[n] = struct{}{}
			}
		}
	}
	return slices.Sorted(maps.Keys(missing))
}
