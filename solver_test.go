package geosymbol_test

import (
	"testing"

	"github.com/njchilds90/geosymbol"
)

func TestSolver_SingleUnknown(t *testing.T) {
	// 2x + 4 = 10
	s := geosymbol.NewSolver()
	s.Solve([]geosymbol.Equation{
		geosymbol.Eq(geosymbol.Plus(geosymbol.Times(2, geosymbol.V("x")), geosymbol.C(4)), geosymbol.C(10), "R"),
	})
	if v, ok := s.Value("x"); !ok || v != 3 {
		t.Errorf("want x = 3, got %v (%v)", v, ok)
	}
	if steps := s.Steps(); len(steps) != 1 || steps[0] != "x = 3 (from R)" {
		t.Errorf("unexpected derivation %v", steps)
	}
}

func TestSolver_ChainsThroughPasses(t *testing.T) {
	// listed so that each equation only becomes solvable after a later one
	eqs := []geosymbol.Equation{
		geosymbol.Eq(geosymbol.V("c"), geosymbol.Plus(geosymbol.V("b"), geosymbol.C(1)), "third"),
		geosymbol.Eq(geosymbol.V("b"), geosymbol.Times(2, geosymbol.V("a")), "second"),
		geosymbol.Eq(geosymbol.V("a"), geosymbol.C(5), "first"),
	}
	s := geosymbol.NewSolver()
	s.Solve(eqs)
	want := map[string]float64{"a": 5, "b": 10, "c": 11}
	for name, v := range want {
		if got, ok := s.Value(name); !ok || got != v {
			t.Errorf("%s: want %v, got %v (%v)", name, v, got, ok)
		}
	}
	d := s.Derivations()
	if len(d) != 3 || d[0].Variable != "a" || d[1].Variable != "b" || d[2].Variable != "c" {
		t.Errorf("unexpected resolution order %+v", d)
	}
}

func TestSolver_SimultaneousSystemStaysUnresolved(t *testing.T) {
	// x + y = 10, x - y = 2 needs elimination, which the solver does not do.
	s := geosymbol.NewSolver()
	s.Solve([]geosymbol.Equation{
		geosymbol.Eq(geosymbol.Plus(geosymbol.V("x"), geosymbol.V("y")), geosymbol.C(10), "R1"),
		geosymbol.Eq(geosymbol.Minus(geosymbol.V("x"), geosymbol.V("y")), geosymbol.C(2), "R2"),
	})
	if len(s.Values()) != 0 {
		t.Errorf("expected nothing resolved, got %v", s.Values())
	}
}

func TestSolver_IgnoresCancelledCoefficients(t *testing.T) {
	// x - x + y = 4 has a single real unknown
	s := geosymbol.NewSolver()
	s.Solve([]geosymbol.Equation{
		geosymbol.Eq(geosymbol.Plus(geosymbol.Minus(geosymbol.V("x"), geosymbol.V("x")), geosymbol.V("y")), geosymbol.C(4), "R"),
	})
	if v, ok := s.Value("y"); !ok || v != 4 {
		t.Errorf("want y = 4, got %v (%v)", v, ok)
	}
	if _, ok := s.Value("x"); ok {
		t.Error("x cancels out and must stay unresolved")
	}
}

func TestSolver_Monotonic(t *testing.T) {
	s := geosymbol.NewSolver()
	s.Seed(map[string]float64{"x": 1})
	// a contradicting equation must not overwrite x
	s.Solve([]geosymbol.Equation{
		geosymbol.Eq(geosymbol.V("x"), geosymbol.C(99), "R1"),
		geosymbol.Eq(geosymbol.V("y"), geosymbol.Plus(geosymbol.V("x"), geosymbol.C(1)), "R2"),
	})
	if v, _ := s.Value("x"); v != 1 {
		t.Errorf("x changed to %v", v)
	}
	if v, _ := s.Value("y"); v != 2 {
		t.Errorf("want y = 2, got %v", v)
	}

	first := s.Values()
	s.Solve([]geosymbol.Equation{geosymbol.Eq(geosymbol.V("y"), geosymbol.C(-5), "R3")})
	s.Seed(map[string]float64{"y": 42})
	for name, v := range first {
		if got, _ := s.Value(name); got != v {
			t.Errorf("%s changed from %v to %v", name, v, got)
		}
	}
}

func TestSolver_ValuesIsACopy(t *testing.T) {
	s := geosymbol.NewSolver()
	s.Seed(map[string]float64{"x": 1})
	s.Values()["x"] = 2
	if v, _ := s.Value("x"); v != 1 {
		t.Error("Values must not expose internal state")
	}
}

func TestSolver_IndependentInstances(t *testing.T) {
	a, b := geosymbol.NewSolver(), geosymbol.NewSolver()
	a.Solve([]geosymbol.Equation{geosymbol.Eq(geosymbol.V("x"), geosymbol.C(1), "R")})
	if len(b.Values()) != 0 {
		t.Error("solvers must not share values")
	}
}
