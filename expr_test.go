package geosymbol_test

import (
	"testing"

	"github.com/njchilds90/geosymbol"
)

// ============================================================
// Expression rendering
// ============================================================

func TestConst_String(t *testing.T) {
	cases := map[float64]string{180: "180", 0.5: "0.5", -3: "-3"}
	for v, want := range cases {
		if got := geosymbol.C(v).String(); got != want {
			t.Errorf("C(%v): want %s, got %s", v, want, got)
		}
	}
}

func TestConst_NegativeZero(t *testing.T) {
	negZero := geosymbol.C(0).Value * -1
	if got := geosymbol.C(negZero).String(); got != "0" {
		t.Errorf("want 0, got %s", got)
	}
}

func TestAngle_Name(t *testing.T) {
	a := geosymbol.Angle("A", "B", "C")
	if a.Name != "∠ABC" {
		t.Errorf("want ∠ABC, got %s", a.Name)
	}
	if a.LaTeX() != `\angle ABC` {
		t.Errorf("want \\angle ABC, got %s", a.LaTeX())
	}
}

func TestVar_PlainLaTeX(t *testing.T) {
	if got := geosymbol.V("x").LaTeX(); got != "x" {
		t.Errorf("want x, got %s", got)
	}
}

func TestSum_String(t *testing.T) {
	e := geosymbol.Plus(geosymbol.V("a"), geosymbol.C(2))
	if e.String() != "(a + 2)" {
		t.Errorf("want (a + 2), got %s", e.String())
	}
}

func TestDifference_String(t *testing.T) {
	e := geosymbol.Minus(geosymbol.V("a"), geosymbol.V("b"))
	if e.String() != "(a - b)" {
		t.Errorf("want (a - b), got %s", e.String())
	}
}

func TestScaled_String(t *testing.T) {
	e := geosymbol.Times(2, geosymbol.Plus(geosymbol.V("a"), geosymbol.V("b")))
	if e.String() != "2*(a + b)" {
		t.Errorf("want 2*(a + b), got %s", e.String())
	}
	if e.LaTeX() != `2 \cdot \left(a + b\right)` {
		t.Errorf("unexpected LaTeX %s", e.LaTeX())
	}
}

func TestSumOf_FoldsLeft(t *testing.T) {
	e := geosymbol.SumOf(geosymbol.V("a"), geosymbol.V("b"), geosymbol.V("c"))
	if e.String() != "((a + b) + c)" {
		t.Errorf("want ((a + b) + c), got %s", e.String())
	}
	if single := geosymbol.SumOf(geosymbol.V("a")); single.String() != "a" {
		t.Errorf("SumOf with one term should be the term, got %s", single.String())
	}
}

func TestFreeVariables_FirstSeenOrder(t *testing.T) {
	e := geosymbol.Minus(
		geosymbol.Plus(geosymbol.V("y"), geosymbol.Times(3, geosymbol.V("x"))),
		geosymbol.Plus(geosymbol.V("y"), geosymbol.C(1)),
	)
	got := geosymbol.FreeVariables(e)
	if len(got) != 2 || got[0] != "y" || got[1] != "x" {
		t.Errorf("want [y x], got %v", got)
	}
}

// ============================================================
// Equation
// ============================================================

func TestEquation_Key(t *testing.T) {
	eq := geosymbol.Eq(geosymbol.Angle("A", "B", "C"), geosymbol.Angle("B", "C", "A"), "IsoscelesBaseAngles")
	if eq.Key() != "IsoscelesBaseAngles::∠ABC=∠BCA" {
		t.Errorf("unexpected key %s", eq.Key())
	}
	if eq.String() != "∠ABC = ∠BCA" {
		t.Errorf("unexpected string %s", eq.String())
	}
}

func TestEquation_KeyIncludesOrigin(t *testing.T) {
	a := geosymbol.Eq(geosymbol.V("x"), geosymbol.C(1), "R1")
	b := geosymbol.Eq(geosymbol.V("x"), geosymbol.C(1), "R2")
	if a.Key() == b.Key() {
		t.Error("equations from different rules must not share a key")
	}
}

func TestEquation_Variables(t *testing.T) {
	eq := geosymbol.Eq(geosymbol.V("d"), geosymbol.Plus(geosymbol.V("b"), geosymbol.V("d")), "R")
	got := eq.Variables()
	if len(got) != 2 || got[0] != "d" || got[1] != "b" {
		t.Errorf("want [d b], got %v", got)
	}
}
