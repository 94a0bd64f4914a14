package geosymbol

import (
	"maps"
	"math"
	"slices"
	"strings"
)

// Epsilon is the magnitude below which a coefficient counts as absent.
const Epsilon = 1e-9

// ============================================================
// LinearForm: Σ(coeff·var) + constant
// ============================================================

// LinearForm is the sparse linear view of an expression: one coefficient per
// variable name plus an accumulated constant.
type LinearForm struct {
	Coefficients map[string]float64
	Constant     float64
}

// Linearize flattens e into a LinearForm. Coefficients of repeated variables
// accumulate wherever they occur in the tree.
func Linearize(e Expr) LinearForm {
	lf := LinearForm{Coefficients: map[string]float64{}}
	lf.accumulate(e, 1)
	return lf
}

func (lf *LinearForm) accumulate(e Expr, factor float64) {
	switch x := e.(type) {
	case Const:
		lf.Constant += factor * x.Value
	case Var:
		lf.Coefficients[x.Name] += factor
	case Sum:
		lf.accumulate(x.Left, factor)
		lf.accumulate(x.Right, factor)
	case Difference:
		lf.accumulate(x.Left, factor)
		lf.accumulate(x.Right, -factor)
	case Scaled:
		lf.accumulate(x.Inner, factor*x.Coefficient)
	default:
		panic(unknownExpr(e))
	}
}

func (lf LinearForm) Add(other LinearForm) LinearForm {
	out := LinearForm{Coefficients: maps.Clone(lf.Coefficients), Constant: lf.Constant + other.Constant}
	if out.Coefficients == nil {
		out.Coefficients = map[string]float64{}
	}
	for name, c := range other.Coefficients {
		out.Coefficients[name] += c
	}
	return out
}

func (lf LinearForm) Sub(other LinearForm) LinearForm { return lf.Add(other.Scale(-1)) }

func (lf LinearForm) Scale(k float64) LinearForm {
	out := LinearForm{Coefficients: make(map[string]float64, len(lf.Coefficients)), Constant: k * lf.Constant}
	for name, c := range lf.Coefficients {
		out.Coefficients[name] = k * c
	}
	return out
}

func (lf LinearForm) Neg() LinearForm { return lf.Scale(-1) }

// Variables returns the names with a coefficient above Epsilon, sorted.
func (lf LinearForm) Variables() []string {
	names := slices.Sorted(maps.Keys(lf.Coefficients))
	return slices.DeleteFunc(names, func(n string) bool {
		return math.Abs(lf.Coefficients[n]) <= Epsilon
	})
}

// String renders the form as an equation against zero, e.g. "∠ABC - ∠BCA = 0".
func (lf LinearForm) String() string {
	var b strings.Builder
	for i, name := range lf.Variables() {
		c := lf.Coefficients[name]
		switch {
		case i == 0 && c < 0:
			b.WriteString("-")
		case i > 0 && c < 0:
			b.WriteString(" - ")
		case i > 0:
			b.WriteString(" + ")
		}
		if a := math.Abs(c); a != 1 {
			b.WriteString(formatNum(a) + "*")
		}
		b.WriteString(name)
	}
	if k := lf.Constant; math.Abs(k) > Epsilon || b.Len() == 0 {
		switch {
		case b.Len() == 0:
			b.WriteString(formatNum(k))
		case k < 0:
			b.WriteString(" - " + formatNum(-k))
		default:
			b.WriteString(" + " + formatNum(k))
		}
	}
	return b.String() + " = 0"
}

// ============================================================
// Normalize: (left − right) = 0
// ============================================================

// Normalized is an equation moved to canonical form Σ(coeff·var) + constant = 0,
// tagged with the rule that produced it.
type Normalized struct {
	LinearForm
	Origin string
}

func Normalize(eq Equation) Normalized {
	return Normalized{
		LinearForm: Linearize(eq.Left).Sub(Linearize(eq.Right)),
		Origin:     eq.Origin,
	}
}
