// Package geosymbol is a small symbolic reasoning kernel for angle geometry.
//
// Geometric facts about a figure ("triangle ABC is isosceles", "AD bisects
// angle BAC") are turned into linear equations over angle measures by a set
// of inference rules, and the equations are then solved by iterative
// substitution. Every inference and every resolved value is recorded as a
// Step so the derivation can be shown to a student.
//
// Design goals:
//   - Closed, immutable expression model
//   - Deterministic output (stable keys, sorted renderings)
//   - No package-level mutable state; one State/Engine/Solver per figure
//   - JSON, LaTeX and tool-call friendly
package geosymbol

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ============================================================
// Core Interface
// ============================================================

// Expr is a symbolic linear expression over named unknowns.
//
// The variant set is closed: Const, Var, Sum, Difference and Scaled are the
// only implementations, and every consumer switches over all five.
type Expr interface {
	String() string
	LaTeX() string
	exprType() string
}

// ============================================================
// Const: numeric constant
// ============================================================

type Const struct{ Value float64 }

func C(v float64) Const { return Const{Value: v} }

func (c Const) String() string   { return formatNum(c.Value) }
func (c Const) LaTeX() string    { return formatNum(c.Value) }
func (c Const) exprType() string { return "const" }

// ============================================================
// Var: named unknown (an angle measure)
// ============================================================

type Var struct{ Name string }

func V(name string) Var { return Var{Name: name} }

// Angle names the measure of the angle with vertex b, e.g. Angle("A","B","C") is ∠ABC.
func Angle(a, b, c string) Var { return Var{Name: AngleName(a, b, c)} }

// AngleName returns the variable key for ∠abc.
func AngleName(a, b, c string) string { return "∠" + a + b + c }

func (v Var) String() string { return v.Name }
func (v Var) LaTeX() string {
	if rest, ok := strings.CutPrefix(v.Name, "∠"); ok {
		return `\angle ` + rest
	}
	return v.Name
}
func (v Var) exprType() string { return "var" }

// ============================================================
// Sum / Difference
// ============================================================

type Sum struct{ Left, Right Expr }

func Plus(left, right Expr) Sum { return Sum{Left: left, Right: right} }

// SumOf folds terms left to right: SumOf(a, b, c) is (a + b) + c.
func SumOf(first Expr, rest ...Expr) Expr {
	acc := first
	for _, t := range rest {
		acc = Sum{Left: acc, Right: t}
	}
	return acc
}

func (s Sum) String() string   { return "(" + s.Left.String() + " + " + s.Right.String() + ")" }
func (s Sum) LaTeX() string    { return `\left(` + s.Left.LaTeX() + " + " + s.Right.LaTeX() + `\right)` }
func (s Sum) exprType() string { return "sum" }

type Difference struct{ Left, Right Expr }

func Minus(left, right Expr) Difference { return Difference{Left: left, Right: right} }

func (d Difference) String() string { return "(" + d.Left.String() + " - " + d.Right.String() + ")" }
func (d Difference) LaTeX() string {
	return `\left(` + d.Left.LaTeX() + " - " + d.Right.LaTeX() + `\right)`
}
func (d Difference) exprType() string { return "difference" }

// ============================================================
// Scaled: coefficient × expr
// ============================================================

type Scaled struct {
	Coefficient float64
	Inner       Expr
}

func Times(k float64, e Expr) Scaled { return Scaled{Coefficient: k, Inner: e} }

func (s Scaled) String() string   { return formatNum(s.Coefficient) + "*" + s.Inner.String() }
func (s Scaled) LaTeX() string    { return formatNum(s.Coefficient) + ` \cdot ` + s.Inner.LaTeX() }
func (s Scaled) exprType() string { return "scaled" }

// ============================================================
// Helpers
// ============================================================

// FreeVariables returns the variable names that occur in e, in first-seen order.
func FreeVariables(e Expr) []string {
	var out []string
	seen := map[string]struct{}{}
	var walk func(Expr)
	walk = func(e Expr) {
		switch x := e.(type) {
		case Const:
		case Var:
			if _, ok := seen[x.Name]; !ok {
				seen[x.Name] = struct{}{}
				out = append(out, x.Name)
			}
		case Sum:
			walk(x.Left)
			walk(x.Right)
		case Difference:
			walk(x.Left)
			walk(x.Right)
		case Scaled:
			walk(x.Inner)
		default:
			panic(unknownExpr(e))
		}
	}
	walk(e)
	return out
}

func formatNum(v float64) string {
	if v == 0 {
		// collapse -0
		return "0"
	}
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return fmt.Sprint(v)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func unknownExpr(e Expr) string {
	return fmt.Sprintf("geosymbol: unknown expression variant %T", e)
}
