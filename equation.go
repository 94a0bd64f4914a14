package geosymbol

// ============================================================
// Equation
// ============================================================

// Equation is left = right, tagged with the name of the rule that produced it.
// Origin is part of the equation's identity.
type Equation struct {
	Left, Right Expr
	Origin      string
}

func Eq(left, right Expr, origin string) Equation {
	return Equation{Left: left, Right: right, Origin: origin}
}

func (e Equation) String() string { return e.Left.String() + " = " + e.Right.String() }
func (e Equation) LaTeX() string  { return e.Left.LaTeX() + " = " + e.Right.LaTeX() }

// Key is the structural identity used to deduplicate equations during saturation.
func (e Equation) Key() string {
	return e.Origin + "::" + e.Left.String() + "=" + e.Right.String()
}

// Variables returns every variable the equation mentions, left side first.
func (e Equation) Variables() []string {
	out := FreeVariables(e.Left)
	seen := make(map[string]struct{}, len(out))
	for _, n := range out {
		seen[n] = struct{}{}
	}
	for _, n := range FreeVariables(e.Right) {
		if _, ok := seen[n]; !ok {
			out = append(out, n)
		}
	}
	return out
}
