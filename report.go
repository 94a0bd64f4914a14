package geosymbol

import (
	"fmt"
	"maps"
	"slices"
	"strings"
)

// ============================================================
// Pretty-print
// ============================================================

// Report renders the explanation trail followed by the resolved values and
// whatever stayed unresolved.
func Report(state *State) string {
	var b strings.Builder
	for i, st := range state.Steps {
		fmt.Fprintf(&b, "%2d. [%s] %s\n", i+1, st.Kind, st.Description)
		for _, eq := range st.Produces {
			fmt.Fprintf(&b, "      %s\n", eq)
		}
	}
	if len(state.KnownValues) > 0 {
		b.WriteString("Known values:\n")
		for _, name := range slices.Sorted(maps.Keys(state.KnownValues)) {
			fmt.Fprintf(&b, "  %s = %s\n", name, formatNum(state.KnownValues[name]))
		}
	}
	if missing := state.Unresolved(); len(missing) > 0 {
		fmt.Fprintf(&b, "Unresolved: %s\n", strings.Join(missing, ", "))
	}
	return b.String()
}

// ReportLaTeX renders every equation as one line of an align* block.
func ReportLaTeX(state *State) string {
	var b strings.Builder
	b.WriteString(`\begin{align*}` + "\n")
	for _, eq := range state.Equations {
		fmt.Fprintf(&b, "  %s &= %s && \\text{(%s)} \\\\\n", eq.Left.LaTeX(), eq.Right.LaTeX(), eq.Origin)
	}
	for _, name := range slices.Sorted(maps.Keys(state.KnownValues)) {
		fmt.Fprintf(&b, "  %s &= %s \\\\\n", V(name).LaTeX(), formatNum(state.KnownValues[name]))
	}
	b.WriteString(`\end{align*}` + "\n")
	return b.String()
}

// PrettyPrint renders a single equation in canonical form.
func PrettyPrint(eq Equation) string { return "  " + Normalize(eq).String() + "\n" }
