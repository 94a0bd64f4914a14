package cli

import (
	"fmt"
	"slices"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/njchilds90/geosymbol"
)

var ruleFacts = map[string]string{
	"IsoscelesBaseAngles": "isosceles(A,B,C)",
	"AngleBisector":       "bisectriz(A,B,C,D)",
	"ExteriorAngle":       "exterior(A,B,C,D)",
	"TriangleAngleSum":    "triangle(A,B,C)",
	"GivenAngle":          "angle(A,B,C,deg)",
	"SupplementaryAngles": "linear(A,B,C,D)",
}

func (a *App) newRulesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rules",
		Short: "List the inference rules and the facts they read",
		RunE: func(cmd *cobra.Command, args []string) error {
			enabled, err := a.cfg.RuleSet()
			if err != nil {
				return err
			}
			enabledNames := geosymbol.RuleNames(enabled)

			tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "RULE\tFACT\tENABLED")
			for _, name := range geosymbol.RuleNames(geosymbol.ExtendedRules()) {
				mark := ""
				if slices.Contains(enabledNames, name) {
					mark = "yes"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", name, ruleFacts[name], mark)
			}
			return tw.Flush()
		},
	}
}
