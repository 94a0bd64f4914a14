package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/njchilds90/geosymbol"
	"github.com/njchilds90/geosymbol/internal/service"
)

type solveOptions struct {
	facts  []string
	known  map[string]string
	file   string
	rules  []string
	format string
	save   bool
}

func (a *App) newSolveCmd() *cobra.Command {
	opts := &solveOptions{}

	cmd := &cobra.Command{
		Use:   "solve [fact...]",
		Short: "Derive and solve the angle equations implied by a set of facts",
		Long: `Run the inference rules over the given facts until nothing new follows,
then solve the resulting equations.

Examples:
  # Facts as arguments
  geosymbol solve "isosceles(A,B,C)" "exterior(A,B,C,E)"

  # Seed a known angle and print JSON
  geosymbol solve --fact "isosceles(A,B,C)" --known ∠ABC=50 --format json

  # Facts from a file, with the opt-in rules
  geosymbol solve -f figure.yaml --rules GivenAngle,TriangleAngleSum,IsoscelesBaseAngles`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.facts = append(opts.facts, args...)
			return a.runSolve(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringArrayVar(&opts.facts, "fact", nil, "A fact such as isosceles(A,B,C); repeatable")
	cmd.Flags().StringToStringVar(&opts.known, "known", nil, "Known angle values (name=degrees)")
	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "YAML or JSON file with facts, known and rules")
	cmd.Flags().StringSliceVar(&opts.rules, "rules", nil, "Rules to apply (default from config)")
	cmd.Flags().StringVarP(&opts.format, "format", "o", "text", "Output format: text, json or latex")
	cmd.Flags().BoolVar(&opts.save, "save", false, "Store the run")
	return cmd
}

func (a *App) runSolve(ctx context.Context, opts *solveOptions) error {
	if err := checkFormat(opts.format); err != nil {
		return err
	}
	req, err := buildRequest(opts)
	if err != nil {
		return err
	}

	svc, release, err := a.newService(req.Save)
	if err != nil {
		return err
	}
	defer release()

	res, err := svc.Solve(ctx, req)
	if err != nil {
		return err
	}
	return render(a.stdout, res, opts.format)
}

// buildRequest merges the request file with the command-line flags. Flag
// facts are appended, flag values override file values.
func buildRequest(opts *solveOptions) (service.SolveRequest, error) {
	var req service.SolveRequest
	if opts.file != "" {
		loaded, err := loadRequestFile(opts.file)
		if err != nil {
			return req, err
		}
		req = loaded
	}
	req.Facts = append(req.Facts, opts.facts...)
	for name, raw := range opts.known {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return req, errors.Errorf("--known %s: %q is not a finite number", name, raw)
		}
		if req.Known == nil {
			req.Known = map[string]float64{}
		}
		req.Known[name] = v
	}
	if len(opts.rules) > 0 {
		req.Rules = opts.rules
	}
	if opts.save {
		req.Save = true
	}
	return req, nil
}

// loadRequestFile reads a request document. JSON is read by the YAML parser.
func loadRequestFile(path string) (service.SolveRequest, error) {
	var req service.SolveRequest
	data, err := os.ReadFile(path)
	if err != nil {
		return req, errors.Wrap(err, "read facts file")
	}
	if err := yaml.Unmarshal(data, &req); err != nil {
		return req, errors.Wrapf(err, "parse %s", path)
	}
	return req, nil
}

func checkFormat(format string) error {
	switch format {
	case "text", "json", "latex":
		return nil
	}
	return errors.Errorf("unknown format %q (want text, json or latex)", format)
}

func render(w io.Writer, res *service.Result, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	case "latex":
		_, err := fmt.Fprint(w, geosymbol.ReportLaTeX(res.State))
		return err
	default:
		if _, err := fmt.Fprint(w, res.Report); err != nil {
			return err
		}
		if res.ID != "" {
			_, err := fmt.Fprintf(w, "Run: %s\n", res.ID)
			return err
		}
		return nil
	}
}
