package geosymbol

import (
	"encoding/json"
	"fmt"
	"math"
)

// ============================================================
// MCP Tool Interface
// ============================================================

type ToolRequest struct {
	Tool   string                 `json:"tool"`
	Params map[string]interface{} `json:"params"`
}

type ToolResponse struct {
	Result interface{} `json:"result,omitempty"`
	LaTeX  string      `json:"latex,omitempty"`
	String string      `json:"string,omitempty"`
	Error  string      `json:"error,omitempty"`
}

// SolveResult is the tool-call view of a finished run.
type SolveResult struct {
	Equations  []Equation         `json:"equations"`
	Known      map[string]float64 `json:"known"`
	Steps      []Step             `json:"steps"`
	Unresolved []string           `json:"unresolved"`
}

// ResultOf summarises a finished State.
func ResultOf(state *State) SolveResult {
	return SolveResult{
		Equations:  state.Equations,
		Known:      state.KnownValues,
		Steps:      state.Steps,
		Unresolved: state.Unresolved(),
	}
}

func HandleToolCall(req ToolRequest) ToolResponse {
	getExpr := func(key string) (Expr, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, fmt.Errorf("missing param: %s", key)
		}
		val, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("invalid type for param %s", key)
		}
		return ExprFromJSON(val)
	}
	getStrings := func(key string, required bool) ([]string, error) {
		v, ok := req.Params[key]
		if !ok {
			if required {
				return nil, fmt.Errorf("missing param: %s", key)
			}
			return nil, nil
		}
		raw, ok := v.([]interface{})
		if !ok {
			return nil, fmt.Errorf("param %s must be array", key)
		}
		result := make([]string, len(raw))
		for i, r := range raw {
			s, ok := r.(string)
			if !ok {
				return nil, fmt.Errorf("param %s[%d] must be string", key, i)
			}
			result[i] = s
		}
		return result, nil
	}
	getKnown := func(key string) (map[string]float64, error) {
		v, ok := req.Params[key]
		if !ok {
			return nil, nil
		}
		raw, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("param %s must be object", key)
		}
		out := make(map[string]float64, len(raw))
		for name, r := range raw {
			f, ok := r.(float64)
			if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
				return nil, fmt.Errorf("param %s[%q] must be number", key, name)
			}
			out[name] = f
		}
		return out, nil
	}
	fail := func(err error) ToolResponse { return ToolResponse{Error: err.Error()} }

	switch req.Tool {
	case "solve":
		facts, err := getStrings("facts", true)
		if err != nil {
			return fail(err)
		}
		known, err := getKnown("known")
		if err != nil {
			return fail(err)
		}
		names, err := getStrings("rules", false)
		if err != nil {
			return fail(err)
		}
		rules, err := RulesByName(names)
		if err != nil {
			return fail(err)
		}
		state := NewState(facts...)
		for name, v := range known {
			state.KnownValues[name] = v
		}
		NewEngine(rules, NewSolver()).Run(state)
		return ToolResponse{Result: ResultOf(state), String: Report(state), LaTeX: ReportLaTeX(state)}

	case "linearize":
		e, err := getExpr("expr")
		if err != nil {
			return fail(err)
		}
		lf := Linearize(e)
		return ToolResponse{
			Result: map[string]interface{}{"coefficients": lf.Coefficients, "constant": lf.Constant},
			String: lf.String(),
			LaTeX:  e.LaTeX(),
		}

	case "normalize":
		l, err := getExpr("left")
		if err != nil {
			return fail(err)
		}
		r, err := getExpr("right")
		if err != nil {
			return fail(err)
		}
		origin, _ := req.Params["origin"].(string)
		eq := Eq(l, r, origin)
		n := Normalize(eq)
		return ToolResponse{
			Result: map[string]interface{}{"coefficients": n.Coefficients, "constant": n.Constant, "origin": n.Origin},
			String: n.String(),
			LaTeX:  eq.LaTeX(),
		}

	case "list_rules":
		return ToolResponse{Result: RuleNames(ExtendedRules())}

	case "mcp_spec":
		return ToolResponse{String: MCPToolSpec()}
	}
	return ToolResponse{Error: fmt.Sprintf("unknown tool: %s", req.Tool)}
}

func MCPToolSpec() string {
	tools := []map[string]interface{}{
		ts("solve", "Run the geometry rules over facts and solve for angle measures. Optional: known (object name->number), rules (string[])",
			[]string{"facts"}, map[string]string{"facts": "array", "known": "object", "rules": "array"}),
		ts("linearize", "Flatten an expression into coefficients and a constant", []string{"expr"}, map[string]string{"expr": "object"}),
		ts("normalize", "Canonical form (left - right) = 0 of an equation", []string{"left", "right"}, map[string]string{"left": "object", "right": "object", "origin": "string"}),
		ts("list_rules", "Names of the available inference rules", []string{}, map[string]string{}),
		ts("mcp_spec", "Return this tool schema", []string{}, map[string]string{}),
	}
	spec := map[string]interface{}{"tools": tools}
	b, _ := json.MarshalIndent(spec, "", "  ")
	return string(b)
}

func ts(name, description string, required []string, props map[string]string) map[string]interface{} {
	properties := map[string]interface{}{}
	for k, typ := range props {
		properties[k] = map[string]interface{}{"type": typ}
	}
	return map[string]interface{}{
		"name":        name,
		"description": description,
		"inputSchema": map[string]interface{}{
			"type":       "object",
			"properties": properties,
			"required":   required,
		},
	}
}
