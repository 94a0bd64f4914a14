package geosymbol_test

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/njchilds90/geosymbol"
)

func toolRequest(t *testing.T, raw string) geosymbol.ToolRequest {
	t.Helper()
	var req geosymbol.ToolRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		t.Fatalf("bad request fixture: %v", err)
	}
	return req
}

func TestHandleToolCall_Solve(t *testing.T) {
	req := toolRequest(t, `{"tool": "solve", "params": {
		"facts": ["isosceles(A,B,C)", "bisectriz(A,B,C,D)", "exterior(A,B,C,E)"],
		"known": {"∠ABC": 50}
	}}`)
	resp := geosymbol.HandleToolCall(req)
	if resp.Error != "" {
		t.Fatalf("unexpected error: %s", resp.Error)
	}
	res, ok := resp.Result.(geosymbol.SolveResult)
	if !ok {
		t.Fatalf("want SolveResult, got %T", resp.Result)
	}
	if res.Known["∠EAC"] != 100 || res.Known["∠BCA"] != 50 {
		t.Errorf("unexpected values %v", res.Known)
	}
	if len(res.Equations) != 3 {
		t.Errorf("want 3 equations, got %d", len(res.Equations))
	}
	if !strings.Contains(resp.String, "Unresolved: ∠BAD, ∠DAC") {
		t.Errorf("report missing unresolved line:\n%s", resp.String)
	}
}

func TestHandleToolCall_SolveWithRules(t *testing.T) {
	req := toolRequest(t, `{"tool": "solve", "params": {
		"facts": ["isosceles(A,B,C)", "triangle(A,B,C)", "angle(C,A,B,40)"],
		"rules": ["GivenAngle", "IsoscelesBaseAngles", "TriangleAngleSum"]
	}}`)
	resp := geosymbol.HandleToolCall(req)
	if resp.Error != "" {
		t.Fatalf("unexpected error: %s", resp.Error)
	}
	res := resp.Result.(geosymbol.SolveResult)
	// apex 40 leaves 2x = 140, which needs elimination across two equations
	if _, ok := res.Known["∠CAB"]; !ok {
		t.Errorf("given angle missing: %v", res.Known)
	}
	if len(res.Unresolved) != 2 {
		t.Errorf("want the base angles unresolved, got %v", res.Unresolved)
	}
}

func TestHandleToolCall_SolveErrors(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`{"tool": "solve", "params": {}}`, "missing param: facts"},
		{`{"tool": "solve", "params": {"facts": "isosceles(A,B,C)"}}`, "must be array"},
		{`{"tool": "solve", "params": {"facts": [1]}}`, "must be string"},
		{`{"tool": "solve", "params": {"facts": [], "known": {"x": "1"}}}`, "must be number"},
		{`{"tool": "solve", "params": {"facts": [], "rules": ["Pythagoras"]}}`, "unknown rule"},
		{`{"tool": "integrate", "params": {}}`, "unknown tool: integrate"},
	}
	for _, tt := range tests {
		resp := geosymbol.HandleToolCall(toolRequest(t, tt.raw))
		if !strings.Contains(resp.Error, tt.want) {
			t.Errorf("%s: want error containing %q, got %q", tt.raw, tt.want, resp.Error)
		}
	}
}

func TestHandleToolCall_SolveRejectsNonFiniteKnown(t *testing.T) {
	for _, v := range []float64{math.NaN(), math.Inf(1)} {
		resp := geosymbol.HandleToolCall(geosymbol.ToolRequest{
			Tool: "solve",
			Params: map[string]interface{}{
				"facts": []interface{}{"isosceles(A,B,C)"},
				"known": map[string]interface{}{"∠ABC": v},
			},
		})
		if !strings.Contains(resp.Error, "must be number") {
			t.Errorf("%v: want a number error, got %q", v, resp.Error)
		}
	}
}

func TestHandleToolCall_Linearize(t *testing.T) {
	req := toolRequest(t, `{"tool": "linearize", "params": {"expr":
		{"type": "difference",
		 "left": {"type": "scaled", "coefficient": 2, "expr": {"type": "var", "name": "x"}},
		 "right": {"type": "const", "value": 6}}}}`)
	resp := geosymbol.HandleToolCall(req)
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	if resp.String != "2*x - 6 = 0" {
		t.Errorf("want 2*x - 6 = 0, got %s", resp.String)
	}
}

func TestHandleToolCall_Normalize(t *testing.T) {
	req := toolRequest(t, `{"tool": "normalize", "params": {
		"left": {"type": "var", "name": "∠ABC"},
		"right": {"type": "var", "name": "∠BCA"},
		"origin": "IsoscelesBaseAngles"}}`)
	resp := geosymbol.HandleToolCall(req)
	if resp.String != "∠ABC - ∠BCA = 0" {
		t.Errorf("got %q (error %q)", resp.String, resp.Error)
	}
}

func TestHandleToolCall_ListRules(t *testing.T) {
	resp := geosymbol.HandleToolCall(geosymbol.ToolRequest{Tool: "list_rules"})
	names, ok := resp.Result.([]string)
	if !ok || len(names) != 6 {
		t.Errorf("want six rule names, got %v", resp.Result)
	}
}

func TestMCPToolSpec(t *testing.T) {
	var spec struct {
		Tools []struct {
			Name string `json:"name"`
		} `json:"tools"`
	}
	if err := json.Unmarshal([]byte(geosymbol.MCPToolSpec()), &spec); err != nil {
		t.Fatalf("spec is not valid JSON: %v", err)
	}
	if len(spec.Tools) != 5 || spec.Tools[0].Name != "solve" {
		t.Errorf("unexpected tools %+v", spec.Tools)
	}
}
