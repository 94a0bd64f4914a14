package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"
	"time"
)

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	app := New().WithOutput(&stdout, &stderr)
	err := app.ExecuteWithArgs(context.Background(), args)
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestApp_Version(t *testing.T) {
	out, _, err := run(t, "version")
	if err != nil {
		t.Fatalf("version command failed: %v", err)
	}
	if !strings.Contains(out, "geosymbol version") {
		t.Errorf("version output missing 'geosymbol version', got: %s", out)
	}
}

func TestApp_Help(t *testing.T) {
	out, _, err := run(t, "--help")
	if err != nil {
		t.Fatalf("help command failed: %v", err)
	}
	if !strings.Contains(out, "angle equations") {
		t.Errorf("help output missing description, got: %s", out)
	}
	for _, sub := range []string{"solve", "rules", "serve", "runs", "watch"} {
		if !strings.Contains(out, sub) {
			t.Errorf("help output missing %q command", sub)
		}
	}
}

func TestApp_SolveText(t *testing.T) {
	out, _, err := run(t, "solve", "isosceles(A,B,C)", "exterior(A,B,C,E)", "--known", "∠ABC=50")
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	for _, want := range []string{
		"[geometric] Triangle ABC is isosceles",
		"∠EAC = 100",
		"∠BCA = 50",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("solve output missing %q, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Run:") {
		t.Errorf("unsaved run should not print an ID, got:\n%s", out)
	}
}

func TestApp_SolveJSON(t *testing.T) {
	out, _, err := run(t, "solve", "--fact", "isosceles(A,B,C)", "--known", "∠ABC=50", "-o", "json")
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	var res struct {
		Known      map[string]float64 `json:"known"`
		Unresolved []string           `json:"unresolved"`
		Facts      []string           `json:"facts"`
	}
	if err := json.Unmarshal([]byte(out), &res); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	if res.Known["∠BCA"] != 50 {
		t.Errorf("∠BCA = %v, want 50", res.Known["∠BCA"])
	}
	if len(res.Unresolved) != 0 {
		t.Errorf("unresolved = %v, want none", res.Unresolved)
	}
	if len(res.Facts) != 1 {
		t.Errorf("facts = %v, want one", res.Facts)
	}
}

func TestApp_SolveLaTeX(t *testing.T) {
	out, _, err := run(t, "solve", "isosceles(A,B,C)", "-o", "latex")
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if !strings.HasPrefix(out, `\begin{align*}`) {
		t.Errorf("latex output should open an align block, got:\n%s", out)
	}
	if !strings.Contains(out, `\angle ABC`) {
		t.Errorf("latex output missing \\angle ABC, got:\n%s", out)
	}
}

func TestApp_SolveErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no facts", []string{"solve"}, "at least one fact"},
		{"bad known", []string{"solve", "isosceles(A,B,C)", "--known", "∠ABC=fifty"}, "not a finite number"},
		{"nan known", []string{"solve", "isosceles(A,B,C)", "--known", "∠ABC=NaN"}, "not a finite number"},
		{"inf known", []string{"solve", "isosceles(A,B,C)", "--known", "∠ABC=-Inf"}, "not a finite number"},
		{"bad format", []string{"solve", "isosceles(A,B,C)", "-o", "xml"}, "unknown format"},
		{"unknown rule", []string{"solve", "isosceles(A,B,C)", "--rules", "Pythagoras"}, "unknown rule"},
		{"missing file", []string{"solve", "-f", "does-not-exist.yaml"}, "read facts file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, tt.args...)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestApp_SolveFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "figure.yaml", `
facts:
  - angle(C,A,B,40)
  - triangle(A,B,C)
known:
  ∠ABC: 70
rules: [GivenAngle, TriangleAngleSum]
`)
	out, _, err := run(t, "solve", "-f", path)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if !strings.Contains(out, "∠BCA = 70") {
		t.Errorf("solve output missing ∠BCA = 70, got:\n%s", out)
	}
}

func TestApp_SolveFileJSON(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "figure.json", `{"facts": ["isosceles(A,B,C)"], "known": {"∠BCA": 35}}`)
	out, _, err := run(t, "solve", "-f", path)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if !strings.Contains(out, "∠ABC = 35") {
		t.Errorf("solve output missing ∠ABC = 35, got:\n%s", out)
	}
}

func TestApp_Rules(t *testing.T) {
	out, _, err := run(t, "rules")
	if err != nil {
		t.Fatalf("rules failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 7 {
		t.Fatalf("want header and 6 rules, got %d lines:\n%s", len(lines), out)
	}
	enabled := 0
	for _, line := range lines[1:] {
		if strings.HasSuffix(line, "yes") {
			enabled++
		}
	}
	if enabled != 3 {
		t.Errorf("want the 3 default rules enabled, got %d:\n%s", enabled, out)
	}
}

func TestApp_RulesFromConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", `
engine:
  rules: [GivenAngle]
`)
	out, _, err := run(t, "rules", "-c", cfgPath)
	if err != nil {
		t.Fatalf("rules failed: %v", err)
	}
	for _, line := range strings.Split(out, "\n") {
		if strings.HasSuffix(line, "yes") && !strings.HasPrefix(line, "GivenAngle") {
			t.Errorf("only GivenAngle should be enabled, got line %q", line)
		}
	}
}

func TestApp_DebugLogging(t *testing.T) {
	_, stderr, err := run(t, "rules", "--log-level", "debug", "--log-format", "json")
	if err != nil {
		t.Fatalf("rules failed: %v", err)
	}
	if !strings.Contains(stderr, "configuration loaded") {
		t.Errorf("debug log missing, got: %s", stderr)
	}

	_, stderr, err = run(t, "rules")
	if err != nil {
		t.Fatalf("rules failed: %v", err)
	}
	if strings.Contains(stderr, "configuration loaded") {
		t.Errorf("debug log written at info level: %s", stderr)
	}
}

func TestApp_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", `
log:
  level: loud
`)
	_, _, err := run(t, "rules", "-c", cfgPath)
	if err == nil {
		t.Fatal("expected config error")
	}
}

func TestApp_Runs(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", "store:\n  path: "+filepath.Join(dir, "data")+"\n")

	out, _, err := run(t, "solve", "-c", cfgPath, "--save", "isosceles(A,B,C)", "exterior(A,B,C,E)", "--known", "∠ABC=50")
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	m := regexp.MustCompile(`Run: (\S+)`).FindStringSubmatch(out)
	if m == nil {
		t.Fatalf("saved run should print its ID, got:\n%s", out)
	}
	id := m[1]

	out, _, err = run(t, "runs", "list", "-c", cfgPath)
	if err != nil {
		t.Fatalf("runs list failed: %v", err)
	}
	if !strings.Contains(out, id) {
		t.Errorf("runs list missing %s, got:\n%s", id, out)
	}

	out, _, err = run(t, "runs", "get", id, "-c", cfgPath)
	if err != nil {
		t.Fatalf("runs get failed: %v", err)
	}
	if !strings.Contains(out, "∠EAC = 100") {
		t.Errorf("stored report missing ∠EAC = 100, got:\n%s", out)
	}

	out, _, err = run(t, "runs", "delete", id, "-c", cfgPath)
	if err != nil {
		t.Fatalf("runs delete failed: %v", err)
	}
	if !strings.Contains(out, "deleted") {
		t.Errorf("delete output = %q", out)
	}

	if _, _, err := run(t, "runs", "get", id, "-c", cfgPath); err == nil {
		t.Error("get after delete should fail")
	}
}

func TestApp_RunsListJSONEmpty(t *testing.T) {
	dir := t.TempDir()
	cfgPath := writeFile(t, dir, "config.yaml", "store:\n  in_memory: true\n")

	out, _, err := run(t, "runs", "list", "--json", "-c", cfgPath)
	if err != nil {
		t.Fatalf("runs list failed: %v", err)
	}
	if strings.TrimSpace(out) != "[]" {
		t.Errorf("empty list = %q, want []", out)
	}
}

func TestApp_WatchInitialSolve(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "figure.yaml", "facts: [isosceles(A,B,C)]\nknown: {∠ABC: 20}\n")

	var stdout, stderr bytes.Buffer
	app := New().WithOutput(&stdout, &stderr)
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if err := app.ExecuteWithArgs(ctx, []string{"watch", path}); err != nil {
		t.Fatalf("watch failed: %v", err)
	}
	out := stdout.String()
	if !strings.Contains(out, "== figure.yaml") {
		t.Errorf("watch output missing header, got:\n%s", out)
	}
	if !strings.Contains(out, "∠BCA = 20") {
		t.Errorf("watch output missing ∠BCA = 20, got:\n%s", out)
	}
}

func TestApp_WatchMissingFile(t *testing.T) {
	_, _, err := run(t, "watch", filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
