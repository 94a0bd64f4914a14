package geosymbol

import (
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownRule is returned by RulesByName for a name no rule answers to.
var ErrUnknownRule = errors.New("unknown rule")

// Rule inspects a State and either infers nothing (nil) or returns one Step
// holding the equations that encode its inference. Apply must not mutate the
// state; the Engine is the only writer.
type Rule interface {
	Name() string
	Apply(state *State) *Step
}

type ruleFunc struct {
	name  string
	apply func(*State) *Step
}

// NewRule adapts a function to the Rule interface.
func NewRule(name string, apply func(*State) *Step) Rule {
	return ruleFunc{name: name, apply: apply}
}

func (r ruleFunc) Name() string             { return r.name }
func (r ruleFunc) Apply(state *State) *Step { return r.apply(state) }

// DefaultRules returns the base inference rules in registration order.
func DefaultRules() []Rule {
	return []Rule{IsoscelesBaseAngles{}, AngleBisector{}, ExteriorAngle{}}
}

// ExtendedRules returns DefaultRules followed by the opt-in rules.
func ExtendedRules() []Rule {
	return append(DefaultRules(), TriangleAngleSum{}, GivenAngle{}, SupplementaryAngles{})
}

// RulesByName picks rules out of ExtendedRules in the order names are given.
// An empty list selects DefaultRules.
func RulesByName(names []string) ([]Rule, error) {
	if len(names) == 0 {
		return DefaultRules(), nil
	}
	byName := map[string]Rule{}
	for _, r := range ExtendedRules() {
		byName[r.Name()] = r
	}
	out := make([]Rule, 0, len(names))
	for _, n := range names {
		r, ok := byName[n]
		if !ok {
			return nil, errors.Wrapf(ErrUnknownRule, "%q", n)
		}
		out = append(out, r)
	}
	return out, nil
}

// RuleNames lists the names of rules, preserving order.
func RuleNames(rules []Rule) []string {
	out := make([]string, len(rules))
	for i, r := range rules {
		out[i] = r.Name()
	}
	return out
}

// ============================================================
// Fact parsing
// ============================================================

// parseFact splits "name(a,b,c)" into its arguments. It fails unless the
// predicate is name and there are exactly arity non-empty arguments.
func parseFact(fact, name string, arity int) ([]string, bool) {
	fact = strings.TrimSpace(fact)
	payload, ok := strings.CutPrefix(fact, name+"(")
	if !ok {
		return nil, false
	}
	payload, ok = strings.CutSuffix(payload, ")")
	if !ok {
		return nil, false
	}
	args := strings.Split(payload, ",")
	if len(args) != arity {
		return nil, false
	}
	for i, a := range args {
		args[i] = strings.TrimSpace(a)
		if args[i] == "" {
			return nil, false
		}
	}
	return args, true
}

// findFact returns the arguments of the first fact (in insertion order) that
// has the given predicate and arity.
func findFact(state *State, name string, arity int) ([]string, bool) {
	for _, f := range state.Facts.order {
		if args, ok := parseFact(f, name, arity); ok {
			return args, true
		}
	}
	return nil, false
}

type triangleFact struct{ A, B, C string }

func findTriangle(state *State, name string) (triangleFact, bool) {
	args, ok := findFact(state, name, 3)
	if !ok {
		return triangleFact{}, false
	}
	return triangleFact{A: args[0], B: args[1], C: args[2]}, true
}

// rayFact is a four-point fact: a triangle-ish ABC and an extra point D.
type rayFact struct{ A, B, C, D string }

func findRay(state *State, name string) (rayFact, bool) {
	args, ok := findFact(state, name, 4)
	if !ok {
		return rayFact{}, false
	}
	return rayFact{A: args[0], B: args[1], C: args[2], D: args[3]}, true
}

type measureFact struct {
	A, B, C string
	Degrees float64
}

// findMeasure accepts "name(A,B,C,deg)"; facts whose last argument is not a
// finite number are skipped.
func findMeasure(state *State, name string) (measureFact, bool) {
	for _, f := range state.Facts.order {
		args, ok := parseFact(f, name, 4)
		if !ok {
			continue
		}
		deg, err := strconv.ParseFloat(args[3], 64)
		if err != nil || math.IsNaN(deg) || math.IsInf(deg, 0) {
			continue
		}
		return measureFact{A: args[0], B: args[1], C: args[2], Degrees: deg}, true
	}
	return measureFact{}, false
}
