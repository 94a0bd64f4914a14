package geosymbol

import (
	"encoding/json"
	"fmt"
)

// ============================================================
// JSON Serialization
// ============================================================

func exprToMap(e Expr) map[string]interface{} {
	switch x := e.(type) {
	case Const:
		return map[string]interface{}{"type": "const", "value": x.Value}
	case Var:
		return map[string]interface{}{"type": "var", "name": x.Name}
	case Sum:
		return map[string]interface{}{"type": "sum", "left": exprToMap(x.Left), "right": exprToMap(x.Right)}
	case Difference:
		return map[string]interface{}{"type": "difference", "left": exprToMap(x.Left), "right": exprToMap(x.Right)}
	case Scaled:
		return map[string]interface{}{"type": "scaled", "coefficient": x.Coefficient, "expr": exprToMap(x.Inner)}
	default:
		panic(unknownExpr(e))
	}
}

func ExprToJSON(e Expr) (string, error) {
	b, err := json.Marshal(exprToMap(e))
	return string(b), err
}

// ExprFromJSON decodes the object form produced by ExprToJSON, as it arrives
// from encoding/json (numbers as float64, objects as map[string]interface{}).
func ExprFromJSON(data map[string]interface{}) (Expr, error) {
	if data == nil {
		return nil, fmt.Errorf("expression must be an object")
	}
	typAny, ok := data["type"]
	if !ok {
		return nil, fmt.Errorf("missing 'type' field")
	}
	typ, ok := typAny.(string)
	if !ok || typ == "" {
		return nil, fmt.Errorf("field 'type' must be a non-empty string")
	}

	subExpr := func(field string) (Expr, error) {
		v, ok := data[field]
		if !ok {
			return nil, fmt.Errorf("%s: missing %q", typ, field)
		}
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%s: %q must be an object", typ, field)
		}
		return ExprFromJSON(m)
	}
	number := func(field string) (float64, error) {
		v, ok := data[field]
		if !ok {
			return 0, fmt.Errorf("%s: missing %q", typ, field)
		}
		f, ok := v.(float64)
		if !ok {
			return 0, fmt.Errorf("%s: %q must be a number", typ, field)
		}
		return f, nil
	}
	pair := func() (Expr, Expr, error) {
		l, err := subExpr("left")
		if err != nil {
			return nil, nil, err
		}
		r, err := subExpr("right")
		if err != nil {
			return nil, nil, err
		}
		return l, r, nil
	}

	switch typ {
	case "const":
		v, err := number("value")
		if err != nil {
			return nil, err
		}
		return C(v), nil
	case "var":
		name, ok := data["name"].(string)
		if !ok || name == "" {
			return nil, fmt.Errorf("var: 'name' must be a non-empty string")
		}
		return V(name), nil
	case "sum":
		l, r, err := pair()
		if err != nil {
			return nil, err
		}
		return Plus(l, r), nil
	case "difference":
		l, r, err := pair()
		if err != nil {
			return nil, err
		}
		return Minus(l, r), nil
	case "scaled":
		k, err := number("coefficient")
		if err != nil {
			return nil, err
		}
		inner, err := subExpr("expr")
		if err != nil {
			return nil, err
		}
		return Times(k, inner), nil
	}
	return nil, fmt.Errorf("unknown expression type: %s", typ)
}

type equationJSON struct {
	Left   map[string]interface{} `json:"left"`
	Right  map[string]interface{} `json:"right"`
	Origin string                 `json:"origin"`
	Text   string                 `json:"text,omitempty"`
}

func (e Equation) MarshalJSON() ([]byte, error) {
	return json.Marshal(equationJSON{
		Left:   exprToMap(e.Left),
		Right:  exprToMap(e.Right),
		Origin: e.Origin,
		Text:   e.String(),
	})
}

func (e *Equation) UnmarshalJSON(b []byte) error {
	var raw equationJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	left, err := ExprFromJSON(raw.Left)
	if err != nil {
		return fmt.Errorf("left: %w", err)
	}
	right, err := ExprFromJSON(raw.Right)
	if err != nil {
		return fmt.Errorf("right: %w", err)
	}
	*e = Eq(left, right, raw.Origin)
	return nil
}

func (fs FactSet) MarshalJSON() ([]byte, error) {
	if fs.order == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(fs.order)
}

func (fs *FactSet) UnmarshalJSON(b []byte) error {
	var facts []string
	if err := json.Unmarshal(b, &facts); err != nil {
		return err
	}
	*fs = NewFactSet(facts...)
	return nil
}

// DecodeState reads the wire form {"facts": [...], "known": {...}} (equations
// and steps are optional) into a State ready for Engine.Run.
func DecodeState(b []byte) (*State, error) {
	st := NewState()
	if err := json.Unmarshal(b, st); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	if st.KnownValues == nil {
		st.KnownValues = map[string]float64{}
	}
	return st, nil
}
