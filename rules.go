package geosymbol

import "fmt"

// ============================================================
// Base rules
// ============================================================

// IsoscelesBaseAngles: isosceles(A,B,C) states AB = AC, so the base angles
// ∠ABC and ∠BCA are equal.
type IsoscelesBaseAngles struct{}

func (IsoscelesBaseAngles) Name() string { return "IsoscelesBaseAngles" }

func (r IsoscelesBaseAngles) Apply(state *State) *Step {
	t, ok := findTriangle(state, "isosceles")
	if !ok {
		return nil
	}
	left, right := Angle(t.A, t.B, t.C), Angle(t.B, t.C, t.A)
	return &Step{
		Kind: StepGeometric,
		Rule: r.Name(),
		Description: fmt.Sprintf("Triangle %s%s%s is isosceles with %s%s = %s%s, so its base angles are equal: %s = %s",
			t.A, t.B, t.C, t.A, t.B, t.A, t.C, left, right),
		Produces: []Equation{Eq(left, right, r.Name())},
	}
}

// AngleBisector: bisectriz(A,B,C,D) states AD bisects ∠BAC.
type AngleBisector struct{}

func (AngleBisector) Name() string { return "AngleBisector" }

func (r AngleBisector) Apply(state *State) *Step {
	f, ok := findRay(state, "bisectriz")
	if !ok {
		return nil
	}
	left, right := Angle(f.B, f.A, f.D), Angle(f.D, f.A, f.C)
	return &Step{
		Kind: StepGeometric,
		Rule: r.Name(),
		Description: fmt.Sprintf("%s%s bisects %s, so %s = %s",
			f.A, f.D, AngleName(f.B, f.A, f.C), left, right),
		Produces: []Equation{Eq(left, right, r.Name())},
	}
}

// ExteriorAngle: exterior(A,B,C,D) states ∠DAC is the exterior angle at A of
// triangle ABC, which equals the sum of the two remote interior angles.
type ExteriorAngle struct{}

func (ExteriorAngle) Name() string { return "ExteriorAngle" }

func (r ExteriorAngle) Apply(state *State) *Step {
	f, ok := findRay(state, "exterior")
	if !ok {
		return nil
	}
	ext := Angle(f.D, f.A, f.C)
	b, c := Angle(f.A, f.B, f.C), Angle(f.B, f.C, f.A)
	return &Step{
		Kind: StepGeometric,
		Rule: r.Name(),
		Description: fmt.Sprintf("%s is the exterior angle at %s of triangle %s%s%s, so it equals the sum of the remote interior angles: %s = %s + %s",
			ext, f.A, f.A, f.B, f.C, ext, b, c),
		Produces: []Equation{Eq(ext, Plus(b, c), r.Name())},
	}
}

// ============================================================
// Opt-in rules
// ============================================================

// TriangleAngleSum: triangle(A,B,C) → ∠ABC + ∠BCA + ∠CAB = 180.
type TriangleAngleSum struct{}

func (TriangleAngleSum) Name() string { return "TriangleAngleSum" }

func (r TriangleAngleSum) Apply(state *State) *Step {
	t, ok := findTriangle(state, "triangle")
	if !ok {
		return nil
	}
	sum := SumOf(Angle(t.A, t.B, t.C), Angle(t.B, t.C, t.A), Angle(t.C, t.A, t.B))
	return &Step{
		Kind:        StepGeometric,
		Rule:        r.Name(),
		Description: fmt.Sprintf("The interior angles of triangle %s%s%s add up to 180: %s = 180", t.A, t.B, t.C, sum),
		Produces:    []Equation{Eq(sum, C(180), r.Name())},
	}
}

// GivenAngle: angle(A,B,C,50) fixes ∠ABC = 50.
type GivenAngle struct{}

func (GivenAngle) Name() string { return "GivenAngle" }

func (r GivenAngle) Apply(state *State) *Step {
	m, ok := findMeasure(state, "angle")
	if !ok {
		return nil
	}
	v := Angle(m.A, m.B, m.C)
	return &Step{
		Kind:        StepGiven,
		Rule:        r.Name(),
		Description: fmt.Sprintf("Given: %s = %s", v, formatNum(m.Degrees)),
		Produces:    []Equation{Eq(v, C(m.Degrees), r.Name())},
	}
}

// SupplementaryAngles: linear(A,B,C,D) puts B between A and C on a line with D
// off the line, so ∠ABD + ∠DBC = 180.
type SupplementaryAngles struct{}

func (SupplementaryAngles) Name() string { return "SupplementaryAngles" }

func (r SupplementaryAngles) Apply(state *State) *Step {
	f, ok := findRay(state, "linear")
	if !ok {
		return nil
	}
	sum := Plus(Angle(f.A, f.B, f.D), Angle(f.D, f.B, f.C))
	return &Step{
		Kind:        StepGeometric,
		Rule:        r.Name(),
		Description: fmt.Sprintf("%s, %s and %s are collinear, so %s = 180", f.A, f.B, f.C, sum),
		Produces:    []Equation{Eq(sum, C(180), r.Name())},
	}
}
