package geom

import "testing"

func TestConstraint_Normalize(t *testing.T) {
	type tc struct {
		in   Constraint
		want Constraint
	}

	tests := map[string]tc{
		"zero value is unbounded": {
			in:   Constraint{},
			want: Constraint{Max: Unbounded},
		},
		"negative min clamps to zero": {
			in:   Constraint{Min: -5, Max: 10},
			want: Constraint{Max: 10},
		},
		"max below min is raised": {
			in:   Constraint{Min: 20, Max: 10},
			want: Constraint{Min: 20, Max: 20},
		},
		"preferred above max is clamped": {
			in:   Constraint{Max: 50, Preferred: 80, HasPreferred: true},
			want: Constraint{Max: 50, Preferred: 50, HasPreferred: true},
		},
		"preferred below min is clamped": {
			in:   Constraint{Min: 30, Max: 50, Preferred: 10, HasPreferred: true},
			want: Constraint{Min: 30, Max: 50, Preferred: 30, HasPreferred: true},
		},
		"negative flex becomes zero": {
			in:   Constraint{Flex: -2},
			want: Constraint{Max: Unbounded},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			got := tt.in.Normalize()
			if got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
			if got.Min > got.Max {
				t.Errorf("Normalize() produced min %v > max %v", got.Min, got.Max)
			}
		})
	}
}

func TestConstraint_Resolve(t *testing.T) {
	type tc struct {
		c       Constraint
		content float32
		want    float32
	}

	tests := map[string]tc{
		"content within bounds": {c: Between(10, 100), content: 40, want: 40},
		"content above max":     {c: Between(10, 100), content: 400, want: 100},
		"content below min":     {c: Between(10, 100), content: 2, want: 10},
		"preferred wins":        {c: Pref(70), content: 40, want: 70},
		"fixed ignores content": {c: Fixed(25), content: 90, want: 25},
		"unbounded max":         {c: Constraint{}, content: 1e6, want: 1e6},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			if got := tt.c.Resolve(tt.content); got != tt.want {
				t.Errorf("Resolve(%v) = %v, want %v", tt.content, got, tt.want)
			}
		})
	}
}

func TestRect_Intersect(t *testing.T) {
	a := R(0, 0, 100, 50)
	b := R(50, 25, 100, 100)
	if got, want := a.Intersect(b), R(50, 25, 50, 25); got != want {
		t.Errorf("Intersect() = %+v, want %+v", got, want)
	}
	if got := a.Intersect(R(200, 200, 5, 5)); !got.Empty() {
		t.Errorf("Intersect() of disjoint rects = %+v, want empty", got)
	}
}

func TestRect_InsetNeverNegative(t *testing.T) {
	got := R(0, 0, 10, 10).Inset(Uniform(8))
	if got.W != 0 || got.H != 0 {
		t.Errorf("Inset() = %+v, want zero extents", got)
	}
}

func TestRect_Contains(t *testing.T) {
	r := R(10, 10, 20, 20)
	for p, want := range map[Point]bool{
		Pt(10, 10): true,
		Pt(29, 29): true,
		Pt(30, 30): false,
		Pt(9, 15):  false,
	} {
		if got := r.Contains(p); got != want {
			t.Errorf("Contains(%v) = %v, want %v", p, got, want)
		}
	}
}
