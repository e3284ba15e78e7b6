package core

import "testing"

func TestFloorCell(t *testing.T) {
	tests := []struct {
		name     string
		v        Vec
		expected Point
	}{
		{"origin", Vec{0, 0}, P(0, 0)},
		{"inside first cell", Vec{39.9, 12}, P(0, 0)},
		{"exact boundary", Vec{40, 80}, P(1, 2)},
		{"negative truncates down", Vec{-0.5, 10}, P(-1, 0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.v.FloorCell(40); got != tc.expected {
				t.Errorf("FloorCell(%v) = %v, expected %v", tc.v, got, tc.expected)
			}
		})
	}
}

func TestRoundCell(t *testing.T) {
	tests := []struct {
		name     string
		v        Vec
		expected Point
	}{
		{"exact", Vec{80, 80}, P(2, 2)},
		{"just below half", Vec{99, 60}, P(2, 2)},
		{"half rounds up", Vec{100, 100}, P(3, 3)},
		{"small offset", Vec{42, 38}, P(1, 1)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.v.RoundCell(40); got != tc.expected {
				t.Errorf("RoundCell(%v) = %v, expected %v", tc.v, got, tc.expected)
			}
		})
	}
}

func TestPointScaleAndManhattan(t *testing.T) {
	p := P(3, 4)
	if v := p.Scale(40); v != (Vec{120, 160}) {
		t.Errorf("Scale() = %v, expected (120,160)", v)
	}
	if d := p.Manhattan(P(1, 1)); d != 5 {
		t.Errorf("Manhattan() = %d, expected 5", d)
	}
	if s := p.String(); s != "(3,4)" {
		t.Errorf("String() = %q", s)
	}
}

func TestRectEdges(t *testing.T) {
	r := NewRect(10, 10, 20, 15)
	if r.Right() != 30 || r.Bottom() != 25 {
		t.Errorf("Right/Bottom = %d/%d, expected 30/25", r.Right(), r.Bottom())
	}
}

func TestClampAbs(t *testing.T) {
	if Clamp(-5, 0, 10) != 0 || Clamp(15, 0, 10) != 10 || Clamp(5, 0, 10) != 5 {
		t.Error("Clamp returned unexpected values")
	}
	if Abs(-5) != 5 || Abs(5) != 5 || Abs(0) != 0 {
		t.Error("Abs returned unexpected values")
	}
}
