package core

import (
	"math"
	"testing"
)

func TestVec3_Normalize(t *testing.T) {
	tests := []struct {
		name     string
		vector   Vec3
		expected Vec3
	}{
		{"unit x", NewVec3(5, 0, 0), NewVec3(1, 0, 0)},
		{"diagonal", NewVec3(3, 4, 0), NewVec3(0.6, 0.8, 0)},
		{"zero vector stays zero", NewVec3(0, 0, 0), NewVec3(0, 0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.vector.Normalize()
			if result.Subtract(tt.expected).Length() > 1e-12 {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestVec3_Cross(t *testing.T) {
	x := NewVec3(1, 0, 0)
	y := NewVec3(0, 1, 0)
	if got := x.Cross(y); got != NewVec3(0, 0, 1) {
		t.Errorf("x cross y = %v, want (0,0,1)", got)
	}
	if got := y.Cross(x); got != NewVec3(0, 0, -1) {
		t.Errorf("y cross x = %v, want (0,0,-1)", got)
	}
}

func TestVec3_Reflect(t *testing.T) {
	incoming := NewVec3(1, -1, 0)
	normal := NewVec3(0, 1, 0)
	if got := incoming.Reflect(normal); got != NewVec3(1, 1, 0) {
		t.Errorf("Reflect = %v, want (1,1,0)", got)
	}
}

func TestVec3_Axis(t *testing.T) {
	v := NewVec3(1, 2, 3)
	for axis, want := range []float64{1, 2, 3} {
		if got := v.Axis(axis); got != want {
			t.Errorf("Axis(%d) = %v, want %v", axis, got, want)
		}
	}
}

func TestRay_At(t *testing.T) {
	ray := NewRay(NewVec3(1, 1, 1), NewVec3(0, 0, -1))
	got := ray.At(2.5)
	if math.Abs(got.Z+1.5) > 1e-12 || got.X != 1 || got.Y != 1 {
		t.Errorf("At(2.5) = %v, want (1,1,-1.5)", got)
	}
}
