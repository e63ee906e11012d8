package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

func TestCylinder_RayIntersect(t *testing.T) {
	cylinder := NewCylinder(core.NewVec3(0, 0, -5), 1, testMaterial)

	tests := []struct {
		name           string
		origin         core.Vec3
		direction      core.Vec3
		expectHit      bool
		expectedT      float64
		expectedNormal core.Vec3
	}{
		{"front", core.NewVec3(0, 3, 0), core.NewVec3(0, 0, -1), true, 4, core.NewVec3(0, 0, 1)},
		{"slanted keeps xz distance", core.NewVec3(0, 0, 0), core.NewVec3(0, 1, -1), true, 4, core.NewVec3(0, 0, 1)},
		{"parallel to axis", core.NewVec3(0, 0, -5), core.NewVec3(0, 1, 0), false, 0, core.Vec3{}},
		{"miss", core.NewVec3(3, 0, 0), core.NewVec3(0, 0, -1), false, 0, core.Vec3{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit := cylinder.RayIntersect(tt.origin, tt.direction, 0, math.Inf(1), nil)
			if hit.Hit != tt.expectHit {
				t.Fatalf("Expected hit=%v, got %+v", tt.expectHit, hit)
			}
			if !tt.expectHit {
				return
			}
			if math.Abs(hit.Distance-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%v, got %v", tt.expectedT, hit.Distance)
			}
			if hit.Normal.Subtract(tt.expectedNormal).Length() > 1e-9 {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.Normal)
			}
		})
	}
}

func TestCylinder_SignedDistance(t *testing.T) {
	cylinder := NewCylinder(core.NewVec3(1, 0, 1), 0.5, testMaterial)
	if got := cylinder.SignedDistance(core.NewVec3(4, 100, 5)).Distance; math.Abs(got-4.5) > 1e-12 {
		t.Errorf("Expected 4.5, got %v", got)
	}
	if got := cylinder.SignedDistance(core.NewVec3(1, -7, 1)).Distance; got != -0.5 {
		t.Errorf("Expected -0.5 on the axis, got %v", got)
	}
}
