package renderer

import (
	"fmt"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/lights"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

func redMaterial() material.Material {
	return material.NewPhong(core.NewColor(1, 0, 0), core.NewColor(1, 0, 0), core.Black, 1, 0)
}

func newTracer(mode Mode, objects []geometry.Object, lightList []lights.Light, maxBounces int) *Raytracer {
	return NewRaytracer(RaytracerConfig{
		Mode:       mode,
		Objects:    objects,
		Lights:     lightList,
		MaxBounces: maxBounces,
		Far:        1000,
		Seed:       1,
	})
}

func TestRaytracer_TraceHit_Modes(t *testing.T) {
	sphere := geometry.NewSphere(core.NewVec3(0, 0, -5), 1, redMaterial())
	plane := geometry.NewPlane(core.NewVec3(0, -1, 0), core.NewVec3(0, 1, 0), redMaterial())
	objects := []geometry.Object{plane, sphere}

	tests := []struct {
		name      string
		mode      Mode
		tolerance float64
	}{
		{"ray trace", ModeRayTrace, 1e-9},
		{"ray march", ModeRayMarch, 0.011},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tracer := newTracer(tt.mode, objects, nil, 0)

			hit := tracer.TraceHit(core.Vec3{}, core.NewVec3(0, 0, -1), 0, 100, nil)
			if !hit.Hit || hit.Object != sphere {
				t.Fatalf("Expected sphere hit, got %+v", hit)
			}
			if math.Abs(hit.Distance-4) > tt.tolerance {
				t.Errorf("Expected distance 4, got %v", hit.Distance)
			}
			if hit.Normal.Subtract(core.NewVec3(0, 0, 1)).Length() > 0.01 {
				t.Errorf("Expected normal facing the camera, got %v", hit.Normal)
			}

			// Nearest object wins
			hit = tracer.TraceHit(core.NewVec3(0, 5, -5), core.NewVec3(0, -1, 0), 0, 100, nil)
			if !hit.Hit || hit.Object != sphere {
				t.Errorf("Expected the sphere in front of the plane, got %+v", hit)
			}

			// Misses everything
			if hit := tracer.TraceHit(core.Vec3{}, core.NewVec3(0, 1, 0), 0, 100, nil); hit.Hit {
				t.Errorf("Expected miss, got %+v", hit)
			}

			// Far clip
			if hit := tracer.TraceHit(core.Vec3{}, core.NewVec3(0, 0, -1), 0, 3, nil); hit.Hit {
				t.Errorf("Expected far clip to cut the hit, got %+v", hit)
			}
		})
	}
}

func TestRaytracer_RayMarch_NearClipFirstStep(t *testing.T) {
	// The camera sits 0.05 in front of a sphere
	near := geometry.NewSphere(core.NewVec3(0, 0, -1.05), 1, redMaterial())
	tracer := newTracer(ModeRayMarch, []geometry.Object{near}, nil, 0)

	hit := tracer.TraceHit(core.Vec3{}, core.NewVec3(0, 0, -1), 0, 100, nil)
	if !hit.Hit || hit.Object != near {
		t.Fatalf("Expected sphere hit without a near clip, got %+v", hit)
	}
	if math.Abs(hit.Distance-0.05) > marchHitDistance {
		t.Errorf("Expected distance near 0.05, got %v", hit.Distance)
	}

	if hit := tracer.TraceHit(core.Vec3{}, core.NewVec3(0, 0, -1), 0.1, 100, nil); hit.Hit {
		t.Errorf("Expected sphere inside the near clip to be ignored, got %+v", hit)
	}
}

func TestRaytracer_SelfIntersection(t *testing.T) {
	sphere := geometry.NewSphere(core.NewVec3(0, 0, 0), 1, redMaterial())
	plane := geometry.NewPlane(core.NewVec3(0, -1, 0), core.NewVec3(0, 1, 0), redMaterial())

	for _, mode := range []Mode{ModeRayTrace, ModeRayMarch} {
		t.Run(mode.String(), func(t *testing.T) {
			tracer := newTracer(mode, []geometry.Object{sphere, plane}, nil, 0)
			top := tracer.TraceHit(core.NewVec3(0, 5, 0), core.NewVec3(0, -1, 0), 0, 100, nil)
			if !top.Hit || top.Object != sphere {
				t.Fatalf("Expected sphere top, got %+v", top)
			}

			// Leaving the surface with nearClip = 0 must not report the starting surface
			out := tracer.TraceHit(top.Point, core.NewVec3(0, 1, 0), 0, 100, &top)
			if out.Hit {
				t.Errorf("Expected outgoing ray to escape, got %+v", out)
			}

			// A light straight above does not shadow its own surface
			if tracer.IsShadow(top, core.NewVec3(0, 10, 0)) {
				t.Error("Expected no self shadow")
			}
		})
	}
}

func TestRaytracer_IsShadow(t *testing.T) {
	plane := geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), redMaterial())
	blocker := geometry.NewSphere(core.NewVec3(0, 2, 0), 0.5, redMaterial())
	light := core.NewVec3(0, 5, 0)

	for _, mode := range []Mode{ModeRayTrace, ModeRayMarch} {
		t.Run(mode.String(), func(t *testing.T) {
			tracer := newTracer(mode, []geometry.Object{plane, blocker}, nil, 0)

			below := tracer.TraceHit(core.NewVec3(0, 1, 1), core.NewVec3(0, -1, -1).Normalize(), 0, 100, nil)
			if !below.Hit || below.Object != plane {
				t.Fatalf("Expected plane hit under the blocker, got %+v", below)
			}
			if !tracer.IsShadow(below, light) {
				t.Error("Expected point under the blocker to be shadowed")
			}

			aside := tracer.TraceHit(core.NewVec3(4, 1, 0), core.NewVec3(0, -1, 0), 0, 100, nil)
			if !aside.Hit || tracer.IsShadow(aside, light) {
				t.Errorf("Expected point off to the side to be lit, hit %+v", aside)
			}

			// A blocker beyond the light does not cast a shadow
			if tracer.IsShadow(below, core.NewVec3(0, 1, 0)) {
				t.Error("Expected light below the blocker to reach the plane")
			}
		})
	}
}

func TestRaytracer_TraceColor_RedSphere(t *testing.T) {
	sphere := geometry.NewSphere(core.NewVec3(0, 0, -5), 1, redMaterial())
	tracer := newTracer(ModeRayTrace, []geometry.Object{sphere}, []lights.Light{lights.NewPointLight(core.Vec3{})}, 0)

	got := tracer.TraceColor(core.Vec3{}, core.NewVec3(0, 0, -1), 0, 100, 0, nil)
	if diff := cmp.Diff(core.NewColor(1, 0, 0), got, approx); diff != "" {
		t.Errorf("color mismatch (-want +got):\n%s", diff)
	}
}

func TestRaytracer_RedSphereScene(t *testing.T) {
	mat := material.NewPhong(core.NewColor(0.2, 0, 0), core.NewColor(1, 0, 0), core.Black, 1, 0)
	sphere := geometry.NewSphere(core.NewVec3(0, -25, 0), 20, mat)
	light := lights.NewPointLight(core.NewVec3(40, 40, 50))
	eye := core.NewVec3(0, 0, 100)
	direction := sphere.Center.Subtract(eye)

	for _, mode := range []Mode{ModeRayTrace, ModeRayMarch} {
		t.Run(mode.String(), func(t *testing.T) {
			tracer := newTracer(mode, []geometry.Object{sphere}, []lights.Light{light}, 3)

			hit := tracer.TraceHit(eye, direction.Normalize(), 0, 1000, nil)
			if !hit.Hit || hit.Object != sphere {
				t.Fatalf("Expected the sphere, got %+v", hit)
			}
			if want := direction.Length() - 20; math.Abs(hit.Distance-want) > 0.05 {
				t.Errorf("Expected distance %v, got %v", want, hit.Distance)
			}

			got := tracer.TraceColor(eye, direction, 0, 1000, 0, nil)
			if got.R <= got.G || got.R <= got.B {
				t.Errorf("Expected a red pixel, got %v", got)
			}
		})
	}
}

func TestRaytracer_ZeroDirectionMisses(t *testing.T) {
	sphere := geometry.NewSphere(core.NewVec3(0, 0, -5), 1, redMaterial())
	plane := geometry.NewPlane(core.NewVec3(0, -1, 0), core.NewVec3(0, 1, 0), redMaterial())
	objects := []geometry.Object{plane, sphere}
	light := lights.NewPointLight(core.NewVec3(0, 5, 0))

	for _, mode := range []Mode{ModeRayTrace, ModeRayMarch} {
		t.Run(mode.String(), func(t *testing.T) {
			tracer := newTracer(mode, objects, []lights.Light{light}, 2)

			if hit := tracer.TraceHit(core.Vec3{}, core.Vec3{}, 0, 100, nil); hit.Hit {
				t.Errorf("Expected a miss, got %+v", hit)
			}
			if got := tracer.TraceColor(core.Vec3{}, core.Vec3{}, 0, 100, 0, nil); got != core.Black {
				t.Errorf("Expected the background, got %v", got)
			}
		})
	}
}

func TestRaytracer_TraceColor_AmbientOnlyInShadow(t *testing.T) {
	plane := geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), material.NewMatte(core.White))
	blocker := geometry.NewSphere(core.NewVec3(0, 2, 0), 0.5, redMaterial())
	light := lights.NewPointLight(core.NewVec3(0, 5, 0))
	tracer := newTracer(ModeRayTrace, []geometry.Object{plane, blocker}, []lights.Light{light}, 0)

	got := tracer.TraceColor(core.NewVec3(1, 1, 0), core.NewVec3(-1, -1, 0), 0, 100, 0, nil)
	if diff := cmp.Diff(core.Gray(0.2), got, approx); diff != "" {
		t.Errorf("Expected ambient only (-want +got):\n%s", diff)
	}
}

func TestRaytracer_MissIsBlack(t *testing.T) {
	sphere := geometry.NewSphere(core.NewVec3(0, 0, -5), 1, material.NewMirror(core.White, 1))

	for numLights := 0; numLights <= 3; numLights++ {
		for bounces := 0; bounces <= 3; bounces++ {
			for _, mode := range []Mode{ModeRayTrace, ModeRayMarch} {
				name := fmt.Sprintf("%s/%d lights/%d bounces", mode, numLights, bounces)
				t.Run(name, func(t *testing.T) {
					var lightList []lights.Light
					for i := 0; i < numLights; i++ {
						lightList = append(lightList, lights.NewPointLight(core.NewVec3(float64(i), 5, 0)))
					}
					tracer := newTracer(mode, []geometry.Object{sphere}, lightList, bounces)
					got := tracer.TraceColor(core.Vec3{}, core.NewVec3(0, 0, 1), 0, 100, 0, nil)
					if got != core.Black {
						t.Errorf("Expected exact black, got %v", got)
					}
				})
			}
		}
	}
}

func TestRaytracer_BounceTermination(t *testing.T) {
	// Two facing mirrors reflect the ray back and forth forever
	mirror := material.NewPhong(core.Black, core.Black, core.Black, 1, 1)
	front := geometry.NewPlane(core.NewVec3(0, 0, -1), core.NewVec3(0, 0, 1), mirror)
	back := geometry.NewPlane(core.NewVec3(0, 0, 1), core.NewVec3(0, 0, -1), mirror)
	light := lights.NewPointLight(core.NewVec3(0, 0.5, 0))

	for _, maxBounces := range []int{0, 1, 3, 7} {
		t.Run(fmt.Sprintf("%d bounces", maxBounces), func(t *testing.T) {
			tracer := newTracer(ModeRayTrace, []geometry.Object{front, back}, []lights.Light{light}, maxBounces)
			tracer.TraceColor(core.Vec3{}, core.NewVec3(0, 0, -1), 0, 100, 0, nil)

			stats := tracer.Stats()
			if stats.MaxDepth != int64(maxBounces) {
				t.Errorf("Expected max depth %d, got %d", maxBounces, stats.MaxDepth)
			}
			if stats.ReflectionRays != int64(maxBounces) {
				t.Errorf("Expected %d reflection rays, got %d", maxBounces, stats.ReflectionRays)
			}
			if stats.PrimaryRays != 1 {
				t.Errorf("Expected one primary ray, got %d", stats.PrimaryRays)
			}
		})
	}
}

func TestRaytracer_ReflectionBlend(t *testing.T) {
	// A half mirror facing a red wall blends its own grey with the wall
	grey := material.NewPhong(core.Gray(0), core.Gray(0), core.Black, 1, 0.5)
	mirror := geometry.NewPlane(core.NewVec3(0, 0, -1), core.NewVec3(0, 0, 1), grey)
	wall := geometry.NewPlane(core.NewVec3(0, 0, 3), core.NewVec3(0, 0, -1), redMaterial())

	var l lights.Light
	l.Ambient = core.White
	l.AmbientIntensity = 1
	tracer := newTracer(ModeRayTrace, []geometry.Object{mirror, wall}, []lights.Light{l}, 1)

	got := tracer.TraceColor(core.Vec3{}, core.NewVec3(0, 0, -1), 0, 100, 0, nil)
	if diff := cmp.Diff(core.NewColor(0.5, 0, 0), got, approx); diff != "" {
		t.Errorf("blend mismatch (-want +got):\n%s", diff)
	}
}

func TestRaytracer_AreaLightSoftShadow(t *testing.T) {
	plane := geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), material.NewMatte(core.White))
	// Small blocker covers only part of the light as seen from the origin
	blocker := geometry.NewSphere(core.NewVec3(0.6, 2.5, 0), 0.5, redMaterial())
	light := lights.NewAreaLight(core.NewVec3(0, 5, 0), 1.5, 64)
	tracer := newTracer(ModeRayTrace, []geometry.Object{plane, blocker}, nil, 0)

	hit := tracer.TraceHit(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0), 0, 100, nil)
	vis := tracer.Visibility(hit, light)
	if vis <= 0 || vis >= 1 {
		t.Errorf("Expected partial visibility, got %v", vis)
	}
	if got := tracer.Stats().ShadowRays; got != 64 {
		t.Errorf("Expected 64 shadow rays, got %d", got)
	}
}
