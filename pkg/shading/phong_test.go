package shading

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/lights"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

var approx = cmpopts.EquateApprox(0, 1e-9)

func TestAmbient(t *testing.T) {
	light := lights.NewPointLight(core.Vec3{})
	light.AmbientIntensity = 0.5
	mat := material.NewMatte(core.NewColor(1, 0.5, 0))

	got := Ambient(light, mat)
	if diff := cmp.Diff(core.Color{R: 0.1, G: 0.05, B: 0}, got, approx); diff != "" {
		t.Errorf("Ambient mismatch (-want +got):\n%s", diff)
	}
}

func TestDiffuse(t *testing.T) {
	light := lights.NewPointLight(core.Vec3{})
	mat := material.NewMatte(core.NewColor(1, 0, 0))
	normal := core.NewVec3(0, 1, 0)

	tests := []struct {
		name     string
		toLight  core.Vec3
		expected core.Color
	}{
		{"head on", core.NewVec3(0, 1, 0), core.Color{R: 1}},
		{"grazing 60 degrees", core.NewVec3(0.8660254037844386, 0.5, 0), core.Color{R: 0.5}},
		{"behind surface", core.NewVec3(0, -1, 0), core.Color{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diffuse(light, mat, normal, tt.toLight)
			if diff := cmp.Diff(tt.expected, got, approx); diff != "" {
				t.Errorf("Diffuse mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSpecular(t *testing.T) {
	light := lights.NewPointLight(core.Vec3{})
	mat := material.NewPhong(core.Color{}, core.Color{}, core.White, 10, 0)
	normal := core.NewVec3(0, 1, 0)

	// Light straight above, ray straight down: half vector equals the normal
	got := Specular(light, mat, normal, core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))
	if diff := cmp.Diff(core.White, got, approx); diff != "" {
		t.Errorf("Specular peak mismatch (-want +got):\n%s", diff)
	}

	// Off-peak highlights fall off with smoothness
	off := Specular(light, mat, normal, core.NewVec3(0, 1, 0), core.NewVec3(1, -1, 0).Normalize())
	if off.R >= 1 || off.R <= 0 {
		t.Errorf("Expected partial highlight, got %v", off)
	}

	// Half vector below the surface yields nothing
	none := Specular(light, mat, normal, core.NewVec3(0, -1, 0), core.NewVec3(0, 1, 0))
	if none != (core.Color{}) {
		t.Errorf("Expected no highlight, got %v", none)
	}
}
