// Package shading evaluates the Blinn-Phong terms for one light at one surface point.
package shading

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/lights"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// Ambient returns La * Ma scaled by the light's ambient intensity
func Ambient(light lights.Light, mat material.Material) core.Color {
	return light.Ambient.Multiply(mat.Ambient).Scale(light.AmbientIntensity)
}

// Diffuse returns the Lambert term for unit normal n and unit light direction l
func Diffuse(light lights.Light, mat material.Material, normal, toLight core.Vec3) core.Color {
	cos := math.Max(0, normal.Dot(toLight))
	return light.Diffuse.Multiply(mat.Diffuse).Scale(cos * light.IncidentIntensity)
}

// Specular returns the Blinn-Phong highlight for a ray travelling along direction.
// The half vector is normalize(l - d).
func Specular(light lights.Light, mat material.Material, normal, toLight, direction core.Vec3) core.Color {
	half := toLight.Subtract(direction).Normalize()
	cos := math.Max(0, normal.Dot(half))
	return light.Specular.Multiply(mat.Specular).Scale(math.Pow(cos, mat.Smoothness) * light.IncidentIntensity)
}
