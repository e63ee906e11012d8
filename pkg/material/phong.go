package material

import (
	"math"

	"github.com/pkg/errors"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// ErrInvalidMaterial is returned by Validate for out-of-range parameters
var ErrInvalidMaterial = errors.New("invalid material")

// Material holds Phong surface parameters
type Material struct {
	Ambient  core.Color
	Diffuse  core.Color
	Specular core.Color

	// Smoothness is the specular exponent; larger values give tighter highlights
	Smoothness float64

	// Reflectivity blends local shading with the mirror bounce, 0 is matte and 1 a perfect mirror
	Reflectivity float64
}

// NewPhong creates a material, clamping smoothness to >= 0 and reflectivity to [0, 1]
func NewPhong(ambient, diffuse, specular core.Color, smoothness, reflectivity float64) Material {
	return Material{
		Ambient:      ambient,
		Diffuse:      diffuse,
		Specular:     specular,
		Smoothness:   math.Max(0, smoothness),
		Reflectivity: math.Max(0, math.Min(1, reflectivity)),
	}
}

// NewMatte creates a non-reflective material that uses one color for ambient and diffuse
func NewMatte(albedo core.Color) Material {
	return NewPhong(albedo, albedo, core.Gray(0.2), 8, 0)
}

// NewMirror creates a reflective material with a tinted base
func NewMirror(tint core.Color, reflectivity float64) Material {
	return NewPhong(tint, tint, core.White, 64, reflectivity)
}

// Validate reports parameters outside their allowed ranges
func (m Material) Validate() error {
	if m.Smoothness < 0 || math.IsNaN(m.Smoothness) {
		return errors.Wrapf(ErrInvalidMaterial, "smoothness %v must be >= 0", m.Smoothness)
	}
	if m.Reflectivity < 0 || m.Reflectivity > 1 || math.IsNaN(m.Reflectivity) {
		return errors.Wrapf(ErrInvalidMaterial, "reflectivity %v must be within [0, 1]", m.Reflectivity)
	}
	return nil
}
