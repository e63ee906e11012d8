package lights

import (
	"math"

	"pgregory.net/rand"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// Light is a Phong light source. A light with a positive Radius and more than
// one sample is treated as a spherical area light for soft shadows.
type Light struct {
	Position core.Vec3

	Ambient  core.Color
	Diffuse  core.Color
	Specular core.Color

	IncidentIntensity float64
	AmbientIntensity  float64

	// Attenuate enables distance falloff of 1 / (1 + Falloff*d^2)
	Attenuate bool
	Falloff   float64

	Radius  float64
	Samples int
}

// NewPointLight creates a light with a dim grey ambient term and white diffuse and specular terms
func NewPointLight(position core.Vec3) Light {
	return Light{
		Position:          position,
		Ambient:           core.Gray(0.2),
		Diffuse:           core.White,
		Specular:          core.White,
		IncidentIntensity: 1,
		AmbientIntensity:  1,
		Falloff:           0.01,
		Samples:           1,
	}
}

// NewAreaLight creates a spherical light sampled at the given number of points
func NewAreaLight(position core.Vec3, radius float64, samples int) Light {
	l := NewPointLight(position)
	l.Radius = radius
	l.Samples = max(1, samples)
	return l
}

// IsArea reports whether the light needs more than one shadow sample
func (l Light) IsArea() bool {
	return l.Radius > 0 && l.Samples > 1
}

// AttenuationAt returns the intensity scale at squared distance distSq
func (l Light) AttenuationAt(distSq float64) float64 {
	if !l.Attenuate {
		return 1
	}
	return 1 / (1 + math.Max(0, l.Falloff)*distSq)
}

// SamplePoints appends shadow sample positions to dst. Point lights yield
// their position; area lights yield uniformly distributed points in their sphere.
func (l Light) SamplePoints(rng *rand.Rand, dst []core.Vec3) []core.Vec3 {
	if !l.IsArea() {
		return append(dst, l.Position)
	}

	for i := 0; i < l.Samples; i++ {
		u := core.NewVec3(rng.Float64(), rng.Float64(), rng.Float64())
		dst = append(dst, l.Position.Add(core.SamplePointInUnitSphere(u).Multiply(l.Radius)))
	}
	return dst
}
