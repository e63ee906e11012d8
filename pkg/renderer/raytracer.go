package renderer

import (
	"math"

	"pgregory.net/rand"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/lights"
	"github.com/df07/go-whitted-raytracer/pkg/shading"
)

// Mode selects how rays find surfaces
type Mode int

const (
	// ModeRayTrace intersects every object analytically
	ModeRayTrace Mode = iota
	// ModeRayMarch sphere traces the objects' signed distance fields
	ModeRayMarch
)

func (m Mode) String() string {
	switch m {
	case ModeRayTrace:
		return "raytrace"
	case ModeRayMarch:
		return "raymarch"
	}
	return "unknown"
}

// ParseMode converts a mode name to a Mode
func ParseMode(name string) (Mode, bool) {
	switch name {
	case "raytrace", "trace":
		return ModeRayTrace, true
	case "raymarch", "march":
		return ModeRayMarch, true
	}
	return 0, false
}

// Ray marching parameters
const (
	marchMaxIterations = 100
	marchHitDistance   = 0.01
	marchNormalEpsilon = 0.01
)

// Raytracer computes colors and hits against a fixed set of objects and
// lights. It is not safe for concurrent use; each worker owns one.
type Raytracer struct {
	mode       Mode
	objects    []geometry.Object
	lights     []lights.Light
	maxBounces int
	far        float64
	background core.Color

	random  *rand.Rand
	samples []core.Vec3
	stats   TraceStats
}

// RaytracerConfig holds the immutable inputs of a Raytracer
type RaytracerConfig struct {
	Mode       Mode
	Objects    []geometry.Object
	Lights     []lights.Light
	MaxBounces int
	Far        float64 // far clip for reflection rays; 0 means unbounded
	Background core.Color
	Seed       uint64
}

// NewRaytracer creates a raytracer over a snapshot of objects and lights
func NewRaytracer(cfg RaytracerConfig) *Raytracer {
	far := cfg.Far
	if far <= 0 {
		far = math.Inf(1)
	}
	return &Raytracer{
		mode:       cfg.Mode,
		objects:    cfg.Objects,
		lights:     cfg.Lights,
		maxBounces: cfg.MaxBounces,
		far:        far,
		background: cfg.Background,
		random:     rand.New(cfg.Seed),
	}
}

// Stats returns the ray counts accumulated so far
func (rt *Raytracer) Stats() TraceStats {
	return rt.stats
}

// TraceHit returns the nearest surface along the ray in the active mode
func (rt *Raytracer) TraceHit(origin, direction core.Vec3, nearClip, farClip float64, originHit *geometry.RayHit) geometry.RayHit {
	if rt.mode == ModeRayMarch {
		return rt.rayMarch(origin, direction, nearClip, farClip, originHit)
	}
	return rt.rayTrace(origin, direction, nearClip, farClip, originHit)
}

// TraceColor shades the ray. bounce is the number of reflections already taken.
func (rt *Raytracer) TraceColor(origin, direction core.Vec3, nearClip, farClip float64, bounce int, originHit *geometry.RayHit) core.Color {
	if bounce == 0 {
		rt.stats.PrimaryRays++
	} else {
		rt.stats.ReflectionRays++
	}
	if int64(bounce) > rt.stats.MaxDepth {
		rt.stats.MaxDepth = int64(bounce)
	}

	direction = direction.Normalize()
	hit := rt.TraceHit(origin, direction, nearClip, farClip, originHit)
	if !hit.Hit {
		return rt.background
	}
	return rt.pixelColor(direction, hit, bounce)
}

func (rt *Raytracer) rayTrace(origin, direction core.Vec3, nearClip, farClip float64, originHit *geometry.RayHit) geometry.RayHit {
	nearest := geometry.Miss()
	for _, obj := range rt.objects {
		hit := obj.RayIntersect(origin, direction, nearClip, farClip, originHit)
		if hit.Hit && hit.Distance < nearest.Distance {
			nearest = hit
		}
	}
	return nearest
}

// rayMarch sphere traces from origin. The distance reported is the distance
// travelled. On the first step, objects closer than nearClip are ignored; the
// object the ray starts on is ignored until the ray has left its surface.
func (rt *Raytracer) rayMarch(origin, direction core.Vec3, nearClip, farClip float64, originHit *geometry.RayHit) geometry.RayHit {
	direction = direction.Normalize()
	var leaving geometry.Object
	if originHit != nil && originHit.Hit {
		leaving = originHit.Object
	}

	travelled := 0.0
	for i := 0; i < marchMaxIterations && travelled <= farClip; i++ {
		point := origin.Add(direction.Multiply(travelled))

		step := math.Inf(1)
		var closest geometry.Object
		for _, obj := range rt.objects {
			d := math.Abs(obj.SignedDistance(point).Distance)
			if i == 0 && d < nearClip {
				continue
			}
			if obj == leaving {
				if d < marchHitDistance {
					// Still on the starting surface: crawl off it
					step = math.Min(step, 2*marchHitDistance)
					continue
				}
				leaving = nil
			}
			if d < step {
				step = d
				closest = obj
			}
		}

		if math.IsInf(step, 1) {
			return geometry.Miss()
		}
		if closest != nil && step < marchHitDistance {
			return geometry.RayHit{
				Hit:       true,
				Object:    closest,
				Distance:  travelled,
				Point:     point,
				Normal:    estimateNormal(closest, point),
				FaceIndex: -1,
			}
		}
		travelled += step
	}
	return geometry.Miss()
}

// estimateNormal takes central differences of obj's distance field
func estimateNormal(obj geometry.Object, p core.Vec3) core.Vec3 {
	sample := func(dx, dy, dz float64) float64 {
		return obj.SignedDistance(p.Add(core.NewVec3(dx, dy, dz))).Distance
	}
	e := marchNormalEpsilon
	return core.NewVec3(
		sample(e, 0, 0)-sample(-e, 0, 0),
		sample(0, e, 0)-sample(0, -e, 0),
		sample(0, 0, e)-sample(0, 0, -e),
	).Normalize()
}

// pixelColor applies Phong shading for every light and blends in the mirror bounce
func (rt *Raytracer) pixelColor(direction core.Vec3, hit geometry.RayHit, bounce int) core.Color {
	mat := hit.Object.Material()
	normal := hit.Normal
	if normal.Dot(direction) > 0 {
		// Shade the side the ray arrived on
		normal = normal.Negate()
	}

	local := core.Black
	specular := core.Black
	for _, light := range rt.lights {
		local = local.Add(shading.Ambient(light, mat))

		visibility := rt.Visibility(hit, light)
		if visibility == 0 {
			continue
		}

		offset := light.Position.Subtract(hit.Point)
		toLight := offset.Normalize()
		scale := visibility * light.AttenuationAt(offset.LengthSquared())
		local = local.Add(shading.Diffuse(light, mat, normal, toLight).Scale(scale))
		specular = specular.Add(shading.Specular(light, mat, normal, toLight, direction).Scale(scale))
	}

	r := mat.Reflectivity
	reflected := core.Black
	if r > 0 {
		reflected = rt.bounceRay(direction, normal, hit, bounce)
	}
	return local.Scale(1 - r).Add(reflected.Scale(r)).Add(specular)
}

// bounceRay traces the mirror reflection, or returns black once the bounce
// budget is spent
func (rt *Raytracer) bounceRay(direction, normal core.Vec3, hit geometry.RayHit, bounce int) core.Color {
	if bounce >= rt.maxBounces {
		return core.Black
	}
	reflected := direction.Reflect(normal)
	return rt.TraceColor(hit.Point, reflected, 0, rt.far, bounce+1, &hit)
}

// IsShadow reports whether something lies between the hit and lightPos
func (rt *Raytracer) IsShadow(hit geometry.RayHit, lightPos core.Vec3) bool {
	rt.stats.ShadowRays++
	offset := lightPos.Subtract(hit.Point)
	blocker := rt.TraceHit(hit.Point, offset.Normalize(), 0, math.Inf(1), &hit)
	return blocker.Hit && blocker.Distance*blocker.Distance < offset.LengthSquared()
}

// Visibility returns the fraction of the light's samples that reach the hit
func (rt *Raytracer) Visibility(hit geometry.RayHit, light lights.Light) float64 {
	if !light.IsArea() {
		if rt.IsShadow(hit, light.Position) {
			return 0
		}
		return 1
	}

	rt.samples = light.SamplePoints(rt.random, rt.samples[:0])
	lit := 0
	for _, p := range rt.samples {
		if !rt.IsShadow(hit, p) {
			lit++
		}
	}
	return float64(lit) / float64(len(rt.samples))
}
