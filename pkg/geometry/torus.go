package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

const (
	torusMaxSteps = 256
	torusHitEps   = 1e-6
)

// Torus lies in its local XZ plane around Center, oriented by Rotation.
// MajorRadius is the distance from the center to the tube center, MinorRadius the tube radius.
type Torus struct {
	Center      core.Vec3
	Rotation    mgl64.Quat
	MajorRadius float64
	MinorRadius float64
	mat         material.Material

	inverse mgl64.Quat
}

// NewTorus creates a torus rotated by Euler angles (radians, XYZ order)
func NewTorus(center, angles core.Vec3, major, minor float64, mat material.Material) *Torus {
	rotation := mgl64.AnglesToQuat(angles.X, angles.Y, angles.Z, mgl64.XYZ)
	return &Torus{
		Center:      center,
		Rotation:    rotation,
		MajorRadius: major,
		MinorRadius: minor,
		mat:         mat,
		inverse:     rotation.Inverse(),
	}
}

// Material returns the torus' surface material
func (t *Torus) Material() material.Material {
	return t.mat
}

func (t *Torus) toLocal(p core.Vec3) mgl64.Vec3 {
	d := p.Subtract(t.Center)
	return t.inverse.Rotate(mgl64.Vec3{d.X, d.Y, d.Z})
}

func (t *Torus) distanceLocal(p mgl64.Vec3) float64 {
	ring := math.Hypot(p[0], p[2]) - t.MajorRadius
	return math.Hypot(ring, p[1]) - t.MinorRadius
}

func (t *Torus) normalLocal(p mgl64.Vec3) core.Vec3 {
	ringLen := math.Hypot(p[0], p[2])
	var ring mgl64.Vec3
	if ringLen > 0 {
		ring = mgl64.Vec3{p[0] / ringLen * t.MajorRadius, 0, p[2] / ringLen * t.MajorRadius}
	}
	n := t.Rotation.Rotate(p.Sub(ring))
	return core.NewVec3(n[0], n[1], n[2]).Normalize()
}

// SignedDistance evaluates the torus distance field in the local frame
func (t *Torus) SignedDistance(point core.Vec3) RayHit {
	local := t.toLocal(point)
	return RayHit{
		Hit:       true,
		Object:    t,
		Distance:  t.distanceLocal(local),
		Point:     point,
		Normal:    t.normalLocal(local),
		FaceIndex: -1,
	}
}

// RayIntersect sphere traces the distance field inside the torus' bounding sphere
func (t *Torus) RayIntersect(origin, direction core.Vec3, nearClip, farClip float64, originHit *RayHit) RayHit {
	length := direction.Length()
	if length == 0 {
		return Miss()
	}
	dir := direction.Divide(length)

	// Clip the march to the bounding sphere
	bound := t.MajorRadius + t.MinorRadius
	oc := origin.Subtract(t.Center)
	b := oc.Dot(dir)
	c := oc.Dot(oc) - bound*bound
	discriminant := b*b - c
	if discriminant < 0 {
		return Miss()
	}
	sqrtD := math.Sqrt(discriminant)
	start := math.Max(-b-sqrtD, nearClip*length)
	start = math.Max(start, 0)
	end := math.Min(-b+sqrtD, farClip*length)

	s := start
	if originHit.IsOn(t) {
		// Step off the surface the ray starts on
		for i := 0; i < torusMaxSteps && s < end; i++ {
			if math.Abs(t.distanceLocal(t.toLocal(origin.Add(dir.Multiply(s))))) >= 4*torusHitEps {
				break
			}
			s += 4 * torusHitEps
		}
	}

	for i := 0; i < torusMaxSteps && s <= end; i++ {
		p := origin.Add(dir.Multiply(s))
		local := t.toLocal(p)
		d := math.Abs(t.distanceLocal(local))
		if d < torusHitEps {
			dist := s / length
			if !inRange(dist, nearClip, farClip) {
				return Miss()
			}
			return RayHit{
				Hit:       true,
				Object:    t,
				Distance:  dist,
				Point:     p,
				Normal:    t.normalLocal(local),
				FaceIndex: -1,
			}
		}
		s += d
	}
	return Miss()
}
