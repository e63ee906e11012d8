package geometry

import (
	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// Plane is an infinite plane through Point with unit Normal
type Plane struct {
	Point  core.Vec3
	Normal core.Vec3
	mat    material.Material
}

// NewPlane creates a plane; the normal is normalized
func NewPlane(point, normal core.Vec3, mat material.Material) *Plane {
	return &Plane{Point: point, Normal: normal.Normalize(), mat: mat}
}

// Material returns the plane's surface material
func (p *Plane) Material() material.Material {
	return p.mat
}

// RayIntersect returns the single crossing of the plane. A ray that starts on
// this plane never hits it again.
func (p *Plane) RayIntersect(origin, direction core.Vec3, nearClip, farClip float64, originHit *RayHit) RayHit {
	if originHit.IsOn(p) {
		return Miss()
	}

	denom := direction.Dot(p.Normal)
	if denom == 0 {
		return Miss()
	}

	t := p.Point.Subtract(origin).Dot(p.Normal) / denom
	if !inRange(t, nearClip, farClip) {
		return Miss()
	}

	return RayHit{
		Hit:       true,
		Object:    p,
		Distance:  t,
		Point:     origin.Add(direction.Multiply(t)),
		Normal:    p.Normal,
		FaceIndex: -1,
	}
}

// SignedDistance returns (q - point)·n, positive on the normal side
func (p *Plane) SignedDistance(point core.Vec3) RayHit {
	return RayHit{
		Hit:       true,
		Object:    p,
		Distance:  point.Subtract(p.Point).Dot(p.Normal),
		Point:     point,
		Normal:    p.Normal,
		FaceIndex: -1,
	}
}
