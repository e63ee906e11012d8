package geometry

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center core.Vec3
	Radius float64
	mat    material.Material
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, mat material.Material) *Sphere {
	return &Sphere{Center: center, Radius: radius, mat: mat}
}

// Material returns the sphere's surface material
func (s *Sphere) Material() material.Material {
	return s.mat
}

// RayIntersect solves |o + t*d - c|^2 = r^2 for the nearest valid t
func (s *Sphere) RayIntersect(origin, direction core.Vec3, nearClip, farClip float64, originHit *RayHit) RayHit {
	oc := origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + bt + c = 0
	a := direction.Dot(direction)
	b := 2 * oc.Dot(direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := b*b - 4*a*c
	if discriminant < 0 || a == 0 {
		return Miss()
	}

	sqrtD := math.Sqrt(discriminant)
	tSub := (-b - sqrtD) / (2 * a)
	tAdd := (-b + sqrtD) / (2 * a)

	t, ok := pickRoot(tSub, tAdd, originHit.IsOn(s))
	if !ok || !inRange(t, nearClip, farClip) {
		return Miss()
	}

	point := origin.Add(direction.Multiply(t))
	return RayHit{
		Hit:       true,
		Object:    s,
		Distance:  t,
		Point:     point,
		Normal:    point.Subtract(s.Center).Normalize(),
		FaceIndex: -1,
	}
}

// SignedDistance returns |p - c| - r
func (s *Sphere) SignedDistance(point core.Vec3) RayHit {
	offset := point.Subtract(s.Center)
	return RayHit{
		Hit:       true,
		Object:    s,
		Distance:  offset.Length() - s.Radius,
		Point:     point,
		Normal:    offset.Normalize(),
		FaceIndex: -1,
	}
}

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s *Sphere) BoundingBox() core.AABB {
	radius := core.NewVec3(s.Radius, s.Radius, s.Radius)
	return core.NewAABB(s.Center.Subtract(radius), s.Center.Add(radius))
}
