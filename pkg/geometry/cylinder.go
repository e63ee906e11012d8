package geometry

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// Cylinder is an infinite cylinder whose axis runs along Y through Position
type Cylinder struct {
	Position core.Vec3
	Radius   float64
	mat      material.Material
}

// NewCylinder creates a new Y-aligned cylinder
func NewCylinder(position core.Vec3, radius float64, mat material.Material) *Cylinder {
	return &Cylinder{Position: position, Radius: radius, mat: mat}
}

// Material returns the cylinder's surface material
func (c *Cylinder) Material() material.Material {
	return c.mat
}

// RayIntersect solves the circle equation in the XZ plane. Rays parallel to
// the axis never hit.
func (c *Cylinder) RayIntersect(origin, direction core.Vec3, nearClip, farClip float64, originHit *RayHit) RayHit {
	ox := origin.X - c.Position.X
	oz := origin.Z - c.Position.Z

	a := direction.X*direction.X + direction.Z*direction.Z
	if a == 0 {
		return Miss()
	}
	b := 2 * (ox*direction.X + oz*direction.Z)
	cc := ox*ox + oz*oz - c.Radius*c.Radius

	discriminant := b*b - 4*a*cc
	if discriminant < 0 {
		return Miss()
	}

	sqrtD := math.Sqrt(discriminant)
	tSub := (-b - sqrtD) / (2 * a)
	tAdd := (-b + sqrtD) / (2 * a)

	t, ok := pickRoot(tSub, tAdd, originHit.IsOn(c))
	if !ok || !inRange(t, nearClip, farClip) {
		return Miss()
	}

	point := origin.Add(direction.Multiply(t))
	return RayHit{
		Hit:       true,
		Object:    c,
		Distance:  t,
		Point:     point,
		Normal:    c.normalAt(point),
		FaceIndex: -1,
	}
}

// SignedDistance returns the radial distance in XZ minus the radius
func (c *Cylinder) SignedDistance(point core.Vec3) RayHit {
	dx := point.X - c.Position.X
	dz := point.Z - c.Position.Z
	return RayHit{
		Hit:       true,
		Object:    c,
		Distance:  math.Hypot(dx, dz) - c.Radius,
		Point:     point,
		Normal:    c.normalAt(point),
		FaceIndex: -1,
	}
}

func (c *Cylinder) normalAt(point core.Vec3) core.Vec3 {
	return core.NewVec3(point.X-c.Position.X, 0, point.Z-c.Position.Z).Normalize()
}
