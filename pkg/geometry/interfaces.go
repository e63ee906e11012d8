package geometry

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// Object is anything the renderer can trace or march against
type Object interface {
	// RayIntersect returns the nearest hit along origin + t*direction with t in
	// [nearClip, farClip]. originHit, when it names this object, marks the
	// surface the ray starts on so it is not hit again.
	RayIntersect(origin, direction core.Vec3, nearClip, farClip float64, originHit *RayHit) RayHit

	// SignedDistance returns the distance from point to the surface in
	// RayHit.Distance, negative inside.
	SignedDistance(point core.Vec3) RayHit

	Material() material.Material
}

// RayHit describes a ray/object hit or a distance query result
type RayHit struct {
	Hit       bool
	Object    Object // not owned
	Distance  float64
	Point     core.Vec3
	Normal    core.Vec3
	FaceIndex int // -1 unless a mesh face was hit
}

// Miss returns the empty hit
func Miss() RayHit {
	return RayHit{FaceIndex: -1, Distance: math.Inf(1)}
}

// IsOn reports whether the hit lies on obj
func (h *RayHit) IsOn(obj Object) bool {
	return h != nil && h.Hit && h.Object == obj
}

// inRange reports whether t is a usable hit distance. NaN and infinities fail.
func inRange(t, nearClip, farClip float64) bool {
	return t >= 0 && t >= nearClip && t <= farClip && !math.IsInf(t, 0)
}

// pickRoot chooses between the two roots of a quadric. A ray starting on the
// surface (fromSelf) leaves it when the near root dominates, which is a miss;
// otherwise the far root is the opposite wall.
func pickRoot(tSub, tAdd float64, fromSelf bool) (float64, bool) {
	if fromSelf {
		if math.Abs(tSub) > math.Abs(tAdd) {
			return 0, false
		}
		return tAdd, true
	}
	if tSub > 0 {
		return tSub, true
	}
	return tAdd, true
}
