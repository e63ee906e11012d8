package geometry

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// facePadding keeps axis-aligned faces from producing zero-thickness boxes
const facePadding = 1e-6

// MeshOptions contains optional parameters for mesh object creation
type MeshOptions struct {
	Rotation   *core.Vec3 // Optional Euler rotation (radians, XYZ order)
	Center     *core.Vec3 // Optional center point for rotation
	Translate  *core.Vec3 // Optional offset applied after rotation
	Scale      float64    // Optional uniform scale applied first; 0 means 1
	DisableBVH bool       // Test every face; used to verify the hierarchy
}

// TriangleMesh is a mesh placed in the scene. It holds its own copy of the
// mesh data and a BVH over the face boxes.
type TriangleMesh struct {
	mesh *Mesh
	bvh  *core.BVH[int]
	mat  material.Material
}

// NewTriangleMesh creates a mesh object. The mesh is copied, so later edits
// to it require a new TriangleMesh.
func NewTriangleMesh(mesh *Mesh, mat material.Material, options *MeshOptions) *TriangleMesh {
	transform := meshTransform(options)
	tm := &TriangleMesh{mesh: mesh.Transformed(transform), mat: mat}

	if options == nil || !options.DisableBVH {
		prims := make([]core.Primitive[int], tm.mesh.NumFaces())
		for i := range prims {
			prims[i] = core.Primitive[int]{Box: tm.mesh.FaceBounds(i).Expand(facePadding), Item: i}
		}
		tm.bvh = core.NewBVH(prims)
	}
	return tm
}

func meshTransform(options *MeshOptions) func(core.Vec3) core.Vec3 {
	if options == nil {
		return func(v core.Vec3) core.Vec3 { return v }
	}

	scale := options.Scale
	if scale == 0 {
		scale = 1
	}
	rotation := mgl64.QuatIdent()
	if options.Rotation != nil {
		rotation = mgl64.AnglesToQuat(options.Rotation.X, options.Rotation.Y, options.Rotation.Z, mgl64.XYZ)
	}
	var center, offset core.Vec3
	if options.Center != nil {
		center = *options.Center
	}
	if options.Translate != nil {
		offset = *options.Translate
	}

	return func(v core.Vec3) core.Vec3 {
		v = v.Multiply(scale).Subtract(center)
		r := rotation.Rotate(mgl64.Vec3{v.X, v.Y, v.Z})
		return core.NewVec3(r[0], r[1], r[2]).Add(center).Add(offset)
	}
}

// Mesh returns the placed mesh data
func (tm *TriangleMesh) Mesh() *Mesh {
	return tm.mesh
}

// Material returns the mesh's surface material
func (tm *TriangleMesh) Material() material.Material {
	return tm.mat
}

// BoundingBox returns the box around every face
func (tm *TriangleMesh) BoundingBox() core.AABB {
	return tm.mesh.Bounds()
}

// BVHStats reports the shape of the face hierarchy
func (tm *TriangleMesh) BVHStats() core.BVHStats {
	if tm.bvh == nil {
		return core.BVHStats{}
	}
	return tm.bvh.Stats()
}

// RayIntersect returns the nearest face hit with t in (nearClip, farClip).
// When the ray starts on one of this mesh's faces that face is skipped.
func (tm *TriangleMesh) RayIntersect(origin, direction core.Vec3, nearClip, farClip float64, originHit *RayHit) RayHit {
	skip := -1
	if originHit.IsOn(tm) {
		skip = originHit.FaceIndex
	}

	best := Miss()
	bestT := farClip
	test := func(face int) {
		if face == skip {
			return
		}
		if t, ok := tm.intersectFace(face, origin, direction, nearClip, bestT); ok {
			bestT = t
			best = RayHit{
				Hit:       true,
				Object:    tm,
				Distance:  t,
				Point:     origin.Add(direction.Multiply(t)),
				Normal:    tm.mesh.normals[face],
				FaceIndex: face,
			}
		}
	}

	if tm.bvh == nil {
		for face := range tm.mesh.faces {
			test(face)
		}
		return best
	}

	var buf [32]int
	for _, face := range tm.bvh.Candidates(origin, direction, math.Max(0, nearClip), farClip, buf[:0]) {
		test(face)
	}
	return best
}

// intersectFace intersects the face's plane and keeps the point only if it
// lies on the inner side of all three edges
func (tm *TriangleMesh) intersectFace(face int, origin, direction core.Vec3, nearClip, farClip float64) (float64, bool) {
	n := tm.mesh.normals[face]
	denom := n.Dot(direction)
	if denom == 0 {
		return 0, false
	}

	v0, v1, v2 := tm.mesh.Triangle(face)
	t := n.Dot(v0.Subtract(origin)) / denom
	if !(t > nearClip && t < farClip) || t < 0 {
		return 0, false
	}

	p := origin.Add(direction.Multiply(t))
	corners := [3]core.Vec3{v0, v1, v2}
	for i := 0; i < 3; i++ {
		a, b := corners[i], corners[(i+1)%3]
		if b.Subtract(a).Cross(p.Subtract(a)).Dot(n) < 0 {
			return 0, false
		}
	}
	return t, true
}

// SignedDistance returns the distance to the nearest face, negative behind
// that face's normal
func (tm *TriangleMesh) SignedDistance(point core.Vec3) RayHit {
	result := Miss()
	bestSq := math.Inf(1)
	var bestClosest core.Vec3

	for face := range tm.mesh.faces {
		v0, v1, v2 := tm.mesh.Triangle(face)
		closest := closestPointOnTriangle(point, v0, v1, v2)
		if d := point.Subtract(closest).LengthSquared(); d < bestSq {
			bestSq = d
			bestClosest = closest
			result.FaceIndex = face
		}
	}
	if result.FaceIndex < 0 {
		return result
	}

	n := tm.mesh.normals[result.FaceIndex]
	dist := math.Sqrt(bestSq)
	if point.Subtract(bestClosest).Dot(n) < 0 {
		dist = -dist
	}
	result.Hit = true
	result.Object = tm
	result.Distance = dist
	result.Point = point
	result.Normal = n
	return result
}

// closestPointOnTriangle finds the point of triangle abc nearest p by
// classifying p against the triangle's vertex, edge and face regions
func closestPointOnTriangle(p, a, b, c core.Vec3) core.Vec3 {
	ab := b.Subtract(a)
	ac := c.Subtract(a)
	ap := p.Subtract(a)
	d1 := ab.Dot(ap)
	d2 := ac.Dot(ap)
	if d1 <= 0 && d2 <= 0 {
		return a
	}

	bp := p.Subtract(b)
	d3 := ab.Dot(bp)
	d4 := ac.Dot(bp)
	if d3 >= 0 && d4 <= d3 {
		return b
	}

	vc := d1*d4 - d3*d2
	if vc <= 0 && d1 >= 0 && d3 <= 0 {
		return a.Add(ab.Multiply(d1 / (d1 - d3)))
	}

	cp := p.Subtract(c)
	d5 := ab.Dot(cp)
	d6 := ac.Dot(cp)
	if d6 >= 0 && d5 <= d6 {
		return c
	}

	vb := d5*d2 - d1*d6
	if vb <= 0 && d2 >= 0 && d6 <= 0 {
		return a.Add(ac.Multiply(d2 / (d2 - d6)))
	}

	va := d3*d6 - d5*d4
	if va <= 0 && d4-d3 >= 0 && d5-d6 >= 0 {
		return b.Add(c.Subtract(b).Multiply((d4 - d3) / ((d4 - d3) + (d5 - d6))))
	}

	denom := va + vb + vc
	if denom == 0 {
		return a
	}
	v := vb / denom
	w := vc / denom
	return a.Add(ab.Multiply(v)).Add(ac.Multiply(w))
}
