package geometry

import (
	"github.com/pkg/errors"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// ErrFaceIndex is returned when a face references a vertex that does not exist
var ErrFaceIndex = errors.New("face index out of range")

// Mesh is an indexed triangle list. Every face has exactly one normal,
// computed when the face is added.
type Mesh struct {
	vertices []core.Vec3
	faces    [][3]int
	normals  []core.Vec3
}

// NewMesh creates an empty mesh
func NewMesh() *Mesh {
	return &Mesh{}
}

// AddVertex appends a vertex and returns its index
func (m *Mesh) AddVertex(v core.Vec3) int {
	m.vertices = append(m.vertices, v)
	return len(m.vertices) - 1
}

// AddFace appends a triangle and its normal, normalize((v1-v0) x (v2-v1)).
// Faces are wound counter-clockwise when viewed from the normal side.
func (m *Mesh) AddFace(a, b, c int) (int, error) {
	for _, idx := range [3]int{a, b, c} {
		if idx < 0 || idx >= len(m.vertices) {
			return -1, errors.Wrapf(ErrFaceIndex, "vertex %d of %d", idx, len(m.vertices))
		}
	}

	v0, v1, v2 := m.vertices[a], m.vertices[b], m.vertices[c]
	m.faces = append(m.faces, [3]int{a, b, c})
	m.normals = append(m.normals, v1.Subtract(v0).Cross(v2.Subtract(v1)).Normalize())
	return len(m.faces) - 1, nil
}

// ClearVertices removes every vertex along with the faces that referenced them
func (m *Mesh) ClearVertices() {
	m.vertices = m.vertices[:0]
	m.ClearFaces()
}

// ClearFaces removes every face and normal but keeps the vertices
func (m *Mesh) ClearFaces() {
	m.faces = m.faces[:0]
	m.normals = m.normals[:0]
}

// Vertices returns the vertex list; callers must not modify it
func (m *Mesh) Vertices() []core.Vec3 { return m.vertices }

// Faces returns the face list; callers must not modify it
func (m *Mesh) Faces() [][3]int { return m.faces }

// Normals returns the per-face normals; callers must not modify it
func (m *Mesh) Normals() []core.Vec3 { return m.normals }

// NumFaces returns the number of triangles
func (m *Mesh) NumFaces() int { return len(m.faces) }

// Triangle returns the corner positions of face i
func (m *Mesh) Triangle(i int) (core.Vec3, core.Vec3, core.Vec3) {
	f := m.faces[i]
	return m.vertices[f[0]], m.vertices[f[1]], m.vertices[f[2]]
}

// FaceBounds returns the box around face i
func (m *Mesh) FaceBounds(i int) core.AABB {
	v0, v1, v2 := m.Triangle(i)
	return core.NewAABBFromPoints(v0, v1, v2)
}

// Bounds returns the box around every vertex
func (m *Mesh) Bounds() core.AABB {
	return core.NewAABBFromPoints(m.vertices...)
}

// Transformed returns a copy of the mesh with fn applied to every vertex.
// Normals are recomputed from the new positions.
func (m *Mesh) Transformed(fn func(core.Vec3) core.Vec3) *Mesh {
	out := &Mesh{vertices: make([]core.Vec3, len(m.vertices))}
	for i, v := range m.vertices {
		out.vertices[i] = fn(v)
	}
	for _, f := range m.faces {
		// Indices were validated when the face was first added
		_, _ = out.AddFace(f[0], f[1], f[2])
	}
	return out
}
