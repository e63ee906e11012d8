package loaders

import (
	"time"

	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"golang.org/x/exp/slog"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
)

// ErrGLTFFormat is returned when a document holds no usable triangles
var ErrGLTFFormat = errors.New("invalid glTF data")

// LoadGLTF loads every triangle primitive of a .gltf or .glb file into one mesh.
// Node transforms are not applied; primitives keep their mesh-local coordinates.
func LoadGLTF(filename string) (*geometry.Mesh, error) {
	startTime := time.Now()

	doc, err := gltf.Open(filename)
	if err != nil {
		return nil, errors.Wrap(err, "open glTF file")
	}

	mesh, err := MeshFromGLTF(doc)
	if err != nil {
		return nil, errors.Wrapf(err, "read %s", filename)
	}

	slog.Debug("loaded glTF mesh",
		"file", filename,
		"meshes", len(doc.Meshes),
		"vertices", len(mesh.Vertices()),
		"faces", mesh.NumFaces(),
		"elapsed", time.Since(startTime))
	return mesh, nil
}

// MeshFromGLTF merges the triangle primitives of a decoded document.
// Points and lines are skipped; unindexed primitives use consecutive vertices.
func MeshFromGLTF(doc *gltf.Document) (*geometry.Mesh, error) {
	mesh := geometry.NewMesh()
	var positions [][3]float32
	var indices []uint32

	for m, gm := range doc.Meshes {
		for p, prim := range gm.Primitives {
			if prim.Mode != gltf.PrimitiveTriangles {
				continue
			}
			posIdx, ok := prim.Attributes[gltf.POSITION]
			if !ok || posIdx >= len(doc.Accessors) {
				continue
			}

			var err error
			positions, err = modeler.ReadPosition(doc, doc.Accessors[posIdx], positions[:0])
			if err != nil {
				return nil, errors.Wrapf(err, "mesh %d primitive %d positions", m, p)
			}

			indices = indices[:0]
			if prim.Indices != nil {
				if *prim.Indices >= len(doc.Accessors) {
					return nil, errors.Wrapf(ErrGLTFFormat, "mesh %d primitive %d: index accessor %d missing", m, p, *prim.Indices)
				}
				indices, err = modeler.ReadIndices(doc, doc.Accessors[*prim.Indices], indices)
				if err != nil {
					return nil, errors.Wrapf(err, "mesh %d primitive %d indices", m, p)
				}
			} else {
				for i := range positions {
					indices = append(indices, uint32(i))
				}
			}

			base := len(mesh.Vertices())
			for _, pos := range positions {
				mesh.AddVertex(core.NewVec3(float64(pos[0]), float64(pos[1]), float64(pos[2])))
			}
			for i := 0; i+2 < len(indices); i += 3 {
				a, b, c := base+int(indices[i]), base+int(indices[i+1]), base+int(indices[i+2])
				if _, err := mesh.AddFace(a, b, c); err != nil {
					return nil, errors.Wrapf(err, "mesh %d primitive %d triangle %d", m, p, i/3)
				}
			}
		}
	}

	if mesh.NumFaces() == 0 {
		return nil, errors.Wrap(ErrGLTFFormat, "no triangle primitives")
	}
	return mesh, nil
}
