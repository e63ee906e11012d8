package loaders

import (
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/df07/go-whitted-raytracer/pkg/geometry"
)

// ErrUnknownFormat is returned for a file extension no importer handles
var ErrUnknownFormat = errors.New("unknown mesh format")

// LoadMesh picks an importer by file extension: .obj, .ply, .gltf or .glb
func LoadMesh(filename string) (*geometry.Mesh, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".obj":
		return LoadOBJ(filename)
	case ".ply":
		return LoadPLY(filename)
	case ".gltf", ".glb":
		return LoadGLTF(filename)
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%s", filename)
	}
}
