package scene

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/df07/go-whitted-raytracer/pkg/geometry"
)

var (
	// ErrUnknownScene is returned by Build for an unregistered scene id
	ErrUnknownScene = errors.New("unknown scene")

	// ErrMeshRequired is returned when a mesh scene is built without a mesh
	ErrMeshRequired = errors.New("scene requires a mesh")
)

// SceneInfo describes a built-in scene
type SceneInfo struct {
	ID          string
	DisplayName string
	Description string
	NeedsMesh   bool
	Marching    bool // composed of implicit surfaces, best viewed ray marched
}

var builtins = map[string]SceneInfo{
	"default":    {ID: "default", DisplayName: "Default", Description: "Spheres on a ground plane with a mirror sphere"},
	"march":      {ID: "march", DisplayName: "Implicit Surfaces", Description: "Torus, cylinder and sphere", Marching: true},
	"mesh":       {ID: "mesh", DisplayName: "Mesh", Description: "An imported mesh on a ground plane", NeedsMesh: true},
	"spheregrid": {ID: "spheregrid", DisplayName: "Sphere Grid", Description: "5x5 spheres of increasing reflectivity"},
}

// ListScenes returns the built-in scenes sorted by id
func ListScenes() []SceneInfo {
	scenes := make([]SceneInfo, 0, len(builtins))
	for _, info := range builtins {
		scenes = append(scenes, info)
	}
	sort.Slice(scenes, func(i, j int) bool {
		return scenes[i].ID < scenes[j].ID
	})
	return scenes
}

// Lookup returns the description of a built-in scene
func Lookup(id string) (SceneInfo, bool) {
	info, ok := builtins[id]
	return info, ok
}

// Build creates the built-in scene with the given id. mesh is only used by scenes that need one.
func Build(id string, mesh *geometry.Mesh) (Preset, error) {
	switch id {
	case "default":
		return NewDefaultScene(), nil
	case "march":
		return NewMarchScene(), nil
	case "spheregrid":
		return NewSphereGridScene(5), nil
	case "mesh":
		if mesh == nil {
			return Preset{}, errors.Wrapf(ErrMeshRequired, "scene %q", id)
		}
		return NewMeshScene(mesh), nil
	}
	return Preset{}, errors.Wrapf(ErrUnknownScene, "%q", id)
}
