package scene

import (
	"math"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/lights"
	"github.com/df07/go-whitted-raytracer/pkg/material"
)

// Viewpoint is a suggested look-at camera for a built-in scene
type Viewpoint struct {
	Position core.Vec3
	LookAt   core.Vec3
	Up       core.Vec3
	FOV      float64 // horizontal, degrees
}

// Preset is a built-in scene together with the view it was composed for
type Preset struct {
	Scene *Scene
	View  Viewpoint
}

// ground returns a slightly reflective grey floor at y = 0
func ground() *geometry.Plane {
	floor := material.NewPhong(core.Gray(0.4), core.Gray(0.6), core.Gray(0.1), 4, 0.15)
	return geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0), floor)
}

// NewDefaultScene creates a ground plane, a matte red sphere, a mirror sphere and a
// blue sphere lit by one point light and one soft area light
func NewDefaultScene() Preset {
	s := New()

	red := material.NewPhong(core.NewColor(0.8, 0.1, 0.1), core.NewColor(0.9, 0.1, 0.1), core.White, 32, 0)
	blue := material.NewPhong(core.NewColor(0.1, 0.2, 0.6), core.NewColor(0.2, 0.3, 0.9), core.Gray(0.5), 16, 0.1)
	mirror := material.NewMirror(core.Gray(0.2), 0.8)

	s.AddObject(ground())
	s.AddObject(geometry.NewSphere(core.NewVec3(0, 1, -4), 1, red))
	s.AddObject(geometry.NewSphere(core.NewVec3(2.2, 1, -5), 1, mirror))
	s.AddObject(geometry.NewSphere(core.NewVec3(-2.2, 0.7, -3.5), 0.7, blue))

	key := lights.NewPointLight(core.NewVec3(5, 8, 2))
	key.IncidentIntensity = 0.8
	s.AddLight(key)

	fill := lights.NewAreaLight(core.NewVec3(-6, 6, 0), 0.5, 8)
	fill.Ambient = core.Gray(0.05)
	fill.IncidentIntensity = 0.4
	s.AddLight(fill)

	return Preset{
		Scene: s,
		View: Viewpoint{
			Position: core.NewVec3(0, 2, 4),
			LookAt:   core.NewVec3(0, 1, -4),
			Up:       core.NewVec3(0, 1, 0),
			FOV:      60,
		},
	}
}

// NewMarchScene creates a scene of implicit surfaces suited to ray marching
func NewMarchScene() Preset {
	s := New()

	gold := material.NewPhong(core.NewColor(0.6, 0.45, 0.1), core.NewColor(0.9, 0.7, 0.2), core.White, 48, 0.3)
	teal := material.NewPhong(core.NewColor(0.05, 0.3, 0.3), core.NewColor(0.1, 0.6, 0.6), core.Gray(0.6), 24, 0)
	pearl := material.NewPhong(core.Gray(0.6), core.Gray(0.9), core.White, 64, 0.2)

	s.AddObject(ground())
	s.AddObject(geometry.NewTorus(core.NewVec3(0, 1.2, -5), core.NewVec3(math.Pi/3, 0, 0), 1.1, 0.35, gold))
	s.AddObject(geometry.NewCylinder(core.NewVec3(3, 0, -7), 0.6, teal))
	s.AddObject(geometry.NewSphere(core.NewVec3(-2.5, 1, -5), 1, pearl))
	s.AddLight(lights.NewPointLight(core.NewVec3(4, 7, 0)))

	return Preset{
		Scene: s,
		View: Viewpoint{
			Position: core.NewVec3(0, 2.5, 3),
			LookAt:   core.NewVec3(0, 1, -5),
			Up:       core.NewVec3(0, 1, 0),
			FOV:      60,
		},
	}
}

// NewMeshScene places mesh on the ground plane, scaled to a height of two units
func NewMeshScene(mesh *geometry.Mesh) Preset {
	s := New()
	s.AddObject(ground())

	bounds := mesh.Bounds()
	size := bounds.Size()
	extent := math.Max(size.X, math.Max(size.Y, size.Z))
	scale := 1.0
	if extent > 0 {
		scale = 2 / extent
	}
	// Scale about the origin, then move the base of the bounds to (0, 0, -4)
	base := core.NewVec3(bounds.Centroid().X, bounds.Min.Y, bounds.Centroid().Z).Multiply(scale)
	offset := core.NewVec3(0, 0, -4).Subtract(base)

	clay := material.NewPhong(core.NewColor(0.5, 0.4, 0.35), core.NewColor(0.8, 0.65, 0.55), core.Gray(0.4), 16, 0)
	s.AddObject(geometry.NewTriangleMesh(mesh, clay, &geometry.MeshOptions{Scale: scale, Translate: &offset}))

	s.AddLight(lights.NewPointLight(core.NewVec3(4, 6, 2)))
	back := lights.NewPointLight(core.NewVec3(-4, 3, -8))
	back.Ambient = core.Color{}
	back.IncidentIntensity = 0.5
	s.AddLight(back)

	return Preset{
		Scene: s,
		View: Viewpoint{
			Position: core.NewVec3(0, 2, 1),
			LookAt:   core.NewVec3(0, 1, -4),
			Up:       core.NewVec3(0, 1, 0),
			FOV:      50,
		},
	}
}

// NewSphereGridScene creates a grid of spheres whose reflectivity rises left to right
func NewSphereGridScene(size int) Preset {
	s := New()
	s.AddObject(ground())

	for row := 0; row < size; row++ {
		for col := 0; col < size; col++ {
			reflectivity := float64(col) / float64(max(1, size-1))
			hue := float64(row) / float64(max(1, size-1))
			albedo := core.NewColor(1-hue, 0.3, hue)
			mat := material.NewPhong(albedo.Scale(0.5), albedo, core.White, 32, reflectivity*0.9)

			x := (float64(col) - float64(size-1)/2) * 1.2
			z := -3 - float64(row)*1.2
			s.AddObject(geometry.NewSphere(core.NewVec3(x, 0.5, z), 0.5, mat))
		}
	}
	s.AddLight(lights.NewPointLight(core.NewVec3(0, 10, 0)))

	return Preset{
		Scene: s,
		View: Viewpoint{
			Position: core.NewVec3(0, 4, 3),
			LookAt:   core.NewVec3(0, 0, -3-float64(size-1)*0.6),
			Up:       core.NewVec3(0, 1, 0),
			FOV:      70,
		},
	}
}
