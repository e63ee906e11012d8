package scene

import (
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/exp/slices"

	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/lights"
)

// ErrIndexOutOfRange is returned for object or light indices that do not exist
var ErrIndexOutOfRange = errors.New("index out of range")

// Scene is an ordered registry of objects and lights. Writers replace the
// backing slices rather than editing them, so a slice returned by Objects or
// Lights is an immutable snapshot that may be read without locking.
type Scene struct {
	mu      sync.Mutex
	objects []geometry.Object
	lights  []lights.Light
}

// New creates an empty scene
func New() *Scene {
	return &Scene{}
}

// AddObject appends an object and returns its index
func (s *Scene) AddObject(obj geometry.Object) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = append(slices.Clip(s.objects), obj)
	return len(s.objects) - 1
}

// Object returns the object at index i
func (s *Scene) Object(i int) (geometry.Object, error) {
	objects := s.Objects()
	if i < 0 || i >= len(objects) {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "object %d of %d", i, len(objects))
	}
	return objects[i], nil
}

// RemoveObject removes the object at index i; later objects shift down
func (s *Scene) RemoveObject(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.objects) {
		return errors.Wrapf(ErrIndexOutOfRange, "object %d of %d", i, len(s.objects))
	}
	s.objects = slices.Delete(slices.Clone(s.objects), i, i+1)
	return nil
}

// ClearObjects removes every object
func (s *Scene) ClearObjects() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects = nil
}

// Objects returns a read-only snapshot of the objects
func (s *Scene) Objects() []geometry.Object {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clip(s.objects)
}

// AddLight appends a light and returns its index
func (s *Scene) AddLight(light lights.Light) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = append(slices.Clip(s.lights), light)
	return len(s.lights) - 1
}

// Light returns the light at index i
func (s *Scene) Light(i int) (lights.Light, error) {
	all := s.Lights()
	if i < 0 || i >= len(all) {
		return lights.Light{}, errors.Wrapf(ErrIndexOutOfRange, "light %d of %d", i, len(all))
	}
	return all[i], nil
}

// RemoveLight removes the light at index i; later lights shift down
func (s *Scene) RemoveLight(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.lights) {
		return errors.Wrapf(ErrIndexOutOfRange, "light %d of %d", i, len(s.lights))
	}
	s.lights = slices.Delete(slices.Clone(s.lights), i, i+1)
	return nil
}

// ClearLights removes every light
func (s *Scene) ClearLights() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = nil
}

// Lights returns a read-only snapshot of the lights
func (s *Scene) Lights() []lights.Light {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clip(s.lights)
}
