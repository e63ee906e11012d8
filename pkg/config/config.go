// Package config loads render settings from YAML. It holds settings only;
// scenes are always built in code.
package config

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// ErrInvalidConfig is wrapped by every validation failure
var ErrInvalidConfig = errors.New("invalid config")

// Vec is a YAML friendly three component vector, written as [x, y, z]
type Vec [3]float64

// Vec3 converts to the core vector type
func (v Vec) Vec3() core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

// Camera overrides the scene's suggested view. Nil vectors and a zero FOV
// fall back to the scene.
type Camera struct {
	Position *Vec    `yaml:"position,omitempty"`
	LookAt   *Vec    `yaml:"lookAt,omitempty"`
	Up       *Vec    `yaml:"up,omitempty"`
	FOV      float64 `yaml:"fov,omitempty"`
	Near     float64 `yaml:"near"`
	Far      float64 `yaml:"far"`
}

// Config holds everything needed to render one image
type Config struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Mode       string `yaml:"mode"`
	MaxBounces int    `yaml:"maxBounces"`
	Workers    int    `yaml:"workers"` // 0 uses one worker per CPU
	Scene      string `yaml:"scene"`
	Mesh       string `yaml:"mesh,omitempty"`
	Output     string `yaml:"output"`
	Background Vec    `yaml:"background"`
	Camera     Camera `yaml:"camera"`
}

// Default returns settings for a small ray traced render of the default scene
func Default() Config {
	return Config{
		Width:      400,
		Height:     300,
		Mode:       "raytrace",
		MaxBounces: 3,
		Scene:      "default",
		Output:     "render.png",
		Camera: Camera{
			Near: 1,
			Far:  100,
		},
	}
}

// Load reads a YAML file over the defaults
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrap(err, "read config")
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && err != io.EOF {
		return Config{}, errors.Wrap(err, "decode YAML")
	}
	return cfg, nil
}

// Save writes the settings as YAML
func (c Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.Wrap(err, "encode YAML")
	}
	return errors.Wrap(os.WriteFile(path, data, 0o644), "write config")
}

// Validate reports the first invalid field
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return errors.Wrapf(ErrInvalidConfig, "size %dx%d", c.Width, c.Height)
	}
	if _, ok := renderer.ParseMode(c.Mode); !ok {
		return errors.Wrapf(ErrInvalidConfig, "mode %q", c.Mode)
	}
	if c.MaxBounces < 0 {
		return errors.Wrapf(ErrInvalidConfig, "maxBounces %d", c.MaxBounces)
	}
	if c.Workers < 0 {
		return errors.Wrapf(ErrInvalidConfig, "workers %d", c.Workers)
	}

	info, ok := scene.Lookup(c.Scene)
	if !ok {
		return errors.Wrapf(ErrInvalidConfig, "scene %q", c.Scene)
	}
	if info.NeedsMesh && c.Mesh == "" {
		return errors.Wrapf(ErrInvalidConfig, "scene %q needs a mesh file", c.Scene)
	}

	for _, ch := range c.Background {
		if ch < 0 || ch > 1 {
			return errors.Wrapf(ErrInvalidConfig, "background %v", c.Background)
		}
	}
	if c.Camera.FOV < 0 || c.Camera.FOV >= 180 {
		return errors.Wrapf(ErrInvalidConfig, "fov %v", c.Camera.FOV)
	}
	if c.Camera.Near < 0 || c.Camera.Far <= c.Camera.Near {
		return errors.Wrapf(ErrInvalidConfig, "clip range [%v, %v]", c.Camera.Near, c.Camera.Far)
	}
	return nil
}

// RenderMode returns the parsed mode; call Validate first
func (c Config) RenderMode() renderer.Mode {
	mode, _ := renderer.ParseMode(c.Mode)
	return mode
}

// BackgroundColor returns the background as a color
func (c Config) BackgroundColor() core.Color {
	return core.NewColor(c.Background[0], c.Background[1], c.Background[2])
}

// CameraConfig merges the camera overrides with a scene's suggested view
func (c Config) CameraConfig(view scene.Viewpoint) renderer.CameraConfig {
	cam := renderer.CameraConfig{
		Position: view.Position,
		LookAt:   view.LookAt,
		Up:       view.Up,
		FOV:      view.FOV,
		Near:     c.Camera.Near,
		Far:      c.Camera.Far,
	}
	if c.Camera.Position != nil {
		cam.Position = c.Camera.Position.Vec3()
	}
	if c.Camera.LookAt != nil {
		cam.LookAt = c.Camera.LookAt.Vec3()
	}
	if c.Camera.Up != nil {
		cam.Up = c.Camera.Up.Vec3()
	}
	if c.Camera.FOV > 0 {
		cam.FOV = c.Camera.FOV
	}
	return cam
}
