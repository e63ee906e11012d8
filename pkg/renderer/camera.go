package renderer

import (
	"math"

	"github.com/pkg/errors"

	"github.com/df07/go-whitted-raytracer/pkg/core"
)

// CameraConfig describes a look-at camera
type CameraConfig struct {
	Position core.Vec3
	LookAt   core.Vec3
	Up       core.Vec3
	FOV      float64 // horizontal field of view in degrees
	Near     float64
	Far      float64
}

// Camera is a position with an orthonormal basis. N points backwards, away
// from the view direction; U points right and V up.
type Camera struct {
	Position core.Vec3
	U, V, N  core.Vec3
	FOV      float64 // horizontal, degrees
	Near     float64
	Far      float64
}

// NewCamera derives the camera basis from a look-at configuration
func NewCamera(cfg CameraConfig) Camera {
	n := cfg.Position.Subtract(cfg.LookAt).Normalize()
	u := cfg.Up.Cross(n).Normalize()
	v := n.Cross(u).Normalize()
	return Camera{
		Position: cfg.Position,
		U:        u,
		V:        v,
		N:        n,
		FOV:      cfg.FOV,
		Near:     cfg.Near,
		Far:      cfg.Far,
	}
}

// Validate checks the clip range, field of view and basis
func (c Camera) Validate() error {
	if !(c.Near >= 0) || !(c.Far > c.Near) {
		return errors.Wrapf(ErrInvalidClip, "near %v far %v", c.Near, c.Far)
	}
	if !(c.FOV > 0 && c.FOV < 180) {
		return errors.Wrapf(ErrInvalidFOV, "%v degrees", c.FOV)
	}
	if c.U.LengthSquared() == 0 || c.V.LengthSquared() == 0 || c.N.LengthSquared() == 0 {
		return errors.Wrap(ErrInvalidCamera, "degenerate basis, up is parallel to the view direction")
	}
	return nil
}

// Grid is the near-clip plane sampled at pixel centers. Pixel (x, y) lies at
// FirstPoint + HStep*x + VStep*y; rows run top to bottom.
type Grid struct {
	Origin     core.Vec3
	FirstPoint core.Vec3
	HStep      core.Vec3
	VStep      core.Vec3
}

// Grid lays the image out on the near plane. The plane is widened so that
// the horizontal field of view spans the full image width.
func (c Camera) Grid(width, height int) Grid {
	near := c.Near
	if near == 0 {
		// A zero near plane still needs a plane to aim through
		near = 1
	}
	halfW := math.Tan(c.FOV*math.Pi/360) * near
	halfH := halfW * float64(height) / float64(width)
	clipCenter := c.Position.Subtract(c.N.Multiply(near))

	hStep := c.U.Multiply(2 * halfW / float64(width))
	vStep := c.V.Multiply(-2 * halfH / float64(height))
	topLeft := clipCenter.Subtract(c.U.Multiply(halfW)).Add(c.V.Multiply(halfH))

	return Grid{
		Origin:     c.Position,
		FirstPoint: topLeft.Add(hStep.Multiply(0.5)).Add(vStep.Multiply(0.5)),
		HStep:      hStep,
		VStep:      vStep,
	}
}

// Ray returns the normalized primary ray through pixel (x, y)
func (g Grid) Ray(x, y int) core.Ray {
	point := g.FirstPoint.Add(g.HStep.Multiply(float64(x))).Add(g.VStep.Multiply(float64(y)))
	return core.NewRay(g.Origin, point.Subtract(g.Origin).Normalize())
}
