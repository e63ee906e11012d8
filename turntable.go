package main

import (
	"math"
	"os"
	"time"

	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"github.com/df07/go-whitted-raytracer/pkg/config"
	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
)

// ErrInvalidFrames is returned for a turntable with no frames or a bad rate
var ErrInvalidFrames = errors.New("turntable needs at least one frame and a positive fps")

type turntableOptions struct {
	frames int
	fps    int
}

func newTurntableCommand(opts *options) *cobra.Command {
	tt := turntableOptions{frames: 24, fps: 12}

	cmd := &cobra.Command{
		Use:   "turntable",
		Short: "Orbit the camera once around the scene and write an animated GIF",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("output") && cfg.Output == config.Default().Output {
				cfg.Output = "turntable.gif"
			}
			return renderTurntable(cfg, tt, logger)
		},
	}
	cmd.Flags().IntVar(&tt.frames, "frames", tt.frames, "number of frames")
	cmd.Flags().IntVar(&tt.fps, "fps", tt.fps, "playback rate in frames per second")
	return cmd
}

// orbitAngles eases the camera from rest through one full turn. A critically
// damped spring chases 2π, so the orbit accelerates out of the first frame and
// settles into the last.
func orbitAngles(frames, fps int) []float64 {
	spring := harmonica.NewSpring(harmonica.FPS(fps), 4.0, 1.0)
	angles := make([]float64, frames)
	var angle, velocity float64
	for i := range angles {
		angles[i] = angle
		angle, velocity = spring.Update(angle, velocity, 2*math.Pi)
	}
	return angles
}

// orbit rotates the camera position about the view's up axis through its look-at point
func orbit(cam renderer.CameraConfig, angle float64) renderer.CameraConfig {
	up := cam.Up.Normalize()
	offset := cam.Position.Subtract(cam.LookAt)
	rotated := mgl64.QuatRotate(angle, mgl64.Vec3{up.X, up.Y, up.Z}).Rotate(mgl64.Vec3{offset.X, offset.Y, offset.Z})
	cam.Position = cam.LookAt.Add(core.NewVec3(rotated[0], rotated[1], rotated[2]))
	return cam
}

func renderTurntable(cfg config.Config, tt turntableOptions, logger *slog.Logger) error {
	if tt.frames < 1 || tt.fps < 1 {
		return errors.Wrapf(ErrInvalidFrames, "frames=%d fps=%d", tt.frames, tt.fps)
	}

	preset, err := buildPreset(cfg)
	if err != nil {
		return err
	}

	start := time.Now()
	r := renderer.NewRenderer(cfg.Workers, logger)
	r.Background = cfg.BackgroundColor()
	base := cfg.CameraConfig(preset.View)

	angles := orbitAngles(tt.frames, tt.fps)
	frames := make([]*renderer.Framebuffer, 0, len(angles))
	for i, angle := range angles {
		buf := renderer.NewFramebuffer(cfg.Width, cfg.Height)
		cam := renderer.NewCamera(orbit(base, angle))
		if err := r.Render(cfg.RenderMode(), preset.Scene, cam, cfg.MaxBounces, buf); err != nil {
			return errors.Wrapf(err, "frame %d", i)
		}
		if err := r.WaitForRender(); err != nil {
			return errors.Wrapf(err, "frame %d", i)
		}
		frames = append(frames, buf)
		logger.Debug("rendered frame", "frame", i, "angle", angle)
	}

	delay := int(math.Round(100 / float64(tt.fps)))
	if err := writeOutput(cfg.Output, func(f *os.File) error {
		return renderer.WriteGIF(f, frames, delay)
	}); err != nil {
		return err
	}
	logger.Info("wrote turntable", "path", cfg.Output, "frames", len(frames), "elapsed", time.Since(start))
	return nil
}
