package renderer

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/exp/slog"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/lights"
)

// Errors returned by Render before any work starts
var (
	ErrInvalidBounces = errors.New("max bounces must be >= 0")
	ErrEmptyBuffer    = errors.New("framebuffer has no pixels")
	ErrBufferSize     = errors.New("framebuffer size does not match its dimensions")
	ErrUnknownMode    = errors.New("unknown render mode")
	ErrInvalidClip    = errors.New("clip range must satisfy 0 <= near < far")
	ErrInvalidFOV     = errors.New("field of view must be within (0, 180) degrees")
	ErrInvalidCamera  = errors.New("invalid camera")
	ErrNilScene       = errors.New("scene is nil")
)

// SceneView is the read-only scene a render consumes. The slices it returns
// must not change after they are returned.
type SceneView interface {
	Objects() []geometry.Object
	Lights() []lights.Light
}

// Renderer drives asynchronous frame renders on a worker pool
type Renderer struct {
	pool       *WorkerPool
	logger     *slog.Logger
	Background core.Color

	mu      sync.Mutex
	current RenderStats
	started time.Time
	seed    uint64
}

// NewRenderer creates a renderer with the given number of workers
// (<= 0 uses one per CPU)
func NewRenderer(workers int, logger *slog.Logger) *Renderer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Renderer{
		pool:   NewWorkerPool(workers, logger),
		logger: logger,
	}
}

// Render validates its inputs, waits for any previous frame and starts
// rendering scene into buf. It returns as soon as the workers are running;
// call WaitForRender for the result.
func (r *Renderer) Render(mode Mode, scene SceneView, cam Camera, maxBounces int, buf *Framebuffer) error {
	if err := validate(mode, scene, cam, maxBounces, buf); err != nil {
		return err
	}

	if err := r.WaitForRender(); err != nil {
		return errors.Wrap(err, "previous render")
	}

	r.mu.Lock()
	r.seed++
	job := Job{
		ID:         uuid.New().String(),
		Mode:       mode,
		Objects:    scene.Objects(),
		Lights:     scene.Lights(),
		Grid:       cam.Grid(buf.Width, buf.Height),
		Near:       cam.Near,
		Far:        cam.Far,
		MaxBounces: maxBounces,
		Background: r.Background,
		Seed:       r.seed,
		Buffer:     buf,
	}
	r.current = RenderStats{
		JobID:   job.ID,
		Width:   buf.Width,
		Height:  buf.Height,
		Mode:    mode,
		Workers: r.pool.NumWorkers(),
	}
	r.started = time.Now()
	r.mu.Unlock()

	r.logger.Info("render started",
		slog.String("job", job.ID),
		slog.String("mode", mode.String()),
		slog.Int("width", buf.Width),
		slog.Int("height", buf.Height),
		slog.Int("objects", len(job.Objects)),
		slog.Int("lights", len(job.Lights)),
		slog.Int("maxBounces", maxBounces))

	r.pool.Configure(job)
	r.pool.Start()
	return nil
}

// WaitForRender blocks until the current frame is complete. It returns
// immediately when nothing is rendering.
func (r *Renderer) WaitForRender() error {
	rays, err := r.pool.Join()

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started.IsZero() {
		return err
	}
	r.current.Duration = time.Since(r.started)
	r.current.Rays = rays
	r.started = time.Time{}
	r.logger.Info("render finished", slog.Any("stats", r.current))
	return err
}

// LastStats returns statistics for the most recently completed frame
func (r *Renderer) LastStats() RenderStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func validate(mode Mode, scene SceneView, cam Camera, maxBounces int, buf *Framebuffer) error {
	if mode != ModeRayTrace && mode != ModeRayMarch {
		return errors.Wrapf(ErrUnknownMode, "%d", int(mode))
	}
	if scene == nil {
		return ErrNilScene
	}
	if maxBounces < 0 {
		return errors.Wrapf(ErrInvalidBounces, "got %d", maxBounces)
	}
	if err := buf.validate(); err != nil {
		return err
	}
	return cam.Validate()
}
