package renderer

import (
	"runtime"
	"sync"

	"golang.org/x/exp/slog"
	"golang.org/x/sync/errgroup"

	"github.com/df07/go-whitted-raytracer/pkg/core"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/lights"
)

// Band is a range of image rows [Start, End)
type Band struct {
	Start int
	End   int
}

// Bands splits height rows into n contiguous bands. Every band gets
// height/n rows and the first height%n bands one extra.
func Bands(height, n int) []Band {
	if n <= 0 {
		return nil
	}
	base := height / n
	extra := height - base*n

	bands := make([]Band, n)
	row := 0
	for i := range bands {
		rows := base
		if i < extra {
			rows++
		}
		bands[i] = Band{Start: row, End: row + rows}
		row += rows
	}
	return bands
}

// Job is everything a worker needs to render its band. It is never modified
// once handed to the pool.
type Job struct {
	ID         string
	Mode       Mode
	Objects    []geometry.Object
	Lights     []lights.Light
	Grid       Grid
	Near       float64
	Far        float64
	MaxBounces int
	Background core.Color
	Seed       uint64
	Buffer     *Framebuffer
}

// WorkerPool renders a job with one goroutine per row band. Each worker
// writes only its own rows of the shared buffer.
type WorkerPool struct {
	numWorkers int
	logger     *slog.Logger

	mu      sync.Mutex
	job     Job
	group   *errgroup.Group
	stats   []TraceStats
	joined  TraceStats
	started bool
}

// NewWorkerPool creates a pool; numWorkers <= 0 uses one worker per CPU
func NewWorkerPool(numWorkers int, logger *slog.Logger) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkerPool{numWorkers: numWorkers, logger: logger}
}

// NumWorkers returns the number of workers in the pool
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}

// Configure waits for any running job and installs the next one
func (wp *WorkerPool) Configure(job Job) {
	wp.Join()

	wp.mu.Lock()
	defer wp.mu.Unlock()
	wp.job = job
	wp.started = false
	wp.joined = TraceStats{}
}

// Start launches the workers for the configured job. Starting twice is a no-op.
func (wp *WorkerPool) Start() {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	if wp.started || wp.group != nil {
		return
	}
	wp.started = true

	job := wp.job
	bands := Bands(job.Buffer.Height, wp.numWorkers)
	wp.stats = make([]TraceStats, len(bands))
	wp.group = &errgroup.Group{}
	for i, band := range bands {
		if band.Start == band.End {
			continue
		}
		i, band := i, band
		wp.group.Go(func() error {
			wp.stats[i] = renderBand(job, band, uint64(i))
			wp.logger.Debug("band finished",
				slog.String("job", job.ID),
				slog.Int("worker", i),
				slog.Int("rows", band.End-band.Start))
			return nil
		})
	}
}

// Join blocks until the running job is finished and returns its merged ray
// counts. Joining an idle pool returns the last job's counts immediately.
func (wp *WorkerPool) Join() (TraceStats, error) {
	wp.mu.Lock()
	group := wp.group
	wp.mu.Unlock()
	if group == nil {
		wp.mu.Lock()
		defer wp.mu.Unlock()
		return wp.joined, nil
	}

	err := group.Wait()

	wp.mu.Lock()
	defer wp.mu.Unlock()
	if wp.group == group {
		for _, s := range wp.stats {
			wp.joined.Merge(s)
		}
		wp.group = nil
	}
	return wp.joined, err
}

// renderBand traces every pixel of the band into the job's buffer
func renderBand(job Job, band Band, worker uint64) TraceStats {
	tracer := NewRaytracer(RaytracerConfig{
		Mode:       job.Mode,
		Objects:    job.Objects,
		Lights:     job.Lights,
		MaxBounces: job.MaxBounces,
		Far:        job.Far,
		Background: job.Background,
		Seed:       job.Seed + worker,
	})

	for y := band.Start; y < band.End; y++ {
		for x := 0; x < job.Buffer.Width; x++ {
			ray := job.Grid.Ray(x, y)
			c := tracer.TraceColor(ray.Origin, ray.Direction, job.Near, job.Far, 0, nil)
			job.Buffer.Set(x, y, c.To8())
		}
	}
	return tracer.Stats()
}
