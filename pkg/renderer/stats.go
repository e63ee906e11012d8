package renderer

import (
	"time"

	"golang.org/x/exp/slog"
)

// TraceStats counts the rays a raytracer has cast
type TraceStats struct {
	PrimaryRays    int64
	ReflectionRays int64
	ShadowRays     int64
	MaxDepth       int64 // deepest reflection bounce reached
}

// Merge adds other's counts into s
func (s *TraceStats) Merge(other TraceStats) {
	s.PrimaryRays += other.PrimaryRays
	s.ReflectionRays += other.ReflectionRays
	s.ShadowRays += other.ShadowRays
	s.MaxDepth = max(s.MaxDepth, other.MaxDepth)
}

// LogValue implements slog.LogValuer
func (s TraceStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("primary", s.PrimaryRays),
		slog.Int64("reflection", s.ReflectionRays),
		slog.Int64("shadow", s.ShadowRays),
		slog.Int64("maxDepth", s.MaxDepth),
	)
}

// RenderStats describes a finished frame
type RenderStats struct {
	JobID    string
	Width    int
	Height   int
	Mode     Mode
	Workers  int
	Duration time.Duration
	Rays     TraceStats
}

// LogValue implements slog.LogValuer
func (s RenderStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("job", s.JobID),
		slog.Int("width", s.Width),
		slog.Int("height", s.Height),
		slog.String("mode", s.Mode.String()),
		slog.Int("workers", s.Workers),
		slog.Duration("duration", s.Duration),
		slog.Any("rays", s.Rays),
	)
}
