package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/exp/slog"

	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
)

// Size limits for a single request
const (
	maxImageSide = 2048
	maxBounces   = 16
)

// Server renders built-in scenes on demand over HTTP
type Server struct {
	port    int
	workers int
	mesh    *geometry.Mesh
	logger  *slog.Logger
}

// NewServer creates a server. mesh may be nil, in which case the mesh scene is unavailable.
func NewServer(port, workers int, mesh *geometry.Mesh, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{port: port, workers: workers, mesh: mesh, logger: logger}
}

// Handler returns the API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/render", s.handleRender)
	mux.HandleFunc("/api/inspect", s.handleInspect)
	return mux
}

// Start serves until the listener fails
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	s.logger.Info("starting web server", "addr", "http://localhost"+addr)
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// SceneEntry is one item of the scene list
type SceneEntry struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
	Marching    bool   `json:"marching"`
}

func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	infos := scene.ListScenes()
	entries := make([]SceneEntry, 0, len(infos))
	for _, info := range infos {
		entries = append(entries, SceneEntry{
			ID:          info.ID,
			DisplayName: info.DisplayName,
			Description: info.Description,
			Available:   !info.NeedsMesh || s.mesh != nil,
			Marching:    info.Marching,
		})
	}
	writeJSON(w, http.StatusOK, entries)
}

// RenderRequest holds the query parameters shared by render and inspect
type RenderRequest struct {
	Scene      string
	Mode       renderer.Mode
	Width      int
	Height     int
	MaxBounces int
	FOV        float64 // 0 keeps the scene's field of view
}

// parseRenderRequest reads query parameters, applying defaults for missing ones
func parseRenderRequest(query url.Values) (RenderRequest, error) {
	req := RenderRequest{
		Scene:      "default",
		Mode:       renderer.ModeRayTrace,
		Width:      320,
		Height:     240,
		MaxBounces: 3,
	}

	if v := query.Get("scene"); v != "" {
		req.Scene = v
	}
	if v := query.Get("mode"); v != "" {
		mode, ok := renderer.ParseMode(v)
		if !ok {
			return req, errors.Errorf("unknown mode %q", v)
		}
		req.Mode = mode
	}

	ints := []struct {
		name     string
		dst      *int
		min, max int
	}{
		{"width", &req.Width, 1, maxImageSide},
		{"height", &req.Height, 1, maxImageSide},
		{"bounces", &req.MaxBounces, 0, maxBounces},
	}
	for _, p := range ints {
		v := query.Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < p.min || n > p.max {
			return req, errors.Errorf("%s must be an integer in [%d, %d]", p.name, p.min, p.max)
		}
		*p.dst = n
	}

	if v := query.Get("fov"); v != "" {
		fov, err := strconv.ParseFloat(v, 64)
		if err != nil || fov <= 0 || fov >= 180 {
			return req, errors.Errorf("fov must be in (0, 180)")
		}
		req.FOV = fov
	}
	return req, nil
}

// prepare builds the scene and camera for a request
func (s *Server) prepare(req RenderRequest) (scene.Preset, renderer.Camera, error) {
	preset, err := scene.Build(req.Scene, s.mesh)
	if err != nil {
		return scene.Preset{}, renderer.Camera{}, err
	}

	view := preset.View
	if req.FOV > 0 {
		view.FOV = req.FOV
	}
	cam := renderer.NewCamera(renderer.CameraConfig{
		Position: view.Position,
		LookAt:   view.LookAt,
		Up:       view.Up,
		FOV:      view.FOV,
		Near:     1,
		Far:      100,
	})
	return preset, cam, nil
}

// handleRender renders one frame and responds with a PNG
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := parseRenderRequest(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	preset, cam, err := s.prepare(req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rend := renderer.NewRenderer(s.workers, s.logger)
	buf := renderer.NewFramebuffer(req.Width, req.Height)
	if err := rend.Render(req.Mode, preset.Scene, cam, req.MaxBounces, buf); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := rend.WaitForRender(); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	stats := rend.LastStats()
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("X-Render-Id", stats.JobID)
	w.Header().Set("X-Render-Duration", stats.Duration.String())
	if err := buf.WritePNG(w); err != nil {
		s.logger.Warn("writing response failed", "job", stats.JobID, "err", err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
