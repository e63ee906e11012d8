package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"github.com/df07/go-whitted-raytracer/pkg/config"
	"github.com/df07/go-whitted-raytracer/pkg/geometry"
	"github.com/df07/go-whitted-raytracer/pkg/loaders"
	"github.com/df07/go-whitted-raytracer/pkg/renderer"
	"github.com/df07/go-whitted-raytracer/pkg/scene"
	"github.com/df07/go-whitted-raytracer/web/server"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// options collects the flags shared by every command
type options struct {
	configPath string
	verbose    bool
	cfg        config.Config
}

func newRootCommand() *cobra.Command {
	opts := &options{cfg: config.Default()}

	root := &cobra.Command{
		Use:          "raytracer",
		Short:        "Whitted ray tracer and sphere tracer",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "YAML settings file; flags override its values")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "log at debug level")
	flags.IntVar(&opts.cfg.Width, "width", opts.cfg.Width, "image width in pixels")
	flags.IntVar(&opts.cfg.Height, "height", opts.cfg.Height, "image height in pixels")
	flags.StringVar(&opts.cfg.Mode, "mode", opts.cfg.Mode, "raytrace or raymarch")
	flags.IntVar(&opts.cfg.MaxBounces, "bounces", opts.cfg.MaxBounces, "maximum reflection depth")
	flags.IntVar(&opts.cfg.Workers, "workers", opts.cfg.Workers, "render workers (0 = one per CPU)")
	flags.StringVar(&opts.cfg.Scene, "scene", opts.cfg.Scene, "built-in scene id (see the scenes command)")
	flags.StringVar(&opts.cfg.Mesh, "mesh", opts.cfg.Mesh, "mesh file (.obj, .ply, .gltf, .glb) for the mesh scene")
	flags.StringVarP(&opts.cfg.Output, "output", "o", opts.cfg.Output, "output file")
	flags.Float64Var(&opts.cfg.Camera.FOV, "fov", opts.cfg.Camera.FOV, "horizontal field of view in degrees (0 = scene default)")

	root.AddCommand(
		newRenderCommand(opts),
		newTurntableCommand(opts),
		newScenesCommand(),
		newServeCommand(opts),
	)
	return root
}

// resolve applies the config file underneath any flags the user set, then validates
func (o *options) resolve(cmd *cobra.Command) (config.Config, *slog.Logger, error) {
	level := slog.LevelInfo
	if o.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := o.cfg
	if o.configPath != "" {
		fileCfg, err := config.Load(o.configPath)
		if err != nil {
			return config.Config{}, nil, err
		}
		cfg = overrideChanged(cmd, fileCfg, o.cfg)
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, nil, err
	}
	return cfg, logger, nil
}

// overrideChanged copies onto base the fields whose flags were set explicitly
func overrideChanged(cmd *cobra.Command, base, flagged config.Config) config.Config {
	changed := cmd.Flags().Changed
	if changed("width") {
		base.Width = flagged.Width
	}
	if changed("height") {
		base.Height = flagged.Height
	}
	if changed("mode") {
		base.Mode = flagged.Mode
	}
	if changed("bounces") {
		base.MaxBounces = flagged.MaxBounces
	}
	if changed("workers") {
		base.Workers = flagged.Workers
	}
	if changed("scene") {
		base.Scene = flagged.Scene
	}
	if changed("mesh") {
		base.Mesh = flagged.Mesh
	}
	if changed("output") {
		base.Output = flagged.Output
	}
	if changed("fov") {
		base.Camera.FOV = flagged.Camera.FOV
	}
	return base
}

// buildPreset loads the mesh, if any, and builds the configured scene
func buildPreset(cfg config.Config) (scene.Preset, error) {
	var mesh *geometry.Mesh
	if cfg.Mesh != "" {
		var err error
		if mesh, err = loaders.LoadMesh(cfg.Mesh); err != nil {
			return scene.Preset{}, err
		}
	}
	return scene.Build(cfg.Scene, mesh)
}

func newRenderCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "render",
		Short: "Render a single frame to PNG",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			return renderFrame(cfg, logger)
		},
	}
}

func renderFrame(cfg config.Config, logger *slog.Logger) error {
	preset, err := buildPreset(cfg)
	if err != nil {
		return err
	}

	r := renderer.NewRenderer(cfg.Workers, logger)
	r.Background = cfg.BackgroundColor()

	buf := renderer.NewFramebuffer(cfg.Width, cfg.Height)
	cam := renderer.NewCamera(cfg.CameraConfig(preset.View))
	if err := r.Render(cfg.RenderMode(), preset.Scene, cam, cfg.MaxBounces, buf); err != nil {
		return err
	}
	if err := r.WaitForRender(); err != nil {
		return err
	}

	if err := writeOutput(cfg.Output, func(f *os.File) error { return buf.WritePNG(f) }); err != nil {
		return err
	}
	logger.Info("wrote image", "path", cfg.Output, "stats", r.LastStats())
	return nil
}

// writeOutput creates path, including its directory, and hands the file to write
func writeOutput(path string, write func(*os.File) error) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "create output directory")
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "create output file")
	}
	if err := write(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "write %s", path)
	}
	return errors.Wrapf(f.Close(), "close %s", path)
}

func newScenesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "scenes",
		Short: "List the built-in scenes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			for _, info := range scene.ListScenes() {
				var notes []string
				if info.NeedsMesh {
					notes = append(notes, "needs --mesh")
				}
				if info.Marching {
					notes = append(notes, "best with --mode raymarch")
				}
				suffix := ""
				if len(notes) > 0 {
					suffix = " (" + strings.Join(notes, ", ") + ")"
				}
				fmt.Fprintf(out, "%-12s %s%s\n", info.ID, info.Description, suffix)
			}
			return nil
		},
	}
}

func newServeCommand(opts *options) *cobra.Command {
	port := 8080
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve renders and pixel inspection over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := opts.resolve(cmd)
			if err != nil {
				return err
			}
			var mesh *geometry.Mesh
			if cfg.Mesh != "" {
				if mesh, err = loaders.LoadMesh(cfg.Mesh); err != nil {
					return err
				}
			}
			return server.NewServer(port, cfg.Workers, mesh, logger).Start()
		},
	}
	cmd.Flags().IntVar(&port, "port", port, "port to serve on")
	return cmd
}
