// Command planrun builds a demo render plan, executes it and saves the
// composited screen.
package main

import (
	"flag"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/HugoSmits86/nativewebp"
	_ "github.com/ftrvxmtrx/tga"

	"github.com/gogpu/frameplan"
	"github.com/gogpu/frameplan/internal/config"
	"github.com/gogpu/frameplan/passes"
	"github.com/gogpu/frameplan/plan"
	"github.com/gogpu/frameplan/render"
)

func main() {
	var (
		configPath = flag.String("config", "", "JSON config file")
		backend    = flag.String("backend", "", "backend name (default: best available)")
		width      = flag.Int("width", 0, "screen width")
		height     = flag.Int("height", 0, "screen height")
		output     = flag.String("output", "", "output file (.png or .webp)")
		background = flag.String("background", "", "background image (png, jpeg, tga)")
		frames     = flag.Int("frames", 0, "frames to render")
		split      = flag.Bool("split", false, "render two side-by-side views")
		verbose    = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		if cfg, err = config.Load(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}
	cfg.Resolve(config.Flags{
		Backend:    *backend,
		Width:      *width,
		Height:     *height,
		Output:     *output,
		Background: *background,
		Frames:     *frames,
		Verbose:    *verbose,
	})

	level, ok, err := cfg.Level()
	if err != nil {
		log.Fatal(err)
	}
	if ok {
		frameplan.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}

	if err := run(cfg, *split); err != nil {
		log.Fatal(err)
	}
}

func run(cfg config.Config, split bool) error {
	opts := []render.Option{render.WithScreen(uint32(cfg.Width), uint32(cfg.Height))} //nolint:gosec // Resolve keeps sizes positive
	if cfg.Backend != "" {
		opts = append(opts, render.WithBackend(cfg.Backend))
	}
	r, err := render.New(opts...)
	if err != nil {
		return err
	}
	defer r.Close()

	p, err := buildPlan(cfg)
	if err != nil {
		return err
	}
	fmt.Print(p.Describe())

	if err := r.SetPlan(p); err != nil {
		return err
	}
	if err := r.ApplySettings(cfg.Settings); err != nil {
		return err
	}
	for _, e := range r.Settings().All() {
		fmt.Printf("%s = %s\t# %s\n", e.Name(), e.Format(), e.Description())
	}

	views := demoViews(cfg, split)
	for range cfg.Frames {
		if err := r.Render(views...); err != nil {
			return err
		}
	}
	log.Printf("Rendered %d frame(s) on %s: %v\n", cfg.Frames, r.Device().Name(), r.Pool().Stats())

	img, err := r.Snapshot()
	if err != nil {
		return err
	}
	if err := save(cfg.Output, img); err != nil {
		return fmt.Errorf("failed to save: %w", err)
	}
	log.Printf("Frame saved to %s (%dx%d)\n", cfg.Output, cfg.Width, cfg.Height)
	return nil
}

// buildPlan chains a background pass and a copy into the final target.
func buildPlan(cfg config.Config) (*plan.Plan, error) {
	if cfg.Background != "" {
		src, err := loadImage(cfg.Background)
		if err != nil {
			return nil, err
		}
		return plan.New(passes.NewImage("background", src), passes.NewCopy("background", "final"))
	}
	return plan.New(passes.NewClear("background"), passes.NewCopy("background", "final"))
}

func demoViews(cfg config.Config, split bool) []render.View {
	if !split {
		return nil
	}
	half := cfg.Width / 2
	return []render.View{
		{Name: "left", Viewport: image.Rect(0, 0, half, cfg.Height), Camera: render.DefaultCamera()},
		{Name: "right", Viewport: image.Rect(half, 0, cfg.Width, cfg.Height), Camera: render.DefaultCamera()},
	}
}

func loadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return img, nil
}

func save(path string, img image.Image) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".webp":
		err = nativewebp.Encode(f, img, nil)
	default:
		err = png.Encode(f, img)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}
