package main

import (
	"embed"
	"flag"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/hubastard/arbor/engine/core"
	glbackend "github.com/hubastard/arbor/engine/gfx/gl"
	"github.com/hubastard/arbor/engine/logging"
	"github.com/hubastard/arbor/engine/platform"
	"github.com/hubastard/arbor/engine/render"
)

//go:embed locales
var locales embed.FS

func main() {
	configPath := flag.String("config", "", "config file (default: user config dir)")
	locale := flag.String("locale", "", "override the configured locale")
	image := flag.String("image", "", "png, jpeg, bmp or webp file to show next to the icon")
	flag.Parse()

	path := *configPath
	if path == "" {
		p, err := core.DefaultConfigPath("arbor")
		if err != nil {
			slog.Error("cannot resolve config path", "err", err)
			os.Exit(1)
		}
		path = p
	}
	cfg, err := core.LoadConfig(path)
	if err != nil {
		slog.Error("cannot load config", "path", path, "err", err)
		os.Exit(1)
	}
	if *locale != "" {
		cfg.Locale = *locale
	}

	logger := newLogger(cfg.Level())
	slog.SetDefault(logger)
	logging.SetLogger(logger)
	logger.Info("config loaded", "path", path, "locale", cfg.Locale)

	app := &App{configPath: path, imagePath: *image}
	newWindow := func(cfg core.Config) (core.Window, error) {
		w, err := platform.NewGLFWWindow(cfg, nil)
		if err != nil {
			return nil, err
		}
		app.window = w
		return w, nil
	}
	newRenderer := func(win core.Window, cfg core.Config) (render.Renderer, error) {
		r, err := glbackend.NewRenderer(win, cfg)
		if err != nil {
			return nil, err
		}
		return r, nil
	}

	err = core.Run(app, cfg, newWindow, newRenderer)
	if app.window != nil {
		app.window.Destroy()
	}
	if err != nil {
		logger.Error("sandbox stopped", "err", err)
		os.Exit(1)
	}
}

// newLogger writes text to a terminal and JSON everywhere else.
func newLogger(level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return slog.New(slog.NewTextHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, opts))
}
