package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"pianorain/apiserver"
	"pianorain/app"
	"pianorain/config"
	"pianorain/logger"
	"pianorain/tui"
	"pianorain/videogenerator"
	"pianorain/viewer"
	"pianorain/visualizer"
)

const tuiLogFile = "pianorain.log"

func main() {
	cfg, err := config.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		fmt.Fprintln(os.Stderr)
		config.PrintHelp(os.Stderr)
		os.Exit(2)
	}
	if cfg.ShowHelp {
		config.PrintHelp(os.Stdout)
		return
	}

	closeLog, err := initLogging(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		logger.GetLogger().Error("exiting", "error", err)
		closeLog()
		os.Exit(1)
	}
}

// initLogging sends logs to a file in tui mode, where stderr belongs to the
// terminal UI.
func initLogging(cfg *config.Config) (func(), error) {
	if cfg.Mode != config.ModeTUI {
		return func() {}, logger.InitLogger(cfg.LogLevel)
	}
	f, err := os.OpenFile(tuiLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	if err := logger.InitLoggerTo(f, cfg.LogLevel); err != nil {
		f.Close()
		return nil, err
	}
	return func() { f.Close() }, nil
}

func run(ctx context.Context, cfg *config.Config) error {
	if cfg.Mode == config.ModeExport {
		return export(ctx, cfg)
	}

	surface := visualizer.NewSurface()
	opts := app.Options{
		Settings:    cfg.Visual,
		Orientation: cfg.OrientationValue(),
		SoundFont:   cfg.SoundFont,
		Record: videogenerator.RecordOptions{
			Width:  cfg.Record.Width,
			Height: cfg.Record.Height,
			Format: cfg.Record.Format,
			Dir:    cfg.Record.Dir,
		},
	}

	if cfg.Mode == config.ModeView && !cfg.Headless {
		game := viewer.NewGame(ctx, surface)
		a := app.New(surface, game, opts)
		a.UseHostClock()
		game.Bind(a)
		defer a.Close(context.Background())

		start(ctx, cfg, a)
		return viewer.Run(game, viewer.Options{
			Title:  "pianorain",
			Width:  cfg.Window.Width,
			Height: cfg.Window.Height,
		})
	}

	window := visualizer.ContainerFunc(func() (float64, float64) {
		return float64(cfg.Window.Width), float64(cfg.Window.Height)
	})
	a := app.New(surface, window, opts)
	defer a.Close(context.Background())
	start(ctx, cfg, a)

	switch cfg.Mode {
	case config.ModeServe:
		return apiserver.Run(ctx, cfg.Addr, a)
	case config.ModeTUI:
		return tui.Run(ctx, a)
	}

	// Headless view plays the track until interrupted.
	if a.Phase() == app.Ready {
		a.TogglePlay()
	}
	<-ctx.Done()
	return nil
}

// start loads the input, if any, and begins watching it. A failed load
// leaves the app waiting for another track.
func start(ctx context.Context, cfg *config.Config, a *app.App) {
	if cfg.Input == "" {
		return
	}
	log := logger.GetLogger()
	if err := a.Load(ctx, cfg.Input); err != nil {
		log.Error("load input", "input", cfg.Input, "error", err)
	}
	if cfg.Watch {
		go func() {
			if err := a.Watch(ctx, cfg.Input); err != nil {
				log.Error("watch input", "input", cfg.Input, "error", err)
			}
		}()
	}
}

func export(ctx context.Context, cfg *config.Config) error {
	analyzer, err := app.AnalyzerFor(cfg.Input)
	if err != nil {
		return err
	}

	res := videogenerator.ScreenResolution{cfg.Export.Width, cfg.Export.Height}
	if cfg.OrientationValue() == visualizer.Vertical && res.Width() > res.Height() {
		res = videogenerator.ScreenResolution{res.Height(), res.Width()}
	}

	result, err := videogenerator.Generate(ctx, videogenerator.Job{
		Input:      cfg.Input,
		Output:     cfg.Output,
		Analyzer:   analyzer,
		Settings:   cfg.Visual,
		Resolution: res,
		FPS:        cfg.Export.FPS,
		Delay:      cfg.Export.Delay,
		Audio:      cfg.Export.Audio,
		Procs:      cfg.Export.Procs,
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return errors.New("export interrupted")
		}
		return err
	}
	fmt.Println(result.Output)
	return nil
}
