// Package config assembles the run configuration from defaults, an optional
// YAML file, command line flags and the environment, in that order.
package config

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"pianorain/logger"
	"pianorain/visualizer"
)

type Mode string

const (
	ModeView   Mode = "view"
	ModeExport Mode = "export"
	ModeServe  Mode = "serve"
	ModeTUI    Mode = "tui"
)

const (
	envLogLevel = "PIANORAIN_LOG_LEVEL"
	envHeadless = "PIANORAIN_HEADLESS"
)

type Window struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Record controls live capture. A zero size keeps the first captured frame's
// size for the whole recording.
type Record struct {
	Width  int    `yaml:"width"`
	Height int    `yaml:"height"`
	Format string `yaml:"format"`
	Dir    string `yaml:"dir"`
}

type Export struct {
	Width  int     `yaml:"width"`
	Height int     `yaml:"height"`
	FPS    int     `yaml:"fps"`
	Delay  float64 `yaml:"delay"`
	Audio  bool    `yaml:"audio"`
	Procs  int     `yaml:"procs"`
}

type Config struct {
	Input       string              `yaml:"input"`
	Mode        Mode                `yaml:"mode"`
	Window      Window              `yaml:"window"`
	Orientation string              `yaml:"orientation"`
	Output      string              `yaml:"output"`
	SoundFont   string              `yaml:"soundfont"`
	Addr        string              `yaml:"addr"`
	LogLevel    string              `yaml:"logLevel"`
	Watch       bool                `yaml:"watch"`
	Headless    bool                `yaml:"headless"`
	Record      Record              `yaml:"record"`
	Export      Export              `yaml:"export"`
	Visual      visualizer.Settings `yaml:"visual"`

	ConfigPath string `yaml:"-"`
	ShowHelp   bool   `yaml:"-"`
}

func Default() *Config {
	return &Config{
		Mode:        ModeView,
		Window:      Window{Width: 1280, Height: 720},
		Orientation: visualizer.Horizontal.String(),
		Output:      "piano-visualization.mp4",
		Addr:        ":8888",
		LogLevel:    "info",
		Record:      Record{Width: 1280, Height: 720, Format: "mp4"},
		Export:      Export{Width: 1920, Height: 1080, FPS: 60, Delay: 3, Audio: true},
		Visual:      visualizer.DefaultSettings(),
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

func Decode(r io.Reader) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg.Visual = cfg.Visual.Normalize()
	return cfg, nil
}

func bindFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.ConfigPath, "config", cfg.ConfigPath, "YAML config file")
	fs.StringVar((*string)(&cfg.Mode), "mode", string(cfg.Mode), "view, export, serve or tui")
	fs.IntVar(&cfg.Window.Width, "width", cfg.Window.Width, "window width")
	fs.IntVar(&cfg.Window.Height, "height", cfg.Window.Height, "window height")
	fs.StringVar(&cfg.Orientation, "orientation", cfg.Orientation, "horizontal or vertical")
	fs.StringVar(&cfg.Output, "o", cfg.Output, "output video path")
	fs.StringVar(&cfg.SoundFont, "soundfont", cfg.SoundFont, "SoundFont (.sf2) for audio playback")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	fs.BoolVar(&cfg.Watch, "watch", cfg.Watch, "reload the input when it changes")
	fs.BoolVar(&cfg.Headless, "headless", cfg.Headless, "render without a window")
	fs.IntVar(&cfg.Export.FPS, "fps", cfg.Export.FPS, "export frame rate")
	fs.Float64Var(&cfg.Export.Delay, "delay", cfg.Export.Delay, "export lead-in in seconds")
	fs.BoolVar(&cfg.ShowHelp, "h", false, "show help")
}

var boolFlags = map[string]bool{"-h": true, "-watch": true, "-headless": true}

// reorderArgs moves flags in front of positional arguments so the input path
// may come first.
func reorderArgs(args []string) []string {
	var flags, positional []string
	for i := 0; i < len(args); i++ {
		arg := args[i]
		if len(arg) == 0 || arg[0] != '-' {
			positional = append(positional, arg)
			continue
		}
		flags = append(flags, arg)
		name := "-" + strings.TrimLeft(arg, "-")
		if strings.Contains(arg, "=") || boolFlags[name] {
			continue
		}
		if i+1 < len(args) {
			i++
			flags = append(flags, args[i])
		}
	}
	return append(flags, positional...)
}

func ParseArgs(args []string) (*Config, error) {
	args = reorderArgs(args)

	cfg := Default()
	fs := flag.NewFlagSet("pianorain", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	bindFlags(fs, cfg)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Flags win over the file, so parse them again on top of it.
	if path := cfg.ConfigPath; path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		fs = flag.NewFlagSet("pianorain", flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		bindFlags(fs, cfg)
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if !set["log-level"] {
		if v := os.Getenv(envLogLevel); v != "" {
			cfg.LogLevel = strings.ToLower(v)
		}
	}
	if !set["headless"] {
		if v := os.Getenv(envHeadless); v != "" {
			cfg.Headless = v == "1" || strings.EqualFold(v, "true")
		}
	}

	if fs.NArg() > 0 {
		cfg.Input = fs.Arg(0)
	}

	if cfg.ShowHelp {
		return cfg, nil
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Mode {
	case ModeView, ModeExport, ModeServe, ModeTUI:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidMode, c.Mode)
	}
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := visualizer.ParseOrientation(c.Orientation); err != nil {
		return err
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("%w: window size %dx%d", ErrInvalidConfig, c.Window.Width, c.Window.Height)
	}
	if c.Record.Width < 0 || c.Record.Height < 0 {
		return fmt.Errorf("%w: record size %dx%d", ErrInvalidConfig, c.Record.Width, c.Record.Height)
	}
	if c.Export.FPS <= 0 {
		return fmt.Errorf("%w: export fps %d", ErrInvalidConfig, c.Export.FPS)
	}
	if c.Export.Delay < 0 {
		return fmt.Errorf("%w: negative export delay", ErrInvalidConfig)
	}
	if c.Mode == ModeExport && c.Input == "" {
		return fmt.Errorf("%w: export needs an input file", ErrInvalidConfig)
	}
	return c.Visual.Validate()
}

// OrientationValue is the parsed Orientation. Call after Validate.
func (c *Config) OrientationValue() visualizer.Orientation {
	o, _ := visualizer.ParseOrientation(c.Orientation)
	return o
}

func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `pianorain - falling notes piano visualizer

Usage:
  pianorain [options] [input]

Arguments:
  input         .mid, .midi, Tone.js .json or a .yaml note list

Options:
  -mode <mode>            view, export, serve or tui (default: view)
  -config <file>          YAML config file, flags override it
  -width, -height <px>    window size (default: 1280x720)
  -orientation <o>        horizontal or vertical (default: horizontal)
  -o <file>               export output (default: piano-visualization.mp4)
  -soundfont <file>       SoundFont used to play MIDI input
  -addr <addr>            HTTP address in serve mode (default: :8888)
  -log-level <level>      debug, info, warn or error (default: info)
  -watch                  reload the input file when it changes
  -headless               render without a window
  -fps <n>, -delay <s>    export frame rate and lead-in
  -h                      show this help

Environment Variables:
  PIANORAIN_LOG_LEVEL=<level>
  PIANORAIN_HEADLESS=1
`)
}
