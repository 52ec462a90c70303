package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pianorain/visualizer"
)

func TestParseArgsDefaults(t *testing.T) {
	t.Setenv(envLogLevel, "")
	t.Setenv(envHeadless, "")

	cfg, err := ParseArgs(nil)
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if cfg.Mode != ModeView || cfg.LogLevel != "info" || cfg.Addr != ":8888" {
		t.Errorf("defaults = %+v", cfg)
	}
	if cfg.Visual != visualizer.DefaultSettings() {
		t.Errorf("visual settings = %+v", cfg.Visual)
	}
	if cfg.OrientationValue() != visualizer.Horizontal {
		t.Error("default orientation is not horizontal")
	}
}

func TestParseArgsFlags(t *testing.T) {
	t.Setenv(envLogLevel, "")
	t.Setenv(envHeadless, "")

	cfg, err := ParseArgs([]string{"song.mid", "-mode", "export", "-o", "out.mp4", "-watch", "-orientation=vertical", "-fps", "30"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if cfg.Input != "song.mid" {
		t.Errorf("Input = %q", cfg.Input)
	}
	if cfg.Mode != ModeExport || cfg.Output != "out.mp4" || !cfg.Watch || cfg.Export.FPS != 30 {
		t.Errorf("flags not applied: %+v", cfg)
	}
	if cfg.OrientationValue() != visualizer.Vertical {
		t.Error("orientation flag not applied")
	}
}

func TestParseArgsEnvironment(t *testing.T) {
	t.Setenv(envLogLevel, "DEBUG")
	t.Setenv(envHeadless, "1")

	cfg, err := ParseArgs(nil)
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if cfg.LogLevel != "debug" || !cfg.Headless {
		t.Errorf("environment not applied: level=%q headless=%v", cfg.LogLevel, cfg.Headless)
	}

	cfg, err = ParseArgs([]string{"-log-level", "warn"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("flag should win over environment, got %q", cfg.LogLevel)
	}
}

func TestParseArgsConfigFile(t *testing.T) {
	t.Setenv(envLogLevel, "")
	t.Setenv(envHeadless, "")

	path := filepath.Join(t.TempDir(), "pianorain.yaml")
	doc := `
mode: serve
addr: ":9000"
logLevel: debug
visual:
  fallWindowSeconds: 3
  graceSeconds: 0
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := ParseArgs([]string{"-config", path, "-addr", ":9100"})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if cfg.Mode != ModeServe || cfg.LogLevel != "debug" {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Addr != ":9100" {
		t.Errorf("Addr = %q, flag should override the file", cfg.Addr)
	}
	if cfg.Visual.FallWindowSeconds != 3 || cfg.Visual.GraceSeconds != 0 || cfg.Visual.KeyCount != 88 {
		t.Errorf("visual = %+v", cfg.Visual)
	}
}

func TestParseArgsInvalid(t *testing.T) {
	t.Setenv(envLogLevel, "")
	t.Setenv(envHeadless, "")

	tests := []struct {
		args []string
		want error
	}{
		{[]string{"-mode", "karaoke"}, ErrInvalidMode},
		{[]string{"-log-level", "loud"}, ErrInvalidConfig},
		{[]string{"-width", "0"}, ErrInvalidConfig},
		{[]string{"-mode", "export"}, ErrInvalidConfig},
		{[]string{"-orientation", "sideways"}, visualizer.ErrInvalidOrientation},
	}
	for _, tt := range tests {
		_, err := ParseArgs(tt.args)
		if !errors.Is(err, tt.want) {
			t.Errorf("ParseArgs(%v) = %v, want %v", tt.args, err, tt.want)
		}
	}

	if _, err := ParseArgs([]string{"-nope"}); err == nil {
		t.Error("unknown flag accepted")
	}
}

func TestDecodeRejectsUnknownFields(t *testing.T) {
	if _, err := Decode(strings.NewReader("colour: red\n")); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("Decode(unknown field) = %v", err)
	}
	cfg, err := Decode(strings.NewReader(""))
	if err != nil {
		t.Fatalf("Decode(empty): %v", err)
	}
	if cfg.Mode != ModeView {
		t.Errorf("empty file changed defaults: %+v", cfg)
	}
}

func TestHelp(t *testing.T) {
	cfg, err := ParseArgs([]string{"-h"})
	if err != nil || !cfg.ShowHelp {
		t.Fatalf("ParseArgs(-h) = %+v, %v", cfg, err)
	}
	var b strings.Builder
	PrintHelp(&b)
	if !strings.Contains(b.String(), "-mode") {
		t.Error("help does not list flags")
	}
}
