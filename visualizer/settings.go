package visualizer

import "fmt"

// Settings are the layout constants of the renderer. A zero Settings means
// DefaultSettings. Otherwise Normalize fills only the zero fields that must be
// positive; LowestPitch, GraceSeconds, Saturation and Lightness keep zero.
type Settings struct {
	KeyCount          int     `yaml:"keyCount"`
	LowestPitch       int     `yaml:"lowestPitch"`
	KeyboardFraction  float64 `yaml:"keyboardFraction"`
	FallWindowSeconds float64 `yaml:"fallWindowSeconds"`
	GraceSeconds      float64 `yaml:"graceSeconds"`
	CaptureFPS        int     `yaml:"captureFps"`
	FrameRate         int     `yaml:"frameRate"`
	RadiusFactor      float64 `yaml:"radiusFactor"`
	LabelMinRadius    float64 `yaml:"labelMinRadius"`
	Saturation        float64 `yaml:"saturation"`
	Lightness         float64 `yaml:"lightness"`
	HorizontalAspect  float64 `yaml:"horizontalAspect"`
	VerticalAspect    float64 `yaml:"verticalAspect"`
}

func DefaultSettings() Settings {
	return Settings{
		KeyCount:          88,
		LowestPitch:       21,
		KeyboardFraction:  0.15,
		FallWindowSeconds: 4,
		GraceSeconds:      2,
		CaptureFPS:        30,
		FrameRate:         60,
		RadiusFactor:      0.4,
		LabelMinRadius:    5,
		Saturation:        0.7,
		Lightness:         0.6,
		HorizontalAspect:  16.0 / 9.0,
		VerticalAspect:    9.0 / 16.0,
	}
}

func (s Settings) Normalize() Settings {
	d := DefaultSettings()
	if s == (Settings{}) {
		return d
	}
	if s.KeyCount == 0 {
		s.KeyCount = d.KeyCount
	}
	if s.KeyboardFraction == 0 {
		s.KeyboardFraction = d.KeyboardFraction
	}
	if s.FallWindowSeconds == 0 {
		s.FallWindowSeconds = d.FallWindowSeconds
	}
	if s.CaptureFPS == 0 {
		s.CaptureFPS = d.CaptureFPS
	}
	if s.FrameRate == 0 {
		s.FrameRate = d.FrameRate
	}
	if s.RadiusFactor == 0 {
		s.RadiusFactor = d.RadiusFactor
	}
	if s.LabelMinRadius == 0 {
		s.LabelMinRadius = d.LabelMinRadius
	}
	if s.HorizontalAspect == 0 {
		s.HorizontalAspect = d.HorizontalAspect
	}
	if s.VerticalAspect == 0 {
		s.VerticalAspect = d.VerticalAspect
	}
	return s
}

// Validate checks settings after Normalize.
func (s Settings) Validate() error {
	switch {
	case s.KeyCount <= 0:
		return fmt.Errorf("%w: keyCount must be positive, got %d", ErrInvalidSettings, s.KeyCount)
	case s.KeyboardFraction <= 0 || s.KeyboardFraction >= 1:
		return fmt.Errorf("%w: keyboardFraction must be in (0, 1), got %v", ErrInvalidSettings, s.KeyboardFraction)
	case s.FallWindowSeconds <= 0:
		return fmt.Errorf("%w: fallWindowSeconds must be positive, got %v", ErrInvalidSettings, s.FallWindowSeconds)
	case s.GraceSeconds < 0:
		return fmt.Errorf("%w: graceSeconds must not be negative, got %v", ErrInvalidSettings, s.GraceSeconds)
	case s.CaptureFPS <= 0 || s.FrameRate <= 0:
		return fmt.Errorf("%w: frame rates must be positive", ErrInvalidSettings)
	case s.HorizontalAspect <= 0 || s.VerticalAspect <= 0:
		return fmt.Errorf("%w: aspect ratios must be positive", ErrInvalidSettings)
	}
	return nil
}

// VisibleSeconds is how long a note stays on screen after its start.
func (s Settings) VisibleSeconds() float64 {
	return s.FallWindowSeconds + s.GraceSeconds
}
