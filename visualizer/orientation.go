package visualizer

import (
	"fmt"
	"math"
	"strings"
)

// Orientation selects the aspect ratio of the drawing surface. It never
// changes the pitch to x mapping.
type Orientation int

const (
	Horizontal Orientation = iota
	Vertical
)

func (o Orientation) String() string {
	if o == Vertical {
		return "vertical"
	}
	return "horizontal"
}

func (o Orientation) Toggle() Orientation {
	if o == Vertical {
		return Horizontal
	}
	return Vertical
}

func ParseOrientation(s string) (Orientation, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "horizontal":
		return Horizontal, nil
	case "vertical":
		return Vertical, nil
	}
	return Horizontal, fmt.Errorf("%w: %q", ErrInvalidOrientation, s)
}

// Fit returns the largest size with the orientation's aspect ratio that fits
// inside a container of the given size.
func (o Orientation) Fit(s Settings, width, height float64) (float64, float64) {
	aspect := s.HorizontalAspect
	if o == Vertical {
		aspect = s.VerticalAspect
	}
	if aspect <= 0 || !(width > 0) || !(height > 0) || math.IsInf(width, 0) || math.IsInf(height, 0) {
		return width, height
	}
	switch r := width / height; {
	case r > aspect:
		return height * aspect, height
	case r < aspect:
		return width, width / aspect
	}
	return width, height
}
