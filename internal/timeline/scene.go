package timeline

import (
	"fmt"

	"github.com/mgpai22/subtrack/internal/cue"
)

// Scene carries the host's frame rate and output resolution.
type Scene struct {
	FPS     float64 `yaml:"fps"`
	FPSBase float64 `yaml:"fps_base"`
	Width   int     `yaml:"width"`
	Height  int     `yaml:"height"`
}

// effective frames per second (fps / fps_base)
func (s Scene) Rate() (float64, error) {
	base := s.FPSBase
	if base == 0 {
		base = 1
	}
	if s.FPS <= 0 || base < 0 {
		return 0, fmt.Errorf("%w: fps=%v fps_base=%v", ErrInvalidFrameRate, s.FPS, s.FPSBase)
	}
	return s.FPS / base, nil
}

func (s Scene) Resolution() cue.Resolution {
	return cue.Resolution{Width: s.Width, Height: s.Height}
}

// Converter for cues in the given unit at the scene rate.
func (s Scene) Converter(unit Unit) (Converter, error) {
	rate, err := s.Rate()
	if err != nil {
		return Converter{}, err
	}
	return Converter{FPS: rate, Unit: unit}, nil
}
