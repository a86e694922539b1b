package timeline

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidFrameRate is returned for any conversion with fps <= 0.
var ErrInvalidFrameRate = errors.New("invalid frame rate")

// source time unit of a cue
type Unit int

const (
	// subtitle files
	UnitMillisecond Unit = iota
	// lyric files
	UnitSecond
)

func (u Unit) scale() float64 {
	if u == UnitSecond {
		return 1
	}
	return 1.0 / 1000
}

func (u Unit) String() string {
	if u == UnitSecond {
		return "s"
	}
	return "ms"
}

// ToFrame converts milliseconds to the nearest frame.
func ToFrame(timeMs, fps float64) (int, error) {
	return Converter{FPS: fps, Unit: UnitMillisecond}.Frame(timeMs)
}

// ToMs converts a frame number back to milliseconds.
func ToMs(frame int, fps float64) (float64, error) {
	if fps <= 0 || math.IsNaN(fps) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidFrameRate, fps)
	}
	return float64(frame) * 1000 / fps, nil
}

// Converter maps source timestamps to frames at a fixed rate.
type Converter struct {
	FPS  float64
	Unit Unit
}

func (c Converter) Validate() error {
	if c.FPS <= 0 || math.IsNaN(c.FPS) || math.IsInf(c.FPS, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidFrameRate, c.FPS)
	}
	return nil
}

func (c Converter) Frame(t float64) (int, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}
	return int(math.Round(t * c.FPS * c.Unit.scale())), nil
}
