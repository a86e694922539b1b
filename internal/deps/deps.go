package deps

import (
	"fmt"

	"github.com/mgpai22/subtrack/internal/config"
	"github.com/mgpai22/subtrack/internal/ffmpeg"
)

// Availability of an optional capability.
type Availability int

const (
	Missing Availability = iota
	// can be made available with `subtrack deps install`
	Installable
	Available
)

func (a Availability) String() string {
	switch a {
	case Available:
		return "available"
	case Installable:
		return "installable"
	default:
		return "missing"
	}
}

// Status is resolved once at startup and handed to the commands that need it.
type Status struct {
	FFmpeg      Availability
	FFmpegPaths ffmpeg.BinaryPaths
	Translate   Availability
	Transcribe  Availability
	// environment variables that would enable the AI capabilities
	TranslateKeyEnv  string
	TranscribeKeyEnv string
}

// probes are the lookups Check performs
type probes struct {
	lookup      func() (ffmpeg.BinaryPaths, error)
	installable func() bool
	apiKey      func(provider string) (string, string)
}

func systemProbes() probes {
	return probes{
		lookup:      ffmpeg.Lookup,
		installable: ffmpeg.Installable,
		apiKey:      config.APIKey,
	}
}

// Check resolves every capability without side effects.
func Check(cfg *config.Config) Status {
	return check(cfg, systemProbes())
}

func check(cfg *config.Config, p probes) Status {
	var st Status

	if paths, err := p.lookup(); err == nil {
		st.FFmpeg = Available
		st.FFmpegPaths = paths
	} else if p.installable() {
		st.FFmpeg = Installable
	}

	var key string
	key, st.TranslateKeyEnv = p.apiKey(cfg.Translate.Provider)
	if key != "" {
		st.Translate = Available
	}

	key, st.TranscribeKeyEnv = p.apiKey(cfg.Transcribe.Provider)
	if key != "" {
		// transcription also needs ffmpeg for audio extraction
		st.Transcribe = st.FFmpeg
	}

	return st
}

// RequireFFmpeg returns the binaries or an error telling how to get them.
func (s Status) RequireFFmpeg() (ffmpeg.BinaryPaths, error) {
	switch s.FFmpeg {
	case Available:
		return s.FFmpegPaths, nil
	case Installable:
		return ffmpeg.BinaryPaths{}, fmt.Errorf("%w: run `subtrack deps install` first", ffmpeg.ErrNotFound)
	default:
		return ffmpeg.BinaryPaths{}, fmt.Errorf("%w: install ffmpeg and make it available on PATH", ffmpeg.ErrNotFound)
	}
}
