package subtitle

import (
	"errors"
	"io"
	"time"

	"github.com/mgpai22/subtrack/internal/cue"
)

var (
	ErrInputNotFound     = errors.New("input file not found")
	ErrUnsupportedFormat = errors.New("unsupported subtitle format")
	ErrEncoding          = errors.New("subtitle payload is not valid UTF-8")
)

// represents single subtitle entry
type Entry struct {
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
	// raw text as found in the file; inline markup is kept on import
	Text     string
	Italic   bool
	Bold     bool
	Position *cue.Position
}

// represents complete subtitle track
type Subtitle struct {
	Entries  []Entry
	Language string
	Format   string
}

// represents supported subtitle formats
type Format string

const (
	FormatSRT      Format = "srt"
	FormatVTT      Format = "vtt"
	FormatASS      Format = "ass"
	FormatSSA      Format = "ssa"
	FormatMPL2     Format = "mpl2"
	FormatTMP      Format = "tmp"
	FormatMicroDVD Format = "microdvd"
	FormatLRC      Format = "lrc"
	FormatTTML     Format = "ttml"
	FormatSTL      Format = "stl"
	FormatText     Format = "txt"
	FormatDocx     Format = "docx"
)

// represents transcribed audio segment
type Segment struct {
	StartTime time.Duration
	EndTime   time.Duration
	Text      string
}

// interface for writing subtitles to files
type Writer interface {
	Write(subtitle *Subtitle, path string) error
}

// writer that can also stream to any io.Writer
type Encoder interface {
	Writer
	Encode(w io.Writer, subtitle *Subtitle) error
}

// options that affect reading and writing of frame or pixel based formats
type Options struct {
	// frames per second, needed by MicroDVD
	FPS float64
	// PlayResX / PlayResY for SubStation output
	Width  int
	Height int
	Title  string
}
