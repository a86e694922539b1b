package subtitle

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// parsed subtitle file that preserves format specific metadata
type File interface {
	Format() Format
	Subtitle() *Subtitle
	SetText(index int, text string) error
	Write(path string) error
}

var utf8BOM = []byte("\ufeff")

func Open(path string) (File, error) {
	return OpenWithOptions(path, Options{})
}

func OpenWithOptions(path string, opts Options) (File, error) {
	format, ok := FormatFromExtension(path)
	if !ok {
		return nil, fmt.Errorf(
			"%w: %s",
			ErrUnsupportedFormat,
			strings.ToLower(filepath.Ext(path)),
		)
	}

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat subtitle file: %w", err)
	}
	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("%w: %s is not a regular file", ErrInputNotFound, path)
	}

	// EBU STL is a binary container with its own character tables
	if format == FormatSTL {
		return openSTL(path, opts)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read subtitle file: %w", err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s", ErrEncoding, path)
	}

	return Parse(bytes.NewReader(data), format, opts)
}

// Parse reads a text based subtitle stream in the given format.
func Parse(r io.Reader, format Format, opts Options) (File, error) {
	switch format {
	case FormatSRT:
		return parseSRT(r, opts)
	case FormatVTT:
		return parseVTT(r, opts)
	case FormatASS, FormatSSA:
		return parseASS(r, format)
	case FormatMPL2:
		return parseMPL2(r, opts)
	case FormatTMP:
		return parseTMP(r, opts)
	case FormatMicroDVD:
		return parseMicroDVD(r, opts)
	case FormatLRC:
		return parseLRC(r, opts)
	case FormatTTML:
		return readTTML(r, opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// subtitle format based on file extension
func FormatFromExtension(path string) (Format, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".srt":
		return FormatSRT, true
	case ".vtt":
		return FormatVTT, true
	case ".ass":
		return FormatASS, true
	case ".ssa":
		return FormatSSA, true
	case ".mpl2", ".mpl":
		return FormatMPL2, true
	case ".tmp":
		return FormatTMP, true
	case ".sub", ".microdvd":
		return FormatMicroDVD, true
	case ".lrc":
		return FormatLRC, true
	case ".ttml", ".dfxp":
		return FormatTTML, true
	case ".stl":
		return FormatSTL, true
	default:
		return "", false
	}
}

// IsSupported reports whether Open recognizes the file extension.
func IsSupported(path string) bool {
	_, ok := FormatFromExtension(path)
	return ok
}

// entries shared by every format without extra metadata
type plainFile struct {
	format  Format
	entries []Entry
	opts    Options
}

func (f *plainFile) Format() Format {
	return f.format
}

func (f *plainFile) Subtitle() *Subtitle {
	return &Subtitle{
		Entries: f.entries,
		Format:  string(f.format),
	}
}

func (f *plainFile) SetText(index int, text string) error {
	if index < 0 || index >= len(f.entries) {
		return fmt.Errorf(
			"index %d out of range (0-%d)",
			index,
			len(f.entries)-1,
		)
	}
	f.entries[index].Text = text
	return nil
}

func (f *plainFile) Write(path string) error {
	writer, err := NewWriter(f.format, f.opts)
	if err != nil {
		return err
	}
	return writer.Write(f.Subtitle(), path)
}
