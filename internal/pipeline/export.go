package pipeline

import (
	"bytes"
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	"github.com/mgpai22/subtrack/internal/subtitle"
	"github.com/mgpai22/subtrack/internal/timeline"
)

// Serialize renders items in start order as a caption document.
func Serialize(items []timeline.PlacedItem, format subtitle.Format, scene timeline.Scene) ([]byte, error) {
	sub, opts, err := toSubtitle(items, scene)
	if err != nil {
		return nil, err
	}
	enc, err := subtitle.NewEncoder(format, opts)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := enc.Encode(&buf, sub); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", format, err)
	}
	return buf.Bytes(), nil
}

// ExportFile writes items to path, appending the format extension when the
// path lacks it. The final path is returned.
func ExportFile(items []timeline.PlacedItem, format subtitle.Format, scene timeline.Scene, path string) (string, error) {
	ext := subtitle.GetExtensionForFormat(format)
	if !strings.EqualFold(filepath.Ext(path), ext) {
		path += ext
	}

	sub, opts, err := toSubtitle(items, scene)
	if err != nil {
		return "", err
	}
	w, err := subtitle.NewWriter(format, opts)
	if err != nil {
		return "", err
	}
	if err := w.Write(sub, path); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}

// Export writes every text item of the host.
func Export(host Host, format subtitle.Format, path string) (string, error) {
	return ExportFile(host.TextItems(), format, host.Scene(), path)
}

func toSubtitle(items []timeline.PlacedItem, scene timeline.Scene) (*subtitle.Subtitle, subtitle.Options, error) {
	rate, err := scene.Rate()
	if err != nil {
		return nil, subtitle.Options{}, err
	}

	sorted := timeline.SortByStart(items)
	entries := make([]subtitle.Entry, len(sorted))
	for i, it := range sorted {
		start, err := timeline.ToMs(it.StartFrame, rate)
		if err != nil {
			return nil, subtitle.Options{}, err
		}
		end, err := timeline.ToMs(it.EndFrame, rate)
		if err != nil {
			return nil, subtitle.Options{}, err
		}
		entries[i] = subtitle.Entry{
			Index:     i + 1,
			StartTime: msDuration(start),
			EndTime:   msDuration(end),
			Text:      it.Text,
			Italic:    it.Italic,
			Bold:      it.Bold,
			Position:  it.Position,
		}
	}

	opts := subtitle.Options{FPS: rate, Width: scene.Width, Height: scene.Height}
	return &subtitle.Subtitle{Entries: entries}, opts, nil
}

// rounded to whole milliseconds so text formats print stable timestamps
func msDuration(ms float64) time.Duration {
	return time.Duration(math.Round(ms)) * time.Millisecond
}
