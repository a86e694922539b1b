package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mgpai22/subtrack/internal/cue"
	"github.com/mgpai22/subtrack/internal/logging"
	"github.com/mgpai22/subtrack/internal/subtitle"
	"github.com/mgpai22/subtrack/internal/timeline"
)

var (
	ErrInputNotFound      = subtitle.ErrInputNotFound
	ErrUnsupportedFormat  = subtitle.ErrUnsupportedFormat
	ErrEncoding           = subtitle.ErrEncoding
	ErrInvalidFrameRate   = timeline.ErrInvalidFrameRate
	ErrMalformedDirective = cue.ErrMalformedDirective
)

// Host is the timeline that receives placed items.
type Host interface {
	Scene() timeline.Scene
	// every occupied range, text or not
	Spans() []timeline.Span
	Create(items []timeline.PlacedItem) error
	// text items in start order
	TextItems() []timeline.PlacedItem
}

// TextTranslator rewrites cue texts before they are normalized.
// The result must have the same length and order as the input.
type TextTranslator interface {
	TranslateTexts(ctx context.Context, texts []string) ([]string, error)
}

type ImportRequest struct {
	Path string
	Unit timeline.Unit
	// overrides the host scene when its FPS is set
	Scene     *timeline.Scene
	Translate TextTranslator
}

type ImportResult struct {
	Placed     []timeline.PlacedItem
	Skipped    int
	Duplicates int
	Empty      bool
}

type Importer struct {
	Host   Host
	Logger *logging.Logger
}

// Import parses the caption file and places every cue on the first free
// track. Nothing reaches the host unless the whole batch could be placed.
func (im *Importer) Import(ctx context.Context, req ImportRequest) (*ImportResult, error) {
	log := logging.OrNop(im.Logger)

	scene := im.Host.Scene()
	if req.Scene != nil && req.Scene.FPS > 0 {
		scene = *req.Scene
	}
	conv, err := scene.Converter(req.Unit)
	if err != nil {
		return nil, err
	}

	file, err := subtitle.OpenWithOptions(req.Path, subtitle.Options{
		FPS:    conv.FPS,
		Width:  scene.Width,
		Height: scene.Height,
	})
	if err != nil {
		return nil, err
	}

	entries := file.Subtitle().Entries
	log.Debugw("Parsed caption file",
		"path", req.Path,
		"format", file.Format(),
		"entries", len(entries),
	)
	if len(entries) == 0 {
		return &ImportResult{Empty: true}, nil
	}

	texts := make([]string, len(entries))
	for i, e := range entries {
		texts[i] = e.Text
	}
	if req.Translate != nil {
		translated, err := req.Translate.TranslateTexts(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("failed to translate cues: %w", err)
		}
		if len(translated) != len(texts) {
			return nil, fmt.Errorf("translator returned %d texts for %d cues", len(translated), len(texts))
		}
		texts = translated
	}

	result := &ImportResult{}
	cues := make([]cue.Cue, 0, len(entries))
	for i, e := range entries {
		c, err := cue.Normalize(cue.Raw{
			Start: inUnit(e.StartTime, req.Unit),
			End:   inUnit(e.EndTime, req.Unit),
			Text:  texts[i],
		}, scene.Resolution())
		if errors.Is(err, cue.ErrMalformedDirective) {
			log.Warnw("Skipping cue with malformed directive",
				"index", e.Index,
				"error", err,
			)
			result.Skipped++
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("cue %d: %w", e.Index, err)
		}

		c.Italic = c.Italic || e.Italic
		c.Bold = c.Bold || e.Bold
		if c.Position == nil {
			c.Position = e.Position
		}
		cues = append(cues, c)
	}

	cues, result.Duplicates = cue.Dedupe(cues)

	placed, _, err := timeline.Place(cues, im.Host.Spans(), conv)
	if err != nil {
		return nil, err
	}
	if err := im.Host.Create(placed); err != nil {
		return nil, fmt.Errorf("failed to create text items: %w", err)
	}
	result.Placed = placed

	log.Infow("Imported captions",
		"path", req.Path,
		"placed", len(placed),
		"skipped", result.Skipped,
		"duplicates", result.Duplicates,
		"fps", conv.FPS,
		"unit", req.Unit,
	)
	return result, nil
}

func inUnit(d time.Duration, unit timeline.Unit) float64 {
	if unit == timeline.UnitSecond {
		return d.Seconds()
	}
	return float64(d) / float64(time.Millisecond)
}

// UnitForPath picks lyric mode for .lrc files and milliseconds otherwise.
func UnitForPath(path string) timeline.Unit {
	if f, ok := subtitle.FormatFromExtension(path); ok && f == subtitle.FormatLRC {
		return timeline.UnitSecond
	}
	return timeline.UnitMillisecond
}
