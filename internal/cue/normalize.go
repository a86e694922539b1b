package cue

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DefaultMinDuration is added to Start when a cue has no usable End.
const DefaultMinDuration = 100

// ErrMalformedDirective reports a position directive that could not be parsed.
var ErrMalformedDirective = errors.New("malformed position directive")

var (
	italicMarkers = []string{"<i>", "</i>", `{\i1}`, `{\i0}`}
	boldMarkers   = []string{"<b>", "</b>", `{\b1}`, `{\b0}`}

	posDirective  = regexp.MustCompile(`\{\\pos\(\s*(-?\d+(?:\.\d+)?)\s*,\s*(-?\d+(?:\.\d+)?)\s*\)\}`)
	overrideBlock = regexp.MustCompile(`\{.*?\}`)
)

// Normalize strips inline markup from raw text into style flags and an
// optional normalized position, and repairs degenerate timing.
func Normalize(raw Raw, res Resolution) (Cue, error) {
	c := Cue{
		Start: raw.Start,
		End:   raw.End,
	}

	text := strings.ReplaceAll(raw.Text, `\N`, "\n")

	text, c.Italic = stripMarkers(text, italicMarkers)
	text, c.Bold = stripMarkers(text, boldMarkers)

	if strings.Contains(text, "{") {
		pos, err := extractPosition(text, res)
		if err != nil {
			return Cue{}, err
		}
		c.Position = pos
		text = overrideBlock.ReplaceAllString(text, "")
	}

	c.Text = text

	if c.End <= c.Start || c.End == 0 {
		c.End = c.Start + DefaultMinDuration
	}

	return c, nil
}

// presence of any marker sets the flag; every marker is removed either way
func stripMarkers(text string, markers []string) (string, bool) {
	found := false
	for _, m := range markers {
		if strings.Contains(text, m) {
			found = true
			text = strings.ReplaceAll(text, m, "")
		}
	}
	return text, found
}

func extractPosition(text string, res Resolution) (*Position, error) {
	// any brace run must carry a \pos directive
	m := posDirective.FindStringSubmatch(text)
	if m == nil {
		return nil, fmt.Errorf("%w in %q", ErrMalformedDirective, text)
	}

	if res.Width <= 0 || res.Height <= 0 {
		return nil, fmt.Errorf(
			"cannot convert position without a frame size (got %dx%d)",
			res.Width,
			res.Height,
		)
	}

	x, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return nil, fmt.Errorf("%w: x %q: %v", ErrMalformedDirective, m[1], err)
	}
	y, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return nil, fmt.Errorf("%w: y %q: %v", ErrMalformedDirective, m[2], err)
	}

	w := float64(res.Width)
	h := float64(res.Height)

	return &Position{
		X: x / w,
		Y: (h - y) / h,
	}, nil
}

// Dedupe drops cues whose start, end and text repeat an earlier cue.
// Order of the remaining cues is preserved.
func Dedupe(cues []Cue) ([]Cue, int) {
	seen := make(map[string]bool, len(cues))
	out := make([]Cue, 0, len(cues))
	dropped := 0
	for _, c := range cues {
		k := c.key()
		if seen[k] {
			dropped++
			continue
		}
		seen[k] = true
		out = append(out, c)
	}
	return out, dropped
}

func formatKey(start, end float64, text string) string {
	return strconv.FormatFloat(start, 'f', -1, 64) + "|" +
		strconv.FormatFloat(end, 'f', -1, 64) + "|" + text
}
