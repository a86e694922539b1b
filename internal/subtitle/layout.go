package subtitle

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Layout turns transcribed segments into readable cues: long segments are
// split across several entries and each entry wraps onto at most MaxLines.
type Layout struct {
	MaxCharsPerLine int
	MaxLines        int
	MaxDuration     time.Duration
}

func DefaultLayout() Layout {
	return Layout{
		MaxCharsPerLine: 42,
		MaxLines:        2,
		MaxDuration:     7 * time.Second,
	}
}

// Entries lays segments out in order, numbering from 1.
func (l Layout) Entries(segments []Segment) []Entry {
	var entries []Entry
	for _, seg := range segments {
		text := strings.Join(strings.Fields(seg.Text), " ")
		if text == "" {
			continue
		}
		for _, piece := range l.split(text, seg.StartTime, seg.EndTime) {
			piece.Index = len(entries) + 1
			entries = append(entries, piece)
		}
	}
	return entries
}

// splits on word boundaries, sharing the duration evenly between pieces
func (l Layout) split(text string, start, end time.Duration) []Entry {
	maxChars := l.MaxCharsPerLine * l.MaxLines
	total := end - start

	pieces := 1
	if maxChars > 0 {
		pieces = max(pieces, (utf8.RuneCountInString(text)+maxChars-1)/maxChars)
	}
	if l.MaxDuration > 0 && total > l.MaxDuration {
		pieces = max(pieces, int(total/l.MaxDuration)+1)
	}

	words := strings.Fields(text)
	pieces = min(pieces, len(words))
	perPiece := (len(words) + pieces - 1) / pieces
	step := total / time.Duration(pieces)

	var out []Entry
	cursor := start
	for len(words) > 0 {
		n := min(perPiece, len(words))
		chunk := strings.Join(words[:n], " ")
		words = words[n:]

		pieceEnd := cursor + step
		if len(words) == 0 {
			pieceEnd = end
		}
		out = append(out, Entry{StartTime: cursor, EndTime: pieceEnd, Text: l.wrap(chunk)})
		cursor = pieceEnd
	}
	return out
}

// breaks text into two lines at the word boundary closest to its middle
func (l Layout) wrap(text string) string {
	runes := utf8.RuneCountInString(text)
	if l.MaxCharsPerLine <= 0 || runes <= l.MaxCharsPerLine {
		return text
	}
	words := strings.Fields(text)
	if len(words) < 2 {
		return text
	}

	middle := runes / 2
	best, bestDiff := 0, runes
	length := 0
	for i, w := range words[:len(words)-1] {
		if i > 0 {
			length++
		}
		length += utf8.RuneCountInString(w)
		diff := length - middle
		if diff < 0 {
			diff = -diff
		}
		if diff < bestDiff {
			best, bestDiff = i+1, diff
		}
	}
	return strings.Join(words[:best], " ") + "\n" + strings.Join(words[best:], " ")
}
