package cue

import (
	"errors"
	"math"
	"testing"
)

var fullHD = Resolution{Width: 1920, Height: 1080}

func TestNormalizePlainCue(t *testing.T) {
	raw := Raw{Start: 1000, End: 2500, Text: "Hello there"}

	c, err := Normalize(raw, fullHD)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if c.Text != "Hello there" {
		t.Errorf("text: got %q, want %q", c.Text, "Hello there")
	}
	if c.Italic || c.Bold {
		t.Errorf("expected no style flags, got italic=%v bold=%v", c.Italic, c.Bold)
	}
	if c.Position != nil {
		t.Errorf("expected no position, got %+v", c.Position)
	}
	if c.Start != 1000 || c.End != 2500 {
		t.Errorf("timing changed: got %v-%v", c.Start, c.End)
	}
}

func TestNormalizeMarkup(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		wantText   string
		wantItalic bool
		wantBold   bool
	}{
		{
			name:       "html italic pair",
			text:       "<i>whisper</i>",
			wantText:   "whisper",
			wantItalic: true,
		},
		{
			name:       "ass italic toggles",
			text:       `{\i1}soft{\i0} loud`,
			wantText:   "soft loud",
			wantItalic: true,
		},
		{
			name:       "unpaired closing tag",
			text:       "trailing</i>",
			wantText:   "trailing",
			wantItalic: true,
		},
		{
			name:     "html bold",
			text:     "<b>STOP</b>",
			wantText: "STOP",
			wantBold: true,
		},
		{
			name:       "bold and italic mixed",
			text:       `{\b1}<i>both</i>{\b0}`,
			wantText:   "both",
			wantItalic: true,
			wantBold:   true,
		},
		{
			name:     "line break escape",
			text:     `first\Nsecond`,
			wantText: "first\nsecond",
		},
		{
			name:     "override blocks next to a position are removed",
			text:     `{\pos(10,20)}{\an8}{\fs24}top line`,
			wantText: "top line",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Normalize(Raw{Start: 0, End: 10, Text: tt.text}, fullHD)
			if err != nil {
				t.Fatalf("Normalize returned error: %v", err)
			}
			if c.Text != tt.wantText {
				t.Errorf("text: got %q, want %q", c.Text, tt.wantText)
			}
			if c.Italic != tt.wantItalic {
				t.Errorf("italic: got %v, want %v", c.Italic, tt.wantItalic)
			}
			if c.Bold != tt.wantBold {
				t.Errorf("bold: got %v, want %v", c.Bold, tt.wantBold)
			}
		})
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		`<i>one</i>\Ntwo`,
		`{\pos(10,20)}{\b1}three`,
		"plain",
	}

	for _, in := range inputs {
		first, err := Normalize(Raw{Start: 0, End: 10, Text: in}, fullHD)
		if err != nil {
			t.Fatalf("first Normalize(%q) error: %v", in, err)
		}
		second, err := Normalize(Raw{Start: 0, End: 10, Text: first.Text}, fullHD)
		if err != nil {
			t.Fatalf("second Normalize(%q) error: %v", first.Text, err)
		}
		if second.Text != first.Text {
			t.Errorf("not idempotent for %q: %q then %q", in, first.Text, second.Text)
		}
	}
}

func TestNormalizePosition(t *testing.T) {
	tests := []struct {
		text  string
		res   Resolution
		wantX float64
		wantY float64
	}{
		{`{\pos(960,1080)}Center bottom`, fullHD, 0.5, 0.0},
		{`{\pos(0,0)}Top left`, fullHD, 0.0, 1.0},
		{`{\pos(640,180)}Quarter`, Resolution{Width: 1280, Height: 720}, 0.5, 0.75},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			c, err := Normalize(Raw{Start: 0, End: 10, Text: tt.text}, tt.res)
			if err != nil {
				t.Fatalf("Normalize returned error: %v", err)
			}
			if c.Position == nil {
				t.Fatal("expected a position")
			}
			if math.Abs(c.Position.X-tt.wantX) > 1e-9 {
				t.Errorf("x: got %v, want %v", c.Position.X, tt.wantX)
			}
			if math.Abs(c.Position.Y-tt.wantY) > 1e-9 {
				t.Errorf("y: got %v, want %v", c.Position.Y, tt.wantY)
			}
			if c.Text == tt.text {
				t.Errorf("directive was not stripped from %q", c.Text)
			}
		})
	}
}

func TestNormalizeMalformedDirective(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"bad pos arguments", `{\pos(abc)}Broken`},
		{"alignment only", `{\an8}Top`},
		{"font size only", `{\fs24}Big`},
		{"plain braces", "{braced} text"},
		{"unclosed brace", "{oops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(Raw{Start: 0, End: 10, Text: tt.text}, fullHD)
			if !errors.Is(err, ErrMalformedDirective) {
				t.Fatalf("expected ErrMalformedDirective, got %v", err)
			}
		})
	}
}

func TestNormalizePositionNeedsResolution(t *testing.T) {
	_, err := Normalize(Raw{Start: 0, End: 10, Text: `{\pos(1,1)}x`}, Resolution{})
	if err == nil {
		t.Fatal("expected error for zero resolution")
	}
}

func TestNormalizeTimingFallback(t *testing.T) {
	tests := []struct {
		name             string
		start, end, want float64
	}{
		{"equal", 500, 500, 600},
		{"inverted", 900, 200, 1000},
		{"missing end", 0, 0, 100},
		{"valid", 100, 400, 400},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Normalize(Raw{Start: tt.start, End: tt.end, Text: "x"}, fullHD)
			if err != nil {
				t.Fatalf("Normalize returned error: %v", err)
			}
			if c.End != tt.want {
				t.Errorf("end: got %v, want %v", c.End, tt.want)
			}
		})
	}
}

func TestDedupe(t *testing.T) {
	cues := []Cue{
		{Start: 0, End: 10, Text: "a"},
		{Start: 0, End: 10, Text: "a"},
		{Start: 0, End: 10, Text: "b"},
		{Start: 20, End: 30, Text: "a"},
	}

	got, dropped := Dedupe(cues)
	if dropped != 1 {
		t.Errorf("dropped: got %d, want 1", dropped)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 cues, got %d", len(got))
	}
	if got[1].Text != "b" || got[2].Start != 20 {
		t.Errorf("order not preserved: %+v", got)
	}
}
