package project

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/mgpai22/subtrack/internal/cue"
	"github.com/mgpai22/subtrack/internal/timeline"
)

var testScene = timeline.Scene{FPS: 25, FPSBase: 1, Width: 1920, Height: 1080}

func sample() *Document {
	doc := New(testScene)
	doc.Strips = []Strip{
		{Name: "clip.mp4", Kind: KindMedia, Track: 1, Start: 0, End: 500},
		{Name: "Text", Kind: KindText, Track: 2, Start: 100, End: 150, Text: "second", Italic: true, Position: &cue.Position{X: 0.5, Y: 0.1}},
		{Name: "Text.001", Kind: KindText, Track: 2, Start: 10, End: 60, Text: "first"},
		{Name: "Text.002", Kind: KindText, Track: 3, Start: 200, End: 250, Text: "third", Bold: true},
	}
	return doc
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	doc, err := Load(filepath.Join(t.TempDir(), "none.yaml"), testScene)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if doc.Scene() != testScene || len(doc.Strips) != 0 {
		t.Errorf("got %+v", doc)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "project.yaml")
	if err := sample().Save(path); err != nil {
		t.Fatalf("Save error: %v", err)
	}

	doc, err := Load(path, timeline.Scene{FPS: 30})
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if doc.Scene() != testScene {
		t.Errorf("scene: got %+v", doc.Scene())
	}
	s, err := doc.Strip("Text")
	if err != nil {
		t.Fatalf("Strip error: %v", err)
	}
	if !s.Italic || s.Position == nil || s.Position.X != 0.5 {
		t.Errorf("style lost: %+v", s)
	}
}

func TestTextItemsSortedAndMediaOccupies(t *testing.T) {
	doc := sample()

	items := doc.TextItems()
	if len(items) != 3 {
		t.Fatalf("expected 3 text items, got %d", len(items))
	}
	if items[0].Text != "first" || items[2].Text != "third" {
		t.Errorf("order: %q %q %q", items[0].Text, items[1].Text, items[2].Text)
	}
	if len(doc.Spans()) != 4 {
		t.Errorf("media strips must occupy tracks, got %d spans", len(doc.Spans()))
	}
}

func TestCreateNamesAreUnique(t *testing.T) {
	doc := sample()
	err := doc.Create([]timeline.PlacedItem{
		{Track: 4, StartFrame: 0, EndFrame: 10, Text: "a"},
		{Track: 4, StartFrame: 10, EndFrame: 20, Text: "b"},
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	seen := map[string]bool{}
	for _, s := range doc.Strips {
		if seen[s.Name] {
			t.Fatalf("duplicate name %s", s.Name)
		}
		seen[s.Name] = true
	}
	if !seen["Text.003"] || !seen["Text.004"] {
		t.Errorf("expected Text.003 and Text.004, got %v", seen)
	}

	if err := doc.Create([]timeline.PlacedItem{{Track: 0, StartFrame: 0, EndFrame: 1}}); err == nil {
		t.Error("expected error for track 0")
	}
}

func TestAddText(t *testing.T) {
	tests := []struct {
		name      string
		after     string
		frame     int
		wantStart int
		wantEnd   int
		wantTrack int
		italic    bool
	}{
		{"blank at frame", "", 1000, 1000, 1100, 1, false},
		{"blank over media", "", 0, 0, 100, 3, false},
		{"after template", "Text", 100, 150, 200, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := sample()
			s, err := doc.AddText(tt.after, tt.frame)
			if err != nil {
				t.Fatalf("AddText error: %v", err)
			}
			if s.Start != tt.wantStart || s.End != tt.wantEnd || s.Track != tt.wantTrack {
				t.Errorf("got %d-%d track %d", s.Start, s.End, s.Track)
			}
			if s.Italic != tt.italic || s.Text != "Text" {
				t.Errorf("got %+v", s)
			}
		})
	}

	if _, err := sample().AddText("ghost", 0); !errors.Is(err, ErrStripNotFound) {
		t.Errorf("expected ErrStripNotFound, got %v", err)
	}
}

func TestEditOperations(t *testing.T) {
	doc := sample()

	if err := doc.SetText("Text.001", `line one\nline two`); err != nil {
		t.Fatalf("SetText error: %v", err)
	}
	if err := doc.AppendNewline("Text.001"); err != nil {
		t.Fatalf("AppendNewline error: %v", err)
	}
	s, _ := doc.Strip("Text.001")
	if s.Text != "line one\nline two\n" {
		t.Errorf("text: got %q", s.Text)
	}

	if err := doc.SetText("clip.mp4", "x"); err == nil {
		t.Error("expected error editing a media strip")
	}

	if err := doc.CopyStyle("Text", "Text.001", "Text.002"); err != nil {
		t.Fatalf("CopyStyle error: %v", err)
	}
	for _, name := range []string{"Text.001", "Text.002"} {
		s, _ := doc.Strip(name)
		if !s.Italic || s.Bold || s.Position == nil || s.Position.Y != 0.1 {
			t.Errorf("%s: style not copied: %+v", name, s)
		}
	}

	if err := doc.Remove("Text.002"); err != nil {
		t.Fatalf("Remove error: %v", err)
	}
	if err := doc.Remove("Text.002"); !errors.Is(err, ErrStripNotFound) {
		t.Errorf("expected ErrStripNotFound, got %v", err)
	}
}

func TestNeighbor(t *testing.T) {
	doc := sample()

	tests := []struct {
		from string
		step int
		want string
	}{
		{"Text.001", 1, "Text"},
		{"Text", 1, "Text.002"},
		{"Text", -1, "Text.001"},
		{"Text.001", -1, "Text.001"},
		{"Text.002", 1, "Text.002"},
	}
	for _, tt := range tests {
		got, err := doc.Neighbor(tt.from, tt.step)
		if err != nil {
			t.Fatalf("Neighbor error: %v", err)
		}
		if got.Name != tt.want {
			t.Errorf("Neighbor(%s, %d) = %s, want %s", tt.from, tt.step, got.Name, tt.want)
		}
	}
}
