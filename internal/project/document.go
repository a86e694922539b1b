package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mgpai22/subtrack/internal/cue"
	"github.com/mgpai22/subtrack/internal/timeline"
)

var ErrStripNotFound = errors.New("strip not found")

// length of a strip added without a template
const DefaultStripLength = 100

const defaultStripName = "Text"

type Kind string

const (
	KindText  Kind = "text"
	KindMedia Kind = "media"
)

// Strip is one item on the timeline; Start and End are frames, End exclusive.
type Strip struct {
	Name     string        `yaml:"name"`
	Kind     Kind          `yaml:"kind"`
	Track    int           `yaml:"track"`
	Start    int           `yaml:"start"`
	End      int           `yaml:"end"`
	Text     string        `yaml:"text,omitempty"`
	Italic   bool          `yaml:"italic,omitempty"`
	Bold     bool          `yaml:"bold,omitempty"`
	Position *cue.Position `yaml:"position,omitempty"`
}

func (s Strip) Span() timeline.Span {
	return timeline.Span{Track: s.Track, Start: s.Start, End: s.End}
}

func (s Strip) Item() timeline.PlacedItem {
	return timeline.PlacedItem{
		Track:      s.Track,
		StartFrame: s.Start,
		EndFrame:   s.End,
		Text:       s.Text,
		Italic:     s.Italic,
		Bold:       s.Bold,
		Position:   s.Position,
	}
}

// Document is the YAML project file that stands in for the editor timeline.
type Document struct {
	SceneInfo timeline.Scene `yaml:"scene"`
	Strips    []Strip        `yaml:"strips"`
}

func New(scene timeline.Scene) *Document {
	return &Document{SceneInfo: scene}
}

// Load reads a project file. A missing file yields an empty document with
// the given scene.
func Load(path string, defaults timeline.Scene) (*Document, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return New(defaults), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read project: %w", err)
	}

	doc := &Document{}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to parse project %s: %w", path, err)
	}
	if doc.SceneInfo.FPS == 0 {
		doc.SceneInfo.FPS = defaults.FPS
		doc.SceneInfo.FPSBase = defaults.FPSBase
	}
	if doc.SceneInfo.Width == 0 || doc.SceneInfo.Height == 0 {
		doc.SceneInfo.Width = defaults.Width
		doc.SceneInfo.Height = defaults.Height
	}
	for i := range doc.Strips {
		if doc.Strips[i].Kind == "" {
			doc.Strips[i].Kind = KindText
		}
	}
	return doc, nil
}

// Save writes the document through a temporary file in the same directory.
func (d *Document) Save(path string) error {
	data, err := yaml.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode project: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".subtrack-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() {
		_ = os.Remove(tmp.Name())
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write project: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write project: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

func (d *Document) Scene() timeline.Scene {
	return d.SceneInfo
}

func (d *Document) Spans() []timeline.Span {
	spans := make([]timeline.Span, len(d.Strips))
	for i, s := range d.Strips {
		spans[i] = s.Span()
	}
	return spans
}

// Create adds one text strip per placed item.
func (d *Document) Create(items []timeline.PlacedItem) error {
	for _, it := range items {
		if it.Track < 1 {
			return fmt.Errorf("invalid track %d for %q", it.Track, it.Text)
		}
		if it.EndFrame <= it.StartFrame {
			return fmt.Errorf("empty frame range %d-%d for %q", it.StartFrame, it.EndFrame, it.Text)
		}
		d.Strips = append(d.Strips, Strip{
			Name:     d.uniqueName(defaultStripName),
			Kind:     KindText,
			Track:    it.Track,
			Start:    it.StartFrame,
			End:      it.EndFrame,
			Text:     it.Text,
			Italic:   it.Italic,
			Bold:     it.Bold,
			Position: it.Position,
		})
	}
	return nil
}

// TextStrips returns text strips ordered by start frame.
func (d *Document) TextStrips() []Strip {
	var out []Strip
	for _, s := range d.Strips {
		if s.Kind == KindText {
			out = append(out, s)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Start < out[j].Start
	})
	return out
}

func (d *Document) TextItems() []timeline.PlacedItem {
	strips := d.TextStrips()
	items := make([]timeline.PlacedItem, len(strips))
	for i, s := range strips {
		items[i] = s.Item()
	}
	return items
}

func (d *Document) Strip(name string) (Strip, error) {
	i, err := d.index(name)
	if err != nil {
		return Strip{}, err
	}
	return d.Strips[i], nil
}

// AddText places a new text strip on the first free track. With a template
// strip the new one copies its style and length and starts one length after
// frame; otherwise it is DefaultStripLength frames long starting at frame.
func (d *Document) AddText(after string, frame int) (Strip, error) {
	s := Strip{Kind: KindText, Text: defaultStripName, Start: frame, End: frame + DefaultStripLength}

	if after != "" {
		tpl, err := d.Strip(after)
		if err != nil {
			return Strip{}, err
		}
		length := tpl.End - tpl.Start
		s.Start = frame + length
		s.End = frame + 2*length
		s.Italic = tpl.Italic
		s.Bold = tpl.Bold
		s.Position = copyPosition(tpl.Position)
	}

	s.Track = timeline.FindFreeTrack(d.Spans(), s.Start, s.End)
	s.Name = d.uniqueName(defaultStripName)
	d.Strips = append(d.Strips, s)
	return s, nil
}

func (d *Document) Remove(name string) error {
	i, err := d.index(name)
	if err != nil {
		return err
	}
	d.Strips = append(d.Strips[:i], d.Strips[i+1:]...)
	return nil
}

// SetText replaces the text of a strip; a literal \n becomes a line break.
func (d *Document) SetText(name, text string) error {
	i, err := d.textIndex(name)
	if err != nil {
		return err
	}
	d.Strips[i].Text = strings.ReplaceAll(text, `\n`, "\n")
	return nil
}

func (d *Document) AppendNewline(name string) error {
	i, err := d.textIndex(name)
	if err != nil {
		return err
	}
	d.Strips[i].Text += "\n"
	return nil
}

// Neighbor returns the text strip step positions away from name in start
// order. Stepping past either end stays on the current strip.
func (d *Document) Neighbor(name string, step int) (Strip, error) {
	strips := d.TextStrips()
	for i, s := range strips {
		if s.Name != name {
			continue
		}
		j := i + step
		if j < 0 || j >= len(strips) {
			return s, nil
		}
		return strips[j], nil
	}
	return Strip{}, fmt.Errorf("%w: %s", ErrStripNotFound, name)
}

// CopyStyle copies italic, bold and position from one text strip to others.
func (d *Document) CopyStyle(from string, to ...string) error {
	src, err := d.textIndex(from)
	if err != nil {
		return err
	}
	for _, name := range to {
		i, err := d.textIndex(name)
		if err != nil {
			return err
		}
		d.Strips[i].Italic = d.Strips[src].Italic
		d.Strips[i].Bold = d.Strips[src].Bold
		d.Strips[i].Position = copyPosition(d.Strips[src].Position)
	}
	return nil
}

func (d *Document) index(name string) (int, error) {
	for i, s := range d.Strips {
		if s.Name == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %s", ErrStripNotFound, name)
}

func (d *Document) textIndex(name string) (int, error) {
	i, err := d.index(name)
	if err != nil {
		return -1, err
	}
	if d.Strips[i].Kind != KindText {
		return -1, fmt.Errorf("strip %s is not a text strip", name)
	}
	return i, nil
}

// base, base.001, base.002, ...
func (d *Document) uniqueName(base string) string {
	taken := make(map[string]bool, len(d.Strips))
	for _, s := range d.Strips {
		taken[s.Name] = true
	}
	if !taken[base] {
		return base
	}
	for n := 1; ; n++ {
		name := fmt.Sprintf("%s.%03d", base, n)
		if !taken[name] {
			return name
		}
	}
}

func copyPosition(p *cue.Position) *cue.Position {
	if p == nil {
		return nil
	}
	c := *p
	return &c
}
