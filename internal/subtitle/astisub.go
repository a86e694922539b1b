package subtitle

import (
	"fmt"
	"io"
	"strings"

	"github.com/asticode/go-astisub"
)

func openSTL(path string, opts Options) (*plainFile, error) {
	subs, err := astisub.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to parse STL file: %w", err)
	}
	return fromAstisub(subs, FormatSTL, opts), nil
}

// readTTML expects UTF-8 input without a BOM
func readTTML(r io.Reader, opts Options) (*plainFile, error) {
	subs, err := astisub.ReadFromTTML(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse TTML file: %w", err)
	}
	return fromAstisub(subs, FormatTTML, opts), nil
}

func fromAstisub(subs *astisub.Subtitles, format Format, opts Options) *plainFile {
	entries := make([]Entry, 0, len(subs.Items))
	for _, item := range subs.Items {
		text := itemText(item)
		if text == "" {
			continue
		}
		entries = append(entries, Entry{
			Index:     len(entries) + 1,
			StartTime: item.StartAt,
			EndTime:   item.EndAt,
			Text:      text,
		})
	}

	return &plainFile{format: format, entries: entries, opts: opts}
}

func itemText(item *astisub.Item) string {
	lines := make([]string, 0, len(item.Lines))
	for _, line := range item.Lines {
		var sb strings.Builder
		for j, li := range line.Items {
			if j > 0 {
				sb.WriteRune(' ')
			}
			sb.WriteString(strings.TrimSpace(li.Text))
		}
		if s := strings.TrimSpace(sb.String()); s != "" {
			lines = append(lines, s)
		}
	}
	return strings.Join(lines, "\n")
}

// TTMLWriter serializes through go-astisub.
type TTMLWriter struct {
	Title string
}

const emptyTTML = `<?xml version="1.0" encoding="UTF-8"?>
<tt xmlns="http://www.w3.org/ns/ttml"><body><div></div></body></tt>
`

func (w *TTMLWriter) Encode(out io.Writer, sub *Subtitle) error {
	// go-astisub refuses to write a document without items
	if len(sub.Entries) == 0 {
		_, err := io.WriteString(out, emptyTTML)
		return err
	}

	subs := astisub.NewSubtitles()
	subs.Metadata = &astisub.Metadata{Title: w.Title}

	for _, e := range sub.Entries {
		item := &astisub.Item{StartAt: e.StartTime, EndAt: e.EndTime}
		for _, l := range splitLines(e.Text) {
			item.Lines = append(item.Lines, astisub.Line{
				Items: []astisub.LineItem{{Text: l}},
			})
		}
		subs.Items = append(subs.Items, item)
	}

	return subs.WriteToTTML(out)
}

func (w *TTMLWriter) Write(sub *Subtitle, path string) error {
	return encodeToFile(w, sub, path)
}
