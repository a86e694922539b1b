package subtitle

import (
	"fmt"
	"io"
	"strings"

	"github.com/gomutex/godocx"
)

const (
	docxFontName = "Times New Roman"
	docxFontSize = 13
)

// TextWriter writes a screenplay: cue texts only, one blank line apart.
type TextWriter struct{}

func (w *TextWriter) Encode(out io.Writer, sub *Subtitle) error {
	texts := make([]string, len(sub.Entries))
	for i, e := range sub.Entries {
		texts[i] = e.Text
	}
	_, err := io.WriteString(out, strings.Join(texts, "\n\n")+"\n")
	return err
}

func (w *TextWriter) Write(sub *Subtitle, path string) error {
	return encodeToFile(w, sub, path)
}

// DocxWriter writes the screenplay as a Word document, one paragraph per cue.
type DocxWriter struct {
	Title string
}

func (w *DocxWriter) Write(sub *Subtitle, path string) error {
	doc, err := godocx.NewDocument()
	if err != nil {
		return fmt.Errorf("failed to create docx document: %w", err)
	}

	if w.Title != "" {
		doc.AddParagraph("").AddText(w.Title).Font(docxFontName).Size(16).Color("000000").Bold(true)
		doc.AddParagraph("")
	}

	for _, e := range sub.Entries {
		p := doc.AddParagraph("")
		for i, line := range splitLines(e.Text) {
			if i > 0 {
				line = " " + line
			}
			run := p.AddText(line).Font(docxFontName).Size(docxFontSize).Color("000000")
			if e.Bold {
				run.Bold(true)
			}
			if e.Italic {
				run.Italic(true)
			}
		}
	}

	if err := ensureDir(path); err != nil {
		return err
	}
	if err := doc.SaveTo(path); err != nil {
		return fmt.Errorf("failed to save docx: %w", err)
	}
	return nil
}
