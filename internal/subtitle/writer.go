package subtitle

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SubRip format
type SRTWriter struct{}

// WebVTT format
type VTTWriter struct{}

// SubStation Alpha, v4.00+ for ass and v4 for ssa
type ASSWriter struct {
	Format   Format
	Title    string
	FontName string
	FontSize int
	PlayResX int
	PlayResY int
}

func NewWriter(format Format, opts Options) (Writer, error) {
	title := opts.Title
	if title == "" {
		title = "subtrack export"
	}

	switch format {
	case FormatSRT:
		return &SRTWriter{}, nil
	case FormatVTT:
		return &VTTWriter{}, nil
	case FormatASS, FormatSSA:
		w := &ASSWriter{
			Format:   format,
			Title:    title,
			FontName: "Arial",
			FontSize: 20,
			PlayResX: opts.Width,
			PlayResY: opts.Height,
		}
		if w.PlayResX <= 0 || w.PlayResY <= 0 {
			w.PlayResX, w.PlayResY = 1920, 1080
		}
		return w, nil
	case FormatMPL2:
		return &MPL2Writer{}, nil
	case FormatTMP:
		return &TMPWriter{}, nil
	case FormatMicroDVD:
		return &MicroDVDWriter{FPS: opts.FPS}, nil
	case FormatLRC:
		return &LRCWriter{}, nil
	case FormatTTML:
		return &TTMLWriter{Title: title}, nil
	case FormatText:
		return &TextWriter{}, nil
	case FormatDocx:
		return &DocxWriter{Title: opts.Title}, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// NewEncoder is NewWriter restricted to formats that can be streamed.
func NewEncoder(format Format, opts Options) (Encoder, error) {
	w, err := NewWriter(format, opts)
	if err != nil {
		return nil, err
	}
	enc, ok := w.(Encoder)
	if !ok {
		return nil, fmt.Errorf("%w: %s can only be written to a file", ErrUnsupportedFormat, format)
	}
	return enc, nil
}

func encodeToFile(enc Encoder, sub *Subtitle, path string) error {
	var buf bytes.Buffer
	if err := enc.Encode(&buf, sub); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}

func (w *SRTWriter) Encode(out io.Writer, sub *Subtitle) error {
	bw := bufio.NewWriter(out)
	for i, entry := range sub.Entries {
		// index (1-based)
		fmt.Fprintf(bw, "%d\n", i+1)

		// timestamps: 00:00:00,000 --> 00:00:00,000
		fmt.Fprintf(bw, "%s --> %s\n",
			formatSRTTime(entry.StartTime),
			formatSRTTime(entry.EndTime))

		bw.WriteString(wrapHTMLStyle(entry))
		bw.WriteString("\n\n")
	}
	return bw.Flush()
}

// writes the subtitle to an SRT file
func (w *SRTWriter) Write(sub *Subtitle, path string) error {
	return encodeToFile(w, sub, path)
}

func (w *VTTWriter) Encode(out io.Writer, sub *Subtitle) error {
	bw := bufio.NewWriter(out)
	bw.WriteString("WEBVTT\n\n")

	for i, entry := range sub.Entries {
		// optional cue identifier
		fmt.Fprintf(bw, "%d\n", i+1)

		// timestamps: 00:00:00.000 --> 00:00:00.000
		fmt.Fprintf(bw, "%s --> %s\n",
			formatVTTTime(entry.StartTime),
			formatVTTTime(entry.EndTime))

		bw.WriteString(wrapHTMLStyle(entry))
		bw.WriteString("\n\n")
	}
	return bw.Flush()
}

// writes the subtitle to a VTT file
func (w *VTTWriter) Write(sub *Subtitle, path string) error {
	return encodeToFile(w, sub, path)
}

// <b><i>text</i></b>, tags wrap the whole cue
func wrapHTMLStyle(e Entry) string {
	text := e.Text
	if e.Italic {
		text = "<i>" + text + "</i>"
	}
	if e.Bold {
		text = "<b>" + text + "</b>"
	}
	return text
}

func (w *ASSWriter) Encode(out io.Writer, sub *Subtitle) error {
	bw := bufio.NewWriter(out)
	ssa := w.Format == FormatSSA

	// script info section
	bw.WriteString("[Script Info]\n")
	fmt.Fprintf(bw, "Title: %s\n", w.Title)
	if ssa {
		bw.WriteString("ScriptType: v4.00\n")
	} else {
		bw.WriteString("ScriptType: v4.00+\n")
	}
	bw.WriteString("Collisions: Normal\n")
	fmt.Fprintf(bw, "PlayResX: %d\n", w.PlayResX)
	fmt.Fprintf(bw, "PlayResY: %d\n", w.PlayResY)
	bw.WriteString("PlayDepth: 0\n\n")

	if ssa {
		bw.WriteString("[V4 Styles]\n")
		bw.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, TertiaryColour, BackColour, Bold, Italic, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, AlphaLevel, Encoding\n")
		for _, s := range assStyles {
			fmt.Fprintf(bw, "Style: %s,%s,%d,16777215,255,0,0,%d,%d,1,2,2,2,10,10,10,0,1\n",
				s.name, w.FontName, w.FontSize, assFlag(s.bold), assFlag(s.italic))
		}
	} else {
		bw.WriteString("[V4+ Styles]\n")
		bw.WriteString("Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding\n")
		for _, s := range assStyles {
			fmt.Fprintf(bw, "Style: %s,%s,%d,&H00FFFFFF,&H000000FF,&H00000000,&H00000000,%d,%d,0,0,100,100,0,0,1,2,2,2,10,10,10,1\n",
				s.name, w.FontName, w.FontSize, assFlag(s.bold), assFlag(s.italic))
		}
	}

	// events section
	bw.WriteString("\n[Events]\n")
	if ssa {
		bw.WriteString("Format: Marked, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	} else {
		bw.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	}

	lead := "0"
	if ssa {
		lead = "Marked=0"
	}
	for _, entry := range sub.Entries {
		fmt.Fprintf(bw, "Dialogue: %s,%s,%s,%s,,0,0,0,,%s%s\n",
			lead,
			formatASSTime(entry.StartTime),
			formatASSTime(entry.EndTime),
			assStyleName(entry),
			w.posTag(entry),
			escapeASSText(entry.Text))
	}

	return bw.Flush()
}

// writes the subtitle to an ASS or SSA file
func (w *ASSWriter) Write(sub *Subtitle, path string) error {
	return encodeToFile(w, sub, path)
}

var assStyles = []struct {
	name         string
	bold, italic bool
}{
	{"Default", false, false},
	{"Italic", false, true},
	{"Bold", true, false},
	{"BoldItalic", true, true},
}

func assStyleName(e Entry) string {
	switch {
	case e.Bold && e.Italic:
		return "BoldItalic"
	case e.Bold:
		return "Bold"
	case e.Italic:
		return "Italic"
	default:
		return "Default"
	}
}

// SubStation booleans are -1 / 0
func assFlag(on bool) int {
	if on {
		return -1
	}
	return 0
}

// normalized positions have their origin bottom-left, \pos counts from the top
func (w *ASSWriter) posTag(e Entry) string {
	if e.Position == nil {
		return ""
	}
	x := math.Round(e.Position.X * float64(w.PlayResX))
	y := math.Round((1 - e.Position.Y) * float64(w.PlayResY))
	return fmt.Sprintf("{\\pos(%d,%d)}", int(x), int(y))
}

func formatSRTTime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	millis := int(d.Milliseconds()) % 1000

	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

func formatVTTTime(d time.Duration) string {
	return strings.Replace(formatSRTTime(d), ",", ".", 1)
}

func formatASSTime(d time.Duration) string {
	hours := int(d.Hours())
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60
	centis := (int(d.Milliseconds()) % 1000) / 10

	return fmt.Sprintf("%d:%02d:%02d.%02d", hours, minutes, seconds, centis)
}

func escapeASSText(text string) string {
	return strings.ReplaceAll(text, "\n", "\\N")
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0755)
}

// file extension for a format
func GetExtensionForFormat(format Format) string {
	switch format {
	case FormatMicroDVD:
		return ".sub"
	case "":
		return ".srt"
	default:
		return "." + string(format)
	}
}

// ParseFormat maps a user supplied format name to a Format.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(name, "."))); f {
	case FormatSRT, FormatVTT, FormatASS, FormatSSA, FormatMPL2, FormatTMP,
		FormatMicroDVD, FormatLRC, FormatTTML, FormatText, FormatDocx:
		return f, nil
	case "sub":
		return FormatMicroDVD, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}
}
