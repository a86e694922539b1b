package subtitle

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var leadingTagsRegex = regexp.MustCompile(`^(\{[^}]*\})+`)

// single Dialogue line split into its columns
type ASSDialogue struct {
	Fields          []string
	Text            string
	LeadingTags     string
	TextWithoutTags string
}

// SubStation file that keeps every non dialogue line so it can be written back untouched
type ASSFile struct {
	format         Format
	header         []string
	formatLine     string
	columns        []string
	textColumn     int
	startColumn    int
	endColumn      int
	dialogues      []ASSDialogue
	trailingEvents []string
	playResX       int
	playResY       int
}

func parseASS(r io.Reader, format Format) (*ASSFile, error) {
	f := &ASSFile{
		format:      format,
		textColumn:  -1,
		startColumn: -1,
		endColumn:   -1,
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	inEvents := false
	lineNum := 0

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		lineNum++
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]") {
			section := strings.ToLower(trimmed[1 : len(trimmed)-1])
			inEvents = section == "events"
			f.header = append(f.header, line)
			continue
		}

		if !inEvents {
			f.readScriptInfo(trimmed)
			f.header = append(f.header, line)
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "Format:"):
			if err := f.setColumns(line, trimmed); err != nil {
				return nil, err
			}
		case strings.HasPrefix(trimmed, "Dialogue:"):
			d, err := f.parseDialogue(trimmed)
			if err != nil {
				return nil, fmt.Errorf("failed to parse Dialogue at line %d: %w", lineNum, err)
			}
			f.dialogues = append(f.dialogues, d)
		default:
			f.trailingEvents = append(f.trailingEvents, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading %s file: %w", strings.ToUpper(string(format)), err)
	}

	if f.formatLine == "" {
		return nil, fmt.Errorf("%s file missing Format line in [Events] section", strings.ToUpper(string(format)))
	}

	return f, nil
}

func (f *ASSFile) readScriptInfo(trimmed string) {
	key, value, ok := strings.Cut(trimmed, ":")
	if !ok {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return
	}
	switch strings.TrimSpace(key) {
	case "PlayResX":
		f.playResX = n
	case "PlayResY":
		f.playResY = n
	}
}

func (f *ASSFile) setColumns(line, trimmed string) error {
	f.formatLine = line
	columns := strings.Split(strings.TrimPrefix(trimmed, "Format:"), ",")
	for i, col := range columns {
		columns[i] = strings.TrimSpace(col)
		switch strings.ToLower(columns[i]) {
		case "text":
			f.textColumn = i
		case "start":
			f.startColumn = i
		case "end":
			f.endColumn = i
		}
	}
	f.columns = columns

	if f.textColumn == -1 {
		return fmt.Errorf("%s file missing Text column in Format line", strings.ToUpper(string(f.format)))
	}
	return nil
}

func (f *ASSFile) parseDialogue(trimmed string) (ASSDialogue, error) {
	if len(f.columns) == 0 {
		return ASSDialogue{}, fmt.Errorf("format columns not parsed yet")
	}

	content := strings.TrimSpace(strings.TrimPrefix(trimmed, "Dialogue:"))
	fields := splitASSFields(content, len(f.columns))
	if len(fields) < len(f.columns) {
		return ASSDialogue{}, fmt.Errorf("expected %d fields, got %d", len(f.columns), len(fields))
	}

	d := ASSDialogue{Fields: fields, Text: fields[f.textColumn]}
	d.LeadingTags = leadingTagsRegex.FindString(d.Text)
	d.TextWithoutTags = d.Text[len(d.LeadingTags):]
	return d, nil
}

// the text column is last and may itself contain commas
func splitASSFields(content string, numFields int) []string {
	if numFields <= 0 {
		return nil
	}
	return strings.SplitN(content, ",", numFields)
}

func (f *ASSFile) Format() Format {
	return f.format
}

// PlayRes returns the script resolution declared in [Script Info], zero when absent.
func (f *ASSFile) PlayRes() (int, int) {
	return f.playResX, f.playResY
}

// entries keep override blocks and \N breaks so the normalizer sees the source markup
func (f *ASSFile) Subtitle() *Subtitle {
	entries := make([]Entry, len(f.dialogues))
	for i, d := range f.dialogues {
		entries[i] = Entry{
			Index:     i + 1,
			StartTime: f.column(d, f.startColumn),
			EndTime:   f.column(d, f.endColumn),
			Text:      d.Text,
		}
	}

	return &Subtitle{Entries: entries, Format: string(f.format)}
}

func (f *ASSFile) column(d ASSDialogue, idx int) time.Duration {
	if idx < 0 || idx >= len(d.Fields) {
		return 0
	}
	return parseASSTimestamp(d.Fields[idx])
}

func parseASSTimestamp(ts string) time.Duration {
	hours, rest, ok := strings.Cut(strings.TrimSpace(ts), ":")
	if !ok {
		return 0
	}
	minutes, rest, ok := strings.Cut(rest, ":")
	if !ok {
		return 0
	}
	seconds, centis, ok := strings.Cut(rest, ".")
	if !ok {
		return 0
	}

	d, err := parseClock(hours, minutes, seconds, "0")
	if err != nil {
		return 0
	}
	cs, err := strconv.Atoi(centis)
	if err != nil {
		return 0
	}
	return d + time.Duration(cs)*10*time.Millisecond
}

func (f *ASSFile) checkIndex(index int) error {
	if index < 0 || index >= len(f.dialogues) {
		return fmt.Errorf("index %d out of range (0-%d)", index, len(f.dialogues)-1)
	}
	return nil
}

func (f *ASSFile) SetText(index int, text string) error {
	if err := f.checkIndex(index); err != nil {
		return err
	}

	assText := strings.ReplaceAll(text, "\n", "\\N")
	f.dialogues[index].Text = f.dialogues[index].LeadingTags + assText
	f.dialogues[index].TextWithoutTags = assText
	return nil
}

// SetTextWithOverlay puts the translation above the original line.
func (f *ASSFile) SetTextWithOverlay(index int, translated string) error {
	if err := f.checkIndex(index); err != nil {
		return err
	}

	d := &f.dialogues[index]
	d.Text = d.LeadingTags + strings.ReplaceAll(translated, "\n", "\\N") + "\\N" + d.TextWithoutTags
	return nil
}

// GetOriginalText returns the dialogue text without its leading override tags.
func (f *ASSFile) GetOriginalText(index int) (string, error) {
	if err := f.checkIndex(index); err != nil {
		return "", err
	}
	return f.dialogues[index].TextWithoutTags, nil
}

func (f *ASSFile) Encode(w io.Writer) error {
	bw := bufio.NewWriter(w)

	for _, line := range f.header {
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	if _, err := bw.WriteString(f.formatLine + "\n"); err != nil {
		return err
	}
	for _, d := range f.dialogues {
		fields := append([]string(nil), d.Fields...)
		fields[f.textColumn] = d.Text
		if _, err := bw.WriteString("Dialogue: " + strings.Join(fields, ",") + "\n"); err != nil {
			return err
		}
	}
	for _, line := range f.trailingEvents {
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}

	return bw.Flush()
}

func (f *ASSFile) Write(path string) error {
	var buf bytes.Buffer
	if err := f.Encode(&buf); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}

func writeFile(path string, data []byte) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
