package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// [start][end] in deciseconds, | separates lines, a leading / marks an italic line
var mpl2LineRegex = regexp.MustCompile(`^\[(\d+)\]\[(\d*)\](.*)$`)

func parseMPL2(r io.Reader, opts Options) (*plainFile, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lineNum++
		if line == "" {
			continue
		}

		m := mpl2LineRegex.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("invalid MPL2 line %d: %q", lineNum, line)
		}

		start, _ := strconv.Atoi(m[1])
		end := 0
		if m[2] != "" {
			end, _ = strconv.Atoi(m[2])
		}

		text, italic := unslashLines(m[3])
		if text == "" {
			continue
		}
		entries = append(entries, Entry{
			Index:     len(entries) + 1,
			StartTime: time.Duration(start) * 100 * time.Millisecond,
			EndTime:   time.Duration(end) * 100 * time.Millisecond,
			Text:      text,
			Italic:    italic,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading MPL2 file: %w", err)
	}

	return &plainFile{format: FormatMPL2, entries: entries, opts: opts}, nil
}

func unslashLines(raw string) (string, bool) {
	lines := strings.Split(raw, "|")
	italic := false
	for i, l := range lines {
		if strings.HasPrefix(l, "/") {
			italic = true
			l = l[1:]
		}
		lines[i] = strings.TrimSpace(l)
	}
	return strings.TrimSpace(strings.Join(lines, "\n")), italic
}

// MPL2Writer writes MPL2 with decisecond timing.
type MPL2Writer struct{}

func (w *MPL2Writer) Encode(out io.Writer, sub *Subtitle) error {
	bw := bufio.NewWriter(out)
	for _, e := range sub.Entries {
		lines := splitLines(e.Text)
		if e.Italic {
			for i := range lines {
				lines[i] = "/" + lines[i]
			}
		}
		if _, err := fmt.Fprintf(bw, "[%d][%d]%s\n",
			e.StartTime.Milliseconds()/100,
			e.EndTime.Milliseconds()/100,
			strings.Join(lines, "|"),
		); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (w *MPL2Writer) Write(sub *Subtitle, path string) error {
	return encodeToFile(w, sub, path)
}

func splitLines(text string) []string {
	return strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
}
