package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"
)

// TMP lines carry only a start time, so a cue lasts until the next one
const tmpLastCueDuration = 3 * time.Second

var tmpLineRegex = regexp.MustCompile(`^(\d{1,2}):(\d{2}):(\d{2})[:=](.*)$`)

func parseTMP(r io.Reader, opts Options) (*plainFile, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lineNum++
		if line == "" {
			continue
		}

		m := tmpLineRegex.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("invalid TMP line %d: %q", lineNum, line)
		}
		start, err := parseClock(m[1], m[2], m[3], "0")
		if err != nil {
			return nil, fmt.Errorf("invalid TMP timestamp at line %d: %w", lineNum, err)
		}

		text := strings.TrimSpace(strings.ReplaceAll(m[4], "|", "\n"))
		if text == "" {
			continue
		}
		entries = append(entries, Entry{
			Index:     len(entries) + 1,
			StartTime: start,
			Text:      text,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading TMP file: %w", err)
	}

	chainEndTimes(entries, tmpLastCueDuration)
	return &plainFile{format: FormatTMP, entries: entries, opts: opts}, nil
}

// ends each entry where the next one starts; entries must be sorted by start
func chainEndTimes(entries []Entry, last time.Duration) {
	for i := range entries {
		if i+1 < len(entries) {
			entries[i].EndTime = entries[i+1].StartTime
		} else {
			entries[i].EndTime = entries[i].StartTime + last
		}
	}
}

// TMPWriter writes TMPlayer lines, end times are not representable.
type TMPWriter struct{}

func (w *TMPWriter) Encode(out io.Writer, sub *Subtitle) error {
	bw := bufio.NewWriter(out)
	for _, e := range sub.Entries {
		total := int(e.StartTime / time.Second)
		if _, err := fmt.Fprintf(bw, "%02d:%02d:%02d:%s\n",
			total/3600,
			(total/60)%60,
			total%60,
			strings.Join(splitLines(e.Text), "|"),
		); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (w *TMPWriter) Write(sub *Subtitle, path string) error {
	return encodeToFile(w, sub, path)
}
