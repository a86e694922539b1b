package subtitle

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

const lrcLastLineDuration = 3 * time.Second

var lrcTagRegex = regexp.MustCompile(`^\[(\d+):(\d{1,2})(?:[.:](\d{1,3}))?\]`)

// lines may repeat under several [mm:ss.xx] tags; [ar:..] style metadata is ignored
func parseLRC(r io.Reader, opts Options) (*plainFile, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		rest := strings.TrimSpace(scanner.Text())

		var starts []time.Duration
		for {
			m := lrcTagRegex.FindStringSubmatch(rest)
			if m == nil {
				break
			}
			starts = append(starts, lrcTimestamp(m[1], m[2], m[3]))
			rest = rest[len(m[0]):]
		}

		text := strings.TrimSpace(rest)
		if len(starts) == 0 || text == "" {
			continue
		}
		for _, start := range starts {
			entries = append(entries, Entry{StartTime: start, Text: text})
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading LRC file: %w", err)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].StartTime < entries[j].StartTime
	})
	for i := range entries {
		entries[i].Index = i + 1
	}
	chainEndTimes(entries, lrcLastLineDuration)

	return &plainFile{format: FormatLRC, entries: entries, opts: opts}, nil
}

func lrcTimestamp(minutes, seconds, fraction string) time.Duration {
	m, _ := strconv.Atoi(minutes)
	s, _ := strconv.Atoi(seconds)
	d := time.Duration(m)*time.Minute + time.Duration(s)*time.Second
	if fraction == "" {
		return d
	}
	f, _ := strconv.Atoi(fraction)
	switch len(fraction) {
	case 1:
		return d + time.Duration(f)*100*time.Millisecond
	case 2:
		return d + time.Duration(f)*10*time.Millisecond
	default:
		return d + time.Duration(f)*time.Millisecond
	}
}

// LRCWriter writes one timed lyric line per entry.
type LRCWriter struct{}

func (w *LRCWriter) Encode(out io.Writer, sub *Subtitle) error {
	bw := bufio.NewWriter(out)
	for _, e := range sub.Entries {
		cs := e.StartTime.Milliseconds() / 10
		if _, err := fmt.Fprintf(bw, "[%02d:%02d.%02d]%s\n",
			cs/6000,
			(cs/100)%60,
			cs%100,
			strings.Join(splitLines(e.Text), " "),
		); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (w *LRCWriter) Write(sub *Subtitle, path string) error {
	return encodeToFile(w, sub, path)
}
