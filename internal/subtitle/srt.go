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

var srtTimestampRegex = regexp.MustCompile(
	`(\d{1,2}):(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(\d{1,2}):(\d{2}):(\d{2})[,.](\d{3})`,
)

func parseSRT(r io.Reader, opts Options) (*plainFile, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)

	var current *Entry
	timed := false
	var textLines []string
	lineNum := 0

	flush := func() {
		if current != nil && timed && len(textLines) > 0 {
			current.Text = strings.Join(textLines, "\n")
			entries = append(entries, *current)
		}
		current = nil
		timed = false
		textLines = nil
	}

	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		lineNum++

		// a blank line ends a timed block; one without text is dropped
		if strings.TrimSpace(line) == "" {
			if timed {
				flush()
			}
			continue
		}

		if current == nil {
			if index, err := strconv.Atoi(strings.TrimSpace(line)); err == nil {
				current = &Entry{Index: index}
				continue
			}
		}

		if !timed {
			if matches := srtTimestampRegex.FindStringSubmatch(line); len(matches) == 9 {
				if current == nil {
					current = &Entry{Index: len(entries) + 1}
				}
				start, err := parseClock(matches[1], matches[2], matches[3], matches[4])
				if err != nil {
					return nil, fmt.Errorf(
						"invalid start timestamp at line %d: %w",
						lineNum,
						err,
					)
				}
				end, err := parseClock(matches[5], matches[6], matches[7], matches[8])
				if err != nil {
					return nil, fmt.Errorf(
						"invalid end timestamp at line %d: %w",
						lineNum,
						err,
					)
				}
				current.StartTime = start
				current.EndTime = end
				timed = true
				continue
			}
		}

		if timed {
			textLines = append(textLines, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading SRT file: %w", err)
	}
	flush()

	return &plainFile{format: FormatSRT, entries: entries, opts: opts}, nil
}

// hours, minutes, seconds and milliseconds as captured by a timestamp regex
func parseClock(hours, minutes, seconds, millis string) (time.Duration, error) {
	h, err := strconv.Atoi(hours)
	if err != nil {
		return 0, err
	}
	m, err := strconv.Atoi(minutes)
	if err != nil {
		return 0, err
	}
	s, err := strconv.Atoi(seconds)
	if err != nil {
		return 0, err
	}
	ms, err := strconv.Atoi(millis)
	if err != nil {
		return 0, err
	}

	return time.Duration(h)*time.Hour +
		time.Duration(m)*time.Minute +
		time.Duration(s)*time.Second +
		time.Duration(ms)*time.Millisecond, nil
}
