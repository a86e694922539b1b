package subtitle

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var ErrFrameRateRequired = errors.New("frame based subtitle format needs a frame rate")

var (
	microDVDLineRegex    = regexp.MustCompile(`^\{(\d+)\}\{(\d*)\}(.*)$`)
	microDVDControlRegex = regexp.MustCompile(`\{([a-zA-Z]):([^}]*)\}`)
)

func parseMicroDVD(r io.Reader, opts Options) (*plainFile, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	fps := opts.FPS
	lineNum := 0

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lineNum++
		if line == "" {
			continue
		}

		m := microDVDLineRegex.FindStringSubmatch(line)
		if m == nil {
			return nil, fmt.Errorf("invalid MicroDVD line %d: %q", lineNum, line)
		}
		startFrame, _ := strconv.Atoi(m[1])
		endFrame := 0
		if m[2] != "" {
			endFrame, _ = strconv.Atoi(m[2])
		}

		// {1}{1}23.976 declares the frame rate of the file
		if len(entries) == 0 && startFrame == 1 && endFrame == 1 {
			if declared, err := strconv.ParseFloat(strings.TrimSpace(m[3]), 64); err == nil {
				if fps <= 0 {
					fps = declared
				}
				continue
			}
		}

		if fps <= 0 {
			return nil, ErrFrameRateRequired
		}

		text, italic, bold := stripMicroDVDControls(m[3])
		if text == "" {
			continue
		}
		entries = append(entries, Entry{
			Index:     len(entries) + 1,
			StartTime: frameDuration(startFrame, fps),
			EndTime:   frameDuration(endFrame, fps),
			Text:      text,
			Italic:    italic,
			Bold:      bold,
		})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading MicroDVD file: %w", err)
	}

	opts.FPS = fps
	return &plainFile{format: FormatMicroDVD, entries: entries, opts: opts}, nil
}

func stripMicroDVDControls(raw string) (string, bool, bool) {
	italic, bold := false, false
	for _, m := range microDVDControlRegex.FindAllStringSubmatch(raw, -1) {
		if strings.EqualFold(m[1], "y") {
			styles := strings.ToLower(m[2])
			italic = italic || strings.Contains(styles, "i")
			bold = bold || strings.Contains(styles, "b")
		}
	}
	text := microDVDControlRegex.ReplaceAllString(raw, "")
	return strings.TrimSpace(strings.ReplaceAll(text, "|", "\n")), italic, bold
}

func frameDuration(frame int, fps float64) time.Duration {
	return time.Duration(math.Round(float64(frame) / fps * float64(time.Second)))
}

// MicroDVDWriter writes frame numbered cues at the given rate.
type MicroDVDWriter struct {
	FPS float64
}

func (w *MicroDVDWriter) Encode(out io.Writer, sub *Subtitle) error {
	if w.FPS <= 0 {
		return ErrFrameRateRequired
	}

	bw := bufio.NewWriter(out)
	if _, err := fmt.Fprintf(bw, "{1}{1}%s\n", strconv.FormatFloat(w.FPS, 'f', -1, 64)); err != nil {
		return err
	}
	for _, e := range sub.Entries {
		prefix := ""
		if e.Italic {
			prefix += "{y:i}"
		}
		if e.Bold {
			prefix += "{y:b}"
		}
		if _, err := fmt.Fprintf(bw, "{%d}{%d}%s%s\n",
			int(math.Round(e.StartTime.Seconds()*w.FPS)),
			int(math.Round(e.EndTime.Seconds()*w.FPS)),
			prefix,
			strings.Join(splitLines(e.Text), "|"),
		); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func (w *MicroDVDWriter) Write(sub *Subtitle, path string) error {
	return encodeToFile(w, sub, path)
}
