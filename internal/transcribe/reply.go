package transcribe

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/mgpai22/subtrack/internal/subtitle"
)

// segment as the models return it, times in seconds
type rawSegment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

var codeFenceRegex = regexp.MustCompile("```(?:json)?\\s*")

var wrapperKeys = []string{"segments", "transcript", "results", "data"}

// parseTranscript finds the first JSON value holding segments, either a bare
// array or an object wrapping one, ignoring any chatter around it.
func parseTranscript(reply string) ([]subtitle.Segment, error) {
	reply = codeFenceRegex.ReplaceAllString(strings.TrimSpace(reply), "")
	reply = strings.ReplaceAll(reply, "```", "")

	for i := 0; i < len(reply); i++ {
		if reply[i] != '[' && reply[i] != '{' {
			continue
		}
		var raw json.RawMessage
		if err := json.NewDecoder(strings.NewReader(reply[i:])).Decode(&raw); err != nil {
			continue
		}
		if segs, ok := decodeSegments(raw); ok {
			return toSegments(segs), nil
		}
	}
	return nil, fmt.Errorf("no transcript JSON found in response: %s", truncate(reply, 200))
}

func decodeSegments(raw json.RawMessage) ([]rawSegment, bool) {
	var segs []rawSegment
	if err := json.Unmarshal(raw, &segs); err == nil && hasText(segs) {
		return segs, true
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapper); err != nil {
		return nil, false
	}
	for _, key := range wrapperKeys {
		if field, ok := wrapper[key]; ok {
			if err := json.Unmarshal(field, &segs); err == nil && hasText(segs) {
				return segs, true
			}
		}
	}
	return nil, false
}

func hasText(segs []rawSegment) bool {
	for _, s := range segs {
		if strings.TrimSpace(s.Text) != "" {
			return true
		}
	}
	return false
}

// drops blank segments and repairs inverted ranges
func toSegments(raw []rawSegment) []subtitle.Segment {
	out := make([]subtitle.Segment, 0, len(raw))
	for _, r := range raw {
		text := strings.TrimSpace(r.Text)
		if text == "" {
			continue
		}
		start := seconds(r.Start)
		end := max(seconds(r.End), start)
		out = append(out, subtitle.Segment{StartTime: start, EndTime: end, Text: text})
	}
	return out
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
