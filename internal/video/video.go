package video

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mgpai22/subtrack/internal/audio"
	"github.com/mgpai22/subtrack/internal/timeline"
)

// video file information
type Info struct {
	Path     string
	Duration time.Duration
	Width    int
	Height   int
	FPS      float64 // r_frame_rate numerator, e.g. 30000
	FPSBase  float64 // r_frame_rate denominator, e.g. 1001
	Codec    string
	HasAudio bool
}

// Scene matching the video, used to place captions frame-accurately.
func (i *Info) Scene() timeline.Scene {
	return timeline.Scene{
		FPS:     i.FPS,
		FPSBase: i.FPSBase,
		Width:   i.Width,
		Height:  i.Height,
	}
}

type probeOutput struct {
	Streams []struct {
		CodecType  string `json:"codec_type"`
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// GetInfo probes the first video stream of path.
func GetInfo(ctx context.Context, tk audio.Toolkit, path string) (*Info, error) {
	out, err := tk.ProbeJSON(ctx, path, "-show_streams", "-show_format")
	if err != nil {
		return nil, err
	}
	return parseProbe(path, out)
}

func parseProbe(path string, data []byte) (*Info, error) {
	var probe probeOutput
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}

	info := &Info{Path: path}
	found := false
	for _, s := range probe.Streams {
		switch s.CodecType {
		case "audio":
			info.HasAudio = true
		case "video":
			if found {
				continue
			}
			found = true
			info.Width, info.Height = s.Width, s.Height
			info.Codec = s.CodecName
			num, den, err := parseRate(s.RFrameRate)
			if err != nil {
				return nil, err
			}
			info.FPS, info.FPSBase = num, den
		}
	}
	if !found {
		return nil, fmt.Errorf("no video stream in %s", path)
	}

	if seconds, err := strconv.ParseFloat(probe.Format.Duration, 64); err == nil {
		info.Duration = time.Duration(seconds * float64(time.Second))
	}
	return info, nil
}

// "30000/1001" or "25"
func parseRate(s string) (float64, float64, error) {
	numStr, denStr, hasDen := strings.Cut(s, "/")
	num, err := strconv.ParseFloat(numStr, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid frame rate %q", s)
	}
	den := 1.0
	if hasDen {
		den, err = strconv.ParseFloat(denStr, 64)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid frame rate %q", s)
		}
	}
	if num <= 0 || den <= 0 {
		return 0, 0, fmt.Errorf("invalid frame rate %q", s)
	}
	return num, den, nil
}
