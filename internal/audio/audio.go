package audio

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	ffmpegbin "github.com/mgpai22/subtrack/internal/ffmpeg"
)

// ErrFileNotFound is returned for missing media inputs.
var ErrFileNotFound = errors.New("media file not found")

// audio chunk info
type ChunkInfo struct {
	Path      string
	Index     int
	StartTime time.Duration
	EndTime   time.Duration
}

// settings for audio extraction
type ExtractOptions struct {
	Format     string // mp3, aac, flac or wav
	SampleRate int    // Hz
	Channels   int    // 1 = mono, 2 = stereo
	Bitrate    string // lossy formats only, e.g. "64k"
}

// small mono mp3, enough for speech recognition
func DefaultExtractOptions() ExtractOptions {
	return ExtractOptions{
		Format:     "mp3",
		SampleRate: 16000,
		Channels:   1,
		Bitrate:    "64k",
	}
}

// Toolkit runs ffmpeg and ffprobe from the resolved binary paths.
type Toolkit struct {
	Bin ffmpegbin.BinaryPaths
}

type ffprobeFormat struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// Duration of an audio or video file.
func (tk Toolkit) Duration(ctx context.Context, path string) (time.Duration, error) {
	if err := requireFile(path); err != nil {
		return 0, err
	}

	out, err := tk.probe(ctx, path, "-show_format")
	if err != nil {
		return 0, err
	}

	var probe ffprobeFormat
	if err := json.Unmarshal(out, &probe); err != nil {
		return 0, fmt.Errorf("failed to parse ffprobe output: %w", err)
	}
	seconds, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}
	return time.Duration(seconds * float64(time.Second)), nil
}

// probe runs ffprobe with JSON output and returns stdout.
func (tk Toolkit) probe(ctx context.Context, path string, args ...string) ([]byte, error) {
	full := append([]string{"-v", "quiet", "-print_format", "json"}, args...)
	full = append(full, path)

	cmd := exec.CommandContext(ctx, tk.Bin.FFprobe, full...)
	var out bytes.Buffer
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}
	return out.Bytes(), nil
}

// ProbeJSON exposes raw ffprobe JSON for callers decoding other sections.
func (tk Toolkit) ProbeJSON(ctx context.Context, path string, args ...string) ([]byte, error) {
	if err := requireFile(path); err != nil {
		return nil, err
	}
	return tk.probe(ctx, path, args...)
}

// Extract drops any video stream and re-encodes the audio.
func (tk Toolkit) Extract(ctx context.Context, inputPath, outputPath string, opts ExtractOptions) error {
	if err := requireFile(inputPath); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	kwargs := ffmpeg.KwArgs{
		"vn": "",
		"ar": opts.SampleRate,
		"ac": opts.Channels,
	}
	switch opts.Format {
	case "aac":
		kwargs["acodec"] = "aac"
	case "flac":
		kwargs["acodec"] = "flac"
	case "wav":
		kwargs["acodec"] = "pcm_s16le"
	default:
		kwargs["acodec"] = "libmp3lame"
	}
	if opts.Bitrate != "" && (opts.Format == "mp3" || opts.Format == "aac" || opts.Format == "") {
		kwargs["b:a"] = opts.Bitrate
	}

	if err := tk.run(ctx, inputPath, outputPath, kwargs); err != nil {
		return fmt.Errorf("audio extraction failed: %w", err)
	}
	return nil
}

func (tk Toolkit) run(ctx context.Context, input, output string, kwargs ffmpeg.KwArgs) error {
	stream := ffmpeg.Input(input).
		Output(output, kwargs).
		OverWriteOutput().
		SetFfmpegPath(tk.Bin.FFmpeg)

	// Compile yields a plain exec.Cmd; rebind it to ctx
	compiled := stream.Compile()
	cmd := exec.CommandContext(ctx, compiled.Path, compiled.Args[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(lastLine(stderr.String())); msg != "" {
			return fmt.Errorf("%w: %s", err, msg)
		}
		return err
	}
	return nil
}

// Chunk splits path into pieces of chunkDuration, copying codecs. Up to
// concurrency ffmpeg processes run at once.
func (tk Toolkit) Chunk(
	ctx context.Context,
	path string,
	chunkDuration time.Duration,
	outputDir string,
	concurrency int,
) ([]ChunkInfo, error) {
	if chunkDuration <= 0 {
		return nil, fmt.Errorf("chunk duration must be positive, got %v", chunkDuration)
	}
	if concurrency <= 0 {
		concurrency = 4
	}

	total, err := tk.Duration(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("failed to get audio duration: %w", err)
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	chunks := plan(path, total, chunkDuration, outputDir)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	sem := make(chan struct{}, concurrency)

	for i := range chunks {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(c ChunkInfo) {
			defer wg.Done()
			defer func() { <-sem }()

			err := tk.run(ctx, path, c.Path, ffmpeg.KwArgs{
				"ss": c.StartTime.Seconds(),
				"t":  (c.EndTime - c.StartTime).Seconds(),
				"c":  "copy",
			})
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = fmt.Errorf("failed to create chunk %d: %w", c.Index, err)
				}
				mu.Unlock()
			}
		}(chunks[i])
	}
	wg.Wait()

	if firstErr != nil {
		_ = CleanupChunks(chunks)
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		_ = CleanupChunks(chunks)
		return nil, err
	}
	return chunks, nil
}

// chunk boundaries covering [0, total)
func plan(path string, total, size time.Duration, outputDir string) []ChunkInfo {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	ext := filepath.Ext(path)

	var chunks []ChunkInfo
	for i := 0; ; i++ {
		start := time.Duration(i) * size
		if start >= total {
			break
		}
		chunks = append(chunks, ChunkInfo{
			Path:      filepath.Join(outputDir, fmt.Sprintf("%s_chunk_%03d%s", base, i, ext)),
			Index:     i,
			StartTime: start,
			EndTime:   min(start+size, total),
		})
	}
	return chunks
}

var (
	videoExts = map[string]bool{
		".mp4": true, ".mkv": true, ".avi": true, ".mov": true, ".wmv": true, ".flv": true,
		".webm": true, ".m4v": true, ".mpeg": true, ".mpg": true, ".3gp": true,
	}
	audioExts = map[string]bool{
		".mp3": true, ".wav": true, ".aac": true, ".flac": true,
		".ogg": true, ".m4a": true, ".wma": true, ".aiff": true,
	}
)

func IsVideoFile(path string) bool {
	return videoExts[strings.ToLower(filepath.Ext(path))]
}

func IsAudioFile(path string) bool {
	return audioExts[strings.ToLower(filepath.Ext(path))]
}

func IsMediaFile(path string) bool {
	return IsAudioFile(path) || IsVideoFile(path)
}

// removes all chunk files
func CleanupChunks(chunks []ChunkInfo) error {
	var errs []error
	for _, chunk := range chunks {
		if err := os.Remove(chunk.Path); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func requireFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return err
	}
	return nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
