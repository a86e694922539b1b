package transcribe

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/mgpai22/subtrack/internal/audio"
	"github.com/mgpai22/subtrack/internal/subtitle"
)

// Transcriber turns one audio chunk into segments timed relative to the
// chunk start.
type Transcriber interface {
	Transcribe(ctx context.Context, chunk audio.ChunkInfo) ([]subtitle.Segment, error)
}

// transcription service provider
type Provider string

const (
	ProviderGemini Provider = "gemini"
	ProviderOpenAI Provider = "openai"
)

type Options struct {
	Language           string // spoken language of the audio
	TranscriptLanguage string // output language, "native" keeps the spoken one
	Model              string
	Prompt             string
}

// creates transcriber based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Transcriber, error) {
	if apiKey == "" {
		return nil, errors.New("API key is required")
	}
	switch provider {
	case ProviderGemini:
		return newGeminiTranscriber(ctx, apiKey, opts)
	case ProviderOpenAI:
		return newOpenAITranscriber(apiKey, opts), nil
	default:
		return nil, fmt.Errorf("unsupported transcription provider: %s", provider)
	}
}

// Chunks transcribes every chunk with up to concurrency requests in flight
// and returns the segments on the whole-file clock, in chunk order.
func Chunks(
	ctx context.Context,
	tr Transcriber,
	chunks []audio.ChunkInfo,
	concurrency int,
) ([]subtitle.Segment, error) {
	if len(chunks) == 0 {
		return nil, nil
	}
	if concurrency <= 0 {
		concurrency = 3
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	results := make([][]subtitle.Segment, len(chunks))
	work := make(chan int)

	for range min(concurrency, len(chunks)) {
		wg.Go(func() {
			for i := range work {
				if ctx.Err() != nil {
					continue
				}
				segments, err := tr.Transcribe(ctx, chunks[i])
				if err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("chunk %d failed: %w", chunks[i].Index, err)
					}
					mu.Unlock()
					cancel()
					continue
				}
				results[i] = offset(segments, chunks[i])
			}
		})
	}

feed:
	for i := range chunks {
		select {
		case <-ctx.Done():
			break feed
		case work <- i:
		}
	}
	close(work)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var all []subtitle.Segment
	for _, r := range results {
		all = append(all, r...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].StartTime < all[j].StartTime
	})
	return all, nil
}

// shifts chunk-relative segments onto the file clock
func offset(segments []subtitle.Segment, chunk audio.ChunkInfo) []subtitle.Segment {
	out := make([]subtitle.Segment, len(segments))
	for i, seg := range segments {
		out[i] = subtitle.Segment{
			StartTime: seg.StartTime + chunk.StartTime,
			EndTime:   seg.EndTime + chunk.StartTime,
			Text:      seg.Text,
		}
	}
	return out
}
