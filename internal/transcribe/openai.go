package transcribe

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/mgpai22/subtrack/internal/audio"
	"github.com/mgpai22/subtrack/internal/subtitle"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// Whisper through the OpenAI audio endpoints
type openAITranscriber struct {
	client  openai.Client
	model   string
	options Options
}

// verbose_json response structure from Whisper
type verboseResponse struct {
	Text     string       `json:"text"`
	Segments []rawSegment `json:"segments"`
	Language string       `json:"language"`
	Duration float64      `json:"duration"`
}

func newOpenAITranscriber(apiKey string, opts Options) *openAITranscriber {
	model := opts.Model
	if model == "" {
		model = "whisper-1"
	}
	return &openAITranscriber{
		client:  openai.NewClient(option.WithAPIKey(apiKey)),
		model:   model,
		options: opts,
	}
}

func (t *openAITranscriber) Transcribe(ctx context.Context, chunk audio.ChunkInfo) ([]subtitle.Segment, error) {
	file, err := os.Open(chunk.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio file: %w", err)
	}
	defer func() { _ = file.Close() }()

	length := chunk.EndTime - chunk.StartTime

	// the translations endpoint only targets English
	if translatesToEnglish(t.options.TranscriptLanguage) {
		params := openai.AudioTranslationNewParams{
			File:           file,
			Model:          openai.AudioModel(t.model),
			ResponseFormat: openai.AudioTranslationNewParamsResponseFormatVerboseJSON,
		}
		if t.options.Prompt != "" {
			params.Prompt = openai.String(t.options.Prompt)
		}
		resp, err := t.client.Audio.Translations.New(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("translation failed: %w", err)
		}
		return parseVerbose(resp.RawJSON(), resp.Text, length)
	}

	params := openai.AudioTranscriptionNewParams{
		File:                   file,
		Model:                  openai.AudioModel(t.model),
		ResponseFormat:         openai.AudioResponseFormatVerboseJSON,
		TimestampGranularities: []string{"segment"},
	}
	if t.options.Language != "" {
		params.Language = openai.String(t.options.Language)
	}
	if t.options.Prompt != "" {
		params.Prompt = openai.String(t.options.Prompt)
	}
	resp, err := t.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}
	return parseVerbose(resp.RawJSON(), resp.Text, length)
}

func translatesToEnglish(lang string) bool {
	lang = strings.ToLower(strings.TrimSpace(lang))
	return lang == "english" || lang == "en"
}

// segments from a verbose_json body; without segments the whole text
// becomes one cue spanning the reported (or chunk) duration
func parseVerbose(rawJSON, plainText string, length time.Duration) ([]subtitle.Segment, error) {
	var resp verboseResponse
	if rawJSON != "" {
		if err := json.Unmarshal([]byte(rawJSON), &resp); err != nil {
			return nil, fmt.Errorf("failed to parse verbose_json response: %w", err)
		}
	}
	if segments := toSegments(resp.Segments); len(segments) > 0 {
		return segments, nil
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		text = strings.TrimSpace(plainText)
	}
	if text == "" {
		return nil, nil
	}
	if resp.Duration > 0 {
		length = seconds(resp.Duration)
	}
	return []subtitle.Segment{{StartTime: 0, EndTime: length, Text: text}}, nil
}
