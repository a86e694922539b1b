package transcribe

import (
	"context"
	"fmt"
	"strings"

	"github.com/mgpai22/subtrack/internal/audio"
	"github.com/mgpai22/subtrack/internal/subtitle"
	"google.golang.org/genai"
)

// uploads each chunk through the Files API and asks for a JSON transcript
type geminiTranscriber struct {
	client  *genai.Client
	model   string
	options Options
}

func newGeminiTranscriber(ctx context.Context, apiKey string, opts Options) (*geminiTranscriber, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &geminiTranscriber{client: client, model: model, options: opts}, nil
}

func (t *geminiTranscriber) Transcribe(ctx context.Context, chunk audio.ChunkInfo) ([]subtitle.Segment, error) {
	uploaded, err := t.client.Files.UploadFromPath(ctx, chunk.Path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to upload audio file: %w", err)
	}
	defer func() {
		_, _ = t.client.Files.Delete(context.WithoutCancel(ctx), uploaded.Name, nil)
	}()

	parts := []*genai.Part{
		genai.NewPartFromText(buildPrompt(t.options)),
		genai.NewPartFromURI(uploaded.URI, uploaded.MIMEType),
	}
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}

	result, err := t.client.Models.GenerateContent(ctx, t.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}
	if result == nil || len(result.Candidates) == 0 {
		return nil, fmt.Errorf("empty response from Gemini")
	}

	var sb strings.Builder
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	if sb.Len() == 0 {
		return nil, fmt.Errorf("no text in Gemini response")
	}

	segments, err := parseTranscript(sb.String())
	if err != nil {
		return nil, fmt.Errorf("failed to parse transcription: %w", err)
	}
	return segments, nil
}

func buildPrompt(opts Options) string {
	var sb strings.Builder

	sb.WriteString("Generate a detailed transcript of this audio. ")
	sb.WriteString("For each sentence or phrase, provide the start timestamp, end timestamp, and the exact text spoken. ")
	sb.WriteString("Format your response as a JSON array with objects containing 'start', 'end', and 'text' fields, ")
	sb.WriteString("where 'start' and 'end' are timestamps in seconds (as numbers). ")

	if opts.Language != "" {
		fmt.Fprintf(&sb, "The audio is in %s. ", opts.Language)
	}
	if opts.TranscriptLanguage != "" && opts.TranscriptLanguage != "native" {
		fmt.Fprintf(&sb, "Output the transcript in %s. ", opts.TranscriptLanguage)
	}
	if opts.Prompt != "" {
		sb.WriteString(opts.Prompt)
		sb.WriteString(" ")
	}

	sb.WriteString("Return ONLY the JSON array, no other text or markdown formatting.")
	return sb.String()
}
