package translate

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
)

// echoes the prompt's input items upper-cased
type fakeBackend struct {
	mu      sync.Mutex
	calls   int
	failOn  int // item index that makes a batch fail, -1 for none
	dropAll bool
}

func (f *fakeBackend) name() string { return "fake" }

func (f *fakeBackend) complete(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	start := strings.Index(prompt, "Input JSON:\n") + len("Input JSON:\n")
	end := strings.Index(prompt, "\n\nOutput")
	var items []TranslationItem
	if err := json.Unmarshal([]byte(prompt[start:end]), &items); err != nil {
		return "", err
	}

	out := make([]TranslationResult, 0, len(items))
	for _, it := range items {
		if it.Index == f.failOn {
			return "", errors.New("quota exceeded")
		}
		out = append(out, TranslationResult{Index: it.Index, Text: strings.ToUpper(it.Text)})
	}
	if f.dropAll {
		return "I cannot help with that.", nil
	}
	data, _ := json.Marshal(out)
	return "```json\n" + string(data) + "\n```", nil
}

func items(n int) []TranslationItem {
	out := make([]TranslationItem, n)
	for i := range out {
		out[i] = TranslationItem{Index: i, Text: "line " + string(rune('a'+i%26))}
	}
	return out
}

func TestBatchTranslatorOrdersAcrossBatches(t *testing.T) {
	tests := []struct {
		name        string
		count       int
		batchSize   int
		concurrency int
		wantCalls   int
	}{
		{"single batch", 3, 50, 3, 1},
		{"even batches", 10, 5, 2, 2},
		{"ragged batches", 11, 3, 4, 4},
		{"more workers than batches", 4, 1, 10, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &fakeBackend{failOn: -1}
			tr := &BatchTranslator{
				backend: backend,
				options: Options{TargetLanguage: "Upper", BatchSize: tt.batchSize, Concurrency: tt.concurrency},
			}

			in := items(tt.count)
			got, err := tr.Translate(context.Background(), in)
			if err != nil {
				t.Fatalf("Translate error: %v", err)
			}
			if len(got) != tt.count {
				t.Fatalf("got %d results, want %d", len(got), tt.count)
			}
			for i, r := range got {
				if r.Index != i || r.Text != strings.ToUpper(in[i].Text) {
					t.Errorf("result %d = %+v", i, r)
				}
			}
			if backend.calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", backend.calls, tt.wantCalls)
			}
		})
	}
}

func TestBatchTranslatorFailures(t *testing.T) {
	tests := []struct {
		name    string
		backend *fakeBackend
	}{
		{"backend error", &fakeBackend{failOn: 7}},
		{"unparsable reply", &fakeBackend{failOn: -1, dropAll: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := &BatchTranslator{backend: tt.backend, options: Options{BatchSize: 4, Concurrency: 2}}
			if _, err := tr.Translate(context.Background(), items(12)); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestBatchTranslatorEmpty(t *testing.T) {
	tr := &BatchTranslator{backend: &fakeBackend{failOn: -1}}
	got, err := tr.Translate(context.Background(), nil)
	if err != nil || len(got) != 0 {
		t.Errorf("got %v, %v", got, err)
	}
}

func TestTextTranslator(t *testing.T) {
	tr := TextTranslator{Translator: &BatchTranslator{
		backend: &fakeBackend{failOn: -1},
		options: Options{BatchSize: 2},
	}}

	got, err := tr.TranslateTexts(context.Background(), []string{"one", "{\\i1}two\\Nlines", "three"})
	if err != nil {
		t.Fatalf("TranslateTexts error: %v", err)
	}
	want := []string{"ONE", "{\\I1}TWO\\NLINES", "THREE"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("text %d = %q, want %q", i, got[i], want[i])
		}
	}
}

type partialTranslator struct{}

func (partialTranslator) Translate(_ context.Context, in []TranslationItem) ([]TranslationResult, error) {
	return []TranslationResult{{Index: 1, Text: "deux"}, {Index: 9, Text: "stray"}}, nil
}

func TestTextTranslatorKeepsMissingTexts(t *testing.T) {
	got, err := TextTranslator{Translator: partialTranslator{}}.TranslateTexts(
		context.Background(), []string{"one", "two"})
	if err != nil {
		t.Fatal(err)
	}
	if got[0] != "one" || got[1] != "deux" {
		t.Errorf("got %v", got)
	}
}

func TestFactory(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name     string
		provider Provider
		key      string
		opts     Options
		wantErr  bool
	}{
		{"gemini", ProviderGemini, "fake-key", Options{TargetLanguage: "Japanese"}, false},
		{"openai", ProviderOpenAI, "fake-key", Options{TargetLanguage: "Spanish"}, false},
		{"anthropic", ProviderAnthropic, "fake-key", Options{TargetLanguage: "German"}, false},
		{"missing target", ProviderGemini, "fake-key", Options{}, true},
		{"missing key", ProviderOpenAI, "", Options{TargetLanguage: "French"}, true},
		{"unknown provider", Provider("unknown"), "fake-key", Options{TargetLanguage: "French"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr, err := Factory(ctx, tt.provider, tt.key, tt.opts)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Factory error: %v", err)
			}
			if _, ok := tr.(*BatchTranslator); !ok {
				t.Errorf("expected *BatchTranslator, got %T", tr)
			}
		})
	}
}

// only runs if OPENAI_API_KEY is set
func TestOpenAITranslatorIntegration(t *testing.T) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		t.Skip("OPENAI_API_KEY not set; skipping integration test")
	}

	ctx := context.Background()
	tr, err := Factory(ctx, ProviderOpenAI, apiKey, Options{TargetLanguage: "Spanish"})
	if err != nil {
		t.Fatalf("Factory error: %v", err)
	}

	results, err := tr.Translate(ctx, []TranslationItem{
		{Index: 0, Text: "Hello"},
		{Index: 1, Text: "Goodbye"},
	})
	if err != nil {
		t.Fatalf("Translate error: %v", err)
	}
	if len(results) != 2 {
		t.Errorf("expected 2 results, got %d", len(results))
	}
}
