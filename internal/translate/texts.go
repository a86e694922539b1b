package translate

import "context"

// TextTranslator adapts a Translator to plain string slices. Cues the model
// dropped keep their original text.
type TextTranslator struct {
	Translator Translator
}

func (t TextTranslator) TranslateTexts(ctx context.Context, texts []string) ([]string, error) {
	items := make([]TranslationItem, len(texts))
	for i, text := range texts {
		items[i] = TranslationItem{Index: i, Text: text}
	}

	results, err := t.Translator.Translate(ctx, items)
	if err != nil {
		return nil, err
	}

	out := make([]string, len(texts))
	copy(out, texts)
	for _, r := range results {
		if r.Index >= 0 && r.Index < len(out) && r.Text != "" {
			out[r.Index] = r.Text
		}
	}
	return out, nil
}
