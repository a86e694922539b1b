package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/mgpai22/subtrack/internal/config"
	"github.com/mgpai22/subtrack/internal/deps"
	"github.com/mgpai22/subtrack/internal/pipeline"
	"github.com/mgpai22/subtrack/internal/subtitle"
	"github.com/mgpai22/subtrack/internal/translate"
	"github.com/spf13/cobra"
)

func (a *app) translator(ctx context.Context, target string) (translate.Translator, error) {
	tc := a.cfg.Translate
	if a.deps.Translate != deps.Available {
		return nil, fmt.Errorf("translation is unavailable: set %s for provider %s", a.deps.TranslateKeyEnv, tc.Provider)
	}
	if tc.InputLanguage != "" && strings.EqualFold(strings.TrimSpace(tc.InputLanguage), strings.TrimSpace(target)) {
		return nil, fmt.Errorf("input language %q and target language %q cannot be the same", tc.InputLanguage, target)
	}

	apiKey, _ := config.APIKey(tc.Provider)
	tr, err := translate.Factory(ctx, translate.Provider(tc.Provider), apiKey, translate.Options{
		InputLanguage:  tc.InputLanguage,
		TargetLanguage: target,
		Model:          tc.Model,
		BatchSize:      tc.BatchSize,
		Concurrency:    tc.Concurrency,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create translator: %w", err)
	}
	return tr, nil
}

func (a *app) textTranslator(ctx context.Context, target string) (pipeline.TextTranslator, error) {
	tr, err := a.translator(ctx, target)
	if err != nil {
		return nil, err
	}
	return translate.TextTranslator{Translator: tr}, nil
}

func newTranslateCmd() *cobra.Command {
	var (
		target  string
		overlay bool
		output  string
	)

	cmd := &cobra.Command{
		Use:   "translate [caption_file]",
		Short: "Translate a caption file with the configured AI provider",
		Long: `Translate every cue of a caption file and write <name>_<language><ext>
next to it. ASS/SSA styling, override tags and script metadata are kept;
only dialogue text changes.

--overlay writes bilingual captions: the translation first, the original on
the next line. EBU STL input is written back as SRT.

Examples:
  subtrack translate episode.srt --to japanese
  subtrack translate episode.ass --to ja --overlay
  subtrack translate episode.vtt --to spanish -o spanish.vtt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			ctx := cmd.Context()
			path := args[0]

			tr, err := a.translator(ctx, target)
			if err != nil {
				return err
			}

			rate, err := a.cfg.Scene.Timeline().Rate()
			if err != nil {
				return err
			}
			file, err := subtitle.OpenWithOptions(path, subtitle.Options{FPS: rate})
			if err != nil {
				return fmt.Errorf("failed to parse caption file: %w", err)
			}
			entries := file.Subtitle().Entries
			if len(entries) == 0 {
				return fmt.Errorf("caption file contains no entries")
			}

			outFormat := file.Format()
			if outFormat == subtitle.FormatSTL {
				outFormat = subtitle.FormatSRT
			}
			if output == "" {
				output = translatedPath(path, target, outFormat)
			}

			a.logger.Infow("Translating captions",
				"input", path,
				"output", output,
				"entries", len(entries),
				"target_language", target,
				"overlay", overlay,
			)

			assFile, isASS := file.(*subtitle.ASSFile)
			texts := make([]string, len(entries))
			for i, e := range entries {
				texts[i] = e.Text
				if isASS {
					texts[i], _ = assFile.GetOriginalText(i)
				}
			}

			translated, err := translate.TextTranslator{Translator: tr}.TranslateTexts(ctx, texts)
			if err != nil {
				return fmt.Errorf("translation failed: %w", err)
			}

			for i, text := range translated {
				switch {
				case overlay && isASS:
					err = assFile.SetTextWithOverlay(i, text)
				case overlay:
					err = file.SetText(i, text+"\n"+texts[i])
				default:
					err = file.SetText(i, text)
				}
				if err != nil {
					return fmt.Errorf("failed to set text for entry %d: %w", i, err)
				}
			}

			if outFormat != file.Format() {
				w, werr := subtitle.NewWriter(outFormat, subtitle.Options{})
				if werr != nil {
					return werr
				}
				err = w.Write(file.Subtitle(), output)
			} else {
				err = file.Write(output)
			}
			if err != nil {
				return fmt.Errorf("failed to write output file: %w", err)
			}

			abs, _ := filepath.Abs(output)
			fmt.Fprintf(cmd.OutOrStdout(), "Captions translated: %s\n", abs)
			fmt.Fprintf(cmd.OutOrStdout(), "  Entries: %d\n", len(entries))
			return nil
		},
	}

	cmd.Flags().StringVarP(&target, "to", "t", "", "Target language (required)")
	cmd.Flags().BoolVar(&overlay, "overlay", false, "Keep the original line under the translation")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default <name>_<language><ext>)")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}

// episode.srt + "Japanese" -> episode_japanese.srt
func translatedPath(path, target string, format subtitle.Format) string {
	base := strings.TrimSuffix(path, filepath.Ext(path))
	lang := strings.ToLower(strings.Join(strings.Fields(target), "-"))

	ext := filepath.Ext(path)
	if f, ok := subtitle.FormatFromExtension(path); !ok || f != format {
		ext = subtitle.GetExtensionForFormat(format)
	}
	return base + "_" + lang + ext
}
