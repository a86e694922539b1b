package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mgpai22/subtrack/internal/audio"
	"github.com/mgpai22/subtrack/internal/config"
	"github.com/mgpai22/subtrack/internal/deps"
	"github.com/mgpai22/subtrack/internal/pipeline"
	"github.com/mgpai22/subtrack/internal/subtitle"
	"github.com/mgpai22/subtrack/internal/timeline"
	"github.com/mgpai22/subtrack/internal/transcribe"
	"github.com/spf13/cobra"
)

func newTranscribeCmd() *cobra.Command {
	var (
		output             string
		place              bool
		transcriptLanguage string
		keepAudio          bool
	)

	cmd := &cobra.Command{
		Use:   "transcribe [media_file]",
		Short: "Generate captions from the speech in a video or audio file",
		Long: `Extract the audio track, split it into chunks, transcribe the chunks with
the configured provider and lay the segments out as captions.

The result is written to --output (format from its extension), or placed
straight onto the project timeline with --place. Needs ffmpeg and an API
key for the transcribe provider; run "subtrack deps" to check.

Examples:
  subtrack transcribe episode.mkv -o episode.srt
  subtrack transcribe interview.m4a --place
  subtrack transcribe episode.mkv -o episode.vtt --transcript-language english`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			ctx := cmd.Context()
			input := args[0]
			tc := a.cfg.Transcribe

			if output == "" && !place {
				return errors.New("either --output or --place is required")
			}
			if !audio.IsMediaFile(input) {
				return fmt.Errorf("not a video or audio file: %s", input)
			}
			if a.deps.Transcribe != deps.Available {
				if _, err := a.deps.RequireFFmpeg(); err != nil {
					return err
				}
				return fmt.Errorf("transcription is unavailable: set %s for provider %s", a.deps.TranscribeKeyEnv, tc.Provider)
			}
			bins, err := a.deps.RequireFFmpeg()
			if err != nil {
				return err
			}
			tk := audio.Toolkit{Bin: bins}

			var format subtitle.Format
			if output != "" {
				if format, err = exportFormat("", output); err != nil {
					return err
				}
			}

			apiKey, _ := config.APIKey(tc.Provider)
			tr, err := transcribe.Factory(ctx, transcribe.Provider(tc.Provider), apiKey, transcribe.Options{
				Language:           tc.Language,
				TranscriptLanguage: transcriptLanguage,
				Model:              tc.Model,
			})
			if err != nil {
				return fmt.Errorf("failed to create transcriber: %w", err)
			}

			workDir, err := os.MkdirTemp("", "subtrack-transcribe-*")
			if err != nil {
				return fmt.Errorf("failed to create temp directory: %w", err)
			}
			if keepAudio {
				a.logger.Infow("Keeping intermediate audio", "dir", workDir)
			} else {
				defer os.RemoveAll(workDir)
			}

			audioPath := filepath.Join(workDir, "audio.mp3")
			a.logger.Infow("Extracting audio", "input", input)
			if err := tk.Extract(ctx, input, audioPath, audio.DefaultExtractOptions()); err != nil {
				return fmt.Errorf("failed to extract audio: %w", err)
			}

			chunkDuration := time.Duration(tc.ChunkDuration) * time.Second
			chunks, err := tk.Chunk(ctx, audioPath, chunkDuration, filepath.Join(workDir, "chunks"), tc.Concurrency)
			if err != nil {
				return fmt.Errorf("failed to chunk audio: %w", err)
			}
			a.logger.Infow("Transcribing",
				"provider", tc.Provider,
				"chunks", len(chunks),
				"chunk_duration", chunkDuration,
			)

			segments, err := transcribe.Chunks(ctx, tr, chunks, tc.Concurrency)
			if err != nil {
				return fmt.Errorf("transcription failed: %w", err)
			}
			entries := subtitle.DefaultLayout().Entries(segments)
			if len(entries) == 0 {
				return errors.New("no speech found in the media file")
			}
			sub := &subtitle.Subtitle{Entries: entries}

			if output != "" {
				if err := writeTranscript(a, sub, format, output); err != nil {
					return err
				}
				abs, _ := filepath.Abs(output)
				fmt.Fprintf(cmd.OutOrStdout(), "Captions written: %s\n", abs)
				fmt.Fprintf(cmd.OutOrStdout(), "  Entries: %d\n", len(entries))
			}

			if place {
				srtPath := filepath.Join(workDir, strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))+".srt")
				if err := writeTranscript(a, sub, subtitle.FormatSRT, srtPath); err != nil {
					return err
				}

				doc, err := a.loadProject()
				if err != nil {
					return err
				}
				importer := &pipeline.Importer{Host: doc, Logger: a.logger}
				result, err := importer.Import(ctx, pipeline.ImportRequest{
					Path: srtPath,
					Unit: timeline.UnitMillisecond,
				})
				if err != nil {
					return fmt.Errorf("import failed: %w", err)
				}
				if err := a.saveProject(doc); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Placed %d cues into %s\n", len(result.Placed), a.project)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Caption file to write")
	cmd.Flags().BoolVar(&place, "place", false, "Place the captions onto the project timeline")
	cmd.Flags().StringVar(&transcriptLanguage, "transcript-language", "native", "Language of the transcript")
	cmd.Flags().BoolVar(&keepAudio, "keep-audio", false, "Keep extracted audio and chunks in the temp directory")
	return cmd
}

func writeTranscript(a *app, sub *subtitle.Subtitle, format subtitle.Format, path string) error {
	scene := a.cfg.Scene.Timeline()
	rate, err := scene.Rate()
	if err != nil {
		return err
	}
	w, err := subtitle.NewWriter(format, subtitle.Options{
		FPS:    rate,
		Width:  scene.Width,
		Height: scene.Height,
	})
	if err != nil {
		return err
	}
	if err := w.Write(sub, path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
