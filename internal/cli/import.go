package cli

import (
	"fmt"

	"github.com/mgpai22/subtrack/internal/audio"
	"github.com/mgpai22/subtrack/internal/pipeline"
	"github.com/mgpai22/subtrack/internal/timeline"
	"github.com/mgpai22/subtrack/internal/video"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var (
		fps         float64
		fpsBase     float64
		width       int
		height      int
		videoPath   string
		lyrics      bool
		translateTo string
	)

	cmd := &cobra.Command{
		Use:   "import [caption_file]",
		Short: "Place a caption file onto the project timeline",
		Long: `Import a caption file as text strips. Every cue lands on the lowest track
that is free for its whole frame range; italic, bold and \pos placement
are kept.

The scene comes from the project unless --fps or --video overrides it.
The first import into an empty project adopts the override as the project
scene. LRC files and --lyrics read cue times as seconds.

Examples:
  subtrack import episode.srt
  subtrack import episode.ass --video episode.mkv
  subtrack import song.lrc --fps 24
  subtrack import episode.srt --translate-to japanese`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			ctx := cmd.Context()
			path := args[0]

			doc, err := a.loadProject()
			if err != nil {
				return err
			}

			var scene *timeline.Scene
			if videoPath != "" {
				bins, err := a.deps.RequireFFmpeg()
				if err != nil {
					return err
				}
				info, err := video.GetInfo(ctx, audio.Toolkit{Bin: bins}, videoPath)
				if err != nil {
					return fmt.Errorf("failed to probe video: %w", err)
				}
				s := info.Scene()
				scene = &s
				a.logger.Infow("Using video scene",
					"fps", info.FPS/info.FPSBase,
					"width", info.Width,
					"height", info.Height,
				)
			}
			if fps > 0 || width > 0 || height > 0 {
				s := doc.Scene()
				if scene != nil {
					s = *scene
				}
				if fps > 0 {
					s.FPS, s.FPSBase = fps, fpsBase
				}
				if width > 0 {
					s.Width = width
				}
				if height > 0 {
					s.Height = height
				}
				scene = &s
			}

			req := pipeline.ImportRequest{
				Path:  path,
				Unit:  pipeline.UnitForPath(path),
				Scene: scene,
			}
			if lyrics {
				req.Unit = timeline.UnitSecond
			}
			if translateTo != "" {
				tr, err := a.textTranslator(ctx, translateTo)
				if err != nil {
					return err
				}
				req.Translate = tr
			}

			if scene != nil && len(doc.Strips) == 0 {
				doc.SceneInfo = *scene
			}

			importer := &pipeline.Importer{Host: doc, Logger: a.logger}
			result, err := importer.Import(ctx, req)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			if result.Empty {
				fmt.Fprintf(cmd.OutOrStdout(), "No cues in %s, project unchanged\n", path)
				return nil
			}
			if err := a.saveProject(doc); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d cues into %s\n", len(result.Placed), a.project)
			if result.Skipped > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "  Skipped (malformed \\pos): %d\n", result.Skipped)
			}
			if result.Duplicates > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "  Duplicates dropped: %d\n", result.Duplicates)
			}
			return nil
		},
	}

	cmd.Flags().Float64Var(&fps, "fps", 0, "Frame rate override (default from project)")
	cmd.Flags().Float64Var(&fpsBase, "fps-base", 1, "Frame rate divisor, e.g. 1.001 for 29.97")
	cmd.Flags().IntVar(&width, "width", 0, "Scene width override in pixels")
	cmd.Flags().IntVar(&height, "height", 0, "Scene height override in pixels")
	cmd.Flags().StringVar(&videoPath, "video", "", "Take frame rate and size from this video (needs ffmpeg)")
	cmd.Flags().BoolVar(&lyrics, "lyrics", false, "Read cue times as seconds")
	cmd.Flags().StringVarP(&translateTo, "translate-to", "t", "", "Translate cues to this language before placing")
	return cmd
}
