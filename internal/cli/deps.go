package cli

import (
	"fmt"
	"io"

	"github.com/mgpai22/subtrack/internal/deps"
	"github.com/mgpai22/subtrack/internal/ffmpeg"
	"github.com/spf13/cobra"
)

func newDepsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deps",
		Short: "Show which optional capabilities are available",
		Long: `Report ffmpeg, translation and transcription availability.

Caption import and export never need any of them. ffmpeg is looked up in
SUBTRACK_FFMPEG_PATH / SUBTRACK_FFPROBE_PATH, then PATH, then the install
cache filled by "subtrack deps install".`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			printStatus(cmd.OutOrStdout(), a.deps, a.cfg.Translate.Provider, a.cfg.Transcribe.Provider)
			return nil
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "install",
		Short: "Download ffmpeg and ffprobe into the user cache",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			if a.deps.FFmpeg == deps.Available {
				fmt.Fprintf(cmd.OutOrStdout(), "ffmpeg already available: %s\n", a.deps.FFmpegPaths.FFmpeg)
				return nil
			}

			dir := ffmpeg.InstallDir()
			a.logger.Infow("Installing ffmpeg", "dir", dir)
			paths, err := ffmpeg.Install(cmd.Context(), dir)
			if err != nil {
				return fmt.Errorf("failed to install ffmpeg: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Installed ffmpeg: %s\n", paths.FFmpeg)
			fmt.Fprintf(cmd.OutOrStdout(), "Installed ffprobe: %s\n", paths.FFprobe)
			return nil
		},
	})
	return cmd
}

func printStatus(w io.Writer, st deps.Status, translateProvider, transcribeProvider string) {
	fmt.Fprintf(w, "ffmpeg:      %s", st.FFmpeg)
	if st.FFmpeg == deps.Available {
		fmt.Fprintf(w, " (%s)", st.FFmpegPaths.FFmpeg)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "translate:   %s (%s", st.Translate, translateProvider)
	if st.Translate != deps.Available {
		fmt.Fprintf(w, ", set %s", st.TranslateKeyEnv)
	}
	fmt.Fprintln(w, ")")

	fmt.Fprintf(w, "transcribe:  %s (%s", st.Transcribe, transcribeProvider)
	if st.Transcribe == deps.Missing && st.FFmpeg != deps.Missing {
		fmt.Fprintf(w, ", set %s", st.TranscribeKeyEnv)
	}
	fmt.Fprintln(w, ")")
}
