package cli

import (
	"fmt"
	"path/filepath"

	"github.com/mgpai22/subtrack/internal/pipeline"
	"github.com/mgpai22/subtrack/internal/subtitle"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var formatName string

	cmd := &cobra.Command{
		Use:   "export [output_file]",
		Short: "Write the project's text strips as captions or a screenplay",
		Long: `Export every text strip in start order. Frame positions are converted to
times at the project frame rate.

The format comes from --format, else from the output extension.
Formats: srt, vtt, ass, ssa, mpl2, tmp, microdvd (.sub), lrc, ttml,
txt and docx (screenplay).

Examples:
  subtrack export episode.srt
  subtrack export script --format docx
  subtrack export captions.xml --format ttml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			out := args[0]

			format, err := exportFormat(formatName, out)
			if err != nil {
				return err
			}

			doc, err := a.loadProject()
			if err != nil {
				return err
			}

			written, err := pipeline.Export(doc, format, out)
			if err != nil {
				return fmt.Errorf("export failed: %w", err)
			}

			abs, _ := filepath.Abs(written)
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d strips: %s\n", len(doc.TextItems()), abs)
			return nil
		},
	}

	cmd.Flags().StringVarP(&formatName, "format", "f", "", "Output format (default from extension)")
	return cmd
}

// explicit --format wins; otherwise the extension decides, srt when absent
func exportFormat(flag, path string) (subtitle.Format, error) {
	if flag != "" {
		return subtitle.ParseFormat(flag)
	}
	ext := filepath.Ext(path)
	if ext == "" {
		return subtitle.FormatSRT, nil
	}
	return subtitle.ParseFormat(ext)
}
