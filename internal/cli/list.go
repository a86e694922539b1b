package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/mgpai22/subtrack/internal/project"
	"github.com/spf13/cobra"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List text strips in start order",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := appFrom(cmd).loadProject()
			if err != nil {
				return err
			}

			strips := doc.TextStrips()
			if len(strips) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No text strips")
				return nil
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tTRACK\tFRAMES\tSTYLE\tTEXT")
			for _, s := range strips {
				fmt.Fprintf(tw, "%s\t%d\t%d-%d\t%s\t%s\n",
					s.Name, s.Track, s.Start, s.End, styleLabel(s),
					strings.ReplaceAll(s.Text, "\n", `\n`),
				)
			}
			return tw.Flush()
		},
	}
}

func styleLabel(s project.Strip) string {
	var parts []string
	if s.Bold {
		parts = append(parts, "bold")
	}
	if s.Italic {
		parts = append(parts, "italic")
	}
	if s.Position != nil {
		parts = append(parts, fmt.Sprintf("pos(%.2f,%.2f)", s.Position.X, s.Position.Y))
	}
	if len(parts) == 0 {
		return "-"
	}
	return strings.Join(parts, ",")
}
