package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newAddCmd() *cobra.Command {
	var (
		after string
		frame int
		text  string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a text strip",
		Long: `Add a text strip on the first free track.

With --after the new strip copies that strip's style and length and starts
one length after --frame. Without it the strip is 100 frames long and
starts at --frame.

Examples:
  subtrack add --frame 240 --text "Hello"
  subtrack add --after Text.004 --frame 300`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			doc, err := a.loadProject()
			if err != nil {
				return err
			}

			s, err := doc.AddText(after, frame)
			if err != nil {
				return err
			}
			if text != "" {
				if err := doc.SetText(s.Name, text); err != nil {
					return err
				}
			}
			if err := a.saveProject(doc); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Added %s on track %d, frames %d-%d\n", s.Name, s.Track, s.Start, s.End)
			return nil
		},
	}

	cmd.Flags().StringVar(&after, "after", "", "Strip to copy style and length from")
	cmd.Flags().IntVar(&frame, "frame", 0, "Current frame")
	cmd.Flags().StringVar(&text, "text", "", `Strip text (\n for a line break)`)
	return cmd
}
