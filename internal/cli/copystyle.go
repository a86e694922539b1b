package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCopyStyleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "copy-style [from] [to...]",
		Short: "Copy italic, bold and position from one text strip to others",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			doc, err := a.loadProject()
			if err != nil {
				return err
			}

			if err := doc.CopyStyle(args[0], args[1:]...); err != nil {
				return err
			}
			if err := a.saveProject(doc); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Copied style of %s to %d strips\n", args[0], len(args)-1)
			return nil
		},
	}
}
