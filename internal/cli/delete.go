package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "delete [strip...]",
		Aliases: []string{"rm"},
		Short:   "Remove strips from the project",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			doc, err := a.loadProject()
			if err != nil {
				return err
			}

			for _, name := range args {
				if err := doc.Remove(name); err != nil {
					return err
				}
			}
			if err := a.saveProject(doc); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d strips\n", len(args))
			return nil
		},
	}
}
