package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// next / prev walk the text strips in start order
func newSelectCmd(use string, step int) *cobra.Command {
	direction := "next"
	if step < 0 {
		direction = "previous"
	}

	return &cobra.Command{
		Use:   use + " [strip]",
		Short: fmt.Sprintf("Print the %s text strip in start order", direction),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := appFrom(cmd).loadProject()
			if err != nil {
				return err
			}

			s, err := doc.Neighbor(args[0], step)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d-%d\t%s\n",
				s.Name, s.Start, s.End, strings.ReplaceAll(s.Text, "\n", `\n`))
			return nil
		},
	}
}
