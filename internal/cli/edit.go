package cli

import (
	"errors"

	"github.com/spf13/cobra"
)

func newEditCmd() *cobra.Command {
	var newline bool

	cmd := &cobra.Command{
		Use:   "edit [strip] [text]",
		Short: "Replace a text strip's text",
		Long: `Replace the text of a strip. A literal \n in the text becomes a line
break; --newline appends one to the current text instead.

Examples:
  subtrack edit Text.002 "First line\nSecond line"
  subtrack edit Text.002 --newline`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			doc, err := a.loadProject()
			if err != nil {
				return err
			}

			name := args[0]
			switch {
			case newline:
				err = doc.AppendNewline(name)
			case len(args) == 2:
				err = doc.SetText(name, args[1])
			default:
				err = errors.New("text is required unless --newline is set")
			}
			if err != nil {
				return err
			}
			return a.saveProject(doc)
		},
	}

	cmd.Flags().BoolVar(&newline, "newline", false, "Append a line break")
	return cmd
}
