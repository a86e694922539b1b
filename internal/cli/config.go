package cli

import (
	"fmt"

	"github.com/mgpai22/subtrack/internal/config"
	"github.com/spf13/cobra"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the subtrack configuration file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write a configuration file with the default settings",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.FileName
			if len(args) == 1 {
				path = args[0]
			}
			if err := config.WriteDefault(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "project:     %s\n", a.project)
			fmt.Fprintf(out, "scene:       %g/%g fps, %dx%d\n",
				a.cfg.Scene.FPS, a.cfg.Scene.FPSBase, a.cfg.Scene.Width, a.cfg.Scene.Height)
			fmt.Fprintf(out, "translate:   %s %s\n", a.cfg.Translate.Provider, a.cfg.Translate.Model)
			fmt.Fprintf(out, "transcribe:  %s %s\n", a.cfg.Transcribe.Provider, a.cfg.Transcribe.Model)
			fmt.Fprintf(out, "watch:       %s (settle %dms)\n", a.cfg.Watch.Dir, a.cfg.Watch.SettleDelay)
			return nil
		},
	})
	return cmd
}
