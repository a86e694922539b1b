package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mgpai22/subtrack/internal/pipeline"
	"github.com/mgpai22/subtrack/internal/watch"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Import caption files as they appear in a directory",
		Long: `Watch a directory and import every caption file created in it into the
project. Files are handled one at a time; a failed import is logged and
the watcher keeps running. Stop with Ctrl+C.

Examples:
  subtrack watch
  subtrack watch --dir ./incoming`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a := appFrom(cmd)
			if dir == "" {
				dir = a.cfg.Watch.Dir
			}
			settle := time.Duration(a.cfg.Watch.SettleDelay) * time.Millisecond

			handler := func(ctx context.Context, path string) error {
				doc, err := a.loadProject()
				if err != nil {
					return err
				}
				importer := &pipeline.Importer{Host: doc, Logger: a.logger}
				result, err := importer.Import(ctx, pipeline.ImportRequest{
					Path: path,
					Unit: pipeline.UnitForPath(path),
				})
				if err != nil {
					return err
				}
				if result.Empty {
					return nil
				}
				if err := a.saveProject(doc); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d cues from %s\n", len(result.Placed), path)
				return nil
			}

			w, err := watch.New(dir, settle, handler, a.logger)
			if err != nil {
				return err
			}
			defer w.Close()

			fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", dir)
			if err := w.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Directory to watch (default from config)")
	return cmd
}
