package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/mgpai22/subtrack/internal/config"
	"github.com/mgpai22/subtrack/internal/deps"
	"github.com/mgpai22/subtrack/internal/logging"
	"github.com/mgpai22/subtrack/internal/pipeline"
	"github.com/mgpai22/subtrack/internal/project"
	"github.com/spf13/cobra"
)

var _ pipeline.Host = (*project.Document)(nil)

// app is resolved once per invocation and reaches the commands through the
// command context.
type app struct {
	cfg     *config.Config
	logger  *logging.Logger
	deps    deps.Status
	project string
}

type appKey struct{}

func appFrom(cmd *cobra.Command) *app {
	a, _ := cmd.Context().Value(appKey{}).(*app)
	return a
}

func (a *app) loadProject() (*project.Document, error) {
	doc, err := project.Load(a.project, a.cfg.Scene.Timeline())
	if err != nil {
		return nil, fmt.Errorf("failed to load project: %w", err)
	}
	return doc, nil
}

func (a *app) saveProject(doc *project.Document) error {
	if err := doc.Save(a.project); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

// NewRootCommand builds the command tree.
func NewRootCommand() *cobra.Command {
	var (
		verbose     bool
		configPath  string
		projectPath string
	)

	root := &cobra.Command{
		Use:   "subtrack",
		Short: "Caption files onto a frame-based timeline",
		Long: `subtrack imports caption files (SRT, VTT, ASS/SSA, MPL2, TMP, MicroDVD,
LRC, TTML, EBU STL) into a project of text strips on frame-based tracks,
keeps italic, bold and \pos placement, and exports the strips back out as
captions, TTML, or a plain text or Word screenplay.

Translation and transcription are available when an API key for the
configured provider is set.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("failed to load .env: %w", err)
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			a := &app{
				cfg:     cfg,
				logger:  logging.NewLogger(verbose),
				deps:    deps.Check(cfg),
				project: cfg.Project.Path,
			}
			if projectPath != "" {
				a.project = projectPath
			}

			a.logger.Debugw("Resolved capabilities",
				"ffmpeg", a.deps.FFmpeg,
				"translate", a.deps.Translate,
				"transcribe", a.deps.Transcribe,
			)
			cmd.SetContext(context.WithValue(cmd.Context(), appKey{}, a))
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a := appFrom(cmd); a != nil {
				_ = a.logger.Sync()
			}
		},
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file (default ./subtrack.yaml)")
	root.PersistentFlags().StringVarP(&projectPath, "project", "p", "", "Project file (default from config)")

	root.AddCommand(
		newImportCmd(),
		newExportCmd(),
		newListCmd(),
		newAddCmd(),
		newDeleteCmd(),
		newEditCmd(),
		newSelectCmd("next", 1),
		newSelectCmd("prev", -1),
		newCopyStyleCmd(),
		newTranslateCmd(),
		newTranscribeCmd(),
		newWatchCmd(),
		newDepsCmd(),
		newConfigCmd(),
	)
	return root
}

// Execute runs the CLI until completion or an interrupt.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return NewRootCommand().ExecuteContext(ctx)
}
