package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/teranos/zorsh-gen/logger"
	"github.com/teranos/zorsh-gen/watch"
)

// WatchCmd represents the watch command
var WatchCmd = &cobra.Command{
	Use:   "watch [INPUT] [OUTPUT]",
	Short: "Regenerate schemas whenever Go sources change",
	Long: `Generate once, then watch INPUT and regenerate on every change to a .go file.

A failing regeneration leaves the previous output in place and keeps watching.
Stop with Ctrl+C.

Examples:
  zorsh-gen watch ./models ./ts/schemas`,
	Args: cobra.MaximumNArgs(2),
	RunE: runWatch,
}

func init() {
	addGenerateFlags(WatchCmd.Flags())
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, conv, err := setupConverter(cmd, args)
	if err != nil {
		return err
	}
	if err := requireOutput(cfg); err != nil {
		return err
	}
	opts, err := cfg.ConvertOptions()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	regenerate := func(ctx context.Context) error {
		result, err := conv.Convert(ctx, cfg.Input.Dir, cfg.Output.Dir)
		if err != nil {
			ReportError(cmd.ErrOrStderr(), err)
			return err
		}
		printSummary(cmd.OutOrStdout(), "Regenerated", result, cfg.Output.Dir)
		return nil
	}
	// The first run may fail; watching still starts so the user can fix it.
	_ = regenerate(ctx)

	w, err := watch.New(cfg.Input.Dir, opts.Source, regenerate)
	if err != nil {
		return err
	}
	defer w.Close()

	logger.Infow("Watching for changes", logger.FieldDir, cfg.Input.Dir, "dirs", len(w.Dirs()))
	if !Quiet {
		pterm.Info.WithWriter(cmd.OutOrStdout()).Printf("Watching %s (Ctrl+C to stop)\n", cfg.Input.Dir)
	}
	return w.Run(ctx)
}
