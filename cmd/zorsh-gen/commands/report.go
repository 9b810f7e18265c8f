package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/teranos/zorsh-gen/errors"
	"github.com/teranos/zorsh-gen/logger"
	"github.com/teranos/zorsh-gen/typegen"
)

var (
	logLevel zapcore.Level
	// Quiet suppresses summaries; errors are still reported
	Quiet bool
)

// InitLogging configures the global logger from -v, -q and --json.
func InitLogging(cmd *cobra.Command) error {
	verbosity, _ := cmd.Flags().GetCount("verbose")
	quiet, _ := cmd.Flags().GetBool("quiet")
	jsonOut, _ := cmd.Flags().GetBool("json")

	Quiet = quiet
	logLevel = logger.VerbosityToLevel(verbosity, quiet)
	if jsonOut {
		pterm.DisableStyling()
	}
	return logger.Initialize(jsonOut, logLevel)
}

// applyLogConfig switches to JSON logs when zorsh.toml asks for them.
func applyLogConfig(json bool) error {
	if json && !logger.JSONOutput {
		pterm.DisableStyling()
		return logger.Initialize(true, logLevel)
	}
	return nil
}

// FormatError renders every problem collected in err on its own line, followed
// by its hints.
func FormatError(err error) string {
	problems := errors.Flatten(err)
	var b strings.Builder
	if len(problems) > 1 {
		fmt.Fprintf(&b, "%s\n", pterm.Red(fmt.Sprintf("%d problems found", len(problems))))
	}
	for _, p := range problems {
		fmt.Fprintf(&b, "%s %s\n", pterm.Red("✗"), p.Error())
		for _, hint := range errors.GetAllHints(p) {
			fmt.Fprintf(&b, "  %s %s\n", pterm.Gray("hint:"), pterm.Yellow(hint))
		}
	}
	return b.String()
}

// ReportError writes err to w, or logs it in JSON mode.
func ReportError(w io.Writer, err error) {
	if logger.JSONOutput {
		for _, p := range errors.Flatten(err) {
			logger.Errorw("Generation failed",
				logger.FieldError, p.Error(),
				logger.FieldHint, strings.Join(errors.GetAllHints(p), "; "))
		}
		return
	}
	fmt.Fprint(w, FormatError(err))
}

// printSummary lists the generated files unless quiet.
func printSummary(w io.Writer, verb string, result *typegen.Result, out string) {
	if Quiet || logger.JSONOutput {
		return
	}
	for _, f := range result.Files {
		fmt.Fprintf(w, "  %s %s %s\n", pterm.Gray("→"), f.Path, pterm.Gray(fmt.Sprintf("(%d types)", len(f.Types))))
	}
	pterm.Success.WithWriter(w).Printf("%s %d schemas in %d files → %s\n",
		verb, result.TypeCount(), len(result.Files), out)
}
