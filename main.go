// reqcheck reports the PHP symbols a Composer package uses without requiring
// the package or extension that provides them.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var version = "dev"

const (
	exitClean   = 0
	exitUnknown = 1
	exitFatal   = 2
)

// errUnknownSymbols ends a check that completed but found unknown symbols.
var errUnknownSymbols = errors.New("unknown symbols found")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	logger := newLogger(stderr, log.InfoLevel)
	root := newRootCommand(logger)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(log.WithContext(ctx, logger))
	switch {
	case err == nil:
		return exitClean
	case errors.Is(err, errUnknownSymbols):
		return exitUnknown
	}
	_, _ = fmt.Fprintf(stderr, "error: %v\n", err)
	return exitFatal
}

func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

func newRootCommand(logger *log.Logger) *cobra.Command {
	var verbose bool
	root := &cobra.Command{
		Use:           "reqcheck",
		Short:         "Find PHP symbols used without a declared Composer dependency",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}
		},
	}
	root.SetVersionTemplate("reqcheck {{.Version}}\n")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newCheckCommand())
	root.AddCommand(newInitCommand())
	return root
}
