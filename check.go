package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/phobologic/reqcheck/internal/check"
	"github.com/phobologic/reqcheck/internal/config"
	"github.com/phobologic/reqcheck/internal/intrinsic"
	"github.com/phobologic/reqcheck/internal/parse"
	"github.com/phobologic/reqcheck/internal/report"
)

type checkFlags struct {
	configFile        string
	ignoreParseErrors bool
	output            string
	php               string
	builtin           bool
	workers           int
}

func newCheckCommand() *cobra.Command {
	var flags checkFlags
	cmd := &cobra.Command{
		Use:   "check [composer.json]",
		Short: "Check a package for symbols its dependencies do not provide",
		Long: `Check parses the package's autoloaded sources and reports every class,
function and constant that is neither defined by the package, defined by one
of its direct dependencies, provided by a declared PHP extension nor
whitelisted.

Exit status is 0 when nothing is unknown, 1 when unknown symbols were found
and 2 on any other failure.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest := "composer.json"
			if len(args) > 0 {
				manifest = args[0]
			}
			return runCheck(cmd.Context(), cmd.OutOrStdout(), manifest, flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.configFile, "config-file", "", "options file (.json, .yaml or .toml)")
	f.BoolVar(&flags.ignoreParseErrors, "ignore-parse-errors", false, "skip files with syntax errors instead of failing")
	f.StringVarP(&flags.output, "output", "o", string(report.Text), "output format: text, json or toon")
	f.StringVar(&flags.php, "php", "php", "PHP binary used to list extension symbols")
	f.BoolVar(&flags.builtin, "builtin", false, "use the bundled extension symbol table instead of running PHP")
	f.IntVar(&flags.workers, "workers", 0, "parallel parsers per pass (0 = one per CPU)")
	return cmd
}

func runCheck(ctx context.Context, stdout io.Writer, manifest string, flags checkFlags) error {
	format, err := report.ParseFormat(flags.output)
	if err != nil {
		return err
	}

	cfg, err := config.Load(flags.configFile)
	if err != nil {
		return fmt.Errorf("%w: %w", check.ErrConfiguration, err)
	}

	var intrinsics intrinsic.Provider
	builtin, err := intrinsic.Builtin()
	if err != nil {
		return err
	}
	if flags.builtin {
		intrinsics = builtin
	} else {
		intrinsics = &intrinsic.Fallback{Primary: intrinsic.NewBinary(flags.php), Secondary: builtin}
	}

	policy := parse.Strict
	if flags.ignoreParseErrors {
		policy = parse.Collect
	}

	res, err := check.Run(ctx, check.Options{
		ManifestPath: manifest,
		Config:       cfg,
		Policy:       policy,
		Workers:      flags.workers,
		Intrinsics:   intrinsics,
	})
	if err != nil {
		return err
	}

	if err := report.Write(stdout, format, res, report.Meta{Version: version}); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	if !res.Clean() {
		return errUnknownSymbols
	}
	return nil
}
