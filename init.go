package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/phobologic/reqcheck/internal/config"
)

func newInitCommand() *cobra.Command {
	var force, dryRun bool
	cmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write an options file holding the defaults",
		Long: `Init writes the default symbol whitelist, scan-files and core extensions
to an options file that check accepts through --config-file. The format follows
the file extension: .json (default), .yaml, .yml or .toml.

path defaults to ./` + config.DefaultFileName + `.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.DefaultFileName
			if len(args) > 0 {
				path = args[0]
			}
			return runInit(cmd.Context(), cmd.OutOrStdout(), path, force, dryRun)
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the file instead of writing it")
	return cmd
}

func runInit(ctx context.Context, stdout io.Writer, path string, force, dryRun bool) error {
	data, err := config.Default().Marshal(path)
	if err != nil {
		return fmt.Errorf("encoding defaults: %w", err)
	}

	if dryRun {
		_, err := stdout.Write(data)
		return err
	}

	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}

	log.FromContext(ctx).Info("wrote options file", "path", path)
	return nil
}
