package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"transplant/internal/config"
	"transplant/internal/migration"
)

func newMigrateCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	var showCredentials bool

	cmd := &cobra.Command{
		Use:   "migrate [csv-path]",
		Short: "Run the legacy export migration",
		Long: "Parses a legacy CSV export and creates schools, users, and memberships.\n" +
			"Use --dry-run to validate the export without writing anything.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			path, err := resolveCSVPath(cfg, args)
			if err != nil {
				return err
			}

			input, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open export: %w", err)
			}
			defer input.Close()

			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}

			if !dryRun {
				release, err := ctx.acquireLock()
				if err != nil {
					return err
				}
				defer release()
			}

			runner := migration.NewRunner(cfg, st, logger)
			result, err := runner.Run(cmd.Context(), input, migration.Options{DryRun: dryRun, Source: path})
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			renderRunSummary(out, result)
			if showCredentials && len(result.Credentials) > 0 {
				fmt.Fprintln(out)
				renderCredentials(out, result.Credentials)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Validate and count without writing anything")
	cmd.Flags().BoolVar(&showCredentials, "show-credentials", false, "Print the generated temporary credentials")
	return cmd
}

// resolveCSVPath takes the positional argument when given, otherwise the
// configured export path.
func resolveCSVPath(cfg *config.Config, args []string) (string, error) {
	raw := strings.TrimSpace(cfg.Migration.CSVPath)
	if len(args) > 0 {
		raw = strings.TrimSpace(args[0])
	}
	if raw == "" {
		return "", errors.New("no export path given; pass one as an argument or set csv_path in the config")
	}
	path, err := config.ExpandPath(raw)
	if err != nil {
		return "", fmt.Errorf("resolve export path: %w", err)
	}
	return path, nil
}
