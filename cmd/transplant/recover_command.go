package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"transplant/internal/recovery"
)

func newRecoverCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recover [csv-path]",
		Short: "Re-seed the database from a legacy export",
		Long: "Runs the full live migration followed by the evidence placeholder pass.\n" +
			"Intended for disaster recovery; the first failure aborts the whole run.",
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

			st, err := ctx.openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			logger, err := ctx.newLogger()
			if err != nil {
				return err
			}

			release, err := ctx.acquireLock()
			if err != nil {
				return err
			}
			defer release()

			outcome, err := recovery.New(cfg, st, logger).Run(cmd.Context(), path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			renderRunSummary(out, outcome.Migration)
			fmt.Fprintln(out)
			renderEvidenceSummary(out, outcome.Evidence)
			return nil
		},
	}

	return cmd
}
