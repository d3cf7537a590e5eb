package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"chalk/internal/pipeline"
)

func newAssignCommand(ctx *commandContext) *cobra.Command {
	var opts pipeline.AssignOptions

	cmd := &cobra.Command{
		Use:   "assign <assignment>",
		Short: "Produce the student release version of an assignment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			runner := pipeline.NewRunner(cfg, logger)
			result, err := runner.Assign(runCtx, args[0], opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderRunReport(result, shouldColorize(out)))
			if failed := result.Failed(); len(failed) > 0 {
				return fmt.Errorf("%d of %d notebooks failed", len(failed), len(result.Documents))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Create, "create", false, "Register the assignment in the database if missing")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Overwrite existing release files")
	cmd.Flags().BoolVar(&opts.NoDatabase, "no-db", false, "Skip recording master cells in the database")
	cmd.Flags().BoolVar(&opts.NoMetadata, "no-metadata", false, "Skip metadata validation and fence enforcement")
	return cmd
}
