package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"chalk/internal/pipeline"
)

func newAutogradeCommand(ctx *commandContext) *cobra.Command {
	var opts pipeline.AutogradeOptions

	cmd := &cobra.Command{
		Use:   "autograde <assignment>",
		Short: "Sanitize, execute, and score submitted notebooks",
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
			result, err := runner.Autograde(runCtx, args[0], opts)
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

	cmd.Flags().BoolVar(&opts.Create, "create", false, "Register unknown students in the database")
	cmd.Flags().BoolVar(&opts.NoExecute, "no-execute", false, "Score the submitted outputs without running kernels")
	cmd.Flags().StringVar(&opts.StudentID, "student", "", "Restrict the run to one student id")
	cmd.Flags().StringVar(&opts.NotebookPattern, "notebook", "", "Restrict the run to notebook ids matching a glob")
	return cmd
}
