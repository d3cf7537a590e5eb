package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"chalk/internal/zipcollect"
)

func newZipCollectCommand(ctx *commandContext) *cobra.Command {
	var opts zipcollect.Options

	cmd := &cobra.Command{
		Use:   "zip-collect <assignment>",
		Short: "Extract downloaded archives and collect submissions",
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

			engine, err := zipcollect.New(cfg, logger)
			if err != nil {
				return err
			}
			result, err := engine.Run(runCtx, args[0], opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderCollectReport(result, shouldColorize(out)))
			if failed := len(result.ArchivesFailed); failed > 0 {
				return fmt.Errorf("%d archive(s) failed to extract", failed)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.Force, "force", false, "Re-extract ledgered archives and overwrite newer submissions")
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "Fail on unrecognized files or ambiguous attempts")
	cmd.Flags().BoolVar(&opts.UpdateDB, "update-db", false, "Record collected submissions in the database")
	return cmd
}
