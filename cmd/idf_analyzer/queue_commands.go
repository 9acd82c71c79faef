package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/user/idf_analyzer_go/internal/queue"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	queueCmd := &cobra.Command{
		Use:   "queue",
		Short: "Build or list the queue file",
	}
	queueCmd.AddCommand(newQueueMakeCommand(ctx))
	queueCmd.AddCommand(newQueueListCommand(ctx))
	return queueCmd
}

func newQueueMakeCommand(ctx *commandContext) *cobra.Command {
	var pattern string

	cmd := &cobra.Command{
		Use:   "make",
		Short: "Write every matching file in the data directory to the queue file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("pattern") {
				pattern = cfg.Queue.Pattern
			}

			names, err := queue.Make(cfg.Paths.DataDir, pattern, cfg.Paths.QueueFile)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, n := range names {
				fmt.Fprintln(out, n)
			}
			logger.Info("queue file written",
				zap.String("queue_file", cfg.Paths.QueueFile),
				zap.String("pattern", pattern),
				zap.Int("files", len(names)))
			return nil
		},
	}
	cmd.Flags().StringVar(&pattern, "pattern", "", "Substring a file name must contain (overrides queue.pattern)")
	return cmd
}

func newQueueListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the queued file names in processing order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			names, err := queue.Read(cfg.Paths.QueueFile, cfg.Queue.Sorted)
			if err != nil {
				return err
			}
			for _, n := range names {
				fmt.Fprintln(cmd.OutOrStdout(), n)
			}
			return nil
		},
	}
}
