package main

import (
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/deal-scout/internal/intake"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run a single inbox pass and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if env.Source == nil {
			return eris.New("gmail credentials are required for scan")
		}

		messages, err := env.Source.Fetch(ctx)
		if err != nil {
			return eris.Wrap(err, "fetching messages")
		}

		candidates := messages[:0:0]
		for _, msg := range messages {
			if intake.Filter(msg) {
				candidates = append(candidates, msg)
			}
		}

		summary := env.Processor.ProcessBatch(ctx, candidates)
		zap.L().Info("scan complete",
			zap.Int("fetched", len(messages)),
			zap.Int("candidates", len(candidates)),
			zap.Int("created", len(summary.Created)),
			zap.Int("updated", summary.Updated),
			zap.Int("skipped", summary.Skipped),
			zap.Int("failed", summary.Failed))

		return nil
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
