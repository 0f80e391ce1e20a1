package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/deal-scout/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "deal-scout",
	Short: "Investment deal intake and scoring pipeline",
	Long:  "Pulls investment pitches from a Gmail inbox, red-teams them against external research, scores the signals deterministically, and writes an investment verdict per deal.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
