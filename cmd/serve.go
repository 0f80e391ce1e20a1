package main

import (
	"context"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/deal-scout/internal/api"
	"github.com/sells-group/deal-scout/internal/scheduler"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API server and background inbox scanner",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx)
		if err != nil {
			return err
		}
		defer env.Close()

		if env.Source == nil {
			return eris.New("gmail credentials are required for serve")
		}

		sched := scheduler.New(env.Source, env.Processor, env.Bus,
			cfg.Scheduler.Interval,
			scheduler.WithBatchSize(cfg.Scheduler.BatchSize),
		)

		server := api.New(env.Store, env.Bus, sched,
			api.WithAllowedOrigins(cfg.Server.AllowedOrigins),
		)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: server.Handler(),
		}

		g, ctx := errgroup.WithContext(ctx)

		g.Go(func() error {
			if err := sched.Run(ctx); err != nil && !eris.Is(err, context.Canceled) {
				return err
			}
			return nil
		})

		g.Go(func() error {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			return srv.Shutdown(cmd.Context())
		})

		g.Go(func() error {
			zap.L().Info("starting server", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return eris.Wrap(err, "server listen")
			}
			return nil
		})

		return g.Wait()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
