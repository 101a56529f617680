// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unclebandit/advocacy-backend/internal/app"
	"github.com/unclebandit/advocacy-backend/internal/config"
	"github.com/unclebandit/advocacy-backend/internal/controller"
	"github.com/unclebandit/advocacy-backend/internal/handler"
	"github.com/unclebandit/advocacy-backend/internal/queue"
)

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:          "server",
		Short:        "Serve the campaign API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "optional YAML config file")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := cmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	a, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", zap.Error(err))
		return err
	}
	defer a.Close()

	var q queue.Queue
	switch cfg.QueueDriver {
	case config.QueueAMQP:
		aq, err := queue.DialAMQP(cfg.AMQPURL, logger)
		if err != nil {
			logger.Error("startup failed", zap.Error(err))
			return err
		}
		a.OnClose(aq.Close)
		q = aq
		logger.Info("publishing actions to rabbitmq; run cmd/worker to record them")
	default:
		mq := queue.NewInMemoryQueue(logger)
		worker := a.ActionWorker()
		if err := queue.StartActionSubscriber(mq, worker.Process, logger); err != nil {
			return err
		}
		a.OnClose(func() error { mq.Drain(); return nil })
		q = mq
	}

	svc, err := a.CampaignService(q)
	if err != nil {
		return err
	}
	ctrl := &controller.CampaignController{CampaignService: svc, Logger: logger}
	h := &handler.CampaignHandler{Service: svc, Logger: logger}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           handler.NewRouter(ctrl, h, logger, cfg.CORSOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil {
			logger.Error("server failed", zap.Error(err))
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	logger.Info("server stopped")
	return nil
}
