package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unclebandit/advocacy-backend/internal/app"
	"github.com/unclebandit/advocacy-backend/internal/config"
	"github.com/unclebandit/advocacy-backend/internal/queue"
)

func main() {
	var configPath string

	cmd := &cobra.Command{
		Use:          "worker",
		Short:        "Consume queued participant actions from RabbitMQ",
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
	if cfg.AMQPURL == "" {
		return fmt.Errorf("worker requires AMQP_URL")
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

	q, err := queue.DialAMQP(cfg.AMQPURL, logger)
	if err != nil {
		logger.Error("failed to connect to rabbitmq", zap.Error(err))
		return err
	}
	a.OnClose(q.Close)

	worker := a.ActionWorker()
	if err := queue.StartActionSubscriber(q, worker.Process, logger); err != nil {
		return err
	}

	logger.Info("worker running, waiting for actions", zap.String("queue", queue.TopicCampaignActions))
	<-ctx.Done()
	logger.Info("worker stopping")
	return nil
}
