// cmd/seeder/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/unclebandit/advocacy-backend/internal/config"
	"github.com/unclebandit/advocacy-backend/internal/db"
)

var seedFiles = []string{
	"campaigns.sql",
	"participant_actions.sql",
}

func main() {
	var (
		configPath string
		dir        string
	)

	cmd := &cobra.Command{
		Use:          "seeder",
		Short:        "Migrate the database and load sample campaigns",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), configPath, dir)
		},
	}
	cmd.Flags().StringVar(&configPath, "config", "", "optional YAML config file")
	cmd.Flags().StringVar(&dir, "dir", "seed", "directory holding the seed SQL files")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath, dir string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger, err := config.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer logger.Sync()

	conn, err := db.Connect(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	if err := db.Migrate(ctx, conn); err != nil {
		return err
	}

	for _, name := range seedFiles {
		path := filepath.Join(dir, name)
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if _, err := conn.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("execute %s: %w", path, err)
		}
		logger.Info("seeded", zap.String("file", path))
	}

	logger.Info("database seeding completed")
	return nil
}
