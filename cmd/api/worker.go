package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gr8terthings/signup-proxy/internal/config"
	"github.com/gr8terthings/signup-proxy/internal/infra/database"
	"github.com/gr8terthings/signup-proxy/internal/infra/queue"
)

func workerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "worker",
		Short: "Move side-effect failures from RabbitMQ into Postgres",
		Args:  cobra.NoArgs,
		RunE:  runWorker,
	}
}

func runWorker(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadWorker()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDBConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	repo := database.NewFailureRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	rabbit, err := queue.NewRabbitMQ(cfg.RabbitMQURL)
	if err != nil {
		return err
	}
	defer rabbit.Close()

	return queue.NewWorker(rabbit.Ch, repo, cfg.Logger).Start(ctx, queue.QueueName)
}
