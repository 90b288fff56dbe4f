// Package cli implements invoicectl, the operator command for preparing the
// invoice database.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Raymond9734/invoice-dashboard/internal/config"
	"github.com/Raymond9734/invoice-dashboard/internal/db"
)

// Execute runs the root command
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "invoicectl",
		Short:        "Manage the invoice dashboard database",
		SilenceUsage: true,
	}

	cmd.AddCommand(newMigrateCmd(openDatabase))
	cmd.AddCommand(newSeedCmd(openDatabase))

	return cmd
}

// opener connects to the configured database
type opener func(ctx context.Context) (*db.DB, *slog.Logger, error)

func openDatabase(ctx context.Context) (*db.DB, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))

	database, err := db.Open(ctx, cfg.Database.DSN(), db.DefaultPool)
	if err != nil {
		return nil, nil, err
	}

	return database, logger, nil
}
