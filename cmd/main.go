package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yungbote/salesagent-backend/internal/app"
	"github.com/yungbote/salesagent-backend/internal/data/db"
	"github.com/yungbote/salesagent-backend/internal/data/seed"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:           "salesagent",
		Short:         "Omnichannel retail sales assistant backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "optional YAML config file")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), configPath)
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			return migrate(configPath)
		},
	})
	rootCmd.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Load the demo catalog, stores, coupons and customers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), configPath)
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, configPath string) error {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return err
	}
	a, err := app.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	a.Start(ctx)
	return a.Run(ctx)
}

func migrate(configPath string) error {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return err
	}
	log, err := app.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	theDB, err := app.OpenDB(log, cfg)
	if err != nil {
		return err
	}
	defer db.Close(theDB)
	log.Info("schema migrated", "driver", cfg.DBDriver)
	return nil
}

func runSeed(ctx context.Context, configPath string) error {
	cfg, err := app.LoadConfig(configPath)
	if err != nil {
		return err
	}
	log, err := app.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer log.Sync()

	theDB, err := app.OpenDB(log, cfg)
	if err != nil {
		return err
	}
	defer db.Close(theDB)

	sum, err := seed.Run(ctx, theDB, log, time.Now().UTC())
	if err != nil {
		return err
	}
	log.Info("seed complete",
		"products", sum.Products,
		"stores", sum.Stores,
		"coupons", sum.Coupons,
		"promotions", sum.Promotions,
		"customers", sum.Customers,
	)
	return nil
}
