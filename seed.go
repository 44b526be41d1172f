package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/egannguyen/go-food-delivery/internal/seed"
)

var seedForce bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Write the demo dataset to the configured storage",
	Long: `Write the demo users, stores and products to the configured storage.

Without --force nothing is written when the storage already holds data.
Every demo account uses the password ` + seed.DemoPassword + `.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().BoolVar(&seedForce, "force", false, "replace existing data, orders included")
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx := cmd.Context()
	persister, err := openPersister(ctx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer persister.Close()

	ds, err := persister.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load data: %w", err)
	}
	if !ds.Empty() && !seedForce {
		logger.Info("storage already holds data, nothing written", zap.String("driver", cfg.Storage.Driver))
		return nil
	}

	demo, err := seed.Dataset(cfg.Auth.BcryptCost)
	if err != nil {
		return err
	}
	if err := writeDataset(ctx, persister, demo); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users, %d stores, %d products into %s storage\n",
		len(demo.Users), len(demo.Stores), len(demo.Products), cfg.Storage.Driver)
	return nil
}
