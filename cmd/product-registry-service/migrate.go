package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/product-registry-service/internal/config"
	"github.com/fairyhunter13/product-registry-service/internal/obs"
	"github.com/fairyhunter13/product-registry-service/internal/store"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the product schema for SQL drivers",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg := config.Load()
		obs.InitLogger(cfg.LogLevel)
		st, err := store.Open(cfg)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer func() { _ = st.Close() }()
		if err := store.Migrate(context.Background(), st); err != nil {
			return err
		}
		obs.Logger.Info("migrate_complete", "store_driver", cfg.StoreDriver)
		return nil
	},
}

func init() { rootCmd.AddCommand(migrateCmd) }
