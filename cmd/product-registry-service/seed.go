package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/product-registry-service/internal/config"
	"github.com/fairyhunter13/product-registry-service/internal/obs"
	"github.com/fairyhunter13/product-registry-service/internal/registry"
	"github.com/fairyhunter13/product-registry-service/internal/seed"
	"github.com/fairyhunter13/product-registry-service/internal/store"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the demonstration catalogue into the configured store",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg := config.Load()
		obs.InitLogger(cfg.LogLevel)
		st, err := store.Open(cfg)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer func() { _ = st.Close() }()
		ctx := context.Background()
		if err := store.Migrate(ctx, st); err != nil {
			return fmt.Errorf("migrate store: %w", err)
		}
		_, _, err = seed.Run(ctx, registry.New(st))
		return err
	},
}

func init() { rootCmd.AddCommand(seedCmd) }
