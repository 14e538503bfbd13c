package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/fairyhunter13/product-registry-service/internal/changelog"
	"github.com/fairyhunter13/product-registry-service/internal/config"
	httpapi "github.com/fairyhunter13/product-registry-service/internal/http"
	"github.com/fairyhunter13/product-registry-service/internal/obs"
	"github.com/fairyhunter13/product-registry-service/internal/registry"
	"github.com/fairyhunter13/product-registry-service/internal/store"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func init() { rootCmd.AddCommand(serveCmd) }

func runServe(_ *cobra.Command, _ []string) error {
	cfg := config.Load()
	obs.InitLogger(cfg.LogLevel)
	obs.Logger.Info("service_starting", "store_driver", cfg.StoreDriver, "addr", cfg.HTTPAddr)

	st, err := store.Open(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = st.Close() }()
	if err := store.Migrate(context.Background(), st); err != nil {
		return fmt.Errorf("migrate store: %w", err)
	}

	feed := changelog.NewFeed(cfg.ChangelogBuffer)
	mgr := changelog.NewManager(cfg, feed)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	mgr.Start(ctx)

	reg := registry.New(st, registry.WithPublisher(mgr))
	app := httpapi.NewApp(cfg, reg, st, mgr)
	mux := httpapi.NewRouter(app)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		obs.Logger.Info("http_listen", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errc:
		obs.Logger.Error("http_server_error", "error", err.Error())
		return err
	case s := <-sigc:
		obs.Logger.Info("shutdown_signal", "signal", s.String())
	}

	app.StartShutdown()
	obs.Logger.Info("shutdown_drain_begin", "backlog_size", mgr.BacklogSize())

	ctxDrain, cancelDrain := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelDrain()
	if drained := mgr.DrainUntil(ctxDrain); !drained {
		obs.Logger.Warn("shutdown_drain_timeout")
	} else {
		obs.Logger.Info("shutdown_drain_complete")
	}

	ctxSrv, cancelSrv := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSrv()
	if err := srv.Shutdown(ctxSrv); err != nil {
		obs.Logger.Error("http_shutdown_error", "error", err.Error())
	}
	mgr.Stop()
	obs.Logger.Info("service_stopped")
	return nil
}
