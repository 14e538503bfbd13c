package store

import (
	"context"
	"time"

	"github.com/fairyhunter13/product-registry-service/internal/model"
	"github.com/fairyhunter13/product-registry-service/internal/obs"
)

// instrumented wraps a Store and records per-call latency under the driver
// label.
type instrumented struct {
	s      Store
	driver string
}

func withMetrics(s Store, driver string) Store {
	return &instrumented{s: s, driver: driver}
}

func (w *instrumented) Get(ctx context.Context, id string) (model.Product, bool, error) {
	defer obs.ObserveStoreOp(w.driver, "get", time.Now())
	return w.s.Get(ctx, id)
}

func (w *instrumented) Insert(ctx context.Context, p model.Product) error {
	defer obs.ObserveStoreOp(w.driver, "insert", time.Now())
	return w.s.Insert(ctx, p)
}

func (w *instrumented) Remove(ctx context.Context, id string) (model.Product, bool, error) {
	defer obs.ObserveStoreOp(w.driver, "remove", time.Now())
	return w.s.Remove(ctx, id)
}

func (w *instrumented) List(ctx context.Context) ([]model.Product, error) {
	defer obs.ObserveStoreOp(w.driver, "list", time.Now())
	return w.s.List(ctx)
}

func (w *instrumented) Ping(ctx context.Context) error {
	defer obs.ObserveStoreOp(w.driver, "ping", time.Now())
	return w.s.Ping(ctx)
}

func (w *instrumented) Close() error { return w.s.Close() }
