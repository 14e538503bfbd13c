// Package store provides the durable product storage behind the registry and
// its selectable drivers.
package store

import (
	"context"
	"fmt"

	"github.com/fairyhunter13/product-registry-service/internal/config"
	"github.com/fairyhunter13/product-registry-service/internal/model"
)

// Store is the key-value collaborator the registry writes through. Get and
// Remove report absence through the bool, not the error; errors are reserved
// for storage faults.
type Store interface {
	Get(ctx context.Context, id string) (model.Product, bool, error)
	// Insert writes p under its id, replacing any previous record.
	Insert(ctx context.Context, p model.Product) error
	Remove(ctx context.Context, id string) (model.Product, bool, error)
	// List returns every record in the driver's native order.
	List(ctx context.Context) ([]model.Product, error)
	Ping(ctx context.Context) error
	Close() error
}

// Open builds the store selected by cfg.StoreDriver and wraps it with
// per-call latency metrics.
func Open(cfg config.Config) (Store, error) {
	var (
		s   Store
		err error
	)
	switch cfg.StoreDriver {
	case "memory":
		s = NewMemory()
	case "sqlite", "postgres", "mysql", "sqlserver":
		s, err = OpenGorm(cfg.StoreDriver, cfg.DatabaseDSN)
	case "redis":
		s, err = OpenRedis(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	default:
		return nil, fmt.Errorf("store: unsupported driver %q", cfg.StoreDriver)
	}
	if err != nil {
		return nil, err
	}
	return withMetrics(s, cfg.StoreDriver), nil
}

// Migrate prepares the schema for drivers that manage one. Memory and redis
// need none, so for them it is a no-op.
func Migrate(ctx context.Context, s Store) error {
	type migrator interface {
		AutoMigrate(ctx context.Context) error
	}
	if w, ok := s.(*instrumented); ok {
		s = w.s
	}
	if m, ok := s.(migrator); ok {
		return m.AutoMigrate(ctx)
	}
	return nil
}
