package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/driver/sqlserver"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/fairyhunter13/product-registry-service/internal/model"
)

// Gorm is a Store backed by a SQL database. Its native order is created_at
// then id.
type Gorm struct {
	db *gorm.DB
}

// OpenGorm opens the database, configures the connection pool, and verifies
// the connection is live.
func OpenGorm(driver, dsn string) (*Gorm, error) {
	dialector, err := buildDialector(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("store: build dialector: %w", err)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("store: get sql.DB: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	sqlDB.SetConnMaxIdleTime(2 * time.Minute)
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("store: ping: %w", err)
	}
	return &Gorm{db: db}, nil
}

func buildDialector(driver, dsn string) (gorm.Dialector, error) {
	switch driver {
	case "sqlite":
		return sqlite.Open(dsn), nil
	case "postgres":
		return postgres.Open(dsn), nil
	case "mysql":
		return mysql.Open(dsn), nil
	case "sqlserver":
		return sqlserver.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported driver %q (supported: sqlite, postgres, mysql, sqlserver)", driver)
	}
}

// AutoMigrate creates or updates the products table.
func (s *Gorm) AutoMigrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&model.Product{}); err != nil {
		return fmt.Errorf("store: migrate: %w", err)
	}
	return nil
}

func (s *Gorm) Get(ctx context.Context, id string) (model.Product, bool, error) {
	var p model.Product
	err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Product{}, false, nil
	}
	if err != nil {
		return model.Product{}, false, fmt.Errorf("store: get: %w", err)
	}
	if p.Ratings == nil {
		p.Ratings = []int{}
	}
	return p, true, nil
}

func (s *Gorm) Insert(ctx context.Context, p model.Product) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&p).Error
	if err != nil {
		return fmt.Errorf("store: insert: %w", err)
	}
	return nil
}

func (s *Gorm) Remove(ctx context.Context, id string) (model.Product, bool, error) {
	p, ok, err := s.Get(ctx, id)
	if err != nil || !ok {
		return model.Product{}, false, err
	}
	if err := s.db.WithContext(ctx).Delete(&model.Product{}, "id = ?", id).Error; err != nil {
		return model.Product{}, false, fmt.Errorf("store: remove: %w", err)
	}
	return p, true, nil
}

func (s *Gorm) List(ctx context.Context) ([]model.Product, error) {
	var out []model.Product
	if err := s.db.WithContext(ctx).Order("created_at, id").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	if out == nil {
		out = []model.Product{}
	}
	for i := range out {
		if out[i].Ratings == nil {
			out[i].Ratings = []int{}
		}
	}
	return out, nil
}

func (s *Gorm) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Gorm) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
