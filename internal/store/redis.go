package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fairyhunter13/product-registry-service/internal/model"
)

// redisKey is the hash holding every product, field = product id.
const redisKey = "productregistry:products"

// Redis is a Store keeping products as JSON values in a redis hash. Hash
// iteration order is unspecified, so List sorts by created_at then id.
type Redis struct {
	rdb *redis.Client
}

// OpenRedis connects to redis and verifies the connection is live.
func OpenRedis(addr, password string, db int) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("store: redis ping: %w", err)
	}
	return &Redis{rdb: rdb}, nil
}

func (s *Redis) Get(ctx context.Context, id string) (model.Product, bool, error) {
	raw, err := s.rdb.HGet(ctx, redisKey, id).Result()
	if errors.Is(err, redis.Nil) {
		return model.Product{}, false, nil
	}
	if err != nil {
		return model.Product{}, false, fmt.Errorf("store: get: %w", err)
	}
	var p model.Product
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return model.Product{}, false, fmt.Errorf("store: decode product %s: %w", id, err)
	}
	return p, true, nil
}

func (s *Redis) Insert(ctx context.Context, p model.Product) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("store: encode product %s: %w", p.ID, err)
	}
	if err := s.rdb.HSet(ctx, redisKey, p.ID, data).Err(); err != nil {
		return fmt.Errorf("store: insert: %w", err)
	}
	return nil
}

func (s *Redis) Remove(ctx context.Context, id string) (model.Product, bool, error) {
	p, ok, err := s.Get(ctx, id)
	if err != nil || !ok {
		return model.Product{}, false, err
	}
	if err := s.rdb.HDel(ctx, redisKey, id).Err(); err != nil {
		return model.Product{}, false, fmt.Errorf("store: remove: %w", err)
	}
	return p, true, nil
}

func (s *Redis) List(ctx context.Context) ([]model.Product, error) {
	raw, err := s.rdb.HGetAll(ctx, redisKey).Result()
	if err != nil {
		return nil, fmt.Errorf("store: list: %w", err)
	}
	out := make([]model.Product, 0, len(raw))
	for id, v := range raw {
		var p model.Product
		if err := json.Unmarshal([]byte(v), &p); err != nil {
			return nil, fmt.Errorf("store: decode product %s: %w", id, err)
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Redis) Ping(ctx context.Context) error { return s.rdb.Ping(ctx).Err() }

func (s *Redis) Close() error { return s.rdb.Close() }
