package store

import (
	"context"
	"sync"

	"github.com/fairyhunter13/product-registry-service/internal/model"
)

// Memory is an in-process Store. Its native order is insertion order, so a
// record removed and re-inserted lists last.
type Memory struct {
	mu    sync.RWMutex
	m     map[string]model.Product
	order []string
}

func NewMemory() *Memory {
	return &Memory{m: make(map[string]model.Product)}
}

func (s *Memory) Get(ctx context.Context, id string) (model.Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.m[id]
	if !ok {
		return model.Product{}, false, nil
	}
	return clone(p), true, nil
}

func (s *Memory) Insert(ctx context.Context, p model.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.m[p.ID]; !ok {
		s.order = append(s.order, p.ID)
	}
	s.m[p.ID] = clone(p)
	return nil
}

func (s *Memory) Remove(ctx context.Context, id string) (model.Product, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.m[id]
	if !ok {
		return model.Product{}, false, nil
	}
	delete(s.m, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return clone(p), true, nil
}

func (s *Memory) List(ctx context.Context) ([]model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Product, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, clone(s.m[id]))
	}
	return out, nil
}

func (s *Memory) Ping(ctx context.Context) error { return nil }

func (s *Memory) Close() error { return nil }

// clone copies p so callers never share the ratings backing array with the
// stored record. Empty ratings stay non-nil.
func clone(p model.Product) model.Product {
	if p.Ratings != nil {
		r := make([]int, len(p.Ratings))
		copy(r, p.Ratings)
		p.Ratings = r
	}
	if p.UpdatedAt != nil {
		t := *p.UpdatedAt
		p.UpdatedAt = &t
	}
	return p
}
