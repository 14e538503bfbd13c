package registry

import (
	"context"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/fairyhunter13/product-registry-service/internal/model"
	"github.com/fairyhunter13/product-registry-service/internal/obs"
	"github.com/fairyhunter13/product-registry-service/internal/store"
)

// Clock supplies the registry's notion of now.
type Clock func() time.Time

// IDFunc supplies identifiers for new products.
type IDFunc func() string

// Publisher receives a notification after each committed mutation. Publish
// must not block; delivery is best-effort and never affects the operation
// result.
type Publisher interface {
	Publish(ctx context.Context, op string, p model.Product)
}

// Mutation names handed to the Publisher.
const (
	OpCreated = "created"
	OpUpdated = "updated"
	OpRated   = "rated"
	OpDeleted = "deleted"
)

// RatingSummary is the aggregate rating view of one product.
type RatingSummary struct {
	ProductID     string  `json:"product_id"`
	AverageRating float64 `json:"average_rating"`
	RatingsCount  int     `json:"ratings_count"`
}

// Registry owns the product collection behind an injected store. A single
// mutex serializes every operation so no read-modify-write sequence
// interleaves with another caller's.
type Registry struct {
	mu    sync.Mutex
	store store.Store
	clock Clock
	newID IDFunc
	pub   Publisher
}

// Option customizes a Registry.
type Option func(*Registry)

// WithClock overrides the wall-clock source.
func WithClock(c Clock) Option { return func(r *Registry) { r.clock = c } }

// WithIDFunc overrides the product id generator.
func WithIDFunc(f IDFunc) Option { return func(r *Registry) { r.newID = f } }

// WithPublisher attaches a change publisher notified after each mutation.
func WithPublisher(p Publisher) Option { return func(r *Registry) { r.pub = p } }

// New builds a Registry over st with uuid ids and a UTC wall clock.
func New(st store.Store, opts ...Option) *Registry {
	r := &Registry{
		store: st,
		clock: func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

const (
	opList    = "list"
	opGet     = "get"
	opAdd     = "add"
	opUpdate  = "update"
	opRate    = "rate"
	opDelete  = "delete"
	opAverage = "average_rating"
)

// List returns every product in the store's native order. An empty registry
// is an explicit failure, not an empty sequence.
func (r *Registry) List(ctx context.Context) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	products, err := r.store.List(ctx)
	if err != nil {
		return nil, r.done(opList, fmt.Errorf("list products: %w", err))
	}
	if len(products) == 0 {
		return nil, r.done(opList, emptyf("no products found"))
	}
	return products, r.done(opList, nil)
}

// Get returns the product stored under id.
func (r *Registry) Get(ctx context.Context, id string) (model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, err := r.lookup(ctx, id)
	return p, r.done(opGet, err)
}

// Add validates payload, enforces the unique-name rule, and inserts a fresh
// product with empty ratings and created_at stamped once.
func (r *Registry) Add(ctx context.Context, payload model.Payload) (model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := validatePayload(payload); err != nil {
		return model.Product{}, r.done(opAdd, err)
	}
	// unique-name rule needs a full scan; fine at this scale
	existing, err := r.store.List(ctx)
	if err != nil {
		return model.Product{}, r.done(opAdd, fmt.Errorf("scan for duplicate name: %w", err))
	}
	for _, p := range existing {
		if p.Name == payload.Name {
			return model.Product{}, r.done(opAdd, conflictf("product name %q already exists", payload.Name))
		}
	}
	p := model.Product{
		ID:          r.newID(),
		Name:        payload.Name,
		Description: payload.Description,
		URL:         payload.URL,
		Ratings:     []int{},
		CreatedAt:   r.clock(),
	}
	if err := r.store.Insert(ctx, p); err != nil {
		return model.Product{}, r.done(opAdd, fmt.Errorf("insert product %s: %w", p.ID, err))
	}
	r.publish(ctx, OpCreated, p)
	return p, r.done(opAdd, nil)
}

// Update merges payload into the stored product, preserving id, ratings,
// and created_at, and stamps updated_at.
func (r *Registry) Update(ctx context.Context, id string, payload model.Payload) (model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := validatePayload(payload); err != nil {
		return model.Product{}, r.done(opUpdate, err)
	}
	p, err := r.lookup(ctx, id)
	if err != nil {
		return model.Product{}, r.done(opUpdate, err)
	}
	p.Name = payload.Name
	p.Description = payload.Description
	p.URL = payload.URL
	now := r.clock()
	p.UpdatedAt = &now
	if err := r.store.Insert(ctx, p); err != nil {
		return model.Product{}, r.done(opUpdate, fmt.Errorf("update product %s: %w", id, err))
	}
	r.publish(ctx, OpUpdated, p)
	return p, r.done(opUpdate, nil)
}

// Rate appends rating to the product's history and stamps updated_at. The
// range check runs before the lookup, so an out-of-range rating reports
// InvalidInput even for unknown ids.
func (r *Registry) Rate(ctx context.Context, id string, rating int) (model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rating < model.RatingMin || rating > model.RatingMax {
		return model.Product{}, r.done(opRate, invalidf("rating must be between %d and %d", model.RatingMin, model.RatingMax))
	}
	p, err := r.lookup(ctx, id)
	if err != nil {
		return model.Product{}, r.done(opRate, err)
	}
	p.Ratings = append(p.Ratings, rating)
	now := r.clock()
	p.UpdatedAt = &now
	if err := r.store.Insert(ctx, p); err != nil {
		return model.Product{}, r.done(opRate, fmt.Errorf("rate product %s: %w", id, err))
	}
	r.publish(ctx, OpRated, p)
	return p, r.done(opRate, nil)
}

// Delete removes and returns the product stored under id.
func (r *Registry) Delete(ctx context.Context, id string) (model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if strings.TrimSpace(id) == "" {
		return model.Product{}, r.done(opDelete, invalidf("product id must not be empty"))
	}
	p, ok, err := r.store.Remove(ctx, id)
	if err != nil {
		return model.Product{}, r.done(opDelete, fmt.Errorf("delete product %s: %w", id, err))
	}
	if !ok {
		return model.Product{}, r.done(opDelete, notFoundf("product %s not found", id))
	}
	r.publish(ctx, OpDeleted, p)
	return p, r.done(opDelete, nil)
}

// AverageRating returns the arithmetic mean of the product's ratings rounded
// to two decimals. Pure read; never stamps updated_at.
func (r *Registry) AverageRating(ctx context.Context, id string) (RatingSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, err := r.lookup(ctx, id)
	if err != nil {
		return RatingSummary{}, r.done(opAverage, err)
	}
	if len(p.Ratings) == 0 {
		return RatingSummary{}, r.done(opAverage, invalidf("product %s has no ratings", id))
	}
	sum := 0
	for _, v := range p.Ratings {
		sum += v
	}
	mean := float64(sum) / float64(len(p.Ratings))
	return RatingSummary{
		ProductID:     p.ID,
		AverageRating: math.Round(mean*100) / 100,
		RatingsCount:  len(p.Ratings),
	}, r.done(opAverage, nil)
}

// lookup resolves id, mapping a blank id to InvalidInput and an unknown one
// to NotFound. Callers hold r.mu.
func (r *Registry) lookup(ctx context.Context, id string) (model.Product, error) {
	if strings.TrimSpace(id) == "" {
		return model.Product{}, invalidf("product id must not be empty")
	}
	p, ok, err := r.store.Get(ctx, id)
	if err != nil {
		return model.Product{}, fmt.Errorf("get product %s: %w", id, err)
	}
	if !ok {
		return model.Product{}, notFoundf("product %s not found", id)
	}
	return p, nil
}

func validatePayload(payload model.Payload) error {
	if strings.TrimSpace(payload.Name) == "" {
		return invalidf("name must not be empty")
	}
	if strings.TrimSpace(payload.Description) == "" {
		return invalidf("description must not be empty")
	}
	if strings.TrimSpace(payload.URL) == "" {
		return invalidf("url must not be empty")
	}
	return nil
}

func (r *Registry) publish(ctx context.Context, op string, p model.Product) {
	if r.pub == nil {
		return
	}
	r.pub.Publish(ctx, op, p)
}

// done records the operation outcome metric and passes err through.
func (r *Registry) done(op string, err error) error {
	outcome := "ok"
	switch {
	case err == nil:
	case IsInvalidInput(err):
		outcome = "invalid_input"
	case IsNotFound(err):
		outcome = "not_found"
	case IsConflict(err):
		outcome = "conflict"
	case IsEmptyCollection(err):
		outcome = "empty"
	default:
		outcome = "error"
	}
	obs.OperationTotal.WithLabelValues(op, outcome).Inc()
	return err
}
