package catalog

import (
	"context"
	"errors"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/noah-isme/kasir-pos/internal/common"
)

const snapshotCacheKey = "catalog:products"

// Lister abstracts the product store for the service and tests.
type Lister interface {
	List(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int64) (Product, error)
	Create(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, p Product) (Product, error)
}

// Service exposes catalog reads with a cache in front of the store. The
// register treats a snapshot as read-only for the lifetime of a sale screen.
type Service struct {
	store      Lister
	cache      *Cache
	cacheStats *prometheus.CounterVec
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Store Lister
	Cache *Cache
	// CacheStats, when set, counts snapshot lookups by outcome
	// (hit, miss, bypass).
	CacheStats *prometheus.CounterVec
}

// NewService validates configuration and constructs a Service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Store == nil {
		return nil, errors.New("catalog store is required")
	}
	return &Service{store: cfg.Store, cache: cfg.Cache, cacheStats: cfg.CacheStats}, nil
}

func (s *Service) countCache(result string) {
	if s.cacheStats != nil {
		s.cacheStats.WithLabelValues(result).Inc()
	}
}

// Snapshot returns the current product list, served from cache when warm.
func (s *Service) Snapshot(ctx context.Context) ([]Product, error) {
	if !s.cache.Enabled() {
		s.countCache("bypass")
	} else {
		var cached []Product
		if hit, err := s.cache.GetJSON(ctx, snapshotCacheKey, &cached); err == nil && hit {
			s.countCache("hit")
			return cached, nil
		}
		s.countCache("miss")
	}
	products, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.cache.SetJSON(ctx, snapshotCacheKey, products)
	return products, nil
}

// Create stores a new product and invalidates the snapshot cache.
func (s *Service) Create(ctx context.Context, p Product) (Product, error) {
	created, err := s.store.Create(ctx, p)
	if err != nil {
		return Product{}, err
	}
	_ = s.cache.Delete(ctx, snapshotCacheKey)
	return created, nil
}

// Update stores product edits and invalidates the snapshot cache.
func (s *Service) Update(ctx context.Context, p Product) (Product, error) {
	updated, err := s.store.Update(ctx, p)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Product{}, &common.AppError{Code: "NOT_FOUND", Message: "product not found", HTTPStatus: http.StatusNotFound, Err: err}
		}
		return Product{}, err
	}
	_ = s.cache.Delete(ctx, snapshotCacheKey)
	return updated, nil
}

// Get returns a single product by id.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	p, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Product{}, &common.AppError{Code: "NOT_FOUND", Message: "product not found", HTTPStatus: http.StatusNotFound, Err: err}
		}
		return Product{}, err
	}
	return p, nil
}
