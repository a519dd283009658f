package catalog_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/kasir-pos/internal/catalog"
	"github.com/noah-isme/kasir-pos/internal/common"
)

type stubStore struct {
	listCalls int
	products  []catalog.Product
}

func (s *stubStore) List(context.Context) ([]catalog.Product, error) {
	s.listCalls++
	return s.products, nil
}

func (s *stubStore) Get(_ context.Context, id int64) (catalog.Product, error) {
	for _, p := range s.products {
		if p.ID == id {
			return p, nil
		}
	}
	return catalog.Product{}, catalog.ErrNotFound
}

func (s *stubStore) Create(_ context.Context, p catalog.Product) (catalog.Product, error) {
	p.ID = int64(len(s.products) + 1)
	s.products = append(s.products, p)
	return p, nil
}

func (s *stubStore) Update(_ context.Context, p catalog.Product) (catalog.Product, error) {
	for i := range s.products {
		if s.products[i].ID == p.ID {
			s.products[i] = p
			return p, nil
		}
	}
	return catalog.Product{}, catalog.ErrNotFound
}

func newCachedService(t *testing.T, store *stubStore) *catalog.Service {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	svc, err := catalog.NewService(catalog.ServiceConfig{
		Store: store,
		Cache: catalog.NewCache(rdb, time.Minute),
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestSnapshotCached(t *testing.T) {
	store := &stubStore{products: []catalog.Product{{ID: 1, Name: "Es Teh", Price: 39_000, Visible: true, DisplayOrder: 1}}}
	svc := newCachedService(t, store)

	if _, err := svc.Snapshot(context.Background()); err != nil {
		t.Fatalf("first snapshot: %v", err)
	}
	products, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("second snapshot: %v", err)
	}
	if store.listCalls != 1 {
		t.Fatalf("expected 1 store call, got %d", store.listCalls)
	}
	if len(products) != 1 || products[0].Name != "Es Teh" {
		t.Fatalf("unexpected snapshot %+v", products)
	}
}

func TestWritesInvalidateSnapshot(t *testing.T) {
	store := &stubStore{products: []catalog.Product{{ID: 1, Name: "Es Teh", Price: 39_000, Visible: true, DisplayOrder: 1}}}
	svc := newCachedService(t, store)

	if _, err := svc.Snapshot(context.Background()); err != nil {
		t.Fatalf("warm snapshot: %v", err)
	}
	if _, err := svc.Create(context.Background(), catalog.Product{Name: "Kopi", Price: 12_000, Visible: true, DisplayOrder: 2}); err != nil {
		t.Fatalf("create: %v", err)
	}
	products, err := svc.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("snapshot after create: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("expected refreshed snapshot with 2 products, got %d", len(products))
	}
	if store.listCalls != 2 {
		t.Fatalf("expected cache invalidation to hit the store again, got %d calls", store.listCalls)
	}
}

func newCacheCounter() *prometheus.CounterVec {
	return prometheus.NewCounterVec(prometheus.CounterOpts{Name: "catalog_cache_total"}, []string{"result"})
}

func TestSnapshotCountsCacheOutcomes(t *testing.T) {
	store := &stubStore{products: []catalog.Product{{ID: 1, Name: "Es Teh", Price: 39_000, Visible: true}}}
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	counter := newCacheCounter()
	svc, err := catalog.NewService(catalog.ServiceConfig{
		Store:      store,
		Cache:      catalog.NewCache(rdb, time.Minute),
		CacheStats: counter,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	for range 2 {
		if _, err := svc.Snapshot(context.Background()); err != nil {
			t.Fatalf("snapshot: %v", err)
		}
	}
	if misses := testutil.ToFloat64(counter.WithLabelValues("miss")); misses != 1 {
		t.Fatalf("expected 1 miss, got %v", misses)
	}
	if hits := testutil.ToFloat64(counter.WithLabelValues("hit")); hits != 1 {
		t.Fatalf("expected 1 hit, got %v", hits)
	}
}

func TestSnapshotCountsBypassWithoutCache(t *testing.T) {
	store := &stubStore{products: []catalog.Product{{ID: 1, Name: "Es Teh", Price: 39_000}}}
	counter := newCacheCounter()
	svc, err := catalog.NewService(catalog.ServiceConfig{Store: store, CacheStats: counter})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := svc.Snapshot(context.Background()); err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if bypasses := testutil.ToFloat64(counter.WithLabelValues("bypass")); bypasses != 1 {
		t.Fatalf("expected 1 bypass, got %v", bypasses)
	}
}

func TestUpdateMissingProductIsAppError(t *testing.T) {
	store := &stubStore{}
	svc, err := catalog.NewService(catalog.ServiceConfig{Store: store})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	_, err = svc.Update(context.Background(), catalog.Product{ID: 99, Name: "Hantu", Price: 1_000})
	if !errors.Is(err, catalog.ErrNotFound) {
		t.Fatalf("expected ErrNotFound in chain, got %v", err)
	}
	var appErr *common.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	if appErr.Code != "NOT_FOUND" || appErr.HTTPStatus != 404 {
		t.Fatalf("unexpected mapping %+v", appErr)
	}
}

func TestSnapshotWithoutCache(t *testing.T) {
	store := &stubStore{products: []catalog.Product{{ID: 1, Name: "Es Teh", Price: 39_000}}}
	svc, err := catalog.NewService(catalog.ServiceConfig{Store: store})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	for range 2 {
		if _, err := svc.Snapshot(context.Background()); err != nil {
			t.Fatalf("snapshot: %v", err)
		}
	}
	if store.listCalls != 2 {
		t.Fatalf("expected every read to hit the store with no cache, got %d", store.listCalls)
	}
}
