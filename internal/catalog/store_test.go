package catalog

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/disuhitarth/EcommerceConcept/internal/config"
	"github.com/disuhitarth/EcommerceConcept/internal/domain"
	"github.com/disuhitarth/EcommerceConcept/internal/persistence"
)

func newStores(t *testing.T) map[string]DurableStore {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	db, err := persistence.NewSQLite(context.Background(),
		config.SQLiteConfig{Path: filepath.Join(t.TempDir(), "catalog.db")}, zap.NewNop())
	if err != nil {
		t.Fatalf("NewSQLite() error = %v", err)
	}
	t.Cleanup(db.Close)

	return map[string]DurableStore{
		"memory": NewMemoryStore(),
		"redis":  NewRedisStore(client),
		"sqlite": NewSQLiteStore(db.DB),
	}
}

func sampleCollection() *domain.Collection {
	compareAt := 79.99
	return &domain.Collection{
		Products: []domain.Product{{
			ID:            "gid://shopify/Product/1",
			Name:          "AI Builder Hoodie",
			Price:         59.99,
			OriginalPrice: &compareAt,
			Category:      "hoodies",
			InStock:       true,
			Variants:      []domain.Variant{{ID: "gid://shopify/ProductVariant/1", Title: "M", Price: 59.99, Available: true}},
		}},
		PageInfo:  domain.PageInfo{HasNextPage: true, EndCursor: "abc"},
		FetchedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
		Source:    domain.SourceRemote,
	}
}

func TestDurableStores(t *testing.T) {
	for name, store := range newStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			key := domain.CatalogQuery{First: 50, After: "cursor with spaces"}.Key()

			if _, err := store.Load(ctx, key); !errors.Is(err, ErrMiss) {
				t.Fatalf("Load() on empty store error = %v, want ErrMiss", err)
			}

			want := sampleCollection()
			if err := store.Save(ctx, key, want); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			got, err := store.Load(ctx, key)
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}
			if !got.FetchedAt.Equal(want.FetchedAt) {
				t.Errorf("FetchedAt = %v, want %v", got.FetchedAt, want.FetchedAt)
			}
			if len(got.Products) != 1 || got.Products[0].Name != "AI Builder Hoodie" {
				t.Errorf("Products = %+v", got.Products)
			}
			if got.Products[0].OriginalPrice == nil || *got.Products[0].OriginalPrice != 79.99 {
				t.Errorf("OriginalPrice not preserved")
			}
			if got.PageInfo.EndCursor != "abc" {
				t.Errorf("EndCursor = %q, want abc", got.PageInfo.EndCursor)
			}

			newer := sampleCollection()
			newer.FetchedAt = newer.FetchedAt.Add(time.Minute)
			if err := store.Save(ctx, key, newer); err != nil {
				t.Fatalf("Save() overwrite error = %v", err)
			}
			got, _ = store.Load(ctx, key)
			if !got.FetchedAt.Equal(newer.FetchedAt) {
				t.Errorf("FetchedAt after overwrite = %v, want %v", got.FetchedAt, newer.FetchedAt)
			}

			if err := store.Clear(ctx); err != nil {
				t.Fatalf("Clear() error = %v", err)
			}
			if _, err := store.Load(ctx, key); !errors.Is(err, ErrMiss) {
				t.Errorf("Load() after Clear error = %v, want ErrMiss", err)
			}
		})
	}
}

func TestRedisStore_ClearLeavesOtherKeys(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	ctx := context.Background()

	if err := mr.Set("session:tok-1", "{}"); err != nil {
		t.Fatalf("seed session key: %v", err)
	}
	store := NewRedisStore(client)
	for i := 0; i < 250; i++ {
		key := domain.CatalogQuery{First: i + 1}.Key()
		if err := store.Save(ctx, key, sampleCollection()); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	if keys := mr.Keys(); len(keys) != 1 || keys[0] != "session:tok-1" {
		t.Errorf("keys after Clear = %v, want only the session key", keys)
	}
}

func TestDurableFallback_MarksSource(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	q := domain.CatalogQuery{First: 50}
	_ = store.Save(ctx, q.Key(), sampleCollection())

	col, err := DurableFallback(store).Lookup(ctx, q)
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if col.Source != domain.SourceDurable {
		t.Errorf("Source = %q, want durable", col.Source)
	}
}

func TestStaticFallback(t *testing.T) {
	now := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	s := NewStaticFallback(func() time.Time { return now })

	if got := len(s.Products()); got != 12 {
		t.Fatalf("built-in products = %d, want 12", got)
	}

	col, err := s.Lookup(context.Background(), domain.CatalogQuery{First: 50})
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if len(col.Products) != 12 || col.PageInfo.HasNextPage {
		t.Errorf("Lookup() = %d products, hasNext=%v, want 12, false", len(col.Products), col.PageInfo.HasNextPage)
	}
	first := col.Products[0]
	if first.Name != "AI Builder Hoodie" || first.Price != 59.99 || first.Category != "hoodies" || !first.InStock {
		t.Errorf("first product = %+v", first)
	}
	if !col.FetchedAt.Equal(now) {
		t.Errorf("FetchedAt = %v, want %v", col.FetchedAt, now)
	}
}

func TestParseStaticProducts_RejectsEmpty(t *testing.T) {
	if _, err := parseStaticProducts([]byte("products: []\n")); err == nil {
		t.Error("parseStaticProducts(empty) error = nil, want error")
	}
	if _, err := parseStaticProducts([]byte("products: {")); err == nil {
		t.Error("parseStaticProducts(malformed) error = nil, want error")
	}
}
