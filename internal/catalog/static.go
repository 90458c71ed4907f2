package catalog

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/disuhitarth/EcommerceConcept/internal/domain"
)

//go:embed static_products.yaml
var staticProductsYAML []byte

type staticFile struct {
	Products []domain.Product `yaml:"products"`
}

// StaticFallback serves the built-in product set. It answers every first page
// and has nothing beyond it.
type StaticFallback struct {
	products []domain.Product
	now      func() time.Time
}

// NewStaticFallback parses the embedded product set. The file is part of the
// binary, so a parse failure is a build defect and panics.
func NewStaticFallback(now func() time.Time) *StaticFallback {
	products, err := parseStaticProducts(staticProductsYAML)
	if err != nil {
		panic(err)
	}
	if now == nil {
		now = time.Now
	}
	return &StaticFallback{products: products, now: now}
}

func parseStaticProducts(raw []byte) ([]domain.Product, error) {
	var f staticFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse static products: %w", err)
	}
	if len(f.Products) == 0 {
		return nil, errors.New("parse static products: empty product list")
	}
	return f.Products, nil
}

// Products returns a copy of the built-in set.
func (s *StaticFallback) Products() []domain.Product {
	return domain.CloneProducts(s.products)
}

func (s *StaticFallback) Lookup(_ context.Context, q domain.CatalogQuery) (*domain.Collection, error) {
	if q.After != "" {
		return nil, ErrMiss
	}

	n := q.First
	if n <= 0 || n > len(s.products) {
		n = len(s.products)
	}
	return &domain.Collection{
		Products:  domain.CloneProducts(s.products[:n]),
		PageInfo:  domain.PageInfo{HasNextPage: n < len(s.products)},
		FetchedAt: s.now().UTC(),
		Source:    domain.SourceStatic,
	}, nil
}
