package domain

import (
	"fmt"
	"slices"
	"time"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 250
)

// CatalogSource records which layer produced a collection.
type CatalogSource string

const (
	SourceRemote  CatalogSource = "remote"
	SourceCache   CatalogSource = "cache"
	SourceDurable CatalogSource = "durable"
	SourceStatic  CatalogSource = "static"
	SourceEmpty   CatalogSource = "empty"
)

// Product is the storefront's normalized view of a sellable item.
type Product struct {
	ID            string    `json:"id" yaml:"id"`
	Name          string    `json:"name" yaml:"name"`
	Description   string    `json:"description" yaml:"description"`
	Price         float64   `json:"price" yaml:"price"`
	OriginalPrice *float64  `json:"originalPrice,omitempty" yaml:"originalPrice,omitempty"`
	Image         string    `json:"image,omitempty" yaml:"image,omitempty"`
	Images        []string  `json:"images,omitempty" yaml:"images,omitempty"`
	Category      string    `json:"category" yaml:"category"`
	Tags          []string  `json:"tags,omitempty" yaml:"tags,omitempty"`
	InStock       bool      `json:"inStock" yaml:"inStock"`
	VariantID     string    `json:"variantId,omitempty" yaml:"variantId,omitempty"`
	Variants      []Variant `json:"variants,omitempty" yaml:"variants,omitempty"`
	Handle        string    `json:"handle,omitempty" yaml:"handle,omitempty"`
	Vendor        string    `json:"vendor,omitempty" yaml:"vendor,omitempty"`
	Emoji         string    `json:"emoji,omitempty" yaml:"emoji,omitempty"`
}

// Variant is a purchasable option of a product.
type Variant struct {
	ID                string          `json:"id" yaml:"id"`
	Title             string          `json:"title" yaml:"title"`
	Price             float64         `json:"price" yaml:"price"`
	CompareAtPrice    *float64        `json:"compareAtPrice,omitempty" yaml:"compareAtPrice,omitempty"`
	Available         bool            `json:"available" yaml:"available"`
	QuantityAvailable *int            `json:"quantityAvailable,omitempty" yaml:"quantityAvailable,omitempty"`
	Options           []VariantOption `json:"options,omitempty" yaml:"options,omitempty"`
}

// VariantOption is a selected option such as size or color.
type VariantOption struct {
	Name  string `json:"name" yaml:"name"`
	Value string `json:"value" yaml:"value"`
}

// PageInfo carries the pagination cursor of a collection.
type PageInfo struct {
	HasNextPage bool   `json:"hasNextPage"`
	EndCursor   string `json:"endCursor,omitempty"`
}

// Collection is one page of the catalog.
type Collection struct {
	Products  []Product     `json:"products"`
	PageInfo  PageInfo      `json:"pageInfo"`
	FetchedAt time.Time     `json:"fetchedAt"`
	Source    CatalogSource `json:"source"`
}

// Clone returns a deep copy; no slice or pointer is shared with c.
func (c *Collection) Clone() *Collection {
	if c == nil {
		return nil
	}
	out := *c
	out.Products = CloneProducts(c.Products)
	return &out
}

// CloneProducts deep-copies ps. A nil input stays nil.
func CloneProducts(ps []Product) []Product {
	if ps == nil {
		return nil
	}
	out := make([]Product, len(ps))
	for i := range ps {
		out[i] = ps[i].Clone()
	}
	return out
}

// Clone returns a copy of p that shares no memory with it.
func (p Product) Clone() Product {
	p.OriginalPrice = clonePtr(p.OriginalPrice)
	p.Images = slices.Clone(p.Images)
	p.Tags = slices.Clone(p.Tags)
	if p.Variants != nil {
		variants := make([]Variant, len(p.Variants))
		for i, v := range p.Variants {
			v.CompareAtPrice = clonePtr(v.CompareAtPrice)
			v.QuantityAvailable = clonePtr(v.QuantityAvailable)
			v.Options = slices.Clone(v.Options)
			variants[i] = v
		}
		p.Variants = variants
	}
	return p
}

func clonePtr[T any](v *T) *T {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}

// CatalogQuery selects a catalog page.
type CatalogQuery struct {
	First int
	After string
}

// Normalize applies the default page size and clamps it to the platform maximum.
func (q CatalogQuery) Normalize(defaultSize int) CatalogQuery {
	if defaultSize <= 0 {
		defaultSize = DefaultPageSize
	}
	if q.First <= 0 {
		q.First = defaultSize
	}
	if q.First > MaxPageSize {
		q.First = MaxPageSize
	}
	return q
}

// Key identifies the query in the cache layers.
func (q CatalogQuery) Key() string {
	return fmt.Sprintf("products_%d_%s", q.First, q.After)
}
