package dto

import (
	"time"

	"github.com/disuhitarth/EcommerceConcept/internal/domain"
)

// CatalogRequest selects a catalog page. It is read from the query string or a JSON body.
type CatalogRequest struct {
	First int    `json:"first" query:"first" validate:"gte=0"`
	After string `json:"after" query:"after"`
}

// Query converts the request into a catalog query.
func (r CatalogRequest) Query() domain.CatalogQuery {
	return domain.CatalogQuery{First: r.First, After: r.After}
}

// CatalogResponse is one page of products.
type CatalogResponse struct {
	Success   bool                 `json:"success"`
	Products  []domain.Product     `json:"products"`
	PageInfo  domain.PageInfo      `json:"pageInfo"`
	FetchedAt time.Time            `json:"fetchedAt"`
	Source    domain.CatalogSource `json:"source"`
}

// NewCatalogResponse wraps a collection.
func NewCatalogResponse(c *domain.Collection) CatalogResponse {
	products := c.Products
	if products == nil {
		products = []domain.Product{}
	}
	return CatalogResponse{
		Success:   true,
		Products:  products,
		PageInfo:  c.PageInfo,
		FetchedAt: c.FetchedAt,
		Source:    c.Source,
	}
}
