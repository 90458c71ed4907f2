package platform

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/disuhitarth/EcommerceConcept/internal/domain"
)

const storefrontService = "shopify_storefront"

const productsQuery = `
query getProducts($first: Int!, $after: String) {
  products(first: $first, after: $after) {
    pageInfo { hasNextPage endCursor }
    edges {
      cursor
      node {
        id
        title
        description
        handle
        productType
        tags
        vendor
        availableForSale
        images(first: 5) { edges { node { url altText } } }
        variants(first: 10) {
          edges {
            node {
              id
              title
              price { amount currencyCode }
              compareAtPrice { amount currencyCode }
              availableForSale
              quantityAvailable
              selectedOptions { name value }
            }
          }
        }
      }
    }
  }
}`

type graphQLRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type money struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type productsResponse struct {
	Data struct {
		Products struct {
			PageInfo struct {
				HasNextPage bool   `json:"hasNextPage"`
				EndCursor   string `json:"endCursor"`
			} `json:"pageInfo"`
			Edges []struct {
				Node productNode `json:"node"`
			} `json:"edges"`
		} `json:"products"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

type productNode struct {
	ID               string   `json:"id"`
	Title            string   `json:"title"`
	Description      string   `json:"description"`
	Handle           string   `json:"handle"`
	ProductType      string   `json:"productType"`
	Tags             []string `json:"tags"`
	Vendor           string   `json:"vendor"`
	AvailableForSale bool     `json:"availableForSale"`
	Images           struct {
		Edges []struct {
			Node struct {
				URL string `json:"url"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"images"`
	Variants struct {
		Edges []struct {
			Node variantNode `json:"node"`
		} `json:"edges"`
	} `json:"variants"`
}

type variantNode struct {
	ID                string                 `json:"id"`
	Title             string                 `json:"title"`
	Price             money                  `json:"price"`
	CompareAtPrice    *money                 `json:"compareAtPrice"`
	AvailableForSale  bool                   `json:"availableForSale"`
	QuantityAvailable *int                   `json:"quantityAvailable"`
	SelectedOptions   []domain.VariantOption `json:"selectedOptions"`
}

// FetchProducts reads one page of the catalog from the Storefront API.
func (c *Client) FetchProducts(ctx context.Context, q domain.CatalogQuery) (*domain.Collection, error) {
	if !c.StorefrontConfigured() {
		return nil, ErrNotConfigured
	}

	vars := map[string]any{"first": q.First}
	if q.After != "" {
		vars["after"] = q.After
	}

	var resp productsResponse
	url := fmt.Sprintf("%s/api/%s/graphql.json", c.baseURL, c.apiVersion)
	headers := map[string]string{"X-Shopify-Storefront-Access-Token": c.storefrontToken}
	if err := c.doRequest(ctx, storefrontService, url, headers, graphQLRequest{Query: productsQuery, Variables: vars}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Errors) > 0 {
		c.metrics.RecordUpstream(storefrontService, "graphql_error")
		return nil, &APIError{Message: resp.Errors[0].Message}
	}

	products := resp.Data.Products
	out := &domain.Collection{
		Products: make([]domain.Product, 0, len(products.Edges)),
		PageInfo: domain.PageInfo{
			HasNextPage: products.PageInfo.HasNextPage,
			EndCursor:   products.PageInfo.EndCursor,
		},
	}
	for _, edge := range products.Edges {
		out.Products = append(out.Products, c.formatProduct(edge.Node))
	}
	return out, nil
}

// formatProduct maps a Storefront node onto the storefront's product shape.
// Price and compare-at price come from the first variant.
func (c *Client) formatProduct(n productNode) domain.Product {
	p := domain.Product{
		ID:          n.ID,
		Name:        n.Title,
		Description: n.Description,
		Category:    n.ProductType,
		Tags:        n.Tags,
		InStock:     n.AvailableForSale,
		Handle:      n.Handle,
		Vendor:      n.Vendor,
	}
	if strings.TrimSpace(p.Category) == "" {
		p.Category = "Uncategorized"
	}

	for _, img := range n.Images.Edges {
		p.Images = append(p.Images, img.Node.URL)
	}
	if len(p.Images) > 0 {
		p.Image = p.Images[0]
	}

	for _, edge := range n.Variants.Edges {
		v := edge.Node
		p.Variants = append(p.Variants, domain.Variant{
			ID:                v.ID,
			Title:             v.Title,
			Price:             c.parseAmount(v.ID, &v.Price),
			CompareAtPrice:    c.optionalAmount(v.ID, v.CompareAtPrice),
			Available:         v.AvailableForSale,
			QuantityAvailable: v.QuantityAvailable,
			Options:           v.SelectedOptions,
		})
	}
	if len(p.Variants) > 0 {
		first := p.Variants[0]
		p.Price = first.Price
		p.OriginalPrice = first.CompareAtPrice
		p.VariantID = first.ID
	}
	return p
}

// parseAmount reads a decimal money string. Malformed amounts become 0.
func (c *Client) parseAmount(variantID string, m *money) float64 {
	if m == nil {
		return 0
	}
	f, err := strconv.ParseFloat(m.Amount, 64)
	if err != nil {
		c.logger.Warn("malformed price from storefront",
			zap.String("variant_id", variantID),
			zap.String("amount", m.Amount),
			zap.Error(err))
		return 0
	}
	return f
}

func (c *Client) optionalAmount(variantID string, m *money) *float64 {
	if m == nil || m.Amount == "" {
		return nil
	}
	f := c.parseAmount(variantID, m)
	return &f
}
