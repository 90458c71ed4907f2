package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	adminService     = "shopify_admin"
	defaultVendor    = "The Merch Concept"
	defaultCategory  = "General"
	defaultInventory = 100
)

var dataURIType = regexp.MustCompile(`^data:image/(\w+);`)

// ProductInput is a new product as submitted by an operator.
type ProductInput struct {
	Title          string
	Description    string
	Price          float64
	CompareAtPrice *float64
	Category       string
	Tags           []string
	Vendor         string
	Images         []string
	Variants       []VariantInput
	Inventory      int
}

// VariantInput is one priced option of a new product.
type VariantInput struct {
	Option1        string
	Price          float64
	CompareAtPrice *float64
	Inventory      int
}

// CreatedProduct is the platform's answer to a product creation.
type CreatedProduct struct {
	ID            int64           `json:"id"`
	Handle        string          `json:"handle"`
	Title         string          `json:"title"`
	AdminURL      string          `json:"adminUrl"`
	StorefrontURL string          `json:"storefront"`
	Raw           json.RawMessage `json:"product"`
}

type adminProduct struct {
	Title          string         `json:"title"`
	BodyHTML       string         `json:"body_html"`
	Vendor         string         `json:"vendor"`
	ProductType    string         `json:"product_type"`
	Tags           string         `json:"tags"`
	Status         string         `json:"status"`
	Published      bool           `json:"published"`
	PublishedScope string         `json:"published_scope"`
	PublishedAt    string         `json:"published_at"`
	Variants       []adminVariant `json:"variants"`
	Images         []adminImage   `json:"images,omitempty"`
}

type adminVariant struct {
	Option1             string  `json:"option1,omitempty"`
	Price               string  `json:"price"`
	CompareAtPrice      *string `json:"compare_at_price"`
	InventoryQuantity   int     `json:"inventory_quantity"`
	InventoryManagement string  `json:"inventory_management"`
}

type adminImage struct {
	Src        string `json:"src,omitempty"`
	Attachment string `json:"attachment,omitempty"`
	Filename   string `json:"filename,omitempty"`
}

// CreateProduct publishes a new, active product to the online store.
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (*CreatedProduct, error) {
	if !c.AdminConfigured() {
		return nil, ErrNotConfigured
	}

	body := map[string]adminProduct{"product": buildAdminProduct(in, time.Now().UTC())}

	var resp struct {
		Product json.RawMessage `json:"product"`
	}
	url := fmt.Sprintf("%s/admin/api/%s/products.json", c.baseURL, c.apiVersion)
	headers := map[string]string{"X-Shopify-Access-Token": c.adminToken}
	if err := c.doRequest(ctx, adminService, url, headers, body, &resp); err != nil {
		return nil, err
	}

	out := &CreatedProduct{Raw: resp.Product}
	if err := json.Unmarshal(resp.Product, out); err != nil {
		return nil, fmt.Errorf("decode created product: %w", err)
	}
	out.Raw = resp.Product
	out.AdminURL = fmt.Sprintf("https://%s/admin/products/%d", c.domain, out.ID)
	out.StorefrontURL = fmt.Sprintf("https://%s/products/%s", c.domain, out.Handle)
	return out, nil
}

func buildAdminProduct(in ProductInput, now time.Time) adminProduct {
	inventory := in.Inventory
	if inventory <= 0 {
		inventory = defaultInventory
	}

	p := adminProduct{
		Title:          in.Title,
		BodyHTML:       in.Description,
		Vendor:         firstNonEmpty(in.Vendor, defaultVendor),
		ProductType:    firstNonEmpty(in.Category, defaultCategory),
		Tags:           strings.Join(in.Tags, ", "),
		Status:         "active",
		Published:      true,
		PublishedScope: "web",
		PublishedAt:    now.Format(time.RFC3339),
	}

	if len(in.Variants) > 0 {
		for _, v := range in.Variants {
			qty := v.Inventory
			if qty <= 0 {
				qty = inventory
			}
			p.Variants = append(p.Variants, adminVariant{
				Option1:             v.Option1,
				Price:               formatPrice(v.Price),
				CompareAtPrice:      optionalPrice(v.CompareAtPrice),
				InventoryQuantity:   qty,
				InventoryManagement: "shopify",
			})
		}
	} else {
		p.Variants = []adminVariant{{
			Price:               formatPrice(in.Price),
			CompareAtPrice:      optionalPrice(in.CompareAtPrice),
			InventoryQuantity:   inventory,
			InventoryManagement: "shopify",
		}}
	}

	for i, img := range in.Images {
		p.Images = append(p.Images, toAdminImage(img, i))
	}
	return p
}

// toAdminImage uploads data URIs as attachments and passes URLs through.
func toAdminImage(img string, index int) adminImage {
	if !strings.HasPrefix(img, "data:image") {
		return adminImage{Src: img}
	}
	ext := "png"
	if m := dataURIType.FindStringSubmatch(img); m != nil {
		ext = m[1]
	}
	data := img
	if i := strings.IndexByte(img, ','); i >= 0 {
		data = img[i+1:]
	}
	return adminImage{
		Attachment: data,
		Filename:   fmt.Sprintf("product-image-%d.%s", index+1, ext),
	}
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', 2, 64)
}

func optionalPrice(p *float64) *string {
	if p == nil || *p <= 0 {
		return nil
	}
	s := formatPrice(*p)
	return &s
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
