package dto

import (
	"github.com/disuhitarth/EcommerceConcept/internal/platform"
)

// CreateProductRequest payload for POST /admin/products.
type CreateProductRequest struct {
	Title          string                  `json:"title" validate:"required"`
	Description    string                  `json:"description"`
	Price          float64                 `json:"price" validate:"gt=0"`
	CompareAtPrice *float64                `json:"compareAtPrice" validate:"omitempty,gte=0"`
	Category       string                  `json:"category"`
	Tags           []string                `json:"tags"`
	Vendor         string                  `json:"vendor"`
	Images         []string                `json:"images" validate:"max=10"`
	Variants       []ProductVariantRequest `json:"variants" validate:"dive"`
	Inventory      int                     `json:"inventory" validate:"gte=0"`
}

// ProductVariantRequest is one priced option of a new product.
type ProductVariantRequest struct {
	Option1        string   `json:"option1"`
	Price          float64  `json:"price" validate:"gt=0"`
	CompareAtPrice *float64 `json:"compareAtPrice" validate:"omitempty,gte=0"`
	Inventory      int      `json:"inventory" validate:"gte=0"`
}

// Input converts the request into the platform's product input.
func (r CreateProductRequest) Input() platform.ProductInput {
	in := platform.ProductInput{
		Title:          r.Title,
		Description:    r.Description,
		Price:          r.Price,
		CompareAtPrice: r.CompareAtPrice,
		Category:       r.Category,
		Tags:           r.Tags,
		Vendor:         r.Vendor,
		Images:         r.Images,
		Inventory:      r.Inventory,
	}
	for _, v := range r.Variants {
		in.Variants = append(in.Variants, platform.VariantInput{
			Option1:        v.Option1,
			Price:          v.Price,
			CompareAtPrice: v.CompareAtPrice,
			Inventory:      v.Inventory,
		})
	}
	return in
}
