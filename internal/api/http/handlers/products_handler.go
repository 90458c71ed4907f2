package handlers

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/disuhitarth/EcommerceConcept/internal/api/dto"
	"github.com/disuhitarth/EcommerceConcept/internal/events"
	"github.com/disuhitarth/EcommerceConcept/internal/platform"
)

// ProductCreator publishes new products to the commerce platform.
type ProductCreator interface {
	CreateProduct(ctx context.Context, in platform.ProductInput) (*platform.CreatedProduct, error)
}

// CacheClearer drops cached catalog pages.
type CacheClearer interface {
	Clear(ctx context.Context) error
}

// ProductsHandler exposes operator product management.
type ProductsHandler struct {
	creator    ProductCreator
	cache      CacheClearer
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

// NewProductsHandler constructs handler. cache and dispatcher may be nil.
func NewProductsHandler(creator ProductCreator, cache CacheClearer, dispatcher events.Dispatcher, logger *zap.Logger) *ProductsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductsHandler{creator: creator, cache: cache, dispatcher: dispatcher, logger: logger}
}

// Create handles POST /admin/products.
func (h *ProductsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateProductRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}
	if err := dto.Validate(req, "Title and price are required"); err != nil {
		return err
	}

	ctx := c.UserContext()
	created, err := h.creator.CreateProduct(ctx, req.Input())
	if err != nil {
		return upstreamError(err, "Failed to create product")
	}

	// New products must show up on the next catalog read.
	if h.cache != nil {
		if err := h.cache.Clear(ctx); err != nil {
			h.logger.Warn("clear catalog cache after product creation", zap.Error(err))
		}
	}
	if h.dispatcher != nil {
		id := strconv.FormatInt(created.ID, 10)
		event := events.NewEvent(events.EventProductCreated, id, events.ProductCreatedPayload{ProductID: id, Title: created.Title})
		if err := h.dispatcher.Publish(ctx, event); err != nil {
			h.logger.Warn("publish product created", zap.Error(err))
		}
	}

	product := created.Raw
	if len(product) == 0 {
		product = json.RawMessage(`{}`)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":    true,
		"product":    product,
		"adminUrl":   created.AdminURL,
		"storefront": created.StorefrontURL,
	})
}
