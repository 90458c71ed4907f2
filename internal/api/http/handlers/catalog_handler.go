package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/disuhitarth/EcommerceConcept/internal/api/dto"
	"github.com/disuhitarth/EcommerceConcept/internal/catalog"
)

// CatalogHandler serves the cached product catalog.
type CatalogHandler struct {
	cache *catalog.Cache
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(cache *catalog.Cache) *CatalogHandler {
	return &CatalogHandler{cache: cache}
}

// List handles GET /catalog?first=&after=.
func (h *CatalogHandler) List(c *fiber.Ctx) error {
	req, err := parseCatalogRequest(c, false)
	if err != nil {
		return err
	}

	col, err := h.cache.Get(c.UserContext(), req.Query())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCatalogResponse(col))
}

// Refresh handles POST /catalog/refresh. The page may come from the query or a JSON body.
func (h *CatalogHandler) Refresh(c *fiber.Ctx) error {
	req, err := parseCatalogRequest(c, true)
	if err != nil {
		return err
	}

	col, err := h.cache.ForceRefresh(c.UserContext(), req.Query())
	if err != nil {
		return err
	}
	return c.JSON(dto.NewCatalogResponse(col))
}

// Clear handles DELETE /catalog/cache.
func (h *CatalogHandler) Clear(c *fiber.Ctx) error {
	if err := h.cache.Clear(c.UserContext()); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"success": true, "message": "Catalog cache cleared"})
}

func parseCatalogRequest(c *fiber.Ctx, allowBody bool) (dto.CatalogRequest, error) {
	var req dto.CatalogRequest
	if err := c.QueryParser(&req); err != nil {
		return req, errInvalidPayload
	}
	if allowBody && len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return req, errInvalidPayload
		}
	}
	if err := dto.Validate(req, "first must not be negative"); err != nil {
		return req, err
	}
	return req, nil
}
