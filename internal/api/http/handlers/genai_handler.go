package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/disuhitarth/EcommerceConcept/internal/api/dto"
	"github.com/disuhitarth/EcommerceConcept/internal/genai"
	apperrors "github.com/disuhitarth/EcommerceConcept/pkg/util"
)

const genaiFailure = "Gemini API error"

// GenAIHandler exposes content generation for product listings.
type GenAIHandler struct {
	client *genai.Client
	logger *zap.Logger
}

// NewGenAIHandler constructs handler.
func NewGenAIHandler(client *genai.Client, logger *zap.Logger) *GenAIHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GenAIHandler{client: client, logger: logger}
}

// GenerateImage handles POST /ai/generate-image.
func (h *GenAIHandler) GenerateImage(c *fiber.Ctx) error {
	if err := h.ready(); err != nil {
		return err
	}
	var req dto.GenerateImageRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}
	if err := dto.Validate(req, "Prompt is required"); err != nil {
		return err
	}

	prompt := req.Prompt
	if req.Style != nil {
		prompt = genai.ProductImagePrompt(req.Prompt, *req.Style)
	}
	res, err := h.client.GenerateImage(c.UserContext(), prompt, req.GenerationConfig)
	if err != nil {
		return upstreamError(err, genaiFailure)
	}
	return c.JSON(dto.GenAIResponse{Success: true, Text: res.Text, Images: res.Images})
}

// EnhanceImage handles POST /ai/enhance-image.
func (h *GenAIHandler) EnhanceImage(c *fiber.Ctx) error {
	if err := h.ready(); err != nil {
		return err
	}
	var req dto.EnhanceImageRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}
	if err := dto.Validate(req, "Image and instructions are required"); err != nil {
		return err
	}

	res, err := h.client.EnhanceImage(c.UserContext(), req.ImageBase64, req.Instructions, req.GenerationConfig)
	if err != nil {
		return upstreamError(err, genaiFailure)
	}
	return c.JSON(dto.GenAIResponse{Success: true, Text: res.Text, Images: res.Images})
}

// AnalyzeImage handles POST /ai/analyze-image. Without a custom prompt the
// answer is also parsed into a product suggestion when possible.
func (h *GenAIHandler) AnalyzeImage(c *fiber.Ctx) error {
	if err := h.ready(); err != nil {
		return err
	}
	var req dto.AnalyzeImageRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}
	if err := dto.Validate(req, "Image is required"); err != nil {
		return err
	}

	res, err := h.client.AnalyzeImage(c.UserContext(), req.ImageBase64, req.Prompt)
	if err != nil {
		return upstreamError(err, genaiFailure)
	}

	resp := dto.GenAIResponse{Success: true, Text: res.Text}
	if req.Prompt == "" {
		suggestion, err := genai.ParseProductSuggestion(res.Text)
		if err != nil {
			h.logger.Debug("analysis answer is not a product suggestion", zap.Error(err))
		} else {
			resp.Suggestion = suggestion
		}
	}
	return c.JSON(resp)
}

// OptimizeText handles POST /ai/optimize-text.
func (h *GenAIHandler) OptimizeText(c *fiber.Ctx) error {
	if err := h.ready(); err != nil {
		return err
	}
	var req dto.OptimizeTextRequest
	if err := c.BodyParser(&req); err != nil {
		return errInvalidPayload
	}
	if err := dto.Validate(req, "Text is required"); err != nil {
		return err
	}

	res, err := h.client.OptimizeText(c.UserContext(), req.Text, req.FieldType)
	if err != nil {
		return upstreamError(err, genaiFailure)
	}
	return c.JSON(dto.GenAIResponse{Success: true, Text: res.Text})
}

func (h *GenAIHandler) ready() error {
	if !h.client.Configured() {
		return apperrors.NewServiceUnavailable(genai.ErrNotConfigured.Error())
	}
	return nil
}
