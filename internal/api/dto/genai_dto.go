package dto

import (
	"github.com/disuhitarth/EcommerceConcept/internal/genai"
)

// GenerateImageRequest payload for POST /ai/generate-image.
// When Style is set the prompt is wrapped in product-photography requirements.
type GenerateImageRequest struct {
	Prompt           string                  `json:"prompt" validate:"required"`
	Style            *genai.ImageStyle       `json:"style"`
	GenerationConfig *genai.GenerationConfig `json:"generationConfig"`
}

// EnhanceImageRequest payload for POST /ai/enhance-image.
type EnhanceImageRequest struct {
	ImageBase64      string                  `json:"imageBase64" validate:"required"`
	Instructions     string                  `json:"instructions" validate:"required"`
	GenerationConfig *genai.GenerationConfig `json:"generationConfig"`
}

// AnalyzeImageRequest payload for POST /ai/analyze-image. An empty prompt
// requests product listing details.
type AnalyzeImageRequest struct {
	ImageBase64 string `json:"imageBase64" validate:"required"`
	Prompt      string `json:"prompt"`
}

// OptimizeTextRequest payload for POST /ai/optimize-text.
type OptimizeTextRequest struct {
	Text      string `json:"text" validate:"required"`
	FieldType string `json:"fieldType" validate:"omitempty,oneof=name description tags default"`
}

// GenAIResponse wraps a generation result.
type GenAIResponse struct {
	Success    bool                     `json:"success"`
	Text       string                   `json:"text,omitempty"`
	Images     []string                 `json:"images,omitempty"`
	Suggestion *genai.ProductSuggestion `json:"suggestion,omitempty"`
}
