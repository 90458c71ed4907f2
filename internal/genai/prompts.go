package genai

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
)

// AnalysisPrompt asks for listing details of a product photo as JSON.
const AnalysisPrompt = `Analyze this product image and provide the following information in JSON format:
{
  "name": "A catchy, SEO-friendly product name (3-8 words)",
  "description": "A detailed product description for e-commerce (2-3 sentences, highlight features and benefits)",
  "suggestedPrice": "Suggested retail price range in USD (e.g., '$25-$35')",
  "category": "Product category (e.g., 'Apparel', 'Electronics', 'Home Goods')",
  "tags": ["tag1", "tag2", "tag3", "tag4", "tag5"],
  "features": ["feature1", "feature2", "feature3"]
}

Make it compelling and suitable for an online store. Focus on what makes this product appealing.`

var optimizeTemplates = map[string]string{
	"name": `Improve this product name to be more catchy, SEO-friendly, and appealing for e-commerce. Keep it concise (3-8 words). Original: %q

Return only the improved product name, nothing else.`,
	"description": `Improve this product description for e-commerce. Make it more compelling, highlight benefits, and optimize for conversions. Keep it concise (2-4 sentences). Original: %q

Return only the improved description, nothing else.`,
	"tags": `Improve this list of product tags/keywords for better SEO and discoverability. Original: %q

Return only the improved comma-separated tags, nothing else.`,
}

const defaultOptimizeTemplate = `Improve and optimize this e-commerce content to be more professional and compelling: %q

Return only the improved text, nothing else.`

// OptimizePrompt builds the rewrite instruction for a product field.
// Unknown field types get the generic template.
func OptimizePrompt(text, fieldType string) string {
	tmpl, ok := optimizeTemplates[fieldType]
	if !ok {
		tmpl = defaultOptimizeTemplate
	}
	return fmt.Sprintf(tmpl, text)
}

// ImageStyle describes the look of a generated product shot.
type ImageStyle struct {
	Background string `json:"background"`
	Style      string `json:"style"`
	Lighting   string `json:"lighting"`
	Angle      string `json:"angle"`
	Quality    string `json:"quality"`
}

func (s ImageStyle) withDefaults() ImageStyle {
	if s.Background == "" {
		s.Background = "pure white professional e-commerce background"
	}
	if s.Style == "" {
		s.Style = "professional product photography"
	}
	if s.Lighting == "" {
		s.Lighting = "studio lighting with soft shadows"
	}
	if s.Angle == "" {
		s.Angle = "front facing view"
	}
	if s.Quality == "" {
		s.Quality = "high resolution, sharp focus"
	}
	return s
}

// ProductImagePrompt wraps a subject in store-listing photography requirements.
func ProductImagePrompt(subject string, style ImageStyle) string {
	s := style.withDefaults()
	return fmt.Sprintf(`Generate a %s image of: %s.

Requirements:
- Background: %s
- Lighting: %s
- Camera angle: %s
- Quality: %s
- No text or watermarks
- Professional e-commerce product shot
- Clean and minimal composition
- Suitable for online store listing

Generate only the image, no text descriptions.`, s.Style, subject, s.Background, s.Lighting, s.Angle, s.Quality)
}

// ProductSuggestion is the structured answer to AnalysisPrompt.
type ProductSuggestion struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	SuggestedPrice string   `json:"suggestedPrice"`
	Category       string   `json:"category"`
	Tags           []string `json:"tags"`
	Features       []string `json:"features"`
}

var jsonObject = regexp.MustCompile(`(?s)\{.*\}`)

// ParseProductSuggestion extracts the JSON object from a model answer,
// which is often wrapped in prose or a code fence.
func ParseProductSuggestion(text string) (*ProductSuggestion, error) {
	raw := jsonObject.FindString(text)
	if raw == "" {
		return nil, errors.New("no product data found in response")
	}
	var s ProductSuggestion
	if err := json.Unmarshal([]byte(raw), &s); err != nil {
		return nil, fmt.Errorf("decode product data: %w", err)
	}
	return &s, nil
}
