// Package genai calls the Gemini generateContent API for product imagery and copy.
package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/disuhitarth/EcommerceConcept/internal/config"
	"github.com/disuhitarth/EcommerceConcept/internal/observability"
)

const (
	upstreamService = "gemini"
	// Generated images arrive inline as base64.
	maxResponseBody = 32 << 20
)

// ErrNotConfigured is returned when no API key is set.
var ErrNotConfigured = errors.New("Gemini API is not configured on server")

var dataURIPrefix = regexp.MustCompile(`^data:(image/\w+);base64,`)

// APIError is a failed generateContent call.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Status == 0 {
		return "gemini: " + e.Message
	}
	return fmt.Sprintf("gemini: status %d: %s", e.Status, e.Message)
}

// GenerationConfig tunes sampling for one call.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature"`
	TopK            int     `json:"topK"`
	TopP            float64 `json:"topP"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

type SafetySetting struct {
	Category  string `json:"category"`
	Threshold string `json:"threshold"`
}

var (
	imageGeneration = GenerationConfig{Temperature: 0.4, TopK: 32, TopP: 1, MaxOutputTokens: 4096}
	imageAnalysis   = GenerationConfig{Temperature: 0.7, TopK: 40, TopP: 0.95, MaxOutputTokens: 1024}
	textOptimize    = GenerationConfig{Temperature: 0.7, TopK: 40, TopP: 0.95, MaxOutputTokens: 512}

	defaultSafety = []SafetySetting{
		{Category: "HARM_CATEGORY_HARASSMENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
		{Category: "HARM_CATEGORY_HATE_SPEECH", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
		{Category: "HARM_CATEGORY_SEXUALLY_EXPLICIT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
		{Category: "HARM_CATEGORY_DANGEROUS_CONTENT", Threshold: "BLOCK_MEDIUM_AND_ABOVE"},
	}
)

// Result is the text and images of the first candidate. Images are data URIs.
type Result struct {
	Text   string   `json:"text,omitempty"`
	Images []string `json:"images,omitempty"`
}

// Client is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	textModel  string
	imageModel string
	httpClient *http.Client
	logger     *zap.Logger
	metrics    *observability.Metrics
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Client) { c.logger = l }
}

func WithMetrics(m *observability.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// NewClient builds a client from the generative API settings.
func NewClient(cfg config.GenAIConfig, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: cfg.Timeout()}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

// GenerateImage renders an image from a text prompt. A nil gc uses image defaults.
func (c *Client) GenerateImage(ctx context.Context, prompt string, gc *GenerationConfig) (*Result, error) {
	return c.generate(ctx, c.imageModel, []part{{Text: prompt}}, orDefault(gc, imageGeneration), defaultSafety)
}

// EnhanceImage edits an existing image following the instructions.
func (c *Client) EnhanceImage(ctx context.Context, image, instructions string, gc *GenerationConfig) (*Result, error) {
	parts := []part{inlineImage(image), {Text: instructions}}
	return c.generate(ctx, c.imageModel, parts, orDefault(gc, imageGeneration), defaultSafety)
}

// AnalyzeImage describes an image. An empty prompt asks for product listing details.
func (c *Client) AnalyzeImage(ctx context.Context, image, prompt string) (*Result, error) {
	if strings.TrimSpace(prompt) == "" {
		prompt = AnalysisPrompt
	}
	parts := []part{inlineImage(image), {Text: prompt}}
	return c.generate(ctx, c.textModel, parts, imageAnalysis, nil)
}

// OptimizeText rewrites product copy using the template for fieldType.
func (c *Client) OptimizeText(ctx context.Context, text, fieldType string) (*Result, error) {
	res, err := c.generate(ctx, c.textModel, []part{{Text: OptimizePrompt(text, fieldType)}}, textOptimize, nil)
	if err != nil {
		return nil, err
	}
	res.Text = strings.TrimSpace(res.Text)
	return res, nil
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type content struct {
	Parts []part `json:"parts"`
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig GenerationConfig `json:"generationConfig"`
	SafetySettings   []SafetySetting  `json:"safetySettings,omitempty"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

// inlineImage strips a data URI prefix and keeps its mime type.
func inlineImage(image string) part {
	mime := "image/png"
	if m := dataURIPrefix.FindStringSubmatch(image); m != nil {
		mime = m[1]
		image = image[len(m[0]):]
	}
	return part{InlineData: &inlineData{MimeType: mime, Data: image}}
}

func orDefault(gc *GenerationConfig, def GenerationConfig) GenerationConfig {
	if gc == nil {
		return def
	}
	return *gc
}

func (c *Client) generate(ctx context.Context, model string, parts []part, gc GenerationConfig, safety []SafetySetting) (*Result, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	payload, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: parts}},
		GenerationConfig: gc,
		SafetySettings:   safety,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.RecordUpstream(upstreamService, "error")
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody+1))
	if err != nil {
		c.metrics.RecordUpstream(upstreamService, "error")
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	if len(body) > maxResponseBody {
		c.metrics.RecordUpstream(upstreamService, "error")
		return nil, fmt.Errorf("response body exceeds %d bytes", maxResponseBody)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.metrics.RecordUpstream(upstreamService, "error")
		c.logger.Warn("gemini request failed", zap.String("model", model), zap.Int("status", resp.StatusCode))
		return nil, &APIError{Status: resp.StatusCode, Message: errorMessage(body)}
	}

	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		c.metrics.RecordUpstream(upstreamService, "error")
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if len(out.Candidates) == 0 {
		c.metrics.RecordUpstream(upstreamService, "empty")
		if out.PromptFeedback != nil && out.PromptFeedback.BlockReason != "" {
			return nil, &APIError{Message: "prompt blocked: " + out.PromptFeedback.BlockReason}
		}
		return nil, &APIError{Message: "no candidates returned"}
	}

	res := &Result{}
	var text strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		if p.Text != "" {
			text.WriteString(p.Text)
		}
		if p.InlineData != nil && p.InlineData.Data != "" {
			mime := p.InlineData.MimeType
			if mime == "" {
				mime = "image/png"
			}
			res.Images = append(res.Images, fmt.Sprintf("data:%s;base64,%s", mime, p.InlineData.Data))
		}
	}
	res.Text = text.String()

	c.metrics.RecordUpstream(upstreamService, "ok")
	return res, nil
}

func errorMessage(body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return "Gemini API error"
}
