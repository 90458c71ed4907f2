package genai

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/disuhitarth/EcommerceConcept/internal/config"
)

type capturedRequest struct {
	path   string
	apiKey string
	body   generateRequest
}

func newTestClient(t *testing.T, status int, response string) (*Client, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.path = r.URL.Path
		captured.apiKey = r.Header.Get("X-goog-api-key")
		_ = json.NewDecoder(r.Body).Decode(&captured.body)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(config.GenAIConfig{
		APIKey:         "test-key",
		BaseURL:        srv.URL + "/v1beta/",
		TextModel:      "text-model",
		ImageModel:     "image-model",
		TimeoutSeconds: 5,
	})
	return c, captured
}

func TestGenerateImage(t *testing.T) {
	c, req := newTestClient(t, http.StatusOK, `{
	  "candidates": [{"content": {"parts": [
	    {"text": "Here is your hoodie."},
	    {"inlineData": {"mimeType": "image/jpeg", "data": "QUJD"}}
	  ]}}]
	}`)

	res, err := c.GenerateImage(context.Background(), "a gradient hoodie", nil)
	if err != nil {
		t.Fatalf("GenerateImage() error = %v", err)
	}

	if req.path != "/v1beta/models/image-model:generateContent" {
		t.Errorf("path = %q", req.path)
	}
	if req.apiKey != "test-key" {
		t.Errorf("api key header = %q", req.apiKey)
	}
	if req.body.GenerationConfig != imageGeneration {
		t.Errorf("generationConfig = %+v, want image defaults", req.body.GenerationConfig)
	}
	if len(req.body.SafetySettings) != 4 {
		t.Errorf("safety settings = %d, want 4", len(req.body.SafetySettings))
	}
	if res.Text != "Here is your hoodie." {
		t.Errorf("Text = %q", res.Text)
	}
	if len(res.Images) != 1 || res.Images[0] != "data:image/jpeg;base64,QUJD" {
		t.Errorf("Images = %v", res.Images)
	}
}

func TestGenerateImage_CustomConfig(t *testing.T) {
	c, req := newTestClient(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`)

	gc := &GenerationConfig{Temperature: 1, TopK: 1, TopP: 0.5, MaxOutputTokens: 10}
	if _, err := c.GenerateImage(context.Background(), "x", gc); err != nil {
		t.Fatalf("GenerateImage() error = %v", err)
	}
	if req.body.GenerationConfig != *gc {
		t.Errorf("generationConfig = %+v, want %+v", req.body.GenerationConfig, *gc)
	}
}

func TestEnhanceImage_StripsDataURI(t *testing.T) {
	c, req := newTestClient(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{"inlineData":{"data":"RUZH"}}]}}]}`)

	res, err := c.EnhanceImage(context.Background(), "data:image/webp;base64,QUJD", "remove background", nil)
	if err != nil {
		t.Fatalf("EnhanceImage() error = %v", err)
	}

	parts := req.body.Contents[0].Parts
	if len(parts) != 2 || parts[0].InlineData == nil {
		t.Fatalf("parts = %+v", parts)
	}
	if parts[0].InlineData.Data != "QUJD" || parts[0].InlineData.MimeType != "image/webp" {
		t.Errorf("inlineData = %+v", parts[0].InlineData)
	}
	if parts[1].Text != "remove background" {
		t.Errorf("instructions = %q", parts[1].Text)
	}
	if res.Images[0] != "data:image/png;base64,RUZH" {
		t.Errorf("image = %q, want png default mime", res.Images[0])
	}
}

func TestAnalyzeImage_DefaultPrompt(t *testing.T) {
	c, req := newTestClient(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"{}"}]}}]}`)

	if _, err := c.AnalyzeImage(context.Background(), "QUJD", ""); err != nil {
		t.Fatalf("AnalyzeImage() error = %v", err)
	}
	if req.path != "/v1beta/models/text-model:generateContent" {
		t.Errorf("path = %q", req.path)
	}
	if got := req.body.Contents[0].Parts[1].Text; got != AnalysisPrompt {
		t.Errorf("prompt = %q, want analysis prompt", got)
	}
	if req.body.SafetySettings != nil {
		t.Errorf("safety settings sent for analysis")
	}
}

func TestOptimizeText(t *testing.T) {
	c, req := newTestClient(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"  Build Fast Hoodie Pro \n"}]}}]}`)

	res, err := c.OptimizeText(context.Background(), "hoodie", "name")
	if err != nil {
		t.Fatalf("OptimizeText() error = %v", err)
	}
	if res.Text != "Build Fast Hoodie Pro" {
		t.Errorf("Text = %q", res.Text)
	}
	if got := req.body.Contents[0].Parts[0].Text; !strings.Contains(got, "product name") || !strings.Contains(got, `"hoodie"`) {
		t.Errorf("prompt = %q", got)
	}
	if req.body.GenerationConfig.MaxOutputTokens != 512 {
		t.Errorf("maxOutputTokens = %d, want 512", req.body.GenerationConfig.MaxOutputTokens)
	}
}

func TestGenerate_Errors(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantMsg  string
		wantCode int
	}{
		{name: "api error", status: http.StatusBadRequest, body: `{"error":{"code":400,"message":"API key not valid"}}`, wantMsg: "API key not valid", wantCode: 400},
		{name: "non json", status: http.StatusInternalServerError, body: `oops`, wantMsg: "Gemini API error", wantCode: 500},
		{name: "blocked", status: http.StatusOK, body: `{"promptFeedback":{"blockReason":"SAFETY"}}`, wantMsg: "prompt blocked: SAFETY"},
		{name: "no candidates", status: http.StatusOK, body: `{}`, wantMsg: "no candidates returned"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, tt.status, tt.body)

			_, err := c.OptimizeText(context.Background(), "x", "tags")
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want *APIError", err)
			}
			if apiErr.Message != tt.wantMsg || apiErr.Status != tt.wantCode {
				t.Errorf("APIError = %+v, want %d %q", apiErr, tt.wantCode, tt.wantMsg)
			}
		})
	}
}

func TestNotConfigured(t *testing.T) {
	c := NewClient(config.GenAIConfig{BaseURL: "http://127.0.0.1:1", TimeoutSeconds: 1})

	if c.Configured() {
		t.Fatal("Configured() = true without an API key")
	}
	if _, err := c.GenerateImage(context.Background(), "x", nil); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("GenerateImage() error = %v, want ErrNotConfigured", err)
	}
}
