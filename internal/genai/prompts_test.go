package genai

import (
	"strings"
	"testing"
)

func TestOptimizePrompt(t *testing.T) {
	tests := []struct {
		fieldType string
		want      string
	}{
		{fieldType: "name", want: "improved product name"},
		{fieldType: "description", want: "improved description"},
		{fieldType: "tags", want: "comma-separated tags"},
		{fieldType: "", want: "improved text"},
		{fieldType: "sku", want: "improved text"},
	}

	for _, tt := range tests {
		t.Run(tt.fieldType, func(t *testing.T) {
			got := OptimizePrompt("soft cotton tee", tt.fieldType)
			if !strings.Contains(got, tt.want) {
				t.Errorf("OptimizePrompt(%q) = %q, want it to contain %q", tt.fieldType, got, tt.want)
			}
			if !strings.Contains(got, `"soft cotton tee"`) {
				t.Errorf("OptimizePrompt(%q) does not quote the original text", tt.fieldType)
			}
		})
	}
}

func TestProductImagePrompt(t *testing.T) {
	got := ProductImagePrompt("a gradient hoodie", ImageStyle{Angle: "45 degree angle"})

	for _, want := range []string{
		"Generate a professional product photography image of: a gradient hoodie.",
		"- Camera angle: 45 degree angle",
		"- Background: pure white professional e-commerce background",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}
}

func TestParseProductSuggestion(t *testing.T) {
	text := "Sure! Here you go:\n```json\n{\"name\":\"Build Fast Hoodie\",\"category\":\"Apparel\",\"tags\":[\"hoodie\",\"dev\"]}\n```"

	s, err := ParseProductSuggestion(text)
	if err != nil {
		t.Fatalf("ParseProductSuggestion() error = %v", err)
	}
	if s.Name != "Build Fast Hoodie" || s.Category != "Apparel" || len(s.Tags) != 2 {
		t.Errorf("suggestion = %+v", s)
	}

	if _, err := ParseProductSuggestion("no json here"); err == nil {
		t.Error("ParseProductSuggestion(no json) error = nil, want error")
	}
}
