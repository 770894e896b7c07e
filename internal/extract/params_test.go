package extract

import (
	"context"
	"errors"
	"testing"

	"github.com/phonewise/phonewise-be/internal/classifier"
	"github.com/phonewise/phonewise-be/pkg/huggingface"
)

func TestSearchParamsCleanJSON(t *testing.T) {
	mock := huggingface.NewMockClient()
	mock.GenerateFunc = func(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
		return `{"features": ["camera"], "price_min": null, "price_max": 30000, "brand": "Samsung", "min_ram": 8, "search_text": null}`, nil
	}

	e := NewExtractor(mock)
	params := e.SearchParams(context.Background(), "samsung camera phone under 30000 with 8gb", classifier.IntentBudget)

	if params.PriceMax == nil || *params.PriceMax != 30000 {
		t.Errorf("PriceMax = %v", params.PriceMax)
	}
	if params.Brand == nil || *params.Brand != "Samsung" {
		t.Errorf("Brand = %v", params.Brand)
	}
	if params.MinRAM == nil || *params.MinRAM != 8 {
		t.Errorf("MinRAM = %v", params.MinRAM)
	}
	if len(params.Features) != 1 || params.Features[0] != "camera" {
		t.Errorf("Features = %v", params.Features)
	}
	if params.PriceMin != nil {
		t.Errorf("PriceMin = %v, want nil", params.PriceMin)
	}
}

func TestSearchParamsWrappedJSON(t *testing.T) {
	mock := huggingface.NewMockClient()
	mock.GenerateFunc = func(ctx context.Context, prompt string, maxTokens int, temperature float64) (string, error) {
		return "Sure! Here are the parameters: {\"features\": [], \"price_max\": 20000, \"brand\": null} Hope this helps.", nil
	}

	e := NewExtractor(mock)
	params := e.SearchParams(context.Background(), "phones under 20000", classifier.IntentBudget)

	if params.PriceMax == nil || *params.PriceMax != 20000 {
		t.Errorf("PriceMax = %v", params.PriceMax)
	}
}

func TestSearchParamsFailuresYieldEmpty(t *testing.T) {
	tests := []struct {
		name string
		fn   func(context.Context, string, int, float64) (string, error)
	}{
		{"model error", func(ctx context.Context, p string, m int, t float64) (string, error) {
			return "", errors.New("model down")
		}},
		{"no JSON at all", func(ctx context.Context, p string, m int, t float64) (string, error) {
			return "I cannot extract parameters from that.", nil
		}},
		{"broken JSON", func(ctx context.Context, p string, m int, t float64) (string, error) {
			return `{"price_max": oops}`, nil
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := huggingface.NewMockClient()
			mock.GenerateFunc = tt.fn

			e := NewExtractor(mock)
			params := e.SearchParams(context.Background(), "phones under 20000", classifier.IntentBudget)

			if params.PriceMax != nil || params.Brand != nil || len(params.Features) != 0 {
				t.Errorf("expected empty params, got %+v", params)
			}
		})
	}
}

func TestMergeExtractedValuesOverride(t *testing.T) {
	rulePrice := 25000
	extractedPrice := 30000
	extractedBrand := "OnePlus"
	extractedRAM := 12

	base := classifier.Params{PriceMax: &rulePrice, Brand: "Samsung", Features: []string{"camera"}}
	extra := Params{
		PriceMax: &extractedPrice,
		Brand:    &extractedBrand,
		MinRAM:   &extractedRAM,
		Features: []string{"gaming"},
	}

	merged := Merge(base, extra)

	if *merged.PriceMax != 30000 {
		t.Errorf("PriceMax = %d, extracted value should override", *merged.PriceMax)
	}
	if merged.Brand != "OnePlus" {
		t.Errorf("Brand = %q, extracted value should override", merged.Brand)
	}
	if merged.MinRAM == nil || *merged.MinRAM != 12 {
		t.Errorf("MinRAM = %v", merged.MinRAM)
	}
	if len(merged.Features) != 1 || merged.Features[0] != "gaming" {
		t.Errorf("Features = %v, extracted list should override", merged.Features)
	}
}

func TestMergeKeepsRulesForMissingFields(t *testing.T) {
	rulePrice := 25000
	extractedRAM := 8

	base := classifier.Params{PriceMax: &rulePrice, Brand: "Samsung", Features: []string{"camera"}}
	merged := Merge(base, Params{MinRAM: &extractedRAM})

	if *merged.PriceMax != 25000 {
		t.Errorf("PriceMax = %d, unreported fields keep the rule value", *merged.PriceMax)
	}
	if merged.Brand != "Samsung" {
		t.Errorf("Brand = %q, unreported fields keep the rule value", merged.Brand)
	}
	if len(merged.Features) != 1 || merged.Features[0] != "camera" {
		t.Errorf("Features = %v, nil extracted list keeps the rule value", merged.Features)
	}
	if merged.MinRAM == nil || *merged.MinRAM != 8 {
		t.Errorf("MinRAM = %v", merged.MinRAM)
	}
}

func TestMergeIgnoresBlankBrand(t *testing.T) {
	blank := "  "
	base := classifier.Params{Brand: "Xiaomi"}

	merged := Merge(base, Params{Brand: &blank})

	if merged.Brand != "Xiaomi" {
		t.Errorf("Brand = %q, whitespace-only extraction should not override", merged.Brand)
	}
}

func TestMergeEmptyExtraction(t *testing.T) {
	price := 20000
	base := classifier.Params{PriceMax: &price, Brand: "Samsung", Features: []string{"camera"}}

	merged := Merge(base, Params{})

	if *merged.PriceMax != 20000 || merged.Brand != "Samsung" || len(merged.Features) != 1 {
		t.Errorf("merged = %+v, base should be untouched", merged)
	}
}
