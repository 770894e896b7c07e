// Package extract enriches rule-based classification with parameters
// pulled from the query by the language model. Extraction is best
// effort: any failure yields empty parameters and the caller keeps the
// rule-based ones.
package extract

import (
	"context"
	"encoding/json"
	"log"
	"regexp"
	"strings"

	"github.com/phonewise/phonewise-be/internal/classifier"
	"github.com/phonewise/phonewise-be/internal/prompt"
	"github.com/phonewise/phonewise-be/pkg/llm"
)

// jsonObjectRegex pulls the first flat JSON object out of a response
// that wraps it in prose
var jsonObjectRegex = regexp.MustCompile(`\{[^{}]*\}`)

// Params holds model-extracted search parameters. Pointer fields are
// nil when the model did not report them.
type Params struct {
	Features   []string `json:"features"`
	PriceMin   *int     `json:"price_min"`
	PriceMax   *int     `json:"price_max"`
	Brand      *string  `json:"brand"`
	MinRAM     *int     `json:"min_ram"`
	SearchText *string  `json:"search_text"`
}

// Extractor asks the model for structured search parameters
type Extractor struct {
	client  llm.Client
	builder *prompt.Builder
}

// NewExtractor creates a parameter extractor
func NewExtractor(client llm.Client) *Extractor {
	return &Extractor{
		client:  client,
		builder: prompt.NewBuilder(),
	}
}

// SearchParams extracts parameters for the query. On any model or parse
// failure it returns empty params and no error; extraction never blocks
// a response.
func (e *Extractor) SearchParams(ctx context.Context, query string, intent classifier.Intent) Params {
	p := e.builder.Extraction(query, intent)

	response, err := e.client.Generate(ctx, p.Text, p.MaxTokens, p.Temperature)
	if err != nil {
		log.Printf("Parameter extraction failed: %v", err)
		return Params{}
	}

	params, ok := parseJSONResponse(response)
	if !ok {
		log.Printf("Parameter extraction returned unparseable response: %.100s", response)
		return Params{}
	}
	return params
}

// Merge overlays extracted parameters onto rule-based ones. Every
// parameter the model reported replaces the rule-derived value; nil
// fields leave the rules untouched.
func Merge(base classifier.Params, extra Params) classifier.Params {
	merged := base
	if extra.PriceMin != nil {
		merged.PriceMin = extra.PriceMin
	}
	if extra.PriceMax != nil {
		merged.PriceMax = extra.PriceMax
	}
	if extra.Brand != nil && strings.TrimSpace(*extra.Brand) != "" {
		merged.Brand = strings.TrimSpace(*extra.Brand)
	}
	if extra.MinRAM != nil {
		merged.MinRAM = extra.MinRAM
	}
	if extra.Features != nil {
		merged.Features = extra.Features
	}
	return merged
}

// parseJSONResponse decodes the model output, falling back to the first
// embedded JSON object when the response wraps it in text
func parseJSONResponse(response string) (Params, bool) {
	var params Params
	if err := json.Unmarshal([]byte(response), &params); err == nil {
		return params, true
	}

	match := jsonObjectRegex.FindString(response)
	if match == "" {
		return Params{}, false
	}
	if err := json.Unmarshal([]byte(match), &params); err != nil {
		return Params{}, false
	}
	return params, true
}
