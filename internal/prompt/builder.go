// Package prompt builds the instruction-formatted prompts sent to the
// language model. Each prompt carries its own token budget and sampling
// temperature so callers use a single generation path.
package prompt

import (
	"fmt"
	"strings"

	"github.com/phonewise/phonewise-be/internal/catalog"
	"github.com/phonewise/phonewise-be/internal/classifier"
	"github.com/phonewise/phonewise-be/internal/db"
)

// Prompt is a ready-to-send generation request
type Prompt struct {
	Text        string
	MaxTokens   int
	Temperature float64
}

// Builder constructs prompts for phone shopping responses
type Builder struct{}

// NewBuilder creates a new prompt builder
func NewBuilder() *Builder {
	return &Builder{}
}

// Chitchat builds a short conversational prompt
func (b *Builder) Chitchat(query string) Prompt {
	text := fmt.Sprintf(`[INST] <<SYS>>
You are a friendly mobile phone shopping assistant. Keep responses concise (2-3 sentences).
<</SYS>>
User: %s [/INST]`, query)
	return Prompt{Text: text, MaxTokens: 200, Temperature: 0.7}
}

// FeatureExplanation builds a prompt explaining a phone feature
func (b *Builder) FeatureExplanation(query string) Prompt {
	text := fmt.Sprintf(`[INST] <<SYS>>
You are a mobile phone expert. Explain features concisely (3-4 sentences).
<</SYS>>
User asks: %s
Explain: [/INST]`, query)
	return Prompt{Text: text, MaxTokens: 300, Temperature: 0.5}
}

// Comparison builds a prompt comparing up to three phones by their specs
func (b *Builder) Comparison(phones []db.Phone) Prompt {
	if len(phones) > 3 {
		phones = phones[:3]
	}

	names := make([]string, len(phones))
	specs := make([]string, len(phones))
	for i, p := range phones {
		names[i] = p.Name()
		specs[i] = fmt.Sprintf("%s: %s | %s | %dGB | %dmAh | %s",
			p.Name(), catalog.FormatINR(p.PriceINR), p.Processor, p.RAMGB, p.BatteryMAh, p.RearCamera)
	}

	text := fmt.Sprintf(`[INST] <<SYS>>
Compare these phones objectively. Be concise (4-5 sentences).
<</SYS>>
Compare: %s
Specs:
%s
[/INST]`, strings.Join(names, ", "), strings.Join(specs, "\n"))
	return Prompt{Text: text, MaxTokens: 500, Temperature: 0.5}
}

// Details builds a prompt presenting a single phone
func (b *Builder) Details(query string, phone db.Phone) Prompt {
	features := phone.Features
	if len(features) > 5 {
		features = features[:5]
	}
	info := fmt.Sprintf("%s: %s | %.1f\" %s %dHz | %s | %dGB/%dGB | %s | %dmAh | %s",
		phone.Name(), catalog.FormatINR(phone.PriceINR),
		phone.DisplaySize, phone.DisplayType, phone.RefreshRate,
		phone.Processor, phone.RAMGB, phone.StorageGB,
		phone.RearCamera, phone.BatteryMAh, strings.Join(features, ", "))

	text := fmt.Sprintf(`[INST] <<SYS>>
Present phone details helpfully. Highlight strengths. Be concise (4-5 sentences).
<</SYS>>
User: %s
Phone: %s
[/INST]`, query, info)
	return Prompt{Text: text, MaxTokens: 400, Temperature: 0.6}
}

// SearchResults builds a prompt presenting up to five search results
func (b *Builder) SearchResults(query string, params classifier.Params, phones []db.Phone) Prompt {
	top := phones
	if len(top) > 5 {
		top = top[:5]
	}
	lines := make([]string, len(top))
	for i, p := range top {
		lines[i] = fmt.Sprintf("- %s: %s - %s", p.Name(), catalog.FormatINR(p.PriceINR), p.Highlights)
	}

	context := searchContext(params)
	if context == "" {
		context = "general search"
	}

	text := fmt.Sprintf(`[INST] <<SYS>>
Present search results helpfully. Be concise (3-4 sentences).
<</SYS>>
Query: %s
Context: %s
Found %d phones:
%s
[/INST]`, query, context, len(phones), strings.Join(lines, "\n"))
	return Prompt{Text: text, MaxTokens: 400, Temperature: 0.6}
}

// Extraction builds the structured parameter extraction prompt
func (b *Builder) Extraction(query string, intent classifier.Intent) Prompt {
	text := fmt.Sprintf(`Extract search parameters from this mobile phone query.

Query: "%s"
Intent: %s

Extract JSON: {"features": [], "price_min": null, "price_max": null, "brand": null, "min_ram": null, "search_text": null}

Return ONLY valid JSON.`, query, intent)
	return Prompt{Text: text, MaxTokens: 300, Temperature: 0.3}
}

// searchContext summarizes extracted parameters for the model
func searchContext(params classifier.Params) string {
	var parts []string
	if params.PriceMax != nil {
		parts = append(parts, fmt.Sprintf("budget %d", *params.PriceMax))
	}
	if params.Brand != "" {
		parts = append(parts, params.Brand)
	}
	if len(params.Features) > 0 {
		features := params.Features
		if len(features) > 2 {
			features = features[:2]
		}
		parts = append(parts, strings.Join(features, ", "))
	}
	return strings.Join(parts, ", ")
}
