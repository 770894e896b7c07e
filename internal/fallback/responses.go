// Package fallback holds the deterministic responses used when the
// language model is unavailable or a query must be answered without it.
// Every text here is canned, so the assistant always has something safe
// to say.
package fallback

import (
	"fmt"
	"strings"

	"github.com/phonewise/phonewise-be/internal/catalog"
	"github.com/phonewise/phonewise-be/internal/classifier"
	"github.com/phonewise/phonewise-be/internal/db"
)

// Refusal is the fixed response for adversarial queries
const Refusal = "I'm a mobile phone shopping assistant. I can help you find, compare, and learn about smartphones. Please ask me about phones, their features, or help finding the right device for you."

// NoPhonesFound is returned when a search matches nothing
const NoPhonesFound = "No phones found matching your criteria."

// NeedTwoPhones is returned when a comparison cannot identify two phones
const NeedTwoPhones = "Please specify at least two phones to compare."

// RefusalSuggestions steer an adversarial user back on topic
var RefusalSuggestions = []string{
	"What's the best phone under 30,000?",
	"Compare Samsung S24 vs OnePlus 12",
	"Best camera phones in 2024",
}

var chitchatSuggestions = []string{
	"Best phones under 25,000",
	"Show me flagship phones",
	"Best camera phones",
}

var featureSuggestions = []string{
	"What is AMOLED?",
	"Explain refresh rate",
	"What does IP68 mean?",
}

// featureExplanations maps feature terms to short canned explanations.
// Lookup is ordered so that "refresh rate" wins over bare substrings.
var featureExplanations = []struct {
	term string
	text string
}{
	{"ois", "OIS (Optical Image Stabilization) uses mechanical movement to counteract camera shake for sharper photos."},
	{"eis", "EIS (Electronic Image Stabilization) uses software to stabilize video by cropping and adjusting frames."},
	{"amoled", "AMOLED displays offer vibrant colors, deep blacks, and better power efficiency than LCD."},
	{"oled", "OLED displays produce their own light, enabling thinner screens and perfect blacks."},
	{"refresh rate", "Refresh rate (Hz) indicates how often the display updates. Higher = smoother scrolling."},
	{"mah", "mAh measures battery capacity. Higher mAh = longer battery life."},
	{"5g", "5G offers faster speeds and lower latency than 4G. Coverage varies by region."},
	{"ip68", "IP68 means dust-tight and waterproof (1.5m for 30 minutes)."},
	{"wireless charging", "Charge your phone by placing it on a compatible pad. Speeds vary from 5W to 50W+."},
}

// Chitchat answers greetings, thanks, and help requests with canned text
func Chitchat(query string) string {
	queryLower := strings.ToLower(query)
	switch {
	case containsAny(queryLower, "hello", "hi", "hey"):
		return "Hello! I'm your mobile phone shopping assistant. What are you looking for?"
	case containsAny(queryLower, "thanks", "thank"):
		return "You're welcome! Anything else about mobile phones?"
	case strings.Contains(queryLower, "help"):
		return "I can help with: finding phones, comparing models, explaining features. What would you like?"
	default:
		return "I'm here to help you find the perfect smartphone! What are you looking for?"
	}
}

// ExplainFeature returns the canned explanation for the first feature
// term found in the query, or a prompt listing what can be explained
func ExplainFeature(query string) string {
	queryLower := strings.ToLower(query)
	for _, e := range featureExplanations {
		if strings.Contains(queryLower, e.term) {
			return e.text
		}
	}
	return "I can explain OIS, AMOLED, refresh rate, mAh, 5G, IP68, and more. Which feature?"
}

// Comparison renders a comparison answer from specs alone
func Comparison(phones []db.Phone) string {
	if len(phones) < 2 {
		return NeedTwoPhones
	}
	names := make([]string, len(phones))
	for i, p := range phones {
		names[i] = p.Name()
	}
	return fmt.Sprintf("Comparison of %s:\n\n%s", strings.Join(names, ", "), catalog.ComparisonSummary(phones))
}

// Details renders a one-line spec sheet for a phone
func Details(phone db.Phone) string {
	features := phone.Features
	if len(features) > 5 {
		features = features[:5]
	}
	return fmt.Sprintf("%s: %s | %.1f\" %s %dHz | %s | %dGB RAM | %dmAh | %s",
		phone.Name(), catalog.FormatINR(phone.PriceINR),
		phone.DisplaySize, phone.DisplayType, phone.RefreshRate,
		phone.Processor, phone.RAMGB, phone.BatteryMAh,
		strings.Join(features, ", "))
}

// SearchResults renders search results as a count plus the top matches
func SearchResults(phones []db.Phone) string {
	if len(phones) == 0 {
		return NoPhonesFound
	}
	top := phones
	if len(top) > 3 {
		top = top[:3]
	}
	lines := make([]string, len(top))
	for i, p := range top {
		lines[i] = fmt.Sprintf("- %s: %s - %s", p.Name(), catalog.FormatINR(p.PriceINR), p.Highlights)
	}
	return fmt.Sprintf("Found %d phones:\n%s", len(phones), strings.Join(lines, "\n"))
}

// Suggestions returns follow-up prompts tailored to the answered intent
func Suggestions(intent classifier.Intent, params classifier.Params) []string {
	switch intent {
	case classifier.IntentAdversarial:
		return RefusalSuggestions
	case classifier.IntentChitchat:
		return chitchatSuggestions
	case classifier.IntentExplain:
		return featureSuggestions
	case classifier.IntentCompare:
		return []string{"Which has better camera?", "Which is better value?"}
	case classifier.IntentBudget:
		return []string{"Show phones with better cameras", "Which has best battery?", "Compare top 2"}
	case classifier.IntentBrand:
		brand := params.Brand
		return []string{
			fmt.Sprintf("Flagship %s phone?", brand),
			fmt.Sprintf("Budget %s under 25,000", brand),
			"Compare with competitors",
		}
	default:
		return []string{"Tell me more about first option", "Compare top recommendations", "Filter by price"}
	}
}

// DetailsSuggestions proposes a follow-up for a single-phone answer
func DetailsSuggestions(phone db.Phone) []string {
	return []string{fmt.Sprintf("Compare %s with alternatives", phone.Model)}
}

// NoResultsSuggestions broadens a search that came back empty
var NoResultsSuggestions = []string{"Show phones under 30,000"}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
