package classifier

import (
	"regexp"
	"strconv"
	"strings"
)

// Intent represents the classified purpose of a user query
type Intent string

const (
	IntentCompare     Intent = "compare_phones"
	IntentExplain     Intent = "explain_feature"
	IntentDetails     Intent = "get_details"
	IntentBrand       Intent = "filter_by_brand"
	IntentBudget      Intent = "budget_search"
	IntentSearch      Intent = "search_phones"
	IntentChitchat    Intent = "chitchat"
	IntentAdversarial Intent = "adversarial"
)

// Params holds structured parameters extracted from a query
type Params struct {
	PriceMin *int     `json:"price_min,omitempty"`
	PriceMax *int     `json:"price_max,omitempty"`
	Brand    string   `json:"brand,omitempty"`
	Features []string `json:"features,omitempty"`
	MinRAM   *int     `json:"min_ram,omitempty"`
}

// HasPrice reports whether any price bound was extracted
func (p Params) HasPrice() bool {
	return p.PriceMin != nil || p.PriceMax != nil
}

// Result contains the classification outcome
type Result struct {
	Intent     Intent  `json:"intent"`
	Confidence float64 `json:"confidence"`
	Params     Params  `json:"extracted_params"`
}

// intentKeywords pairs an intent with its scoring vocabulary. The slice
// order is the tie-break: on equal scores the first-listed intent wins.
// This ordering is observable behavior and must not be reshuffled.
type intentKeywords struct {
	intent   Intent
	keywords []string
}

var scoredIntents = []intentKeywords{
	{IntentCompare, []string{
		"compare", "vs", "versus", "difference", "better",
		"which one", "between", "or",
	}},
	{IntentExplain, []string{
		"what is", "what's", "explain", "meaning", "means",
		"how does", "why", "ois", "eis", "amoled", "oled",
		"refresh rate", "mah", "processor", "chipset",
	}},
	{IntentDetails, []string{
		"tell me about", "details", "specs", "specifications",
		"more about", "info", "information",
	}},
	{IntentBrand, []string{
		"samsung", "oneplus", "google", "pixel", "xiaomi",
		"redmi", "realme", "vivo", "oppo", "nothing", "iqoo",
		"poco", "motorola", "moto",
	}},
	{IntentBudget, []string{
		"under", "below", "budget", "cheap", "affordable",
		"around", "range", "less than", "within",
	}},
	{IntentSearch, []string{
		"best", "recommend", "suggest", "looking for", "need",
		"want", "find", "show", "give me", "phone", "mobile",
	}},
	{IntentChitchat, []string{
		"hello", "hi", "hey", "thanks", "thank you", "bye",
		"good", "okay", "ok", "help",
	}},
}

// featureVocab maps feature tags to their trigger keywords. Definition
// order is fixed so the extracted feature list is deterministic.
type featureVocab struct {
	tag      string
	keywords []string
}

var featureTags = []featureVocab{
	{"camera", []string{"camera", "photo", "photography", "video", "megapixel", "mp"}},
	{"gaming", []string{"gaming", "game", "gamer", "pubg", "fps"}},
	{"battery", []string{"battery", "mah", "backup", "long lasting", "endurance"}},
	{"fast_charging", []string{"fast charging", "quick charge", "turbo charge", "supercharge"}},
	{"display", []string{"display", "screen", "amoled", "oled", "120hz", "144hz"}},
	{"compact", []string{"compact", "small", "one hand", "one-hand", "lightweight"}},
	{"5g", []string{"5g", "5 g"}},
	{"flagship", []string{"flagship", "premium", "high end", "high-end", "best"}},
}

var brandAliases = map[string]string{
	"one plus": "OnePlus",
	"oneplus":  "OnePlus",
	"mi":       "Xiaomi",
	"redmi":    "Xiaomi",
	"moto":     "Motorola",
	"pixel":    "Google",
}

var (
	priceRegex = regexp.MustCompile(
		`(?i)(?:under|below|around|within|less than|budget of?|upto|up to)?\s*` +
			`(?:rs\.?|inr|₹)?\s*(\d[\d,]*k?)\s*(?:rs\.?|inr|₹)?`)

	brandRegex = regexp.MustCompile(
		`(?i)\b(samsung|oneplus|one plus|google|pixel|xiaomi|mi|redmi|` +
			`realme|vivo|oppo|nothing|iqoo|poco|motorola|moto)\b`)

	ramRegex = regexp.MustCompile(`(?i)(\d+)\s*gb\s*(?:ram)?`)
)

// Classifier performs rule-based intent classification and parameter
// extraction over a normalized query
type Classifier struct{}

// NewClassifier creates a new intent classifier
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify determines the intent of a query and extracts its parameters
func (c *Classifier) Classify(query string) Result {
	queryLower := strings.ToLower(strings.TrimSpace(query))

	params := extractParams(queryLower)

	var (
		best     Intent
		bestHits int
	)
	for _, entry := range scoredIntents {
		hits := 0
		for _, kw := range entry.keywords {
			if strings.Contains(queryLower, kw) {
				hits++
			}
		}
		// Strictly greater keeps the first-defined intent on ties
		if hits > bestHits {
			best = entry.intent
			bestHits = hits
		}
	}

	var confidence float64
	if bestHits == 0 {
		best = IntentSearch
		confidence = 0.5
	} else {
		confidence = 0.5 + float64(bestHits)*0.15
		if confidence > 0.95 {
			confidence = 0.95
		}
	}

	// Override rules run after scoring, in this order
	if params.HasPrice() && best != IntentCompare && best != IntentDetails {
		best = IntentBudget
		if confidence < 0.8 {
			confidence = 0.8
		}
	}
	if params.Brand != "" && best == IntentSearch {
		best = IntentBrand
		if confidence < 0.75 {
			confidence = 0.75
		}
	}

	return Result{
		Intent:     best,
		Confidence: confidence,
		Params:     params,
	}
}

func extractParams(queryLower string) Params {
	var params Params

	if m := priceRegex.FindStringSubmatch(queryLower); m != nil && m[1] != "" {
		price, ok := parsePrice(m[1])
		if ok {
			switch {
			case containsAny(queryLower, "under", "below", "less than", "within", "upto", "up to"):
				params.PriceMax = &price
			case strings.Contains(queryLower, "around"):
				lo := int(float64(price) * 0.8)
				hi := int(float64(price) * 1.2)
				params.PriceMin = &lo
				params.PriceMax = &hi
			default:
				params.PriceMax = &price
			}
		}
	}

	if m := brandRegex.FindStringSubmatch(queryLower); m != nil {
		alias := strings.ToLower(m[1])
		if normalized, ok := brandAliases[alias]; ok {
			params.Brand = normalized
		} else {
			params.Brand = titleCase(alias)
		}
	}

	for _, fv := range featureTags {
		for _, kw := range fv.keywords {
			if strings.Contains(queryLower, kw) {
				params.Features = append(params.Features, fv.tag)
				break
			}
		}
	}

	if m := ramRegex.FindStringSubmatch(queryLower); m != nil {
		if ram, err := strconv.Atoi(m[1]); err == nil {
			params.MinRAM = &ram
		}
	}

	return params
}

// parsePrice normalizes a captured price token. A trailing "k" multiplies
// by 1000; a bare value below 1000 is treated as already being in
// thousands, so "30" reads as 30,000.
func parsePrice(token string) (int, bool) {
	token = strings.ReplaceAll(token, ",", "")

	if strings.HasSuffix(token, "k") {
		n, err := strconv.Atoi(strings.TrimSuffix(token, "k"))
		if err != nil {
			return 0, false
		}
		return n * 1000, true
	}

	n, err := strconv.Atoi(token)
	if err != nil {
		return 0, false
	}
	if n < 1000 {
		n *= 1000
	}
	return n, true
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
