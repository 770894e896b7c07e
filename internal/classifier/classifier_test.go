package classifier

import (
	"reflect"
	"testing"
)

func TestClassifier_Classify(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name       string
		input      string
		wantIntent Intent
		minConf    float64
	}{
		{
			name:       "budget query",
			input:      "Phones under Rs 20000",
			wantIntent: IntentBudget,
			minConf:    0.8,
		},
		{
			name:       "brand query",
			input:      "Redmi phones",
			wantIntent: IntentBrand,
			minConf:    0.6,
		},
		{
			name:       "comparison query",
			input:      "Compare Samsung S24 vs OnePlus 12",
			wantIntent: IntentCompare,
			minConf:    0.6,
		},
		{
			name:       "feature explanation",
			input:      "What is AMOLED and how does it work?",
			wantIntent: IntentExplain,
			minConf:    0.6,
		},
		{
			name:       "details request",
			input:      "Tell me about the specs of the Pixel 9",
			wantIntent: IntentDetails,
			minConf:    0.6,
		},
		{
			name:       "greeting",
			input:      "hello there",
			wantIntent: IntentChitchat,
			minConf:    0.5,
		},
		{
			name:       "no keyword default",
			input:      "zzz qqq",
			wantIntent: IntentSearch,
			minConf:    0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.input)
			if got.Intent != tt.wantIntent {
				t.Errorf("Classify(%q).Intent = %s, want %s", tt.input, got.Intent, tt.wantIntent)
			}
			if got.Confidence < tt.minConf {
				t.Errorf("Classify(%q).Confidence = %.2f, want >= %.2f", tt.input, got.Confidence, tt.minConf)
			}
			if got.Confidence > 0.95 {
				t.Errorf("Classify(%q).Confidence = %.2f, exceeds cap", tt.input, got.Confidence)
			}
		})
	}
}

func TestClassifier_PriceExtraction(t *testing.T) {
	c := NewClassifier()

	intp := func(n int) *int { return &n }

	tests := []struct {
		name    string
		input   string
		wantMin *int
		wantMax *int
	}{
		{"under with plain number", "phones under 20000", nil, intp(20000)},
		{"k suffix", "best phone under 30k", nil, intp(30000)},
		{"bare small number treated as thousands", "phones within 25", nil, intp(25000)},
		{"around produces a band", "phones around 50000", intp(40000), intp(60000)},
		{"comma separators", "under 1,20,000 budget", nil, intp(120000)},
		{"no modifier defaults to max", "show 40000 phones", nil, intp(40000)},
		{"no price", "best camera phone", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.input).Params
			if !intPtrEq(got.PriceMin, tt.wantMin) {
				t.Errorf("PriceMin = %v, want %v", fmtPtr(got.PriceMin), fmtPtr(tt.wantMin))
			}
			if !intPtrEq(got.PriceMax, tt.wantMax) {
				t.Errorf("PriceMax = %v, want %v", fmtPtr(got.PriceMax), fmtPtr(tt.wantMax))
			}
		})
	}
}

func TestClassifier_BrandNormalization(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		input string
		want  string
	}{
		{"Redmi phones", "Xiaomi"},
		{"mi phones please", "Xiaomi"},
		{"best pixel camera", "Google"},
		{"one plus flagship", "OnePlus"},
		{"oneplus flagship", "OnePlus"},
		{"moto budget options", "Motorola"},
		{"samsung phones", "Samsung"},
		{"vivo phones", "Vivo"},
		{"no brand here", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := c.Classify(tt.input).Params.Brand
			if got != tt.want {
				t.Errorf("Brand = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClassifier_FeatureExtraction(t *testing.T) {
	c := NewClassifier()

	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"single feature", "phone with a great camera", []string{"camera"}},
		{"multiple features in table order", "gaming phone with good camera and battery", []string{"camera", "gaming", "battery"}},
		{"5g", "cheap 5g phones", []string{"5g"}},
		{"display and compact", "compact phone with amoled screen", []string{"display", "compact"}},
		{"none", "redmi phones", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.input).Params.Features
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Features = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassifier_CombinedExtraction(t *testing.T) {
	c := NewClassifier()

	got := c.Classify("Samsung phone under 30000 with good camera")
	if got.Params.Brand != "Samsung" {
		t.Errorf("Brand = %q, want Samsung", got.Params.Brand)
	}
	if got.Params.PriceMax == nil || *got.Params.PriceMax != 30000 {
		t.Errorf("PriceMax = %v, want 30000", fmtPtr(got.Params.PriceMax))
	}
	if !containsStr(got.Params.Features, "camera") {
		t.Errorf("Features = %v, want camera present", got.Params.Features)
	}
	// Price extraction forces budget_search for non-compare intents
	if got.Intent != IntentBudget {
		t.Errorf("Intent = %s, want budget_search", got.Intent)
	}
	if got.Confidence < 0.8 {
		t.Errorf("Confidence = %.2f, want >= 0.8", got.Confidence)
	}
}

func TestClassifier_RAMExtraction(t *testing.T) {
	c := NewClassifier()

	got := c.Classify("phones with 8 gb ram")
	if got.Params.MinRAM == nil || *got.Params.MinRAM != 8 {
		t.Errorf("MinRAM = %v, want 8", fmtPtr(got.Params.MinRAM))
	}

	got = c.Classify("best phones this year")
	if got.Params.MinRAM != nil {
		t.Errorf("MinRAM = %v, want nil", fmtPtr(got.Params.MinRAM))
	}
}

func TestClassifier_TieBreakIsStable(t *testing.T) {
	c := NewClassifier()

	// "or" scores compare_phones and "phone" scores search_phones; the
	// earlier table entry must win on the tie. Known quirk, kept on
	// purpose: ambiguous queries always resolve the same way.
	got := c.Classify("phone or tablet")
	if got.Intent != IntentCompare {
		t.Errorf("Intent = %s, want compare_phones on tie", got.Intent)
	}

	// Repeated classification is deterministic.
	for i := 0; i < 5; i++ {
		if again := c.Classify("phone or tablet"); again.Intent != got.Intent {
			t.Fatalf("tie-break unstable: got %s then %s", got.Intent, again.Intent)
		}
	}
}

func TestClassifier_BrandOverrideOnlyFromSearch(t *testing.T) {
	c := NewClassifier()

	// Brand present but intent already compare_phones: no override.
	got := c.Classify("compare samsung against realme which one is better")
	if got.Intent != IntentCompare {
		t.Errorf("Intent = %s, want compare_phones", got.Intent)
	}

	// Brand present with generic search vocabulary: override applies.
	got = c.Classify("show me vivo mobile")
	if got.Intent != IntentBrand {
		t.Errorf("Intent = %s, want filter_by_brand", got.Intent)
	}
	if got.Confidence < 0.75 {
		t.Errorf("Confidence = %.2f, want >= 0.75", got.Confidence)
	}
}

func intPtrEq(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func fmtPtr(p *int) interface{} {
	if p == nil {
		return nil
	}
	return *p
}

func containsStr(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
