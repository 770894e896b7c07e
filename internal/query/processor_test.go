package query

import (
	"reflect"
	"testing"

	"github.com/phonewise/phonewise-be/internal/classifier"
	"github.com/phonewise/phonewise-be/internal/db"
)

func testPhones() []db.Phone {
	return []db.Phone{
		{ID: 1, Brand: "Samsung", Model: "Galaxy S24", PriceINR: 74999},
		{ID: 2, Brand: "OnePlus", Model: "12", PriceINR: 64999},
		{ID: 3, Brand: "Google", Model: "Pixel 8", PriceINR: 75999},
		{ID: 4, Brand: "Xiaomi", Model: "14", PriceINR: 69999},
		{ID: 5, Brand: "Apple", Model: "iPhone 15", PriceINR: 79900},
		{ID: 6, Brand: "Motorola", Model: "Edge 50", PriceINR: 27999},
	}
}

func TestProcessFilters(t *testing.T) {
	p := NewProcessor()

	maxPrice := 30000
	minRAM := 8
	res := classifier.Result{
		Intent: classifier.IntentBudget,
		Params: classifier.Params{
			PriceMax: &maxPrice,
			Brand:    "Samsung",
			MinRAM:   &minRAM,
		},
	}

	criteria := p.Process("samsung phones under 30000 with 8gb ram", res)

	if criteria.Intent != classifier.IntentBudget {
		t.Errorf("intent = %q, want %q", criteria.Intent, classifier.IntentBudget)
	}
	if criteria.Filters.MaxPrice != 30000 {
		t.Errorf("MaxPrice = %d, want 30000", criteria.Filters.MaxPrice)
	}
	if criteria.Filters.Brand != "Samsung" {
		t.Errorf("Brand = %q, want Samsung", criteria.Filters.Brand)
	}
	if criteria.Filters.MinRAM != 8 {
		t.Errorf("MinRAM = %d, want 8", criteria.Filters.MinRAM)
	}
	if criteria.SearchType != "" {
		t.Errorf("SearchType = %q, want empty", criteria.SearchType)
	}
}

func TestProcessSearchTypePriority(t *testing.T) {
	p := NewProcessor()

	tests := []struct {
		name     string
		features []string
		want     SearchType
	}{
		{"camera wins over gaming", []string{"gaming", "camera"}, SearchTypeCamera},
		{"gaming wins over battery", []string{"battery", "gaming"}, SearchTypeGaming},
		{"battery alone", []string{"battery"}, SearchTypeBattery},
		{"compact alone", []string{"compact"}, SearchTypeCompact},
		{"no routable feature", []string{"5g", "display"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := classifier.Result{
				Intent: classifier.IntentSearch,
				Params: classifier.Params{Features: tt.features},
			}
			criteria := p.Process("some query", res)
			if criteria.SearchType != tt.want {
				t.Errorf("SearchType = %q, want %q", criteria.SearchType, tt.want)
			}
			if !reflect.DeepEqual(criteria.Filters.Features, tt.features) {
				t.Errorf("Features = %v, want %v", criteria.Filters.Features, tt.features)
			}
		})
	}
}

func TestMentionedPhones(t *testing.T) {
	p := NewProcessor()
	phones := testPhones()

	tests := []struct {
		name  string
		query string
		want  []int
	}{
		{"full name", "tell me about the samsung galaxy s24", []int{1}},
		{"model only", "how good is the pixel 8 camera", []int{3}},
		{"two mentions", "galaxy s24 vs pixel 8", []int{1, 3}},
		{"no mentions", "best phones under 20000", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.MentionedPhones(tt.query, phones)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("MentionedPhones(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestComparisonSetExplicit(t *testing.T) {
	p := NewProcessor()
	phones := testPhones()

	got := p.ComparisonSet("compare galaxy s24 with pixel 8 and iphone 15", phones)
	want := []int{1, 3, 5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ComparisonSet = %v, want %v", got, want)
	}
}

func TestComparisonSetSingleMention(t *testing.T) {
	p := NewProcessor()
	phones := testPhones()

	// Galaxy S24 at 74999; ±25% band is [56249.25, 93748.75]. Candidates
	// inside: OnePlus 12 (64999, dist 10000), Pixel 8 (75999, dist 1000),
	// Xiaomi 14 (69999, dist 5000), iPhone 15 (79900, dist 4901). The two
	// closest are Pixel 8 and iPhone 15.
	got := p.ComparisonSet("is the galaxy s24 worth it", phones)
	want := []int{1, 3, 5}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ComparisonSet = %v, want %v", got, want)
	}
}

func TestComparisonSetDistanceTie(t *testing.T) {
	p := NewProcessor()
	phones := []db.Phone{
		{ID: 1, Brand: "Vivo", Model: "X100", PriceINR: 50000},
		{ID: 2, Brand: "Realme", Model: "GT 6", PriceINR: 40000},
		{ID: 3, Brand: "OnePlus", Model: "Nord 4", PriceINR: 45000},
		{ID: 4, Brand: "Samsung", Model: "Galaxy S23 FE", PriceINR: 60000},
		{ID: 5, Brand: "Apple", Model: "iPhone 15", PriceINR: 70000},
	}

	// X100 at 50000; the 40000 and 60000 phones are both 10000 away,
	// and the pricier one wins the tie. 70000 falls outside ±25%.
	got := p.ComparisonSet("is the x100 worth buying", phones)
	want := []int{1, 3, 4}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ComparisonSet = %v, want %v", got, want)
	}
}

func TestComparisonSetNoMentions(t *testing.T) {
	p := NewProcessor()

	got := p.ComparisonSet("compare some good phones", testPhones())
	if got != nil {
		t.Errorf("ComparisonSet = %v, want nil", got)
	}
}

func TestComparisonSetCapsAtFour(t *testing.T) {
	p := NewProcessor()
	phones := testPhones()

	got := p.ComparisonSet("galaxy s24 vs 12 vs pixel 8 vs 14 vs iphone 15", phones)
	if len(got) != 4 {
		t.Fatalf("len = %d, want 4", len(got))
	}
	want := []int{1, 2, 3, 4}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ComparisonSet = %v, want %v", got, want)
	}
}
