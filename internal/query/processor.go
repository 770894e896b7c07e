package query

import (
	"strings"

	"github.com/phonewise/phonewise-be/internal/classifier"
	"github.com/phonewise/phonewise-be/internal/db"
)

// SearchType routes a feature-driven search to a preset catalog query
type SearchType string

const (
	SearchTypeCamera  SearchType = "camera"
	SearchTypeGaming  SearchType = "gaming"
	SearchTypeBattery SearchType = "battery"
	SearchTypeCompact SearchType = "compact"
)

// searchTypePriority fixes which feature wins when several are present
var searchTypePriority = []SearchType{
	SearchTypeCamera,
	SearchTypeGaming,
	SearchTypeBattery,
	SearchTypeCompact,
}

// Criteria is the structured search specification derived from a
// classified query
type Criteria struct {
	Query      string            `json:"query"`
	Intent     classifier.Intent `json:"intent"`
	Filters    db.SearchFilters  `json:"filters"`
	SearchType SearchType        `json:"search_type,omitempty"`
}

// Processor maps classification results to search criteria and resolves
// which catalog items a query mentions
type Processor struct{}

// NewProcessor creates a query processor
func NewProcessor() *Processor {
	return &Processor{}
}

// Process derives search criteria from a classified query. At most one
// search type is set, chosen by fixed priority.
func (p *Processor) Process(query string, res classifier.Result) Criteria {
	criteria := Criteria{
		Query:  query,
		Intent: res.Intent,
	}

	params := res.Params
	if params.PriceMax != nil {
		criteria.Filters.MaxPrice = *params.PriceMax
	}
	if params.PriceMin != nil {
		criteria.Filters.MinPrice = *params.PriceMin
	}
	if params.Brand != "" {
		criteria.Filters.Brand = params.Brand
	}
	if params.MinRAM != nil {
		criteria.Filters.MinRAM = *params.MinRAM
	}

	if len(params.Features) > 0 {
		criteria.Filters.Features = params.Features
		for _, st := range searchTypePriority {
			if hasFeature(params.Features, string(st)) {
				criteria.SearchType = st
				break
			}
		}
	}

	return criteria
}

// MentionedPhones returns the IDs of catalog items explicitly named in
// the query, in candidate order. A phone matches when either "brand
// model" or the model alone appears as a substring.
func (p *Processor) MentionedPhones(query string, phones []db.Phone) []int {
	queryLower := strings.ToLower(query)

	var ids []int
	for _, phone := range phones {
		fullName := strings.ToLower(phone.Brand + " " + phone.Model)
		modelOnly := strings.ToLower(phone.Model)

		if strings.Contains(queryLower, fullName) || strings.Contains(queryLower, modelOnly) {
			ids = append(ids, phone.ID)
		}
	}
	return ids
}

// ComparisonSet selects the phones a comparison query refers to. With two
// or more explicit mentions, the first four are taken. With exactly one,
// up to two price-similar alternatives are added. With none, the caller
// must fall back to generic search results.
func (p *Processor) ComparisonSet(query string, phones []db.Phone) []int {
	mentioned := p.MentionedPhones(query, phones)
	if len(mentioned) >= 2 {
		if len(mentioned) > 4 {
			mentioned = mentioned[:4]
		}
		return mentioned
	}

	if len(mentioned) == 1 {
		target, ok := phoneByID(phones, mentioned[0])
		if !ok {
			return nil
		}
		similar := similarByPrice(target, phones, 2)
		ids := []int{target.ID}
		for _, s := range similar {
			ids = append(ids, s.ID)
		}
		return ids
	}

	return nil
}

// similarByPrice finds up to count candidates within ±25% of the target
// price, closest first
func similarByPrice(target db.Phone, phones []db.Phone, count int) []db.Phone {
	const priceRange = 0.25
	minPrice := float64(target.PriceINR) * (1 - priceRange)
	maxPrice := float64(target.PriceINR) * (1 + priceRange)

	var similar []db.Phone
	for _, p := range phones {
		if p.ID == target.ID {
			continue
		}
		price := float64(p.PriceINR)
		if price >= minPrice && price <= maxPrice {
			similar = append(similar, p)
		}
	}

	// Insertion sort by absolute price distance; on equal distance the
	// pricier phone ranks first
	for i := 1; i < len(similar); i++ {
		for j := i; j > 0 && closerOrPricier(similar[j], similar[j-1], target); j-- {
			similar[j], similar[j-1] = similar[j-1], similar[j]
		}
	}

	if len(similar) > count {
		similar = similar[:count]
	}
	return similar
}

func closerOrPricier(a, b, target db.Phone) bool {
	distA, distB := priceDistance(a, target), priceDistance(b, target)
	if distA != distB {
		return distA < distB
	}
	return a.PriceINR > b.PriceINR
}

func priceDistance(a, b db.Phone) int {
	d := a.PriceINR - b.PriceINR
	if d < 0 {
		return -d
	}
	return d
}

func phoneByID(phones []db.Phone, id int) (db.Phone, bool) {
	for _, p := range phones {
		if p.ID == id {
			return p, true
		}
	}
	return db.Phone{}, false
}

func hasFeature(features []string, tag string) bool {
	for _, f := range features {
		if f == tag {
			return true
		}
	}
	return false
}
