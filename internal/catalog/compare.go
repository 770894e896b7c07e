// Package catalog builds user-facing views over phone records:
// spec-by-spec comparison tables, comparison summaries, and the compact
// context blocks fed to the language model.
package catalog

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phonewise/phonewise-be/internal/db"
)

// ComparisonSpec is one row of a comparison table. Values are keyed by
// phone ID rendered as a string. Winner names the phone that leads on
// this spec; it is empty for subjective specs like processor and camera.
type ComparisonSpec struct {
	SpecName string            `json:"spec_name"`
	Values   map[string]string `json:"values"`
	Winner   string            `json:"winner,omitempty"`
}

// Comparison builds the spec table for two or more phones. Fewer than
// two phones yields nil. Price winner is the cheapest phone; refresh
// rate, RAM, storage, battery and charging winners are the highest.
// Ties keep the earlier phone.
func Comparison(phones []db.Phone) []ComparisonSpec {
	if len(phones) < 2 {
		return nil
	}

	var specs []ComparisonSpec

	priceValues := make(map[string]string, len(phones))
	for _, p := range phones {
		priceValues[idKey(p)] = FormatINR(p.PriceINR)
	}
	cheapest := minBy(phones, func(p db.Phone) int { return p.PriceINR })
	specs = append(specs, ComparisonSpec{
		SpecName: "Price",
		Values:   priceValues,
		Winner:   idKey(cheapest),
	})

	displayValues := make(map[string]string, len(phones))
	for _, p := range phones {
		info := fmt.Sprintf("%.1f\" %s", p.DisplaySize, p.DisplayType)
		if p.RefreshRate > 0 {
			info += fmt.Sprintf(" %dHz", p.RefreshRate)
		}
		displayValues[idKey(p)] = strings.TrimSpace(info)
	}
	maxRefresh := maxBy(phones, func(p db.Phone) int { return p.RefreshRate })
	specs = append(specs, ComparisonSpec{
		SpecName: "Display",
		Values:   displayValues,
		Winner:   winnerIfPositive(maxRefresh, maxRefresh.RefreshRate),
	})

	specs = append(specs, ComparisonSpec{
		SpecName: "Processor",
		Values:   textValues(phones, func(p db.Phone) string { return p.Processor }),
	})

	maxRAM := maxBy(phones, func(p db.Phone) int { return p.RAMGB })
	specs = append(specs, ComparisonSpec{
		SpecName: "RAM",
		Values:   unitValues(phones, func(p db.Phone) int { return p.RAMGB }, "GB"),
		Winner:   winnerIfPositive(maxRAM, maxRAM.RAMGB),
	})

	maxStorage := maxBy(phones, func(p db.Phone) int { return p.StorageGB })
	specs = append(specs, ComparisonSpec{
		SpecName: "Storage",
		Values:   unitValues(phones, func(p db.Phone) int { return p.StorageGB }, "GB"),
		Winner:   winnerIfPositive(maxStorage, maxStorage.StorageGB),
	})

	specs = append(specs, ComparisonSpec{
		SpecName: "Rear Camera",
		Values:   textValues(phones, func(p db.Phone) string { return p.RearCamera }),
	})

	maxBattery := maxBy(phones, func(p db.Phone) int { return p.BatteryMAh })
	specs = append(specs, ComparisonSpec{
		SpecName: "Battery",
		Values:   unitValues(phones, func(p db.Phone) int { return p.BatteryMAh }, "mAh"),
		Winner:   winnerIfPositive(maxBattery, maxBattery.BatteryMAh),
	})

	maxCharging := maxBy(phones, func(p db.Phone) int { return p.FastChargingW })
	specs = append(specs, ComparisonSpec{
		SpecName: "Fast Charging",
		Values:   unitValues(phones, func(p db.Phone) int { return p.FastChargingW }, "W"),
		Winner:   winnerIfPositive(maxCharging, maxCharging.FastChargingW),
	})

	return specs
}

// ComparisonSummary renders a short deterministic summary of a
// comparison: participants, best value, best battery, fastest charging,
// and the price spread when the phones differ in price.
func ComparisonSummary(phones []db.Phone) string {
	if len(phones) < 2 {
		return "Need at least 2 phones to compare."
	}

	names := make([]string, len(phones))
	for i, p := range phones {
		names[i] = p.Name()
	}

	cheapest := minBy(phones, func(p db.Phone) int { return p.PriceINR })
	mostExpensive := maxBy(phones, func(p db.Phone) int { return p.PriceINR })
	bestBattery := maxBy(phones, func(p db.Phone) int { return p.BatteryMAh })
	fastestCharging := maxBy(phones, func(p db.Phone) int { return p.FastChargingW })

	parts := []string{
		fmt.Sprintf("Comparing %s.", strings.Join(names, ", ")),
		fmt.Sprintf("Best value: %s at %s.", cheapest.Name(), FormatINR(cheapest.PriceINR)),
		fmt.Sprintf("Best battery: %s (%dmAh).", bestBattery.Name(), bestBattery.BatteryMAh),
		fmt.Sprintf("Fastest charging: %s (%dW).", fastestCharging.Name(), fastestCharging.FastChargingW),
	}

	if mostExpensive.ID != cheapest.ID {
		diff := mostExpensive.PriceINR - cheapest.PriceINR
		parts = append(parts, fmt.Sprintf("Price difference: %s between cheapest and most expensive.", FormatINR(diff)))
	}

	return strings.Join(parts, " ")
}

// FormatPhoneContext renders phones as the bullet list handed to the
// language model, one line per phone with the specs that matter most.
func FormatPhoneContext(phones []db.Phone) string {
	if len(phones) == 0 {
		return "No phones available."
	}

	lines := make([]string, 0, len(phones))
	for _, p := range phones {
		features := p.Features
		if len(features) > 5 {
			features = features[:5]
		}
		lines = append(lines, fmt.Sprintf(
			"- %s (ID: %d): %s, %s, %dGB RAM, %dmAh battery, %s camera. Highlights: %s. Features: %s",
			p.Name(), p.ID, FormatINR(p.PriceINR), orNA(p.Processor),
			p.RAMGB, p.BatteryMAh, orNA(p.RearCamera),
			orNA(p.Highlights), strings.Join(features, ", "),
		))
	}
	return strings.Join(lines, "\n")
}

// FormatINR renders a rupee amount with thousands separators
func FormatINR(amount int) string {
	s := strconv.Itoa(amount)
	neg := false
	if strings.HasPrefix(s, "-") {
		neg = true
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	out := "₹" + b.String()
	if neg {
		out = "-" + out
	}
	return out
}

func idKey(p db.Phone) string {
	return strconv.Itoa(p.ID)
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func textValues(phones []db.Phone, get func(db.Phone) string) map[string]string {
	values := make(map[string]string, len(phones))
	for _, p := range phones {
		values[idKey(p)] = orNA(get(p))
	}
	return values
}

func unitValues(phones []db.Phone, get func(db.Phone) int, unit string) map[string]string {
	values := make(map[string]string, len(phones))
	for _, p := range phones {
		if v := get(p); v > 0 {
			values[idKey(p)] = fmt.Sprintf("%d%s", v, unit)
		} else {
			values[idKey(p)] = "N/A"
		}
	}
	return values
}

func winnerIfPositive(p db.Phone, value int) string {
	if value > 0 {
		return idKey(p)
	}
	return ""
}

// minBy and maxBy keep the first phone on ties
func minBy(phones []db.Phone, key func(db.Phone) int) db.Phone {
	best := phones[0]
	for _, p := range phones[1:] {
		if key(p) < key(best) {
			best = p
		}
	}
	return best
}

func maxBy(phones []db.Phone, key func(db.Phone) int) db.Phone {
	best := phones[0]
	for _, p := range phones[1:] {
		if key(p) > key(best) {
			best = p
		}
	}
	return best
}
