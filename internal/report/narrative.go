package report

import (
	"github.com/verustcode/valreport/internal/present"
	"github.com/verustcode/valreport/internal/resolve"
)

// Fixed percentages of the fair market value quoted in the valuation opinion
const (
	MarketPercent     = 100
	RealisablePercent = 90
	DistressPercent   = 80
	InsurablePercent  = 35
)

// Narrative holds the currency lines of the valuation opinion
type Narrative struct {
	MarketValue     string `json:"marketValue"`
	RealisableValue string `json:"realisableValue"`
	DistressValue   string `json:"distressValue"`
	InsurableValue  string `json:"insurableValue"`
}

// ComputeNarrative renders the four opinion values from the fair market value,
// falling back to the valuation items total. Every line is "NA" when neither is numeric.
func ComputeNarrative(f *resolve.Fields) Narrative {
	base, ok := f.ComputeValue(MarketPercent)
	if !ok {
		return Narrative{
			MarketValue:     present.NotAvailable,
			RealisableValue: present.NotAvailable,
			DistressValue:   present.NotAvailable,
			InsurableValue:  present.NotAvailable,
		}
	}
	return Narrative{
		MarketValue:     present.FormatCurrencyWithWords(base, MarketPercent),
		RealisableValue: present.FormatCurrencyWithWords(base, RealisablePercent),
		DistressValue:   present.FormatCurrencyWithWords(base, DistressPercent),
		InsurableValue:  present.FormatCurrencyWithWords(base, InsurablePercent),
	}
}
