package resolve

import (
	"math"
	"strings"

	"github.com/verustcode/valreport/internal/present"
	"github.com/verustcode/valreport/internal/record"
)

// Derived total field names
const (
	FieldTotalBuiltUpSqm           = "totalBuiltUpSqm"
	FieldTotalBuiltUpSqft          = "totalBuiltUpSqft"
	FieldTotalFloorAreaBalconySqm  = "totalFloorAreaBalconySqm"
	FieldTotalFloorAreaBalconySqft = "totalFloorAreaBalconySqft"
	FieldTotalValuationItems       = "totalValuationItems"
)

// numericTotalFields are copied from pdfDetails only when they hold a value
var numericTotalFields = map[string]bool{
	FieldTotalBuiltUpSqm:           true,
	FieldTotalBuiltUpSqft:          true,
	FieldTotalFloorAreaBalconySqm:  true,
	FieldTotalFloorAreaBalconySqft: true,
}

// areaTotal describes a derived area sum: the named floor fields plus the
// matching unit column of a custom row list.
type areaTotal struct {
	target     string
	floorParts []string
	customList string
	unitKey    string
}

var areaTotals = []areaTotal{
	{
		target:     FieldTotalBuiltUpSqm,
		floorParts: []string{"basementFloorSqm", "groundFloorSqm", "firstFloorSqm"},
		customList: FieldCustomExtentOfSite,
		unitKey:    "sqm",
	},
	{
		target:     FieldTotalBuiltUpSqft,
		floorParts: []string{"basementFloorSqft", "groundFloorSqft", "firstFloorSqft"},
		customList: FieldCustomExtentOfSite,
		unitKey:    "sqft",
	},
	{
		target:     FieldTotalFloorAreaBalconySqm,
		floorParts: []string{"basementFloorBalconySqm", "groundFloorBalconySqm", "firstFloorBalconySqm"},
		customList: FieldCustomFloorAreaBalcony,
		unitKey:    "sqm",
	},
	{
		target:     FieldTotalFloorAreaBalconySqft,
		floorParts: []string{"basementFloorBalconySqft", "groundFloorBalconySqft", "firstFloorBalconySqft"},
		customList: FieldCustomFloorAreaBalcony,
		unitKey:    "sqft",
	},
}

// valuationItemFields are the fixed line items summed into totalValuationItems
var valuationItemFields = []string{
	"wardrobes",
	"showcases",
	"kitchenArrangements",
	"superfineFinish",
	"interiorDecorations",
	"electricityDeposits",
	"collapsibleGates",
	"potentialValue",
	"otherItems",
}

// wordsFields get a "<field>Words" companion when one is not supplied
var wordsFields = []string{
	"fairMarketValue",
	"realisableValue",
	"distressValue",
	"agreementValue",
	"valueCircleRate",
	"insurableValue",
}

func needsDerivation(v any, ok bool) bool {
	if !ok || record.IsEmpty(v) {
		return true
	}
	s, ok := v.(string)
	return ok && strings.EqualFold(strings.TrimSpace(s), "NA")
}

func deriveAreaTotals(acc map[string]any) {
	for _, t := range areaTotals {
		if v, ok := acc[t.target]; !needsDerivation(v, ok) {
			continue
		}

		var sum float64
		for _, part := range t.floorParts {
			if n, ok := present.ParseNumber(acc[part]); ok {
				sum += n
			}
		}
		for _, row := range record.Rows(acc[t.customList]) {
			if n, ok := present.ParseNumber(row[t.unitKey]); ok {
				sum += n
			}
		}

		sum = math.Round(sum*100) / 100
		if sum > 0 {
			acc[t.target] = present.FormatPlainNumber(sum)
		}
	}
}

func deriveValuationItemsTotal(acc map[string]any) {
	if v, ok := acc[FieldTotalValuationItems]; ok && !record.IsEmpty(v) {
		return
	}

	var (
		sum     float64
		counted bool
	)
	for _, name := range valuationItemFields {
		v := acc[name]
		if s, ok := v.(string); ok {
			trimmed := strings.TrimSpace(s)
			if strings.EqualFold(trimmed, "NA") || strings.EqualFold(trimmed, "Nil") {
				continue
			}
		}
		if n, ok := present.ParseNumber(v); ok {
			sum += n
			counted = true
		}
	}
	if counted {
		acc[FieldTotalValuationItems] = present.FormatIndianNumber(sum)
	}
}

func deriveWords(acc map[string]any) {
	for _, name := range wordsFields {
		companion := name + "Words"
		if v, ok := acc[companion]; ok && !record.IsEmpty(v) {
			continue
		}
		if words := present.RupeesInWords(acc[name]); words != "" {
			acc[companion] = words
		}
	}
}
