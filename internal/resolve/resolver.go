// Package resolve normalises a valuation record into one flat map of
// canonical fields, whichever historical layout the record was saved in.
//
// Precedence, lowest to highest:
//
//  1. legacy nested shapes (first writer wins, in ShapeKind order)
//  2. root-level scalars and collections (fill gaps only)
//  3. the pdfDetails overlay (always wins for every key it defines, blank
//     values included, except for image collections)
//  4. special remaps (classificationPosh, unitMaintenance)
//  5. defaulted lookups for fields still missing
//  6. derived totals and amount-in-words companions
package resolve

import (
	"github.com/verustcode/valreport/internal/present"
	"github.com/verustcode/valreport/internal/record"
)

const pdfDetailsKey = "pdfDetails"

// Resolve builds the resolved field map for rec. It never fails and never
// modifies rec.
func Resolve(rec record.Record) *Fields {
	f := newFields()
	if rec == nil {
		rec = record.Record{}
	}
	acc := f.values

	applyLegacyShapes(acc, rec)
	applyRootFallback(acc, rec)
	applyPDFDetails(acc, rec)
	applySpecialRemaps(acc, rec)

	for _, rule := range lookupRules {
		rule.apply(acc, rec)
	}

	deriveAreaTotals(acc)
	deriveValuationItemsTotal(acc)
	deriveWords(acc)

	return f
}

func setIfEmpty(acc map[string]any, name string, v any) {
	if cur, ok := acc[name]; ok && !record.IsEmpty(cur) {
		return
	}
	acc[name] = record.Clone(v)
}

func applyLegacyShapes(acc map[string]any, rec record.Record) {
	for _, shape := range legacyShapes {
		for _, a := range shape.extract(rec) {
			setIfEmpty(acc, a.Name, a.Value)
		}
	}
}

func applyRootFallback(acc map[string]any, rec record.Record) {
	for key, v := range rec {
		if key == pdfDetailsKey || !record.IsScalar(v) || record.IsEmpty(v) {
			continue
		}
		setIfEmpty(acc, key, v)
	}
	for _, key := range collectionFields {
		if v, ok := rec[key]; ok && !record.IsEmpty(v) {
			setIfEmpty(acc, key, v)
		}
	}
	if v, ok := rec[FieldSupportingDocuments]; ok && !record.IsEmpty(v) {
		setIfEmpty(acc, FieldDocumentPreviews, v)
	}
}

func applyPDFDetails(acc map[string]any, rec record.Record) {
	details := rec.Object(pdfDetailsKey)
	for key, v := range details {
		switch {
		case imageFields[key]:
			continue
		case numericTotalFields[key] && record.IsEmpty(v):
			continue
		case key == "unitMaintenance" || key == "classificationPosh":
			continue
		}
		acc[key] = record.Clone(v)
	}
}

func applySpecialRemaps(acc map[string]any, rec record.Record) {
	details := rec.Object(pdfDetailsKey)
	if details == nil {
		return
	}

	if v := details["classificationPosh"]; !record.IsEmpty(v) && record.IsScalar(v) {
		acc["unitClassification"] = v
	}

	switch m := details["unitMaintenance"].(type) {
	case string:
		if !record.IsEmpty(m) {
			acc["unitMaintenance"] = m
		}
	case map[string]any:
		if status := m["unitMaintenanceStatus"]; !record.IsEmpty(status) {
			acc["unitMaintenance"] = status
		}
	}
}

// ComputeValue returns pct percent of the resolved fair market value, falling
// back to the total of the valuation items.
func (f *Fields) ComputeValue(pct float64) (float64, bool) {
	for _, name := range []string{"fairMarketValue", FieldTotalValuationItems} {
		if n, ok := f.Number(name); ok {
			return present.CalculatePercentage(n, pct), true
		}
	}
	return 0, false
}
