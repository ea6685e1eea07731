package resolve

import (
	"github.com/verustcode/valreport/internal/present"
	"github.com/verustcode/valreport/internal/record"
)

type sourceScope int

const (
	// scopeResolved reads the accumulator built by the earlier steps
	scopeResolved sourceScope = iota
	// scopeRecord reads a dotted path of the raw record
	scopeRecord
)

type source struct {
	scope sourceScope
	path  string
}

func resolved(name string) source { return source{scope: scopeResolved, path: name} }
func raw(path string) source      { return source{scope: scopeRecord, path: path} }

// lookupRule resolves one canonical field from an ordered candidate list.
// The first candidate that is non-empty after transform wins.
type lookupRule struct {
	name      string
	sources   []source
	transform func(any) any
}

func addressTransform(v any) any { return present.ExtractAddressValue(v) }

func dateTransform(v any) any {
	if record.IsEmpty(v) {
		return nil
	}
	return present.FormatDate(v)
}

// lookupRules is the defaulted-lookup table. Every rule lists the resolved
// value first so the pdfDetails overlay keeps precedence.
var lookupRules = []lookupRule{
	{name: "clientName", sources: []source{
		resolved("clientName"), raw("applicantName"), raw("customerName"),
		raw("pdfDetails.applicantName"), raw("ownerName"),
	}},
	{name: "bankName", sources: []source{
		resolved("bankName"), raw("bank"), raw("pdfDetails.bank"), raw("bankDetails.name"),
	}},
	{name: "branchName", sources: []source{
		resolved("branchName"), raw("branch"), raw("bankBranch"), raw("bankDetails.branch"),
	}},
	{name: "city", sources: []source{
		resolved("city"), raw("location.city"), raw("pdfDetails.location.city"),
	}},
	{name: "postalAddress", sources: []source{
		resolved("postalAddress"), raw("postalAddress"), raw("pdfDetails.postalAddress"), raw("address"),
	}, transform: addressTransform},
	{name: "propertyAddress", sources: []source{
		resolved("propertyAddress"), raw("propertyAddress"), raw("address"), raw("pdfDetails.address"),
	}, transform: addressTransform},
	{name: "uniqueId", sources: []source{
		resolved("uniqueId"), raw("_id"), raw("id"),
	}},
	{name: "engineerName", sources: []source{
		resolved("engineerName"), raw("valuerName"), raw("createdBy.name"), raw("createdBy"),
	}},
	{name: "ownerName", sources: []source{
		resolved("ownerName"), raw("ownerNameAddress"), raw("pdfDetails.ownerNameAddress"), raw("applicantName"),
	}},
	{name: "propertyType", sources: []source{
		resolved("propertyType"), raw("typeOfProperty"), raw("pdfDetails.typeOfProperty"),
	}},
	{name: "purposeOfValuation", sources: []source{
		resolved("purposeOfValuation"), raw("purpose"), raw("pdfDetails.purpose"),
	}},
	{name: "dateOfInspection", sources: []source{
		resolved("dateOfInspection"), raw("inspectionDate"), raw("pdfDetails.inspectionDate"),
	}, transform: dateTransform},
	{name: "dateOfValuation", sources: []source{
		resolved("dateOfValuation"), raw("valuationDate"), raw("pdfDetails.valuationDate"),
		resolved("dateOfInspection"),
	}, transform: dateTransform},
	{name: "dateOfReport", sources: []source{
		resolved("dateOfReport"), raw("reportDate"), raw("submittedAt"), raw("createdAt"),
	}, transform: dateTransform},
	{name: "layoutPlanIssueDate", sources: []source{
		resolved("layoutPlanIssueDate"),
	}, transform: dateTransform},
	{name: "fairMarketValue", sources: []source{
		resolved("fairMarketValue"), raw("finalValuation"), raw("marketValue"), raw("pdfDetails.marketValue"),
	}},
	{name: "realisableValue", sources: []source{
		resolved("realisableValue"), raw("realizableValue"), raw("pdfDetails.realizableValue"),
	}},
	{name: "insurableValue", sources: []source{
		resolved("insurableValue"), raw("pdfDetails.insurableValue"), raw("valuationResults.insuranceValue"),
	}},
	{name: "unitClassification", sources: []source{
		resolved("unitClassification"), raw("classificationPosh"),
	}},
	{name: "coordinates", sources: []source{
		resolved("coordinates"), raw("latitudeLongitude"), raw("gpsCoordinates"),
	}},
}

// candidate evaluates one source against the accumulator and raw record.
func (s source) candidate(acc map[string]any, rec record.Record) (any, bool) {
	if s.scope == scopeResolved {
		v, ok := acc[s.path]
		return v, ok
	}
	return rec.Lookup(s.path)
}

// apply resolves the rule and writes the winner into acc. A rule with no
// usable candidate leaves acc untouched.
func (r lookupRule) apply(acc map[string]any, rec record.Record) {
	for _, s := range r.sources {
		v, ok := s.candidate(acc, rec)
		if !ok {
			continue
		}
		if r.transform != nil {
			v = r.transform(v)
		}
		if record.IsEmpty(v) || !isDisplayable(v) {
			continue
		}
		acc[r.name] = v
		return
	}
}

// isDisplayable reports whether v can stand in for a scalar field.
func isDisplayable(v any) bool {
	return record.IsScalar(v)
}
