package resolve

import "sort"

// generalFields are root-level fields the report reads directly
var generalFields = []string{
	"clientName", "bankName", "branchName", "city", "postalAddress", "propertyAddress",
	"uniqueId", "engineerName", "ownerName", "propertyType", "purposeOfValuation",
	"dateOfInspection", "dateOfValuation", "dateOfReport", "mobileNumber",
	"documentsProduced", "briefDescription", "occupiedBy", "tenancyDetails",
	"nearbyLandmark", "roadWidth", "landArea", "zoning",
	"basementFloorSqm", "basementFloorSqft", "groundFloorSqm", "groundFloorSqft",
	"firstFloorSqm", "firstFloorSqft",
	"basementFloorBalconySqm", "basementFloorBalconySqft", "groundFloorBalconySqm",
	"groundFloorBalconySqft", "firstFloorBalconySqm", "firstFloorBalconySqft",
	"agreementForSaleExecutedName", "remarks",
}

// canonicalFields is every name Display renders, sorted and de-duplicated.
var canonicalFields = buildCanonicalFields()

func buildCanonicalFields() []string {
	seen := make(map[string]bool)
	add := func(name string) { seen[name] = true }

	for _, name := range generalFields {
		add(name)
	}
	for _, shape := range legacyShapes {
		for _, m := range shape.Mappings {
			add(m.To)
		}
	}
	for _, rule := range lookupRules {
		add(rule.name)
	}
	for _, t := range areaTotals {
		add(t.target)
	}
	for _, name := range valuationItemFields {
		add(name)
	}
	add(FieldTotalValuationItems)
	for _, name := range wordsFields {
		add(name)
		add(name + "Words")
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CanonicalFields returns a copy of the canonical field names
func CanonicalFields() []string {
	out := make([]string, len(canonicalFields))
	copy(out, canonicalFields)
	return out
}
