package resolve

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verustcode/valreport/internal/record"
)

func mustRecord(t *testing.T, raw string) record.Record {
	t.Helper()
	var rec record.Record
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))
	return rec
}

func TestResolve_EmptyRecordIsTotal(t *testing.T) {
	for _, rec := range []record.Record{nil, {}} {
		f := Resolve(rec)
		display := f.Display()

		for _, name := range CanonicalFields() {
			v, ok := display[name]
			require.True(t, ok, "missing canonical field %s", name)
			assert.Equal(t, "NA", v, name)
		}
	}
}

func TestResolve_PDFDetailsWins(t *testing.T) {
	rec := mustRecord(t, `{
		"bankName": "State Bank",
		"city": "Mumbai",
		"pdfDetails": {"bankName": "HDFC Bank", "purposeOfValuation": "Home loan"}
	}`)

	f := Resolve(rec)
	assert.Equal(t, "HDFC Bank", f.SafeGet("bankName"))
	assert.Equal(t, "Home loan", f.SafeGet("purposeOfValuation"))
	assert.Equal(t, "Mumbai", f.SafeGet("city"))
}

func TestResolve_LegacyShapesFirstWriterWins(t *testing.T) {
	rec := mustRecord(t, `{
		"city": "Mumbai",
		"locationOfProperty": {"city": "Pune", "plotNo": "17"},
		"unitClassification": {
			"floorOfUnit": "3rd",
			"specifications": {"roof": "RCC", "flooring": "Vitrified"},
			"classification": "Middle class"
		},
		"propertyBoundaries": {
			"plotBoundaries": {"north": "Road", "south": "Plot 18"},
			"actualBoundaries": {"north": "30ft Road"}
		}
	}`)

	f := Resolve(rec)
	assert.Equal(t, "Pune", f.SafeGet("city"), "legacy shape beats root fallback")
	assert.Equal(t, "17", f.SafeGet("plotNumber"))
	assert.Equal(t, "3rd", f.SafeGet("unitFloor"))
	assert.Equal(t, "RCC", f.SafeGet("unitRoof"))
	assert.Equal(t, "Vitrified", f.SafeGet("unitFlooring"))
	assert.Equal(t, "Middle class", f.SafeGet("unitClassification"))
	assert.Equal(t, "Road", f.SafeGet("boundaryNorthDeed"))
	assert.Equal(t, "30ft Road", f.SafeGet("boundaryNorthActual"))
	assert.Equal(t, "NA", f.SafeGet("boundaryEastActual"))
}

func TestResolve_ImageCollectionsIgnoreOverlay(t *testing.T) {
	rec := mustRecord(t, `{
		"propertyImages": ["https://cdn/root.jpg"],
		"pdfDetails": {
			"propertyImages": ["https://cdn/overlay.jpg"],
			"locationImages": ["https://cdn/overlay-loc.jpg"],
			"areaImages": {"kitchen": ["https://cdn/k.jpg"]}
		}
	}`)

	f := Resolve(rec)
	images, _ := f.Images(FieldPropertyImages, "")
	require.Len(t, images, 1)
	assert.Equal(t, "https://cdn/root.jpg", images[0].Src)

	loc, _ := f.Images(FieldLocationImages, "")
	assert.Empty(t, loc)
	groups, _ := f.AreaImages()
	assert.Empty(t, groups)
}

func TestResolve_SupportingDocumentsFallback(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantSrc []string
	}{
		{
			name:    "supporting documents only",
			raw:     `{"supportingDocuments": [{"url": "https://x/doc.jpg"}]}`,
			wantSrc: []string{"https://x/doc.jpg"},
		},
		{
			name:    "document previews win",
			raw:     `{"documentPreviews": ["https://x/preview.jpg"], "supportingDocuments": ["https://x/doc.jpg"]}`,
			wantSrc: []string{"https://x/preview.jpg"},
		},
		{
			name:    "overlay ignored",
			raw:     `{"supportingDocuments": ["https://x/doc.jpg"], "pdfDetails": {"supportingDocuments": ["https://x/other.jpg"], "documentPreviews": ["https://x/other.jpg"]}}`,
			wantSrc: []string{"https://x/doc.jpg"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			docs, _ := Resolve(mustRecord(t, tt.raw)).Images(FieldDocumentPreviews, "")
			var got []string
			for _, d := range docs {
				got = append(got, d.Src)
			}
			assert.Equal(t, tt.wantSrc, got)
		})
	}
}

func TestResolve_BlankOverlayReplacesRootValue(t *testing.T) {
	f := Resolve(mustRecord(t, `{"clientName": "A", "bankName": "State Bank", "pdfDetails": {"clientName": ""}}`))
	assert.Equal(t, "NA", f.SafeGet("clientName"))
	assert.Equal(t, "State Bank", f.SafeGet("bankName"))
}

func TestResolve_Idempotent(t *testing.T) {
	rec := mustRecord(t, `{
		"city": "Mumbai",
		"locationOfProperty": {"city": "Pune", "plotNo": "17"},
		"unitClassification": {"classification": "Middle class", "maintenance": {"unitMaintenanceStatus": "Fair"}},
		"propertyImages": ["https://cdn/a.jpg", {"url": "https://cdn/b.jpg"}],
		"areaImages": {"kitchen": ["https://cdn/k.jpg"], "hall": ["https://cdn/h.jpg"]},
		"supportingDocuments": ["https://cdn/doc.jpg"],
		"pdfDetails": {"clientName": "Meera", "fairMarketValue": "12,50,000", "inspectionDate": "2024-03-05"}
	}`)

	first := Resolve(rec)
	second := Resolve(rec)
	assert.Equal(t, first.Display(), second.Display())
	assert.Equal(t, first.Keys(), second.Keys())

	firstGroups, _ := first.AreaImages()
	secondGroups, _ := second.AreaImages()
	assert.Equal(t, firstGroups, secondGroups)
}

func TestResolve_SpecialRemaps(t *testing.T) {
	rec := mustRecord(t, `{
		"unitClassification": {"classification": "Middle class", "maintenance": {"unitMaintenanceStatus": "Fair"}},
		"pdfDetails": {
			"classificationPosh": "Posh",
			"unitMaintenance": {"unitMaintenanceStatus": "Good"}
		}
	}`)

	f := Resolve(rec)
	assert.Equal(t, "Posh", f.SafeGet("unitClassification"))
	assert.Equal(t, "Good", f.SafeGet("unitMaintenance"))

	f = Resolve(mustRecord(t, `{"pdfDetails": {"unitMaintenance": "Average"}}`))
	assert.Equal(t, "Average", f.SafeGet("unitMaintenance"))

	f = Resolve(mustRecord(t, `{"unitClassification": {"maintenance": {"unitMaintenanceStatus": "Fair"}}, "pdfDetails": {"unitMaintenance": {}}}`))
	assert.Equal(t, "Fair", f.SafeGet("unitMaintenance"))
}

func TestResolve_DefaultedLookups(t *testing.T) {
	rec := mustRecord(t, `{
		"applicantName": "Ravi Kumar",
		"address": {"fullAddress": "Flat 4, Shanti Apts, Nashik"},
		"inspectionDate": "2024-03-05",
		"_id": "65f0c0ffee",
		"bank": "Canara Bank"
	}`)

	f := Resolve(rec)
	assert.Equal(t, "Ravi Kumar", f.SafeGet("clientName"))
	assert.Equal(t, "Flat 4, Shanti Apts, Nashik", f.SafeGet("postalAddress"))
	assert.Equal(t, "Flat 4, Shanti Apts, Nashik", f.SafeGet("propertyAddress"))
	assert.Equal(t, "5/3/2024", f.SafeGet("dateOfInspection"))
	assert.Equal(t, "5/3/2024", f.SafeGet("dateOfValuation"), "valuation date falls back to inspection date")
	assert.Equal(t, "65f0c0ffee", f.SafeGet("uniqueId"))
	assert.Equal(t, "Canara Bank", f.SafeGet("bankName"))
}

func TestResolve_DateOnResolvedValueIsFormatted(t *testing.T) {
	f := Resolve(mustRecord(t, `{"pdfDetails": {"dateOfValuation": "2023-11-20T10:00:00Z"}}`))
	assert.Equal(t, "20/11/2023", f.SafeGet("dateOfValuation"))

	f = Resolve(mustRecord(t, `{"dateOfReport": "sometime soon"}`))
	assert.Equal(t, "sometime soon", f.SafeGet("dateOfReport"))
}

func TestResolve_DerivedAreaTotals(t *testing.T) {
	rec := mustRecord(t, `{
		"groundFloorSqm": "50.25",
		"firstFloorSqm": 40,
		"basementFloorSqm": "NA",
		"customExtentOfSiteFields": [{"name": "Terrace", "sqm": "9.5"}, {"name": "Bad", "sqm": "x"}],
		"groundFloorBalconySqft": 100,
		"customFloorAreaBalconyFields": [{"floorName": "First", "sqft": 20.5}]
	}`)

	f := Resolve(rec)
	assert.Equal(t, "99.75", f.SafeGet(FieldTotalBuiltUpSqm))
	assert.Equal(t, "120.5", f.SafeGet(FieldTotalFloorAreaBalconySqft))
	assert.Equal(t, "NA", f.SafeGet(FieldTotalBuiltUpSqft), "zero total is not assigned")
	assert.Equal(t, "NA", f.SafeGet(FieldTotalFloorAreaBalconySqm))
}

func TestResolve_ExplicitTotalsKept(t *testing.T) {
	rec := mustRecord(t, `{
		"groundFloorSqm": 10,
		"pdfDetails": {"totalBuiltUpSqm": "250", "totalBuiltUpSqft": ""}
	}`)

	f := Resolve(rec)
	assert.Equal(t, "250", f.SafeGet(FieldTotalBuiltUpSqm))
	assert.Equal(t, "NA", f.SafeGet(FieldTotalBuiltUpSqft))

	f = Resolve(mustRecord(t, `{"totalBuiltUpSqm": "NA", "groundFloorSqm": 12}`))
	assert.Equal(t, "12", f.SafeGet(FieldTotalBuiltUpSqm), "NA totals are recomputed")
}

func TestResolve_TotalValuationItems(t *testing.T) {
	rec := mustRecord(t, `{
		"valuationItems": {"wardrobes": "25,000", "showcases": "NA", "collapsibleGates": "Nil"},
		"kitchenArrangements": 15000,
		"interiorDecorations": "1,10,000"
	}`)

	f := Resolve(rec)
	assert.Equal(t, "1,50,000", f.SafeGet(FieldTotalValuationItems))

	f = Resolve(mustRecord(t, `{"totalValuationItems": "9,99,999", "wardrobes": 1}`))
	assert.Equal(t, "9,99,999", f.SafeGet(FieldTotalValuationItems))

	f = Resolve(mustRecord(t, `{"wardrobes": "NA"}`))
	assert.Equal(t, "NA", f.SafeGet(FieldTotalValuationItems))
}

func TestResolve_WordsCompanions(t *testing.T) {
	rec := mustRecord(t, `{
		"valuationResults": {"fairMarketValue": 1000000, "distressValue": "8,00,000"},
		"realisableValue": 900000,
		"realisableValueWords": "Rupees Nine Lakh Only"
	}`)

	f := Resolve(rec)
	assert.Equal(t, "Rupees TEN LAC Only", f.SafeGet("fairMarketValueWords"))
	assert.Equal(t, "Rupees EIGHT LAC Only", f.SafeGet("distressValueWords"))
	assert.Equal(t, "Rupees Nine Lakh Only", f.SafeGet("realisableValueWords"))
	assert.Equal(t, "NA", f.SafeGet("insurableValueWords"))
}

func TestResolve_EndToEndScenario(t *testing.T) {
	f := Resolve(mustRecord(t, `{"clientName": "A", "pdfDetails": {"fairMarketValue": 1000000}}`))

	assert.Equal(t, "A", f.SafeGet("clientName"))
	assert.Equal(t, "1000000", f.SafeGet("fairMarketValue"))
	assert.Equal(t, "Rupees TEN LAC Only", f.SafeGet("fairMarketValueWords"))

	v, ok := f.ComputeValue(80)
	require.True(t, ok)
	assert.Equal(t, 800000.0, v)
}

func TestResolve_DoesNotMutateInput(t *testing.T) {
	raw := `{
		"clientName": "A",
		"address": {"fullAddress": "X"},
		"pdfDetails": {"bankDetails": {"name": "SBI"}},
		"customExtentOfSiteFields": [{"sqm": 1}]
	}`
	rec := mustRecord(t, raw)
	before := mustRecord(t, raw)

	f := Resolve(rec)
	nested, _ := f.Get("bankDetails")
	nested.(map[string]any)["name"] = "changed"

	assert.Equal(t, before, rec)
}

func TestSafeGet(t *testing.T) {
	f := Resolve(mustRecord(t, `{
		"liftAvailable": true,
		"compoundWall": false,
		"numberOfFloors": 4,
		"landArea": 1234.5,
		"blank": "  ",
		"meta": {"a": 1},
		"agreementForSale": {"agreementForSaleExecutedName": "Executed on 2/2/2020"},
		"nested": {"inner": {"deep": "value"}}
	}`))

	assert.Equal(t, "Yes", f.SafeGet("liftAvailable"))
	assert.Equal(t, "No", f.SafeGet("compoundWall"))
	assert.Equal(t, "4", f.SafeGet("numberOfFloors"))
	assert.Equal(t, "1234.5", f.SafeGet("landArea"))
	assert.Equal(t, "NA", f.SafeGet("blank"))
	assert.Equal(t, "NA", f.SafeGet("missing"))
	assert.Equal(t, "-", f.SafeGet("missing", "-"))
	assert.Equal(t, "Executed on 2/2/2020", f.SafeGet("agreementForSale"))
	assert.Equal(t, "Executed on 2/2/2020", f.SafeGet("agreementForSale.agreementForSaleExecutedName"))
	assert.Equal(t, "Executed on 2/2/2020", f.Display()["agreementForSale"])
}

func TestSafeGet_ObjectsRenderDefault(t *testing.T) {
	f := newFields()
	f = f.With("meta", map[string]any{"a": 1})
	f = f.With("list", []any{"x"})

	assert.Equal(t, "NA", f.SafeGet("meta"))
	assert.Equal(t, "NA", f.SafeGet("list"))
	assert.False(t, f.Has("absent"))
	assert.True(t, f.Has("meta"))
}

func TestShapeKindString(t *testing.T) {
	assert.Equal(t, "locationOfProperty", ShapeLocationOfProperty.String())
	assert.Equal(t, "valuationItems", ShapeValuationItems.String())
	assert.Equal(t, "unknown", ShapeKind(99).String())
	assert.Len(t, legacyShapes, len(shapeNames))
}

func TestCanonicalFields(t *testing.T) {
	names := CanonicalFields()
	assert.Contains(t, names, "clientName")
	assert.Contains(t, names, "unitRoof")
	assert.Contains(t, names, FieldTotalBuiltUpSqm)
	assert.Contains(t, names, "fairMarketValueWords")
	assert.IsIncreasing(t, names)
}
