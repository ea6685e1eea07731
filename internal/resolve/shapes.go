package resolve

import (
	"github.com/verustcode/valreport/internal/record"
)

// ShapeKind identifies one of the legacy nested layouts older forms stored
// their answers in.
type ShapeKind int

// Known legacy shapes, in the order they are applied
const (
	ShapeLocationOfProperty ShapeKind = iota
	ShapeAreaClassification
	ShapeBoundaries
	ShapeDimensions
	ShapeApartmentLocation
	ShapeBuildingConstruction
	ShapeUnitClassification
	ShapeFacilities
	ShapeMarketability
	ShapeRateDetails
	ShapeCompositeRate
	ShapeValuationResults
	ShapeValuationItems
	ShapeAgreementForSale
)

var shapeNames = map[ShapeKind]string{
	ShapeLocationOfProperty:   "locationOfProperty",
	ShapeAreaClassification:   "areaClassification",
	ShapeBoundaries:           "propertyBoundaries",
	ShapeDimensions:           "propertyDimensions",
	ShapeApartmentLocation:    "apartmentLocation",
	ShapeBuildingConstruction: "buildingConstruction",
	ShapeUnitClassification:   "unitClassification",
	ShapeFacilities:           "buildingFacilities",
	ShapeMarketability:        "marketability",
	ShapeRateDetails:          "rateDetails",
	ShapeCompositeRate:        "compositeRate",
	ShapeValuationResults:     "valuationResults",
	ShapeValuationItems:       "valuationItems",
	ShapeAgreementForSale:     "agreementForSale",
}

// String returns the record key the shape is stored under
func (k ShapeKind) String() string {
	if name, ok := shapeNames[k]; ok {
		return name
	}
	return "unknown"
}

// mapping copies the value at From (dotted, relative to the shape object) to
// the canonical field To.
type mapping struct {
	From string
	To   string
}

// legacyShape is one arm of the legacy layout union: where it lives in the
// record and how its fields map onto canonical names.
type legacyShape struct {
	Kind     ShapeKind
	Mappings []mapping
}

// legacyShapes lists every known legacy layout in application order.
var legacyShapes = []legacyShape{
	{ShapeLocationOfProperty, []mapping{
		{"plotNo", "plotNumber"},
		{"surveyNo", "surveyNumber"},
		{"doorNo", "doorNumber"},
		{"tsNoVillage", "tsNumberVillage"},
		{"wardTaluka", "wardTaluka"},
		{"mandalDistrict", "mandalDistrict"},
		{"city", "city"},
		{"dateOfIssueValidity", "layoutPlanIssueDate"},
		{"approvedMapIssuingAuthority", "approvedMapAuthority"},
		{"genuinenessVerified", "mapGenuinenessVerified"},
		{"otherComments", "locationComments"},
	}},
	{ShapeAreaClassification, []mapping{
		{"cityTown", "cityTown"},
		{"isResidentialArea", "residentialArea"},
		{"isCommercialArea", "commercialArea"},
		{"isIndustrialArea", "industrialArea"},
		{"classification", "areaClassification"},
		{"urbanType", "urbanType"},
		{"jurisdictionType", "jurisdiction"},
	}},
	{ShapeBoundaries, []mapping{
		{"plotBoundaries.north", "boundaryNorthDeed"},
		{"plotBoundaries.south", "boundarySouthDeed"},
		{"plotBoundaries.east", "boundaryEastDeed"},
		{"plotBoundaries.west", "boundaryWestDeed"},
		{"actualBoundaries.north", "boundaryNorthActual"},
		{"actualBoundaries.south", "boundarySouthActual"},
		{"actualBoundaries.east", "boundaryEastActual"},
		{"actualBoundaries.west", "boundaryWestActual"},
	}},
	{ShapeDimensions, []mapping{
		{"dimensionsDeed", "dimensionsDeed"},
		{"dimensionsActual", "dimensionsActual"},
		{"extentOfUnit", "extentOfUnit"},
		{"latitudeLongitude", "coordinates"},
		{"extentOfSiteValuation", "extentOfSiteValuation"},
	}},
	{ShapeApartmentLocation, []mapping{
		{"apartmentNature", "apartmentNature"},
		{"location", "apartmentLocation"},
		{"tsNo", "apartmentTsNumber"},
		{"blockNo", "blockNumber"},
		{"wardNo", "apartmentWardNumber"},
		{"villageOrMunicipality", "villageMunicipality"},
		{"doorNoStreetRoad", "doorNumberStreet"},
		{"pinCode", "pinCode"},
	}},
	{ShapeBuildingConstruction, []mapping{
		{"yearOfConstruction", "yearOfConstruction"},
		{"numberOfFloors", "numberOfFloors"},
		{"typeOfStructure", "typeOfStructure"},
		{"numberOfDwellingUnits", "numberOfDwellingUnits"},
		{"qualityOfConstruction", "qualityOfConstruction"},
		{"appearanceOfBuilding", "appearanceOfBuilding"},
		{"maintenanceOfBuilding", "maintenanceOfBuilding"},
	}},
	{ShapeUnitClassification, []mapping{
		{"floorOfUnit", "unitFloor"},
		{"doorNoOfUnit", "unitDoorNumber"},
		{"specifications.roof", "unitRoof"},
		{"specifications.flooring", "unitFlooring"},
		{"specifications.doors", "unitDoors"},
		{"specifications.windows", "unitWindows"},
		{"specifications.fittings", "unitFittings"},
		{"specifications.finishing", "unitFinishing"},
		{"classification", "unitClassification"},
		{"houseTaxAssessmentNo", "houseTaxAssessmentNumber"},
		{"electricityServiceNo", "electricityServiceNumber"},
		{"meterCardName", "meterCardName"},
		{"maintenance.unitMaintenanceStatus", "unitMaintenance"},
	}},
	{ShapeFacilities, []mapping{
		{"lift", "liftAvailable"},
		{"waterSupply", "waterSupply"},
		{"sewerage", "sewerageSystem"},
		{"carParking", "carParking"},
		{"compoundWall", "compoundWall"},
		{"pavement", "pavement"},
	}},
	{ShapeMarketability, []mapping{
		{"marketability", "marketability"},
		{"favourableFactors", "favourableFactors"},
		{"negativeFactors", "negativeFactors"},
	}},
	{ShapeRateDetails, []mapping{
		{"comparableRate", "comparableRate"},
		{"adoptedBasicCompositeRate", "adoptedBasicCompositeRate"},
		{"buildingServicesRate", "buildingServicesRate"},
		{"landOthersRate", "landOthersRate"},
		{"guidelineRate", "guidelineRate"},
	}},
	{ShapeCompositeRate, []mapping{
		{"depreciatedBuildingRate", "depreciatedBuildingRate"},
		{"replacementCost", "replacementCost"},
		{"ageOfBuilding", "ageOfBuilding"},
		{"lifeOfBuilding", "lifeOfBuilding"},
		{"depreciationPercentage", "depreciationPercentage"},
		{"depreciatedRatio", "depreciatedRatio"},
		{"totalCompositeRate", "totalCompositeRate"},
		{"rateForLand", "rateForLand"},
	}},
	{ShapeValuationResults, []mapping{
		{"fairMarketValue", "fairMarketValue"},
		{"realizableValue", "realisableValue"},
		{"distressValue", "distressValue"},
		{"agreementValue", "agreementValue"},
		{"valueCircleRate", "valueCircleRate"},
		{"insurableValue", "insurableValue"},
		{"totalJantriValue", "totalJantriValue"},
		{"presentValue", "presentValue"},
	}},
	{ShapeValuationItems, []mapping{
		{"wardrobes", "wardrobes"},
		{"showcases", "showcases"},
		{"kitchenArrangements", "kitchenArrangements"},
		{"superfineFinish", "superfineFinish"},
		{"interiorDecorations", "interiorDecorations"},
		{"electricityDeposits", "electricityDeposits"},
		{"collapsibleGates", "collapsibleGates"},
		{"potentialValue", "potentialValue"},
		{"others", "otherItems"},
	}},
	{ShapeAgreementForSale, []mapping{
		{"agreementForSaleExecutedName", "agreementForSaleExecutedName"},
	}},
}

// extract returns the shape's canonical assignments found in rec, in mapping order.
func (s legacyShape) extract(rec record.Record) []assignment {
	obj := rec.Object(s.Kind.String())
	if obj == nil {
		return nil
	}
	out := make([]assignment, 0, len(s.Mappings))
	for _, m := range s.Mappings {
		v, ok := record.LookupPath(obj, m.From)
		if !ok || record.IsEmpty(v) {
			continue
		}
		out = append(out, assignment{Name: m.To, Value: v})
	}
	return out
}

type assignment struct {
	Name  string
	Value any
}
