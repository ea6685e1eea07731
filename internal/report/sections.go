package report

// fieldRow binds a printed label to the resolved field it displays
type fieldRow struct {
	Label string
	Field string
}

// sectionDef is one fixed two-column table of the report body
type sectionDef struct {
	Title string
	Rows  []fieldRow
}

// bodySections are rendered in order before the variable-length tables.
var bodySections = []sectionDef{
	{Title: "General Information", Rows: []fieldRow{
		{"Name of the Applicant", "clientName"},
		{"Name of the Owner", "ownerName"},
		{"Purpose of Valuation", "purposeOfValuation"},
		{"Type of Property", "propertyType"},
		{"Date of Inspection", "dateOfInspection"},
		{"Date of Valuation", "dateOfValuation"},
		{"Date of Report", "dateOfReport"},
		{"List of Documents Produced", "documentsProduced"},
		{"Brief Description of the Property", "briefDescription"},
		{"Contact Number", "mobileNumber"},
	}},
	{Title: "Location of the Property", Rows: []fieldRow{
		{"Postal Address of the Property", "postalAddress"},
		{"Property Address", "propertyAddress"},
		{"Plot No. / Survey No.", "plotNumber"},
		{"Survey Number", "surveyNumber"},
		{"Door No.", "doorNumber"},
		{"T.S. No. / Village", "tsNumberVillage"},
		{"Ward / Taluka", "wardTaluka"},
		{"Mandal / District", "mandalDistrict"},
		{"City / Town", "city"},
		{"Date of Issue and Validity of Layout Plan", "layoutPlanIssueDate"},
		{"Approved Map Issuing Authority", "approvedMapAuthority"},
		{"Genuineness of Approved Map Verified", "mapGenuinenessVerified"},
		{"Nearby Landmark", "nearbyLandmark"},
		{"Latitude / Longitude", "coordinates"},
		{"Other Comments", "locationComments"},
	}},
	{Title: "Classification of Area", Rows: []fieldRow{
		{"City / Town / Village", "cityTown"},
		{"Residential Area", "residentialArea"},
		{"Commercial Area", "commercialArea"},
		{"Industrial Area", "industrialArea"},
		{"High / Middle / Poor", "areaClassification"},
		{"Urban / Semi Urban / Rural", "urbanType"},
		{"Corporation / Municipality / Panchayat", "jurisdiction"},
		{"Zoning", "zoning"},
		{"Width of the Approach Road", "roadWidth"},
	}},
	{Title: "Dimensions of the Site", Rows: []fieldRow{
		{"As per Deed", "dimensionsDeed"},
		{"As per Actual", "dimensionsActual"},
		{"Extent of the Unit", "extentOfUnit"},
		{"Extent of Site Considered for Valuation", "extentOfSiteValuation"},
		{"Land Area", "landArea"},
		{"Occupied by Owner / Tenant", "occupiedBy"},
		{"Tenancy Details", "tenancyDetails"},
	}},
	{Title: "Apartment Building", Rows: []fieldRow{
		{"Nature of the Apartment", "apartmentNature"},
		{"Location", "apartmentLocation"},
		{"T.S. No.", "apartmentTsNumber"},
		{"Block No.", "blockNumber"},
		{"Ward No.", "apartmentWardNumber"},
		{"Village / Municipality / Corporation", "villageMunicipality"},
		{"Door No., Street or Road", "doorNumberStreet"},
		{"Pin Code", "pinCode"},
		{"Year of Construction", "yearOfConstruction"},
		{"Number of Floors", "numberOfFloors"},
		{"Type of Structure", "typeOfStructure"},
		{"Number of Dwelling Units in the Building", "numberOfDwellingUnits"},
		{"Quality of Construction", "qualityOfConstruction"},
		{"Appearance of the Building", "appearanceOfBuilding"},
		{"Maintenance of the Building", "maintenanceOfBuilding"},
	}},
	{Title: "Facilities Available", Rows: []fieldRow{
		{"Lift", "liftAvailable"},
		{"Protected Water Supply", "waterSupply"},
		{"Underground Sewerage", "sewerageSystem"},
		{"Car Parking", "carParking"},
		{"Compound Wall", "compoundWall"},
		{"Pavement Around the Building", "pavement"},
	}},
	{Title: "Flat / Unit", Rows: []fieldRow{
		{"Floor on which the Unit is Situated", "unitFloor"},
		{"Door No. of the Unit", "unitDoorNumber"},
		{"Roof", "unitRoof"},
		{"Flooring", "unitFlooring"},
		{"Doors", "unitDoors"},
		{"Windows", "unitWindows"},
		{"Fittings", "unitFittings"},
		{"Finishing", "unitFinishing"},
		{"House Tax Assessment No.", "houseTaxAssessmentNumber"},
		{"Electricity Service Connection No.", "electricityServiceNumber"},
		{"Meter Card in the Name of", "meterCardName"},
		{"Maintenance of the Unit", "unitMaintenance"},
		{"Agreement for Sale Executed in the Name of", "agreementForSale"},
		{"Classification (Posh / I Class / Medium / Ordinary)", "unitClassification"},
	}},
	{Title: "Marketability", Rows: []fieldRow{
		{"Marketability of the Flat", "marketability"},
		{"Factors Favouring Extra Potential Value", "favourableFactors"},
		{"Negative Factors Affecting the Value", "negativeFactors"},
	}},
	{Title: "Rate", Rows: []fieldRow{
		{"Comparable Rate in the Locality", "comparableRate"},
		{"Adopted Basic Composite Rate", "adoptedBasicCompositeRate"},
		{"Building + Services", "buildingServicesRate"},
		{"Land + Others", "landOthersRate"},
		{"Guideline Rate from Registrar Office", "guidelineRate"},
	}},
	{Title: "Composite Rate After Depreciation", Rows: []fieldRow{
		{"Depreciated Building Rate", "depreciatedBuildingRate"},
		{"Replacement Cost of Unit with Services", "replacementCost"},
		{"Age of the Building", "ageOfBuilding"},
		{"Life of the Building Estimated", "lifeOfBuilding"},
		{"Depreciation Percentage", "depreciationPercentage"},
		{"Depreciated Ratio of the Building", "depreciatedRatio"},
		{"Total Composite Rate Arrived for Valuation", "totalCompositeRate"},
		{"Rate for Land and Other", "rateForLand"},
	}},
}

// boundaryDirections pairs each compass point with its deed and actual fields
var boundaryDirections = []struct {
	Direction string
	Deed      string
	Actual    string
}{
	{"North", "boundaryNorthDeed", "boundaryNorthActual"},
	{"South", "boundarySouthDeed", "boundarySouthActual"},
	{"East", "boundaryEastDeed", "boundaryEastActual"},
	{"West", "boundaryWestDeed", "boundaryWestActual"},
}

// floorArea names the fixed floor rows of an area table
type floorArea struct {
	Label string
	Sqm   string
	Sqft  string
}

var builtUpFloors = []floorArea{
	{"Basement Floor", "basementFloorSqm", "basementFloorSqft"},
	{"Ground Floor", "groundFloorSqm", "groundFloorSqft"},
	{"First Floor", "firstFloorSqm", "firstFloorSqft"},
}

var balconyFloors = []floorArea{
	{"Basement Floor", "basementFloorBalconySqm", "basementFloorBalconySqft"},
	{"Ground Floor", "groundFloorBalconySqm", "groundFloorBalconySqft"},
	{"First Floor", "firstFloorBalconySqm", "firstFloorBalconySqft"},
}

// valuationItems are the fixed rows of the valuation details table
var valuationItems = []fieldRow{
	{"Present Value of the Flat", "presentValue"},
	{"Wardrobes", "wardrobes"},
	{"Showcases", "showcases"},
	{"Kitchen Arrangements", "kitchenArrangements"},
	{"Superfine Finish", "superfineFinish"},
	{"Interior Decorations", "interiorDecorations"},
	{"Electricity Deposits / Electrical Fittings", "electricityDeposits"},
	{"Extra Collapsible Gates / Grill Works", "collapsibleGates"},
	{"Potential Value, if any", "potentialValue"},
	{"Others", "otherItems"},
}

// Row label and value fallbacks for custom field lists
var (
	customLabelKeys = []string{"name", "floorName", "label", "title"}
	customValueKeys = []string{"value", "amount", "description", "sqm", "sqft"}
	customSqmKeys   = []string{"sqm", "value"}
	customSqftKeys  = []string{"sqft", "value"}
)
