package resolve

import (
	"encoding/json"
	"sort"
	"strings"

	"github.com/verustcode/valreport/internal/present"
	"github.com/verustcode/valreport/internal/record"
)

// Image collection field names
const (
	FieldPropertyImages   = "propertyImages"
	FieldLocationImages   = "locationImages"
	FieldDocumentPreviews = "documentPreviews"
	FieldAreaImages       = "areaImages"
	// FieldSupportingDocuments is the older name of documentPreviews
	FieldSupportingDocuments = "supportingDocuments"
)

// Custom field list names
const (
	FieldCustomExtentOfSite       = "customExtentOfSiteFields"
	FieldCustomFloorAreaBalcony   = "customFloorAreaBalconyFields"
	FieldCustomValuationItems     = "customValuationItems"
	FieldCustomBuildingSpecs      = "customBuildingSpecifications"
	FieldAgreementForSale         = "agreementForSale"
	agreementForSaleExecutedField = "agreementForSaleExecutedName"
)

// imageFields are never taken from the pdfDetails overlay
var imageFields = map[string]bool{
	FieldPropertyImages:      true,
	FieldLocationImages:      true,
	FieldDocumentPreviews:    true,
	FieldAreaImages:          true,
	FieldSupportingDocuments: true,
}

// collectionFields are non-scalar root values carried into the resolved map
var collectionFields = []string{
	FieldPropertyImages,
	FieldLocationImages,
	FieldDocumentPreviews,
	FieldAreaImages,
	FieldCustomExtentOfSite,
	FieldCustomFloorAreaBalcony,
	FieldCustomValuationItems,
	FieldCustomBuildingSpecs,
	FieldAgreementForSale,
}

// Fields is the resolved view of one record: canonical field name to value.
// It is built fresh by Resolve and never mutated afterwards; With returns a copy.
type Fields struct {
	values map[string]any
}

func newFields() *Fields {
	return &Fields{values: make(map[string]any)}
}

// Get returns the raw resolved value of name
func (f *Fields) Get(name string) (any, bool) {
	v, ok := f.values[name]
	return v, ok
}

// Has reports whether name resolved to a non-empty value
func (f *Fields) Has(name string) bool {
	v, ok := f.values[name]
	return ok && !record.IsEmpty(v)
}

// Number returns the numeric value of name
func (f *Fields) Number(name string) (float64, bool) {
	return present.ParseNumber(f.values[name])
}

// With returns a copy of f with name set to v
func (f *Fields) With(name string, v any) *Fields {
	out := &Fields{values: make(map[string]any, len(f.values)+1)}
	for k, val := range f.values {
		out.values[k] = val
	}
	out.values[name] = v
	return out
}

// Rows returns the normalised custom field list stored under name
func (f *Fields) Rows(name string) []record.Row {
	return record.Rows(f.values[name])
}

// Images returns the valid images of a collection and how many were dropped
func (f *Fields) Images(name, labelPrefix string) ([]record.Image, int) {
	return record.Images(f.values[name], labelPrefix)
}

// AreaImages returns the valid area image groups and how many images were dropped
func (f *Fields) AreaImages() ([]record.AreaGroup, int) {
	return record.AreaImages(f.values[FieldAreaImages])
}

// SafeGet returns the display string at a dotted path. Booleans render as
// Yes/No, numbers in shortest form, and anything missing, blank or
// object-shaped as def (default "NA"). The agreementForSale object renders
// as its executed-name value.
func (f *Fields) SafeGet(path string, def ...string) string {
	fallback := present.NotAvailable
	if len(def) > 0 {
		fallback = def[0]
	}

	v, ok := record.LookupPath(f.values, path)
	if !ok {
		return fallback
	}
	if obj, isObj := v.(map[string]any); isObj {
		inner, has := obj[agreementForSaleExecutedField]
		if !has || !strings.HasSuffix(path, FieldAgreementForSale) {
			return fallback
		}
		v = inner
	}
	return displayValue(v, fallback)
}

func displayValue(v any, fallback string) string {
	switch t := v.(type) {
	case nil:
		return fallback
	case bool:
		if t {
			return "Yes"
		}
		return "No"
	case string:
		if strings.TrimSpace(t) == "" {
			return fallback
		}
		return t
	case json.Number:
		return t.String()
	case float64, float32, int, int64, int32:
		n, _ := present.ParseNumber(t)
		return present.FormatPlainNumber(n)
	default:
		return fallback
	}
}

// Display returns the complete display map: every canonical field plus any
// other scalar present, each rendered through SafeGet.
func (f *Fields) Display() map[string]string {
	out := make(map[string]string, len(canonicalFields)+len(f.values))
	for _, name := range canonicalFields {
		out[name] = f.SafeGet(name)
	}
	for name, v := range f.values {
		if _, done := out[name]; done {
			continue
		}
		if record.IsScalar(v) || name == FieldAgreementForSale {
			out[name] = f.SafeGet(name)
		}
	}
	return out
}

// Keys returns every resolved field name in sorted order
func (f *Fields) Keys() []string {
	keys := make([]string, 0, len(f.values))
	for k := range f.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
