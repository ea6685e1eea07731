// Package report assembles the valuation report document from resolved fields
// and splits it into the regions the paginator lays out independently.
package report

import (
	"bytes"
	"fmt"
	"html/template"

	"go.uber.org/zap"

	"github.com/verustcode/valreport/internal/present"
	"github.com/verustcode/valreport/internal/record"
	"github.com/verustcode/valreport/internal/report/assets"
	"github.com/verustcode/valreport/internal/resolve"
	"github.com/verustcode/valreport/pkg/logger"
)

// DefaultTitle is printed in the report header
const DefaultTitle = "Report of Valuation of Immovable Property"

// Row is one label/value line of a report table
type Row struct {
	Label string
	Value string
}

// Section is a titled two-column table
type Section struct {
	Title string
	Rows  []Row
}

// BoundaryRow compares deed and actual boundaries for one direction
type BoundaryRow struct {
	Direction string
	Deed      string
	Actual    string
}

// AreaRow is one floor line of an area statement
type AreaRow struct {
	Label string
	Sqm   string
	Sqft  string
}

// view is the template data for one report
type view struct {
	fields  *resolve.Fields
	dropped map[string]int

	Title          string
	Styles         template.CSS
	Sections       []Section
	Boundaries     []BoundaryRow
	AreaRows       []AreaRow
	AreaTotal      AreaRow
	BalconyRows    []AreaRow
	BalconyTotal   AreaRow
	ValuationItems []Row
	ValuationTotal string
	Narrative      Narrative
	AreaPages      []GalleryPage
	LocationPages  []GalleryPage
	DocumentPages  []GalleryPage
}

// F returns the display value of a resolved field
func (v *view) F(name string) string {
	return v.fields.SafeGet(name)
}

// Document is an assembled report
type Document struct {
	HTML string
	// Dropped counts invalid image references per collection
	Dropped map[string]int
	// ImageCount is the number of images that reached the markup
	ImageCount int
}

// Assembler renders resolved fields into the report HTML
type Assembler struct {
	tmpl  *template.Template
	title string
}

var templateFuncs = template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}

// NewAssembler parses the embedded report template
func NewAssembler() (*Assembler, error) {
	tmpl, err := template.New(assets.ReportTemplate).Funcs(templateFuncs).ParseFS(assets.Templates, assets.ReportTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse report template: %w", err)
	}
	return &Assembler{tmpl: tmpl, title: DefaultTitle}, nil
}

var defaultAssembler = mustAssembler()

func mustAssembler() *Assembler {
	a, err := NewAssembler()
	if err != nil {
		panic(err)
	}
	return a
}

// Assemble renders f with the default assembler and returns the HTML document.
func Assemble(f *resolve.Fields) (string, error) {
	doc, err := defaultAssembler.Build(f)
	if err != nil {
		return "", err
	}
	return doc.HTML, nil
}

// Default returns the shared assembler built from the embedded template
func Default() *Assembler {
	return defaultAssembler
}

// Build renders f into a complete HTML document. Only template execution can fail.
func (a *Assembler) Build(f *resolve.Fields) (*Document, error) {
	v := a.buildView(f)

	var buf bytes.Buffer
	if err := a.tmpl.Execute(&buf, v); err != nil {
		return nil, fmt.Errorf("failed to execute report template: %w", err)
	}

	imageCount := countImages(v.AreaPages) + countImages(v.LocationPages) + countImages(v.DocumentPages)

	logger.Debug("[Report] Document assembled",
		zap.String(logger.FieldRecordID, f.SafeGet("uniqueId", "")),
		zap.Int("html_size", buf.Len()),
		zap.Int("images", imageCount),
	)

	return &Document{
		HTML:       buf.String(),
		Dropped:    v.dropped,
		ImageCount: imageCount,
	}, nil
}

func (a *Assembler) buildView(f *resolve.Fields) *view {
	galleries := buildGalleries(f)
	v := &view{
		fields:         f,
		dropped:        galleries.Dropped,
		Title:          a.title,
		Styles:         template.CSS(assets.ReportCSS),
		Sections:       buildSections(f),
		Boundaries:     buildBoundaries(f),
		AreaRows:       buildAreaRows(f, builtUpFloors, resolve.FieldCustomExtentOfSite),
		AreaTotal:      AreaRow{"Total Built-up Area", f.SafeGet(resolve.FieldTotalBuiltUpSqm), f.SafeGet(resolve.FieldTotalBuiltUpSqft)},
		BalconyRows:    buildAreaRows(f, balconyFloors, resolve.FieldCustomFloorAreaBalcony),
		BalconyTotal:   AreaRow{"Total Floor Area incl. Balcony", f.SafeGet(resolve.FieldTotalFloorAreaBalconySqm), f.SafeGet(resolve.FieldTotalFloorAreaBalconySqft)},
		ValuationItems: buildValuationItems(f),
		ValuationTotal: f.SafeGet(resolve.FieldTotalValuationItems),
		Narrative:      ComputeNarrative(f),
		AreaPages:      galleries.Area,
		LocationPages:  galleries.Location,
		DocumentPages:  galleries.Documents,
	}
	if !hasAnyArea(f, balconyFloors, resolve.FieldCustomFloorAreaBalcony) {
		v.BalconyRows = nil
	}
	return v
}

func buildSections(f *resolve.Fields) []Section {
	sections := make([]Section, 0, len(bodySections)+1)
	for _, def := range bodySections {
		s := Section{Title: def.Title, Rows: make([]Row, 0, len(def.Rows))}
		for _, r := range def.Rows {
			s.Rows = append(s.Rows, Row{Label: r.Label, Value: f.SafeGet(r.Field)})
		}
		sections = append(sections, s)
	}

	if custom := customRows(f.Rows(resolve.FieldCustomBuildingSpecs)); len(custom) > 0 {
		sections = append(sections, Section{Title: "Additional Specifications", Rows: custom})
	}
	return sections
}

func buildBoundaries(f *resolve.Fields) []BoundaryRow {
	rows := make([]BoundaryRow, 0, len(boundaryDirections))
	for _, d := range boundaryDirections {
		rows = append(rows, BoundaryRow{
			Direction: d.Direction,
			Deed:      f.SafeGet(d.Deed),
			Actual:    f.SafeGet(d.Actual),
		})
	}
	return rows
}

func buildAreaRows(f *resolve.Fields, floors []floorArea, customList string) []AreaRow {
	rows := make([]AreaRow, 0, len(floors))
	for _, fl := range floors {
		rows = append(rows, AreaRow{Label: fl.Label, Sqm: f.SafeGet(fl.Sqm), Sqft: f.SafeGet(fl.Sqft)})
	}
	for _, r := range f.Rows(customList) {
		rows = append(rows, AreaRow{
			Label: rowText(r, customLabelKeys),
			Sqm:   rowText(r, customSqmKeys),
			Sqft:  rowText(r, customSqftKeys),
		})
	}
	return rows
}

func hasAnyArea(f *resolve.Fields, floors []floorArea, customList string) bool {
	for _, fl := range floors {
		if f.Has(fl.Sqm) || f.Has(fl.Sqft) {
			return true
		}
	}
	return len(f.Rows(customList)) > 0
}

func buildValuationItems(f *resolve.Fields) []Row {
	rows := make([]Row, 0, len(valuationItems))
	for _, item := range valuationItems {
		rows = append(rows, Row{Label: item.Label, Value: f.SafeGet(item.Field)})
	}
	return append(rows, customRows(f.Rows(resolve.FieldCustomValuationItems))...)
}

// customRows maps user-added entries to table rows using the label and value fallbacks.
func customRows(entries []record.Row) []Row {
	rows := make([]Row, 0, len(entries))
	for _, r := range entries {
		rows = append(rows, Row{Label: rowText(r, customLabelKeys), Value: rowText(r, customValueKeys)})
	}
	return rows
}

func rowText(r record.Row, keys []string) string {
	if s := r.First(keys...); s != "" {
		return s
	}
	return present.NotAvailable
}

func countImages(pages []GalleryPage) int {
	n := 0
	for _, p := range pages {
		n += len(p.Images)
	}
	return n
}
