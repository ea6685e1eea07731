// Package assets provides the embedded template and stylesheet for valuation reports.
package assets

import (
	"embed"
)

// Templates holds the report HTML templates
//
//go:embed *.tmpl
var Templates embed.FS

// ReportCSS is inlined into every generated document, including region documents
//
//go:embed report.css
var ReportCSS string

// ReportTemplate is the name of the root report template
const ReportTemplate = "report.html.tmpl"
