// Package paginate slices a rendered report bitmap into A4 page strips,
// moving each cut onto a table border so no table row is split across pages.
package paginate

import "math"

// Options configures page geometry and border detection
type Options struct {
	// Page size and margins in millimetres
	PageWidthMM    float64 `yaml:"page_width_mm" json:"page_width_mm" validate:"gt=0"`
	PageHeightMM   float64 `yaml:"page_height_mm" json:"page_height_mm" validate:"gt=0"`
	HeaderMarginMM float64 `yaml:"header_margin_mm" json:"header_margin_mm" validate:"gte=0"`
	FooterMarginMM float64 `yaml:"footer_margin_mm" json:"footer_margin_mm" validate:"gte=0"`

	// DarkChannel is the exclusive upper bound of a dark colour channel
	DarkChannel uint8 `yaml:"dark_channel" json:"dark_channel" validate:"gt=0"`
	// BorderThreshold is the dark fraction a row needs across a detected table
	BorderThreshold float64 `yaml:"border_threshold" json:"border_threshold" validate:"gt=0,lte=1"`
	// EdgeBorderThreshold is the dark fraction a row needs across the full width
	EdgeBorderThreshold float64 `yaml:"edge_border_threshold" json:"edge_border_threshold" validate:"gt=0,lte=1"`
	// SearchWindowRatio is the trailing share of a tentative slice scanned for a border
	SearchWindowRatio float64 `yaml:"search_window_ratio" json:"search_window_ratio" validate:"gt=0,lte=1"`

	// TableBandPx is the height of the band sampled for the table extent
	TableBandPx int `yaml:"table_band_px" json:"table_band_px" validate:"gte=0"`
	// MinVerticalRunPx is the dark run a column needs to count as a table edge
	MinVerticalRunPx int `yaml:"min_vertical_run_px" json:"min_vertical_run_px" validate:"gte=0"`

	SeamThickness int `yaml:"seam_thickness" json:"seam_thickness" validate:"gte=0"`
	// EpsilonPx is the largest remainder that does not get its own strip
	EpsilonPx int `yaml:"epsilon_px" json:"epsilon_px" validate:"gte=0"`
	// MinContinueRatio is the share of a page that must remain free for an
	// annexure to continue on it instead of starting a fresh page
	MinContinueRatio float64 `yaml:"min_continue_ratio" json:"min_continue_ratio" validate:"gte=0,lt=1"`
}

// DefaultOptions returns A4 portrait with 20mm header and footer margins
func DefaultOptions() Options {
	return Options{
		PageWidthMM:         210,
		PageHeightMM:        297,
		HeaderMarginMM:      20,
		FooterMarginMM:      20,
		DarkChannel:         150,
		BorderThreshold:     0.6,
		EdgeBorderThreshold: 0.75,
		SearchWindowRatio:   0.2,
		TableBandPx:         60,
		MinVerticalRunPx:    40,
		SeamThickness:       2,
		EpsilonPx:           8,
		MinContinueRatio:    0.15,
	}
}

// UsableHeightMM is the printable height between header and footer margins
func (o Options) UsableHeightMM() float64 {
	return o.PageHeightMM - o.HeaderMarginMM - o.FooterMarginMM
}

// PxPerMM is the bitmap scale when widthPx spans the full page width
func (o Options) PxPerMM(widthPx int) float64 {
	if o.PageWidthMM <= 0 {
		return 0
	}
	return float64(widthPx) / o.PageWidthMM
}

// UsableHeightPx is the printable height in bitmap pixels for a bitmap widthPx wide
func (o Options) UsableHeightPx(widthPx int) int {
	return int(math.Floor(o.UsableHeightMM() * o.PxPerMM(widthPx)))
}
