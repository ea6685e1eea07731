// Package pdfdoc encodes laid-out page strips into an A4 PDF.
package pdfdoc

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"github.com/verustcode/valreport/internal/paginate"
	"github.com/verustcode/valreport/pkg/logger"
)

// ErrNoPages is returned when there is nothing to encode
var ErrNoPages = errors.New("no pages to encode")

// Meta is the document information written into the PDF
type Meta struct {
	Title   string
	Author  string
	Subject string
	// PageNumbers prints "Page N of M" in the footer margin
	PageNumbers bool
}

// Encoder writes pages produced by paginate.Engine.Layout as a PDF. Each
// strip is placed full-width below the header margin at its layout offset.
type Encoder struct {
	geom paginate.Options
	meta Meta
}

// NewEncoder creates an encoder using the page geometry the pages were laid out with
func NewEncoder(geom paginate.Options, meta Meta) *Encoder {
	return &Encoder{geom: geom, meta: meta}
}

// Encode renders pages into w
func (e *Encoder) Encode(pages []paginate.Page, w io.Writer) error {
	if len(pages) == 0 {
		return ErrNoPages
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           gofpdf.SizeType{Wd: e.geom.PageWidthMM, Ht: e.geom.PageHeightMM},
	})
	pdf.SetMargins(0, e.geom.HeaderMarginMM, 0)
	pdf.SetAutoPageBreak(false, e.geom.FooterMarginMM)
	pdf.SetCreator("valreport", true)
	if e.meta.Title != "" {
		pdf.SetTitle(e.meta.Title, true)
	}
	if e.meta.Author != "" {
		pdf.SetAuthor(e.meta.Author, true)
	}
	if e.meta.Subject != "" {
		pdf.SetSubject(e.meta.Subject, true)
	}

	if e.meta.PageNumbers {
		pdf.AliasNbPages("{nb}")
		pdf.SetFooterFunc(func() {
			pdf.SetY(-e.geom.FooterMarginMM / 2)
			pdf.SetFont("Helvetica", "", 8)
			pdf.CellFormat(0, 5, fmt.Sprintf("Page %d of {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
		})
	}

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	for _, page := range pages {
		pdf.AddPage()
		for i, pl := range page.Placements {
			img := pl.Strip.Image
			if img == nil || img.Rect.Empty() {
				continue
			}
			pxPerMM := e.geom.PxPerMM(img.Rect.Dx())
			if pxPerMM <= 0 {
				continue
			}

			var buf bytes.Buffer
			if err := png.Encode(&buf, img); err != nil {
				return fmt.Errorf("failed to encode strip %d of page %d: %w", i, page.Number, err)
			}

			name := fmt.Sprintf("page%d-strip%d", page.Number, i)
			pdf.RegisterImageOptionsReader(name, imageOpts, &buf)
			pdf.ImageOptions(name,
				0,
				e.geom.HeaderMarginMM+float64(pl.Y)/pxPerMM,
				e.geom.PageWidthMM,
				float64(img.Rect.Dy())/pxPerMM,
				false, imageOpts, 0, "")
		}
		if err := pdf.Error(); err != nil {
			return fmt.Errorf("failed to build page %d: %w", page.Number, err)
		}
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}

	logger.Debug("[PDF] Document encoded",
		zap.Int("pages", len(pages)),
	)
	return nil
}
