package paginate

import (
	"image"

	"go.uber.org/zap"

	"github.com/verustcode/valreport/pkg/logger"
)

// BlockKind decides where a block starts relative to the current page
type BlockKind int

const (
	// KindFlow is the main report body; it starts on a fresh page
	KindFlow BlockKind = iota
	// KindAnnexure continues on the current page while it has room
	KindAnnexure
	// KindGallery stays on the current page only when it fits entirely
	KindGallery
	// KindDocument always starts a fresh page
	KindDocument
)

var blockKindNames = map[BlockKind]string{
	KindFlow:     "flow",
	KindAnnexure: "annexure",
	KindGallery:  "gallery",
	KindDocument: "document",
}

func (k BlockKind) String() string {
	if name, ok := blockKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Block is one independently rendered part of the report
type Block struct {
	Kind  BlockKind
	Name  string
	Image *image.RGBA
}

// Placement puts one strip on a page, Y pixels below the header margin
type Placement struct {
	Block string
	Y     int
	Strip Strip
}

// Page is one physical page of the output
type Page struct {
	Number     int
	Placements []Placement
	// Used is the pixel height already filled below the header margin
	Used int
}

// Layout paginates blocks in order and places their strips on pages. All
// blocks are expected to share the same pixel width.
func (e *Engine) Layout(blocks []Block) []Page {
	var pages []Page

	newPage := func() *Page {
		pages = append(pages, Page{Number: len(pages) + 1})
		return &pages[len(pages)-1]
	}
	current := func() *Page {
		if len(pages) == 0 {
			return nil
		}
		return &pages[len(pages)-1]
	}

	for _, b := range blocks {
		if b.Image == nil || b.Image.Rect.Empty() {
			continue
		}
		limit := e.opts.UsableHeightPx(b.Image.Rect.Dx())
		minContinue := int(float64(limit) * e.opts.MinContinueRatio)

		page := current()
		remaining := 0
		if page != nil {
			remaining = limit - page.Used
		}

		continueOnPage := false
		switch b.Kind {
		case KindAnnexure:
			continueOnPage = page != nil && remaining > minContinue
		case KindGallery:
			continueOnPage = page != nil && b.Image.Rect.Dy() <= remaining
		}

		var strips []Strip
		if continueOnPage {
			strips = e.paginate(b.Image, remaining, limit)
		} else {
			strips = e.paginate(b.Image, limit, limit)
		}

		for i, s := range strips {
			if i > 0 || !continueOnPage {
				page = newPage()
			}
			page.Placements = append(page.Placements, Placement{Block: b.Name, Y: page.Used, Strip: s})
			page.Used += s.Height
		}

		logger.Debug("[Paginate] Block placed",
			zap.String("block", b.Name),
			zap.String("kind", b.Kind.String()),
			zap.Bool("continued", continueOnPage),
			zap.Int("strips", len(strips)),
			zap.Int("pages", len(pages)),
		)
	}
	return pages
}
