package paginate

import (
	"image"
	"image/draw"

	"go.uber.org/zap"

	"github.com/verustcode/valreport/pkg/logger"
)

// Strip is one page-sized band of a source bitmap
type Strip struct {
	// Offset and Height locate the band in the source bitmap, in pixels
	Offset int
	Height int
	// SafeBreak is true when the band ends on a detected table border
	SafeBreak bool
	// Image is the cropped band with seams redrawn, origin at (0,0)
	Image *image.RGBA
}

// Engine slices rendered bitmaps into page strips
type Engine struct {
	opts Options
}

// NewEngine creates an engine with the given options
func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

// Options returns the engine's options
func (e *Engine) Options() Options {
	return e.opts
}

// Paginate slices img into strips of at most one usable page height each.
func (e *Engine) Paginate(img *image.RGBA) []Strip {
	if img == nil {
		return nil
	}
	limit := e.opts.UsableHeightPx(img.Rect.Dx())
	return e.paginate(img, limit, limit)
}

// paginate slices img with firstLimit for the first strip and limit for the
// rest. It always terminates: every iteration advances by at least one row.
func (e *Engine) paginate(img *image.RGBA, firstLimit, limit int) []Strip {
	if img == nil || img.Rect.Dx() <= 0 || img.Rect.Dy() <= 0 {
		return nil
	}
	total := img.Rect.Dy()
	if limit <= 0 {
		limit = total
	}
	if firstLimit <= 0 {
		firstLimit = limit
	}

	var strips []Strip
	offset := 0
	for {
		remaining := total - offset
		if remaining <= 0 || (len(strips) > 0 && remaining <= e.opts.EpsilonPx) {
			break
		}

		pageLimit := limit
		if len(strips) == 0 {
			pageLimit = firstLimit
		}

		slice := min(pageLimit, remaining)
		safe := false
		if slice < remaining {
			if cut, ok := e.opts.findSafeBreak(img, img.Rect.Min.Y+offset, slice); ok {
				slice = cut
				safe = true
			}
		}

		strips = append(strips, Strip{Offset: offset, Height: slice, SafeBreak: safe})
		offset += slice
	}

	for i := range strips {
		strips[i].Image = e.crop(img, strips[i], i > 0, i < len(strips)-1)
	}

	logger.Debug("[Paginate] Bitmap sliced",
		zap.Int("width", img.Rect.Dx()),
		zap.Int("height", total),
		zap.Int("page_limit", limit),
		zap.Int("strips", len(strips)),
	)
	return strips
}

// crop copies the strip's band out of src and thickens the seams shared with
// neighbouring strips.
func (e *Engine) crop(src *image.RGBA, s Strip, topSeam, bottomSeam bool) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, src.Rect.Dx(), s.Height))
	srcTop := src.Rect.Min.Y + s.Offset
	draw.Draw(dst, dst.Rect, src, image.Point{X: src.Rect.Min.X, Y: srcTop}, draw.Src)

	if topSeam {
		e.opts.thickenSeam(dst, src, 0, srcTop)
	}
	if bottomSeam {
		e.opts.thickenSeam(dst, src, s.Height-e.opts.SeamThickness, srcTop+s.Height)
	}
	return dst
}

// CountBreaks returns how many strip boundaries landed on a border and how
// many fell back to the arithmetic cut. The last strip has no boundary.
func CountBreaks(strips []Strip) (safe, fallback int) {
	for i := 0; i < len(strips)-1; i++ {
		if strips[i].SafeBreak {
			safe++
		} else {
			fallback++
		}
	}
	return safe, fallback
}
