package paginate

import (
	"errors"
	"fmt"
	"image"
)

// errPixelAccess reports a read outside the bitmap's backing buffer
var errPixelAccess = errors.New("pixel access out of range")

// extent is a horizontal pixel span [Left, Right] inclusive
type extent struct {
	Left  int
	Right int
}

func (e extent) width() int {
	return e.Right - e.Left + 1
}

// isDark reports whether the pixel at (x, y) is a near-black opaque pixel.
func (o Options) isDark(img *image.RGBA, x, y int) (bool, error) {
	if !(image.Point{X: x, Y: y}.In(img.Rect)) {
		return false, fmt.Errorf("%w: (%d,%d) outside %v", errPixelAccess, x, y, img.Rect)
	}
	i := img.PixOffset(x, y)
	if i < 0 || i+3 >= len(img.Pix) {
		return false, fmt.Errorf("%w: offset %d of %d", errPixelAccess, i, len(img.Pix))
	}
	p := img.Pix[i : i+4 : i+4]
	return p[0] < o.DarkChannel && p[1] < o.DarkChannel && p[2] < o.DarkChannel && p[3] >= 128, nil
}

// darkFraction is the share of dark pixels of row y within span.
func (o Options) darkFraction(img *image.RGBA, y int, span extent) (float64, error) {
	if span.width() <= 0 {
		return 0, nil
	}
	dark := 0
	for x := span.Left; x <= span.Right; x++ {
		ok, err := o.isDark(img, x, y)
		if err != nil {
			return 0, err
		}
		if ok {
			dark++
		}
	}
	return float64(dark) / float64(span.width()), nil
}

// isBorderRow reports whether row y is a horizontal table border. Rows are
// measured against the table extent when one was detected, else against the
// full width with the stricter edge threshold.
func (o Options) isBorderRow(img *image.RGBA, y int, table *extent) (bool, error) {
	if table != nil {
		frac, err := o.darkFraction(img, y, *table)
		if err != nil {
			return false, err
		}
		return frac >= o.BorderThreshold, nil
	}
	full := extent{Left: img.Rect.Min.X, Right: img.Rect.Max.X - 1}
	frac, err := o.darkFraction(img, y, full)
	if err != nil {
		return false, err
	}
	return frac >= o.EdgeBorderThreshold, nil
}

// tableExtent finds the left and right table edges around row centerY: the
// first and last columns holding a vertical dark run of at least
// MinVerticalRunPx inside a TableBandPx band. It needs two such columns.
func (o Options) tableExtent(img *image.RGBA, centerY int) (*extent, bool) {
	half := o.TableBandPx / 2
	top := max(img.Rect.Min.Y, centerY-half)
	bottom := min(img.Rect.Max.Y, centerY+half)
	if bottom-top < o.MinVerticalRunPx || o.MinVerticalRunPx <= 0 {
		return nil, false
	}

	left, right, columns := -1, -1, 0
	for x := img.Rect.Min.X; x < img.Rect.Max.X; x++ {
		run, best := 0, 0
		for y := top; y < bottom; y++ {
			dark, err := o.isDark(img, x, y)
			if err != nil {
				return nil, false
			}
			if dark {
				run++
				best = max(best, run)
			} else {
				run = 0
			}
		}
		if best < o.MinVerticalRunPx {
			continue
		}
		if left < 0 {
			left = x
		}
		right = x
		columns++
	}

	if columns < 2 || right <= left {
		return nil, false
	}
	return &extent{Left: left, Right: right}, true
}

// findSafeBreak scans the trailing window of the tentative slice
// [offset, offset+slice) bottom-up for a border band and returns the slice
// height ending just above that band's top row. Any pixel access failure
// abandons the search.
func (o Options) findSafeBreak(img *image.RGBA, offset, slice int) (int, bool) {
	window := int(float64(slice) * o.SearchWindowRatio)
	if window < 1 {
		return 0, false
	}
	boundary := offset + slice
	stop := boundary - window

	table, _ := o.tableExtent(img, boundary)

	for y := boundary - 1; y >= stop; y-- {
		border, err := o.isBorderRow(img, y, table)
		if err != nil {
			return 0, false
		}
		if !border {
			continue
		}

		top := y
		for top-1 >= stop {
			above, err := o.isBorderRow(img, top-1, table)
			if err != nil || !above {
				break
			}
			top--
		}

		cut := top - offset
		if cut <= 0 {
			return 0, false
		}
		return cut, true
	}
	return 0, false
}

// thickenSeam paints SeamThickness black rows starting at row y of dst,
// confined to the table extent detected at srcY in the source bitmap. Seams
// without a table are left alone.
func (o Options) thickenSeam(dst, src *image.RGBA, y, srcY int) {
	table, ok := o.tableExtent(src, srcY)
	if !ok {
		return
	}
	offsetX := dst.Rect.Min.X - src.Rect.Min.X
	for row := y; row < y+o.SeamThickness; row++ {
		if row < dst.Rect.Min.Y || row >= dst.Rect.Max.Y {
			continue
		}
		for x := table.Left + offsetX; x <= table.Right+offsetX; x++ {
			if x < dst.Rect.Min.X || x >= dst.Rect.Max.X {
				continue
			}
			i := dst.PixOffset(x, row)
			copy(dst.Pix[i:i+4], []uint8{0, 0, 0, 255})
		}
	}
}
