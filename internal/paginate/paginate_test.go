package paginate

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testOptions maps one bitmap pixel to one millimetre: a 210px wide bitmap
// has a usable page height of 257px.
func testOptions() Options {
	opts := DefaultOptions()
	opts.TableBandPx = 20
	opts.MinVerticalRunPx = 10
	return opts
}

var (
	white = color.RGBA{255, 255, 255, 255}
	black = color.RGBA{0, 0, 0, 255}
)

func blank(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, white)
		}
	}
	return img
}

func hline(img *image.RGBA, y, x0, x1 int) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y, black)
	}
}

func vline(img *image.RGBA, x, y0, y1 int) {
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x, y, black)
	}
}

func heights(strips []Strip) []int {
	out := make([]int, 0, len(strips))
	for _, s := range strips {
		out = append(out, s.Height)
	}
	return out
}

func TestUsableHeight(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, 257.0, opts.UsableHeightMM())
	assert.Equal(t, 257, opts.UsableHeightPx(210))
	assert.Equal(t, 1940, opts.UsableHeightPx(1586))
	assert.InDelta(t, 7.552, opts.PxPerMM(1586), 0.001)
}

func TestPaginate_PlainBitmap(t *testing.T) {
	tests := []struct {
		name   string
		height int
		want   []int
	}{
		{"three pages", 600, []int{257, 257, 86}},
		{"exact page", 257, []int{257}},
		{"remainder within epsilon is not a page", 257 + 5, []int{257}},
		{"remainder above epsilon is a page", 257 + 9, []int{257, 9}},
		{"tiny bitmap still yields a strip", 4, []int{4}},
	}

	e := NewEngine(testOptions())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			strips := e.Paginate(blank(210, tt.height))
			assert.Equal(t, tt.want, heights(strips))
			for _, s := range strips {
				assert.False(t, s.SafeBreak)
				require.NotNil(t, s.Image)
				assert.Equal(t, image.Rect(0, 0, 210, s.Height), s.Image.Rect)
			}
		})
	}
}

func TestPaginate_EmptyBitmap(t *testing.T) {
	e := NewEngine(testOptions())
	assert.Nil(t, e.Paginate(image.NewRGBA(image.Rect(0, 0, 0, 0))))
	assert.Nil(t, e.Paginate(nil))
}

func TestPaginate_CutsAtBorderBandTop(t *testing.T) {
	img := blank(210, 480)
	hline(img, 240, 0, 209)
	hline(img, 241, 0, 209)

	strips := NewEngine(testOptions()).Paginate(img)
	require.Len(t, strips, 2)
	assert.Equal(t, 240, strips[0].Height)
	assert.True(t, strips[0].SafeBreak)
	assert.Equal(t, 240, strips[1].Offset)
	assert.Equal(t, 240, strips[1].Height)

	safe, fallback := CountBreaks(strips)
	assert.Equal(t, 1, safe)
	assert.Equal(t, 0, fallback)
}

func TestPaginate_BorderOutsideWindowIgnored(t *testing.T) {
	img := blank(210, 500)
	hline(img, 100, 0, 209)

	strips := NewEngine(testOptions()).Paginate(img)
	assert.Equal(t, []int{257, 243}, heights(strips))
	assert.False(t, strips[0].SafeBreak)
}

func TestPaginate_TextRowIsNotBorder(t *testing.T) {
	img := blank(210, 500)
	hline(img, 250, 0, 104)

	strips := NewEngine(testOptions()).Paginate(img)
	assert.Equal(t, 257, strips[0].Height)
	assert.False(t, strips[0].SafeBreak)
}

func TestPaginate_TableExtentLowersThreshold(t *testing.T) {
	img := blank(210, 480)
	vline(img, 20, 0, 479)
	vline(img, 180, 0, 479)
	// about 63% of the table's 161 columns, under half of the full width
	hline(img, 230, 20, 120)

	strips := NewEngine(testOptions()).Paginate(img)
	require.Len(t, strips, 2)
	assert.Equal(t, 230, strips[0].Height)
	assert.True(t, strips[0].SafeBreak)

	first, second := strips[0].Image, strips[1].Image

	// bottom seam of the first strip, confined to the table
	assert.Equal(t, black, first.RGBAAt(150, 229))
	assert.Equal(t, black, first.RGBAAt(150, 228))
	assert.Equal(t, white, first.RGBAAt(150, 227))
	assert.Equal(t, white, first.RGBAAt(5, 229))
	assert.Equal(t, white, first.RGBAAt(200, 229))

	// top seam of the second strip
	assert.Equal(t, black, second.RGBAAt(150, 0))
	assert.Equal(t, black, second.RGBAAt(150, 1))
	assert.Equal(t, white, second.RGBAAt(150, 2))
	assert.Equal(t, white, second.RGBAAt(5, 0))
}

func TestPaginate_NoSeamWithoutTable(t *testing.T) {
	strips := NewEngine(testOptions()).Paginate(blank(210, 600))
	require.Len(t, strips, 3)
	assert.Equal(t, white, strips[0].Image.RGBAAt(100, 256))
	assert.Equal(t, white, strips[1].Image.RGBAAt(100, 0))
	assert.Equal(t, white, strips[1].Image.RGBAAt(100, 256))
}

func TestPaginate_SourceUntouched(t *testing.T) {
	img := blank(210, 500)
	vline(img, 20, 0, 499)
	vline(img, 180, 0, 499)
	hline(img, 230, 20, 120)

	NewEngine(testOptions()).Paginate(img)
	assert.Equal(t, white, img.RGBAAt(150, 229))
	assert.Equal(t, white, img.RGBAAt(150, 231))
}

func TestPaginate_NonZeroOrigin(t *testing.T) {
	img := blank(210, 600).SubImage(image.Rect(0, 100, 210, 600)).(*image.RGBA)
	hline(img, 340, 0, 209)

	strips := NewEngine(testOptions()).Paginate(img)
	require.Len(t, strips, 2)
	assert.Equal(t, 240, strips[0].Height)
	assert.True(t, strips[0].SafeBreak)
}

func TestIsDark(t *testing.T) {
	opts := testOptions()
	img := image.NewRGBA(image.Rect(0, 0, 4, 1))
	img.SetRGBA(0, 0, color.RGBA{149, 149, 149, 255})
	img.SetRGBA(1, 0, color.RGBA{150, 0, 0, 255})
	img.SetRGBA(2, 0, color.RGBA{0, 0, 0, 100})
	img.SetRGBA(3, 0, black)

	want := []bool{true, false, false, true}
	for x, expected := range want {
		got, err := opts.isDark(img, x, 0)
		require.NoError(t, err)
		assert.Equal(t, expected, got, "pixel %d", x)
	}

	_, err := opts.isDark(img, 0, 5)
	assert.True(t, errors.Is(err, errPixelAccess))
}

func TestFindSafeBreak_PixelAccessFailureFallsBack(t *testing.T) {
	opts := testOptions()
	img := blank(210, 500)
	hline(img, 240, 0, 209)
	img.Pix = img.Pix[:img.PixOffset(0, 100)]

	cut, ok := opts.findSafeBreak(img, 0, 257)
	assert.False(t, ok)
	assert.Zero(t, cut)
}

func TestTableExtent(t *testing.T) {
	opts := testOptions()

	img := blank(210, 100)
	vline(img, 10, 0, 99)
	vline(img, 100, 0, 99)
	vline(img, 190, 0, 99)
	ext, ok := opts.tableExtent(img, 50)
	require.True(t, ok)
	assert.Equal(t, extent{Left: 10, Right: 190}, *ext)

	single := blank(210, 100)
	vline(single, 10, 0, 99)
	_, ok = opts.tableExtent(single, 50)
	assert.False(t, ok, "one column is not a table")

	short := blank(210, 100)
	vline(short, 10, 45, 50)
	vline(short, 100, 45, 50)
	_, ok = opts.tableExtent(short, 50)
	assert.False(t, ok, "short runs are text, not table edges")
}

func TestCountBreaks(t *testing.T) {
	strips := []Strip{{SafeBreak: true}, {SafeBreak: false}, {SafeBreak: true}, {SafeBreak: false}}
	safe, fallback := CountBreaks(strips)
	assert.Equal(t, 2, safe)
	assert.Equal(t, 1, fallback)

	safe, fallback = CountBreaks(nil)
	assert.Zero(t, safe)
	assert.Zero(t, fallback)
}
