package pdfdoc

import (
	"bytes"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verustcode/valreport/internal/paginate"
)

func stripImage(w, h int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
		}
	}
	return img
}

func TestEncode(t *testing.T) {
	pages := []paginate.Page{
		{Number: 1, Placements: []paginate.Placement{
			{Block: "main", Y: 0, Strip: paginate.Strip{Height: 257, Image: stripImage(210, 257)}},
		}},
		{Number: 2, Placements: []paginate.Placement{
			{Block: "main", Y: 0, Strip: paginate.Strip{Height: 40, Image: stripImage(210, 40)}},
			{Block: "declaration", Y: 40, Strip: paginate.Strip{Height: 100, Image: stripImage(210, 100)}},
		}},
	}

	var buf bytes.Buffer
	enc := NewEncoder(paginate.DefaultOptions(), Meta{Title: "Valuation Report", PageNumbers: true})
	require.NoError(t, enc.Encode(pages, &buf))

	out := buf.Bytes()
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))
	assert.Contains(t, string(out), "/Count 2")
	assert.Equal(t, 3, bytes.Count(out, []byte("/Subtype /Image")))
}

func TestEncode_NoPages(t *testing.T) {
	var buf bytes.Buffer
	err := NewEncoder(paginate.DefaultOptions(), Meta{}).Encode(nil, &buf)
	assert.ErrorIs(t, err, ErrNoPages)
	assert.Zero(t, buf.Len())
}

func TestEncode_SkipsEmptyStrips(t *testing.T) {
	pages := []paginate.Page{
		{Number: 1, Placements: []paginate.Placement{{Block: "main"}}},
	}

	var buf bytes.Buffer
	require.NoError(t, NewEncoder(paginate.DefaultOptions(), Meta{}).Encode(pages, &buf))
	assert.Contains(t, buf.String(), "/Count 1")
	assert.NotContains(t, buf.String(), "/Subtype /Image")
}
