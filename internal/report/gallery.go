package report

import (
	"fmt"
	"html/template"

	"github.com/verustcode/valreport/internal/record"
	"github.com/verustcode/valreport/internal/resolve"
)

// AreaImagesPerPage is the grid capacity of one area gallery page (2 columns x 3 rows)
const AreaImagesPerPage = 6

// GalleryImage is one image element of a gallery page
type GalleryImage struct {
	Src   template.URL
	Label string
}

// GalleryPage is one printed page of a gallery
type GalleryPage struct {
	Title  string
	Images []GalleryImage
}

// Galleries are the three image regions appended after the annexures
type Galleries struct {
	Area      []GalleryPage
	Location  []GalleryPage
	Documents []GalleryPage
	Dropped   map[string]int
}

// buildGalleries collects the validated images of every collection and lays
// them out into pages. Sources were validated by the record helpers, so
// wrapping them in template.URL only keeps data: URIs intact.
func buildGalleries(f *resolve.Fields) Galleries {
	g := Galleries{Dropped: make(map[string]int)}

	var area []GalleryImage
	props, dropped := f.Images(resolve.FieldPropertyImages, "Property Image")
	g.Dropped[resolve.FieldPropertyImages] = dropped
	area = append(area, toGalleryImages(props)...)

	groups, dropped := f.AreaImages()
	g.Dropped[resolve.FieldAreaImages] = dropped
	for _, group := range groups {
		area = append(area, toGalleryImages(group.Images)...)
	}
	g.Area = paginateImages("Property Photographs", area, AreaImagesPerPage)

	location, dropped := f.Images(resolve.FieldLocationImages, "Location Image")
	g.Dropped[resolve.FieldLocationImages] = dropped
	g.Location = paginateImages("Location Map", toGalleryImages(location), 1)

	docs, dropped := f.Images(resolve.FieldDocumentPreviews, "Document")
	g.Dropped[resolve.FieldDocumentPreviews] = dropped
	g.Documents = paginateImages("Supporting Document", toGalleryImages(docs), 1)

	return g
}

func toGalleryImages(images []record.Image) []GalleryImage {
	out := make([]GalleryImage, 0, len(images))
	for _, img := range images {
		out = append(out, GalleryImage{Src: template.URL(img.Src), Label: img.Label})
	}
	return out
}

// paginateImages splits images into pages of perPage. Continuation pages are
// numbered in the title.
func paginateImages(title string, images []GalleryImage, perPage int) []GalleryPage {
	if len(images) == 0 || perPage <= 0 {
		return nil
	}
	total := (len(images) + perPage - 1) / perPage
	pages := make([]GalleryPage, 0, total)
	for i := 0; i < len(images); i += perPage {
		end := i + perPage
		if end > len(images) {
			end = len(images)
		}
		pageTitle := title
		if total > 1 {
			pageTitle = fmt.Sprintf("%s (%d of %d)", title, len(pages)+1, total)
		}
		pages = append(pages, GalleryPage{Title: pageTitle, Images: images[i:end]})
	}
	return pages
}
