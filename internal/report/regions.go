package report

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/verustcode/valreport/internal/paginate"
)

// Sentinel classes marking the regions laid out after the main flow
const (
	ClassAnnexure            = "region-annexure"
	ClassAreaImages          = "region-area-images"
	ClassLocationImages      = "region-location-images"
	ClassSupportingDocuments = "region-supporting-documents"
	ClassGalleryPage         = "gallery-page"
)

// Region is one independently paginated part of the report, as a standalone
// HTML document sharing the report's head.
type Region struct {
	Kind paginate.BlockKind
	Name string
	HTML string
}

// Layout is the report split into its main flow and trailing regions
type Layout struct {
	Main    string
	Regions []Region
}

// regionSources lists the gallery containers in document order with the
// block kind each of their pages is laid out as.
var regionSources = []struct {
	class string
	name  string
	kind  paginate.BlockKind
}{
	{ClassAreaImages, "area-images", paginate.KindGallery},
	{ClassLocationImages, "location-images", paginate.KindDocument},
	{ClassSupportingDocuments, "supporting-documents", paginate.KindDocument},
}

// SplitRegions extracts every annexure and every gallery page from an
// assembled report. The returned main document no longer contains them.
func SplitRegions(html string) (*Layout, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("failed to parse report html: %w", err)
	}

	head, err := doc.Find("head").Html()
	if err != nil {
		return nil, fmt.Errorf("failed to read report head: %w", err)
	}

	layout := &Layout{}
	var extractErr error

	doc.Find("." + ClassAnnexure).EachWithBreak(func(i int, s *goquery.Selection) bool {
		outer, err := goquery.OuterHtml(s)
		if err != nil {
			extractErr = fmt.Errorf("failed to extract annexure %d: %w", i, err)
			return false
		}
		name, ok := s.Attr("data-region")
		if !ok || name == "" {
			name = fmt.Sprintf("annexure-%d", i+1)
		}
		layout.Regions = append(layout.Regions, Region{
			Kind: paginate.KindAnnexure,
			Name: name,
			HTML: standalone(head, outer),
		})
		return true
	})
	if extractErr != nil {
		return nil, extractErr
	}
	doc.Find("." + ClassAnnexure).Remove()

	for _, src := range regionSources {
		container := doc.Find("." + src.class)
		container.Find("." + ClassGalleryPage).EachWithBreak(func(i int, s *goquery.Selection) bool {
			outer, err := goquery.OuterHtml(s)
			if err != nil {
				extractErr = fmt.Errorf("failed to extract %s page %d: %w", src.name, i, err)
				return false
			}
			layout.Regions = append(layout.Regions, Region{
				Kind: src.kind,
				Name: fmt.Sprintf("%s-%d", src.name, i+1),
				HTML: standalone(head, outer),
			})
			return true
		})
		if extractErr != nil {
			return nil, extractErr
		}
		container.Remove()
	}

	main, err := doc.Html()
	if err != nil {
		return nil, fmt.Errorf("failed to render main flow: %w", err)
	}
	layout.Main = main
	return layout, nil
}

func standalone(head, body string) string {
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>")
	sb.WriteString(head)
	sb.WriteString("</head>\n<body>\n")
	sb.WriteString(body)
	sb.WriteString("\n</body>\n</html>\n")
	return sb.String()
}
