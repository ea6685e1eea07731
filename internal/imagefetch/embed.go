// Package imagefetch downloads remote report images and inlines them as data
// URIs so rendering never depends on the network. Each failure drops only
// the affected image.
package imagefetch

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go/v4"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/verustcode/valreport/internal/record"
	"github.com/verustcode/valreport/internal/resolve"
	"github.com/verustcode/valreport/pkg/httpclient"
	"github.com/verustcode/valreport/pkg/logger"
	"github.com/verustcode/valreport/pkg/telemetry"
)

// Drop reasons reported in Stats and metrics
const (
	ReasonFetchFailed = "fetch_failed"
	ReasonNotImage    = "not_image"
	ReasonUnfetchable = "unfetchable"
	ReasonInvalid     = "invalid_reference"
)

// Fetcher returns the body and content type stored at url
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, string, error)
}

// Options configures the embedder
type Options struct {
	// Concurrency bounds simultaneous fetches within one collection
	Concurrency int
	// Timeout bounds a single fetch attempt
	Timeout time.Duration
	Retry   httpclient.RetryConfig
}

// DefaultOptions returns four concurrent fetches with a 15s timeout each
func DefaultOptions() Options {
	return Options{
		Concurrency: 4,
		Timeout:     15 * time.Second,
		Retry:       httpclient.DefaultRetryConfig(),
	}
}

// Stats reports what happened to the images of one record
type Stats struct {
	Embedded int
	Kept     int
	// Dropped counts images removed per reason
	Dropped map[string]int
}

func (s *Stats) dropN(ctx context.Context, collection, reason string, n int) {
	if n <= 0 {
		return
	}
	if s.Dropped == nil {
		s.Dropped = make(map[string]int)
	}
	s.Dropped[reason] += n
	telemetry.GetMetrics().RecordImagesDropped(ctx, collection, reason, n)
}

// TotalDropped returns the number of images removed for any reason
func (s Stats) TotalDropped() int {
	n := 0
	for _, c := range s.Dropped {
		n += c
	}
	return n
}

// Embedder inlines the image collections of resolved fields
type Embedder struct {
	fetcher Fetcher
	opts    Options
}

// NewEmbedder creates an embedder
func NewEmbedder(fetcher Fetcher, opts Options) *Embedder {
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Embedder{fetcher: fetcher, opts: opts}
}

// listCollections are the flat image arrays embedded in place
var listCollections = []string{
	resolve.FieldPropertyImages,
	resolve.FieldLocationImages,
	resolve.FieldDocumentPreviews,
}

// Embed returns a copy of f whose image collections hold only data URIs.
// References that cannot be turned into an inline image are removed.
func (e *Embedder) Embed(ctx context.Context, f *resolve.Fields) (*resolve.Fields, Stats) {
	var stats Stats
	out := f

	for _, name := range listCollections {
		images, invalid := f.Images(name, "")
		stats.dropN(ctx, name, ReasonInvalid, invalid)
		if len(images) == 0 && invalid == 0 {
			continue
		}
		embedded := e.embedAll(ctx, name, images, &stats)
		out = out.With(name, toRefs(embedded))
	}

	groups, invalid := f.AreaImages()
	stats.dropN(ctx, resolve.FieldAreaImages, ReasonInvalid, invalid)
	if f.Has(resolve.FieldAreaImages) {
		area := make(map[string]any, len(groups))
		for _, g := range groups {
			embedded := e.embedAll(ctx, resolve.FieldAreaImages, g.Images, &stats)
			if len(embedded) > 0 {
				area[g.Area] = toRefs(embedded)
			}
		}
		out = out.With(resolve.FieldAreaImages, area)
	}

	if n := stats.TotalDropped(); n > 0 {
		logger.Warn("[Images] Images dropped",
			zap.Int("dropped", n),
			zap.Any("reasons", stats.Dropped),
		)
	}
	return out, stats
}

// embedAll converts one collection, preserving order of the survivors.
func (e *Embedder) embedAll(ctx context.Context, collection string, images []record.Image, stats *Stats) []record.Image {
	results := make([]*record.Image, len(images))
	reasons := make([]string, len(images))
	var embedded, kept atomic.Int32

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Concurrency)
	for i, img := range images {
		i, img := i, img
		g.Go(func() error {
			src, fetched, reason := e.embedOne(gctx, img.Src)
			if reason != "" {
				reasons[i] = reason
				return nil
			}
			if fetched {
				embedded.Add(1)
			} else {
				kept.Add(1)
			}
			results[i] = &record.Image{Src: src, Label: img.Label}
			return nil
		})
	}
	_ = g.Wait()

	out := make([]record.Image, 0, len(images))
	for i, r := range results {
		if r != nil {
			out = append(out, *r)
			continue
		}
		stats.dropN(ctx, collection, reasons[i], 1)
	}
	stats.Embedded += int(embedded.Load())
	stats.Kept += int(kept.Load())
	return out
}

// embedOne returns the inline source for src, whether it was fetched, or a drop reason.
func (e *Embedder) embedOne(ctx context.Context, src string) (string, bool, string) {
	lower := strings.ToLower(src)
	switch {
	case strings.HasPrefix(lower, "data:"):
		return src, false, ""
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
	default:
		// blob: URLs only exist inside the browser that created them
		return "", false, ReasonUnfetchable
	}

	var (
		body        []byte
		contentType string
	)
	err := retry.Do(func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, e.opts.Timeout)
		defer cancel()
		var err error
		body, contentType, err = e.fetcher.Fetch(attemptCtx, src)
		return err
	}, e.opts.Retry.Options(ctx)...)
	if err != nil {
		logger.Debug("[Images] Fetch failed",
			zap.String("url", src),
			zap.Error(err),
		)
		return "", false, ReasonFetchFailed
	}

	uri, err := DataURI(body, contentType)
	if err != nil {
		logger.Debug("[Images] Not an image",
			zap.String("url", src),
			zap.String("content_type", contentType),
		)
		return "", false, ReasonNotImage
	}
	return uri, true, ""
}

// errNotImage is returned by DataURI for bodies that are not images
var errNotImage = errors.New("content is not an image")

// DataURI encodes body as a base64 data URI. The declared content type is
// used when it names an image, else the type is sniffed from the body.
func DataURI(body []byte, contentType string) (string, error) {
	mediaType := strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0])
	if !strings.HasPrefix(mediaType, "image/") {
		mediaType = http.DetectContentType(body)
	}
	if !strings.HasPrefix(mediaType, "image/") || len(body) == 0 {
		return "", fmt.Errorf("%w: %s", errNotImage, mediaType)
	}
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(body), nil
}

func toRefs(images []record.Image) []any {
	refs := make([]any, 0, len(images))
	for _, img := range images {
		ref := map[string]any{"url": img.Src}
		if img.Label != "" {
			ref["label"] = img.Label
		}
		refs = append(refs, ref)
	}
	return refs
}
