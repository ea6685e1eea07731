// Package render rasterizes report HTML into bitmaps with headless Chrome.
package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/verustcode/valreport/pkg/logger"
)

// Options configures the Chrome rasterizer
type Options struct {
	// ViewportWidth is the CSS pixel width documents are laid out at
	ViewportWidth int
	// DeviceScale multiplies the bitmap resolution
	DeviceScale float64
	// Timeout bounds one rasterization call, browser start-up included
	Timeout time.Duration
	// SettleDelay is waited after load so web fonts and images finish painting
	SettleDelay time.Duration
	// MaxConcurrent limits the number of simultaneous Chrome instances
	MaxConcurrent int64
	// ChromePath overrides the browser executable; CHROME_PATH is used when empty
	ChromePath string
}

// DefaultOptions renders at 793px (A4 width at 96dpi) and twice the resolution
func DefaultOptions() Options {
	return Options{
		ViewportWidth: 793,
		DeviceScale:   2,
		Timeout:       120 * time.Second,
		SettleDelay:   500 * time.Millisecond,
		MaxConcurrent: 2,
	}
}

// Renderer rasterizes HTML documents with a headless Chrome per call
type Renderer struct {
	opts Options
	sem  *semaphore.Weighted
}

// NewRenderer creates a renderer
func NewRenderer(opts Options) *Renderer {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 1
	}
	if opts.ViewportWidth <= 0 {
		opts.ViewportWidth = DefaultOptions().ViewportWidth
	}
	if opts.DeviceScale <= 0 {
		opts.DeviceScale = 1
	}
	return &Renderer{
		opts: opts,
		sem:  semaphore.NewWeighted(opts.MaxConcurrent),
	}
}

// Rasterize renders one HTML document to a full-page bitmap
func (r *Renderer) Rasterize(ctx context.Context, html string) (*image.RGBA, error) {
	images, err := r.RasterizeAll(ctx, []string{html})
	if err != nil {
		return nil, err
	}
	return images[0], nil
}

// RasterizeAll renders each document in its own tab of a single browser and
// returns the bitmaps in input order. Any failure fails the whole call.
func (r *Renderer) RasterizeAll(ctx context.Context, docs []string) ([]*image.RGBA, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	if err := r.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("failed to acquire renderer slot: %w", err)
	}
	defer r.sem.Release(1)

	startTime := time.Now()
	ctx, cancel := context.WithTimeout(ctx, r.opts.Timeout)
	defer cancel()

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, r.allocatorOptions()...)
	defer allocCancel()

	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			logger.Debug(fmt.Sprintf("[Render] chromedp: "+format, args...))
		}),
	)
	defer browserCancel()

	// start the browser before opening tabs
	if err := chromedp.Run(browserCtx); err != nil {
		return nil, fmt.Errorf("failed to start chrome: %w", err)
	}

	images := make([]*image.RGBA, 0, len(docs))
	for i, doc := range docs {
		img, err := r.renderTab(browserCtx, doc)
		if err != nil {
			logger.Error("[Render] Rasterization failed",
				zap.Int("document", i),
				zap.Error(err),
				zap.Duration("duration", time.Since(startTime)),
			)
			return nil, fmt.Errorf("failed to rasterize document %d: %w", i, err)
		}
		images = append(images, img)
	}

	logger.Debug("[Render] Documents rasterized",
		zap.Int("documents", len(docs)),
		zap.Duration("duration", time.Since(startTime)),
	)
	return images, nil
}

func (r *Renderer) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-software-rasterizer", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("headless", true),
		chromedp.WSURLReadTimeout(60*time.Second),
	)

	chromePath := r.opts.ChromePath
	if chromePath == "" {
		chromePath = os.Getenv("CHROME_PATH")
	}
	if chromePath != "" {
		opts = append(opts, chromedp.ExecPath(chromePath))
	}
	return opts
}

// renderTab loads doc from a temporary file in a new tab and captures the
// full page. A file URL avoids data URL size limits for image-heavy reports.
func (r *Renderer) renderTab(browserCtx context.Context, doc string) (*image.RGBA, error) {
	tmpFile, err := os.CreateTemp("", "valreport-render-*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.WriteString(doc); err != nil {
		tmpFile.Close()
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	tmpFile.Close()

	tabCtx, tabCancel := chromedp.NewContext(browserCtx)
	defer tabCancel()

	var shot []byte
	err = chromedp.Run(tabCtx,
		chromedp.EmulateViewport(int64(r.opts.ViewportWidth), 1, chromedp.EmulateScale(r.opts.DeviceScale)),
		chromedp.Navigate("file://"+tmpPath),
		chromedp.WaitReady("body"),
		chromedp.Sleep(r.opts.SettleDelay),
		// quality 100 captures lossless PNG
		chromedp.FullScreenshot(&shot, 100),
	)
	if err != nil {
		return nil, err
	}

	return DecodePNG(shot)
}

// DecodePNG decodes a PNG screenshot into an RGBA bitmap with origin (0,0)
func DecodePNG(data []byte) (*image.RGBA, error) {
	src, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode screenshot: %w", err)
	}
	if rgba, ok := src.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) {
		return rgba, nil
	}
	b := src.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Rect, src, b.Min, draw.Src)
	return rgba, nil
}
