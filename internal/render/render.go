// Package render rasterizes report HTML into PDF bytes through a
// headless browser. The renderer is a collaborator behind a narrow
// interface: HTML and a page configuration in, PDF bytes out, bounded
// by a maximum wait. Failures are terminal; nothing here retries.
package render

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// PageConfig describes the printed page. Dimensions are in inches.
type PageConfig struct {
	PaperWidth      float64
	PaperHeight     float64
	MarginTop       float64
	MarginBottom    float64
	MarginLeft      float64
	MarginRight     float64
	Landscape       bool
	PrintBackground bool
}

// A4 returns the default portrait A4 page with half-inch margins.
func A4() PageConfig {
	return PageConfig{
		PaperWidth:      8.27,
		PaperHeight:     11.69,
		MarginTop:       0.5,
		MarginBottom:    0.5,
		MarginLeft:      0.5,
		MarginRight:     0.5,
		PrintBackground: true,
	}
}

// Renderer turns report HTML into a PDF byte stream.
type Renderer interface {
	RenderPDF(ctx context.Context, html []byte, cfg PageConfig) ([]byte, error)
}

// ChromeRenderer drives a headless Chrome instance per request.
type ChromeRenderer struct {
	execPath string
	timeout  time.Duration
}

// NewChromeRenderer creates a renderer. execPath may be empty to let
// chromedp find the browser on PATH; timeout bounds one full render.
func NewChromeRenderer(execPath string, timeout time.Duration) *ChromeRenderer {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ChromeRenderer{execPath: execPath, timeout: timeout}
}

// RenderPDF loads the HTML into a fresh browser tab and prints it.
func (r *ChromeRenderer) RenderPDF(ctx context.Context, html []byte, cfg PageConfig) ([]byte, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.NoSandbox,
		chromedp.Flag("disable-gpu", true),
	)
	if r.execPath != "" {
		opts = append(opts, chromedp.ExecPath(r.execPath))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	tabCtx, cancelTab := chromedp.NewContext(allocCtx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, r.timeout)
	defer cancelTimeout()

	var pdf []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, string(html)).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) error {
			buf, _, err := page.PrintToPDF().
				WithPaperWidth(cfg.PaperWidth).
				WithPaperHeight(cfg.PaperHeight).
				WithMarginTop(cfg.MarginTop).
				WithMarginBottom(cfg.MarginBottom).
				WithMarginLeft(cfg.MarginLeft).
				WithMarginRight(cfg.MarginRight).
				WithLandscape(cfg.Landscape).
				WithPrintBackground(cfg.PrintBackground).
				Do(ctx)
			if err != nil {
				return err
			}
			pdf = buf
			return nil
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("print to PDF: %w", err)
	}
	return pdf, nil
}
