package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"strconv"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"

	"cvBuilder/internal/preview"
)

// ChromedpCapturer 是基于 chromedp 的备用截图驱动。
type ChromedpCapturer struct {
	opts   CaptureOptions
	logger *slog.Logger
}

// NewChromedpCapturer 创建 chromedp 截图驱动。
func NewChromedpCapturer(opts CaptureOptions, logger *slog.Logger) *ChromedpCapturer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChromedpCapturer{opts: opts.normalized(), logger: logger}
}

// Capture 实现 Capturer。
func (c *ChromedpCapturer) Capture(ctx context.Context, surface preview.Surface) (image.Image, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if c.opts.BrowserBin != "" {
		opts = append(opts, chromedp.ExecPath(c.opts.BrowserBin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	runCtx, cancel := context.WithTimeout(browserCtx, c.opts.Timeout)
	defer cancel()

	var (
		rawInfo string
		shot    []byte
		info    surfaceInfo
	)
	inspect := "(" + inspectSurfaceJSONJS + ")(" + strconv.Quote(surface.RootSelector) + ")"
	awaitPromise := func(p *runtime.EvaluateParams) *runtime.EvaluateParams {
		return p.WithAwaitPromise(true)
	}

	err := chromedp.Run(runCtx,
		chromedp.EmulateViewport(int64(viewportWidthPx), int64(viewportHeightPx)),
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return fmt.Errorf("get frame tree: %w", err)
			}
			if err := page.SetDocumentContent(tree.Frame.ID, surface.HTML).Do(ctx); err != nil {
				return fmt.Errorf("set document content: %w", err)
			}
			return nil
		}),
		chromedp.WaitReady(surface.ReadySelector, chromedp.ByQuery),
		chromedp.Evaluate(inspect, &rawInfo, awaitPromise),
		chromedp.ActionFunc(func(ctx context.Context) error {
			if err := json.Unmarshal([]byte(rawInfo), &info); err != nil {
				return fmt.Errorf("decode surface info: %w", err)
			}
			return info.check(surface.RootSelector)
		}),
		chromedp.ScreenshotScale(surface.RootSelector, c.opts.Scale, &shot, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp capture: %w", err)
	}

	c.logger.Debug("Capture: chromedp screenshot taken", slog.Int("bytes", len(shot)))

	img, err := png.Decode(bytes.NewReader(shot))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	return img, nil
}
