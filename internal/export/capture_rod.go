package export

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/png"
	"log/slog"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"cvBuilder/internal/preview"
)

// RodCapturer 使用 go-rod 驱动无头 Chromium 截图，每次截图使用独立的浏览器进程。
type RodCapturer struct {
	opts   CaptureOptions
	logger *slog.Logger
}

// NewRodCapturer 创建 go-rod 截图驱动。
func NewRodCapturer(opts CaptureOptions, logger *slog.Logger) *RodCapturer {
	if logger == nil {
		logger = slog.Default()
	}
	return &RodCapturer{opts: opts.normalized(), logger: logger}
}

// Capture 实现 Capturer。
func (c *RodCapturer) Capture(ctx context.Context, surface preview.Surface) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	launch := launcher.New().
		Context(ctx).
		Headless(true).
		NoSandbox(true)
	defer launch.Cleanup()

	if c.opts.BrowserBin != "" {
		launch = launch.Bin(c.opts.BrowserBin)
	} else if path, ok := launcher.LookPath(); ok {
		launch = launch.Bin(path)
	}

	browserURL, err := launch.Launch()
	if err != nil {
		return nil, fmt.Errorf("launch chromium: %w", err)
	}

	browser := rod.New().ControlURL(browserURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("connect browser: %w", err)
	}
	defer func() {
		_ = browser.Close()
	}()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("create page: %w", err)
	}
	defer func() {
		_ = page.Close()
	}()

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             viewportWidthPx,
		Height:            viewportHeightPx,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fmt.Errorf("set viewport: %w", err)
	}

	if err := page.SetDocumentContent(surface.HTML); err != nil {
		return nil, fmt.Errorf("set document content: %w", err)
	}
	if err := page.WaitLoad(); err != nil {
		return nil, fmt.Errorf("wait load: %w", err)
	}

	c.logger.Debug("Capture: waiting for render signal", slog.String("selector", surface.ReadySelector))
	if _, err := page.Element(surface.ReadySelector); err != nil {
		return nil, fmt.Errorf("%w: wait %s: %v", ErrSurfaceNotReady, surface.ReadySelector, err)
	}

	res, err := page.Eval(inspectSurfaceJSONJS, surface.RootSelector)
	if err != nil {
		return nil, fmt.Errorf("inspect surface: %w", err)
	}
	var info surfaceInfo
	if err := json.Unmarshal([]byte(res.Value.Str()), &info); err != nil {
		return nil, fmt.Errorf("decode surface info: %w", err)
	}
	if err := info.check(surface.RootSelector); err != nil {
		return nil, err
	}

	data, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
		Clip: &proto.PageViewport{
			X:      info.X,
			Y:      info.Y,
			Width:  info.Width,
			Height: info.Height,
			Scale:  c.opts.Scale,
		},
		FromSurface:           true,
		CaptureBeyondViewport: true,
	})
	if err != nil {
		return nil, fmt.Errorf("capture screenshot: %w", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode screenshot: %w", err)
	}
	return img, nil
}
