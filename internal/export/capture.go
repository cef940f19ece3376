package export

import (
	"context"
	"fmt"
	"image"
	"math"
	"strings"
	"time"

	"cvBuilder/internal/preview"
)

// MinSupersampling 是截图的最低超采样倍数。
const MinSupersampling = 2.0

// cssPixelsPerMM 是 96 DPI 下每毫米的 CSS 像素数。
const cssPixelsPerMM = 96 / 25.4

// 视口与预览画布的逻辑尺寸一致（A4 纵向为 794x1123）。
var (
	viewportWidthPx  = cssPixels(preview.PageWidthMM)
	viewportHeightPx = cssPixels(preview.PageMinHeightMM)
)

func cssPixels(mm float64) int {
	return int(math.Round(mm * cssPixelsPerMM))
}

// Capturer 将画布完整栅格化为位图，包括视口以外的部分。
type Capturer interface {
	Capture(ctx context.Context, surface preview.Surface) (image.Image, error)
}

// CaptureOptions 是两种浏览器驱动共享的设置。
type CaptureOptions struct {
	// Scale 是超采样倍数，小于 MinSupersampling 时会被提升。
	Scale float64
	// BrowserBin 为空时自动查找本机 Chromium。
	BrowserBin string
	// Timeout 限制单次截图（含浏览器启动）的时长。
	Timeout time.Duration
}

func (o CaptureOptions) normalized() CaptureOptions {
	if o.Scale < MinSupersampling {
		o.Scale = MinSupersampling
	}
	if o.Timeout <= 0 {
		o.Timeout = 45 * time.Second
	}
	return o
}

// inspectSurfaceJS 等待字体与图片加载完成，返回根元素的位置以及无法读取的图片来源。
const inspectSurfaceJS = `async (rootSelector) => {
  const root = document.querySelector(rootSelector);
  if (!root) {
    return { found: false, broken: [], x: 0, y: 0, width: 0, height: 0 };
  }
  if (document.fonts && document.fonts.ready) {
    await Promise.race([
      document.fonts.ready,
      new Promise((resolve) => setTimeout(resolve, 3000)),
    ]);
  }
  const broken = [];
  for (const img of Array.from(root.querySelectorAll('img'))) {
    if (!img.complete) {
      await new Promise((resolve) => {
        img.addEventListener('load', resolve, { once: true });
        img.addEventListener('error', resolve, { once: true });
      });
    }
    if (!img.naturalWidth) {
      broken.push(img.currentSrc || img.getAttribute('src') || '');
    }
  }
  const r = root.getBoundingClientRect();
  return {
    found: true,
    broken: broken,
    x: r.left + window.scrollX,
    y: r.top + window.scrollY,
    width: r.width,
    height: r.height,
  };
}`

type surfaceInfo struct {
	Found  bool     `json:"found"`
	Broken []string `json:"broken"`
	X      float64  `json:"x"`
	Y      float64  `json:"y"`
	Width  float64  `json:"width"`
	Height float64  `json:"height"`
}

func (s surfaceInfo) check(rootSelector string) error {
	if !s.Found {
		return fmt.Errorf("%w: %s not found", ErrSurfaceNotReady, rootSelector)
	}
	if len(s.Broken) > 0 {
		sources := make([]string, 0, len(s.Broken))
		for _, src := range s.Broken {
			sources = append(sources, shortenSource(src))
		}
		return fmt.Errorf("%w: %s", ErrUnreadableImage, strings.Join(sources, ", "))
	}
	if s.Width < 1 || s.Height < 1 {
		return fmt.Errorf("%w: empty bounds %.0fx%.0f", ErrSurfaceNotReady, s.Width, s.Height)
	}
	return nil
}

func shortenSource(src string) string {
	const limit = 80
	if len(src) <= limit {
		return src
	}
	return src[:limit] + "..."
}

// inspectSurfaceJSONJS 以 JSON 字符串形式返回 inspectSurfaceJS 的结果。
var inspectSurfaceJSONJS = `async (rootSelector) => JSON.stringify(await (` + inspectSurfaceJS + `)(rootSelector))`
