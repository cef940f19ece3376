package export

import (
	"fmt"
	"log/slog"
)

const (
	DriverRod      = "rod"
	DriverChromedp = "chromedp"
)

// NewCapturer 按名称选择截图驱动，空名称使用 go-rod。
func NewCapturer(driver string, opts CaptureOptions, logger *slog.Logger) (Capturer, error) {
	switch driver {
	case "", DriverRod:
		return NewRodCapturer(opts, logger), nil
	case DriverChromedp:
		return NewChromedpCapturer(opts, logger), nil
	default:
		return nil, fmt.Errorf("unknown capture driver %q", driver)
	}
}
