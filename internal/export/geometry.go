package export

import (
	"fmt"
	"math"
)

// PageSize 以毫米为单位描述目标页面。
type PageSize struct {
	WidthMM  float64
	HeightMM float64
}

// A4 纵向。
var A4 = PageSize{WidthMM: 210, HeightMM: 297}

// Placement 描述位图在页面上的摆放（单位：毫米）。
type Placement struct {
	Scale  float64
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Place 计算等比缩放与摆放：
// scale 取两个轴比例的较小值，水平居中，垂直方向固定贴顶（y = 0）。
func Place(page PageSize, widthPx, heightPx int) (Placement, error) {
	if widthPx <= 0 || heightPx <= 0 {
		return Placement{}, fmt.Errorf("invalid bitmap size %dx%d", widthPx, heightPx)
	}
	if page.WidthMM <= 0 || page.HeightMM <= 0 {
		return Placement{}, fmt.Errorf("invalid page size %.2fx%.2fmm", page.WidthMM, page.HeightMM)
	}

	w := float64(widthPx)
	h := float64(heightPx)
	scale := math.Min(page.WidthMM/w, page.HeightMM/h)

	return Placement{
		Scale:  scale,
		X:      (page.WidthMM - w*scale) / 2,
		Y:      0,
		Width:  w * scale,
		Height: h * scale,
	}, nil
}
