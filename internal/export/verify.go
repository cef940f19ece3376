package export

import (
	"bytes"
	"fmt"
	"math"

	"seehuhn.de/go/pdf"
	"seehuhn.de/go/pdf/pagetree"
)

// mediaBoxTolerance 是页面尺寸比较允许的误差（点）。
const mediaBoxTolerance = 0.5

// Verifier 重新解析组装结果，确认它恰好是一页且页面尺寸正确。
type Verifier struct{}

// Verify 检查 PDF 字节。
func (Verifier) Verify(data []byte, page PageSize) error {
	r, err := pdf.NewReader(bytes.NewReader(data), nil)
	if err != nil {
		return fmt.Errorf("parse pdf: %w", err)
	}
	defer func() {
		_ = r.Close()
	}()

	n, err := pagetree.NumPages(r)
	if err != nil {
		return fmt.Errorf("count pages: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("expected exactly one page, got %d", n)
	}

	_, dict, err := pagetree.GetPage(r, 0)
	if err != nil {
		return fmt.Errorf("read page: %w", err)
	}
	box, err := pdf.GetRectangle(r, dict["MediaBox"])
	if err != nil {
		return fmt.Errorf("read media box: %w", err)
	}
	if box == nil {
		return fmt.Errorf("page has no media box")
	}

	wantW := page.WidthMM * pointsPerMM
	wantH := page.HeightMM * pointsPerMM
	gotW := box.URx - box.LLx
	gotH := box.URy - box.LLy
	if math.Abs(gotW-wantW) > mediaBoxTolerance || math.Abs(gotH-wantH) > mediaBoxTolerance {
		return fmt.Errorf("unexpected page size %.2fx%.2fpt, want %.2fx%.2fpt", gotW, gotH, wantW, wantH)
	}
	return nil
}
