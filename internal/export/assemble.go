package export

import (
	"fmt"
	"time"

	"github.com/signintech/gopdf"
)

// pointsPerMM 用于毫米到 PDF 点的换算。
const pointsPerMM = 72.0 / 25.4

// Assembler 将编码后的图片放入一个新建的单页 PDF。
type Assembler interface {
	Assemble(page PageSize, img Encoded, placement Placement, title string) ([]byte, error)
}

// GopdfAssembler 使用 signintech/gopdf 组装 PDF。
type GopdfAssembler struct {
	Creator string
	now     func() time.Time
}

// NewGopdfAssembler 创建组装器。
func NewGopdfAssembler(creator string) *GopdfAssembler {
	return &GopdfAssembler{Creator: creator, now: time.Now}
}

// Assemble 实现 Assembler。页面与摆放以毫米给出，内部以点为单位写入。
func (a *GopdfAssembler) Assemble(page PageSize, img Encoded, placement Placement, title string) ([]byte, error) {
	if len(img.Data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}

	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{
		Unit: gopdf.UnitPT,
		PageSize: gopdf.Rect{
			W: page.WidthMM * pointsPerMM,
			H: page.HeightMM * pointsPerMM,
		},
	})
	defer pdf.Close()

	now := time.Now
	if a.now != nil {
		now = a.now
	}
	pdf.SetInfo(gopdf.PdfInfo{
		Title:        title,
		Creator:      a.Creator,
		Producer:     a.Creator,
		CreationDate: now(),
	})

	pdf.AddPage()

	holder, err := gopdf.ImageHolderByBytes(img.Data)
	if err != nil {
		return nil, fmt.Errorf("create image holder: %w", err)
	}

	rect := &gopdf.Rect{
		W: placement.Width * pointsPerMM,
		H: placement.Height * pointsPerMM,
	}
	if err := pdf.ImageByHolder(holder, placement.X*pointsPerMM, placement.Y*pointsPerMM, rect); err != nil {
		return nil, fmt.Errorf("place image: %w", err)
	}

	data, err := pdf.GetBytesPdfReturnErr()
	if err != nil {
		return nil, fmt.Errorf("finalize pdf: %w", err)
	}
	return data, nil
}
