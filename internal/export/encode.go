package export

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"

	"golang.org/x/image/draw"
)

// MaxJPEGQuality 是 image/jpeg 支持的最高质量。
const MaxJPEGQuality = 100

// Encoded 是可嵌入 PDF 的图片数据及其像素尺寸。
type Encoded struct {
	Data     []byte
	Format   string
	WidthPx  int
	HeightPx int
}

// Encoder 将位图编码为可嵌入的图片格式。
type Encoder interface {
	Encode(img image.Image) (Encoded, error)
}

// JPEGEncoder 以有损 JPEG 编码位图，透明区域先铺白底。
type JPEGEncoder struct {
	Quality int
}

// NewJPEGEncoder 返回最高质量的 JPEG 编码器。
func NewJPEGEncoder() JPEGEncoder {
	return JPEGEncoder{Quality: MaxJPEGQuality}
}

// Encode 实现 Encoder。
func (e JPEGEncoder) Encode(img image.Image) (Encoded, error) {
	if img == nil {
		return Encoded{}, fmt.Errorf("nil bitmap")
	}
	bounds := img.Bounds()
	if bounds.Dx() < 1 || bounds.Dy() < 1 {
		return Encoded{}, fmt.Errorf("invalid bitmap dimensions: %dx%d", bounds.Dx(), bounds.Dy())
	}

	quality := e.Quality
	if quality <= 0 || quality > MaxJPEGQuality {
		quality = MaxJPEGQuality
	}

	flat := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(flat, flat.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(flat, flat.Bounds(), img, bounds.Min, draw.Over)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, flat, &jpeg.Options{Quality: quality}); err != nil {
		return Encoded{}, fmt.Errorf("encode jpeg: %w", err)
	}

	return Encoded{
		Data:     buf.Bytes(),
		Format:   "jpeg",
		WidthPx:  bounds.Dx(),
		HeightPx: bounds.Dy(),
	}, nil
}
