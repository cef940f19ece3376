package upload

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	_ "golang.org/x/image/webp"
)

var (
	// ErrNotImage 表示上传内容不是图片。
	ErrNotImage = errors.New("file is not an image")
	// ErrTooLarge 表示上传内容超过大小限制。
	ErrTooLarge = errors.New("file too large")
	// ErrEmpty 表示上传内容为空。
	ErrEmpty = errors.New("file is empty")
)

// Photo 是已接收的头像，以 data URI 形式直接写入文档。
type Photo struct {
	DataURI   string
	MediaType string
	Width     int
	Height    int
	Size      int
}

// Intake 负责读取、识别并内联用户上传的头像。
type Intake struct {
	maxBytes int64
	scanner  Scanner
	logger   *slog.Logger
}

// NewIntake 创建头像接收器。maxBytes 为 0 表示不限制大小，scanner 可为 nil。
func NewIntake(maxBytes int64, scanner Scanner, logger *slog.Logger) *Intake {
	if logger == nil {
		logger = slog.Default()
	}
	return &Intake{maxBytes: maxBytes, scanner: scanner, logger: logger}
}

// Accept 读取上传内容并返回可直接引用的 data URI。
func (in *Intake) Accept(r io.Reader) (Photo, error) {
	data, err := in.read(r)
	if err != nil {
		return Photo{}, err
	}
	if len(data) == 0 {
		return Photo{}, ErrEmpty
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return Photo{}, fmt.Errorf("%w: detected %s", ErrNotImage, mtype.String())
	}

	if in.scanner != nil {
		if err := in.scanner.Scan(bytes.NewReader(data)); err != nil {
			return Photo{}, err
		}
	}

	photo := Photo{
		MediaType: mediaType(mtype),
		Size:      len(data),
	}
	// svg 等矢量格式无法解码出尺寸，仍然接受。
	if cfg, _, err := image.DecodeConfig(bytes.NewReader(data)); err == nil {
		photo.Width = cfg.Width
		photo.Height = cfg.Height
	} else {
		in.logger.Debug("Intake: image dimensions unavailable",
			slog.String("media_type", photo.MediaType),
			slog.String("error", err.Error()),
		)
	}
	photo.DataURI = DataURI(photo.MediaType, data)
	return photo, nil
}

func (in *Intake) read(r io.Reader) ([]byte, error) {
	if in.maxBytes <= 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read upload: %w", err)
		}
		return data, nil
	}
	data, err := io.ReadAll(io.LimitReader(r, in.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	if int64(len(data)) > in.maxBytes {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrTooLarge, in.maxBytes)
	}
	return data, nil
}

// mediaType 去掉 charset 等参数。
func mediaType(m *mimetype.MIME) string {
	s := m.String()
	if i := strings.IndexByte(s, ';'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

// DataURI 以 base64 编码内容。
func DataURI(mediaType string, data []byte) string {
	return fmt.Sprintf("data:%s;base64,%s", mediaType, base64.StdEncoding.EncodeToString(data))
}
