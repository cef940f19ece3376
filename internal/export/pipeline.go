package export

import (
	"context"
	"fmt"
	"image"
	"log/slog"
	"sync"
	"time"

	"cvBuilder/internal/preview"
)

// Artifact 是一次成功导出的单页 PDF 文件。
type Artifact struct {
	FileName  string
	Data      []byte
	Placement Placement
	WidthPx   int
	HeightPx  int
}

// ContentType 是导出文件的 MIME 类型。
const ContentType = "application/pdf"

// Observer 接收流水线的阶段耗时与结果，用于指标采集。
type Observer interface {
	ExportStarted()
	StageCompleted(stage Stage, d time.Duration, err error)
	ExportFinished(err error)
}

type nopObserver struct{}

func (nopObserver) ExportStarted()                             {}
func (nopObserver) StageCompleted(Stage, time.Duration, error) {}
func (nopObserver) ExportFinished(error)                       {}

// Pipeline 按 截图 -> 编码 -> 计算版面 -> 组装 -> 校验 的顺序导出 PDF。
type Pipeline struct {
	capturer  Capturer
	encoder   Encoder
	assembler Assembler
	verifier  *Verifier
	page      PageSize
	timeout   time.Duration
	logger    *slog.Logger
	observer  Observer
}

// Option 配置 Pipeline。
type Option func(*Pipeline)

// WithTimeout 为整次导出设置超时，0 表示不限制。
func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.timeout = d }
}

// WithVerifier 在组装后重新解析 PDF 校验页数与尺寸。
func WithVerifier(v *Verifier) Option {
	return func(p *Pipeline) { p.verifier = v }
}

// WithObserver 设置指标观察者。
func WithObserver(o Observer) Option {
	return func(p *Pipeline) {
		if o != nil {
			p.observer = o
		}
	}
}

// NewPipeline 创建导出流水线。
func NewPipeline(capturer Capturer, encoder Encoder, assembler Assembler, logger *slog.Logger, opts ...Option) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	p := &Pipeline{
		capturer:  capturer,
		encoder:   encoder,
		assembler: assembler,
		page:      A4,
		logger:    logger,
		observer:  nopObserver{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Export 导出画布。任何阶段失败都返回 *Error，且不会产生文件。
func (p *Pipeline) Export(ctx context.Context, surface preview.Surface, subjectName string) (_ *Artifact, retErr error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	log := p.logger.With(slog.Uint64("revision", surface.Revision))
	p.observer.ExportStarted()
	defer func() {
		p.observer.ExportFinished(retErr)
		if retErr != nil {
			log.Error("Export: pdf export failed", slog.Any("error", retErr))
		}
	}()

	log.Info("Export: capturing surface...")
	start := time.Now()
	bitmap, err := p.capturer.Capture(ctx, surface)
	if err == nil && bitmap == nil {
		err = fmt.Errorf("capturer returned no bitmap")
	}
	p.observer.StageCompleted(StageCapture, time.Since(start), err)
	if err != nil {
		return nil, stageError(StageCapture, err)
	}
	size := bitmap.Bounds().Size()
	log.Info("Export: surface captured",
		slog.Int("width_px", size.X),
		slog.Int("height_px", size.Y),
		slog.Duration("took", time.Since(start)),
	)

	start = time.Now()
	encoded, err := p.encode(ctx, bitmap)
	p.observer.StageCompleted(StageEncode, time.Since(start), err)
	if err != nil {
		return nil, stageError(StageEncode, err)
	}

	start = time.Now()
	placement, data, err := p.assemble(encoded, subjectName)
	p.observer.StageCompleted(StageAssemble, time.Since(start), err)
	if err != nil {
		return nil, stageError(StageAssemble, err)
	}

	artifact := &Artifact{
		FileName:  FileName(subjectName),
		Data:      data,
		Placement: placement,
		WidthPx:   encoded.WidthPx,
		HeightPx:  encoded.HeightPx,
	}
	log.Info("Export: pdf ready",
		slog.String("file_name", artifact.FileName),
		slog.Int("bytes", len(data)),
		slog.Float64("scale", placement.Scale),
	)
	return artifact, nil
}

func (p *Pipeline) encode(ctx context.Context, bitmap image.Image) (Encoded, error) {
	if err := ctx.Err(); err != nil {
		return Encoded{}, err
	}
	return p.encoder.Encode(bitmap)
}

func (p *Pipeline) assemble(encoded Encoded, title string) (Placement, []byte, error) {
	placement, err := Place(p.page, encoded.WidthPx, encoded.HeightPx)
	if err != nil {
		return Placement{}, nil, err
	}
	data, err := p.assembler.Assemble(p.page, encoded, placement, title)
	if err != nil {
		return Placement{}, nil, err
	}
	if p.verifier != nil {
		if err := p.verifier.Verify(data, p.page); err != nil {
			return Placement{}, nil, fmt.Errorf("verify pdf: %w", err)
		}
	}
	return placement, data, nil
}

// Guard 保证同一画布上的导出不会重叠：第二个请求直接被拒绝。
type Guard struct {
	mu sync.Mutex
}

// Acquire 获取导出权，失败时返回 ErrExportInProgress。
func (g *Guard) Acquire() (release func(), err error) {
	if !g.mu.TryLock() {
		return nil, ErrExportInProgress
	}
	var once sync.Once
	return func() { once.Do(g.mu.Unlock) }, nil
}
