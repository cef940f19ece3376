package export

import (
	"context"
	"errors"
	"image"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"cvBuilder/internal/cv"
	"cvBuilder/internal/preview"
)

type fakeCapturer struct {
	img   image.Image
	err   error
	calls int
}

func (f *fakeCapturer) Capture(ctx context.Context, surface preview.Surface) (image.Image, error) {
	f.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.img, f.err
}

type recordingObserver struct {
	mu       sync.Mutex
	started  int
	stages   []Stage
	failures []Stage
	finished []error
}

func (o *recordingObserver) ExportStarted() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started++
}

func (o *recordingObserver) StageCompleted(stage Stage, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.stages = append(o.stages, stage)
	if err != nil {
		o.failures = append(o.failures, stage)
	}
}

func (o *recordingObserver) ExportFinished(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, err)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func aliVeliSurface(t *testing.T) (preview.Surface, string) {
	t.Helper()
	doc := cv.NewDocument()
	if _, err := doc.SetPersonal("name", "Ali Veli"); err != nil {
		t.Fatalf("set name: %v", err)
	}
	fields := [][2]string{
		{"institution", "X Üniversitesi"},
		{"degree", "Bilgisayar Mühendisliği"},
		{"date", "2018-2022"},
	}
	for _, f := range fields {
		if _, err := doc.Update(cv.ListEducation, 0, f[0], f[1]); err != nil {
			t.Fatalf("set %s: %v", f[0], err)
		}
	}
	r, err := preview.NewRenderer()
	if err != nil {
		t.Fatalf("renderer: %v", err)
	}
	snap := doc.Snapshot()
	surface, err := r.Render(snap)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return surface, snap.SubjectName()
}

func TestPipelineExportsSinglePagePDF(t *testing.T) {
	surface, name := aliVeliSurface(t)
	capturer := &fakeCapturer{img: testBitmap(1588, 2400)}
	obs := &recordingObserver{}
	p := NewPipeline(capturer, NewJPEGEncoder(), NewGopdfAssembler("cvBuilder"), discardLogger(),
		WithVerifier(&Verifier{}),
		WithObserver(obs),
		WithTimeout(time.Minute),
	)

	if !strings.Contains(surface.HTML, "X Üniversitesi - Bilgisayar Mühendisliği") || !strings.Contains(surface.HTML, "2018-2022") {
		t.Fatalf("expected education block in surface")
	}

	artifact, err := p.Export(context.Background(), surface, name)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if artifact.FileName != "Ali Veli.pdf" {
		t.Fatalf("expected Ali Veli.pdf got %q", artifact.FileName)
	}
	if len(artifact.Data) == 0 {
		t.Fatalf("expected pdf bytes")
	}
	if artifact.Placement.Y != 0 || artifact.Placement.Height > A4.HeightMM {
		t.Fatalf("unexpected placement %+v", artifact.Placement)
	}
	if artifact.WidthPx != 1588 || artifact.HeightPx != 2400 {
		t.Fatalf("unexpected bitmap size %dx%d", artifact.WidthPx, artifact.HeightPx)
	}
	if obs.started != 1 || len(obs.stages) != 3 || len(obs.failures) != 0 {
		t.Fatalf("unexpected observations %+v", obs)
	}
	if obs.finished[0] != nil {
		t.Fatalf("expected success to be observed, got %v", obs.finished[0])
	}
	if err := (Verifier{}).Verify(artifact.Data, A4); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestPipelineCaptureFailureProducesNoArtifact(t *testing.T) {
	surface, name := aliVeliSurface(t)
	capturer := &fakeCapturer{err: errors.Join(ErrUnreadableImage, errors.New("https://example.com/me.png"))}
	obs := &recordingObserver{}
	p := NewPipeline(capturer, NewJPEGEncoder(), NewGopdfAssembler("cvBuilder"), discardLogger(), WithObserver(obs))

	artifact, err := p.Export(context.Background(), surface, name)
	if artifact != nil {
		t.Fatalf("expected no artifact")
	}
	stage, ok := StageOf(err)
	if !ok || stage != StageCapture {
		t.Fatalf("expected capture failure got %v", err)
	}
	if !errors.Is(err, ErrUnreadableImage) {
		t.Fatalf("expected ErrUnreadableImage in chain, got %v", err)
	}
	if len(obs.failures) != 1 || obs.failures[0] != StageCapture {
		t.Fatalf("unexpected failures %v", obs.failures)
	}
	if obs.finished[0] == nil {
		t.Fatalf("expected failure to be observed")
	}
}

func TestPipelineNilBitmapIsCaptureFailure(t *testing.T) {
	surface, _ := aliVeliSurface(t)
	p := NewPipeline(&fakeCapturer{}, NewJPEGEncoder(), NewGopdfAssembler(""), discardLogger())
	_, err := p.Export(context.Background(), surface, "")
	if stage, _ := StageOf(err); stage != StageCapture {
		t.Fatalf("expected capture failure got %v", err)
	}
}

type failingAssembler struct{}

func (failingAssembler) Assemble(PageSize, Encoded, Placement, string) ([]byte, error) {
	return nil, errors.New("disk full")
}

func TestPipelineAssemblyFailure(t *testing.T) {
	surface, _ := aliVeliSurface(t)
	p := NewPipeline(&fakeCapturer{img: testBitmap(20, 20)}, NewJPEGEncoder(), failingAssembler{}, discardLogger())
	artifact, err := p.Export(context.Background(), surface, "")
	if artifact != nil {
		t.Fatalf("expected no artifact")
	}
	if stage, _ := StageOf(err); stage != StageAssemble {
		t.Fatalf("expected assemble failure got %v", err)
	}
}

func TestPipelineCancelledContext(t *testing.T) {
	surface, _ := aliVeliSurface(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	p := NewPipeline(&fakeCapturer{img: testBitmap(20, 20)}, NewJPEGEncoder(), NewGopdfAssembler(""), discardLogger())
	_, err := p.Export(ctx, surface, "")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled got %v", err)
	}
}

func TestGuardRejectsOverlappingExport(t *testing.T) {
	var g Guard
	release, err := g.Acquire()
	if err != nil {
		t.Fatalf("first acquire: %v", err)
	}
	if _, err := g.Acquire(); !errors.Is(err, ErrExportInProgress) {
		t.Fatalf("expected ErrExportInProgress got %v", err)
	}
	release()
	release()
	again, err := g.Acquire()
	if err != nil {
		t.Fatalf("acquire after release: %v", err)
	}
	again()
}

func TestNewCapturer(t *testing.T) {
	for _, name := range []string{"", DriverRod, DriverChromedp} {
		if _, err := NewCapturer(name, CaptureOptions{}, nil); err != nil {
			t.Fatalf("driver %q: %v", name, err)
		}
	}
	if _, err := NewCapturer("phantomjs", CaptureOptions{}, nil); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}

func TestSurfaceInfoCheck(t *testing.T) {
	if err := (surfaceInfo{}).check("#x"); !errors.Is(err, ErrSurfaceNotReady) {
		t.Fatalf("expected ErrSurfaceNotReady got %v", err)
	}
	info := surfaceInfo{Found: true, Broken: []string{"https://cdn.example.com/p.png"}, Width: 10, Height: 10}
	if err := info.check("#x"); !errors.Is(err, ErrUnreadableImage) {
		t.Fatalf("expected ErrUnreadableImage got %v", err)
	}
	if err := (surfaceInfo{Found: true, Width: 794, Height: 1200}).check("#x"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
