package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"cvBuilder/internal/config"
	"cvBuilder/internal/cv"
	"cvBuilder/internal/export"
	"cvBuilder/internal/preview"
)

func main() {
	in := flag.String("in", "", "path to a CV document in JSON")
	out := flag.String("out", ".", "output directory")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	path, err := run(context.Background(), *in, *out, logger)
	if err != nil {
		logger.Error("export failed", slog.Any("error", err))
		os.Exit(1)
	}
	fmt.Println(path)
}

func run(ctx context.Context, in, outDir string, logger *slog.Logger) (string, error) {
	if in == "" {
		return "", fmt.Errorf("-in is required")
	}
	cfg, err := config.Load()
	if err != nil {
		return "", fmt.Errorf("load config: %w", err)
	}

	data, err := os.ReadFile(in)
	if err != nil {
		return "", fmt.Errorf("read document: %w", err)
	}
	doc, err := cv.ParseJSON(data)
	if err != nil {
		return "", err
	}

	renderer, err := preview.NewRenderer()
	if err != nil {
		return "", err
	}
	surface, err := renderer.Render(doc)
	if err != nil {
		return "", err
	}

	capturer, err := export.NewCapturer(cfg.Capture.Driver, export.CaptureOptions{
		Scale:      cfg.Capture.Scale,
		BrowserBin: cfg.Capture.BrowserBin,
		Timeout:    cfg.Capture.Timeout,
	}, logger)
	if err != nil {
		return "", err
	}
	opts := []export.Option{export.WithTimeout(cfg.Export.Timeout)}
	if cfg.Export.VerifyOutput {
		opts = append(opts, export.WithVerifier(&export.Verifier{}))
	}
	pipeline := export.NewPipeline(capturer, export.NewJPEGEncoder(), export.NewGopdfAssembler("cvBuilder"), logger, opts...)

	artifact, err := pipeline.Export(ctx, surface, doc.SubjectName())
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	target := filepath.Join(outDir, artifact.FileName)
	if err := writeFileAtomic(target, artifact.Data); err != nil {
		return "", fmt.Errorf("write pdf: %w", err)
	}
	return target, nil
}

// writeFileAtomic 先写入同目录的临时文件再重命名，失败时不会留下不完整的 PDF。
func writeFileAtomic(target string, data []byte) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(target), ".export-*.pdf.tmp")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		return err
	}
	if err = tmp.Sync(); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), target)
}
