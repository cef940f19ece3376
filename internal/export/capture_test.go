package export

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-rod/rod/lib/launcher"

	"cvBuilder/internal/cv"
	"cvBuilder/internal/preview"
)

func TestViewportMatchesA4Canvas(t *testing.T) {
	if viewportWidthPx != 794 || viewportHeightPx != 1123 {
		t.Fatalf("expected 794x1123 viewport got %dx%d", viewportWidthPx, viewportHeightPx)
	}
}

// browserCapturers 返回本机可用的真实截图驱动，没有浏览器时跳过。
func browserCapturers(t *testing.T) map[string]Capturer {
	t.Helper()
	if testing.Short() {
		t.Skip("browser capture skipped in short mode")
	}
	bin, ok := launcher.LookPath()
	if !ok {
		t.Skip("no chromium found")
	}
	opts := CaptureOptions{Scale: MinSupersampling, BrowserBin: bin, Timeout: 60 * time.Second}
	return map[string]Capturer{
		DriverRod:      NewRodCapturer(opts, discardLogger()),
		DriverChromedp: NewChromedpCapturer(opts, discardLogger()),
	}
}

func renderSnapshot(t *testing.T, snap cv.Snapshot) preview.Surface {
	t.Helper()
	r, err := preview.NewRenderer()
	if err != nil {
		t.Fatalf("new renderer: %v", err)
	}
	surface, err := r.Render(snap)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return surface
}

func TestCapture_BlankDocumentIsSupersampled(t *testing.T) {
	surface := renderSnapshot(t, cv.Blank())

	for name, capturer := range browserCapturers(t) {
		t.Run(name, func(t *testing.T) {
			img, err := capturer.Capture(context.Background(), surface)
			if err != nil {
				t.Fatalf("capture: %v", err)
			}
			want := int(MinSupersampling * float64(viewportWidthPx))
			got := img.Bounds().Dx()
			if got < want-4 || got > want+4 {
				t.Fatalf("expected width about %d got %d", want, got)
			}
			if h := img.Bounds().Dy(); h < int(MinSupersampling*float64(viewportHeightPx))-4 {
				t.Fatalf("expected at least one full page of height got %d", h)
			}
		})
	}
}

func TestCapture_UnreadablePhotoFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	photo := srv.URL + "/photo.png"
	srv.Close()

	snap := cv.Blank()
	snap.Personal.Name = "Ali Veli"
	snap.Personal.Photo = photo
	surface := renderSnapshot(t, snap)

	for name, capturer := range browserCapturers(t) {
		t.Run(name, func(t *testing.T) {
			img, err := capturer.Capture(context.Background(), surface)
			if !errors.Is(err, ErrUnreadableImage) {
				t.Fatalf("expected ErrUnreadableImage got %v", err)
			}
			if img != nil {
				t.Fatalf("expected no bitmap on failure")
			}
		})
	}
}
