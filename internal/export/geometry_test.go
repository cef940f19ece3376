package export

import (
	"math"
	"testing"
)

const epsilon = 1e-9

func TestPlaceKeepsBitmapInsidePage(t *testing.T) {
	cases := []struct {
		name string
		w, h int
	}{
		{"a4 at 2x", 1588, 2246},
		{"tall page", 1588, 6000},
		{"wide page", 4000, 1000},
		{"square", 500, 500},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := Place(A4, tc.w, tc.h)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			want := math.Min(210/float64(tc.w), 297/float64(tc.h))
			if math.Abs(p.Scale-want) > epsilon {
				t.Fatalf("expected scale %v got %v", want, p.Scale)
			}
			if p.Width > A4.WidthMM+epsilon || p.Height > A4.HeightMM+epsilon {
				t.Fatalf("bitmap exceeds page: %vx%v", p.Width, p.Height)
			}
			if p.Y != 0 {
				t.Fatalf("expected y=0 got %v", p.Y)
			}
			if math.Abs(p.X-(A4.WidthMM-p.Width)/2) > epsilon {
				t.Fatalf("expected horizontally centered, x=%v width=%v", p.X, p.Width)
			}
		})
	}
}

func TestPlaceTallBitmapIsHeightBound(t *testing.T) {
	p, err := Place(A4, 1000, 3000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(p.Height-297) > epsilon {
		t.Fatalf("expected full page height got %v", p.Height)
	}
	if math.Abs(p.Width-99) > epsilon {
		t.Fatalf("expected width 99mm got %v", p.Width)
	}
	if math.Abs(p.X-55.5) > epsilon {
		t.Fatalf("expected x 55.5mm got %v", p.X)
	}
}

func TestPlaceRejectsEmptyBitmap(t *testing.T) {
	if _, err := Place(A4, 0, 100); err == nil {
		t.Fatalf("expected error for zero width")
	}
	if _, err := Place(PageSize{}, 10, 10); err == nil {
		t.Fatalf("expected error for zero page")
	}
}
