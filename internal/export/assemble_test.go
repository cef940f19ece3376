package export

import (
	"bytes"
	"testing"
)

func assembleTestPDF(t *testing.T, w, h int) []byte {
	t.Helper()
	encoded, err := NewJPEGEncoder().Encode(testBitmap(w, h))
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	placement, err := Place(A4, encoded.WidthPx, encoded.HeightPx)
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	data, err := NewGopdfAssembler("cvBuilder").Assemble(A4, encoded, placement, "Ali Veli")
	if err != nil {
		t.Fatalf("assemble: %v", err)
	}
	return data
}

func TestAssembleProducesSingleA4Page(t *testing.T) {
	data := assembleTestPDF(t, 210, 297)
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("output is not a pdf: %q", data[:8])
	}
	if err := (Verifier{}).Verify(data, A4); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestAssembleTallBitmapStillOnePage(t *testing.T) {
	data := assembleTestPDF(t, 100, 900)
	if err := (Verifier{}).Verify(data, A4); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestVerifyRejectsWrongPageSize(t *testing.T) {
	data := assembleTestPDF(t, 50, 50)
	letter := PageSize{WidthMM: 215.9, HeightMM: 279.4}
	if err := (Verifier{}).Verify(data, letter); err == nil {
		t.Fatalf("expected page size mismatch")
	}
}

func TestVerifyRejectsGarbage(t *testing.T) {
	if err := (Verifier{}).Verify([]byte("not a pdf"), A4); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestAssembleRejectsEmptyImage(t *testing.T) {
	p, _ := Place(A4, 10, 10)
	if _, err := NewGopdfAssembler("").Assemble(A4, Encoded{}, p, ""); err == nil {
		t.Fatalf("expected error for empty image")
	}
}
