package raster

import (
	"bytes"
	"context"
	"errors"
	"image/png"
	"os/exec"
	"testing"
	"time"

	"backoffice/internal/domain"

	"github.com/phpdave11/gofpdf"
)

func samplePDF(t *testing.T, pages int) []byte {
	t.Helper()
	doc := gofpdf.New("P", "mm", "A4", "")
	for i := 0; i < pages; i++ {
		doc.AddPage()
		doc.SetFont("Helvetica", "", 12)
		doc.Cell(0, 10, "page content")
	}
	var buf bytes.Buffer
	if err := doc.Output(&buf); err != nil {
		t.Fatalf("building sample pdf: %v", err)
	}
	return buf.Bytes()
}

func requireTool(t *testing.T, c Converter) {
	t.Helper()
	if !c.Available() {
		t.Skipf("%s not installed", c.Tool)
	}
}

func TestToPNGFirstPage(t *testing.T) {
	c := New(72, "")
	requireTool(t, c)

	out, err := c.ToPNG(context.Background(), samplePDF(t, 2))
	if err != nil {
		t.Fatalf("ToPNG returned error: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(out)); err != nil {
		t.Fatalf("output is not a decodable PNG: %v", err)
	}
}

func TestToPNGAllPagesStacksVertically(t *testing.T) {
	c := New(72, "")
	requireTool(t, c)

	one, err := c.ToPNG(context.Background(), samplePDF(t, 1))
	if err != nil {
		t.Fatalf("single page: %v", err)
	}
	all, err := c.ToPNGAllPages(context.Background(), samplePDF(t, 3))
	if err != nil {
		t.Fatalf("all pages: %v", err)
	}

	single, err := png.Decode(bytes.NewReader(one))
	if err != nil {
		t.Fatalf("decode single: %v", err)
	}
	stacked, err := png.Decode(bytes.NewReader(all))
	if err != nil {
		t.Fatalf("decode stacked: %v", err)
	}
	if stacked.Bounds().Dy() != 3*single.Bounds().Dy() {
		t.Fatalf("stacked height = %d, want %d", stacked.Bounds().Dy(), 3*single.Bounds().Dy())
	}
}

func TestMissingToolReportsRasterization(t *testing.T) {
	c := New(72, "definitely-not-a-binary-on-path")
	if c.Available() {
		t.Skip("unexpected binary on PATH")
	}
	_, err := c.ToPNG(context.Background(), samplePDF(t, 1))
	if !errors.Is(err, domain.ErrRasterization) {
		t.Fatalf("expected ErrRasterization, got %v", err)
	}
}

func TestCancelledContextKillsConversion(t *testing.T) {
	c := New(72, "")
	requireTool(t, c)
	if _, err := exec.LookPath(c.Tool); err != nil {
		t.Skip("tool missing")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Nanosecond)
	defer cancel()
	time.Sleep(time.Millisecond)

	_, err := c.ToPNG(ctx, samplePDF(t, 1))
	if err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
