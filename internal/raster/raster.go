// Package raster shells out to poppler's pdftoppm to rasterize generated
// PDFs for messenger-friendly PNG delivery. The subprocess inherits the
// request context, so an abandoned download kills the conversion.
package raster

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"

	"backoffice/internal/domain"

	"github.com/google/uuid"
)

// Converter rasterizes PDF bytes at a fixed DPI. Tool is the pdftoppm
// binary name or path.
type Converter struct {
	DPI  int
	Tool string
}

func New(dpi int, tool string) Converter {
	if dpi <= 0 {
		dpi = 150
	}
	if tool == "" {
		tool = "pdftoppm"
	}
	return Converter{DPI: dpi, Tool: tool}
}

// Available reports whether the converter binary is on PATH. The public
// gate uses this to degrade PNG requests to PDF delivery.
func (c Converter) Available() bool {
	_, err := exec.LookPath(c.Tool)
	return err == nil
}

// ToPNG rasterizes only the first page.
func (c Converter) ToPNG(ctx context.Context, pdf []byte) ([]byte, error) {
	pages, err := c.run(ctx, pdf, true)
	if err != nil {
		return nil, err
	}
	return pages[0], nil
}

// ToPNGAllPages rasterizes every page and stacks them vertically into one
// tall bitmap, the layout chat apps preview best.
func (c Converter) ToPNGAllPages(ctx context.Context, pdf []byte) ([]byte, error) {
	pages, err := c.run(ctx, pdf, false)
	if err != nil {
		return nil, err
	}
	if len(pages) == 1 {
		return pages[0], nil
	}
	return stack(pages)
}

// run invokes pdftoppm over a scratch directory and returns the page
// bitmaps in order.
func (c Converter) run(ctx context.Context, pdf []byte, firstOnly bool) ([][]byte, error) {
	dir, err := os.MkdirTemp("", "raster-"+uuid.NewString()[:8])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRasterization, err)
	}
	defer os.RemoveAll(dir)

	src := filepath.Join(dir, "in.pdf")
	if err := os.WriteFile(src, pdf, 0o600); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRasterization, err)
	}

	args := []string{"-png", "-r", strconv.Itoa(c.DPI)}
	if firstOnly {
		args = append(args, "-f", "1", "-l", "1", "-singlefile")
	}
	args = append(args, src, filepath.Join(dir, "page"))

	cmd := exec.CommandContext(ctx, c.Tool, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s: %v (%s)", domain.ErrRasterization, c.Tool, err, bytes.TrimSpace(stderr.Bytes()))
	}

	matches, err := filepath.Glob(filepath.Join(dir, "page*.png"))
	if err != nil || len(matches) == 0 {
		return nil, fmt.Errorf("%w: no output pages", domain.ErrRasterization)
	}
	// pdftoppm numbers pages page-1 .. page-N without zero padding.
	sort.Slice(matches, func(i, j int) bool {
		return pageNum(matches[i]) < pageNum(matches[j])
	})

	pages := make([][]byte, 0, len(matches))
	for _, m := range matches {
		data, err := os.ReadFile(m)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrRasterization, err)
		}
		pages = append(pages, data)
	}
	return pages, nil
}

func pageNum(path string) int {
	base := filepath.Base(path)
	base = base[:len(base)-len(".png")]
	if i := len("page-"); len(base) > i {
		if n, err := strconv.Atoi(base[i:]); err == nil {
			return n
		}
	}
	return 0
}

// stack concatenates page bitmaps top to bottom on a white background.
func stack(pages [][]byte) ([]byte, error) {
	imgs := make([]image.Image, 0, len(pages))
	width, height := 0, 0
	for _, data := range pages {
		img, err := png.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrRasterization, err)
		}
		b := img.Bounds()
		if b.Dx() > width {
			width = b.Dx()
		}
		height += b.Dy()
		imgs = append(imgs, img)
	}

	canvas := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(canvas, canvas.Bounds(), image.White, image.Point{}, draw.Src)
	y := 0
	for _, img := range imgs {
		b := img.Bounds()
		r := image.Rect(0, y, b.Dx(), y+b.Dy())
		draw.Draw(canvas, r, img, b.Min, draw.Src)
		y += b.Dy()
	}

	var out bytes.Buffer
	if err := png.Encode(&out, canvas); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRasterization, err)
	}
	return out.Bytes(), nil
}
