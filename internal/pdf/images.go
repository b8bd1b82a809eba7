package pdf

import (
	"os"
	"path/filepath"
	"strings"

	"backoffice/internal/document"
	"backoffice/internal/fonts"
	"backoffice/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// imageSearchDirs lists the prefixes tried when a section references an
// image by bare name or relative path.
var imageSearchDirs = []string{"", "static", "static/images", "static/uploads/voucher_albums"}

func pngOrJpg(path string) gofpdf.ImageOptions {
	t := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if t == "jpeg" {
		t = "jpg"
	}
	return gofpdf.ImageOptions{ImageType: t, ReadDpi: true}
}

// resolveImage locates an image on disk and registers it with the page,
// returning its registered path and dimensions. Returns "" when the file
// cannot be found or decoded; the caller elides the image.
func (p *page) resolveImage(name string) (string, *gofpdf.ImageInfoType) {
	if name == "" {
		return "", nil
	}
	candidates := []string{name}
	if !filepath.IsAbs(name) {
		for _, dir := range imageSearchDirs[1:] {
			candidates = append(candidates, filepath.Join(dir, name))
		}
	}
	for _, path := range candidates {
		if info, err := os.Stat(path); err != nil || info.IsDir() {
			continue
		}
		img := p.pdf.RegisterImageOptions(path, pngOrJpg(path))
		if img == nil || p.pdf.Err() {
			// A broken file must not poison the whole render.
			p.pdf.ClearError()
			continue
		}
		return path, img
	}
	utils.LogEvent("", "pdf", "image_unresolved", "name="+name)
	return "", nil
}

// drawImage renders an album or itinerary image scaled to fit, with an
// optional caption. Unresolvable images are skipped, never fatal.
func (p *page) drawImage(sec document.Section) error {
	path, info := p.resolveImage(sec.ImagePath)
	if path == "" {
		return nil
	}
	maxW := p.availW
	if maxW > 120 {
		maxW = 120
	}
	w := maxW
	h := w * info.Height() / info.Width()
	maxH := p.pageH - 40
	if h > maxH {
		w = w * maxH / h
		h = maxH
	}
	if p.pdf.GetY()+h > p.pageH-20 {
		p.pdf.AddPage()
	}
	x := p.left + (p.availW-w)/2
	p.pdf.ImageOptions(path, x, p.pdf.GetY(), w, h, true, pngOrJpg(path), 0, "")
	if sec.Caption != "" {
		if err := p.centerStyled(sec.Caption, fonts.FaceLatin, sizeFooter); err != nil {
			return err
		}
	}
	p.pdf.Ln(2)
	return nil
}
