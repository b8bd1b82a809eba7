package pdf

import (
	"strings"

	"backoffice/internal/document"
	"backoffice/internal/fonts"
	"backoffice/internal/sanitize"
)

// drawHeader renders the corporate identity block, then the document title
// and subtitle. The voucher banner variant degrades to the text variant when
// the banner image is missing.
func (p *page) drawHeader() error {
	switch p.doc.Header {
	case document.HeaderBanner:
		if p.drawBanner() {
			break
		}
		fallthrough
	default:
		if err := p.drawTextIdentity(); err != nil {
			return err
		}
	}
	return p.drawTitle()
}

// drawBanner stretches the company banner to full page width, preserving
// aspect ratio. Returns false when the banner image cannot be resolved.
func (p *page) drawBanner() bool {
	path, info := p.resolveImage(p.doc.BannerImage)
	if path == "" {
		return false
	}
	h := p.availW * info.Height() / info.Width()
	p.pdf.ImageOptions(path, p.left, p.pdf.GetY(), p.availW, h, true, pngOrJpg(path), 0, "")
	p.pdf.Ln(3)
	return true
}

func (p *page) drawTextIdentity() error {
	co := p.doc.Company
	textX := p.left

	if path, info := p.resolveImage(p.doc.LogoImage); path != "" {
		maxH := p.r.Cfg.LogoTargetHeight * mmPerPt
		maxW := p.r.Cfg.LogoMaxWidth * mmPerPt
		w := maxH * info.Width() / info.Height()
		h := maxH
		if w > maxW {
			h = h * maxW / w
			w = maxW
		}
		p.pdf.ImageOptions(path, p.left, p.pdf.GetY(), w, h, false, pngOrJpg(path), 0, "")
		textX = p.left + w + 4
	}

	startY := p.pdf.GetY()
	lines := []struct {
		text string
		base fonts.Face
		size float64
	}{
		{co.NameEN, fonts.FaceLatinBold, 12},
		{co.Name, fonts.FaceLatin, sizeCell},
		{co.Address, fonts.FaceLatin, sizeCell},
		{contactLine(co.Phone, co.Email), fonts.FaceLatin, sizeCell},
		{licenseLine(co.Website, co.License), fonts.FaceLatin, sizeCell},
	}
	y := startY
	for _, ln := range lines {
		if ln.text == "" || ln.text == co.NameEN && ln.base == fonts.FaceLatin {
			continue
		}
		p.pdf.SetXY(textX, y)
		if err := p.writeStyled(ln.text, ln.base, ln.size); err != nil {
			return err
		}
		y += lineH(ln.size)
	}
	if y < startY+16 {
		y = startY + 16
	}
	p.pdf.SetXY(p.left, y+2)
	p.pdf.SetDrawColor(gridGray.r, gridGray.g, gridGray.b)
	p.pdf.SetLineWidth(0.4)
	p.pdf.Line(p.left, y+2, p.pageW-p.right, y+2)
	p.pdf.SetY(y + 4)
	return nil
}

func (p *page) drawTitle() error {
	face, err := p.r.Fonts.Select(fonts.FaceLatinBold, p.doc.Title)
	if err != nil {
		return err
	}
	p.setFace(face, sizeTitle)
	p.pdf.CellFormat(p.availW, lineH(sizeTitle), sanitize.Scrub(p.doc.Title), "", 1, "C", false, 0, "")
	if p.doc.Subtitle != "" {
		if err := p.centerStyled(p.doc.Subtitle, fonts.FaceLatin, sizeBody); err != nil {
			return err
		}
	}
	p.pdf.Ln(2)
	return nil
}

// centerStyled centers a single line that may mix scripts.
func (p *page) centerStyled(text string, base fonts.Face, size float64) error {
	text = sanitize.Scrub(text)
	width := 0.0
	type piece struct {
		face fonts.Face
		text string
	}
	var pieces []piece
	for _, run := range fonts.SplitRuns(text) {
		face, err := p.r.Fonts.FaceFor(base, run)
		if err != nil {
			return err
		}
		p.setFace(face, size)
		width += p.pdf.GetStringWidth(run.Text)
		pieces = append(pieces, piece{face, run.Text})
	}
	p.pdf.SetX(p.left + (p.availW-width)/2)
	for _, pc := range pieces {
		p.setFace(pc.face, size)
		p.pdf.Write(lineH(size), pc.text)
	}
	p.pdf.Ln(lineH(size))
	return nil
}

// drawMeta renders the shared meta rows under the header.
func (p *page) drawMeta() error {
	if len(p.doc.Meta) == 0 {
		return nil
	}
	const labelW = 35.0
	for _, pair := range p.doc.Meta {
		face, err := p.r.Fonts.Select(fonts.FaceLatinBold, pair[0])
		if err != nil {
			return err
		}
		p.setFace(face, sizeBody)
		p.pdf.CellFormat(labelW, lineH(sizeBody), sanitize.Scrub(pair[0])+":", "", 0, "L", false, 0, "")
		if err := p.writeStyled(pair[1], fonts.FaceLatin, sizeBody); err != nil {
			return err
		}
		p.pdf.Ln(lineH(sizeBody))
	}
	p.pdf.Ln(2)
	return nil
}

func contactLine(phone, email string) string {
	var parts []string
	if phone != "" {
		parts = append(parts, "Tel: "+phone)
	}
	if email != "" {
		parts = append(parts, "Email: "+email)
	}
	return strings.Join(parts, "  ")
}

func licenseLine(website, license string) string {
	var parts []string
	if website != "" {
		parts = append(parts, website)
	}
	if license != "" {
		parts = append(parts, "T.A.T License "+license)
	}
	return strings.Join(parts, " | ")
}
