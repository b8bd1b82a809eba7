// Package pdf paginates a Document into an A4 PDF with header, body
// sections, footer and QR anchor. The engine owns all drawing state for a
// single render; renders never share an Fpdf instance.
package pdf

import (
	"bytes"
	"fmt"
	"io"

	"backoffice/internal/config"
	"backoffice/internal/document"
	"backoffice/internal/domain"
	"backoffice/internal/fonts"
	"backoffice/internal/sanitize"
	"backoffice/internal/utils"

	"github.com/phpdave11/gofpdf"
)

const mmPerPt = 25.4 / 72.0

// Point sizes per the house style.
const (
	sizeBody    = 10.0
	sizeSection = 11.0
	sizeCell    = 9.0
	sizeFooter  = 8.0
	sizeTitle   = 14.0

	lineHeightFactor = 1.3
)

// Brand color for table header rows (overridable via env in Renderer.Cfg
// eventually; the default matches the house template).
var brandHeader = rgb{30, 64, 175}

type rgb struct{ r, g, b int }

var zebraFill = rgb{243, 244, 246}
var gridGray = rgb{156, 163, 175}

// Renderer turns Documents into PDF bytes. Fonts and config are process-wide
// and immutable; a Renderer is safe for concurrent use because every Render
// builds its own page state.
type Renderer struct {
	Fonts *fonts.Registry
	Cfg   config.Env
}

func NewRenderer(reg *fonts.Registry, cfg config.Env) *Renderer {
	return &Renderer{Fonts: reg, Cfg: cfg}
}

// Render produces the finished PDF for a document.
func (r *Renderer) Render(doc document.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.RenderTo(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderTo writes the PDF to w. Output is buffered internally by gofpdf, so
// a failed render writes nothing.
func (r *Renderer) RenderTo(w io.Writer, doc document.Document) error {
	p := newPage(r, doc)
	if err := p.registerFonts(); err != nil {
		return err
	}

	p.pdf.SetTitle(doc.Title+" "+doc.Reference, true)
	p.pdf.AliasNbPages("")
	p.pdf.SetFooterFunc(p.drawFooter)
	p.pdf.AddPage()

	if err := p.drawHeader(); err != nil {
		return err
	}
	if err := p.drawMeta(); err != nil {
		return err
	}
	for _, sec := range doc.Sections {
		if err := p.drawSection(sec); err != nil {
			return err
		}
	}

	if p.pdf.Err() {
		return fmt.Errorf("%w: %v", domain.ErrTemplateError, p.pdf.Error())
	}
	if err := p.pdf.Output(w); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrTemplateError, err)
	}
	return nil
}

// page carries the drawing state of one render.
type page struct {
	r   *Renderer
	doc document.Document
	pdf *gofpdf.Fpdf

	pageW, pageH float64
	left, right  float64
	availW       float64
}

func newPage(r *Renderer, doc document.Document) *page {
	pdf := gofpdf.New("P", "mm", "A4", "")

	// Proposal headers carry their own padding; the voucher text header
	// needs the full top margin.
	top := 10.0
	if doc.Kind == document.KindProposal {
		top = 2.5
	}
	const left, right, bottom = 10.0, 10.0, 18.0
	pdf.SetMargins(left, top, right)
	pdf.SetAutoPageBreak(true, bottom)

	w, h := pdf.GetPageSize()
	return &page{
		r:      r,
		doc:    doc,
		pdf:    pdf,
		pageW:  w,
		pageH:  h,
		left:   left,
		right:  right,
		availW: w - left - right,
	}
}

// registerFonts binds every present face into this Fpdf instance. A render
// with no usable Latin face cannot emit any document and fails up front.
func (p *page) registerFonts() error {
	reg := p.r.Fonts
	reg.Register()

	registered := false
	for _, face := range []fonts.Face{fonts.FaceThai, fonts.FaceThaiBold, fonts.FaceLatin, fonts.FaceLatinBold, fonts.FaceCJK} {
		if path := reg.Path(face); path != "" {
			p.pdf.AddUTF8Font(string(face), "", path)
			registered = true
		}
	}
	if !registered && !reg.BuiltinLatin {
		return domain.ErrFontsUnavailable
	}
	if p.pdf.Err() {
		return fmt.Errorf("%w: %v", domain.ErrFontsUnavailable, p.pdf.Error())
	}
	return nil
}

// setFace activates a resolved face at the given point size.
func (p *page) setFace(face fonts.Face, size float64) {
	if p.r.Fonts.Path(face) != "" {
		p.pdf.SetFont(string(face), "", size)
		return
	}
	// Builtin core fallback.
	style := ""
	if face == fonts.FaceLatinBold || face == fonts.FaceThaiBold {
		style = "B"
	}
	p.pdf.SetFont("Helvetica", style, size)
}

func lineH(sizePt float64) float64 {
	return sizePt * lineHeightFactor * mmPerPt
}

func (p *page) drawFooter() {
	p.pdf.SetY(-14)
	p.pdf.SetTextColor(107, 114, 128)
	footer := sanitize.Scrub(fmt.Sprintf("%s | Page %d of {nb}", p.doc.Tagline, p.pdf.PageNo()))
	face, err := p.r.Fonts.Select(fonts.FaceLatin, footer)
	if err != nil {
		return
	}
	p.setFace(face, sizeFooter)
	p.pdf.CellFormat(p.availW/2, lineH(sizeFooter), footer, "", 0, "L", false, 0, "")
	stamp := "Generated " + utils.FormatDateTime(p.doc.GeneratedAt)
	if face, err = p.r.Fonts.Select(fonts.FaceLatin, stamp); err == nil {
		p.setFace(face, sizeFooter)
		p.pdf.CellFormat(p.availW/2, lineH(sizeFooter), stamp, "", 0, "R", false, 0, "")
	}
	p.pdf.SetTextColor(0, 0, 0)
}

func (p *page) drawSection(sec document.Section) error {
	switch sec.Type {
	case document.SectionParagraphs:
		return p.drawParagraphs(sec)
	case document.SectionTable:
		return p.drawTable(sec)
	case document.SectionImage:
		return p.drawImage(sec)
	case document.SectionKeyValue:
		return p.drawKeyValue(sec)
	case document.SectionQR:
		return p.drawQR(sec)
	case document.SectionTerms:
		return p.drawTerms(sec)
	case document.SectionSignature:
		return p.drawSignature()
	}
	return fmt.Errorf("%w: unknown section type %d", domain.ErrTemplateError, sec.Type)
}

func (p *page) drawSectionTitle(title string) error {
	if title == "" {
		return nil
	}
	p.pdf.Ln(2)
	if err := p.writeStyled(title+":", fonts.FaceLatinBold, sizeSection); err != nil {
		return err
	}
	p.pdf.Ln(lineH(sizeSection))
	return nil
}

func (p *page) drawParagraphs(sec document.Section) error {
	if err := p.drawSectionTitle(sec.Title); err != nil {
		return err
	}
	for _, line := range sec.Lines {
		if err := p.writeRich(line, sizeBody); err != nil {
			return err
		}
		p.pdf.Ln(lineH(sizeBody))
	}
	p.pdf.Ln(1.5)
	return nil
}

func (p *page) drawKeyValue(sec document.Section) error {
	if err := p.drawSectionTitle(sec.Title); err != nil {
		return err
	}
	const labelW = 40.0
	for _, pair := range sec.Pairs {
		label, value := pair[0], pair[1]
		face, err := p.r.Fonts.Select(fonts.FaceLatinBold, label)
		if err != nil {
			return err
		}
		p.setFace(face, sizeBody)
		p.pdf.CellFormat(labelW, lineH(sizeBody), sanitize.Scrub(label)+":", "", 0, "L", false, 0, "")
		if err := p.writeStyled(value, fonts.FaceLatin, sizeBody); err != nil {
			return err
		}
		p.pdf.Ln(lineH(sizeBody))
	}
	p.pdf.Ln(1.5)
	return nil
}

func (p *page) drawQR(sec document.Section) error {
	const qrSide = 30.0
	p.pdf.Ln(2)
	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	name := sec.QRPath
	if name == "" {
		if len(sec.QRPNG) == 0 {
			return nil
		}
		name = "qr_" + p.doc.Reference
		p.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(sec.QRPNG))
	}
	if p.pdf.GetY()+qrSide > p.pageH-20 {
		p.pdf.AddPage()
	}
	p.pdf.ImageOptions(name, p.left, p.pdf.GetY(), qrSide, qrSide, true, opts, 0, "")
	p.pdf.Ln(2)
	return nil
}

func (p *page) drawTerms(sec document.Section) error {
	if err := p.drawSectionTitle(sec.Title); err != nil {
		return err
	}
	for i, term := range sec.Terms {
		prefix := fmt.Sprintf("%d. ", i+1)
		if p.r.Cfg.TermsListStyle == "bullet" {
			prefix = "- "
		}
		if err := p.writeStyled(prefix+term, fonts.FaceLatin, sizeCell); err != nil {
			return err
		}
		p.pdf.Ln(lineH(sizeCell))
	}
	p.pdf.Ln(1.5)
	return nil
}

func (p *page) drawSignature() error {
	if p.pdf.GetY()+35 > p.pageH-20 {
		p.pdf.AddPage()
	}
	p.pdf.Ln(8)
	face, err := p.r.Fonts.FaceFor(fonts.FaceLatin, fonts.Run{Text: "sig"})
	if err != nil {
		return err
	}
	p.setFace(face, sizeBody)
	half := p.availW / 2
	p.pdf.CellFormat(half, lineH(sizeBody), "Confirmed By:", "", 0, "C", false, 0, "")
	p.pdf.CellFormat(half, lineH(sizeBody), "Accepted By:", "", 1, "C", false, 0, "")
	p.pdf.Ln(10)
	underscores := "____________________________"
	p.pdf.CellFormat(half, lineH(sizeBody), underscores, "", 0, "C", false, 0, "")
	p.pdf.CellFormat(half, lineH(sizeBody), underscores, "", 1, "C", false, 0, "")
	p.pdf.CellFormat(half, lineH(sizeBody), "Date: ___ / ___ / _____", "", 0, "C", false, 0, "")
	p.pdf.CellFormat(half, lineH(sizeBody), "Date: ___ / ___ / _____", "", 1, "C", false, 0, "")
	return nil
}
