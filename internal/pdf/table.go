package pdf

import (
	"backoffice/internal/document"
	"backoffice/internal/fonts"
	"backoffice/internal/sanitize"
)

const (
	cellPadX = 1.5
	cellPadY = 1.0
)

// drawTable renders a bordered table with a brand-colored header row,
// optional zebra striping and a bold totals row. Rows never split across a
// page break; the header row repeats on every page.
func (p *page) drawTable(sec document.Section) error {
	if err := p.drawSectionTitle(sec.Title); err != nil {
		return err
	}

	widths := p.columnWidths(sec)
	numeric := map[int]bool{}
	for _, c := range sec.NumericCols {
		numeric[c] = true
	}

	if err := p.drawHeaderRow(sec.Header, widths); err != nil {
		return err
	}
	for i, row := range sec.Rows {
		fill := p.r.Cfg.TableZebra && i%2 == 1
		if err := p.drawBodyRow(sec, row, widths, numeric, fill, false); err != nil {
			return err
		}
	}
	if len(sec.FooterRow) > 0 {
		if err := p.drawBodyRow(sec, sec.FooterRow, widths, numeric, false, true); err != nil {
			return err
		}
	}
	p.pdf.Ln(2)
	return nil
}

func (p *page) columnWidths(sec document.Section) []float64 {
	n := len(sec.Header)
	if n == 0 && len(sec.Rows) > 0 {
		n = len(sec.Rows[0])
	}
	widths := make([]float64, n)
	if len(sec.ColWidths) == n {
		for i, f := range sec.ColWidths {
			widths[i] = f * p.availW
		}
		return widths
	}
	for i := range widths {
		widths[i] = p.availW / float64(n)
	}
	return widths
}

func (p *page) drawHeaderRow(header []string, widths []float64) error {
	if len(header) == 0 {
		return nil
	}
	rowH, lines, faces, err := p.measureRow(header, widths, fonts.FaceLatinBold)
	if err != nil {
		return err
	}
	p.breakIfNeeded(rowH, nil, nil)

	x, y := p.left, p.pdf.GetY()
	p.pdf.SetFillColor(brandHeader.r, brandHeader.g, brandHeader.b)
	p.pdf.SetTextColor(255, 255, 255)
	p.pdf.SetDrawColor(gridGray.r, gridGray.g, gridGray.b)
	p.pdf.SetLineWidth(0.18)
	for i := range header {
		p.pdf.Rect(x, y, widths[i], rowH, "FD")
		p.drawCellLines(x, y, widths[i], lines[i], faces[i], "C")
		x += widths[i]
	}
	p.pdf.SetTextColor(0, 0, 0)
	p.pdf.SetY(y + rowH)
	return nil
}

func (p *page) drawBodyRow(sec document.Section, row []string, widths []float64, numeric map[int]bool, zebra, bold bool) error {
	base := fonts.FaceLatin
	if bold {
		base = fonts.FaceLatinBold
	}
	rowH, lines, faces, err := p.measureRow(row, widths, base)
	if err != nil {
		return err
	}
	p.breakIfNeeded(rowH, sec.Header, widths)

	x, y := p.left, p.pdf.GetY()
	p.pdf.SetDrawColor(gridGray.r, gridGray.g, gridGray.b)
	p.pdf.SetLineWidth(0.18)
	for i := range row {
		style := "D"
		if zebra {
			p.pdf.SetFillColor(zebraFill.r, zebraFill.g, zebraFill.b)
			style = "FD"
		}
		w := p.availW / float64(len(row))
		if i < len(widths) {
			w = widths[i]
		}
		p.pdf.Rect(x, y, w, rowH, style)
		align := "L"
		if numeric[i] {
			align = "R"
		}
		p.drawCellLines(x, y, w, lines[i], faces[i], align)
		x += w
	}
	p.pdf.SetY(y + rowH)
	return nil
}

// measureRow wraps every cell at its column width and returns the row
// height, per-cell wrapped lines and per-cell face.
func (p *page) measureRow(row []string, widths []float64, base fonts.Face) (float64, [][]string, []fonts.Face, error) {
	lines := make([][]string, len(row))
	faces := make([]fonts.Face, len(row))
	maxLines := 1
	for i, cell := range row {
		text := sanitize.Scrub(cell)
		face, err := p.r.Fonts.Select(base, text)
		if err != nil {
			return 0, nil, nil, err
		}
		faces[i] = face
		p.setFace(face, sizeCell)
		w := p.availW / float64(len(row))
		if i < len(widths) {
			w = widths[i]
		}
		lines[i] = p.pdf.SplitText(text, w-2*cellPadX)
		if len(lines[i]) == 0 {
			lines[i] = []string{""}
		}
		if len(lines[i]) > maxLines {
			maxLines = len(lines[i])
		}
	}
	rowH := float64(maxLines)*lineH(sizeCell) + 2*cellPadY
	return rowH, lines, faces, nil
}

func (p *page) drawCellLines(x, y, w float64, lines []string, face fonts.Face, align string) {
	p.setFace(face, sizeCell)
	for j, line := range lines {
		p.pdf.SetXY(x+cellPadX, y+cellPadY+float64(j)*lineH(sizeCell))
		p.pdf.CellFormat(w-2*cellPadX, lineH(sizeCell), line, "", 0, align, false, 0, "")
	}
}

// breakIfNeeded starts a new page when the next row cannot fit, repeating
// the table header on the new page.
func (p *page) breakIfNeeded(rowH float64, header []string, widths []float64) {
	if p.pdf.GetY()+rowH <= p.pageH-20 {
		return
	}
	p.pdf.AddPage()
	if len(header) > 0 {
		// Header redraw cannot recurse: a header row always fits a
		// fresh page.
		_ = p.drawHeaderRow(header, widths)
	}
}
