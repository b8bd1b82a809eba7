package pdf

import (
	"html"
	"strings"

	"backoffice/internal/fonts"
	"backoffice/internal/sanitize"
)

// styledRun is one flow-text fragment after inline markup is resolved.
type styledRun struct {
	text string
	bold bool
}

// parseInline reduces sanitized rich text to bold/plain fragments. The
// sanitizer has already whitelisted the tags, so anything unrecognized here
// is simply dropped.
func parseInline(s string) []styledRun {
	var (
		out  []styledRun
		cur  strings.Builder
		bold = false
	)
	flush := func() {
		if cur.Len() > 0 {
			out = append(out, styledRun{text: cur.String(), bold: bold})
			cur.Reset()
		}
	}
	for i := 0; i < len(s); {
		if s[i] != '<' {
			j := strings.IndexByte(s[i:], '<')
			if j < 0 {
				cur.WriteString(html.UnescapeString(s[i:]))
				break
			}
			cur.WriteString(html.UnescapeString(s[i : i+j]))
			i += j
			continue
		}
		end := strings.IndexByte(s[i:], '>')
		if end < 0 {
			cur.WriteString(html.UnescapeString(s[i:]))
			break
		}
		tag := strings.ToLower(strings.Trim(s[i+1:i+end], " /"))
		switch tag {
		case "b", "strong":
			flush()
			bold = true
		case "/b", "/strong":
			flush()
			bold = false
		case "br":
			cur.WriteString("\n")
		case "p", "/p", "ul", "/ul", "ol", "/ol", "/li":
			cur.WriteString("\n")
		case "li":
			cur.WriteString("\n- ")
		}
		i += end + 1
	}
	flush()
	return out
}

// writeStyled flows plain text at the current position, switching faces at
// script boundaries so Thai and CJK codepoints always land on a face that
// has their glyphs.
func (p *page) writeStyled(text string, base fonts.Face, size float64) error {
	for _, run := range fonts.SplitRuns(sanitize.Scrub(text)) {
		face, err := p.r.Fonts.FaceFor(base, run)
		if err != nil {
			return err
		}
		p.setFace(face, size)
		p.pdf.Write(lineH(size), run.Text)
	}
	return nil
}

// writeRich flows one sanitized rich-text line, honoring bold markup.
func (p *page) writeRich(line string, size float64) error {
	for _, sr := range parseInline(line) {
		base := fonts.FaceLatin
		if sr.bold {
			base = fonts.FaceLatinBold
		}
		text := sr.text
		for len(text) > 0 {
			nl := strings.IndexByte(text, '\n')
			seg := text
			if nl >= 0 {
				seg = text[:nl]
				text = text[nl+1:]
			} else {
				text = ""
			}
			if seg != "" {
				if err := p.writeStyled(seg, base, size); err != nil {
					return err
				}
			}
			if nl >= 0 {
				p.pdf.Ln(lineH(size))
			}
		}
	}
	return nil
}
