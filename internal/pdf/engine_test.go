package pdf

import (
	"bytes"
	"compress/zlib"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"backoffice/internal/config"
	"backoffice/internal/document"
	"backoffice/internal/domain"
	"backoffice/internal/fonts"
)

func testRenderer(builtin bool) *Renderer {
	reg := fonts.NewRegistry(nil, builtin)
	reg.Register()
	cfg := config.Env{
		SystemTagline:    "Test Tagline",
		TermsListStyle:   "number",
		TableZebra:       true,
		LogoTargetHeight: 55,
		LogoMaxWidth:     180,
	}
	return NewRenderer(reg, cfg)
}

func testDocument() document.Document {
	return document.Document{
		Kind:      document.KindProposal,
		Title:     "SERVICE PROPOSAL",
		Subtitle:  "Booking Reference: DCT-2024-001",
		Reference: "DCT-2024-001",
		Company: config.Company{
			NameEN:  "PRIMARY CO",
			Address: "1 Test Road, Bangkok",
			Phone:   "+662 0000000",
			Email:   "test@example.com",
			Website: "www.example.com",
			License: "11/03589",
		},
		Header: document.HeaderText,
		Meta: [][2]string{
			{"Create Date", "01 Mar 2025"},
			{"Customer", "Jane Walker"},
		},
		Sections: []document.Section{
			{Type: document.SectionParagraphs, Title: "Service Detail / Itinerary", Lines: []string{
				"Day 1: <b>Arrival</b> and transfer",
				"Day 2: City tour",
			}},
			{Type: document.SectionTable, Title: "Payment Information",
				Header:      []string{"No.", "Products", "Quantity", "Price", "Amount"},
				Rows:        [][]string{{"1", "Adult Package", "2", "5,000.00", "10,000.00"}},
				ColWidths:   []float64{0.08, 0.42, 0.14, 0.18, 0.18},
				NumericCols: []int{2, 3, 4},
				FooterRow:   []string{"", "Grand Total", "", "", "THB 10,000.00"},
			},
			{Type: document.SectionTerms, Title: "Terms & Conditions", Terms: []string{
				"First term.", "Second term.",
			}},
			{Type: document.SectionSignature},
		},
		Tagline:     "Test Tagline",
		GeneratedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
	}
}

func TestRenderProducesPDF(t *testing.T) {
	data, err := testRenderer(true).Render(testDocument())
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatalf("output does not start with %%PDF: %q", data[:8])
	}
	if len(data) < 1000 {
		t.Fatalf("suspiciously small PDF: %d bytes", len(data))
	}
}

// extractStreams inflates every content stream so tests can search the
// drawn text.
func extractStreams(t *testing.T, data []byte) string {
	t.Helper()
	var out bytes.Buffer
	rest := data
	for {
		i := bytes.Index(rest, []byte("stream"))
		if i < 0 {
			break
		}
		chunk := bytes.TrimLeft(rest[i+len("stream"):], "\r\n")
		j := bytes.Index(chunk, []byte("endstream"))
		if j < 0 {
			break
		}
		body := chunk[:j]
		if zr, err := zlib.NewReader(bytes.NewReader(body)); err == nil {
			if plain, err := io.ReadAll(zr); err == nil {
				out.Write(plain)
			}
			zr.Close()
		} else {
			out.Write(body)
		}
		rest = chunk[j+len("endstream"):]
	}
	return out.String()
}

func TestRenderedTextCarriesReferenceWithoutFallbackGlyphs(t *testing.T) {
	doc := testDocument()
	doc.Sections[0].Lines = append(doc.Sections[0].Lines, "Raw ■ square ▪ and □ box")

	data, err := testRenderer(true).Render(doc)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	text := extractStreams(t, data)
	if !strings.Contains(text, "DCT-2024-001") {
		t.Fatal("booking reference not extractable from page text")
	}
	if strings.ContainsAny(text, "■▪□") {
		t.Fatal("fallback glyphs present in drawn text")
	}
}

func TestRenderToleratesRowWiderThanHeader(t *testing.T) {
	doc := testDocument()
	doc.Sections = append(doc.Sections, document.Section{
		Type:   document.SectionTable,
		Title:  "Extras",
		Header: []string{"No.", "Item"},
		Rows:   [][]string{{"1", "Tour", "stray cell"}},
	})

	data, err := testRenderer(true).Render(doc)
	if err != nil {
		t.Fatalf("over-wide row must not fail the render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}
}

func TestRenderThaiTaglineFooter(t *testing.T) {
	doc := testDocument()
	doc.Tagline = "ดักุลจันทร์ ทราเวล"

	data, err := testRenderer(true).Render(doc)
	if err != nil {
		t.Fatalf("Render returned error: %v", err)
	}
	if strings.ContainsAny(extractStreams(t, data), "■▪□") {
		t.Fatal("fallback glyphs present in footer text")
	}
}

func TestRenderFailsWithoutAnyFonts(t *testing.T) {
	_, err := testRenderer(false).Render(testDocument())
	if !errors.Is(err, domain.ErrFontsUnavailable) {
		t.Fatalf("expected ErrFontsUnavailable, got %v", err)
	}
}

func TestRenderElidesMissingImages(t *testing.T) {
	doc := testDocument()
	doc.Sections = append(doc.Sections, document.Section{
		Type:      document.SectionImage,
		ImagePath: "does-not-exist-anywhere.png",
		Caption:   "missing",
	})

	data, err := testRenderer(true).Render(doc)
	if err != nil {
		t.Fatalf("missing image must not fail the render: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}
}

func TestRenderBannerFallsBackToTextHeader(t *testing.T) {
	doc := testDocument()
	doc.Header = document.HeaderBanner
	doc.BannerImage = "no-banner-on-disk.png"

	data, err := testRenderer(true).Render(doc)
	if err != nil {
		t.Fatalf("banner fallback failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Fatal("output is not a PDF")
	}
}

func TestRenderSkipsEmptyQRSection(t *testing.T) {
	doc := testDocument()
	doc.Sections = append(doc.Sections, document.Section{Type: document.SectionQR})

	if _, err := testRenderer(true).Render(doc); err != nil {
		t.Fatalf("empty QR section must be skipped: %v", err)
	}
}

func TestParseInline(t *testing.T) {
	runs := parseInline("plain <b>bold</b> tail")
	want := []styledRun{
		{text: "plain ", bold: false},
		{text: "bold", bold: true},
		{text: " tail", bold: false},
	}
	if len(runs) != len(want) {
		t.Fatalf("runs = %#v", runs)
	}
	for i := range want {
		if runs[i] != want[i] {
			t.Fatalf("run %d = %#v, want %#v", i, runs[i], want[i])
		}
	}
}

func TestParseInlineListsAndBreaks(t *testing.T) {
	runs := parseInline("<ul><li>one</li><li>two</li></ul>")
	var text string
	for _, r := range runs {
		text += r.text
	}
	if text != "\n\n- one\n\n- two\n\n" {
		t.Fatalf("list text = %q", text)
	}
}

func TestParseInlineUnescapesEntities(t *testing.T) {
	runs := parseInline("Tom &amp; Jerry &lt;3")
	if len(runs) != 1 || runs[0].text != "Tom & Jerry <3" {
		t.Fatalf("runs = %#v", runs)
	}
}
