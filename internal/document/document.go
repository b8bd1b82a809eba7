// Package document projects a Booking into a renderer-agnostic Document
// value. Per-kind differences are data (section order, header variant,
// table columns), not behavior; the layout engine dispatches on the tags.
package document

import (
	"time"

	"backoffice/internal/config"
)

// Kind selects the section set and header variant of a document.
type Kind string

const (
	KindProposal Kind = "proposal"
	KindVoucher  Kind = "voucher"
	KindHotelRO  Kind = "hotel_ro"
	KindMPV      Kind = "mpv"
)

// ValidKind reports whether s names a renderable document kind.
func ValidKind(s string) bool {
	switch Kind(s) {
	case KindProposal, KindVoucher, KindHotelRO, KindMPV:
		return true
	}
	return false
}

// KindForStatus maps a booking status onto the document kind the public
// gate serves: quoted bookings get the proposal, paid/vouchered bookings
// get the tour voucher.
func KindForStatus(status string) Kind {
	switch status {
	case "paid", "vouchered":
		return KindVoucher
	default:
		return KindProposal
	}
}

// HeaderVariant picks between the two corporate identities.
type HeaderVariant int

const (
	// HeaderText draws the logo beside the Company1 text block.
	HeaderText HeaderVariant = iota
	// HeaderBanner stretches the Company2 banner image to page width.
	HeaderBanner
)

// SectionType tags the body section variants.
type SectionType int

const (
	SectionParagraphs SectionType = iota
	SectionTable
	SectionImage
	SectionKeyValue
	SectionQR
	SectionTerms
	SectionSignature
)

// Section is one tagged body block. Only the fields of its type are set.
type Section struct {
	Type  SectionType
	Title string

	// Paragraphs
	Lines []string

	// Table
	Header      []string
	Rows        [][]string
	ColWidths   []float64 // fractions of available width
	NumericCols []int     // right-aligned columns
	FooterRow   []string  // totals row, drawn bold

	// Image
	ImagePath string
	Caption   string

	// KeyValue
	Pairs [][2]string

	// QR
	QRPath string
	QRPNG  []byte // in-memory fallback when the cache write failed

	// Terms
	Terms []string
}

// Document is the ephemeral renderer-facing value. Constructed per request,
// never persisted; ownership ends when PDF bytes are returned.
type Document struct {
	Kind      Kind
	Locale    string
	Title     string
	Subtitle  string
	Reference string

	Company     config.Company
	Header      HeaderVariant
	BannerImage string
	LogoImage   string

	Meta     [][2]string
	Sections []Section

	Tagline     string
	GeneratedAt time.Time
}
