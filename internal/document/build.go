package document

import (
	"fmt"
	"strings"
	"time"

	"backoffice/internal/config"
	"backoffice/internal/domain"
	"backoffice/internal/qrstore"
	"backoffice/internal/sanitize"
	"backoffice/internal/utils"
)

// Thai terms printed on proposals and reservation orders.
var termsThai = []string{
	"เอกสารฉบับนี้เป็นใบเสนอราคาเพื่อใช้ในการดำเนินการจอง",
	"ราคาและรายละเอียดอาจมีการเปลี่ยนแปลงโดยไม่แจ้งให้ทราบล่วงหน้า จนกว่าจะได้รับการยืนยัน",
	"กรุณายืนยันการจองโดยชำระเงินมัดจำ เพื่อให้ราคาคงเดิมและรักษาสิทธิ์ในการจอง",
	"ใบเสนอราคานี้มีอายุ 4 ชั่วโมง นับจากวันที่และเวลาติดต่อ เมื่อไม่ได้ระบุเป็นอย่างอื่น",
	"การเปลี่ยนแปลงวันเดินทาง จำนวนผู้เดินทาง หรือรายละเอียดบริการ อาจมีผลต่อราคา",
}

// English terms used on the tour voucher.
var termsVoucherEN = []string{
	"This document serves as an official confirmation of travel services and may be presented as a reference with relevant service providers.",
	"Service details and prices are subject to change in the event of any amendments to the travel dates or number of travelers.",
	"The customer is responsible for reviewing and ensuring the accuracy of all flight, hotel, and service information prior to use.",
	"Any request for changes must be submitted at least 72 business hours in advance, or at the earliest practicable time.",
	"In case of emergency, please contact the coordination number specified in this document or reach us via Line official @DHAKULCHAN.",
}

// Voucher extras appended when PDF_TERMS_INCLUDE_VOUCHER is on.
var termsVoucherExtra = []string{
	"โปรดตรวจสอบข้อมูลเที่ยวบิน โรงแรม และบริการทุกประเภทให้ถูกต้องก่อนใช้งาน",
	"หากมีการเปลี่ยนแปลง กรุณาแจ้งล่วงหน้าอย่างน้อย 24 ชั่วโมง",
	"ในกรณีฉุกเฉินโปรดติดต่อหมายเลขประสานงานที่ระบุในเอกสารนี้",
}

// Builder normalizes bookings into Documents. All collaborators are
// injected so tests can run without disk or config.
type Builder struct {
	Cfg config.Env
	San *sanitize.Sanitizer
	QR  *qrstore.Store
	Now func() time.Time
}

func NewBuilder(cfg config.Env, san *sanitize.Sanitizer, qr *qrstore.Store) *Builder {
	return &Builder{Cfg: cfg, San: san, QR: qr}
}

func (bl *Builder) now() time.Time {
	if bl.Now != nil {
		return bl.Now()
	}
	return time.Now()
}

// fmtDate follows PDF_DATE_LOCALE: "th" prints Buddhist-era Thai dates.
func (bl *Builder) fmtDate(t time.Time) string {
	if bl.Cfg.DateLocale == "th" {
		return utils.FormatDateTH(t)
	}
	return utils.FormatDateEN(t)
}

// Build produces the kind-specific Document tree for a booking.
func (bl *Builder) Build(b domain.Booking, kind Kind) (Document, error) {
	doc := Document{
		Kind:        kind,
		Locale:      firstNonEmpty(bl.Cfg.DateLocale, "en"),
		Reference:   b.BookingReference,
		Company:     bl.Cfg.CompanyPrimary,
		Header:      HeaderText,
		LogoImage:   "dcts-logo-vou.png",
		Tagline:     bl.Cfg.SystemTagline,
		GeneratedAt: bl.now(),
		Meta:        bl.metaRows(b),
	}

	if b.TotalsDisagree() {
		utils.LogEvent("", "document", "total_mismatch",
			fmt.Sprintf("reference=%s stored=%s recomputed=%s", b.BookingReference,
				b.TotalAmount.StringFixed(2), b.GrandTotal().StringFixed(2)))
	}

	switch kind {
	case KindProposal:
		bl.buildProposal(&doc, b)
	case KindVoucher:
		doc.Company = bl.Cfg.CompanySecondary
		doc.Header = HeaderBanner
		doc.BannerImage = "tour-voucher-header.png"
		bl.buildVoucher(&doc, b)
	case KindHotelRO:
		bl.buildHotelRO(&doc, b)
	case KindMPV:
		bl.buildMPV(&doc, b)
	default:
		return Document{}, domain.ValidationError{Field: "kind", Msg: string(kind)}
	}
	return doc, nil
}

func (bl *Builder) metaRows(b domain.Booking) [][2]string {
	customer := b.CustomerName
	if b.CustomerCompany != "" {
		customer += " (" + b.CustomerCompany + ")"
	}
	return [][2]string{
		{"Create Date", bl.fmtDate(bl.now())},
		{"Travel Period", utils.FormatPeriod(b.ArrivalDate, b.DepartureDate)},
		{"Customer", customer},
		{"PAX", fmt.Sprintf("%d Adult(s), %d Child(ren), %d Infant(s)", b.Adults, b.Children, b.Infants)},
	}
}

func (bl *Builder) buildProposal(doc *Document, b domain.Booking) {
	doc.Title = "SERVICE PROPOSAL"
	doc.Subtitle = "Booking Reference: " + b.BookingReference

	bl.addParagraphs(doc, "Service Detail / Itinerary", b.Description)
	bl.addNameList(doc, b)
	bl.addParagraphs(doc, "Flight Information", b.FlightInfo)
	bl.addProductsTable(doc, b)
	if !utils.IsBlankOrNone(stripTags(bl.San.Clean(b.SpecialRequest))) {
		bl.addParagraphs(doc, "Special Requests", b.SpecialRequest)
	}
	doc.Sections = append(doc.Sections, Section{Type: SectionTerms, Title: "Terms & Conditions", Terms: bl.terms(false)})
}

func (bl *Builder) buildVoucher(doc *Document, b domain.Booking) {
	doc.Title = "TOUR VOUCHER / SERVICE ORDER"
	doc.Subtitle = ""

	doc.Sections = append(doc.Sections, Section{
		Type: SectionKeyValue,
		Pairs: [][2]string{
			{"Reference No", b.BookingReference},
			{"Party Name", firstNonEmpty(b.PartyName, b.CustomerName)},
			{"Guest Name(s)", b.CustomerName},
			{"PAX", fmt.Sprintf("%d", b.TotalPax())},
		},
	})

	bl.addServiceTable(doc, b)

	for _, img := range b.VoucherImages {
		doc.Sections = append(doc.Sections, Section{
			Type:      SectionImage,
			ImagePath: img.Path,
			Caption:   sanitize.Scrub(img.Caption),
		})
	}

	bl.addParagraphs(doc, "Flight Information", b.FlightInfo)
	bl.addParagraphs(doc, "Service Detail / Itinerary", b.Description)
	bl.addQR(doc, "voucher", b, bl.voucherQRPayload(b))
	doc.Sections = append(doc.Sections, Section{Type: SectionTerms, Title: "Terms & Conditions", Terms: bl.terms(true)})
	doc.Sections = append(doc.Sections, Section{Type: SectionSignature})
}

func (bl *Builder) buildHotelRO(doc *Document, b domain.Booking) {
	doc.Title = "HOTEL RESERVATION ORDER"
	doc.Subtitle = "Booking Reference: " + b.BookingReference

	pairs := [][2]string{
		{"Guest", b.CustomerName},
		{"Hotel", b.HotelName},
		{"Room Type", b.RoomType},
		{"Check-in", bl.fmtDate(b.ArrivalDate)},
		{"Check-out", bl.fmtDate(b.DepartureDate)},
		{"PAX", fmt.Sprintf("%d", b.TotalPax())},
	}
	doc.Sections = append(doc.Sections, Section{Type: SectionKeyValue, Pairs: compactPairs(pairs)})

	bl.addNameList(doc, b)
	bl.addQR(doc, "hotel_ro", b, bl.hotelROQRPayload(b))
	doc.Sections = append(doc.Sections, Section{Type: SectionTerms, Title: "Terms & Conditions", Terms: bl.terms(false)})
}

func (bl *Builder) buildMPV(doc *Document, b domain.Booking) {
	doc.Title = "MPV BOOKING"
	doc.Subtitle = "Booking Reference: " + b.BookingReference

	pairs := [][2]string{
		{"Vehicle", b.VehicleType},
		{"Pickup Point", b.PickupPoint},
		{"Destination", b.Destination},
		{"Pickup Date", bl.fmtDate(b.ArrivalDate)},
		{"Pickup Time", b.PickupTime},
		{"PAX", fmt.Sprintf("%d", b.TotalPax())},
		{"Contact", firstNonEmpty(b.ContactPhone, b.CustomerPhone)},
	}
	doc.Sections = append(doc.Sections, Section{Type: SectionKeyValue, Pairs: compactPairs(pairs)})
	doc.Sections = append(doc.Sections, Section{Type: SectionTerms, Title: "Terms & Conditions", Terms: bl.terms(false)})
	bl.addQR(doc, "mpv", b, bl.mpvQRPayload(b))
}

// addParagraphs appends a paragraph section unless its sanitized content is
// empty, in which case the section elides entirely.
func (bl *Builder) addParagraphs(doc *Document, title, richText string) {
	lines := bl.San.CleanLines(richText)
	if len(lines) == 0 {
		return
	}
	doc.Sections = append(doc.Sections, Section{Type: SectionParagraphs, Title: title, Lines: lines})
}

func (bl *Builder) addNameList(doc *Document, b domain.Booking) {
	guests := b.GuestList()
	if len(guests) == 0 {
		return
	}
	lines := make([]string, len(guests))
	for i, g := range guests {
		lines[i] = fmt.Sprintf("%d. %s", i+1, sanitize.Scrub(g))
	}
	doc.Sections = append(doc.Sections, Section{Type: SectionParagraphs, Title: "Name List", Lines: lines})
}

func (bl *Builder) addProductsTable(doc *Document, b domain.Booking) {
	if len(b.Products) == 0 {
		return
	}
	rows := make([][]string, 0, len(b.Products))
	for i, p := range b.Products {
		amount := p.Quantity.Mul(p.UnitPrice)
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			sanitize.Scrub(p.Name),
			utils.FormatQuantity(p.Quantity),
			utils.FormatAmount(p.UnitPrice),
			utils.FormatAmount(amount),
		})
	}
	doc.Sections = append(doc.Sections, Section{
		Type:        SectionTable,
		Title:       "Payment Information",
		Header:      []string{"No.", "Products", "Quantity", "Price", "Amount"},
		Rows:        rows,
		ColWidths:   []float64{0.08, 0.42, 0.14, 0.18, 0.18},
		NumericCols: []int{2, 3, 4},
		FooterRow:   []string{"", "Grand Total", "", "", utils.FormatTHB(b.GrandTotal())},
	})
}

func (bl *Builder) addServiceTable(doc *Document, b domain.Booking) {
	if len(b.VoucherRows) == 0 {
		return
	}
	rows := make([][]string, 0, len(b.VoucherRows))
	for i, r := range b.VoucherRows {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			sanitize.Scrub(r.Arrival),
			sanitize.Scrub(r.Departure),
			sanitize.Scrub(r.ServiceBy),
			sanitize.Scrub(r.TypeClass),
		})
	}
	doc.Sections = append(doc.Sections, Section{
		Type:      SectionTable,
		Title:     "Hotel / Accommodation | Transfer | Others | Flight Detail",
		Header:    []string{"No.", "Arrival", "Departure", "Service By", "Type/Class/Pax/Pieces"},
		Rows:      rows,
		ColWidths: []float64{0.07, 0.17, 0.17, 0.31, 0.28},
	})
}

func (bl *Builder) addQR(doc *Document, kind string, b domain.Booking, payload string) {
	if !bl.Cfg.EnableQR || bl.QR == nil {
		return
	}
	path, png, err := bl.QR.GetOrCreate(kind, b.BookingReference, payload)
	if err != nil && len(png) == 0 {
		// QR input missing or unrenderable is non-fatal; the section elides.
		utils.LogEvent("", "document", "qr_skipped", fmt.Sprintf("reference=%s err=%v", b.BookingReference, err))
		return
	}
	doc.Sections = append(doc.Sections, Section{Type: SectionQR, QRPath: path, QRPNG: png})
}

func (bl *Builder) terms(voucher bool) []string {
	var out []string
	if voucher {
		out = append(out, termsVoucherEN...)
	} else {
		out = append(out, termsThai...)
	}
	if bl.Cfg.TermsIncludeVouch {
		for _, t := range termsVoucherExtra {
			if !contains(out, t) {
				out = append(out, t)
			}
		}
	}
	return out
}

func (bl *Builder) voucherQRPayload(b domain.Booking) string {
	return fmt.Sprintf("Tour Voucher\nReference: %s\nCustomer: %s\nPeriod: %s to %s\nPAX: %d\nVerify: %s/verify/%s",
		b.BookingReference, b.CustomerName,
		utils.FormatDate(b.ArrivalDate), utils.FormatDate(b.DepartureDate),
		b.TotalPax(), bl.Cfg.PublicBaseURL, b.BookingReference)
}

func (bl *Builder) hotelROQRPayload(b domain.Booking) string {
	return fmt.Sprintf("Hotel Reservation Order\nReference: %s\nHotel: %s\nGuest: %s\nCheck-in: %s\nCheck-out: %s\nRoom: %s\nPAX: %d",
		b.BookingReference, b.HotelName, b.CustomerName,
		utils.FormatDate(b.ArrivalDate), utils.FormatDate(b.DepartureDate),
		b.RoomType, b.TotalPax())
}

func (bl *Builder) mpvQRPayload(b domain.Booking) string {
	return fmt.Sprintf("MPV Booking\nReference: %s\nVehicle: %s\nPickup: %s\nDestination: %s\nTime: %s\nPAX: %d\nCustomer: %s",
		b.BookingReference, b.VehicleType, b.PickupPoint, b.Destination,
		b.PickupTime, b.TotalPax(), b.CustomerName)
}

func compactPairs(pairs [][2]string) [][2]string {
	out := pairs[:0]
	for _, p := range pairs {
		if strings.TrimSpace(p[1]) != "" {
			out = append(out, p)
		}
	}
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// stripTags removes the markup the sanitizer kept so emptiness checks see
// only the text content.
func stripTags(s string) string {
	var out strings.Builder
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			out.WriteRune(r)
		}
	}
	return out.String()
}
