package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"backoffice/internal/config"
	"backoffice/internal/document"
	"backoffice/internal/domain"
	"backoffice/internal/fonts"
	"backoffice/internal/pdf"
	"backoffice/internal/repositories"
	"backoffice/internal/sanitize"
	"backoffice/internal/services"
	"backoffice/internal/sharetoken"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

func gateFixture(t *testing.T, booking domain.Booking) (*gin.Engine, sharetoken.Codec, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := config.Env{
		CompanyPrimary:   config.Company{NameEN: "PRIMARY CO"},
		CompanySecondary: config.Company{NameEN: "SECONDARY CO"},
		SystemTagline:    "Test Tagline",
		PublicBaseURL:    "http://host",
	}
	reg := fonts.NewRegistry(nil, true)
	reg.Register()

	loader := func(int64) (domain.Booking, error) { return booking, nil }
	codec := sharetoken.New("test-secret")

	docsSvc := services.DocsService{
		Bookings: repositories.BookingRepository{DB: db},
		Builder:  document.NewBuilder(cfg, sanitize.New(nil), nil),
		Renderer: pdf.NewRenderer(reg, cfg),
		Cfg:      cfg,
		Loader:   loader,
	}
	shareSvc := services.ShareService{
		Bookings: repositories.BookingRepository{DB: db},
		Codec:    codec,
		Cfg:      cfg,
		Loader:   loader,
	}

	public := PublicHandler{Share: shareSvc, Docs: docsSvc}
	r := gin.New()
	r.GET("/public/booking/:token", public.ViewDocument)
	r.GET("/public/booking/:token/pdf", public.ViewPDF)
	r.GET("/public/booking/:token/png", public.ViewPNG)
	return r, codec, mock
}

func gateBooking() domain.Booking {
	return domain.Booking{
		ID:               10,
		BookingReference: "DCT-2024-001",
		Status:           domain.StatusQuoted,
		CustomerName:     "Jane Walker",
		Adults:           2,
		DepartureDate:    time.Now().AddDate(0, 0, 30),
		Description:      "Day 1: Arrival",
	}
}

func TestGateLandingLinksToRenditions(t *testing.T) {
	booking := gateBooking()
	r, codec, _ := gateFixture(t, booking)
	token := codec.Issue(booking.ID, booking.DepartureDate)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public/booking/"+token, nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, "/public/booking/"+token+"/pdf") ||
		!strings.Contains(body, "/public/booking/"+token+"/png") {
		t.Fatalf("landing page missing rendition links: %s", body)
	}
	if !strings.Contains(body, booking.BookingReference) {
		t.Fatal("landing page missing booking reference")
	}
}

func TestGateServesDocumentForValidToken(t *testing.T) {
	booking := gateBooking()
	r, codec, mock := gateFixture(t, booking)
	token := codec.Issue(booking.ID, booking.DepartureDate)
	mock.ExpectExec("view_count=view_count\\+1").WithArgs(booking.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/public/booking/"+token+"/pdf", nil)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Fatalf("content-type = %q", ct)
	}
	if !strings.HasPrefix(w.Body.String(), "%PDF") {
		t.Fatal("body is not a PDF")
	}
	if cc := w.Header().Get("Cache-Control"); cc != "private, max-age=60" {
		t.Fatalf("cache-control = %q", cc)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "proposal_DCT-2024-001.pdf") {
		t.Fatalf("content-disposition = %q", cd)
	}
}

func TestGateServesVoucherForPaidBooking(t *testing.T) {
	booking := gateBooking()
	booking.Status = domain.StatusPaid
	r, codec, mock := gateFixture(t, booking)
	token := codec.Issue(booking.ID, booking.DepartureDate)
	mock.ExpectExec("view_count=view_count\\+1").WithArgs(booking.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public/booking/"+token+"/pdf", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "voucher_") {
		t.Fatalf("paid booking should serve the voucher, got %q", cd)
	}
}

func TestGateRejectsGarbageTokenWith404(t *testing.T) {
	r, _, _ := gateFixture(t, gateBooking())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public/booking/garbage/pdf", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Document Unavailable") {
		t.Fatal("neutral unavailable page not served")
	}
}

func TestGateRejectsExpiredTokenWith404(t *testing.T) {
	booking := gateBooking()
	r, codec, _ := gateFixture(t, booking)
	expired := codec.IssueAt(booking.ID, time.Now().AddDate(0, 0, -200).Unix(), time.Now().AddDate(0, 0, -1).Unix())

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public/booking/"+expired+"/pdf", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestGateRejectsDraftBookingWith404(t *testing.T) {
	booking := gateBooking()
	booking.Status = domain.StatusDraft
	r, codec, _ := gateFixture(t, booking)
	token := codec.Issue(booking.ID, booking.DepartureDate)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public/booking/"+token+"/pdf", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestGateRejectsTamperedTokenWith404(t *testing.T) {
	booking := gateBooking()
	r, codec, _ := gateFixture(t, booking)
	token := codec.Issue(booking.ID, booking.DepartureDate)
	tampered := token[:len(token)-4] + "AAAA"

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public/booking/"+tampered+"/pdf", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestGatePNGFallsBackToPDFWithoutRasterTool(t *testing.T) {
	booking := gateBooking()
	r, codec, mock := gateFixture(t, booking)
	token := codec.Issue(booking.ID, booking.DepartureDate)
	mock.ExpectExec("view_count=view_count\\+1").WithArgs(booking.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	// The fixture's converter has no binary configured beyond the default;
	// when pdftoppm is absent the PNG route must still deliver the PDF.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/public/booking/"+token+"/png", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	ct := w.Header().Get("Content-Type")
	if ct != "application/pdf" && ct != "image/png" {
		t.Fatalf("content-type = %q", ct)
	}
}
