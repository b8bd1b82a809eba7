package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"backoffice/internal/config"
	"backoffice/internal/domain"
	"backoffice/internal/repositories"
	"backoffice/internal/services"
	"backoffice/internal/sharetoken"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gin-gonic/gin"
)

func shareFixture(t *testing.T, booking domain.Booking) (*gin.Engine, sqlmock.Sqlmock) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc := services.ShareService{
		Bookings: repositories.BookingRepository{DB: db},
		Codec:    sharetoken.New("test-secret"),
		Cfg:      config.Env{PublicBaseURL: "http://host"},
		Loader:   func(int64) (domain.Booking, error) { return booking, nil },
	}
	share := ShareHandler{Share: svc}

	r := gin.New()
	r.POST("/api/share/booking/:id/url", share.CreateShareLink)
	r.POST("/api/share/booking/:id/reset-token", share.ResetShareLink)
	return r, mock
}

func TestCreateShareLinkResponseShape(t *testing.T) {
	booking := domain.Booking{
		ID:               10,
		BookingReference: "DCT-2024-001",
		Status:           domain.StatusQuoted,
		DepartureDate:    time.Now().AddDate(0, 0, 30),
	}
	r, mock := shareFixture(t, booking)
	mock.ExpectExec("UPDATE bookings").WithArgs(sqlmock.AnyArg(), int64(10)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/share/booking/10/url", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	for _, key := range []string{"token", "secure_url", "pdf_url", "png_url", "expires_days", "booking_reference", "status"} {
		if _, ok := resp[key]; !ok {
			t.Fatalf("response missing %q: %v", key, resp)
		}
	}
	if resp["status"] != domain.StatusQuoted {
		t.Fatalf("status = %v", resp["status"])
	}
}

func TestCreateShareLinkDraftConflicts(t *testing.T) {
	booking := domain.Booking{ID: 10, Status: domain.StatusDraft}
	r, _ := shareFixture(t, booking)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/share/booking/10/url", nil))

	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}
}

func TestShareLinkBadIDRejected(t *testing.T) {
	r, _ := shareFixture(t, domain.Booking{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/share/booking/abc/url", nil))

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
