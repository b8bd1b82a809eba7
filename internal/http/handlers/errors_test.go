package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"backoffice/internal/domain"

	"github.com/gin-gonic/gin"
)

func TestRespondDomainErrorStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	cases := []struct {
		name string
		err  error
		want int
	}{
		{"validation", domain.ValidationError{Field: "kind", Msg: "receipt"}, http.StatusBadRequest},
		{"not_found", domain.NotFoundError{Resource: "booking"}, http.StatusNotFound},
		{"not_shareable", domain.ErrBookingNotShareable, http.StatusConflict},
		{"fonts_unavailable", domain.ErrFontsUnavailable, http.StatusInternalServerError},
		{"raster", domain.ErrRasterization, http.StatusServiceUnavailable},
		{"other", domain.InternalError{Msg: "boom"}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		r := gin.New()
		r.GET("/x", func(c *gin.Context) { RespondDomainError(c, tc.err) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

		if w.Code != tc.want {
			t.Fatalf("%s: status = %d, want %d", tc.name, w.Code, tc.want)
		}
		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: bad json: %v", tc.name, err)
		}
		if success, ok := body["success"]; !ok || success != false {
			t.Fatalf("%s: success flag = %v", tc.name, body["success"])
		}
	}
}
