package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"backoffice/internal/domain"
	"backoffice/internal/http/middleware"
	"backoffice/internal/metrics"
	"backoffice/internal/services"
	"backoffice/internal/sharetoken"
	"backoffice/internal/utils"

	"github.com/gin-gonic/gin"
)

// PublicHandler serves the tokenized share gate. Every rejection, whatever
// the cause, is answered with the same neutral 404 page so a token cannot
// be probed for booking existence.
type PublicHandler struct {
	Share services.ShareService
	Docs  services.DocsService
}

func (h PublicHandler) share(c *gin.Context) services.ShareService {
	s := h.Share
	s.RequestID = middleware.GetRequestID(c)
	return s
}

func (h PublicHandler) docs(c *gin.Context) services.DocsService {
	s := h.Docs
	s.RequestID = middleware.GetRequestID(c)
	return s
}

const unavailablePage = `<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Document Unavailable</title>
<style>body{font-family:sans-serif;text-align:center;padding-top:8em;color:#374151}</style></head>
<body><h1>Document Unavailable</h1>
<p>This link is invalid or has expired. Please contact your travel consultant for a new link.</p>
</body></html>`

func rejectReason(err error) string {
	switch {
	case errors.Is(err, sharetoken.ErrMalformedToken):
		return "malformed"
	case errors.Is(err, sharetoken.ErrBadSignature):
		return "bad_signature"
	case errors.Is(err, sharetoken.ErrExpired):
		return "expired"
	case errors.Is(err, domain.ErrBookingNotShareable):
		return "not_shareable"
	case domain.IsNotFound(err):
		return "not_found"
	}
	return "other"
}

func (h PublicHandler) reject(c *gin.Context, err error) {
	metrics.Reject(rejectReason(err))
	utils.LogEvent(middleware.GetRequestID(c), "public", "gate_reject",
		fmt.Sprintf("reason=%s", rejectReason(err)))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusNotFound, "text/html; charset=utf-8", []byte(unavailablePage))
}

func (h PublicHandler) resolve(c *gin.Context) (services.DocsService, domain.Booking, bool) {
	booking, err := h.share(c).Resolve(c.Param("token"))
	if err != nil {
		h.reject(c, err)
		return services.DocsService{}, domain.Booking{}, false
	}
	return h.docs(c), booking, true
}

// GET /public/booking/:token
// HTML landing page linking to the PDF and PNG renditions. Views are
// counted when a document is actually delivered.
func (h PublicHandler) ViewDocument(c *gin.Context) {
	_, booking, ok := h.resolve(c)
	if !ok {
		return
	}
	base := "/public/booking/" + c.Param("token")
	page := fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>Booking %s</title>
<style>body{font-family:sans-serif;text-align:center;padding-top:8em;color:#374151}
a{display:inline-block;margin:0 1em;color:#1e40af}</style></head>
<body><h1>Booking %s</h1>
<p><a href="%s/pdf">Open PDF</a><a href="%s/png">Open Image</a></p>
</body></html>`, booking.BookingReference, booking.BookingReference, base, base)
	c.Header("Cache-Control", "private, max-age=60")
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
}

// GET /public/booking/:token/pdf
func (h PublicHandler) ViewPDF(c *gin.Context) {
	docs, booking, ok := h.resolve(c)
	if !ok {
		return
	}
	data, filename, err := docs.RenderForStatus(booking)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	h.share(c).RecordView(booking)
	serveInline(c, "application/pdf", filename, data)
}

// GET /public/booking/:token/png
// Falls back to PDF delivery when rasterization is unavailable.
func (h PublicHandler) ViewPNG(c *gin.Context) {
	docs, booking, ok := h.resolve(c)
	if !ok {
		return
	}
	data, filename, err := docs.RenderForStatus(booking)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	h.share(c).RecordView(booking)

	img, err := docs.Raster.ToPNGAllPages(c.Request.Context(), data)
	if err != nil {
		utils.LogEvent(middleware.GetRequestID(c), "public", "png_fallback_pdf",
			fmt.Sprintf("booking_id=%d err=%v", booking.ID, err))
		serveInline(c, "application/pdf", filename, data)
		return
	}
	metrics.RenderPNG()
	pngName := filename[:len(filename)-len(".pdf")] + ".png"
	serveInline(c, "image/png", pngName, img)
}

// GET /
func Landing(tagline string) gin.HandlerFunc {
	page := fmt.Sprintf(`<!DOCTYPE html>
<html lang="en">
<head><meta charset="utf-8"><title>%s</title>
<style>body{font-family:sans-serif;text-align:center;padding-top:8em;color:#374151}</style></head>
<body><h1>%s</h1><p>Booking document service.</p></body></html>`, tagline, tagline)
	return func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(page))
	}
}

func serveInline(c *gin.Context, contentType, filename string, data []byte) {
	c.Header("Cache-Control", "private, max-age=60")
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}
