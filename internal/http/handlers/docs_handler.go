package handlers

import (
	"net/http"
	"strings"

	"backoffice/internal/document"
	"backoffice/internal/http/middleware"
	"backoffice/internal/services"
	"backoffice/internal/utils"

	"github.com/gin-gonic/gin"
)

// DocsHandler exposes the staff document endpoints. The base service value
// is copied per request so the request id travels into service logs.
type DocsHandler struct {
	Docs services.DocsService
}

func (h DocsHandler) svc(c *gin.Context) services.DocsService {
	s := h.Docs
	s.RequestID = middleware.GetRequestID(c)
	return s
}

func documentKind(c *gin.Context) (document.Kind, bool) {
	kind := c.Param("kind")
	if !document.ValidKind(kind) {
		RespondError(c, http.StatusBadRequest, "unknown document kind", nil)
		return "", false
	}
	return document.Kind(kind), true
}

// GET /api/bookings/:id/documents/:kind/pdf
func (h DocsHandler) GetDocumentPDF(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	kind, ok := documentKind(c)
	if !ok {
		return
	}

	svc := h.svc(c)
	data, filename, err := svc.RenderPDF(id, kind)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if _, err := svc.Archive(data, strings.TrimSuffix(filename, ".pdf"), "pdf"); err != nil {
		utils.LogEvent(svc.RequestID, "docs", "archive_failed", err.Error())
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}

// GET /api/bookings/:id/documents/:kind/png
func (h DocsHandler) GetDocumentPNG(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	kind, ok := documentKind(c)
	if !ok {
		return
	}

	svc := h.svc(c)
	data, filename, err := svc.RenderPNG(c.Request.Context(), id, kind)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	if _, err := svc.Archive(data, strings.TrimSuffix(filename, ".png"), "png"); err != nil {
		utils.LogEvent(svc.RequestID, "docs", "archive_failed", err.Error())
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "image/png", data)
}

// GET /api/booking-lookup/:reference
func (h DocsHandler) GetBookingByReference(c *gin.Context) {
	booking, err := h.Docs.Bookings.GetByReference(c.Param("reference"))
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":                booking.ID,
		"booking_reference": booking.BookingReference,
		"status":            booking.Status,
		"customer_name":     booking.CustomerName,
		"party_name":        booking.PartyName,
		"arrival_date":      utils.FormatDateEN(booking.ArrivalDate),
		"departure_date":    utils.FormatDateEN(booking.DepartureDate),
		"total_pax":         booking.TotalPax(),
		"grand_total":       booking.GrandTotal().StringFixed(2),
		"share_count":       booking.ShareCount,
		"view_count":        booking.ViewCount,
	})
}
