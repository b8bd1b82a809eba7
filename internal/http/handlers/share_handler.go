package handlers

import (
	"net/http"

	"backoffice/internal/http/middleware"
	"backoffice/internal/services"

	"github.com/gin-gonic/gin"
)

// ShareHandler exposes the staff share-link endpoints.
type ShareHandler struct {
	Share services.ShareService
}

func (h ShareHandler) svc(c *gin.Context) services.ShareService {
	s := h.Share
	s.RequestID = middleware.GetRequestID(c)
	return s
}

// POST /api/share/booking/:id/url
func (h ShareHandler) CreateShareLink(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	link, err := h.svc(c).CreateLink(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

// POST /api/share/booking/:id/reset-token
func (h ShareHandler) ResetShareLink(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	link, err := h.svc(c).ResetLink(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, link)
}
