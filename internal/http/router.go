package api

import (
	"log"
	stdhttp "net/http"

	"backoffice/internal/config"
	"backoffice/internal/document"
	"backoffice/internal/fonts"
	h "backoffice/internal/http/handlers"
	"backoffice/internal/http/middleware"
	"backoffice/internal/pdf"
	"backoffice/internal/qrstore"
	"backoffice/internal/raster"
	"backoffice/internal/repositories"
	"backoffice/internal/sanitize"
	"backoffice/internal/services"
	"backoffice/internal/sharetoken"

	"github.com/gin-gonic/gin"
)

// Deps bundles the process-wide components the routes close over.
type Deps struct {
	Env      config.Env
	Fonts    *fonts.Registry
	QR       *qrstore.Store
	Renderer *pdf.Renderer
	Builder  *document.Builder
}

// NewDeps wires the rendering pipeline from config.
func NewDeps(env config.Env) (Deps, error) {
	reg := fonts.NewRegistry(env.FontDirs, true)
	reg.Register()

	qr, err := qrstore.New(env.QRDir, env.QRCacheTTL)
	if err != nil {
		return Deps{}, err
	}

	san := sanitize.New(env.AllowedTags)
	builder := document.NewBuilder(env, san, qr)

	return Deps{
		Env:      env,
		Fonts:    reg,
		QR:       qr,
		Renderer: pdf.NewRenderer(reg, env),
		Builder:  builder,
	}, nil
}

func NewRouter(deps Deps) *gin.Engine {
	env := deps.Env

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS())

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	h.InitAuth(env.SecretKey)

	bookings := repositories.BookingRepository{DB: config.DB}
	docsSvc := services.DocsService{
		Bookings: bookings,
		Builder:  deps.Builder,
		Renderer: deps.Renderer,
		Raster:   raster.New(env.RasterDPI, env.RasterTool),
		Cfg:      env,
	}
	shareSvc := services.ShareService{
		Bookings: bookings,
		Codec:    sharetoken.New(env.SecretKey),
		Cfg:      env,
	}

	docs := h.DocsHandler{Docs: docsSvc}
	share := h.ShareHandler{Share: shareSvc}
	public := h.PublicHandler{Share: shareSvc, Docs: docsSvc}

	// Public surface. No auth; the token in the URL is the credential.
	r.GET("/", h.Landing(env.SystemTagline))
	pub := r.Group("/public/booking")
	{
		pub.GET("/:token", public.ViewDocument)
		pub.GET("/:token/pdf", public.ViewPDF)
		pub.GET("/:token/png", public.ViewPNG)
	}

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck)
		api.GET("/routes", h.Routes)

		auth := api.Group("/auth")
		auth.POST("/login", h.Login)
		auth.POST("/register", h.Register)

		staff := api.Group("", middleware.RequireAuth(env.SecretKey))
		{
			staff.GET("/metrics", h.Metrics)
			staff.GET("/booking-lookup/:reference", docs.GetBookingByReference)
			staff.GET("/bookings/:id/documents/:kind/pdf", docs.GetDocumentPDF)
			staff.GET("/bookings/:id/documents/:kind/png", docs.GetDocumentPNG)
			staff.POST("/share/booking/:id/url", share.CreateShareLink)
			staff.POST("/share/booking/:id/reset-token", share.ResetShareLink)
		}
	}

	h.SetRouter(r)
	return r
}
