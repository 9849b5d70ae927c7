package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"campnest/internal/infra/config"
	"campnest/internal/infra/obs"
)

type BookingHTTP interface {
	Create(c *gin.Context)
	Get(c *gin.Context)
	List(c *gin.Context)
	Cancel(c *gin.Context)
}

type HostBookingHTTP interface {
	List(c *gin.Context)
	ListForSite(c *gin.Context)
	Confirm(c *gin.Context)
	Cancel(c *gin.Context)
	Complete(c *gin.Context)
}

type AvailabilityHTTP interface {
	Calendar(c *gin.Context)
	UnavailableSites(c *gin.Context)
	Block(c *gin.Context)
	Unblock(c *gin.Context)
}

type SiteHTTP interface {
	CreateProperty(c *gin.Context)
	GetProperty(c *gin.Context)
	ListMyProperties(c *gin.Context)
	CreateSite(c *gin.Context)
	GetSite(c *gin.Context)
	ListSites(c *gin.Context)
	Activate(c *gin.Context)
	Suspend(c *gin.Context)
	UpdateTariff(c *gin.Context)
	UpdateCapacity(c *gin.Context)
}

type ReviewHTTP interface {
	Submit(c *gin.Context)
	ListForSite(c *gin.Context)
}

type PaymentHTTP interface {
	Callback(c *gin.Context)
}

type Handlers struct {
	Booking        BookingHTTP
	HostBooking    HostBookingHTTP
	Availability   AvailabilityHTTP
	Site           SiteHTTP
	Review         ReviewHTTP
	Payment        PaymentHTTP
	Auth           AuthHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.LoggerMiddleware())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	registerSwaggerRoutes(router)

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Booking != nil {
		api.POST("/bookings", h.Booking.Create)
		api.GET("/bookings", h.Booking.List)
		api.GET("/bookings/:id", h.Booking.Get)
		api.POST("/bookings/:id/cancel", h.Booking.Cancel)
	}
	if h.HostBooking != nil {
		hostGroup := api.Group("/host/bookings")
		hostGroup.GET("", h.HostBooking.List)
		hostGroup.POST("/:id/confirm", h.HostBooking.Confirm)
		hostGroup.POST("/:id/cancel", h.HostBooking.Cancel)
		hostGroup.POST("/:id/complete", h.HostBooking.Complete)
		api.GET("/host/sites/:id/bookings", h.HostBooking.ListForSite)
	}
	if h.Availability != nil {
		api.GET("/sites/unavailable", h.Availability.UnavailableSites)
		api.GET("/sites/:id/calendar", h.Availability.Calendar)
		api.POST("/host/sites/:id/block", h.Availability.Block)
		api.POST("/host/sites/:id/unblock", h.Availability.Unblock)
	}
	if h.Site != nil {
		api.POST("/host/properties", h.Site.CreateProperty)
		api.GET("/host/properties", h.Site.ListMyProperties)
		api.GET("/properties/:id", h.Site.GetProperty)
		api.GET("/properties/:id/sites", h.Site.ListSites)
		api.POST("/host/properties/:id/sites", h.Site.CreateSite)
		api.GET("/sites/:id", h.Site.GetSite)
		api.POST("/host/sites/:id/activate", h.Site.Activate)
		api.POST("/host/sites/:id/suspend", h.Site.Suspend)
		api.PUT("/host/sites/:id/tariff", h.Site.UpdateTariff)
		api.PUT("/host/sites/:id/capacity", h.Site.UpdateCapacity)
	}
	if h.Review != nil {
		api.POST("/bookings/:id/review", h.Review.Submit)
		api.GET("/sites/:id/reviews", h.Review.ListForSite)
	}
	if h.Payment != nil {
		api.POST("/payments/callback", h.Payment.Callback)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
