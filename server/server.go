// Package server exposes the photo booth over HTTP.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/chaos-io/photobooth/filter"
	"github.com/chaos-io/photobooth/gallery"
	"github.com/chaos-io/photobooth/session"
)

const (
	sessionKey = "session"

	DefaultMaxFramePixels = 4096 * 4096
)

type Server struct {
	sessions  *session.Manager
	gallery   *gallery.Service
	catalog   filter.Catalog
	maxUpload int64
	// Frames larger than this many pixels are rejected before decoding.
	maxFramePixels int

	limiter  *RateLimiter
	metrics  *Metrics
	gatherer prometheus.Gatherer
}

type Option func(*Server)

func WithRateLimiter(l *RateLimiter) Option {
	return func(s *Server) { s.limiter = l }
}

// WithMetrics instruments every route and serves /metrics from g.
func WithMetrics(m *Metrics, g prometheus.Gatherer) Option {
	return func(s *Server) {
		s.metrics = m
		s.gatherer = g
	}
}

func WithMaxUpload(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

func WithMaxFramePixels(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxFramePixels = n
		}
	}
}

func New(sessions *session.Manager, g *gallery.Service, opts ...Option) *Server {
	s := &Server{
		sessions:  sessions,
		gallery:   g,
		catalog:   filter.NewCatalog(),
		maxUpload: 16 << 20,

		maxFramePixels: DefaultMaxFramePixels,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger())
	if s.metrics != nil {
		r.Use(s.metrics.Middleware())
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	if s.limiter != nil {
		api.Use(s.limiter.Middleware())
	}
	api.GET("/catalog", s.getCatalog)
	api.POST("/sessions", s.openSession)

	sess := api.Group("/sessions/:id", s.loadSession)
	sess.GET("", s.getSession)
	sess.DELETE("", s.closeSession)

	sess.PUT("/frame", s.setFrame)
	sess.PUT("/filter", s.setFilter)
	sess.PUT("/adjustments", s.setAdjustments)
	sess.POST("/mirror", s.toggleMirror)

	sess.POST("/video", s.pushFrame)
	sess.PUT("/layout", s.updateLayout)

	sess.POST("/stickers", s.addSticker)
	sess.DELETE("/stickers", s.clearStickers)
	sess.POST("/pointer", s.pointer)

	sess.POST("/capture", s.capture)
	sess.POST("/timer", s.startTimer)
	sess.GET("/timer", s.timerStatus)

	sess.GET("/photos", s.listPhotos)
	sess.POST("/edited/download", s.downloadEdited)
	photo := sess.Group("/photos/:pid", s.loadPhoto)
	photo.GET("", s.getPhoto)
	photo.GET("/download", s.downloadPhoto)
	photo.GET("/thumbnail", s.thumbnail)
	photo.POST("/remove-background", s.removeBackground)
	photo.POST("/telegram", s.sendTelegram)

	return r
}

func (s *Server) Handler() http.Handler {
	return s.Router()
}
