// Package webserver serves the digest archive, newsletter subscriptions,
// and operational endpoints.
package webserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jonesrussell/godigest/internal/config"
	"github.com/jonesrussell/godigest/internal/email"
	"github.com/jonesrussell/godigest/internal/logger"
	"github.com/jonesrussell/godigest/internal/metrics"
	"github.com/jonesrussell/godigest/internal/store"
)

// indexDigestLimit caps how many archive entries the index lists.
const indexDigestLimit = 30

// Server is the digest web server.
type Server struct {
	cfg    *config.Config
	store  *store.Store
	resend *email.ResendClient
	log    logger.Logger
	engine *gin.Engine
}

// New creates a Server. resend may be nil when subscriptions are not
// configured; the subscribe endpoint then answers 503.
func New(cfg *config.Config, st *store.Store, resend *email.ResendClient, log logger.Logger) *Server {
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		cfg:    cfg,
		store:  st,
		resend: resend,
		log:    log,
		engine: gin.New(),
	}
	s.engine.Use(gin.Recovery())
	s.routes()
	return s
}

func (s *Server) routes() {
	s.engine.GET("/", s.handleIndex)
	s.engine.POST("/subscribe", s.handleSubscribe)
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(promhttp.Handler()))
	s.engine.GET("/:date", s.handleDigest)
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Start runs the server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Address,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("web server listening", logger.String("address", s.cfg.Server.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleIndex(c *gin.Context) {
	dates, err := s.store.RecentDigestDates(indexDigestLimit)
	if err != nil {
		s.log.Error("listing digests failed", logger.Error(err))
		c.String(http.StatusInternalServerError, "archive unavailable")
		return
	}

	entries := make([]indexEntry, 0, len(dates))
	for _, d := range dates {
		entries = append(entries, indexEntry{Date: d, Label: formatDate(d)})
	}

	c.Writer.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := indexTmpl.Execute(c.Writer, indexView{
		Name:          s.cfg.Digest.Name,
		Entries:       entries,
		CanSubscribe:  s.resend != nil,
		JustSubscribed: c.Query("subscribed") == "1",
	}); err != nil {
		s.log.Error("rendering index failed", logger.Error(err))
	}
}

func (s *Server) handleSubscribe(c *gin.Context) {
	if s.resend == nil {
		c.String(http.StatusServiceUnavailable, "Subscriptions not configured")
		return
	}

	address := c.PostForm("email")
	if address == "" {
		c.String(http.StatusBadRequest, "email is required")
		return
	}

	if err := s.resend.AddContact(c.Request.Context(), s.cfg.Resend.AudienceID, address); err != nil {
		s.log.Error("subscribe failed", logger.Error(err))
		c.String(http.StatusInternalServerError, "subscription failed")
		return
	}

	c.Redirect(http.StatusSeeOther, "/?subscribed=1")
}

func (s *Server) handleHealth(c *gin.Context) {
	if err := s.store.Ping(); err != nil {
		c.String(http.StatusServiceUnavailable, "db error: %v", err)
		return
	}
	c.String(http.StatusOK, "ok")
}

func (s *Server) handleDigest(c *gin.Context) {
	date := c.Param("date")
	if !isValidDate(date) {
		metrics.DigestsServed.WithLabelValues("bad_request").Inc()
		c.String(http.StatusBadRequest, "Invalid date format")
		return
	}

	html, err := s.store.DigestHTML(date)
	if errors.Is(err, store.ErrDigestNotFound) {
		metrics.DigestsServed.WithLabelValues("not_found").Inc()
		c.String(http.StatusNotFound, "No digest for %s", date)
		return
	}
	if err != nil {
		metrics.DigestsServed.WithLabelValues("error").Inc()
		s.log.Error("loading digest failed", logger.Error(err))
		c.String(http.StatusInternalServerError, "archive unavailable")
		return
	}

	metrics.DigestsServed.WithLabelValues("ok").Inc()
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(html))
}
