// Package httpapi exposes the cache facade as a local JSON API.
package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rcliao/kandang/internal/cache"
	"github.com/rcliao/kandang/internal/gateway"
	"github.com/rcliao/kandang/internal/model"
	"github.com/rcliao/kandang/internal/store"
)

// A Handler serves one route and reports failures as errors; the server
// turns them into status codes.
type Handler func(c *gin.Context) error

// Server routes HTTP requests to the cache facade.
type Server struct {
	engine *gin.Engine
	svc    *cache.Service
	log    *slog.Logger
	now    func() time.Time
}

// New builds the router. gatherer backs /metrics.
func New(svc *cache.Service, log *slog.Logger, gatherer prometheus.Gatherer) *Server {
	engine := gin.New()
	engine.Use(gin.Recovery())

	s := &Server{engine: engine, svc: svc, log: log, now: time.Now}
	engine.Use(s.logRequests)

	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	s.Get("/api/stats", s.stats)
	s.Get("/api/tree", s.tree)
	s.Get("/api/workflow", s.workflow)
	s.Post("/api/refresh", s.refresh)
	s.Delete("/api/cache", s.clear)

	s.Get("/api/:collection", s.list)
	s.Get("/api/:collection/:id", s.get)
	s.Post("/api/:collection", s.create)
	s.Put("/api/:collection/:id", s.update)
	s.Delete("/api/:collection/:id", s.remove)
	return s
}

// Handle mounts h for verb and path.
func (s *Server) Handle(verb, path string, h Handler) {
	s.engine.Handle(verb, path, func(c *gin.Context) {
		if err := h(c); err != nil {
			s.fail(c, err)
		}
	})
}

// Get executes Handle with http method GET.
func (s *Server) Get(path string, h Handler) { s.Handle(http.MethodGet, path, h) }

// Post executes Handle with http method POST.
func (s *Server) Post(path string, h Handler) { s.Handle(http.MethodPost, path, h) }

// Put executes Handle with http method PUT.
func (s *Server) Put(path string, h Handler) { s.Handle(http.MethodPut, path, h) }

// Delete executes Handle with http method DELETE.
func (s *Server) Delete(path string, h Handler) { s.Handle(http.MethodDelete, path, h) }

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.engine.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then drains in-flight
// requests.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s, ReadHeaderTimeout: 10 * time.Second}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	s.log.Debug("request",
		"method", c.Request.Method,
		"path", c.Request.URL.Path,
		"status", c.Writer.Status(),
		"elapsed", time.Since(start),
	)
}

// fail maps domain errors to status codes.
func (s *Server) fail(c *gin.Context, err error) {
	var (
		verr      *model.ValidationError
		remoteErr *gateway.RemoteError
		status    = http.StatusInternalServerError
		body      = gin.H{"error": err.Error()}
	)
	switch {
	case errors.As(err, &verr):
		status = http.StatusBadRequest
		body["field"] = verr.Field
	case errors.Is(err, model.ErrUnknownCollection), errors.Is(err, store.ErrNotFound):
		status = http.StatusNotFound
	case errors.As(err, &remoteErr), errors.Is(err, gateway.ErrNetwork):
		status = http.StatusBadGateway
	case errors.Is(err, errBadRequest):
		status = http.StatusBadRequest
	}
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "path", c.Request.URL.Path, "status", status, "err", err)
	}
	c.AbortWithStatusJSON(status, body)
}
