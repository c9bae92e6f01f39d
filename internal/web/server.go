package web

import (
	"context"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/cjeanneret/MotionFocus/internal/debug"
)

// Server wraps the HTTP server and handlers.
type Server struct {
	addr     string
	handlers *Handlers
	engine   *gin.Engine
}

// NewServer creates a server configured for the given address and dependencies.
func NewServer(addr string, broadcaster *StatusBroadcaster, svc FocusService, info SessionInfo) (*Server, error) {
	subFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		return nil, errors.Wrap(err, "sub static fs")
	}

	s := &Server{
		addr:     addr,
		handlers: NewHandlers(broadcaster, svc, info, subFS),
	}
	s.engine = s.routes()
	return s, nil
}

func (s *Server) routes() *gin.Engine {
	if debug.Level() < debug.LevelVerbose {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery(), ginLogger(debug.Logger().WithField("component", "web")))

	engine.GET("/", s.handlers.ServeIndex)
	engine.StaticFS("/static", http.FS(s.handlers.staticFS))
	engine.GET("/config", s.handlers.HandleConfig)
	engine.GET("/status", s.handlers.HandleStatus)
	engine.GET("/status/stream", s.handlers.HandleStatusStream)
	engine.POST("/focus", s.handlers.HandleFocus)

	return engine
}

// Handler returns an http.Handler with all routes registered.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run starts the server and blocks until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.engine}
	errCh := make(chan error, 1)
	go func() {
		debug.With(debug.Fields{"addr": s.addr}).Info("web server listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrapf(err, "listen on %s", s.addr)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
