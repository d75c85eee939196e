package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// HTTPServer runs the API. Only the inbound side has timeouts; handlers
// wait on storage and the image host for as long as they take.
type HTTPServer struct {
	httpServer *http.Server
	log        *zap.Logger
}

func NewHTTPServer(addr string, handler http.Handler, log *zap.Logger) HTTPServer {
	s := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return HTTPServer{httpServer: s, log: log}
}

// Run blocks until the server stops and then calls stopFn.
func (s HTTPServer) Run(stopFn context.CancelFunc) {
	defer stopFn()
	s.log.Info("http server listening", zap.String("addr", s.httpServer.Addr))
	err := s.httpServer.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.log.Error("unexpected server shutdown", zap.Error(err))
	}
}

func (s HTTPServer) Close(ctx context.Context) {
	s.log.Info("closing http server...")
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.log.Error("failed to shutdown gracefully", zap.Error(err))
		return
	}
	s.log.Info("http server is closed")
}
