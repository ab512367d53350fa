// Package httpapi exposes the YaMDB REST API under /api/v1.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/yamdb/internal/logging"
	"github.com/dmitrijs2005/yamdb/internal/server/permissions"
	"github.com/dmitrijs2005/yamdb/internal/server/services"
	"github.com/gorilla/mux"
)

const (
	apiPrefix       = "/api/v1"
	shutdownTimeout = 5 * time.Second
	// reqBodySizeLimit caps request bodies; every payload is small JSON.
	reqBodySizeLimit = 1 << 20
)

// Services bundles what the handlers call into.
type Services struct {
	Auth    *services.AuthService
	Users   *services.UserService
	Catalog *services.CatalogService
	Reviews *services.ReviewService
}

type Server struct {
	address   string
	router    *mux.Router
	logger    logging.Logger
	svc       Services
	evaluator *permissions.Evaluator
	pageSize  int
}

func NewServer(address string, l logging.Logger, svc Services, e *permissions.Evaluator) *Server {
	s := &Server{
		address:   address,
		logger:    l.With("module", "http_server"),
		svc:       svc,
		evaluator: e,
		pageSize:  defaultPageSize,
	}
	s.setupRoutes()
	return s
}

// Handler returns the fully wired router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.address,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error(ctx, "http shutdown", "error", err)
		}
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", s.address)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
