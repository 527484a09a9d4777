// Package httpapi serves the form catalog and its submissions over HTTP. Every
// resource answers JSON; form, list and detail pages are also available as
// HTML through the vanilla renderer.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/goliatone/go-formcloud/pkg/logging"
	"github.com/goliatone/go-formcloud/pkg/openapi"
	"github.com/goliatone/go-formcloud/pkg/orchestrator"
	"github.com/goliatone/go-formcloud/pkg/renderers/vanilla"
)

// AssetsPath is where the bundled stylesheet is served.
const AssetsPath = "/assets/"

// StylesheetURL is the address of the bundled stylesheet.
const StylesheetURL = AssetsPath + vanilla.StylesheetName

const (
	maxBodyBytes    = 1 << 20
	shutdownTimeout = 5 * time.Second
)

// Server routes HTTP requests to the orchestrator.
type Server struct {
	orch     *orchestrator.Orchestrator
	pages    *vanilla.Renderer
	logger   *zerolog.Logger
	location *time.Location
	contract openapi.Options
	router   chi.Router
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger. Defaults to logging.Default().
func WithLogger(l *zerolog.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithPages sets the renderer for the entry list and detail pages.
func WithPages(pages *vanilla.Renderer) Option {
	return func(s *Server) {
		s.pages = pages
	}
}

// WithLocation sets the time zone of submission dates on HTML pages.
func WithLocation(loc *time.Location) Option {
	return func(s *Server) {
		if loc != nil {
			s.location = loc
		}
	}
}

// WithOpenAPIOptions tunes the exported submission contracts.
func WithOpenAPIOptions(opts openapi.Options) Option {
	return func(s *Server) {
		s.contract = opts
	}
}

// New builds the router.
func New(orch *orchestrator.Orchestrator, opts ...Option) (*Server, error) {
	if orch == nil {
		return nil, errors.New("httpapi: orchestrator is required")
	}
	s := &Server{
		orch:     orch,
		logger:   logging.Default(),
		location: time.Local,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.pages == nil {
		pages, err := vanilla.New(vanilla.WithStylesheet(StylesheetURL))
		if err != nil {
			return nil, fmt.Errorf("httpapi: pages renderer: %w", err)
		}
		s.pages = pages
	}
	s.router = s.routes()
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()
	s.logger.Info().Str("addr", addr).Msg("http server listening")

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("httpapi: listen %s: %w", addr, err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("httpapi: shutdown: %w", err)
		}
		s.logger.Info().Msg("http server stopped")
		return nil
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger))
	r.Use(recovery(s.logger))

	r.Handle(AssetsPath+"*", http.StripPrefix(AssetsPath, http.FileServer(http.FS(vanilla.AssetsFS()))))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/forms", http.StatusFound)
	})

	r.Route("/forms", func(r chi.Router) {
		r.Get("/", s.listForms)
		r.Route("/{formID}", func(r chi.Router) {
			r.Get("/", s.showForm)
			r.Get("/openapi.json", s.formContract)
			r.Get("/submissions", s.listSubmissions)
			r.Post("/submissions", s.createSubmission)
			r.Get("/submissions/{recordID}", s.showSubmission)
			r.Delete("/submissions/{recordID}", s.deleteSubmission)
			r.Post("/submissions/{recordID}/delete", s.deleteSubmission)
		})
	})
	return r
}
