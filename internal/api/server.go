package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/justinas/alice"
	"github.com/rs/cors"
	"github.com/wgomg/aura/internal/config"
	"github.com/wgomg/aura/internal/utils"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	logger  *utils.Logger
	cfg     *config.AppConfig
	handler *Handler
}

func NewServer(logger *utils.Logger, cfg *config.AppConfig, handler *Handler) *Server {
	return &Server{logger: logger, cfg: cfg, handler: handler}
}

// Routes returns the router wrapped in the middleware chain.
func (s *Server) Routes() http.Handler {
	router := httprouter.New()
	RegisterRoutes(router, s.handler)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", headerRequestID},
		ExposedHeaders: []string{headerRequestID, headerMatchMethod, headerMatchScore},
		MaxAge:         300,
	})

	timeout := time.Duration(s.cfg.HttpTimeoutSeconds) * time.Second

	return alice.New(
		corsHandler.Handler,
		Recover(s.logger),
		RequestID,
		Heartbeat("/healthz"),
		Logger(s.logger),
		RateLimit(s.cfg.RateLimitRPS, s.cfg.RateLimitBurst),
		Timeout(timeout),
	).Then(router)
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	timeout := time.Duration(s.cfg.HttpTimeoutSeconds) * time.Second

	srv := &http.Server{
		Addr:              "0.0.0.0:" + s.cfg.ServerPort,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout + 5*time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info(nil, "Starting server on port %s", s.cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info(nil, "Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
