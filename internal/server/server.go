// Package server sets up the HTTP server, router, and all route definitions.
//
// This is the composition root: every dependency — database, cache, event
// publisher, services, handlers — is constructed and wired here, in one
// place, and injected downward. Nothing in the lower layers reaches for a
// global; the "process-wide singletons" (cache connection, Kafka producer)
// are singletons only because this package creates exactly one of each and
// shares the instance.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/proelevate/backend/internal/auth"
	"github.com/proelevate/backend/internal/cache"
	"github.com/proelevate/backend/internal/config"
	"github.com/proelevate/backend/internal/event"
	"github.com/proelevate/backend/internal/handler"
	"github.com/proelevate/backend/internal/middleware"
	sqliteRepo "github.com/proelevate/backend/internal/repository/sqlite"
	"github.com/proelevate/backend/internal/service"
)

// Server owns the router and every long-lived resource. Start runs until
// shutdown, then closes them in reverse construction order.
type Server struct {
	router *chi.Mux
	config *config.Config
	logger *slog.Logger

	db        *sqliteRepo.DB
	cache     cache.Cache
	publisher event.Publisher
}

// New assembles the full dependency chain:
//
//	sqlite.DB → UserService / LikeService → handlers → routes
//
// The cache backend is Redis when REDIS_ADDR is set, in-memory otherwise;
// the publisher is Kafka when KAFKA_BROKERS is set, a no-op sink otherwise.
func New(cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqliteRepo.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	var c cache.Cache
	if cfg.RedisAddr != "" {
		c, err = cache.NewRedisCache(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("connecting to redis: %w", err)
		}
		logger.Info("cache backend: redis", slog.String("addr", cfg.RedisAddr))
	} else {
		c = cache.NewMemoryCache()
		logger.Warn("REDIS_ADDR not set — using in-memory cache")
	}

	var publisher event.Publisher
	if brokers := cfg.Brokers(); len(brokers) > 0 {
		publisher = event.NewKafkaPublisher(brokers, logger)
		logger.Info("event backend: kafka", slog.Any("brokers", brokers))
	} else {
		publisher = event.NewNopPublisher(logger)
		logger.Warn("KAFKA_BROKERS not set — score events will be dropped")
	}

	s := &Server{
		router:    chi.NewRouter(),
		config:    cfg,
		logger:    logger,
		db:        db,
		cache:     c,
		publisher: publisher,
	}

	s.setupRoutes()

	return s, nil
}

// setupRoutes configures middleware, handlers, and the route table.
//
//	GET    /                              → liveness probe
//	POST   /api1/v1/users/newuser         → create user
//	POST   /api1/v1/users/newusers        → bulk create users
//	GET    /api1/v1/users/getusers        → list users by points desc
//	PATCH  /api1/v1/users/updateUser/{id} → partial update
//	DELETE /api1/v1/users/deleteUser/{id} → delete user
//	POST   /api1/v1/users/userslike/{id}  → increment points (the like path)
//	POST   /api1/v1/auth/refresh          → exchange refresh token (JWT_SECRET set)
func (s *Server) setupRoutes() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))

	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"msg":"ok"}`))
	})

	userService := service.NewUserService(s.db, s.logger)
	likeService := service.NewLikeService(
		s.db, s.cache, s.publisher,
		s.config.KafkaTopic, s.config.CacheTTL,
		s.logger,
	)

	userHandler := handler.NewUserHandler(userService, s.logger)
	likeHandler := handler.NewLikeHandler(likeService, s.logger)

	// Auth is optional: without a JWT_SECRET the API runs open and the
	// refresh endpoint isn't registered.
	var tokens *auth.TokenService
	if s.config.JWTSecret != "" {
		var err error
		tokens, err = auth.NewTokenService(s.config.JWTSecret)
		if err != nil {
			// Config validation already bounds the secret length; this
			// only fires if that check and this one disagree.
			s.logger.Error("invalid JWT secret", slog.String("error", err.Error()))
			tokens = nil
		}
	} else {
		s.logger.Warn("JWT_SECRET not set — authentication is disabled")
	}

	s.router.Route("/api1/v1/users", func(r chi.Router) {
		if tokens != nil {
			r.Use(auth.OptionalAuth(tokens))
		}
		r.Post("/newuser", userHandler.HandleCreate)
		r.Post("/newusers", userHandler.HandleCreateBulk)
		r.Get("/getusers", userHandler.HandleList)
		r.Patch("/updateUser/{id}", userHandler.HandleUpdate)
		r.Delete("/deleteUser/{id}", userHandler.HandleDelete)
		r.Post("/userslike/{id}", likeHandler.HandleLike)
	})

	if tokens != nil {
		verifier := auth.NewRefreshVerifier(tokens, s.cache)
		authHandler := handler.NewAuthHandler(tokens, verifier, s.logger)
		s.router.Route("/api1/v1/auth", func(r chi.Router) {
			r.Post("/refresh", authHandler.HandleRefresh)
		})
	}
}

// Start runs the HTTP server until SIGINT/SIGTERM, then shuts down
// gracefully: stop accepting connections, give in-flight requests 30
// seconds, then release the publisher, cache, and database.
func (s *Server) Start() error {
	defer s.db.Close()
	defer s.cache.Close()
	defer s.publisher.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("database", s.config.DBPath),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}

// Router exposes the configured router for tests.
func (s *Server) Router() http.Handler {
	return s.router
}
