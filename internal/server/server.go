package server

import (
	"fmt"
	"net/http"
	"time"

	"swaply/internal/config"
	custommiddleware "swaply/internal/middleware"
	"swaply/internal/service"
	"swaply/internal/session"
	"swaply/internal/store"
	"swaply/internal/transport"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	*http.Server
	config *config.Config
	logger *zap.Logger
	redis  *redis.Client
}

func NewServer(cfg *config.Config, logger *zap.Logger, redisClient *redis.Client, st *store.Store) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(custommiddleware.ErrorHandlingMiddleware(logger))
	router.Use(custommiddleware.LoggingMiddleware(logger))
	router.Use(custommiddleware.CORSMiddleware(nil, cfg.Server.Env == "development"))
	router.Use(custommiddleware.RateLimitMiddleware(redisClient, custommiddleware.RateLimitConfig{
		RequestsPerWindow: cfg.RateLimit.Requests,
		Window:            cfg.RateLimit.Window,
		KeyPrefix:         "rate_limit",
	}, logger))

	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	// Sessions and services
	sessions := session.NewManager(redisClient, cfg.Session.TTL, logger)
	authService := service.NewAuthService()
	cartService := service.NewCartService(st)
	orderService := service.NewOrderService(st, logger)

	requireSession := custommiddleware.RequireSession(sessions, logger)

	// Handlers
	transport.NewAuthHandler(authService, sessions, logger, cfg.Google.ClientID).RegisterRoutes(router)
	transport.NewBookHandler(st, logger).RegisterRoutes(router, requireSession)
	transport.NewCartHandler(cartService, sessions, logger).RegisterRoutes(router, requireSession)
	transport.NewOrderHandler(orderService, sessions, logger).RegisterRoutes(router, requireSession)

	return &Server{
		Server: &http.Server{
			Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
			Handler:      router,
			IdleTimeout:  time.Minute,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
		},
		config: cfg,
		logger: logger,
		redis:  redisClient,
	}
}

func (s *Server) Close() error {
	s.logger.Info("Closing server resources")

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Error("Failed to close redis connection", zap.Error(err))
		}
	}

	s.logger.Sync()
	return nil
}
