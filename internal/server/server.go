package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "tasktracker/docs"
	"tasktracker/internal/auth"
	"tasktracker/internal/cache"
	"tasktracker/internal/config"
	"tasktracker/internal/handler"
	"tasktracker/internal/middleware"
	"tasktracker/internal/service"
)

type Server struct {
	Engine  *gin.Engine
	Handler http.Handler
	Config  *config.Config

	log     *slog.Logger
	closers []func(context.Context) error
}

// Handlers groups everything the router mounts.
type Handlers struct {
	Tasks  *handler.TaskHandler
	Users  *handler.UserHandler
	Health *handler.HealthHandler
}

// Init opens the configured store, wires services and handlers, and builds the router.
// The store pool lives until Run returns.
func Init(ctx context.Context, cfg *config.Config, log *slog.Logger) (*Server, error) {
	st, err := openStores(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	s := &Server{Config: cfg, log: log, closers: []func(context.Context) error{st.close}}

	tokens := auth.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry)
	taskService := service.NewTaskService(st.tasks, log)
	userService := service.NewUserService(st.users, tokens, log)

	var authLimit gin.HandlerFunc
	if cfg.RedisAddr != "" {
		counter := cache.NewRedisCounter(cfg.RedisAddr)
		if err := counter.Ping(ctx); err != nil {
			log.Warn("redis unreachable, rate limiter will let requests through until it recovers", "error", err)
		} else {
			log.Info("✅ Connected to redis", "addr", cfg.RedisAddr)
		}
		authLimit = middleware.RateLimiter(counter, cfg.RateLimitMaxRequests, cfg.RateLimitWindow, log)
		s.closers = append(s.closers, func(context.Context) error { return counter.Close() })
	}

	s.Engine = NewRouter(log, Handlers{
		Tasks:  handler.NewTaskHandler(taskService, log),
		Users:  handler.NewUserHandler(userService, log),
		Health: handler.NewHealthHandler(st.ping, cfg.DBTimeout),
	}, middleware.JWTAuthMiddleware(tokens), authLimit)

	s.Handler = WithCORS(s.Engine, cfg.CORSAllowedOrigins)

	return s, nil
}

// WithCORS answers preflights for the given origins. Auth travels in the
// Authorization header, so cookies are never allowed cross-origin.
func WithCORS(h http.Handler, origins []string) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	}).Handler(h)
}

// NewRouter mounts the public, rate-limited and authenticated routes. authLimit may be nil.
func NewRouter(log *slog.Logger, h Handlers, authRequired, authLimit gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	// Public routes
	r.GET("/health", h.Health.Health)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	public := r.Group("/")
	if authLimit != nil {
		public.Use(authLimit)
	}
	public.POST("/register", h.Users.Register)
	public.POST("/login", h.Users.Login)

	// Protected routes - require authentication
	authorized := r.Group("/")
	authorized.Use(authRequired)
	{
		authorized.GET("/me", h.Users.Me)

		authorized.GET("/tasks", h.Tasks.List)
		authorized.POST("/tasks", h.Tasks.Create)
		authorized.GET("/tasks/:id", h.Tasks.GetByID)
		authorized.PUT("/tasks/:id", h.Tasks.Update)
		authorized.DELETE("/tasks/:id", h.Tasks.Delete)
	}
	return r
}

func (s *Server) Run() {
	srv := &http.Server{
		Addr:              ":" + s.Config.ServerPort,
		Handler:           s.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		s.log.Info(fmt.Sprintf("🚀 Server running on port %s", s.Config.ServerPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("❌ Failed to listen", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	s.log.Info("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		s.log.Error("❌ Server forced to shutdown", "error", err)
	}
	s.Close(ctx)

	s.log.Info("✅ Server exited properly")
}

// Close releases the store pool and the redis client.
func (s *Server) Close(ctx context.Context) {
	for _, closeFn := range s.closers {
		if err := closeFn(ctx); err != nil {
			s.log.Warn("close failed", "error", err)
		}
	}
	s.closers = nil
}
