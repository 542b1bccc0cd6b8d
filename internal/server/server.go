package server

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/titanium/backend/config"
	"github.com/titanium/backend/internal/authclient"
	"github.com/titanium/backend/internal/cache"
	"github.com/titanium/backend/internal/db"
	"github.com/titanium/backend/internal/handlers"
	"github.com/titanium/backend/internal/mq"
	"github.com/titanium/backend/internal/password"
	"github.com/titanium/backend/internal/ratelimit"
	"github.com/titanium/backend/internal/services"
	"github.com/titanium/backend/internal/store"
	"github.com/titanium/backend/internal/token"
	"github.com/titanium/backend/internal/userclient"
)

// Server wraps the HTTP server and router for one of the three services.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	db         *sql.DB
	mq         *mq.MQ
}

func newRouter() *chi.Mux {
	router := chi.NewRouter()
	router.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Recoverer,
		middleware.Logger,
		middleware.Timeout(60*time.Second),
	)
	return router
}

func newRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

func newHTTPServer(cfg config.Config, router *chi.Mux) *http.Server {
	port := cfg.ServerPort
	if port == 0 {
		port = 8080
	}
	return &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

// NewUserServer builds the user service: registration, public profiles and
// credential verification over the users table.
func NewUserServer(ctx context.Context, cfg config.Config) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var userRepo services.UserRepository
	if cfg.Database.Driver == config.DriverPostgres {
		userRepo = store.NewPostgresUserRepository(dbConn)
	} else {
		userRepo = store.NewSQLiteUserRepository(dbConn)
	}

	hasher, err := password.NewHasher(cfg.Password)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}
	userService, err := services.NewUserService(userRepo, hasher)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	rdb := newRedisClient(cfg.Redis)
	userHandler := handlers.NewUserHandler(userService, cache.New(rdb))
	healthHandler := handlers.NewHealthHandler("user-service", dbConn, rdb)

	router := newRouter()
	router.Get("/health", healthHandler.Health)
	router.Get("/stats", healthHandler.Stats)
	router.Route("/users", func(r chi.Router) {
		r.With(ratelimit.PerMinute("users", cfg.Auth.UsersPerMinute, rdb)).
			Post("/", userHandler.Register)
		r.Post("/verify-credentials", userHandler.VerifyCredentials)
		r.Get("/{username}", userHandler.GetUser)
	})

	return &Server{
		httpServer: newHTTPServer(cfg, router),
		router:     router,
		db:         dbConn,
	}, nil
}

// NewAuthServer builds the auth service. It holds the RS256 key pair and
// delegates credential checks to the user service; it never touches the
// database itself.
func NewAuthServer(ctx context.Context, cfg config.Config) (*Server, error) {
	tokens, err := token.NewService(cfg.Auth.PrivateKeyPEM, cfg.Auth.PublicKeyPEM)
	if err != nil {
		return nil, err
	}
	users := userclient.New(cfg.Services)

	rdb := newRedisClient(cfg.Redis)
	authHandler := handlers.NewAuthHandler(tokens, users)
	healthHandler := handlers.NewHealthHandler("auth-service", nil, rdb)

	router := newRouter()
	router.Get("/health", healthHandler.Health)
	router.Get("/stats", healthHandler.Stats)
	router.With(ratelimit.PerMinute("login", cfg.Auth.LoginPerMinute, rdb)).
		Post("/login", authHandler.Login)
	router.With(ratelimit.PerMinute("verify", cfg.Auth.VerifyPerMinute, rdb)).
		Get("/verify", authHandler.Verify)

	return &Server{
		httpServer: newHTTPServer(cfg, router),
		router:     router,
	}, nil
}

// NewBlogServer builds the blog service: posts and categories backed by the
// database, cached in redis, with mutations authenticated through the auth
// service and announced on the message queue when one is configured.
func NewBlogServer(ctx context.Context, cfg config.Config) (*Server, error) {
	dbConn, err := db.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var (
		postRepo     services.PostRepository
		categoryRepo services.CategoryRepository
	)
	if cfg.Database.Driver == config.DriverPostgres {
		postRepo = store.NewPostgresPostRepository(dbConn)
		categoryRepo = store.NewPostgresCategoryRepository(dbConn)
	} else {
		postRepo = store.NewSQLitePostRepository(dbConn)
		categoryRepo = store.NewSQLiteCategoryRepository(dbConn)
	}

	queue, err := mq.FromConfig(ctx, cfg.MQ)
	if err != nil {
		_ = dbConn.Close()
		return nil, err
	}

	rdb := newRedisClient(cfg.Redis)
	postService := services.NewPostService(postRepo, categoryRepo, cache.New(rdb), mq.NewPublisher(queue))
	postHandler := handlers.NewPostHandler(postService, authclient.New(cfg.Services))
	healthHandler := handlers.NewHealthHandler("blog-service", dbConn, rdb).WithPosts(postService)

	router := newRouter()
	router.Get("/health", healthHandler.Health)
	router.Get("/stats", healthHandler.Stats)
	router.Route("/blog/api", func(r chi.Router) {
		r.Get("/posts", postHandler.ListPosts)
		r.Post("/posts", postHandler.CreatePost)
		r.Get("/posts/{postID}", postHandler.GetPost)
		r.Patch("/posts/{postID}", postHandler.UpdatePost)
		r.Delete("/posts/{postID}", postHandler.DeletePost)
		r.Get("/categories", postHandler.ListCategories)
	})

	return &Server{
		httpServer: newHTTPServer(cfg, router),
		router:     router,
		db:         dbConn,
		mq:         queue,
	}, nil
}

// Router exposes the chi router for route registration.
func (s *Server) Router() *chi.Mux {
	return s.router
}

// Start runs the HTTP server.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown.
func (s *Server) Shutdown() error {
	if s.db != nil {
		_ = s.db.Close()
	}
	if s.mq != nil {
		_ = s.mq.Close()
	}
	return s.httpServer.Close()
}
