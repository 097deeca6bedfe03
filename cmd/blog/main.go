package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	authhttp "blogspace/internal/auth/http"
	authservice "blogspace/internal/auth/service"
	"blogspace/internal/common/config"
	commoncrypto "blogspace/internal/common/crypto"
	"blogspace/internal/common/db"
	commonhttp "blogspace/internal/common/http"
	"blogspace/internal/common/jwtverify"
	"blogspace/internal/common/logger"
	srv "blogspace/internal/common/server"
	"blogspace/internal/events"
	posthttp "blogspace/internal/post/http"
	postrepo "blogspace/internal/post/repository"
	postservice "blogspace/internal/post/service"
	userrepo "blogspace/internal/user/repository"
	"blogspace/internal/web"
)

func main() {
	log, err := logger.New(os.Getenv("LOG_DIR"), "blog", os.Getenv("LOG_LEVEL"))
	if err != nil {
		os.Stderr.WriteString(fmt.Sprintf("failed to initialize logger: %v\n", err))
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	pool := db.NewPool(log, cfg.DatabaseURL)
	defer pool.Close()

	if err := db.ApplySchema(context.Background(), pool); err != nil {
		log.Fatalf("failed to apply schema: %v", err)
	}

	usersRepo := userrepo.NewPgRepository(pool)
	postsRepo := postrepo.NewPgRepository(pool)
	hasher := &commoncrypto.BcryptHasher{}
	idGenerator := commoncrypto.NewUUIDGenerator()

	authService := authservice.NewAuthService(
		usersRepo,
		hasher,
		idGenerator,
		cfg.JWTSecret,
		cfg.TokenTTL,
		log,
	)

	hub := events.NewHub(log)
	postService := postservice.NewPostService(postsRepo, idGenerator, hub, log)

	verify := jwtverify.Middleware(cfg.JWTSecret, log)

	mux := http.NewServeMux()
	mux.Handle("/api/auth/", authhttp.NewHandler(authService, cfg, log))
	postsHandler := posthttp.NewHandler(postService, verify, cfg, log)
	mux.Handle("/api/posts", postsHandler)
	mux.Handle("/api/posts/", postsHandler)
	mux.Handle("/api/events", hub.Handler())
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/health", commonhttp.HealthHandler(log))
	mux.Handle("/", web.Handler())

	authRateLimiter := commonhttp.NewAuthRateLimiter()
	baseHandler := commonhttp.BuildBaseHandler(log, mux)

	rateLimitMiddleware := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if !strings.HasPrefix(path, "/api/auth/") {
				next.ServeHTTP(w, r)
				return
			}
			authRateLimiter.MiddlewareForPath(path)(next).ServeHTTP(w, r)
		})
	}

	finalHandler := rateLimitMiddleware(baseHandler)

	serverConfig := srv.DefaultServerConfig(cfg.HTTPPort)
	server := srv.NewServer(serverConfig, finalHandler)

	shutdownHooks := []srv.ShutdownHook{
		func(ctx context.Context) error {
			log.Infof("blog service: closing event hub")
			hub.Close()
			return nil
		},
	}

	srv.StartWithGracefulShutdownAndHooks(server, log, "blog", shutdownHooks)
}
