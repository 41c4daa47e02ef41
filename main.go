package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"evfeed/config"
	"evfeed/eb"
	"evfeed/feed"
	"evfeed/feedws"
	"evfeed/globals"
	"evfeed/ratelim"
	"evfeed/rdx"
	"evfeed/routes"

	"github.com/google/uuid"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "no-referrer")
		w.Header().Set("Permissions-Policy", "geolocation=(), microphone=(), camera=()")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware tags each request with an ID and logs method, path,
// remote address and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)
		ctx := context.WithValue(r.Context(), globals.RequestIDKey, requestID)

		start := time.Now()
		next.ServeHTTP(w, r.WithContext(ctx))
		duration := time.Since(start)
		log.Printf("%s %s %s from %s in %v", requestID[:8], r.Method, r.RequestURI, r.RemoteAddr, duration)
	})
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func setupRouter(h *feed.Handler, hub *feedws.Hub, rateLimiter *ratelim.RateLimiter) *httprouter.Router {
	router := httprouter.New()
	router.GET("/health", Index)

	routes.AddFeedRoutes(router, h, rateLimiter)
	routes.AddFeedSocketRoutes(router, hub)
	routes.AddAdminRoutes(router, h)

	return router
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	globals.JwtSecret = []byte(cfg.JWTSecret)

	port := cfg.Port
	if port == "" {
		port = ":8080"
	} else if port[0] != ':' {
		port = ":" + port
	}

	rdx.Init(cfg.RedisAddr)

	client := eb.NewClient(cfg.APIBase, cfg.APIVersion, cfg.Token, cfg.FetchTimeoutDuration())
	opts := feed.Options{AffiliateCode: cfg.AffiliateCode}
	handler := feed.NewHandler(client, opts, cfg.CacheTTLDuration())

	// live-refresh hub and its background poller
	hub := feedws.NewHub(func(ctx context.Context, org string) (*feed.Result, error) {
		return feed.Build(ctx, client, org, time.Now(), opts)
	})
	refresher := feedws.NewRefresher(hub, cfg.RefreshIntervalDuration(), cfg.FetchTimeoutDuration())
	refresher.Start()

	router := setupRouter(handler, hub, ratelim.NewRateLimiter())

	// apply middleware: CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins: []string{"*"}, // feeds embed anywhere
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler(router)

	chain := loggingMiddleware(securityHeaders(corsHandler))

	server := &http.Server{
		Addr:              port,
		Handler:           chain,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      90 * time.Second, // a cold feed build can wait on the upstream API
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		log.Println("Closing feed sockets...")
		hub.CloseAll()
	})

	go func() {
		log.Printf("Server listening on %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutdown signal received; shutting down gracefully...")
	refresher.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Graceful shutdown failed: %v", err)
	}

	log.Println("Server stopped cleanly")
}
