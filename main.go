package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"agroadmin/apiclient"
	"agroadmin/audit"
	"agroadmin/config"
	"agroadmin/db"
	"agroadmin/ratelim"
	"agroadmin/rdx"
	"agroadmin/routes"
	"agroadmin/session"

	"github.com/julienschmidt/httprouter"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"
	"go.mongodb.org/mongo-driver/mongo"
)

// securityHeaders applies a set of recommended HTTP security headers.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Content-Security-Policy", "frame-ancestors 'none'")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		w.Header().Set("Referrer-Policy", "no-referrer")
		// page state changes on every call
		w.Header().Set("Cache-Control", "no-store, no-cache, must-revalidate, private")
		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs each request method, path, remote address, and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Printf("%s %s from %s - %v", r.Method, r.RequestURI, r.RemoteAddr, time.Since(start))
	})
}

// sessionStore uses Redis when it is configured and reachable, memory otherwise.
func sessionStore(cfg config.Config) (session.Store, *redis.Client) {
	if cfg.RedisAddr == "" {
		log.Println("[main] REDIS_ADDR not set; sessions are kept in memory")
		return session.NewMemoryStore(), nil
	}
	conn, err := rdx.Connect(cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Printf("[main] %v; sessions are kept in memory", err)
		return session.NewMemoryStore(), nil
	}
	log.Printf("[main] sessions stored in Redis at %s", cfg.RedisAddr)
	return session.NewRedisStore(conn), conn
}

// auditRecorder writes to MongoDB when MONGO_URI is set, to the log otherwise.
func auditRecorder(ctx context.Context, cfg config.Config) (audit.Recorder, *mongo.Client) {
	if cfg.MongoURI == "" {
		return audit.LogRecorder{}, nil
	}
	client, err := db.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Printf("[main] %v; audit entries go to the log", err)
		return audit.LogRecorder{}, nil
	}
	return audit.NewMongoRecorder(db.AuditCollection(client, cfg.MongoDB)), client
}

func main() {
	cfg := config.Load()

	store, redisConn := sessionStore(cfg)
	sessions := session.NewManager(store, cfg.JWTSecret, cfg.SessionTTL)
	recorder, mongoClient := auditRecorder(context.Background(), cfg)

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go sessions.RunSweeper(sweepCtx, 5*time.Minute)

	router := httprouter.New()
	routes.RoutesWrapper(router, routes.Deps{
		Config:   cfg,
		API:      apiclient.New(cfg.BackendURL),
		Sessions: sessions,
		Audit:    recorder,
		Limiter:  ratelim.NewRateLimiter(20, 5),
	})

	// CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	handler := loggingMiddleware(securityHeaders(corsHandler))

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           handler,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		stopSweep()
		if redisConn != nil {
			if err := redisConn.Close(); err != nil {
				log.Printf("[main] close redis: %v", err)
			}
		}
		if mongoClient != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := mongoClient.Disconnect(ctx); err != nil {
				log.Printf("[main] disconnect mongo: %v", err)
			}
		}
	})

	go func() {
		log.Printf("agroadmin listening on %s, store API at %s", cfg.Port, cfg.BackendURL)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe error: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutdown signal received; shutting down gracefully...")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Graceful shutdown failed: %v", err)
	}
	log.Println("Server stopped cleanly")
}
