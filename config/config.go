// Package config reads runtime settings from the environment. A .env file in the working
// directory is loaded first when present.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port              string
	BackendURL        string
	JWTSecret         []byte
	SessionTTL        time.Duration
	RedisAddr         string
	RedisPassword     string
	MongoURI          string
	MongoDB           string
	AllowedOrigins    []string
	RecentOrdersLimit int
	ResetTimeout      time.Duration
	ShutdownTimeout   time.Duration
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoienv(key string, def int) int {
	n, err := strconv.Atoi(getenv(key, ""))
	if err != nil {
		return def
	}
	return n
}

// durenv accepts a Go duration ("90m") or a plain number of seconds.
func durenv(key string, def time.Duration) time.Duration {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if n, err := strconv.Atoi(v); err == nil {
		return time.Duration(n) * time.Second
	}
	return def
}

func listenv(key, def string) []string {
	var out []string
	for _, s := range strings.Split(getenv(key, def), ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Load reads .env (if any) and the environment.
func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found; using system environment")
	}
	return FromEnv()
}

// FromEnv builds a Config from the current environment only.
func FromEnv() Config {
	port := getenv("PORT", ":8080")
	if port[0] != ':' {
		port = ":" + port
	}
	secret := getenv("JWT_SECRET", "")
	if secret == "" {
		log.Println("[config] JWT_SECRET not set; using an insecure development secret")
		secret = "agroadmin-dev-secret"
	}
	return Config{
		Port:              port,
		BackendURL:        strings.TrimRight(getenv("BACKEND_URL", "http://localhost:4000"), "/"),
		JWTSecret:         []byte(secret),
		SessionTTL:        durenv("SESSION_TTL", 12*time.Hour),
		RedisAddr:         getenv("REDIS_ADDR", ""),
		RedisPassword:     getenv("REDIS_PASSWORD", ""),
		MongoURI:          getenv("MONGO_URI", ""),
		MongoDB:           getenv("MONGO_DB", "agroadmin"),
		AllowedOrigins:    listenv("ALLOWED_ORIGINS", "*"),
		RecentOrdersLimit: atoienv("RECENT_ORDERS_LIMIT", 5),
		ResetTimeout:      durenv("RESET_TIMEOUT", 10*time.Second),
		ShutdownTimeout:   durenv("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}
