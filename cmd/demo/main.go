// Command demo runs a small HTTP service comparing cached and uncached
// read paths. The "database" is a fixed-latency loader resolving a
// hard-coded record, and /compute is a synthetic busy-loop. Run several
// instances behind a load balancer to compare throughput; process
// supervision and restarts belong to the platform, not this binary.
//
// Configuration (12-factor env):
//
//	PORT              listen port (default 8080)
//	PROVIDER          memory | redis | lru | none (default memory; none = caching disabled)
//	REDIS             redis address (default localhost:6379)
//	CACHE_TTL_SECONDS per-entry TTL (default 60)
//	CACHE_SIZE        lru capacity (default 1024)
//	DB_LATENCY_MS     simulated database latency (default 100)
package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/unkn0wn-root/asidecache"
	"github.com/unkn0wn-root/asidecache/codec"
	zaplog "github.com/unkn0wn-root/asidecache/log/zap"
	pr "github.com/unkn0wn-root/asidecache/provider"
	lruprov "github.com/unkn0wn-root/asidecache/provider/lru"
	memprov "github.com/unkn0wn-root/asidecache/provider/memory"
	redisprov "github.com/unkn0wn-root/asidecache/provider/redis"
)

type config struct {
	port      string
	provider  string
	redisAddr string
	ttl       time.Duration
	cacheSize int
	dbLatency time.Duration
}

func loadConfig(log *zap.Logger) config {
	cfg := config{
		port:      "8080",
		provider:  "memory",
		redisAddr: "localhost:6379",
		ttl:       60 * time.Second,
		cacheSize: 1024,
		dbLatency: 100 * time.Millisecond,
	}

	if v := os.Getenv("PORT"); v != "" {
		if _, err := strconv.Atoi(v); err != nil {
			log.Warn("invalid PORT, using default", zap.String("value", v), zap.String("default", cfg.port))
		} else {
			cfg.port = v
		}
	}
	switch v := os.Getenv("PROVIDER"); v {
	case "":
	case "memory", "redis", "lru", "none":
		cfg.provider = v
	default:
		log.Warn("invalid PROVIDER, using default", zap.String("value", v), zap.String("default", cfg.provider))
	}
	if v := os.Getenv("REDIS"); v != "" {
		cfg.redisAddr = v
	}
	if v := os.Getenv("CACHE_TTL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err != nil || n <= 0 {
			log.Warn("invalid CACHE_TTL_SECONDS, using default", zap.String("value", v))
		} else {
			cfg.ttl = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("CACHE_SIZE"); v != "" {
		if n, err := strconv.Atoi(v); err != nil || n <= 0 {
			log.Warn("invalid CACHE_SIZE, using default", zap.String("value", v))
		} else {
			cfg.cacheSize = n
		}
	}
	if v := os.Getenv("DB_LATENCY_MS"); v != "" {
		if n, err := strconv.Atoi(v); err != nil || n < 0 {
			log.Warn("invalid DB_LATENCY_MS, using default", zap.String("value", v))
		} else {
			cfg.dbLatency = time.Duration(n) * time.Millisecond
		}
	}
	return cfg
}

func newProvider(cfg config) (pr.Provider, bool, error) {
	switch cfg.provider {
	case "redis":
		client := goredis.NewClient(&goredis.Options{Addr: cfg.redisAddr})
		p, err := redisprov.New(redisprov.Config{Client: client, CloseClient: true})
		return p, false, err
	case "lru":
		p, err := lruprov.New(lruprov.Config{Size: cfg.cacheSize})
		return p, false, err
	case "none":
		// disabled accessor: every request goes straight to the loader
		return memprov.New(memprov.Config{}), true, nil
	default:
		return memprov.New(memprov.Config{SweepInterval: time.Minute}), false, nil
	}
}

type user struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type server struct {
	log       *zap.Logger
	cache     asidecache.Cache[user]
	ttl       time.Duration
	dbLatency time.Duration
}

// loadUser stands in for the database: a timer that resolves a hard-coded
// record. Returns an error for non-positive ids so failure paths are easy
// to exercise from a load generator.
func (s *server) loadUser(id int) asidecache.LoaderFunc[user] {
	return func(ctx context.Context) (user, error) {
		select {
		case <-time.After(s.dbLatency):
		case <-ctx.Done():
			return user{}, ctx.Err()
		}
		if id <= 0 {
			return user{}, errors.New("user not found")
		}
		return user{ID: id, Name: "Ksusha"}, nil
	}
}

func (s *server) handleUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	key := "user:" + strconv.Itoa(id)
	u, src, err := s.cache.Get(r.Context(), key, s.loadUser(id), s.ttl)
	if err != nil {
		s.log.Error("user lookup failed", zap.String("key", key), zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	if src == asidecache.SourceCache {
		w.Header().Set("Cache-Control", "public, max-age="+strconv.Itoa(int(s.ttl.Seconds())))
	}
	writeJSON(w, http.StatusOK, struct {
		user
		Source asidecache.Source `json:"source"`
	}{u, src})
}

// handleCompute burns CPU on purpose; it exists so load tests can compare
// how the deployment behaves under compute pressure vs cached reads.
func (s *server) handleCompute(w http.ResponseWriter, r *http.Request) {
	iterations := 50_000_000
	if v := r.URL.Query().Get("n"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			iterations = n
		}
	}

	var sum uint64
	for i := 0; i < iterations; i++ {
		sum += uint64(i % 7)
	}
	writeJSON(w, http.StatusOK, map[string]any{"result": sum, "iterations": iterations})
}

func (s *server) handleStats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.cache.Stats())
}

func (s *server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func main() {
	log, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	cfg := loadConfig(log)

	prov, disabled, err := newProvider(cfg)
	if err != nil {
		log.Fatal("provider init failed", zap.String("provider", cfg.provider), zap.Error(err))
	}

	cache, err := asidecache.New[user](asidecache.Options[user]{
		Namespace:  "user",
		Provider:   prov,
		Codec:      codec.JSON[user]{},
		Logger:     zaplog.ZapLogger{L: log},
		DefaultTTL: cfg.ttl,
		Disabled:   disabled,
	})
	if err != nil {
		log.Fatal("cache init failed", zap.Error(err))
	}

	srv := &server{log: log, cache: cache, ttl: cfg.ttl, dbLatency: cfg.dbLatency}

	r := mux.NewRouter()
	r.HandleFunc("/users/{id}", srv.handleUser).Methods(http.MethodGet)
	r.HandleFunc("/compute", srv.handleCompute).Methods(http.MethodGet)
	r.HandleFunc("/stats", srv.handleStats).Methods(http.MethodGet)
	r.HandleFunc("/healthz", srv.handleHealth).Methods(http.MethodGet)

	httpSrv := &http.Server{
		Addr:         ":" + cfg.port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("listening",
			zap.String("port", cfg.port),
			zap.String("provider", cfg.provider),
			zap.Duration("ttl", cfg.ttl))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("serve failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	if err := cache.Close(shutdownCtx); err != nil {
		log.Warn("cache close", zap.Error(err))
	}
}
