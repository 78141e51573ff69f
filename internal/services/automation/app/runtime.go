package app

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"path/filepath"
	"strings"
	"time"

	automationsqlite "github.com/louisbranch/tournament.archive/internal/services/automation/storage/sqlite"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// RuntimeConfig controls automation startup, dependencies, and loop behavior.
type RuntimeConfig struct {
	Port          int
	DBPath        string
	Consumer      string
	PollInterval  time.Duration
	LeaseTTL      time.Duration
	MaxAttempts   int
	RetryBackoff  time.Duration
	RetryMaxDelay time.Duration
	// RedisAddr enables the shared pending guard and event stream. Without it
	// the guard is in-process and events are dropped.
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	PendingTTL    time.Duration
	EventStream   string
}

const (
	defaultAutomationPort = 8095
	defaultAutomationDB   = "data/automation.db"
	defaultPendingTTL     = 10 * time.Minute
)

// Run starts automation runtime dependencies and the background job loop.
func Run(ctx context.Context, cfg RuntimeConfig) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.Port <= 0 {
		cfg.Port = defaultAutomationPort
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = defaultAutomationDB
	}
	if cfg.PendingTTL <= 0 {
		cfg.PendingTTL = defaultPendingTTL
	}

	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create automation storage dir: %w", err)
		}
	}

	store, err := automationsqlite.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("open automation sqlite store: %w", err)
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			log.Printf("close automation sqlite store: %v", closeErr)
		}
	}()

	var guard PendingGuard = NewMemoryGuard()
	var publisher EventPublisher = nopPublisher{}
	if addr := strings.TrimSpace(cfg.RedisAddr); addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		defer func() {
			if closeErr := redisClient.Close(); closeErr != nil {
				log.Printf("close redis client: %v", closeErr)
			}
		}()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("connect to redis at %s: %w", addr, err)
		}
		guard = NewRedisGuard(redisClient, "", cfg.PendingTTL)
		publisher = NewStreamPublisher(redisClient, cfg.EventStream)
		log.Printf("using redis at %s for pending guard and events", addr)
	}

	processor := NewProcessor(store, guard, publisher)
	loop := New(store, store, processor, Config{
		Consumer:      cfg.Consumer,
		PollInterval:  cfg.PollInterval,
		LeaseTTL:      cfg.LeaseTTL,
		MaxAttempts:   cfg.MaxAttempts,
		RetryBackoff:  cfg.RetryBackoff,
		RetryMaxDelay: cfg.RetryMaxDelay,
	})

	listener, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.Port))
	if err != nil {
		return fmt.Errorf("listen on automation port %d: %w", cfg.Port, err)
	}
	defer listener.Close()

	grpcServer := grpc.NewServer(grpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus("automation.runtime", grpc_health_v1.HealthCheckResponse_SERVING)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- grpcServer.Serve(listener)
	}()
	defer func() {
		healthServer.Shutdown()
		grpcServer.GracefulStop()
		<-serveErr
	}()

	log.Printf("automation server listening at %v", listener.Addr())
	return loop.Run(ctx)
}
