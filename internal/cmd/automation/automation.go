// Package automation parses automation command flags and launches the
// automation runtime.
package automation

import (
	"context"
	"flag"
	"time"

	entrypoint "github.com/louisbranch/tournament.archive/internal/platform/cmd"
	automationapp "github.com/louisbranch/tournament.archive/internal/services/automation/app"
)

// Config holds automation command configuration.
type Config struct {
	Port          int           `env:"TOURNAMENT_ARCHIVE_AUTOMATION_PORT" envDefault:"8095"`
	DBPath        string        `env:"TOURNAMENT_ARCHIVE_AUTOMATION_DB_PATH" envDefault:"data/automation.db"`
	Consumer      string        `env:"TOURNAMENT_ARCHIVE_AUTOMATION_CONSUMER" envDefault:"automation-worker"`
	PollInterval  time.Duration `env:"TOURNAMENT_ARCHIVE_AUTOMATION_POLL_INTERVAL" envDefault:"2s"`
	LeaseTTL      time.Duration `env:"TOURNAMENT_ARCHIVE_AUTOMATION_LEASE_TTL" envDefault:"1m"`
	MaxAttempts   int           `env:"TOURNAMENT_ARCHIVE_AUTOMATION_MAX_ATTEMPTS" envDefault:"8"`
	RetryBackoff  time.Duration `env:"TOURNAMENT_ARCHIVE_AUTOMATION_RETRY_BACKOFF" envDefault:"1s"`
	RetryMaxDelay time.Duration `env:"TOURNAMENT_ARCHIVE_AUTOMATION_RETRY_MAX_DELAY" envDefault:"5m"`
	RedisAddr     string        `env:"TOURNAMENT_ARCHIVE_AUTOMATION_REDIS_ADDR"`
	RedisPassword string        `env:"TOURNAMENT_ARCHIVE_AUTOMATION_REDIS_PASSWORD"`
	RedisDB       int           `env:"TOURNAMENT_ARCHIVE_AUTOMATION_REDIS_DB" envDefault:"0"`
	PendingTTL    time.Duration `env:"TOURNAMENT_ARCHIVE_AUTOMATION_PENDING_TTL" envDefault:"10m"`
	EventStream   string        `env:"TOURNAMENT_ARCHIVE_AUTOMATION_EVENT_STREAM" envDefault:"tournament-archive.automation"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The automation health gRPC server port")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "The automation SQLite database path")
	fs.StringVar(&cfg.Consumer, "consumer", cfg.Consumer, "Automation job consumer name")
	fs.DurationVar(&cfg.PollInterval, "poll-interval", cfg.PollInterval, "Automation job poll interval")
	fs.DurationVar(&cfg.LeaseTTL, "lease-ttl", cfg.LeaseTTL, "Automation job lease duration")
	fs.IntVar(&cfg.MaxAttempts, "max-attempts", cfg.MaxAttempts, "Maximum processing attempts before dead-letter")
	fs.DurationVar(&cfg.RetryBackoff, "retry-backoff", cfg.RetryBackoff, "Base retry backoff delay")
	fs.DurationVar(&cfg.RetryMaxDelay, "retry-max-delay", cfg.RetryMaxDelay, "Maximum retry delay")
	fs.StringVar(&cfg.RedisAddr, "redis-addr", cfg.RedisAddr, "Redis address for the shared pending guard and event stream")
	fs.StringVar(&cfg.RedisPassword, "redis-password", cfg.RedisPassword, "Redis password")
	fs.IntVar(&cfg.RedisDB, "redis-db", cfg.RedisDB, "Redis database index")
	fs.DurationVar(&cfg.PendingTTL, "pending-ttl", cfg.PendingTTL, "Expiry of a held pending guard")
	fs.StringVar(&cfg.EventStream, "event-stream", cfg.EventStream, "Redis stream receiving automation events")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the automation runtime.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceAutomation, func(ctx context.Context) error {
		return automationapp.Run(ctx, automationapp.RuntimeConfig{
			Port:          cfg.Port,
			DBPath:        cfg.DBPath,
			Consumer:      cfg.Consumer,
			PollInterval:  cfg.PollInterval,
			LeaseTTL:      cfg.LeaseTTL,
			MaxAttempts:   cfg.MaxAttempts,
			RetryBackoff:  cfg.RetryBackoff,
			RetryMaxDelay: cfg.RetryMaxDelay,
			RedisAddr:     cfg.RedisAddr,
			RedisPassword: cfg.RedisPassword,
			RedisDB:       cfg.RedisDB,
			PendingTTL:    cfg.PendingTTL,
			EventStream:   cfg.EventStream,
		})
	})
}
