// Package config manages environment variables.
//
// It reads variables from the process environment (optionally seeded from a
// `.env` file), loads them into structured Go types, and validates that
// required values are present so they can be reused across the application
// runtime.
//
// Responsibilities:
//   - Load environment variables with the FPLSYNC_ prefix.
//   - Map env vars into the Config struct via koanf dot-notation keys
//     (e.g. FPLSYNC_DATABASE.HOST -> database.host -> Config.Database.Host).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide defaults for the optional sync tuning block.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: loads a `.env` file into the process env, if one
	// exists, before any env vars are read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog"
)

// Config is the root configuration object for the application.
//
// The `koanf:"..."` tags specify where koanf should map values from.
// The `validate:"required"` tags are enforced by go-playground/validator.
//
// Sync is a pointer because every field in it has a sane default; a nil block
// is replaced by DefaultSyncConfig at load time.
type Config struct {
	Primary  Primary        `koanf:"primary" validate:"required"`
	Server   ServerConfig   `koanf:"server" validate:"required"`
	Database DatabaseConfig `koanf:"database" validate:"required"`
	Redis    RedisConfig    `koanf:"redis" validate:"required"`
	Upstream UpstreamConfig `koanf:"upstream" validate:"required"`
	Sync     *SyncConfig    `koanf:"sync"`
}

// Primary holds top-level information about the runtime environment and the
// active season. The season is part of every cache key, so it lives here
// rather than in per-entity config.
type Primary struct {
	Env    string `koanf:"env" validate:"required"`
	Season string `koanf:"season" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
// Timeouts are stored as integer seconds in the environment.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password" validate:"required"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

// RedisConfig contains Redis connection details.
// Address is "host:port". The same instance backs both the cache gateways and
// the asynq job queue.
type RedisConfig struct {
	Address string `koanf:"address" validate:"required"`
}

// UpstreamConfig points at the external sports-statistics API.
type UpstreamConfig struct {
	BaseURL string `koanf:"base_url" validate:"required"`
	// TimeoutSeconds bounds a single HTTP request to the upstream API.
	TimeoutSeconds int `koanf:"timeout_seconds" validate:"required"`
	// RequestsPerSecond caps the outbound request rate across all workers.
	RequestsPerSecond float64 `koanf:"requests_per_second" validate:"required"`
}

// SyncConfig tunes the synchronization core: job retry policy, worker-pool
// sizes, and cache TTLs. All durations are integer seconds in the env.
type SyncConfig struct {
	// MaxRetry is the attempt ceiling for a failed sync job. After MaxRetry
	// additional attempts the job is marked failed and not resurrected.
	MaxRetry int `koanf:"max_retry"`

	// RetryBaseDelay and RetryMaxDelay bound the exponential backoff curve
	// between attempts: delay(n) = min(base * 2^n, max).
	RetryBaseDelaySeconds int `koanf:"retry_base_delay_seconds"`
	RetryMaxDelaySeconds  int `koanf:"retry_max_delay_seconds"`

	// WorkerConcurrency is the asynq worker-pool size.
	WorkerConcurrency int `koanf:"worker_concurrency"`

	// FanOutLimit caps how many per-scope sync operations a single fan-out
	// job runs at once (e.g. per-entry picks during a tournament resync).
	FanOutLimit int `koanf:"fan_out_limit"`

	// TTLs, in seconds, per cache family. Zero means no expiry; invalidation
	// then happens only through explicit resync.
	StaticTTLSeconds int `koanf:"static_ttl_seconds"` // teams, players, events
	LiveTTLSeconds   int `koanf:"live_ttl_seconds"`   // in-play stats
	EntryTTLSeconds  int `koanf:"entry_ttl_seconds"`  // tournament entries/picks

	// CronSpec drives the periodic coordinator sync. Empty disables cron.
	CronSpec string `koanf:"cron_spec"`

	// FailedJobRetentionSeconds is how long a completed/failed task id stays
	// tracked (and therefore deduplicates re-enqueues) before going stale.
	FailedJobRetentionSeconds int `koanf:"failed_job_retention_seconds"`
}

// DefaultSyncConfig returns the tuning used when no sync block is configured.
func DefaultSyncConfig() *SyncConfig {
	return &SyncConfig{
		MaxRetry:                  3,
		RetryBaseDelaySeconds:     2,
		RetryMaxDelaySeconds:      120,
		WorkerConcurrency:         10,
		FanOutLimit:               5,
		StaticTTLSeconds:          3600,
		LiveTTLSeconds:            60,
		EntryTTLSeconds:           900,
		CronSpec:                  "",
		FailedJobRetentionSeconds: 600,
	}
}

// RetryBaseDelay reports the backoff base as a time.Duration.
func (s *SyncConfig) RetryBaseDelay() time.Duration {
	return time.Duration(s.RetryBaseDelaySeconds) * time.Second
}

// RetryMaxDelay reports the backoff cap as a time.Duration.
func (s *SyncConfig) RetryMaxDelay() time.Duration {
	return time.Duration(s.RetryMaxDelaySeconds) * time.Second
}

// StaticTTL reports the static-entity TTL as a time.Duration.
func (s *SyncConfig) StaticTTL() time.Duration {
	return time.Duration(s.StaticTTLSeconds) * time.Second
}

// LiveTTL reports the live-stats TTL as a time.Duration.
func (s *SyncConfig) LiveTTL() time.Duration {
	return time.Duration(s.LiveTTLSeconds) * time.Second
}

// EntryTTL reports the tournament-entry TTL as a time.Duration.
func (s *SyncConfig) EntryTTL() time.Duration {
	return time.Duration(s.EntryTTLSeconds) * time.Second
}

// FailedJobRetention reports the task-id retention window as a time.Duration.
func (s *SyncConfig) FailedJobRetention() time.Duration {
	return time.Duration(s.FailedJobRetentionSeconds) * time.Second
}

// New loads configuration from environment variables, unmarshals it into
// Config, validates it, applies sync defaults, and returns the result.
//
// Flow:
//   - Load env vars with prefix FPLSYNC_
//   - Convert env keys into koanf keys using "." nesting
//   - Unmarshal into Config
//   - Validate required config blocks/fields
//   - Inject DefaultSyncConfig if the sync block is missing
//
// Any load/validation failure logs fatally: a process with bad config should
// not come up half-working.
func New() (*Config, error) {
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	// "." is the key-path delimiter koanf uses to represent nesting,
	// e.g. "database.host" means Config.Database.Host.
	k := koanf.New(".")

	err := k.Load(env.Provider("FPLSYNC_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "FPLSYNC_"))
	}), nil)
	if err != nil {
		logger.Fatal().Err(err).Msg("Could not load initial env variables.")
	}

	mainConfig := &Config{}

	if err = k.Unmarshal("", mainConfig); err != nil {
		logger.Fatal().Err(err).Msg("Could not unmarshal main config.")
	}

	validate := validator.New()
	if err = validate.Struct(mainConfig); err != nil {
		logger.Fatal().Err(err).Msg("Config validation failed.")
	}

	if mainConfig.Sync == nil {
		mainConfig.Sync = DefaultSyncConfig()
	}

	return mainConfig, nil
}
