package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr            string
	LogLevel        string
	ShutdownTimeout time.Duration

	Redis     RedisConfig
	Postgres  PostgresConfig
	Kafka     KafkaConfig
	Narrative NarrativeConfig

	SessionTTL time.Duration
	// RecomputeOnSave replays every domain's inputs before a suite is stored.
	RecomputeOnSave bool
}

// RedisConfig configures the shared result store and narrative cache.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// PostgresConfig configures the relational result store.
type PostgresConfig struct {
	URL          string
	RunsTable    string
	ResultsTable string
	MaxOpenConns int
	MaxIdleConns int
}

// KafkaConfig configures the audit event stream.
type KafkaConfig struct {
	Brokers     []string
	AuditTopic  string
	AuditBuffer int
}

// NarrativeConfig configures profile generation.
type NarrativeConfig struct {
	GeminiAPIKey string
	GeminiModel  string
	LockTTL      time.Duration
	Wait         time.Duration
	Poll         time.Duration
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	return Server{
		Addr:            envString("BIGFIVE_ADDR", ":8080"),
		LogLevel:        envString("LOG_LEVEL", "info"),
		ShutdownTimeout: envDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     envInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: envInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  envDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:  envDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout: envDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		},
		Postgres: PostgresConfig{
			URL:          os.Getenv("DATABASE_URL"),
			RunsTable:    envString("RUNS_TABLE", "gz_runs"),
			ResultsTable: envString("RESULTS_TABLE", "gz_results"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 10),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Kafka: KafkaConfig{
			Brokers:     envList("KAFKA_BROKERS"),
			AuditTopic:  envString("KAFKA_AUDIT_TOPIC", "bigfive.audit"),
			AuditBuffer: envInt("AUDIT_BUFFER", 256),
		},
		Narrative: NarrativeConfig{
			GeminiAPIKey: strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
			GeminiModel:  envString("GEMINI_MODEL", "gemini-2.5-flash-lite"),
			LockTTL:      envDuration("NARRATIVE_LOCK_TTL", 2*time.Minute),
			Wait:         envDuration("NARRATIVE_WAIT", 60*time.Second),
			Poll:         envDuration("NARRATIVE_POLL", 500*time.Millisecond),
		},
		SessionTTL:      envDuration("SESSION_TTL", 2*time.Hour),
		RecomputeOnSave: envBool("RECOMPUTE_ON_SAVE", true),
	}
}

func envString(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key))); err == nil {
		return n
	}
	return def
}

func envBool(key string, def bool) bool {
	if b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(key))); err == nil {
		return b
	}
	return def
}

func envDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key))); err == nil && d > 0 {
		return d
	}
	return def
}

func envList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
