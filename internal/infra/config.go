package infra

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds all application configuration parsed from environment variables.
type Config struct {
	// Document database. Empty DATABASE_URL and DOCSTORE_DRIVER=memory keep
	// profiles in process.
	DocstoreDriver string `env:"DOCSTORE_DRIVER" envDefault:"memory"`
	DatabaseURL    string `env:"DATABASE_URL"`
	PGHost         string `env:"PGHOST" envDefault:"localhost"`
	PGPort         int    `env:"PGPORT" envDefault:"5435"`
	PGUser         string `env:"PGUSER" envDefault:"cissero"`
	PGPassword     string `env:"PGPASSWORD" envDefault:"cissero"`
	PGDatabase     string `env:"PGDATABASE" envDefault:"cissero"`

	// Redis balance projection. Empty REDIS_ADDR uses the in-memory store.
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	// JWT
	JWTSecret      string        `env:"JWT_SECRET" envDefault:"change-me-in-production"`
	JWTUserExpiry  time.Duration `env:"JWT_USER_EXPIRY" envDefault:"24h"`
	JWTAdminExpiry time.Duration `env:"JWT_ADMIN_EXPIRY" envDefault:"8h"`

	// Server
	APIPort         int           `env:"API_PORT" envDefault:"3100"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`

	// Kafka
	KafkaBrokers     string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	KafkaEnabled     bool   `env:"KAFKA_ENABLED" envDefault:"false"`
	KafkaConsumerGID string `env:"KAFKA_CONSUMER_GROUP" envDefault:"cissero-event-feed"`

	// CORS
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:"*"`

	// Lifecycle and seed
	JournalCap int    `env:"JOURNAL_CAP" envDefault:"100"`
	SeedPath   string `env:"SEED_PATH"`

	// Rate limits
	ChatRateLimit  int           `env:"CHAT_RATE_LIMIT" envDefault:"5"`
	ChatRateWindow time.Duration `env:"CHAT_RATE_WINDOW" envDefault:"10s"`
	StreamsRate    string        `env:"STREAMS_RATE" envDefault:"60-M"`

	// Streaming provider (Twitch Helix)
	TwitchClientID     string `env:"TWITCH_CLIENT_ID"`
	TwitchClientSecret string `env:"TWITCH_CLIENT_SECRET"`
	TwitchAPIURL       string `env:"TWITCH_API_URL" envDefault:"https://api.twitch.tv/helix"`
	TwitchAuthURL      string `env:"TWITCH_AUTH_URL" envDefault:"https://id.twitch.tv/oauth2/token"`

	// Wallet provider (Solana JSON-RPC)
	SolanaRPCURL string `env:"SOLANA_RPC_URL" envDefault:"https://api.devnet.solana.com"`

	// Dev
	AllowInsecureDefaults bool `env:"ALLOW_INSECURE_DEFAULTS" envDefault:"false"`
}

// LoadConfig reads an optional .env file, then parses environment variables
// into a Config. Variables already set in the environment win over .env.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Validate checks for insecure configuration that must not run in production.
// Set ALLOW_INSECURE_DEFAULTS=true to bypass (local dev only).
func (c *Config) Validate() error {
	switch c.DocstoreDriver {
	case "memory", "postgres":
	default:
		return fmt.Errorf("DOCSTORE_DRIVER must be memory or postgres, got %q", c.DocstoreDriver)
	}
	if c.JournalCap <= 0 {
		return fmt.Errorf("JOURNAL_CAP must be positive, got %d", c.JournalCap)
	}
	if c.AllowInsecureDefaults {
		return nil
	}
	if c.JWTSecret == "change-me-in-production" {
		return fmt.Errorf("JWT_SECRET is set to the insecure default; set a strong secret or set ALLOW_INSECURE_DEFAULTS=true for local dev")
	}
	if len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET is too short (%d chars); minimum 32 characters required", len(c.JWTSecret))
	}
	return nil
}

// DSN returns the PostgreSQL connection string, preferring DATABASE_URL if set.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.PGUser, c.PGPassword, c.PGHost, c.PGPort, c.PGDatabase)
}
