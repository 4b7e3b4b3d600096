package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"herald/internal/notifier/message"
	"herald/pkg/platform/sentinel"
)

// Config captures process-level settings. Notification directives
// (SLACK_INCLUDE_*) are resolved separately by the policy package.
type Config struct {
	Server   Server   `yaml:"server"`
	Log      Log      `yaml:"log"`
	Database Database `yaml:"database"`
	Kafka    Kafka    `yaml:"kafka"`
	Slack    Slack    `yaml:"slack"`
}

// Server configures the HTTP surface.
type Server struct {
	Addr            string        `yaml:"addr" env:"HERALD_ADDR" env-default:":8080"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HERALD_SHUTDOWN_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"HERALD_WRITE_TIMEOUT" env-default:"5m"`

	// PlatformBaseURL is shown in titles when a batch does not name its host.
	PlatformBaseURL string `yaml:"platform_base_url" env:"HERALD_PLATFORM_BASE_URL" env-default:"http://localhost:8080"`

	// IngestJWTSecret enables bearer-token checks on POST /v1/events.
	IngestJWTSecret   string `yaml:"ingest_jwt_secret" env:"HERALD_INGEST_JWT_SECRET"`
	IngestJWTIssuer   string `yaml:"ingest_jwt_issuer" env:"HERALD_INGEST_JWT_ISSUER"`
	IngestJWTAudience string `yaml:"ingest_jwt_audience" env:"HERALD_INGEST_JWT_AUDIENCE" env-default:"herald-ingest"`
}

type Log struct {
	Level  string `yaml:"level" env:"HERALD_LOG_LEVEL" env-default:"info"`
	Format string `yaml:"format" env:"HERALD_LOG_FORMAT" env-default:"json"`
}

// Database selects Postgres-backed units of work. Empty DSN runs in memory.
type Database struct {
	DSN       string        `yaml:"dsn" env:"HERALD_DATABASE_URL"`
	TxTimeout time.Duration `yaml:"tx_timeout" env:"HERALD_DATABASE_TX_TIMEOUT" env-default:"5s"`
}

// Kafka enables the consumer when Brokers is set.
type Kafka struct {
	Brokers []string `yaml:"brokers" env:"HERALD_KAFKA_BROKERS" env-separator:","`
	Topic   string   `yaml:"topic" env:"HERALD_KAFKA_TOPIC" env-default:"platform-events"`
	Group   string   `yaml:"group" env:"HERALD_KAFKA_GROUP" env-default:"herald"`
}

// Slack configures delivery mechanics. Credentials come from SLACK_TOKEN and
// SLACK_CHANNEL through the policy.
type Slack struct {
	APIURL          string        `yaml:"api_url" env:"SLACK_API_URL"`
	RatePerSecond   int           `yaml:"rate_per_second" env:"SLACK_RATE_PER_SECOND" env-default:"1"`
	DeliveryTimeout time.Duration `yaml:"delivery_timeout" env:"SLACK_DELIVERY_TIMEOUT" env-default:"10s"`
	TimeOffset      string        `yaml:"time_offset" env:"SLACK_TIME_OFFSET" env-default:"Z"`

	// Consecutive outages before deliveries pause, and the pause between trials.
	BreakerThreshold int           `yaml:"breaker_threshold" env:"SLACK_BREAKER_THRESHOLD" env-default:"5"`
	BreakerCooldown  time.Duration `yaml:"breaker_cooldown" env:"SLACK_BREAKER_COOLDOWN" env-default:"30s"`
}

// Load reads configuration from an optional YAML file and the environment.
// Priority: ENV > YAML > defaults. The file path comes from
// HERALD_CONFIG_PATH; without it only ENV and defaults apply.
func Load() (*Config, error) {
	var cfg Config

	if path := os.Getenv("HERALD_CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config: read env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}
	return &cfg, nil
}

// Validate checks values the type system cannot.
func (c *Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server addr is required"))
	}
	if _, err := message.ParseOffset(c.Slack.TimeOffset); err != nil {
		errs = append(errs, fmt.Errorf("slack time offset: %w", err))
	}
	if c.Slack.RatePerSecond < 0 {
		errs = append(errs, errors.New("slack rate per second must not be negative"))
	}
	if len(c.Kafka.Brokers) > 0 && (c.Kafka.Topic == "" || c.Kafka.Group == "") {
		errs = append(errs, errors.New("kafka topic and group are required when brokers are set"))
	}
	switch c.Log.Format {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("log format %q must be json or text", c.Log.Format))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", sentinel.ErrMisconfigured, errors.Join(errs...))
	}
	return nil
}

// Location returns the fixed zone used to render event times.
func (c *Config) Location() *time.Location {
	loc, err := message.ParseOffset(c.Slack.TimeOffset)
	if err != nil {
		return time.UTC
	}
	return loc
}
