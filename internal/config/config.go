// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	QueueMemory = "memory"
	QueueAMQP   = "amqp"
)

type Config struct {
	HTTPPort int

	DatabaseURL string
	RedisURL    string
	AMQPURL     string
	QueueDriver string

	KafkaBrokers        []string
	KafkaTopicCampaigns string

	CORSOrigins []string

	DemographicsMinSample int
	DemographicsCacheTTL  time.Duration
	CrossRefConcurrency   int

	LogLevel string
}

type configFile struct {
	Server struct {
		HTTPPort    int      `yaml:"http_port"`
		CORSOrigins []string `yaml:"cors_origins"`
		LogLevel    string   `yaml:"log_level"`
	} `yaml:"server"`
	Dependencies struct {
		PostgresURL         string   `yaml:"postgres_url"`
		RedisURL            string   `yaml:"redis_url"`
		AMQPURL             string   `yaml:"amqp_url"`
		QueueDriver         string   `yaml:"queue_driver"`
		KafkaBrokers        []string `yaml:"kafka_brokers"`
		KafkaTopicCampaigns string   `yaml:"kafka_topic_campaigns"`
	} `yaml:"dependencies"`
	Campaigns struct {
		DemographicsMinSample      int `yaml:"demographics_min_sample"`
		DemographicsCacheTTLSecond int `yaml:"demographics_cache_ttl_seconds"`
		CrossRefConcurrency        int `yaml:"crossref_concurrency"`
	} `yaml:"campaigns"`
}

func defaults() Config {
	return Config{
		HTTPPort:              8080,
		QueueDriver:           QueueMemory,
		KafkaTopicCampaigns:   "campaign.events",
		CORSOrigins:           []string{"http://localhost:3000"},
		DemographicsMinSample: 30,
		DemographicsCacheTTL:  5 * time.Minute,
		CrossRefConcurrency:   4,
		LogLevel:              "info",
	}
}

// Load reads .env, then the optional YAML file at path, then the environment.
// Later sources win.
func Load(path string) (Config, error) {
	// .env is optional; OS environment is the fallback
	_ = godotenv.Load()

	cfg := defaults()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := applyFile(&cfg, raw); err != nil {
			return Config{}, err
		}
	}

	cfg.HTTPPort = envInt("HTTP_PORT", envInt("PORT", cfg.HTTPPort))
	cfg.DatabaseURL = envOrDefault("DATABASE_URL", cfg.DatabaseURL)
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = dsnFromParts()
	}
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.AMQPURL = envOrDefault("AMQP_URL", cfg.AMQPURL)
	cfg.QueueDriver = strings.ToLower(envOrDefault("QUEUE_DRIVER", cfg.QueueDriver))
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaTopicCampaigns = envOrDefault("KAFKA_TOPIC_CAMPAIGNS", cfg.KafkaTopicCampaigns)
	cfg.CORSOrigins = envCSV("CORS_ORIGINS", cfg.CORSOrigins)
	cfg.DemographicsMinSample = envInt("DEMOGRAPHICS_MIN_SAMPLE", cfg.DemographicsMinSample)
	cfg.DemographicsCacheTTL = time.Duration(envInt("DEMOGRAPHICS_CACHE_TTL_SECONDS", int(cfg.DemographicsCacheTTL.Seconds()))) * time.Second
	cfg.CrossRefConcurrency = envInt("CROSSREF_CONCURRENCY", cfg.CrossRefConcurrency)
	cfg.LogLevel = envOrDefault("LOG_LEVEL", cfg.LogLevel)

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyFile(cfg *Config, raw []byte) error {
	var f configFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if f.Server.HTTPPort > 0 {
		cfg.HTTPPort = f.Server.HTTPPort
	}
	if len(f.Server.CORSOrigins) > 0 {
		cfg.CORSOrigins = trimNonEmpty(f.Server.CORSOrigins)
	}
	if f.Server.LogLevel != "" {
		cfg.LogLevel = f.Server.LogLevel
	}
	if f.Dependencies.PostgresURL != "" {
		cfg.DatabaseURL = f.Dependencies.PostgresURL
	}
	if f.Dependencies.RedisURL != "" {
		cfg.RedisURL = f.Dependencies.RedisURL
	}
	if f.Dependencies.AMQPURL != "" {
		cfg.AMQPURL = f.Dependencies.AMQPURL
	}
	if f.Dependencies.QueueDriver != "" {
		cfg.QueueDriver = f.Dependencies.QueueDriver
	}
	if len(f.Dependencies.KafkaBrokers) > 0 {
		cfg.KafkaBrokers = trimNonEmpty(f.Dependencies.KafkaBrokers)
	}
	if f.Dependencies.KafkaTopicCampaigns != "" {
		cfg.KafkaTopicCampaigns = f.Dependencies.KafkaTopicCampaigns
	}
	if f.Campaigns.DemographicsMinSample > 0 {
		cfg.DemographicsMinSample = f.Campaigns.DemographicsMinSample
	}
	if f.Campaigns.DemographicsCacheTTLSecond > 0 {
		cfg.DemographicsCacheTTL = time.Duration(f.Campaigns.DemographicsCacheTTLSecond) * time.Second
	}
	if f.Campaigns.CrossRefConcurrency > 0 {
		cfg.CrossRefConcurrency = f.Campaigns.CrossRefConcurrency
	}
	return nil
}

func (c Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("missing DATABASE_URL")
	}
	switch c.QueueDriver {
	case QueueMemory:
	case QueueAMQP:
		if c.AMQPURL == "" {
			return fmt.Errorf("QUEUE_DRIVER=amqp requires AMQP_URL")
		}
	default:
		return fmt.Errorf("unknown QUEUE_DRIVER %q", c.QueueDriver)
	}
	if c.CrossRefConcurrency < 1 {
		return fmt.Errorf("CROSSREF_CONCURRENCY must be positive")
	}
	return nil
}

// dsnFromParts builds a DSN from DB_HOST, DB_NAME and friends.
func dsnFromParts() string {
	host := os.Getenv("DB_HOST")
	name := os.Getenv("DB_NAME")
	if host == "" || name == "" {
		return ""
	}
	port := envOrDefault("DB_PORT", "5432")
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		os.Getenv("DB_USER"), os.Getenv("DB_PASSWORD"), host, port, name,
	)
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envCSV(name string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	return trimNonEmpty(strings.Split(raw, ","))
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
