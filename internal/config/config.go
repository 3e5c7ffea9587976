package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
	// MigrationsDir overrides where goose looks for migration files.
	MigrationsDir string `yaml:"migrationsDir"`
}

type RedisConfig struct {
	URL string `yaml:"url"`
}

type AuthConfig struct {
	Enabled         bool   `yaml:"enabled"`
	InitialAdminKey string `yaml:"initialAdminKey"`
}

type RateLimitConfig struct {
	DefaultPerMinute int `yaml:"defaultPerMinute"`
}

// WorkerConfig controls the job driver: how many jobs may run at once
// in one process and how long a worker may hold a job before its lease
// is considered abandoned.
type WorkerConfig struct {
	ID                string `yaml:"id"`
	MaxConcurrentJobs int    `yaml:"maxConcurrentJobs"`
	PollIntervalMs    int    `yaml:"pollIntervalMs"`
	LeaseTTLMs        int    `yaml:"leaseTtlMs"`
}

// ActorConfig carries the opaque, platform-specific submission
// parameters for one scraping actor. Params is passed through to the
// provider untouched alongside the target URL and result limit.
type ActorConfig struct {
	ID string `yaml:"id"`
	// URLKey and URLFormat control how the target URL is injected into
	// the input document ("list", "objectList", or "string").
	URLKey    string `yaml:"urlKey"`
	URLFormat string `yaml:"urlFormat"`
	// LimitKey is the actor's name for the result-count cap.
	LimitKey string         `yaml:"limitKey"`
	Params   map[string]any `yaml:"params"`
}

// ApifyConfig configures the pay-per-use headless scraping provider.
type ApifyConfig struct {
	BaseURL string                 `yaml:"baseURL"`
	Token   string                 `yaml:"token"`
	Actors  map[string]ActorConfig `yaml:"actors"`
}

// ClusterConfig configures the self-hosted browser-automation cluster,
// which speaks the same submit/poll/abort contract.
type ClusterConfig struct {
	BaseURL string                 `yaml:"baseURL"`
	Token   string                 `yaml:"token"`
	Actors  map[string]ActorConfig `yaml:"actors"`
}

// ProvidersConfig selects and configures the scraping providers.
type ProvidersConfig struct {
	Default       string        `yaml:"default"`
	PollIntervalS int           `yaml:"pollIntervalSeconds"`
	PollBudgetS   int           `yaml:"pollBudgetSeconds"`
	Apify         ApifyConfig   `yaml:"apify"`
	Cluster       ClusterConfig `yaml:"cluster"`
}

// JobTTLConfig controls retention for terminal jobs in days.
type JobTTLConfig struct {
	DefaultDays   int `yaml:"defaultDays"`
	CompletedDays int `yaml:"completedDays"`
	FailedDays    int `yaml:"failedDays"`
	CancelledDays int `yaml:"cancelledDays"`
}

// RetentionConfig controls TTL-like deletion of old jobs and their raw
// results so the database does not grow without bound. Normalized posts
// and comments are never deleted here.
type RetentionConfig struct {
	Enabled                bool         `yaml:"enabled"`
	CleanupIntervalMinutes int          `yaml:"cleanupIntervalMinutes"`
	Jobs                   JobTTLConfig `yaml:"jobs"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	RateLimit RateLimitConfig `yaml:"ratelimit"`
	Worker    WorkerConfig    `yaml:"worker"`
	Providers ProvidersConfig `yaml:"providers"`
	Retention RetentionConfig `yaml:"retention"`
}

// Load reads the YAML config file and applies environment overrides for
// secrets. A .env file next to the process is honored when present so
// local development does not need exported variables.
func Load(path string) *Config {
	_ = godotenv.Load()

	f, err := os.Open(path)
	if err != nil {
		log.Fatalf("failed to open config file: %v", err)
	}
	defer f.Close()

	var cfg Config
	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		log.Fatalf("failed to decode config: %v", err)
	}

	if dsn := os.Getenv("SOCIOGRAPH_DB_DSN"); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if u := os.Getenv("SOCIOGRAPH_REDIS_URL"); u != "" {
		cfg.Redis.URL = u
	}
	if tok := os.Getenv("APIFY_TOKEN"); tok != "" {
		cfg.Providers.Apify.Token = tok
	}
	if tok := os.Getenv("BROWSER_CLUSTER_TOKEN"); tok != "" {
		cfg.Providers.Cluster.Token = tok
	}

	return &cfg
}
