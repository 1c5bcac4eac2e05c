package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for campus-engine.
// Configuration can come from YAML file (config.yaml) or environment variables.
// Environment variables always override YAML values for fields that support both.
// Secrets (passwords, API keys) must only come from environment variables.
type Config struct {
	// Server configuration
	BindAddr string `yaml:"bind_addr" env:"BIND_ADDR" env-default:"127.0.0.1"`
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version  string `yaml:"-"` // Set at load time, not from config

	// Database configuration (PostgreSQL)
	Database DatabaseConfig `yaml:"database"`

	// Assistant / LLM agent configuration
	Assistant AssistantConfig `yaml:"assistant"`

	// Crawler configuration
	Crawler CrawlerConfig `yaml:"crawler"`

	// Retrieval configuration
	Retrieval RetrievalConfig `yaml:"retrieval"`
}

// DatabaseConfig holds PostgreSQL database configuration.
type DatabaseConfig struct {
	Host           string `yaml:"host" env:"PGHOST" env-default:"localhost"`
	Port           int    `yaml:"port" env:"PGPORT" env-default:"5432"`
	User           string `yaml:"user" env:"PGUSER" env-default:"campus"`
	Password       string `yaml:"-" env:"PGPASSWORD"` // Secret - not in YAML
	Database       string `yaml:"database" env:"PGDATABASE" env-default:"campus_engine"`
	MaxConnections int32  `yaml:"max_connections" env:"PGMAX_CONNECTIONS" env-default:"25"`
	SSLMode        string `yaml:"ssl_mode" env:"PGSSLMODE" env-default:"disable"`
	MigrationsPath string `yaml:"migrations_path" env:"PGMIGRATIONS_PATH" env-default:"migrations"`
}

// AssistantConfig holds LLM agent and MCP tool-server configuration.
// The API key is a secret and only comes from the environment.
type AssistantConfig struct {
	APIKey       string `yaml:"-" env:"OPENAI_API_KEY"`
	Endpoint     string `yaml:"endpoint" env:"OPENAI_BASE_URL" env-default:"https://api.openai.com/v1"`
	Model        string `yaml:"model" env:"ASSISTANT_MODEL" env-default:"gpt-4o"`
	MCPServerURL string `yaml:"mcp_server_url" env:"MCP_SERVER_URL" env-default:""`
}

// CrawlerConfig holds knowledge-base crawl settings.
type CrawlerConfig struct {
	SeedURL      string `yaml:"seed_url" env:"CRAWL_SEED_URL" env-default:"https://iitpkd.ac.in"`
	MaxDepth     int    `yaml:"max_depth" env:"CRAWL_MAX_DEPTH" env-default:"4"`
	DelayMillis  int    `yaml:"delay_ms" env:"CRAWL_DELAY_MS" env-default:"500"`
	HTTPTimeout  int    `yaml:"http_timeout_seconds" env:"CRAWL_HTTP_TIMEOUT_SECONDS" env-default:"15"`
	PDFTimeout   int    `yaml:"pdf_timeout_seconds" env:"CRAWL_PDF_TIMEOUT_SECONDS" env-default:"30"`
	AllowedHosts string `yaml:"allowed_hosts" env:"CRAWL_ALLOWED_HOSTS" env-default:"iitpkd.ac.in,www.iitpkd.ac.in"`
	ChunkSize    int    `yaml:"chunk_size" env:"CRAWL_CHUNK_SIZE" env-default:"2000"`
}

// RetrievalConfig holds knowledge retrieval tuning.
type RetrievalConfig struct {
	TopK      int     `yaml:"top_k" env:"RETRIEVAL_TOP_K" env-default:"10"`
	Threshold float64 `yaml:"threshold" env:"RETRIEVAL_THRESHOLD" env-default:"0.25"`
}

// Load reads configuration from config.yaml with environment variable overrides.
// The version parameter is injected at build time and set on the returned Config.
// Secrets (PGPASSWORD, OPENAI_API_KEY) must come from environment variables
// (yaml:"-" fields).
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		return nil, fmt.Errorf("failed to read config.yaml: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Crawler.MaxDepth < 0 {
		return fmt.Errorf("crawler max_depth must be >= 0, got %d", c.Crawler.MaxDepth)
	}
	if c.Crawler.ChunkSize <= 0 {
		return fmt.Errorf("crawler chunk_size must be > 0, got %d", c.Crawler.ChunkSize)
	}
	if c.Retrieval.TopK <= 0 {
		return fmt.Errorf("retrieval top_k must be > 0, got %d", c.Retrieval.TopK)
	}
	if c.Retrieval.Threshold < 0 || c.Retrieval.Threshold >= 1 {
		return fmt.Errorf("retrieval threshold must be in [0,1), got %f", c.Retrieval.Threshold)
	}
	return nil
}

// Delay returns the polite delay between sequential fetches.
func (c *CrawlerConfig) Delay() time.Duration {
	return time.Duration(c.DelayMillis) * time.Millisecond
}

// Timeout returns the HTTP fetch timeout.
func (c *CrawlerConfig) Timeout() time.Duration {
	return time.Duration(c.HTTPTimeout) * time.Second
}

// PDFFetchTimeout returns the timeout used for PDF downloads.
func (c *CrawlerConfig) PDFFetchTimeout() time.Duration {
	return time.Duration(c.PDFTimeout) * time.Second
}

// Hosts returns the crawl allow-list as a slice.
func (c *CrawlerConfig) Hosts() []string {
	var hosts []string
	for _, h := range strings.Split(c.AllowedHosts, ",") {
		if h = strings.TrimSpace(h); h != "" {
			hosts = append(hosts, h)
		}
	}
	return hosts
}

// ConnectionString returns a PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}
