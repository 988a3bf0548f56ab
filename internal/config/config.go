package config

import (
	"time"
)

// Version is set at build time via ldflags.
var Version = "dev"

// Config is the root configuration for NewsDentist.
type Config struct {
	Search  SearchConfig  `mapstructure:"search"  yaml:"search"`
	Article ArticleConfig `mapstructure:"article" yaml:"article"`
	Harvest HarvestConfig `mapstructure:"harvest" yaml:"harvest"`
	Fetcher FetcherConfig `mapstructure:"fetcher" yaml:"fetcher"`
	Storage StorageConfig `mapstructure:"storage" yaml:"storage"`
	Logging LoggingConfig `mapstructure:"logging" yaml:"logging"`
	Metrics MetricsConfig `mapstructure:"metrics" yaml:"metrics"`
}

// SearchConfig controls the news search endpoint and the "search" identity.
type SearchConfig struct {
	Endpoint          string        `mapstructure:"endpoint"            yaml:"endpoint"`
	Language          string        `mapstructure:"language"            yaml:"language"`
	Region            string        `mapstructure:"region"              yaml:"region"`
	UserAgent         string        `mapstructure:"user_agent"          yaml:"user_agent"`
	Timeout           time.Duration `mapstructure:"timeout"             yaml:"timeout"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
}

// ArticleConfig controls article downloads and the "download" identity.
type ArticleConfig struct {
	UserAgent    string        `mapstructure:"user_agent"     yaml:"user_agent"`
	Timeout      time.Duration `mapstructure:"timeout"        yaml:"timeout"`
	Extractor    string        `mapstructure:"extractor"      yaml:"extractor"` // text_nodes, readability
	MinLineWords int           `mapstructure:"min_line_words" yaml:"min_line_words"`
}

// HarvestConfig controls pagination depth and the article worker pool.
type HarvestConfig struct {
	Concurrency int `mapstructure:"concurrency" yaml:"concurrency"`
	PageDepth   int `mapstructure:"page_depth"  yaml:"page_depth"`
}

// FetcherConfig controls the request fetcher used for article pages.
type FetcherConfig struct {
	Type            string        `mapstructure:"type"              yaml:"type"`
	FollowRedirects bool          `mapstructure:"follow_redirects"  yaml:"follow_redirects"`
	MaxRedirects    int           `mapstructure:"max_redirects"     yaml:"max_redirects"`
	MaxBodySize     int64         `mapstructure:"max_body_size"     yaml:"max_body_size"`
	TLSInsecure     bool          `mapstructure:"tls_insecure"      yaml:"tls_insecure"`
	IdleConnTimeout time.Duration `mapstructure:"idle_conn_timeout" yaml:"idle_conn_timeout"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    yaml:"max_idle_conns"`
}

// StorageConfig controls where result artifacts are written.
type StorageConfig struct {
	Type            string `mapstructure:"type"             yaml:"type"`
	OutputPath      string `mapstructure:"output_path"      yaml:"output_path"`
	MongoURI        string `mapstructure:"mongo_uri"        yaml:"mongo_uri"`
	MongoDatabase   string `mapstructure:"mongo_database"   yaml:"mongo_database"`
	MongoCollection string `mapstructure:"mongo_collection" yaml:"mongo_collection"`
}

// LoggingConfig controls logging behavior.
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// MetricsConfig controls the Prometheus metrics endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Port    int    `mapstructure:"port"    yaml:"port"`
	Path    string `mapstructure:"path"    yaml:"path"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Search: SearchConfig{
			Endpoint:          "https://www.google.com/search",
			Language:          "en-GB",
			Region:            "uk",
			UserAgent:         "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Timeout:           10 * time.Second,
			RequestsPerMinute: 30,
		},
		Article: ArticleConfig{
			UserAgent:    "Mozilla/5.0 (compatible; NewsDentist/" + Version + "; +https://github.com/IshaanNene/NewsDentist)",
			Timeout:      5 * time.Second,
			Extractor:    "text_nodes",
			MinLineWords: 20,
		},
		Harvest: HarvestConfig{
			Concurrency: 20,
			PageDepth:   1,
		},
		Fetcher: FetcherConfig{
			Type:            "http",
			FollowRedirects: true,
			MaxRedirects:    10,
			MaxBodySize:     10 * 1024 * 1024, // 10MB
			IdleConnTimeout: 90 * time.Second,
			MaxIdleConns:    100,
		},
		Storage: StorageConfig{
			Type:            "file",
			OutputPath:      "./static/teeth",
			MongoDatabase:   "newsdentist",
			MongoCollection: "artifacts",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}
