package config

import (
	"fmt"
	"net/url"
	"strings"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if err := ValidateURL(cfg.Search.Endpoint); err != nil {
		return fmt.Errorf("search.endpoint: %w", err)
	}
	if cfg.Search.Timeout <= 0 {
		return fmt.Errorf("search.timeout must be > 0")
	}
	if cfg.Search.RequestsPerMinute < 0 {
		return fmt.Errorf("search.requests_per_minute must be >= 0, got %d", cfg.Search.RequestsPerMinute)
	}
	if cfg.Search.UserAgent == "" {
		return fmt.Errorf("search.user_agent must not be empty")
	}

	if cfg.Article.Timeout <= 0 {
		return fmt.Errorf("article.timeout must be > 0")
	}
	if cfg.Article.UserAgent == "" {
		return fmt.Errorf("article.user_agent must not be empty")
	}
	if cfg.Article.UserAgent == cfg.Search.UserAgent {
		return fmt.Errorf("article.user_agent must differ from search.user_agent")
	}
	if cfg.Article.Extractor != "text_nodes" && cfg.Article.Extractor != "readability" {
		return fmt.Errorf("article.extractor must be 'text_nodes' or 'readability', got %q", cfg.Article.Extractor)
	}
	if cfg.Article.MinLineWords < 1 {
		return fmt.Errorf("article.min_line_words must be >= 1, got %d", cfg.Article.MinLineWords)
	}

	if cfg.Harvest.Concurrency < 1 {
		return fmt.Errorf("harvest.concurrency must be >= 1, got %d", cfg.Harvest.Concurrency)
	}
	if cfg.Harvest.Concurrency > 1000 {
		return fmt.Errorf("harvest.concurrency must be <= 1000, got %d", cfg.Harvest.Concurrency)
	}
	if cfg.Harvest.PageDepth < 1 {
		return fmt.Errorf("harvest.page_depth must be >= 1, got %d", cfg.Harvest.PageDepth)
	}

	if cfg.Fetcher.MaxBodySize <= 0 {
		return fmt.Errorf("fetcher.max_body_size must be > 0")
	}
	if cfg.Fetcher.MaxRedirects < 0 {
		return fmt.Errorf("fetcher.max_redirects must be >= 0")
	}
	if cfg.Fetcher.Type != "http" && cfg.Fetcher.Type != "browser" {
		return fmt.Errorf("fetcher.type must be 'http' or 'browser', got %q", cfg.Fetcher.Type)
	}

	switch cfg.Storage.Type {
	case "file":
		if cfg.Storage.OutputPath == "" {
			return fmt.Errorf("storage.output_path must not be empty")
		}
	case "mongodb":
		if cfg.Storage.MongoURI == "" {
			return fmt.Errorf("storage.mongo_uri is required for mongodb storage")
		}
		if cfg.Storage.MongoDatabase == "" || cfg.Storage.MongoCollection == "" {
			return fmt.Errorf("storage.mongo_database and storage.mongo_collection are required for mongodb storage")
		}
	default:
		return fmt.Errorf("storage.type %q is not supported (valid: file, mongodb)", cfg.Storage.Type)
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[strings.ToLower(cfg.Logging.Level)] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if format := strings.ToLower(cfg.Logging.Format); format != "text" && format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}

	if cfg.Metrics.Enabled {
		if cfg.Metrics.Port < 1 || cfg.Metrics.Port > 65535 {
			return fmt.Errorf("metrics.port must be 1-65535, got %d", cfg.Metrics.Port)
		}
	}

	return nil
}

// ValidateURL checks that a URL string is an absolute http(s) URL.
func ValidateURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("URL must have a host")
	}
	return nil
}
