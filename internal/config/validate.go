package config

import (
	"fmt"
	"net/url"
)

// Validate checks the configuration for invalid values.
func Validate(cfg *Config) error {
	if cfg.Crawler.DomainDelaySec < 0 {
		return fmt.Errorf("domain_delay_sec must be >= 0")
	}
	if cfg.Crawler.PageTimeoutSec <= 0 {
		return fmt.Errorf("page_timeout_sec must be > 0")
	}
	if cfg.Crawler.CPUThreshold <= 0 || cfg.Crawler.CPUThreshold > 100 {
		return fmt.Errorf("cpu_threshold must be in (0, 100], got %v", cfg.Crawler.CPUThreshold)
	}
	if cfg.Crawler.MemThreshold <= 0 || cfg.Crawler.MemThreshold > 100 {
		return fmt.Errorf("mem_threshold must be in (0, 100], got %v", cfg.Crawler.MemThreshold)
	}
	if cfg.Crawler.MinMemAvailMB < 0 {
		return fmt.Errorf("min_mem_avail_mb must be >= 0")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true,
	}
	if !validLogLevels[cfg.Logging.Level] {
		return fmt.Errorf("logging.level must be debug/info/warn/error, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "text" && cfg.Logging.Format != "json" {
		return fmt.Errorf("logging.format must be 'text' or 'json', got %q", cfg.Logging.Format)
	}
	if cfg.Output.ResultFile == "" {
		return fmt.Errorf("output.result_file must not be empty")
	}

	return nil
}

// ValidateURL checks if a URL string is valid for crawling.
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
