// Package model holds the data types shared across the crawl coordination
// layer: results, domain state, configuration and resource statistics.
package model

import (
	"encoding/json"
	"fmt"
	"net/url"
	"time"
)

// CrawlStatus tags the outcome of a single URL fetch.
type CrawlStatus int

const (
	StatusPending CrawlStatus = iota
	StatusInProgress
	StatusSuccess
	StatusFailed
	StatusTimeout
)

// String returns the uppercase variant name used in result JSON.
func (s CrawlStatus) String() string {
	switch s {
	case StatusPending:
		return "PENDING"
	case StatusInProgress:
		return "IN_PROGRESS"
	case StatusSuccess:
		return "SUCCESS"
	case StatusFailed:
		return "FAILED"
	case StatusTimeout:
		return "TIMEOUT"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON renders the status as its uppercase variant name.
func (s CrawlStatus) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// UnmarshalJSON parses the uppercase variant name back into a CrawlStatus.
func (s *CrawlStatus) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "PENDING":
		*s = StatusPending
	case "IN_PROGRESS":
		*s = StatusInProgress
	case "SUCCESS":
		*s = StatusSuccess
	case "FAILED":
		*s = StatusFailed
	case "TIMEOUT":
		*s = StatusTimeout
	default:
		return fmt.Errorf("model: unknown crawl status %q", name)
	}
	return nil
}

// CrawlResult is the outcome of fetching a single URL.
type CrawlResult struct {
	URL                string      `json:"url"`
	Status             CrawlStatus `json:"status"`
	InitialHTMLBytes   int         `json:"initial_html_bytes"`
	RenderedHTMLBytes  int         `json:"rendered_html_bytes"`
	Error              string      `json:"error,omitempty"`
	ElapsedSec         float64     `json:"elapsed_sec"`
}

// DomainState tracks the pending queue and cooldown clock for one domain.
type DomainState struct {
	Domain      string
	LastCrawlTS time.Time
	Pending     []string
}

// ResourceStats is a point-in-time snapshot of host CPU/memory pressure.
type ResourceStats struct {
	CPUPercent     float64
	MemPercent     float64
	MemAvailableMB float64
}

// CrawlerConfig holds the tunables for the coordination layer.
type CrawlerConfig struct {
	DomainDelaySec float64 `mapstructure:"domain_delay_sec" yaml:"domain_delay_sec"`
	PageTimeoutSec float64 `mapstructure:"page_timeout_sec" yaml:"page_timeout_sec"`
	CPUThreshold   float64 `mapstructure:"cpu_threshold"    yaml:"cpu_threshold"`
	MemThreshold   float64 `mapstructure:"mem_threshold"    yaml:"mem_threshold"`
	MinMemAvailMB  float64 `mapstructure:"min_mem_avail_mb" yaml:"min_mem_avail_mb"`
}

// DefaultCrawlerConfig returns the documented defaults from the spec.
func DefaultCrawlerConfig() CrawlerConfig {
	return CrawlerConfig{
		DomainDelaySec: 60.0,
		PageTimeoutSec: 60.0,
		CPUThreshold:   80.0,
		MemThreshold:   80.0,
		MinMemAvailMB:  512.0,
	}
}

// Domain extracts the authority component of a URL, falling back to the
// raw string when it cannot be parsed as a URL with a host.
func Domain(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return rawURL
	}
	return u.Host
}

// FetchError wraps an underlying browser/navigation error with a hint
// about whether the caller may retry the operation. No package in this
// module constructs one: per-URL failures are always reported as a plain
// CrawlResult, and the browser supervisor classifies failures by their
// message text.
type FetchError struct {
	URL       string
	Err       error
	Retryable bool
}

func (e *FetchError) Error() string {
	return e.URL + ": " + e.Err.Error()
}

func (e *FetchError) Unwrap() error { return e.Err }
