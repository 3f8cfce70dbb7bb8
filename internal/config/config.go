package config

import (
	"github.com/crawlsmith/rendercrawl/internal/model"
)

// Version is set at build time via ldflags.
var Version = "dev"

// BrowserConfig controls the headless engine.
type BrowserConfig struct {
	Stealth bool `mapstructure:"stealth" yaml:"stealth"`
}

// LoggingConfig holds the configured log level and format. Validate checks
// them; the CLI's logger does not read them (its level comes from --verbose).
type LoggingConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// OutputConfig controls where crawl results are written.
type OutputConfig struct {
	ResultFile string `mapstructure:"result_file" yaml:"result_file"`
}

// Config is the root configuration for rendercrawl.
type Config struct {
	Crawler model.CrawlerConfig `mapstructure:",squash"`
	Browser BrowserConfig       `mapstructure:"browser" yaml:"browser"`
	Logging LoggingConfig       `mapstructure:"logging" yaml:"logging"`
	Output  OutputConfig        `mapstructure:"output"  yaml:"output"`
}

// DefaultConfig returns a Config with the documented defaults.
func DefaultConfig() *Config {
	return &Config{
		Crawler: model.DefaultCrawlerConfig(),
		Browser: BrowserConfig{Stealth: false},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Output:  OutputConfig{ResultFile: "crawl_results.json"},
	}
}
