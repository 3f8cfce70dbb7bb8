package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load reads configuration from defaults, an optional config file, and
// RENDERCRAWL_-prefixed environment variables.
// Priority (highest to lowest): env vars > config file > defaults.
// CLI flags are not read here; callers apply them to the returned Config.
func Load(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	v.SetConfigType("yaml")

	setDefaults(v, cfg)

	v.SetEnvPrefix("RENDERCRAWL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("rendercrawl")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return cfg, nil
}

// setDefaults registers default values in viper.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("domain_delay_sec", cfg.Crawler.DomainDelaySec)
	v.SetDefault("page_timeout_sec", cfg.Crawler.PageTimeoutSec)
	v.SetDefault("cpu_threshold", cfg.Crawler.CPUThreshold)
	v.SetDefault("mem_threshold", cfg.Crawler.MemThreshold)
	v.SetDefault("min_mem_avail_mb", cfg.Crawler.MinMemAvailMB)

	v.SetDefault("browser.stealth", cfg.Browser.Stealth)

	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)

	v.SetDefault("output.result_file", cfg.Output.ResultFile)
}
