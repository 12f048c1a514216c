package configs

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// FileConfig defines the structure loaded from the optional YAML
// configuration file. Environment variables override anything set here.
type FileConfig struct {
	APIBaseURL       string   `yaml:"api_base_url"`
	DocsAllowedHosts []string `yaml:"docs_allowed_hosts"`
}

// Config holds the final application configuration, merged from file and
// environment variables. Fields are loaded from environment variables with
// the prefix "SLACKLISTS_"; the envconfig names below also resolve without
// the prefix, so the conventional SLACK_BOT_TOKEN works as-is.
type Config struct {
	// Config file path (loaded first from env; empty means no file).
	ConfigFilePath string `envconfig:"CONFIG_FILE"`

	SlackBotToken   string `envconfig:"SLACK_BOT_TOKEN" required:"true"`
	SlackAPIBaseURL string `envconfig:"SLACK_API_BASE_URL"`

	// File-loaded fields (merged).
	DocsAllowedHosts []string

	ListenAddr               string        `envconfig:"LISTEN_ADDR" default:":8080"`
	HTTPClientTimeout        time.Duration `envconfig:"HTTP_CLIENT_TIMEOUT" default:"30s"`
	ShutdownTimeout          time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`
	OtelExporterOtlpEndpoint string        `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OtelExporterOtlpInsecure bool          `envconfig:"OTEL_EXPORTER_OTLP_INSECURE" default:"true"`
	LogLevel                 string        `envconfig:"LOG_LEVEL" default:"info"`
}

// ParsedLogLevel returns the slog.Level based on the configured LogLevel string.
func (c *Config) ParsedLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "info":
		fallthrough
	default:
		return slog.LevelInfo
	}
}

// Load loads configuration first from environment variables (to get the file
// path), then from the YAML file when one is specified, and finally processes
// environment variables again so they override file settings.
func Load() (*Config, error) {
	var initialCfg Config
	if err := envconfig.Process("slacklists", &initialCfg); err != nil {
		return nil, fmt.Errorf("failed to process initial environment variables: %w", err)
	}

	fileCfg := FileConfig{}
	if initialCfg.ConfigFilePath != "" {
		yamlFile, err := os.ReadFile(initialCfg.ConfigFilePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file '%s': %w", initialCfg.ConfigFilePath, err)
		}
		if err := yaml.Unmarshal(yamlFile, &fileCfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config file '%s': %w", initialCfg.ConfigFilePath, err)
		}
		slog.Info("Loaded configuration from file.", "path", initialCfg.ConfigFilePath)
	}

	finalCfg := initialCfg
	if fileCfg.APIBaseURL != "" && finalCfg.SlackAPIBaseURL == "" {
		finalCfg.SlackAPIBaseURL = fileCfg.APIBaseURL
	}
	finalCfg.DocsAllowedHosts = fileCfg.DocsAllowedHosts

	// Process environment variables again to allow overrides over file settings.
	if err := envconfig.Process("slacklists", &finalCfg); err != nil {
		return nil, fmt.Errorf("failed to process overriding environment variables: %w", err)
	}

	return &finalCfg, nil
}
