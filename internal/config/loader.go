package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	defaultBaseURL = "https://api.langflow.astra.datastax.com"
	defaultPort    = "8080"

	defaultTimeoutMS    = 120000
	defaultMaxRetries   = 2
	defaultRetryDelayMS = 30000
)

// Load reads config.yaml (when present), layers environment variables on top,
// and returns the validated immutable configuration.
func Load() (*Config, error) {
	loadEnvFile()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../../configs")
	v.AddConfigPath(".")

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg Config
	// Sentinel distinguishes "never configured" from an explicit zero, which
	// is a valid setting (single attempt, no retries).
	cfg.Flow.MaxRetries = -1
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	overrideFromEnv(&cfg)
	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// loadEnvFile loads the nearest .env so the server works the same whether it
// is launched from the repo root or a package directory.
func loadEnvFile() {
	for _, path := range []string{".env", "../.env", "../../.env"} {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Load(path); err == nil {
				return
			}
		}
	}
}

// overrideFromEnv maps the well-known flat environment variables onto the
// config, taking precedence over anything read from config.yaml.
func overrideFromEnv(cfg *Config) {
	setString := func(dst *string, key string) {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			*dst = val
		}
	}
	setInt := func(dst *int, key string) {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			if parsed, err := strconv.Atoi(val); err == nil && parsed > 0 {
				*dst = parsed
			}
		}
	}
	setNonNegInt := func(dst *int, key string) {
		if val := strings.TrimSpace(os.Getenv(key)); val != "" {
			if parsed, err := strconv.Atoi(val); err == nil && parsed >= 0 {
				*dst = parsed
			}
		}
	}

	setString(&cfg.Server.Port, "PORT")
	setString(&cfg.Flow.Provider, "FLOW_PROVIDER")
	setString(&cfg.Flow.BaseURL, "LANGFLOW_BASE_URL")
	setString(&cfg.Flow.LangflowID, "LANGFLOW_ID")
	setString(&cfg.Flow.FlowID, "FLOW_ID")
	setString(&cfg.Flow.Token, "APPLICATION_TOKEN")
	setInt(&cfg.Flow.Timeout, "FLOW_TIMEOUT_MS")
	setNonNegInt(&cfg.Flow.MaxRetries, "FLOW_MAX_RETRIES")
	setInt(&cfg.Flow.RetryDelay, "FLOW_RETRY_DELAY_MS")
	setString(&cfg.Logging.Level, "LOG_LEVEL")
	setString(&cfg.Logging.Format, "LOG_FORMAT")

	if val := strings.TrimSpace(os.Getenv("FLOW_REQUIRE_PART_NUMBER")); val != "" {
		if parsed, err := strconv.ParseBool(val); err == nil {
			cfg.Flow.RequirePartNumber = parsed
		}
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = defaultPort
	}
	if cfg.Flow.Provider == "" {
		cfg.Flow.Provider = "langflow"
	}
	if cfg.Flow.BaseURL == "" {
		cfg.Flow.BaseURL = defaultBaseURL
	}
	if cfg.Flow.Timeout == 0 {
		cfg.Flow.Timeout = defaultTimeoutMS
	}
	if cfg.Flow.MaxRetries < 0 {
		cfg.Flow.MaxRetries = defaultMaxRetries
	}
	if cfg.Flow.RetryDelay == 0 {
		cfg.Flow.RetryDelay = defaultRetryDelayMS
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}
}

func validate(cfg *Config) error {
	if cfg.Flow.Provider != "langflow" && cfg.Flow.Provider != "mock" {
		return fmt.Errorf("flow.provider must be langflow or mock, got %q", cfg.Flow.Provider)
	}
	if cfg.Flow.Provider == "langflow" {
		if cfg.Flow.LangflowID == "" {
			return fmt.Errorf("flow.langflow_id is required")
		}
		if cfg.Flow.FlowID == "" {
			return fmt.Errorf("flow.flow_id is required")
		}
	}
	return nil
}
