// Package config loads the immutable process configuration for the relay.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the main application configuration struct. It is loaded once at
// startup and passed explicitly into the pipeline components; nothing reads
// configuration ad hoc per request.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Flow    FlowConfig    `mapstructure:"flow"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	RateLimit      int      `mapstructure:"rate_limit_per_minute"`
}

// FlowConfig describes the upstream Langflow deployment and the relay policy
// applied to every call against it.
type FlowConfig struct {
	Provider   string `mapstructure:"provider"` // "langflow" or "mock"
	BaseURL    string `mapstructure:"base_url"`
	LangflowID string `mapstructure:"langflow_id"`
	FlowID     string `mapstructure:"flow_id"`
	Token      string `mapstructure:"token"`

	Timeout    int `mapstructure:"timeout"`     // milliseconds, per attempt
	MaxRetries int `mapstructure:"max_retries"` // extra attempts on 504/timeout
	RetryDelay int `mapstructure:"retry_delay"` // milliseconds between attempts

	RequirePartNumber bool `mapstructure:"require_part_number"`

	// Tweaks is the per-component configuration forwarded verbatim to the
	// workflow engine. Its keyset varies by deployment.
	Tweaks map[string]map[string]any `mapstructure:"tweaks"`
}

func (f FlowConfig) TimeoutDuration() time.Duration {
	return time.Duration(f.Timeout) * time.Millisecond
}

func (f FlowConfig) RetryDelayDuration() time.Duration {
	return time.Duration(f.RetryDelay) * time.Millisecond
}

// RunURL returns the upstream run endpoint for this flow.
func (f FlowConfig) RunURL() string {
	return fmt.Sprintf("%s/lf/%s/api/v1/run/%s?stream=false",
		strings.TrimRight(f.BaseURL, "/"), f.LangflowID, f.FlowID)
}

func (f FlowConfig) HasToken() bool {
	return strings.TrimSpace(f.Token) != ""
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
