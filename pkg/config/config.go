package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// FlexibleStringSlice is a []string that also accepts JSON numbers,
// so allow_from can contain both "u1234" and 1234.
type FlexibleStringSlice []string

func (f *FlexibleStringSlice) UnmarshalJSON(data []byte) error {
	// Try []string first
	var ss []string
	if err := json.Unmarshal(data, &ss); err == nil {
		*f = ss
		return nil
	}

	// Try []interface{} to handle mixed types
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	result := make([]string, 0, len(raw))
	for _, v := range raw {
		switch val := v.(type) {
		case string:
			result = append(result, val)
		case float64:
			result = append(result, fmt.Sprintf("%.0f", val))
		default:
			result = append(result, fmt.Sprintf("%v", val))
		}
	}
	*f = result
	return nil
}

type Config struct {
	Line    LineConfig    `json:"line"`
	Gateway GatewayConfig `json:"gateway"`
}

// LineConfig holds the LINE v1 trial bot channel credentials and the wire
// constants stamped onto every outbound event. ChannelSecret is the HMAC
// key material; all three credential fields are immutable once a client is
// constructed from them.
type LineConfig struct {
	ChannelID     string `env:"LINECLAW_LINE_CHANNEL_ID"     json:"channel_id"`
	ChannelSecret string `env:"LINECLAW_LINE_CHANNEL_SECRET" json:"channel_secret"`
	ChannelMID    string `env:"LINECLAW_LINE_CHANNEL_MID"    json:"channel_mid"`

	APIEndpoint string `env:"LINECLAW_LINE_API_ENDPOINT" json:"api_endpoint"`

	// EventChannelID and the event type ids identify the v1 sending
	// channel. The defaults are the platform-published constants.
	EventChannelID     int64  `env:"LINECLAW_LINE_EVENT_CHANNEL_ID"      json:"event_channel_id"`
	SendEventType      string `env:"LINECLAW_LINE_SEND_EVENT_TYPE"       json:"send_event_type"`
	MultiSendEventType string `env:"LINECLAW_LINE_MULTI_SEND_EVENT_TYPE" json:"multi_send_event_type"`

	ConnectTimeoutMS int `env:"LINECLAW_LINE_CONNECT_TIMEOUT_MS" json:"connect_timeout_ms"`
	ReadTimeoutMS    int `env:"LINECLAW_LINE_READ_TIMEOUT_MS"    json:"read_timeout_ms"`

	AllowFrom FlexibleStringSlice `env:"LINECLAW_LINE_ALLOW_FROM" json:"allow_from"`
}

type GatewayConfig struct {
	Host        string `env:"LINECLAW_GATEWAY_HOST"         json:"host"`
	Port        int    `env:"LINECLAW_GATEWAY_PORT"         json:"port"`
	WebhookPath string `env:"LINECLAW_GATEWAY_WEBHOOK_PATH" json:"webhook_path"`
}

const (
	// DefaultAPIEndpoint is the LINE trial bot API base URL.
	DefaultAPIEndpoint = "https://trialbot-api.line.me"

	// DefaultEventChannelID is the fixed toChannel value for v1 sends.
	DefaultEventChannelID int64 = 1383378250

	// DefaultSendEventType tags a single-content send event.
	DefaultSendEventType = "138311608800106203"

	// DefaultMultiSendEventType tags a multi-content send event.
	DefaultMultiSendEventType = "140177271400161403"
)

func DefaultConfig() *Config {
	return &Config{
		Line: LineConfig{
			APIEndpoint:        DefaultAPIEndpoint,
			EventChannelID:     DefaultEventChannelID,
			SendEventType:      DefaultSendEventType,
			MultiSendEventType: DefaultMultiSendEventType,
			ConnectTimeoutMS:   3000,
			ReadTimeoutMS:      3000,
		},
		Gateway: GatewayConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			WebhookPath: "/callback",
		},
	}
}

// LoadConfig reads the JSON config at path and applies LINECLAW_* env
// overrides on top. A missing file yields the defaults (env still applies).
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}
	if err == nil {
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// SaveConfig writes cfg as indented JSON, creating parent directories.
func SaveConfig(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

// Validate checks the wire constants every outbound event depends on.
// Credentials are checked lazily at client construction so read-only
// commands can still run against a partial config.
func (c *Config) Validate() error {
	if c.Line.APIEndpoint == "" {
		return errors.New("line.api_endpoint is required")
	}
	if c.Line.EventChannelID == 0 {
		return errors.New("line.event_channel_id is required")
	}
	if c.Line.SendEventType == "" || c.Line.MultiSendEventType == "" {
		return errors.New("line event type ids are required")
	}
	return nil
}
