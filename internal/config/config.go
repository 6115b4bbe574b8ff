package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultHTTPPort            = 8080
	DefaultCostPerDistanceUnit = 5.0
	DefaultReevaluateInterval  = time.Hour
	DefaultBroadcastInterval   = 5 * time.Second
	DefaultHistory             = 50
)

// dateLayout is the calendar-date format accepted for prediction_date.
const dateLayout = "2006-01-02"

// Config is the top-level windfleet configuration.
// Fields map 1:1 to config.example.yaml.
type Config struct {
	Fleet  FleetConfig  `yaml:"fleet"`
	Server ServerConfig `yaml:"server"`
}

// FleetConfig holds the evaluation tunables and the data source.
type FleetConfig struct {
	// DataFile is the path of the fleet CSV to load.
	DataFile string `yaml:"data_file"`

	// PredictionDate optionally overrides "now" to simulate future wear.
	// Format: YYYY-MM-DD. Empty means evaluate at the current time.
	PredictionDate string `yaml:"prediction_date"`

	// RepairThreshold is the minimum benefit-to-cost ratio that justifies
	// a maintenance trip. Required — there is no canonical default.
	RepairThreshold float64 `yaml:"repair_threshold"`

	// CostPerDistanceUnit converts travel distance to transport cost.
	CostPerDistanceUnit float64 `yaml:"cost_per_distance_unit"`

	// CrewCostPerDay and VesselCostPerDay are site-specific day rates for
	// on-site repair work, charged in whole-day increments.
	CrewCostPerDay   float64 `yaml:"crew_cost_per_day"`
	VesselCostPerDay float64 `yaml:"vessel_cost_per_day"`

	// ReevaluateInterval controls how often the fleet is rescored so wear
	// advances with the clock.
	ReevaluateInterval time.Duration `yaml:"reevaluate_interval"`
}

// PredictionTime parses PredictionDate. The zero time with a nil error
// means no override is configured.
func (f FleetConfig) PredictionTime() (time.Time, error) {
	if f.PredictionDate == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateLayout, f.PredictionDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("prediction_date %q: want YYYY-MM-DD", f.PredictionDate)
	}
	return t, nil
}

// ServerConfig holds the HTTP serving surface settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API and WebSocket hub listen on.
	HTTPPort int `yaml:"http_port"`

	// BroadcastInterval controls how often the WebSocket hub pushes the
	// latest snapshot to connected clients.
	BroadcastInterval time.Duration `yaml:"broadcast_interval"`

	// History is how many evaluation runs the snapshot store retains.
	History int `yaml:"history"`

	// Auth configures REST API authentication.
	Auth AuthConfig `yaml:"auth"`

	// Alerts holds alerting rule and webhook delivery configuration.
	Alerts AlertsConfig `yaml:"alerts"`
}

// AuthConfig configures REST API authentication.
type AuthConfig struct {
	// Mode is one of: apikey | none.
	Mode string `yaml:"mode"`

	// Header is the HTTP header carrying the key. Defaults to X-API-Key.
	Header string `yaml:"header"`

	// KeyEnv is the name of the environment variable holding the expected
	// API key.
	KeyEnv string `yaml:"key_env"`
}

// Key returns the API key resolved from the environment.
// Returns empty string if KeyEnv is unset or the variable is not found.
func (a AuthConfig) Key() string {
	if a.KeyEnv == "" {
		return ""
	}
	return os.Getenv(a.KeyEnv)
}

// EffectiveHeader returns the configured header name or the default.
func (a AuthConfig) EffectiveHeader() string {
	if a.Header == "" {
		return "X-API-Key"
	}
	return a.Header
}

// AlertsConfig holds all alerting rules and webhook targets.
type AlertsConfig struct {
	Rules    []AlertRule     `yaml:"rules"`
	Webhooks []WebhookConfig `yaml:"webhooks"`
}

// AlertRule defines a threshold-based alert condition.
type AlertRule struct {
	// Name is the human-readable alert identifier.
	Name string `yaml:"name"`

	// Condition is an expression like "priority_score >= 0.8" or
	// "worthy_count > 10". Asset-scoped fields fire once per asset.
	Condition string `yaml:"condition"`

	// Severity is one of: critical | warning | info.
	Severity string `yaml:"severity"`

	// Cooldown suppresses re-fires for this duration after an alert fires.
	Cooldown time.Duration `yaml:"cooldown"`
}

// WebhookConfig defines one webhook delivery target.
type WebhookConfig struct {
	// Type is one of: teams | slack | http.
	Type string `yaml:"type"`

	// URLEnv is the name of the environment variable holding the webhook URL.
	URLEnv string `yaml:"url_env"`
}

// URL returns the webhook URL resolved from the environment.
func (w WebhookConfig) URL() string {
	if w.URLEnv == "" {
		return ""
	}
	return os.Getenv(w.URLEnv)
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
// RepairThreshold deliberately has none — the file must set it.
func defaults() *Config {
	return &Config{
		Fleet: FleetConfig{
			CostPerDistanceUnit: DefaultCostPerDistanceUnit,
			ReevaluateInterval:  DefaultReevaluateInterval,
		},
		Server: ServerConfig{
			HTTPPort:          DefaultHTTPPort,
			BroadcastInterval: DefaultBroadcastInterval,
			History:           DefaultHistory,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.Fleet.DataFile == "" {
		return fmt.Errorf("fleet.data_file is required")
	}
	if cfg.Fleet.RepairThreshold <= 0 {
		return fmt.Errorf("fleet.repair_threshold must be set to a positive ratio")
	}
	if cfg.Fleet.CostPerDistanceUnit <= 0 {
		return fmt.Errorf("fleet.cost_per_distance_unit must be positive")
	}
	if cfg.Fleet.CrewCostPerDay < 0 || cfg.Fleet.VesselCostPerDay < 0 {
		return fmt.Errorf("fleet crew/vessel day rates must be non-negative")
	}
	if cfg.Fleet.ReevaluateInterval <= 0 {
		return fmt.Errorf("fleet.reevaluate_interval must be positive")
	}
	if _, err := cfg.Fleet.PredictionTime(); err != nil {
		return err
	}
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port out of range")
	}
	if cfg.Server.BroadcastInterval <= 0 {
		return fmt.Errorf("server.broadcast_interval must be positive")
	}
	if cfg.Server.History <= 0 {
		return fmt.Errorf("server.history must be positive")
	}
	switch cfg.Server.Auth.Mode {
	case "apikey", "none", "":
	default:
		return fmt.Errorf("server.auth: unknown mode %q", cfg.Server.Auth.Mode)
	}
	for i, r := range cfg.Server.Alerts.Rules {
		if r.Name == "" {
			return fmt.Errorf("alerts.rules[%d]: name is required", i)
		}
		if r.Condition == "" {
			return fmt.Errorf("alerts.rules[%d] %q: condition is required", i, r.Name)
		}
	}
	return nil
}
