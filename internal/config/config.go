package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Auth       AuthConfig       `yaml:"auth"`
	Tailscale  TailscaleConfig  `yaml:"tailscale"`
	Adaptation AdaptationConfig `yaml:"adaptation"`
	Calendar   CalendarConfig   `yaml:"calendar"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"sslmode"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
}

// TailscaleConfig exposes the server on a tailnet instead of a plain
// listener when enabled.
type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// AdaptationConfig carries the decision-engine knobs. Zero values mean
// "use the built-in default"; Normalize fills them in.
type AdaptationConfig struct {
	Thresholds struct {
		Excellent float64 `yaml:"excellent"`
		Good      float64 `yaml:"good"`
		Moderate  float64 `yaml:"moderate"`
		Poor      float64 `yaml:"poor"`
	} `yaml:"thresholds"`

	ACWR struct {
		OptimalMin float64 `yaml:"optimal_min"`
		OptimalMax float64 `yaml:"optimal_max"`
		CautionMax float64 `yaml:"caution_max"`
	} `yaml:"acwr"`

	BaselineHRVMs    float64 `yaml:"baseline_hrv_ms"`
	BaselineRHRBPM   int     `yaml:"baseline_rhr_bpm"`
	KeySessionOffset float64 `yaml:"key_session_offset"`
	LowScoreFallback string  `yaml:"low_score_fallback"` // "cancel" or "replace"
}

// CalendarConfig configures plan-to-calendar export.
type CalendarConfig struct {
	StatePath    string `yaml:"state_path"`    // SQLite sync-state database
	DefaultTime  string `yaml:"default_time"`  // HH:MM fallback for unscheduled sessions
	CalendarName string `yaml:"calendar_name"` // target calendar display name
}

// DSN returns a PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	sslmode := d.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, sslmode)
}

// Load reads config from a YAML file, then applies environment variable overrides.
// Env vars use the prefix STRIDECOACH_ and underscore-separated paths:
//
//	STRIDECOACH_SERVER_HOST, STRIDECOACH_SERVER_PORT,
//	STRIDECOACH_DB_HOST, STRIDECOACH_DB_PORT, STRIDECOACH_DB_NAME,
//	STRIDECOACH_DB_USER, STRIDECOACH_DB_PASSWORD, STRIDECOACH_DB_SSLMODE,
//	STRIDECOACH_AUTH_API_KEY, STRIDECOACH_TS_HOSTNAME, STRIDECOACH_TS_STATE_DIR
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	applyEnvOverrides(cfg)
	cfg.Normalize()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("STRIDECOACH_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("STRIDECOACH_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("STRIDECOACH_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("STRIDECOACH_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("STRIDECOACH_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("STRIDECOACH_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("STRIDECOACH_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("STRIDECOACH_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("STRIDECOACH_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("STRIDECOACH_TS_HOSTNAME"); v != "" {
		cfg.Tailscale.Hostname = v
	}
	if v := os.Getenv("STRIDECOACH_TS_STATE_DIR"); v != "" {
		cfg.Tailscale.StateDir = v
	}
}

// Normalize fills defaults for every unset adaptation and calendar knob.
func (c *Config) Normalize() {
	a := &c.Adaptation
	if a.Thresholds.Excellent == 0 {
		a.Thresholds.Excellent = 85
	}
	if a.Thresholds.Good == 0 {
		a.Thresholds.Good = 70
	}
	if a.Thresholds.Moderate == 0 {
		a.Thresholds.Moderate = 55
	}
	if a.Thresholds.Poor == 0 {
		a.Thresholds.Poor = 40
	}
	if a.ACWR.OptimalMin == 0 {
		a.ACWR.OptimalMin = 0.8
	}
	if a.ACWR.OptimalMax == 0 {
		a.ACWR.OptimalMax = 1.3
	}
	if a.ACWR.CautionMax == 0 {
		a.ACWR.CautionMax = 1.5
	}
	if a.BaselineHRVMs == 0 {
		a.BaselineHRVMs = 50
	}
	if a.BaselineRHRBPM == 0 {
		a.BaselineRHRBPM = 50
	}
	if a.KeySessionOffset == 0 {
		a.KeySessionOffset = -5
	}
	if a.LowScoreFallback == "" {
		a.LowScoreFallback = "cancel"
	}

	if c.Calendar.DefaultTime == "" {
		c.Calendar.DefaultTime = "18:00"
	}
	if c.Calendar.CalendarName == "" {
		c.Calendar.CalendarName = "Training"
	}
	if c.Tailscale.Hostname == "" {
		c.Tailscale.Hostname = "stridecoach"
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Database.Host == "" {
		return fmt.Errorf("database.host is required")
	}
	if c.Database.Port == 0 {
		return fmt.Errorf("database.port is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("database.name is required")
	}
	if c.Database.User == "" {
		return fmt.Errorf("database.user is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if f := c.Adaptation.LowScoreFallback; f != "cancel" && f != "replace" {
		return fmt.Errorf("adaptation.low_score_fallback = %q, want cancel or replace", f)
	}
	t := c.Adaptation.Thresholds
	if !(t.Poor < t.Moderate && t.Moderate < t.Good && t.Good < t.Excellent) {
		return fmt.Errorf("adaptation.thresholds must be strictly increasing poor < moderate < good < excellent")
	}
	return nil
}
