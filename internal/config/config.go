package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	Auth        AuthConfig        `yaml:"auth"`
	Tailscale   TailscaleConfig   `yaml:"tailscale"`
	Knowledge   KnowledgeConfig   `yaml:"knowledge"`
	Progression ProgressionConfig `yaml:"progression"`
	Volume      VolumeConfig      `yaml:"volume"`
	Adaptation  AdaptationConfig  `yaml:"adaptation"`
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

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

type KnowledgeConfig struct {
	// Path to an external knowledge YAML. Empty uses the embedded
	// catalog.
	Path string `yaml:"path"`
}

// ProgressionConfig holds the advisor's numeric policy. These are
// documented defaults, not hidden constants; zero values fall back to
// the defaults applied in applyDefaults.
type ProgressionConfig struct {
	// RepCeiling is the highest rep count whose estimated 1RM is
	// trusted for PR comparison.
	RepCeiling int `yaml:"rep_ceiling"`
	// TargetRepLow/High bound the default working rep range for
	// exercises without a knowledge-base range.
	TargetRepLow  int `yaml:"target_rep_low"`
	TargetRepHigh int `yaml:"target_rep_high"`
	// HighEffortRPE is the RPE at or above which a session counts as
	// maximal effort.
	HighEffortRPE float64 `yaml:"high_effort_rpe"`
	// DeloadWindowDays bounds the trailing workout window evaluated
	// for deload necessity.
	DeloadWindowDays int `yaml:"deload_window_days"`
	// DeloadRPEThreshold is the sustained average RPE that, without a
	// load increase, warrants a deload.
	DeloadRPEThreshold float64 `yaml:"deload_rpe_threshold"`
}

type VolumeConfig struct {
	// Metric selects the reported volume unit: sets, reps, or tonnage.
	Metric string `yaml:"metric"`
}

type AdaptationConfig struct {
	// Set-count multipliers for high (>=8) and moderate (>=6) fatigue.
	HighFatigueFactor     float64 `yaml:"high_fatigue_factor"`
	ModerateFatigueFactor float64 `yaml:"moderate_fatigue_factor"`
	// MinSets is the floor below which set counts are never reduced.
	MinSets int `yaml:"min_sets"`
	// MinExercises is the floor below which time trimming never drops
	// exercises.
	MinExercises int `yaml:"min_exercises"`
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

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix REPCOACH_ and underscore-separated
// paths:
//
//	REPCOACH_SERVER_HOST, REPCOACH_SERVER_PORT,
//	REPCOACH_DB_HOST, REPCOACH_DB_PORT, REPCOACH_DB_NAME,
//	REPCOACH_DB_USER, REPCOACH_DB_PASSWORD, REPCOACH_DB_SSLMODE,
//	REPCOACH_AUTH_API_KEY
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
	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Defaults returns a config with only the tuning sections populated,
// for library use without a config file.
func Defaults() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

func (c *Config) applyDefaults() {
	if c.Progression.RepCeiling == 0 {
		c.Progression.RepCeiling = 12
	}
	if c.Progression.TargetRepLow == 0 {
		c.Progression.TargetRepLow = 8
	}
	if c.Progression.TargetRepHigh == 0 {
		c.Progression.TargetRepHigh = 12
	}
	if c.Progression.HighEffortRPE == 0 {
		c.Progression.HighEffortRPE = 9
	}
	if c.Progression.DeloadWindowDays == 0 {
		c.Progression.DeloadWindowDays = 21
	}
	if c.Progression.DeloadRPEThreshold == 0 {
		c.Progression.DeloadRPEThreshold = 8.5
	}
	if c.Volume.Metric == "" {
		c.Volume.Metric = "sets"
	}
	if c.Adaptation.HighFatigueFactor == 0 {
		c.Adaptation.HighFatigueFactor = 0.6
	}
	if c.Adaptation.ModerateFatigueFactor == 0 {
		c.Adaptation.ModerateFatigueFactor = 0.8
	}
	if c.Adaptation.MinSets == 0 {
		c.Adaptation.MinSets = 2
	}
	if c.Adaptation.MinExercises == 0 {
		c.Adaptation.MinExercises = 2
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REPCOACH_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("REPCOACH_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("REPCOACH_DB_HOST"); v != "" {
		cfg.Database.Host = v
	}
	if v := os.Getenv("REPCOACH_DB_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Database.Port = port
		}
	}
	if v := os.Getenv("REPCOACH_DB_NAME"); v != "" {
		cfg.Database.Name = v
	}
	if v := os.Getenv("REPCOACH_DB_USER"); v != "" {
		cfg.Database.User = v
	}
	if v := os.Getenv("REPCOACH_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("REPCOACH_DB_SSLMODE"); v != "" {
		cfg.Database.SSLMode = v
	}
	if v := os.Getenv("REPCOACH_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
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
	switch c.Volume.Metric {
	case "sets", "reps", "tonnage":
	default:
		return fmt.Errorf("volume.metric must be sets, reps, or tonnage")
	}
	if c.Progression.TargetRepLow >= c.Progression.TargetRepHigh {
		return fmt.Errorf("progression.target_rep_low must be below target_rep_high")
	}
	return nil
}
