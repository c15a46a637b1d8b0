package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Data      DataConfig      `yaml:"data"`
	Auth      AuthConfig      `yaml:"auth"`
	Remote    RemoteConfig    `yaml:"remote"`
	Session   SessionConfig   `yaml:"session"`
	Tailscale TailscaleConfig `yaml:"tailscale"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DataConfig struct {
	Dir string `yaml:"dir"`
}

type AuthConfig struct {
	APIKey string `yaml:"api_key"`
	// UserID is the remote identity issued at sign-in. Empty means signed
	// out: sessions are saved locally only.
	UserID string `yaml:"user_id"`
}

type RemoteConfig struct {
	Enabled        bool   `yaml:"enabled"`
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Name           string `yaml:"name"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	SSLMode        string `yaml:"sslmode"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type SessionConfig struct {
	// Rep clamp bounds for recorded sets. Product policy, not physiology.
	MinReps int `yaml:"min_reps"`
	MaxReps int `yaml:"max_reps"`
}

type TailscaleConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Hostname string `yaml:"hostname"`
	StateDir string `yaml:"state_dir"`
}

// DSN returns the remote store's PostgreSQL connection string.
func (r RemoteConfig) DSN() string {
	sslmode := r.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		r.User, r.Password, r.Host, r.Port, r.Name, sslmode)
}

// Timeout returns the per-write remote timeout, defaulting to 5 seconds.
func (r RemoteConfig) Timeout() time.Duration {
	if r.TimeoutSeconds <= 0 {
		return 5 * time.Second
	}
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// Load reads config from a YAML file, then applies environment variable
// overrides. Env vars use the prefix REPLOG_ and underscore-separated paths:
//
//	REPLOG_SERVER_HOST, REPLOG_SERVER_PORT, REPLOG_DATA_DIR,
//	REPLOG_AUTH_API_KEY, REPLOG_AUTH_USER_ID,
//	REPLOG_REMOTE_HOST, REPLOG_REMOTE_PORT, REPLOG_REMOTE_NAME,
//	REPLOG_REMOTE_USER, REPLOG_REMOTE_PASSWORD, REPLOG_REMOTE_SSLMODE
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

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("REPLOG_SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("REPLOG_SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("REPLOG_DATA_DIR"); v != "" {
		cfg.Data.Dir = v
	}
	if v := os.Getenv("REPLOG_AUTH_API_KEY"); v != "" {
		cfg.Auth.APIKey = v
	}
	if v := os.Getenv("REPLOG_AUTH_USER_ID"); v != "" {
		cfg.Auth.UserID = v
	}
	if v := os.Getenv("REPLOG_REMOTE_HOST"); v != "" {
		cfg.Remote.Host = v
	}
	if v := os.Getenv("REPLOG_REMOTE_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Remote.Port = port
		}
	}
	if v := os.Getenv("REPLOG_REMOTE_NAME"); v != "" {
		cfg.Remote.Name = v
	}
	if v := os.Getenv("REPLOG_REMOTE_USER"); v != "" {
		cfg.Remote.User = v
	}
	if v := os.Getenv("REPLOG_REMOTE_PASSWORD"); v != "" {
		cfg.Remote.Password = v
	}
	if v := os.Getenv("REPLOG_REMOTE_SSLMODE"); v != "" {
		cfg.Remote.SSLMode = v
	}
}

func (c *Config) validate() error {
	if c.Server.Port == 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Data.Dir == "" {
		return fmt.Errorf("data.dir is required")
	}
	if c.Auth.APIKey == "" {
		return fmt.Errorf("auth.api_key is required")
	}
	if c.Remote.Enabled {
		if c.Remote.Host == "" {
			return fmt.Errorf("remote.host is required when remote sync is enabled")
		}
		if c.Remote.Port == 0 {
			return fmt.Errorf("remote.port is required when remote sync is enabled")
		}
		if c.Remote.Name == "" {
			return fmt.Errorf("remote.name is required when remote sync is enabled")
		}
		if c.Remote.User == "" {
			return fmt.Errorf("remote.user is required when remote sync is enabled")
		}
	}
	if c.Session.MinReps < 0 || (c.Session.MaxReps != 0 && c.Session.MaxReps < c.Session.MinReps) {
		return fmt.Errorf("session rep bounds are inconsistent")
	}
	return nil
}
