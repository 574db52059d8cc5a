package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Auth       AuthConfig       `yaml:"auth"`
	API        APIConfig        `yaml:"api"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	Exports    ExportConfig     `yaml:"exports"`
	Backup     BackupConfig     `yaml:"backup"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

// AuthConfig drives the token lifecycle manager. The signing secret is
// base64-normalized once at load time; TTLs are independent constants
// and the refresh TTL must exceed the access TTL.
type AuthConfig struct {
	JWTSecret         string `yaml:"jwt_secret"`
	AccessTTLMinutes  int    `yaml:"access_ttl_minutes"`
	RefreshTTLMinutes int    `yaml:"refresh_ttl_minutes"`

	signingKey []byte
}

// SigningKey returns the normalized key material for token signing.
func (a *AuthConfig) SigningKey() []byte { return a.signingKey }

// AccessTTL returns the access token lifetime.
func (a *AuthConfig) AccessTTL() time.Duration {
	return time.Duration(a.AccessTTLMinutes) * time.Minute
}

// RefreshTTL returns the refresh token lifetime.
func (a *AuthConfig) RefreshTTL() time.Duration {
	return time.Duration(a.RefreshTTLMinutes) * time.Minute
}

type APIConfig struct {
	Port      int                `yaml:"port"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type ExportConfig struct {
	Path string `yaml:"path"`
}

// BackupConfig controls periodic sqlite snapshots.
type BackupConfig struct {
	Enabled         bool   `yaml:"enabled"`
	IntervalMinutes int    `yaml:"interval_minutes"`
	Path            string `yaml:"path"`
	RetentionDays   int    `yaml:"retention_days"`
}

// Interval returns the snapshot period, defaulting to daily.
func (b *BackupConfig) Interval() time.Duration {
	if b.IntervalMinutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(b.IntervalMinutes) * time.Minute
}

func Load(configPath string) (*Config, error) {
	// .env is optional; environment variables referenced in the YAML
	// are expanded before parsing.
	_ = godotenv.Load(".env")

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	config.normalize()

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("auth jwt secret is required")
	}

	if c.Auth.RefreshTTLMinutes <= c.Auth.AccessTTLMinutes {
		return errors.New("auth refresh ttl must exceed access ttl")
	}

	return nil
}

// normalize derives the signing key from the configured secret. Done
// once per process so token issuing never re-encodes the secret.
func (c *Config) normalize() {
	c.Auth.signingKey = []byte(base64.StdEncoding.EncodeToString([]byte(c.Auth.JWTSecret)))
}

func (c *Config) applyDefaults() {
	if c.API.Port == 0 {
		c.API.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	if c.Auth.AccessTTLMinutes == 0 {
		c.Auth.AccessTTLMinutes = 30
	}
	if c.Auth.RefreshTTLMinutes == 0 {
		c.Auth.RefreshTTLMinutes = 60 * 24 * 14
	}
	if c.API.RateLimit.RPS == 0 {
		c.API.RateLimit.RPS = 10
	}
	if c.API.RateLimit.Burst == 0 {
		c.API.RateLimit.Burst = 20
	}
	if c.Exports.Path == "" {
		c.Exports.Path = "exports"
	}
	if c.Backup.Path == "" {
		c.Backup.Path = "backups"
	}
	if c.Backup.RetentionDays == 0 {
		c.Backup.RetentionDays = 30
	}
}
