package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
database:
  path: "test.db"
auth:
  jwt_secret: "test_secret"
  access_ttl_minutes: 30
  refresh_ttl_minutes: 1440
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Database.Path != "test.db" {
		t.Errorf("expected database path test.db, got %s", cfg.Database.Path)
	}

	if len(cfg.Auth.SigningKey()) == 0 {
		t.Errorf("expected signing key to be derived at load time")
	}

	if cfg.API.Port != 8080 {
		t.Errorf("expected default api port 8080, got %d", cfg.API.Port)
	}

	if cfg.Backup.Path != "backups" {
		t.Errorf("expected default backup path, got %s", cfg.Backup.Path)
	}
	if cfg.Backup.Interval() != 24*time.Hour {
		t.Errorf("expected default backup interval 24h, got %s", cfg.Backup.Interval())
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Auth:     AuthConfig{JWTSecret: "secret", AccessTTLMinutes: 30, RefreshTTLMinutes: 1440},
			},
			wantErr: false,
		},
		{
			name: "missing secret",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Auth:     AuthConfig{AccessTTLMinutes: 30, RefreshTTLMinutes: 1440},
			},
			wantErr: true,
		},
		{
			name: "missing database path",
			cfg: Config{
				Auth: AuthConfig{JWTSecret: "secret", AccessTTLMinutes: 30, RefreshTTLMinutes: 1440},
			},
			wantErr: true,
		},
		{
			name: "refresh ttl not greater than access ttl",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Auth:     AuthConfig{JWTSecret: "secret", AccessTTLMinutes: 60, RefreshTTLMinutes: 60},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfigEnvExpansion(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("SLOTBOOK_TEST_SECRET", "from-env")

	yamlContent := `
database:
  path: "test.db"
auth:
  jwt_secret: "${SLOTBOOK_TEST_SECRET}"
  access_ttl_minutes: 5
  refresh_ttl_minutes: 10
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Auth.JWTSecret != "from-env" {
		t.Errorf("expected secret from environment, got %s", cfg.Auth.JWTSecret)
	}
}
