package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
app:
  name: "cleanhive-test"
database:
  path: "test.db"
auth:
  jwt_secret: "test_secret"
api:
  http:
    port: 9999
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "cleanhive-test" {
		t.Errorf("expected app name cleanhive-test, got %s", cfg.App.Name)
	}
	if cfg.API.HTTP.Port != 9999 {
		t.Errorf("expected port 9999, got %d", cfg.API.HTTP.Port)
	}
	// defaults
	if cfg.Booking.MaxBookingDays != 90 {
		t.Errorf("expected default max_booking_days 90, got %d", cfg.Booking.MaxBookingDays)
	}
	if cfg.Auth.TokenTTLHours != 24 {
		t.Errorf("expected default token ttl 24h, got %d", cfg.Auth.TokenTTLHours)
	}
}

func TestLoadConfigExpandsEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("TEST_JWT_SECRET", "from_env")

	yamlContent := `
database:
  path: "test.db"
auth:
  jwt_secret: "${TEST_JWT_SECRET}"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Auth.JWTSecret != "from_env" {
		t.Errorf("expected jwt secret from env, got %s", cfg.Auth.JWTSecret)
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
				Auth:     AuthConfig{JWTSecret: "secret"},
			},
			wantErr: false,
		},
		{
			name: "missing database path",
			cfg: Config{
				Auth: AuthConfig{JWTSecret: "secret"},
			},
			wantErr: true,
		},
		{
			name: "placeholder jwt secret",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Auth:     AuthConfig{JWTSecret: "CHANGE_ME"},
			},
			wantErr: true,
		},
		{
			name: "partner auth without keys",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Auth:     AuthConfig{JWTSecret: "secret"},
				API:      APIConfig{Partner: PartnerAuthConfig{Enabled: true}},
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
