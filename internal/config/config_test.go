package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.App.MultiUser || !cfg.App.StrictStatus || !cfg.App.CheckMoveDestination {
		t.Fatalf("feature switches should default to on: %+v", cfg.App)
	}
	if cfg.App.TokenTTL != 24*time.Hour {
		t.Fatalf("unexpected token ttl: %s", cfg.App.TokenTTL)
	}
	if !cfg.IsSQLite() || cfg.Database.DSN != "listable.db" {
		t.Fatalf("unexpected database config: %+v", cfg.Database)
	}
	if cfg.Email.MailEnabled() {
		t.Fatalf("mail should be disabled by default")
	}
}

func TestLoad_FileValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
  "app": {"multi_user": false, "strict_status": false, "token_ttl": "2h", "http_addr": ":9090"},
  "database": {"driver": "mysql", "dsn": "user:pw@tcp(db:3306)/listable?parseTime=true"},
  "email": {"smtp_host": "smtp.example.com", "smtp_user": "u", "from_email": "noreply@example.com"}
}`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.MultiUser || cfg.App.StrictStatus {
		t.Fatalf("explicit false should be kept: %+v", cfg.App)
	}
	if !cfg.App.CheckMoveDestination {
		t.Fatalf("unset switch should keep its default")
	}
	if cfg.App.TokenTTL != 2*time.Hour || cfg.App.HTTPAddr != ":9090" {
		t.Fatalf("unexpected app config: %+v", cfg.App)
	}
	if cfg.IsSQLite() || !strings.Contains(cfg.Database.DSN, "tcp(db:3306)") {
		t.Fatalf("unexpected database config: %+v", cfg.Database)
	}
	if cfg.Email.SMTPPort != 587 || !cfg.Email.MailEnabled() {
		t.Fatalf("unexpected email config: %+v", cfg.Email)
	}
	if cfg.App.RateBurst != 10 || cfg.App.WorkerPoolSize != 2 {
		t.Fatalf("defaults not applied: %+v", cfg.App)
	}
}

func TestLoad_InvalidTokenTTL(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"app": {"token_ttl": "forever"}}`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("expected error for invalid token_ttl")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("APP_MULTI_USER", "false")
	t.Setenv("APP_TOKEN_TTL", "30m")
	t.Setenv("APP_RATE_LIMIT", "0.5")
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("REDIS_ENABLED", "true")
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("CORS_ORIGINS", "https://a.example.com, https://b.example.com")
	t.Setenv("DB_DRIVER", "MySQL")
	t.Setenv("DB_HOST", "mysql")
	t.Setenv("DB_USER", "listable")
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.MultiUser || cfg.App.TokenTTL != 30*time.Minute || cfg.App.RateLimit != 0.5 {
		t.Fatalf("app env overrides not applied: %+v", cfg.App)
	}
	if cfg.Security.JWTSecret != "from-env" {
		t.Fatalf("unexpected jwt secret: %q", cfg.Security.JWTSecret)
	}
	if !cfg.Redis.Enabled || cfg.Redis.Addr != "redis:6379" {
		t.Fatalf("unexpected redis config: %+v", cfg.Redis)
	}
	if len(cfg.App.CORSOrigins) != 2 || cfg.App.CORSOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected cors origins: %v", cfg.App.CORSOrigins)
	}
	if cfg.Database.Driver != "mysql" {
		t.Fatalf("unexpected driver: %q", cfg.Database.Driver)
	}
	for _, want := range []string{"listable:secret@", "tcp(mysql:3306)", "/listable"} {
		if !strings.Contains(cfg.Database.DSN, want) {
			t.Fatalf("dsn %q missing %q", cfg.Database.DSN, want)
		}
	}
}

func TestSave_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := getDefaultConfig()
	cfg.App.TokenTTL = 90 * time.Minute
	cfg.App.CheckMoveDestination = false

	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.App.TokenTTL != 90*time.Minute || loaded.App.CheckMoveDestination {
		t.Fatalf("round trip mismatch: %+v", loaded.App)
	}
}

func TestLoad_MySQLDriverWithoutDSN(t *testing.T) {
	t.Setenv("DB_DRIVER", "mysql")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Database.DSN == defaultSQLiteDSN {
		t.Fatalf("mysql driver kept the sqlite file path")
	}
	for _, want := range []string{"root@tcp(localhost:3306)/listable", "parseTime=true"} {
		if !strings.Contains(cfg.Database.DSN, want) {
			t.Fatalf("dsn %q missing %q", cfg.Database.DSN, want)
		}
	}

	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"database": {"driver": "mysql"}}`), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	cfg, err = Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !strings.Contains(cfg.Database.DSN, "tcp(localhost:3306)") {
		t.Fatalf("expected default mysql dsn, got %q", cfg.Database.DSN)
	}
}
