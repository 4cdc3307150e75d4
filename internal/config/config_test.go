package config

import (
	"testing"
	"time"

	"github.com/Kerhoff/todoapi/internal/repository/sqlstore"
)

func TestParseDatabaseURL(t *testing.T) {
	tests := []struct {
		url         string
		wantDialect sqlstore.Dialect
		wantDSN     string
		wantErr     bool
	}{
		{url: "postgres://u:p@localhost:5432/todos?sslmode=disable", wantDialect: sqlstore.Postgres, wantDSN: "postgres://u:p@localhost:5432/todos?sslmode=disable"},
		{url: "postgresql://localhost/todos", wantDialect: sqlstore.Postgres, wantDSN: "postgresql://localhost/todos"},
		{url: "sqlite://todos.db", wantDialect: sqlstore.SQLite, wantDSN: "todos.db?" + sqlitePragmas},
		{url: "sqlite:///var/lib/todos.db", wantDialect: sqlstore.SQLite, wantDSN: "/var/lib/todos.db?" + sqlitePragmas},
		{url: "file:todos.db?cache=shared", wantDialect: sqlstore.SQLite, wantDSN: "file:todos.db?cache=shared&" + sqlitePragmas},
		{url: "sqlite://", wantErr: true},
		{url: "sqlite://:memory:", wantErr: true},
		{url: "mysql://localhost/todos", wantErr: true},
		{url: "todos.db", wantErr: true},
	}

	for _, tt := range tests {
		dialect, dsn, err := ParseDatabaseURL(tt.url)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseDatabaseURL(%q): expected error", tt.url)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseDatabaseURL(%q): %v", tt.url, err)
			continue
		}
		if dialect != tt.wantDialect || dsn != tt.wantDSN {
			t.Errorf("ParseDatabaseURL(%q) = %q, %q; want %q, %q", tt.url, dialect, dsn, tt.wantDialect, tt.wantDSN)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"DATABASE_URL", "LOG_LEVEL", "LOG_FORMAT", "PORT", "DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "DB_CONN_MAX_LIFETIME"} {
		t.Setenv(key, "")
	}
	unsetEnv(t, "PROMETHEUS_PORT")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabaseURL != "sqlite://todos.db" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.Port != "8080" || cfg.PrometheusPort != "9090" {
		t.Errorf("ports = %q, %q", cfg.Port, cfg.PrometheusPort)
	}
	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("logging = %q, %q", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.Pool != DefaultPool {
		t.Errorf("Pool = %+v", cfg.Pool)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/todos")
	t.Setenv("PORT", "8000")
	t.Setenv("PROMETHEUS_PORT", "")
	t.Setenv("DB_MAX_OPEN_CONNS", "3")
	t.Setenv("DB_MAX_IDLE_CONNS", "1")
	t.Setenv("DB_CONN_MAX_LIFETIME", "30s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DatabaseURL != "postgres://localhost/todos" || cfg.Port != "8000" {
		t.Errorf("unexpected config: %+v", cfg)
	}
	if cfg.PrometheusPort != "" {
		t.Errorf("empty PROMETHEUS_PORT should disable metrics, got %q", cfg.PrometheusPort)
	}
	want := PoolConfig{MaxOpenConns: 3, MaxIdleConns: 1, ConnMaxLifetime: 30 * time.Second}
	if cfg.Pool != want {
		t.Errorf("Pool = %+v, want %+v", cfg.Pool, want)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]string{
		"DATABASE_URL":         "mysql://localhost/todos",
		"DB_MAX_OPEN_CONNS":    "many",
		"DB_CONN_MAX_LIFETIME": "forever",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, value)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%q", key, value)
			}
		})
	}
}
