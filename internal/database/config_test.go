package database

import (
	"strings"
	"testing"

	"fintrack/internal/config"
)

func TestConfigFromAppConfig(t *testing.T) {
	cfg := NewConfig(&config.Config{
		DBHost:     "db",
		DBPort:     "5433",
		DBUser:     "u",
		DBPassword: "p",
		DBName:     "fintrack",
		DBSSLMode:  "disable",
	})

	dsn := cfg.DSN()
	for _, part := range []string{"host=db", "port=5433", "dbname=fintrack", "TimeZone=UTC"} {
		if !strings.Contains(dsn, part) {
			t.Errorf("expected DSN to contain %q, got %s", part, dsn)
		}
	}

	if got, want := cfg.URL(), "postgres://u:p@db:5433/fintrack?sslmode=disable"; got != want {
		t.Errorf("expected URL %s, got %s", want, got)
	}
}
