package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"APP_PORT", "MYSQL_DB", "REDIS_DB", "NOTIFY_ENABLED", "NUMBER_MAX_ATTEMPTS", "ARREARS_CRON", "SMTP_USER", "SMTP_FROM"} {
		t.Setenv(k, "")
	}
	c := Load()
	if c.AppPort != "8080" || c.MySQLDB != "retailbank" || c.RedisDB != 0 || c.NotifyEnabled {
		t.Fatalf("defaults = %+v", c)
	}
	if c.NumberMaxAttempts != 10 || c.IdempotencyTTL() != 5*time.Minute {
		t.Fatalf("attempts %d ttl %s", c.NumberMaxAttempts, c.IdempotencyTTL())
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("REDIS_DB", "3")
	t.Setenv("IDEMPOTENCY_TTL_SECONDS", "60")
	t.Setenv("NOTIFY_ENABLED", "true")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USER", "bank@example.com")
	t.Setenv("SMTP_FROM", "")
	t.Setenv("NUMBER_MAX_ATTEMPTS", "not-a-number")

	c := Load()
	if c.RedisDB != 3 || c.IdempotencyTTL() != time.Minute {
		t.Fatalf("redis db %d ttl %s", c.RedisDB, c.IdempotencyTTL())
	}
	if !c.NotifyEnabled || c.SMTPFrom != "bank@example.com" {
		t.Fatalf("smtp = %+v", c)
	}
	if c.NumberMaxAttempts != 10 {
		t.Fatalf("bad int should fall back to default, got %d", c.NumberMaxAttempts)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			AppPort: "8080", LogLevel: "info", MySQLHost: "h", MySQLPort: "3306", MySQLDB: "d", MySQLUser: "u",
			NumberMaxAttempts: 10, ArrearsCron: "0 1 * * *",
		}
	}
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"missing host", func(c *Config) { c.MySQLHost = "" }, "missing MySQL"},
		{"bad port", func(c *Config) { c.MySQLPort = "nope" }, "MYSQL_PORT"},
		{"missing app port", func(c *Config) { c.AppPort = "" }, "APP_PORT"},
		{"bad log level", func(c *Config) { c.LogLevel = "loud" }, "LOG_LEVEL"},
		{"notify without smtp", func(c *Config) { c.NotifyEnabled = true }, "SMTP_HOST"},
		{"zero attempts", func(c *Config) { c.NumberMaxAttempts = 0 }, "NUMBER_MAX_ATTEMPTS"},
		{"bad cron", func(c *Config) { c.ArrearsCron = "every day" }, "ARREARS_CRON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("err = %v, want mention of %s", err, tt.want)
			}
		})
	}
	if err := base().Validate(); err != nil {
		t.Fatalf("base config: %v", err)
	}
}

func TestMySQLDSN(t *testing.T) {
	c := &Config{MySQLUser: "u", MySQLPass: "p", MySQLHost: "db", MySQLPort: "3306", MySQLDB: "bank"}
	if got := c.MySQLDSN(); !strings.HasPrefix(got, "u:p@tcp(db:3306)/bank?parseTime=true") {
		t.Fatalf("dsn = %s", got)
	}
}
