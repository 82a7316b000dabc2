package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type Config struct {
	AppPort  string
	LogLevel string

	MySQLHost string
	MySQLPort string
	MySQLDB   string
	MySQLUser string
	MySQLPass string

	RedisAddr string
	RedisDB   int

	IdempTTLSecs int

	NotifyEnabled      bool
	SMTPHost           string
	SMTPPort           int
	SMTPUser           string
	SMTPPass           string
	SMTPFrom           string
	SMTPInsecureVerify bool

	NumberMaxAttempts int
	ArrearsCron       string
	ShutdownTimeout   time.Duration
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getint(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

func getbool(k string, d bool) bool {
	if v := os.Getenv(k); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return d
}

// Load reads a .env file when present, then the environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file, using the environment only")
	}

	c := &Config{
		AppPort:   getenv("APP_PORT", "8080"),
		LogLevel:  getenv("LOG_LEVEL", "info"),
		MySQLHost: getenv("MYSQL_HOST", "mysql"),
		MySQLPort: getenv("MYSQL_PORT", "3306"),
		MySQLDB:   getenv("MYSQL_DB", "retailbank"),
		MySQLUser: getenv("MYSQL_USER", "retailbank"),
		MySQLPass: getenv("MYSQL_PASS", "retailbank"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		RedisDB:      getint("REDIS_DB", 0),
		IdempTTLSecs: getint("IDEMPOTENCY_TTL_SECONDS", 300),

		NotifyEnabled:      getbool("NOTIFY_ENABLED", false),
		SMTPHost:           getenv("SMTP_HOST", ""),
		SMTPPort:           getint("SMTP_PORT", 587),
		SMTPUser:           getenv("SMTP_USER", ""),
		SMTPPass:           os.Getenv("SMTP_PASS"),
		SMTPInsecureVerify: getbool("SMTP_INSECURE_SKIP_VERIFY", false),

		NumberMaxAttempts: getint("NUMBER_MAX_ATTEMPTS", 10),
		ArrearsCron:       getenv("ARREARS_CRON", "0 1 * * *"),
		ShutdownTimeout:   time.Duration(getint("SHUTDOWN_TIMEOUT_SECONDS", 10)) * time.Second,
	}
	c.SMTPFrom = getenv("SMTP_FROM", c.SMTPUser)
	return c
}

func (c *Config) Validate() error {
	if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
		return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
	}
	// ensure port is valid
	if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
		return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
	}
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid LOG_LEVEL %q: %w", c.LogLevel, err)
	}
	if c.NotifyEnabled && (c.SMTPHost == "" || c.SMTPFrom == "") {
		return errors.New("NOTIFY_ENABLED requires SMTP_HOST and SMTP_FROM (or SMTP_USER)")
	}
	if c.NumberMaxAttempts <= 0 {
		return fmt.Errorf("NUMBER_MAX_ATTEMPTS must be positive, got %d", c.NumberMaxAttempts)
	}
	if _, err := cron.ParseStandard(c.ArrearsCron); err != nil {
		return fmt.Errorf("invalid ARREARS_CRON %q: %w", c.ArrearsCron, err)
	}
	return nil
}

func (c *Config) IdempotencyTTL() time.Duration { return time.Duration(c.IdempTTLSecs) * time.Second }

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}
