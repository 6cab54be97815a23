package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	applog "retention/internal/log"
)

type Config struct {
	// Files
	DataDir       string
	OutputDir     string
	DashboardFile string

	// Source the dashboard reads from
	DataBackend string

	// Database
	SQLiteDBPath string

	// AMQP (optional)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// Generation
	Seed int64

	LogLevel string
}

func Load() *Config {
	return &Config{
		DataDir:       getEnv("DATA_DIR", "data"),
		OutputDir:     getEnv("OUTPUT_DIR", "outputs"),
		DashboardFile: getEnv("DASHBOARD_FILE", "retention_dashboard_preview.html"),

		DataBackend:  getEnv("DATA_BACKEND", "files"),
		SQLiteDBPath: getEnv("SQLITE_DB_PATH", "./data/retention.db"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "retention"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "datasets_generated"),

		Seed:     getEnvInt64("SEED", 42),
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// DashboardPath is the full path of the rendered HTML document.
func (c *Config) DashboardPath() string {
	return filepath.Join(c.OutputDir, c.DashboardFile)
}

// SnapshotEnabled reports whether the builder also stores a SQLite snapshot.
func (c *Config) SnapshotEnabled() bool {
	return c.DataBackend == "sqlite"
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if strings.TrimSpace(c.DataDir) == "" {
		errors = append(errors, "data directory cannot be empty")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		errors = append(errors, "output directory cannot be empty")
	}
	if c.DashboardFile == "" {
		errors = append(errors, "dashboard file name cannot be empty")
	} else if filepath.Base(c.DashboardFile) != c.DashboardFile {
		errors = append(errors, fmt.Sprintf("dashboard file '%s' must be a bare file name", c.DashboardFile))
	} else if !strings.EqualFold(filepath.Ext(c.DashboardFile), ".html") {
		errors = append(errors, fmt.Sprintf("dashboard file '%s' must end in .html", c.DashboardFile))
	}

	validBackends := []string{"files", "sqlite"}
	isValidBackend := false
	for _, backend := range validBackends {
		if c.DataBackend == backend {
			isValidBackend = true
			break
		}
	}
	if !isValidBackend {
		errors = append(errors, fmt.Sprintf("invalid data backend '%s': must be one of %v", c.DataBackend, validBackends))
	}

	if c.DataBackend == "sqlite" {
		if c.SQLiteDBPath == "" {
			errors = append(errors, "SQLite database path cannot be empty when using sqlite backend")
		} else {
			dir := filepath.Dir(c.SQLiteDBPath)
			if dir != "." && dir != "" {
				if _, err := os.Stat(dir); os.IsNotExist(err) {
					if err := os.MkdirAll(dir, 0755); err != nil {
						errors = append(errors, fmt.Sprintf("cannot create SQLite database directory '%s': %v", dir, err))
					}
				}
			}
		}
	}

	// AMQP is optional; validate only when a URL is provided
	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errors = append(errors, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errors = append(errors, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errors = append(errors, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if _, err := applog.ParseLevel(c.LogLevel); err != nil {
		errors = append(errors, fmt.Sprintf("invalid log level '%s': must be one of debug, info, warn, error", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}
