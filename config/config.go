package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type SnapshotDriver string

const (
	DriverMemory   SnapshotDriver = "memory"
	DriverFile     SnapshotDriver = "file"
	DriverPostgres SnapshotDriver = "postgres"
)

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
}

// Enabled reports whether enough R2 settings are present to build a client.
func (c R2Config) Enabled() bool {
	return c.AccountID != "" && c.AccessKeyID != "" && c.AccessKeySecret != "" && c.Bucket != ""
}

type Config struct {
	Port           string
	LogMode        string
	ServiceToken   string
	AllowedOrigins []string

	Driver      SnapshotDriver
	DataDir     string
	DatabaseURL string

	// Calendar days are bucketed in this location.
	Location *time.Location

	RulebookDefaultsPath string

	AuditInterval  time.Duration
	BackupInterval time.Duration
	R2             R2Config
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading environment variables directly")
	}

	cfg := &Config{
		Port:                 String("PORT", "5200"),
		LogMode:              String("LOG_MODE", "dev"),
		ServiceToken:         String("LEDGER_SERVICE_TOKEN", ""),
		AllowedOrigins:       List("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		DataDir:              String("DATA_DIR", ""),
		DatabaseURL:          String("DATABASE_URL", ""),
		RulebookDefaultsPath: String("RULEBOOK_DEFAULTS", ""),
		AuditInterval:        Duration("AUDIT_INTERVAL", time.Hour),
		BackupInterval:       Duration("BACKUP_INTERVAL", 0),
		R2: R2Config{
			AccountID:       String("CLOUDFLARE_ACCOUNT_ID", ""),
			AccessKeyID:     String("R2_ACCESS_KEY_ID", ""),
			AccessKeySecret: String("R2_ACCESS_KEY_SECRET", ""),
			Bucket:          String("R2_BUCKET_NAME", ""),
		},
	}

	driver := SnapshotDriver(strings.ToLower(String("SNAPSHOT_DRIVER", "")))
	if driver == "" {
		switch {
		case cfg.DatabaseURL != "":
			driver = DriverPostgres
		case cfg.DataDir != "":
			driver = DriverFile
		default:
			driver = DriverMemory
		}
	}
	switch driver {
	case DriverMemory:
	case DriverFile:
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("SNAPSHOT_DRIVER=file requires DATA_DIR")
		}
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("SNAPSHOT_DRIVER=postgres requires DATABASE_URL")
		}
	default:
		return nil, fmt.Errorf("unknown SNAPSHOT_DRIVER %q", driver)
	}
	cfg.Driver = driver

	loc, err := time.LoadLocation(String("LEDGER_TZ", "UTC"))
	if err != nil {
		return nil, fmt.Errorf("LEDGER_TZ: %w", err)
	}
	cfg.Location = loc

	return cfg, nil
}

func String(name, def string) string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	return v
}

func Int(name string, def int) int {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func Duration(name string, def time.Duration) time.Duration {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}

// List splits a comma-separated variable and trims each element.
func List(name string, def []string) []string {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
