package config

import (
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config enthält alle Konfigurationsparameter aus Umgebungsvariablen.
type Config struct {
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`

	// gorm oder pgx
	StoreDriver string `envconfig:"STORE_DRIVER" default:"gorm"`

	HTTPPort          string  `envconfig:"HTTP_PORT" default:"5500"`
	StaticDir         string  `envconfig:"STATIC_DIR" default:"./web"`
	IndexFile         string  `envconfig:"INDEX_FILE" default:"network_sql.html"`
	CORSAllowedOrigin string  `envconfig:"CORS_ALLOWED_ORIGIN" default:"*"`
	APISecretKey      string  `envconfig:"API_SECRET_KEY"`
	RateLimitRPS      float64 `envconfig:"RATE_LIMIT_RPS" default:"20"`
	RateLimitBurst    int     `envconfig:"RATE_LIMIT_BURST" default:"40"`

	CacheTTL time.Duration `envconfig:"CACHE_TTL" default:"2h"`

	// Pipeline-Parameter
	TargetCongress    int `envconfig:"TARGET_CONGRESS" default:"117"`
	MinCollaborations int `envconfig:"MIN_COLLABORATIONS" default:"2"`

	// Datenquelle: local, http oder s3
	DataProvider string `envconfig:"DATA_PROVIDER" default:"local"`
	DataDir      string `envconfig:"DATA_DIR" default:"Data/congressional_data"`
	DataBaseURL  string `envconfig:"DATA_BASE_URL"`
	DataS3Bucket string `envconfig:"DATA_S3_BUCKET"`
	DataS3Prefix string `envconfig:"DATA_S3_PREFIX"`

	// Leer = kein automatischer Rebuild
	CronSchedule string `envconfig:"CRON_SCHEDULE"`

	// S3-kompatibler Speicher für Snapshot-Archive (optional)
	S3Key         string `envconfig:"S3_KEY"`
	S3Secret      string `envconfig:"S3_SECRET"`
	S3URL         string `envconfig:"S3_URL"`
	S3Region      string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Bucket      string `envconfig:"S3_BUCKET"`
	ArchivePrefix string `envconfig:"ARCHIVE_PREFIX" default:"snapshots/"`
	KeepArchives  int    `envconfig:"KEEP_ARCHIVES" default:"4"`

	LogLevel      string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat     string `envconfig:"LOG_FORMAT" default:"json"`
	LogFile       string `envconfig:"LOG_FILE"`
	LogMaxSizeMB  int    `envconfig:"LOG_MAX_SIZE_MB" default:"50"`
	LogMaxBackups int    `envconfig:"LOG_MAX_BACKUPS" default:"5"`
	LogMaxAgeDays int    `envconfig:"LOG_MAX_AGE_DAYS" default:"28"`
}

// RunOptions sind die Parameter eines einzelnen Pipeline-Laufs.
type RunOptions struct {
	TargetCongress    int
	MinCollaborations int
}

// DefaultRunOptions entspricht dem Verhalten ohne explizite Konfiguration.
func DefaultRunOptions() RunOptions {
	return RunOptions{TargetCongress: 117, MinCollaborations: 2}
}

// Validate prüft die Pipeline-Parameter.
func (o RunOptions) Validate() error {
	if o.TargetCongress < 0 {
		return fmt.Errorf("target congress must not be negative, got %d", o.TargetCongress)
	}
	if o.MinCollaborations < 1 {
		return fmt.Errorf("minimum collaborations must be at least 1, got %d", o.MinCollaborations)
	}
	return nil
}

// RunOptions gibt die konfigurierten Pipeline-Parameter zurück.
func (c *Config) RunOptions() RunOptions {
	return RunOptions{TargetCongress: c.TargetCongress, MinCollaborations: c.MinCollaborations}
}

// S3Enabled meldet, ob ein S3-Ziel vollständig konfiguriert ist.
func (c *Config) S3Enabled() bool {
	return c.S3URL != "" && c.S3Key != "" && c.S3Secret != "" && c.S3Bucket != ""
}

// Validate prüft Werte, die envconfig nicht selbst abdecken kann.
func (c *Config) Validate() error {
	if err := c.RunOptions().Validate(); err != nil {
		return err
	}
	switch c.StoreDriver {
	case "gorm", "pgx":
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q (expected gorm or pgx)", c.StoreDriver)
	}
	switch c.DataProvider {
	case "local":
	case "http":
		if c.DataBaseURL == "" {
			return fmt.Errorf("DATA_BASE_URL is required for the http data provider")
		}
	case "s3":
		if c.DataS3Bucket == "" {
			return fmt.Errorf("DATA_S3_BUCKET is required for the s3 data provider")
		}
		if !c.S3Enabled() {
			return fmt.Errorf("S3 credentials are required for the s3 data provider")
		}
	default:
		return fmt.Errorf("unknown DATA_PROVIDER %q (expected local, http or s3)", c.DataProvider)
	}
	if c.CacheTTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive, got %s", c.CacheTTL)
	}
	return nil
}

// DSN gibt den Data Source Name für die PostgreSQL-Verbindung zurück.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode)
}

// URL gibt die Verbindungs-URL im Format von pgx zurück.
func (c *Config) URL() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + strconv.Itoa(c.DBPort),
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

// Load lädt die Konfiguration aus den Umgebungsvariablen.
func Load() (*Config, error) {
	_ = godotenv.Load()
	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}
