package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port string

	// Auth
	APIKey string

	// Storage paths
	TemplateDir string
	OutputDir   string

	// Rule and metadata sources
	SectionRulesPath string
	FieldDBPath      string

	// Worker pool
	WorkerCount          int
	MaxQueueSize         int
	MaxConcurrentRecords int

	// Upload limits
	MaxUploadBytes int64

	// Assembly behavior
	StrictRequired      bool
	TitleScoreThreshold int

	// Job state
	JobTTL time.Duration

	// Stats window
	StatsWindow time.Duration
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8091"),

		APIKey: os.Getenv("PETICIONA_API_KEY"),

		TemplateDir: envOr("TEMPLATE_DIR", "data/templates"),
		OutputDir:   envOr("OUTPUT_DIR", "data/output"),

		SectionRulesPath: envOr("SECTION_RULES_PATH", "config/sections.yaml"),
		FieldDBPath:      envOr("FIELD_DB_PATH", "data/fields.db"),

		WorkerCount:          envInt("WORKER_COUNT", 4),
		MaxQueueSize:         envInt("MAX_QUEUE_SIZE", 100),
		MaxConcurrentRecords: envInt("MAX_CONCURRENT_RECORDS", 5),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 20971520), // 20MB

		StrictRequired:      envBool("STRICT_REQUIRED", false),
		TitleScoreThreshold: envInt("TITLE_SCORE_THRESHOLD", 5),

		JobTTL: envDuration("JOB_TTL", 1*time.Hour),

		StatsWindow: envDuration("STATS_WINDOW", 1*time.Hour),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxConcurrentRecords <= 0 {
		cfg.MaxConcurrentRecords = 5
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 20971520
	}
	if cfg.TitleScoreThreshold <= 0 {
		cfg.TitleScoreThreshold = 5
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.StatsWindow <= 0 {
		cfg.StatsWindow = 1 * time.Hour
	}

	return cfg
}

func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("PETICIONA_API_KEY is required")
	}
	if c.SectionRulesPath == "" {
		return fmt.Errorf("SECTION_RULES_PATH is required")
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
