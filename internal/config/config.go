package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	BlobBackendLocal = "local"
	BlobBackendGCS   = "gcs"
)

var defaultSlotWindows = []string{
	"08:00-09:00", "09:00-10:00", "10:00-11:00", "11:00-12:00",
	"14:00-15:00", "15:00-16:00", "16:00-17:00", "17:00-18:00",
}

type Config struct {
	AppEnv  string
	AppPort string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	JWTSecret   string
	StoreDriver string

	// Bootstrap superadmin, created at startup when both are set
	SuperAdminEmail    string
	SuperAdminPassword string

	// Report storage
	BlobBackend    string
	UploadDir      string
	PublicBaseURL  string
	GCSBucket      string
	GCSCDNDomain   string
	MaxUploadBytes int64

	// Notifications
	RedisAddr   string
	NotifyQueue string
	SMTPHost    string
	SMTPPort    string
	SMTPUser    string
	SMTPPass    string
	SMTPFrom    string

	AllowedOrigins       []string
	SlotWindows          []string
	HomeCollectionCharge int
}

// Load reads the environment (and an optional .env file) into a Config.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:      getEnv("APP_ENV", "development"),
		AppPort:     getEnv("APP_PORT", "8080"),
		DBHost:      os.Getenv("DB_HOST"),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      os.Getenv("DB_NAME"),
		DBPort:      getEnv("DB_PORT", "5432"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		StoreDriver: getEnv("STORE_DRIVER", StoreDriverPostgres),

		SuperAdminEmail:    os.Getenv("SUPERADMIN_EMAIL"),
		SuperAdminPassword: os.Getenv("SUPERADMIN_PASSWORD"),

		BlobBackend:    getEnv("BLOB_BACKEND", BlobBackendLocal),
		UploadDir:      getEnv("UPLOAD_DIR", "./uploads"),
		PublicBaseURL:  strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/"),
		GCSBucket:      os.Getenv("GCS_BUCKET"),
		GCSCDNDomain:   os.Getenv("GCS_CDN_DOMAIN"),
		MaxUploadBytes: getEnvInt64("MAX_UPLOAD_BYTES", 10<<20),

		RedisAddr:   os.Getenv("REDIS_ADDR"),
		NotifyQueue: getEnv("NOTIFY_QUEUE", "notifications:outbox"),
		SMTPHost:    os.Getenv("SMTP_HOST"),
		SMTPPort:    getEnv("SMTP_PORT", "587"),
		SMTPUser:    os.Getenv("SMTP_USER"),
		SMTPPass:    os.Getenv("SMTP_PASS"),
		SMTPFrom:    os.Getenv("SMTP_FROM"),

		AllowedOrigins:       splitList(os.Getenv("ALLOWED_ORIGINS")),
		SlotWindows:          splitList(os.Getenv("SLOT_WINDOWS")),
		HomeCollectionCharge: int(getEnvInt64("HOME_COLLECTION_CHARGE", 100)),
	}

	if len(cfg.SlotWindows) == 0 {
		cfg.SlotWindows = append([]string(nil), defaultSlotWindows...)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.StoreDriver {
	case StoreDriverPostgres:
		if c.DBHost == "" {
			return errors.New("DB_HOST is required for the postgres store")
		}
	case StoreDriverMemory:
	default:
		return errors.New("STORE_DRIVER must be postgres or memory")
	}

	switch c.BlobBackend {
	case BlobBackendLocal:
	case BlobBackendGCS:
		if c.GCSBucket == "" {
			return errors.New("GCS_BUCKET is required for the gcs blob backend")
		}
	default:
		return errors.New("BLOB_BACKEND must be local or gcs")
	}

	if c.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
