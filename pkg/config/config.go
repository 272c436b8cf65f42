package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	// PublicBaseURL is the absolute origin used when building redirect
	// targets for scanned QR codes, e.g. https://qrshelf.com.
	PublicBaseURL string

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Tracking  TrackingConfig
	Analytics AnalyticsConfig
	Mailer    MailerConfig
	Metadata  MetadataConfig
	Export    ExportConfig
	Storage   StorageConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	Expiration        time.Duration
	RefreshExpiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// TrackingConfig governs the scan/redirect attribution path.
type TrackingConfig struct {
	// IPHashSecret salts the daily-rotating IP fingerprint. When empty the
	// hasher falls back to a built-in default and a warning is logged at
	// startup.
	IPHashSecret    string
	RateLimitWindow time.Duration
	RateLimitMax    int
}

// AnalyticsConfig tunes caching for the shop analytics endpoints.
type AnalyticsConfig struct {
	CacheTTL time.Duration
}

// MailerConfig configures subscriber notification delivery via Resend.
type MailerConfig struct {
	ResendAPIKey string
	FromEmail    string
	BatchSize    int
	Workers      int
}

// MetadataConfig bounds the outbound product-page metadata fetcher.
type MetadataConfig struct {
	Timeout      time.Duration
	MaxBodyBytes int64
	// AmazonMaxBodyBytes is larger because product image URLs sit deep in
	// inline JSON on Amazon pages.
	AmazonMaxBodyBytes int64
}

// ExportConfig caps analytics event exports.
type ExportConfig struct {
	MaxRows int
}

// StorageConfig locates the on-disk artifact store and governs signed
// export download tokens. An empty DownloadSecret falls back to the JWT
// secret at wiring time.
type StorageConfig struct {
	Dir            string
	DownloadSecret string
	DownloadTTL    time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.PublicBaseURL = strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:            v.GetString("JWT_SECRET"),
		Expiration:        parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
		RefreshExpiration: parseDuration(v.GetString("REFRESH_TOKEN_EXPIRATION"), 7*24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Tracking = TrackingConfig{
		IPHashSecret:    v.GetString("IP_HASH_SECRET"),
		RateLimitWindow: parseDuration(v.GetString("SCAN_RATE_LIMIT_WINDOW"), time.Minute),
		RateLimitMax:    v.GetInt("SCAN_RATE_LIMIT_MAX"),
	}

	cfg.Analytics = AnalyticsConfig{
		CacheTTL: parseDuration(v.GetString("ANALYTICS_CACHE_TTL"), 5*time.Minute),
	}

	cfg.Mailer = MailerConfig{
		ResendAPIKey: v.GetString("RESEND_API_KEY"),
		FromEmail:    v.GetString("FROM_EMAIL"),
		BatchSize:    v.GetInt("MAILER_BATCH_SIZE"),
		Workers:      v.GetInt("MAILER_WORKERS"),
	}

	cfg.Metadata = MetadataConfig{
		Timeout:            parseDuration(v.GetString("METADATA_FETCH_TIMEOUT"), 8*time.Second),
		MaxBodyBytes:       v.GetInt64("METADATA_MAX_BODY_BYTES"),
		AmazonMaxBodyBytes: v.GetInt64("METADATA_AMAZON_MAX_BODY_BYTES"),
	}

	cfg.Export = ExportConfig{
		MaxRows: v.GetInt("EXPORT_MAX_ROWS"),
	}

	cfg.Storage = StorageConfig{
		Dir:            v.GetString("STORAGE_DIR"),
		DownloadSecret: v.GetString("EXPORT_DOWNLOAD_SECRET"),
		DownloadTTL:    parseDuration(v.GetString("EXPORT_DOWNLOAD_TTL"), 24*time.Hour),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("PUBLIC_BASE_URL", "http://localhost:3000")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "qrshelf")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")
	v.SetDefault("REFRESH_TOKEN_EXPIRATION", "168h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("IP_HASH_SECRET", "")
	v.SetDefault("SCAN_RATE_LIMIT_WINDOW", "60s")
	v.SetDefault("SCAN_RATE_LIMIT_MAX", 30)

	v.SetDefault("ANALYTICS_CACHE_TTL", "5m")

	v.SetDefault("RESEND_API_KEY", "")
	v.SetDefault("FROM_EMAIL", "QRShelf <noreply@qrshelf.com>")
	v.SetDefault("MAILER_BATCH_SIZE", 50)
	v.SetDefault("MAILER_WORKERS", 2)

	v.SetDefault("METADATA_FETCH_TIMEOUT", "8s")
	v.SetDefault("METADATA_MAX_BODY_BYTES", 100*1024)
	v.SetDefault("METADATA_AMAZON_MAX_BODY_BYTES", 250*1024)

	v.SetDefault("EXPORT_MAX_ROWS", 10000)

	v.SetDefault("STORAGE_DIR", "./data")
	v.SetDefault("EXPORT_DOWNLOAD_SECRET", "")
	v.SetDefault("EXPORT_DOWNLOAD_TTL", "24h")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
