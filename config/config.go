package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds environment driven configuration values.
// Secrets have no defaults inside code and must be provided via env files or the environment.
type AppConfig struct {
	AppPort     string
	AdminAPIKey string
	// Database
	DBDriver    string
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	AutoMigrate bool
	// Gin framework configuration
	GinMode string
	GinPath string
	// HTTP surface
	AllowedOrigins     []string
	RateLimitPerMinute int
	MaxUploadMB        int
	// page view rows older than this are pruned; 0 keeps them forever
	PageViewRetentionDays int
	// Redis response cache, disabled when RedisHost is empty
	RedisHost       string
	RedisPort       int
	RedisDB         int
	RedisPassword   string
	CacheTTLSeconds int
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
	// Image hosting: "cloudinary", "minio" or empty for none
	ImageBackend        string
	ImageFolder         string
	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	MinIOEndpoint       string
	MinIOAccessKey      string
	MinIOSecretKey      string
	MinIOBucket         string
	MinIOUseSSL         bool
	MinIOPublicURL      string
}

var (
	cfg        AppConfig
	loaded     bool
	configPath = filepath.Join("config", "config.json")
)

// SetPath overrides the JSON config location. Call it before Load.
func SetPath(path string) {
	if path != "" {
		configPath = path
	}
}

// Load loads the application configuration. It should be called once during boot.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	// Precedence: config/config.json -> defaults -> .env -> environment variable overrides
	if err := loadJSONConfig(configPath, &cfg); err != nil {
		log.Printf("ignoring invalid %s: %v", configPath, err)
	}

	applyDefaults(&cfg)

	// .env never overrides variables already present in the process environment
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("failed to read .env: %v", err)
	}

	applyEnvOverrides(&cfg)

	if cfg.AdminAPIKey == "" {
		log.Fatal("ADMIN_API_KEY must be set in environment variables")
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadJSONConfig reads grouped sections ("app", "database", "log", "redis", "image") into out.
// A missing file is not an error.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var raw map[string]map[string]any
	if err := json.NewDecoder(f).Decode(&raw); err != nil {
		return err
	}

	getString := func(m map[string]any, key string) string {
		if s, ok := m[key].(string); ok {
			return s
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		if v, ok := m[key].(float64); ok {
			return int(v)
		}
		return 0
	}
	getBool := func(m map[string]any, key string) bool {
		b, _ := m[key].(bool)
		return b
	}

	if app, ok := raw["app"]; ok {
		out.AppPort = getString(app, "AppPort")
		out.AdminAPIKey = getString(app, "AdminAPIKey")
		out.GinMode = getString(app, "GinMode")
		out.GinPath = getString(app, "GinPath")
		out.RateLimitPerMinute = getInt(app, "RateLimitPerMinute")
		out.MaxUploadMB = getInt(app, "MaxUploadMB")
		out.PageViewRetentionDays = getInt(app, "PageViewRetentionDays")
		if list, ok := app["AllowedOrigins"].([]any); ok {
			for _, it := range list {
				if s, ok := it.(string); ok {
					out.AllowedOrigins = append(out.AllowedOrigins, s)
				}
			}
		}
	}
	if db, ok := raw["database"]; ok {
		out.DBDriver = getString(db, "Driver")
		out.DatabaseURI = getString(db, "URI")
		out.DBHost = getString(db, "Host")
		out.DBPort = getString(db, "Port")
		out.DBUser = getString(db, "User")
		out.DBPassword = getString(db, "Password")
		out.DBName = getString(db, "Name")
		out.DBSSLMode = getString(db, "SSLMode")
		out.AutoMigrate = getBool(db, "AutoMigrate")
	}
	if lg, ok := raw["log"]; ok {
		out.LogLevel = getString(lg, "Level")
		out.LogPath = getString(lg, "Path")
		out.LogMaxSizeMB = getInt(lg, "MaxSizeMB")
		out.LogMaxBackups = getInt(lg, "MaxBackups")
		out.LogMaxAgeDays = getInt(lg, "MaxAgeDays")
		out.LogCompress = getBool(lg, "Compress")
	}
	if rd, ok := raw["redis"]; ok {
		out.RedisHost = getString(rd, "Host")
		out.RedisPort = getInt(rd, "Port")
		out.RedisDB = getInt(rd, "DB")
		out.RedisPassword = getString(rd, "Password")
		out.CacheTTLSeconds = getInt(rd, "CacheTTLSeconds")
	}
	if img, ok := raw["image"]; ok {
		out.ImageBackend = getString(img, "Backend")
		out.ImageFolder = getString(img, "Folder")
		out.CloudinaryCloudName = getString(img, "CloudinaryCloudName")
		out.MinIOEndpoint = getString(img, "MinIOEndpoint")
		out.MinIOBucket = getString(img, "MinIOBucket")
		out.MinIOUseSSL = getBool(img, "MinIOUseSSL")
		out.MinIOPublicURL = getString(img, "MinIOPublicURL")
	}
	return nil
}

func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8000"
	}
	if c.DBDriver == "" {
		c.DBDriver = "postgres"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		switch c.DBDriver {
		case "mysql":
			c.DBPort = "3306"
		default:
			c.DBPort = "5432"
		}
	}
	if c.DBUser == "" {
		c.DBUser = "postgres"
	}
	if c.DBName == "" {
		c.DBName = "techdigest"
	}
	if c.DBSSLMode == "" {
		c.DBSSLMode = "require"
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if c.MaxUploadMB == 0 {
		c.MaxUploadMB = 10
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.CacheTTLSeconds == 0 {
		c.CacheTTLSeconds = 300
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
	if c.ImageFolder == "" {
		c.ImageFolder = "gdg-jkuat-blog"
	}
	if c.CloudinaryCloudName == "" {
		c.CloudinaryCloudName = "dsuzvrur2"
	}
	if c.MinIOBucket == "" {
		c.MinIOBucket = "images"
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) {
	if v := getEnv("APP_PORT", ""); v != "" {
		c.AppPort = v
	}
	if v := getEnv("ADMIN_API_KEY", ""); v != "" {
		c.AdminAPIKey = v
	}
	if v := getEnv("DB_DRIVER", ""); v != "" {
		c.DBDriver = v
	}
	if v := getEnv("DATABASE_URL", ""); v != "" {
		c.DatabaseURI = v
	}
	if v := getEnv("DB_HOST", ""); v != "" {
		c.DBHost = v
	}
	if v := getEnv("DB_PORT", ""); v != "" {
		c.DBPort = v
	}
	if v := getEnv("DB_USER", ""); v != "" {
		c.DBUser = v
	}
	if v := getEnv("DB_PASSWORD", ""); v != "" {
		c.DBPassword = v
	}
	if v := getEnv("DB_NAME", ""); v != "" {
		c.DBName = v
	}
	if v := getEnv("DB_SSLMODE", ""); v != "" {
		c.DBSSLMode = v
	}
	if v := getEnv("DB_AUTO_MIGRATE", ""); v != "" {
		c.AutoMigrate = v == "true"
	}
	if v := getEnv("GIN_MODE", ""); v != "" {
		c.GinMode = v
	}
	if v := getEnv("GIN_PATH", ""); v != "" {
		c.GinPath = v
	}
	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}
	if v := getEnv("RATE_LIMIT_PER_MINUTE", ""); v != "" {
		c.RateLimitPerMinute = mustParseInt(v)
	}
	if v := getEnv("MAX_UPLOAD_MB", ""); v != "" {
		c.MaxUploadMB = mustParseInt(v)
	}
	if v := getEnv("PAGE_VIEW_RETENTION_DAYS", ""); v != "" {
		c.PageViewRetentionDays = mustParseInt(v)
	}
	if v := getEnv("REDIS_HOST", ""); v != "" {
		c.RedisHost = v
	}
	if v := getEnv("REDIS_PORT", ""); v != "" {
		c.RedisPort = mustParseInt(v)
	}
	if v := getEnv("REDIS_DB", ""); v != "" {
		c.RedisDB = mustParseInt(v)
	}
	if v := getEnv("REDIS_PASSWORD", ""); v != "" {
		c.RedisPassword = v
	}
	if v := getEnv("CACHE_TTL_SECONDS", ""); v != "" {
		c.CacheTTLSeconds = mustParseInt(v)
	}
	if v := getEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = v
	}
	if v := getEnv("LOG_PATH", ""); v != "" {
		c.LogPath = v
	}
	if v := getEnv("LOG_MAX_SIZE_MB", ""); v != "" {
		c.LogMaxSizeMB = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_BACKUPS", ""); v != "" {
		c.LogMaxBackups = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_AGE_DAYS", ""); v != "" {
		c.LogMaxAgeDays = mustParseInt(v)
	}
	if v := getEnv("LOG_COMPRESS", ""); v != "" {
		c.LogCompress = v == "true"
	}
	if v := getEnv("IMAGE_BACKEND", ""); v != "" {
		c.ImageBackend = strings.ToLower(v)
	}
	if v := getEnv("IMAGE_FOLDER", ""); v != "" {
		c.ImageFolder = v
	}
	if v := getEnv("CLOUDINARY_CLOUD_NAME", ""); v != "" {
		c.CloudinaryCloudName = v
	}
	if v := getEnv("CLOUDINARY_API_KEY", ""); v != "" {
		c.CloudinaryAPIKey = v
	}
	if v := getEnv("CLOUDINARY_API_SECRET", ""); v != "" {
		c.CloudinaryAPISecret = v
	}
	if v := getEnv("MINIO_ENDPOINT", ""); v != "" {
		c.MinIOEndpoint = v
	}
	if v := getEnv("MINIO_ACCESS_KEY", ""); v != "" {
		c.MinIOAccessKey = v
	}
	if v := getEnv("MINIO_SECRET_KEY", ""); v != "" {
		c.MinIOSecretKey = v
	}
	if v := getEnv("MINIO_BUCKET", ""); v != "" {
		c.MinIOBucket = v
	}
	if v := getEnv("MINIO_USE_SSL", ""); v != "" {
		c.MinIOUseSSL = v == "true"
	}
	if v := getEnv("MINIO_PUBLIC_URL", ""); v != "" {
		c.MinIOPublicURL = v
	}
}

func mustParseInt(val string) int {
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("invalid integer value %s: %v", val, err)
	}
	return i
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
