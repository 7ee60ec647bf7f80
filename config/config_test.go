package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyDefaults(t *testing.T) {
	var c AppConfig
	applyDefaults(&c)

	assert.Equal(t, "8000", c.AppPort)
	assert.Equal(t, "postgres", c.DBDriver)
	assert.Equal(t, "5432", c.DBPort)
	assert.Equal(t, []string{"*"}, c.AllowedOrigins)
	assert.Equal(t, "gdg-jkuat-blog", c.ImageFolder)
	assert.Equal(t, 10, c.MaxUploadMB)
}

func TestApplyDefaults_MySQLPort(t *testing.T) {
	c := AppConfig{DBDriver: "mysql"}
	applyDefaults(&c)
	assert.Equal(t, "3306", c.DBPort)
}

func TestApplyEnvOverrides(t *testing.T) {
	t.Setenv("ADMIN_API_KEY", "secret")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("RATE_LIMIT_PER_MINUTE", "12")
	t.Setenv("IMAGE_BACKEND", "MinIO")
	t.Setenv("LOG_COMPRESS", "true")

	var c AppConfig
	applyDefaults(&c)
	applyEnvOverrides(&c)

	assert.Equal(t, "secret", c.AdminAPIKey)
	assert.Equal(t, "sqlite", c.DBDriver)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.AllowedOrigins)
	assert.Equal(t, 12, c.RateLimitPerMinute)
	assert.Equal(t, "minio", c.ImageBackend)
	assert.True(t, c.LogCompress)
}

func TestDSN(t *testing.T) {
	c := AppConfig{DBDriver: "postgres", DBHost: "db", DBPort: "5432", DBUser: "u", DBPassword: "p", DBName: "n", DBSSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable connect_timeout=10", c.DSN())

	c.DBDriver = "mysql"
	c.DBPort = "3306"
	assert.Equal(t, "u:p@tcp(db:3306)/n?charset=utf8mb4&parseTime=True&loc=Local", c.DSN())

	c.DatabaseURI = "postgres://override"
	assert.Equal(t, "postgres://override", c.DSN())
}

func TestLoadJSONConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{
		"app": {"AppPort": "9000", "AllowedOrigins": ["https://digest.example"], "RateLimitPerMinute": 30},
		"database": {"Driver": "mysql", "AutoMigrate": true},
		"image": {"Backend": "cloudinary", "CloudinaryCloudName": "demo"}
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	var c AppConfig
	require.NoError(t, loadJSONConfig(path, &c))

	assert.Equal(t, "9000", c.AppPort)
	assert.Equal(t, []string{"https://digest.example"}, c.AllowedOrigins)
	assert.Equal(t, 30, c.RateLimitPerMinute)
	assert.Equal(t, "mysql", c.DBDriver)
	assert.True(t, c.AutoMigrate)
	assert.Equal(t, "cloudinary", c.ImageBackend)
	assert.Equal(t, "demo", c.CloudinaryCloudName)
}

func TestLoadJSONConfig_MissingFile(t *testing.T) {
	var c AppConfig
	assert.NoError(t, loadJSONConfig(filepath.Join(t.TempDir(), "nope.json"), &c))
}

func TestOpenDatabase_UnsupportedDriver(t *testing.T) {
	_, err := OpenDatabase(AppConfig{DBDriver: "oracle"})
	assert.Error(t, err)
}
