package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfigYAML = `
server:
  port: 8081
  mode: debug
log:
  level: debug
  format: console
dataset:
  source: csv
  path: ./testdata/reviews.csv
  delimiter: ";"
  topics: ["Service", "Preis"]
  columns:
    entity: Standort
  axis_start: 2020Q1
  axis_end: 2021Q4
redis:
  enabled: true
  addr: cache:6379
  default_ttl: 2m
analytics:
  percent_threshold: 15
  rating_threshold: 0.5
  bound_upper: 4
  workers: 2
`

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)
	return path
}

func TestLoad_FromFile_ValidConfig(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8081, cfg.Server.Port)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, ";", cfg.Dataset.Delimiter)
	assert.Equal(t, []string{"Service", "Preis"}, cfg.Dataset.Topics)
	assert.Equal(t, "Standort", cfg.Dataset.Columns.Entity)
	assert.Equal(t, "date", cfg.Dataset.Columns.Date)
	assert.Equal(t, "2021Q4", cfg.Dataset.AxisEnd)
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, 2*time.Minute, cfg.Redis.DefaultTTL)
	assert.Equal(t, 15.0, cfg.Analytics.PercentThreshold)
	assert.Equal(t, 0.5, cfg.Analytics.RatingThreshold)
	assert.Equal(t, 4, cfg.Analytics.BoundUpper)
	assert.Equal(t, DefaultRedisTTL, cfg.Analytics.CacheTTL)
}

func TestLoad_SampleConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, SourceCSV, cfg.Dataset.Source)
	assert.Equal(t, DefaultAxisEnd, cfg.Dataset.AxisEnd)
	assert.False(t, cfg.Redis.Enabled)
}

func TestLoad_FromFile_FileNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_FromFile_InvalidYAML(t *testing.T) {
	path := createTempConfigFile(t, "server: [")
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoad_FromFile_ValidationFailure(t *testing.T) {
	path := createTempConfigFile(t, "server:\n  port: 70000\n")
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server.port")
}

func TestLoad_MinimalFileUsesDefaults(t *testing.T) {
	path := createTempConfigFile(t, "log:\n  level: warn\n")
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, SourceCSV, cfg.Dataset.Source)
	assert.Equal(t, DefaultPercentThreshold, cfg.Analytics.PercentThreshold)
	assert.Equal(t, DefaultWorkers, cfg.Analytics.Workers)
	assert.False(t, cfg.Redis.Enabled)
	assert.True(t, cfg.Metrics.Enabled)
}

func TestLoad_ExplicitZeroPercentThreshold(t *testing.T) {
	path := createTempConfigFile(t, "analytics:\n  percent_threshold: 0\n")
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.Analytics.PercentThreshold)
}

func TestLoad_EnvOverride(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	t.Setenv("REVIEWPULSE_SERVER_PORT", "9999")
	t.Setenv("REVIEWPULSE_REDIS_ADDR", "redis.internal:6380")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
}

func TestLoad_EnvOverride_KeyAbsentFromFile(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	t.Setenv("REVIEWPULSE_DATASET_COLUMNS_TEXT", "Bewertung")
	t.Setenv("REVIEWPULSE_TRACING_SERVICE_NAME", "reviewpulse-test")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Bewertung", cfg.Dataset.Columns.Text)
	assert.Equal(t, "reviewpulse-test", cfg.Tracing.ServiceName)
}

func TestLoadFromEnv_NoFile(t *testing.T) {
	t.Setenv("REVIEWPULSE_DATASET_SOURCE", "postgres")
	t.Setenv("REVIEWPULSE_DATABASE_USER", "rp")
	t.Setenv("REVIEWPULSE_DATABASE_HOST", "db")
	t.Setenv("REVIEWPULSE_ANALYTICS_RATING_THRESHOLD", "0.7")
	t.Setenv("REVIEWPULSE_DATASET_TOPICS", "Service,Preis")

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, SourcePostgres, cfg.Dataset.Source)
	assert.Equal(t, "db", cfg.Database.Host)
	assert.Equal(t, 0.7, cfg.Analytics.RatingThreshold)
	assert.Equal(t, []string{"Service", "Preis"}, cfg.Dataset.Topics)
}

func TestLoadFromEnv_ValidationFailure(t *testing.T) {
	t.Setenv("REVIEWPULSE_DATASET_SOURCE", "postgres")
	_, err := LoadFromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database.user")
}

func TestLoadOrEnv(t *testing.T) {
	cfg, err := LoadOrEnv("")
	require.NoError(t, err)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)

	cfg, err = LoadOrEnv(createTempConfigFile(t, validConfigYAML))
	require.NoError(t, err)
	assert.Equal(t, 8081, cfg.Server.Port)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("REVIEWPULSE_LOG_LEVEL=error\n"), 0644))
	t.Setenv("REVIEWPULSE_LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("REVIEWPULSE_LOG_LEVEL"))

	require.NoError(t, LoadDotEnv(envFile, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "error", os.Getenv("REVIEWPULSE_LOG_LEVEL"))

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoadDotEnv_DoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("REVIEWPULSE_LOG_LEVEL=error\n"), 0644))
	t.Setenv("REVIEWPULSE_LOG_LEVEL", "debug")

	require.NoError(t, LoadDotEnv(envFile))
	assert.Equal(t, "debug", os.Getenv("REVIEWPULSE_LOG_LEVEL"))
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)

	changed := make(chan *Config, 16)
	require.NoError(t, Watch(path, func(c *Config) {
		select {
		case changed <- c:
		default:
		}
	}, nil))

	updated := []byte("log:\n  level: error\n")
	require.NoError(t, os.WriteFile(path, updated, 0644))

	// A truncating write may surface as more than one event.
	deadline := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-changed:
			if cfg.Log.Level == "error" {
				return
			}
		case <-deadline:
			t.Fatal("config change was not observed")
		}
	}
}

func TestWatch_MissingFile(t *testing.T) {
	err := Watch(filepath.Join(t.TempDir(), "missing.yaml"), func(*Config) {}, nil)
	assert.Error(t, err)
}

func TestMustLoad_Success(t *testing.T) {
	path := createTempConfigFile(t, validConfigYAML)
	assert.NotPanics(t, func() {
		MustLoad(path)
	})
}

func TestMustLoad_Panic(t *testing.T) {
	assert.Panics(t, func() {
		MustLoad(filepath.Join(t.TempDir(), "non_existent.yaml"))
	})
}

//Personal.AI order the ending
