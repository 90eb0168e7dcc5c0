package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad(t *testing.T) {
	tests := []struct {
		name      string
		filePath  string
		wantErr   bool
		errString string
	}{
		{name: "api config", filePath: "testdata/api.yaml"},
		{name: "worker config", filePath: "testdata/worker.yaml"},
		{name: "crawler config", filePath: "testdata/crawler.yaml"},
		{
			name:      "non-existent file",
			filePath:  "testdata/nonexistent.yaml",
			wantErr:   true,
			errString: "failed to read config file",
		},
		{
			name:      "malformed yaml",
			filePath:  "testdata/malformed.yaml",
			wantErr:   true,
			errString: "failed to parse config file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load(tt.filePath)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errString)
				assert.Nil(t, cfg)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, cfg)
		})
	}
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("JOBFEED_TEST_DB_PASSWORD", "s3cret")
	t.Setenv("JOBFEED_TEST_JWT_SECRET", testSecret)

	cfg, err := Load("testdata/api.yaml")
	require.NoError(t, err)

	assert.Equal(t, "s3cret", cfg.Database.Password)
	assert.Equal(t, testSecret, cfg.Auth.JWTSecret)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "notifications", cfg.RabbitMQ.Exchange.Name)
	assert.Equal(t, 3, cfg.RateLimit.Requests)
	assert.Equal(t, 30*time.Second, cfg.RateLimit.Window)
	assert.Equal(t, []string{"https://jobfeed.vn"}, cfg.CORS.AllowedOrigins)
	assert.True(t, cfg.Redis.Enabled())
	assert.NoError(t, cfg.ValidateAPIConfig())
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("testdata/worker.yaml")
	require.NoError(t, err)

	assert.Equal(t, 4, cfg.Worker.Concurrency)
	assert.Equal(t, 4, cfg.Worker.PrefetchCount)
	assert.Equal(t, 20*time.Second, cfg.Worker.SendTimeout)
	assert.Equal(t, 30*time.Second, cfg.Worker.ShutdownTimeout)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Equal(t, "direct", cfg.RabbitMQ.Exchange.Type)
	assert.Equal(t, 3, cfg.RabbitMQ.Publish.RetryAttempts)
	assert.Equal(t, 2.0, cfg.RabbitMQ.Publish.BackoffMultiplier)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 60, cfg.RateLimit.Requests)
	assert.Equal(t, time.Minute, cfg.RateLimit.Window)
	assert.Empty(t, cfg.Server.TrustedProxies)
	assert.NoError(t, cfg.ValidateWorkerConfig())
}

func TestLoad_Crawler(t *testing.T) {
	cfg, err := Load("testdata/crawler.yaml")
	require.NoError(t, err)

	assert.Len(t, cfg.Crawler.URLs, 2)
	assert.Equal(t, 20, cfg.Crawler.Limit)
	assert.Equal(t, 2*time.Second, cfg.Crawler.Delay)
	assert.Equal(t, 6*time.Hour, cfg.Crawler.Schedule)
	assert.Equal(t, 3, cfg.Crawler.MaxRetries)
	assert.Equal(t, "data/checkpoints", cfg.Crawler.CheckpointDir)
	assert.Equal(t, 30*24*time.Hour, cfg.Crawler.DedupTTL)
	assert.Equal(t, 4, cfg.Normalizer.ClassifierConcurrency)
	assert.NoError(t, cfg.ValidateCrawlerConfig())
	assert.NoError(t, cfg.ValidateDatabase())
}

func validAPIConfig() *Config {
	cfg := &Config{
		Server:   ServerConfig{Port: 8080},
		Database: DatabaseConfig{Host: "localhost", Port: 5432, Database: "jobfeed"},
		RabbitMQ: RabbitMQConfig{
			Host:     "localhost",
			Port:     5672,
			Exchange: ExchangeConfig{Name: "notifications"},
			Queue:    QueueConfig{Name: "notifications.email"},
		},
		Auth: AuthConfig{JWTSecret: testSecret},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestConfig_ValidateAPIConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		errString string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "port too low", mutate: func(c *Config) { c.Server.Port = 0 }, errString: "invalid server port"},
		{name: "port too high", mutate: func(c *Config) { c.Server.Port = 70000 }, errString: "invalid server port"},
		{name: "no database host", mutate: func(c *Config) { c.Database.Host = "" }, errString: "database host is required"},
		{name: "database url wins", mutate: func(c *Config) {
			c.Database = DatabaseConfig{URL: "postgres://u:p@db/jobfeed"}
		}},
		{name: "bad database port", mutate: func(c *Config) { c.Database.Port = -1 }, errString: "invalid database port"},
		{name: "no database name", mutate: func(c *Config) { c.Database.Database = "" }, errString: "database name is required"},
		{name: "no rabbitmq host", mutate: func(c *Config) { c.RabbitMQ.Host = "" }, errString: "rabbitmq host is required"},
		{name: "no exchange", mutate: func(c *Config) { c.RabbitMQ.Exchange.Name = "" }, errString: "rabbitmq exchange name is required"},
		{name: "no queue", mutate: func(c *Config) { c.RabbitMQ.Queue.Name = "" }, errString: "rabbitmq queue name is required"},
		{name: "short secret", mutate: func(c *Config) { c.Auth.JWTSecret = "short" }, errString: "jwt_secret"},
		{name: "bad redis url", mutate: func(c *Config) { c.Redis.URL = "http://localhost" }, errString: "invalid redis url"},
		{name: "trusted proxy ip and cidr", mutate: func(c *Config) {
			c.Server.TrustedProxies = []string{"10.0.0.1", "172.16.0.0/12"}
		}},
		{name: "bad trusted proxy", mutate: func(c *Config) {
			c.Server.TrustedProxies = []string{"lb.internal"}
		}, errString: "trusted_proxies"},
		{name: "negative rate limit", mutate: func(c *Config) { c.RateLimit.Requests = -1 }, errString: "rate_limit requests"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validAPIConfig()
			tt.mutate(cfg)

			err := cfg.ValidateAPIConfig()
			if tt.errString == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errString)
		})
	}
}

func TestConfig_ValidateWorkerConfig(t *testing.T) {
	base := func() *Config {
		cfg := validAPIConfig()
		cfg.SMTP = SMTPConfig{Host: "smtp.example.com", Port: 587, From: "no-reply@jobfeed.vn"}
		return cfg
	}

	tests := []struct {
		name      string
		mutate    func(c *Config)
		errString string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "zero concurrency", mutate: func(c *Config) { c.Worker.Concurrency = 0 }, errString: "worker concurrency"},
		{name: "zero send timeout", mutate: func(c *Config) { c.Worker.SendTimeout = 0 }, errString: "worker send_timeout"},
		{name: "no smtp host", mutate: func(c *Config) { c.SMTP.Host = "" }, errString: "smtp host is required"},
		{name: "bad smtp port", mutate: func(c *Config) { c.SMTP.Port = 0 }, errString: "invalid smtp port"},
		{name: "no from", mutate: func(c *Config) { c.SMTP.From = "" }, errString: "smtp from address"},
		{name: "no rabbitmq", mutate: func(c *Config) { c.RabbitMQ.Host = "" }, errString: "rabbitmq host is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)

			err := cfg.ValidateWorkerConfig()
			if tt.errString == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errString)
		})
	}
}

func TestConfig_ValidateCrawlerConfig(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(c *Config)
		errString string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "negative limit", mutate: func(c *Config) { c.Crawler.Limit = -1 }, errString: "crawler limit"},
		{name: "negative delay", mutate: func(c *Config) { c.Crawler.Delay = -time.Second }, errString: "crawler delay"},
		{name: "relative url", mutate: func(c *Config) { c.Crawler.URLs = []string{"/jobs/1"} }, errString: "invalid crawler url"},
		{name: "ftp url", mutate: func(c *Config) { c.Crawler.URLs = []string{"ftp://x.vn/1"} }, errString: "invalid crawler url"},
		{name: "negative schedule", mutate: func(c *Config) { c.Crawler.Schedule = -time.Minute }, errString: "crawler schedule"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Crawler: CrawlerConfig{URLs: []string{"https://x.vn/1"}}}
			cfg.ApplyDefaults()
			tt.mutate(cfg)

			err := cfg.ValidateCrawlerConfig()
			if tt.errString == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errString)
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("JOBFEED_TEST_DOTENV=from-file\n"), 0o600))

	// registers cleanup, then unset so godotenv may fill it
	t.Setenv("JOBFEED_TEST_DOTENV", "")
	require.NoError(t, os.Unsetenv("JOBFEED_TEST_DOTENV"))

	require.NoError(t, LoadDotEnv(filepath.Join(dir, "missing.env"), path))
	assert.Equal(t, "from-file", os.Getenv("JOBFEED_TEST_DOTENV"))
}

func TestPathFromEnv(t *testing.T) {
	t.Setenv("JOBFEED_TEST_CONFIG_PATH", "")
	assert.Equal(t, "configs/api-service/config.yaml", PathFromEnv("JOBFEED_TEST_CONFIG_PATH", "configs/api-service/config.yaml"))

	t.Setenv("JOBFEED_TEST_CONFIG_PATH", "/etc/jobfeed.yaml")
	assert.Equal(t, "/etc/jobfeed.yaml", PathFromEnv("JOBFEED_TEST_CONFIG_PATH", "x"))
}
