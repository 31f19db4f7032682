package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	sharedConfig "mallhub/internal/shared/config"
)

type Config struct {
	Server   sharedConfig.ServerConfig   `mapstructure:"server" yaml:"server"`
	Database sharedConfig.DatabaseConfig `mapstructure:"database" yaml:"database"`
	Logger   sharedConfig.LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	Auth     sharedConfig.AuthConfig     `mapstructure:"auth" yaml:"auth"`
	Redis    sharedConfig.RedisConfig    `mapstructure:"redis" yaml:"redis"`
	Tenant   sharedConfig.TenantConfig   `mapstructure:"tenant" yaml:"tenant"`
	Payment  sharedConfig.PaymentConfig  `mapstructure:"payment" yaml:"payment"`
	Webhook  sharedConfig.WebhookConfig  `mapstructure:"webhook" yaml:"webhook"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load reads configs/config.yaml (optional) and MALLHUB_* environment
// variables. A .env file in the working directory is loaded first so its
// values are visible both to viper and to credential indirection.
func Load(env string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")

	v.SetEnvPrefix("MALLHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	appConfigMu.Lock()
	appConfig = &cfg
	appConfigMu.Unlock()

	return &cfg, nil
}

func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.shutdown_timeout", 30)

	v.SetDefault("database.driver", "mysql")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "mallhub_dev")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	v.SetDefault("auth.jwt.secret", "change-me-in-production")
	v.SetDefault("auth.jwt.issuer", "mallhub")

	v.SetDefault("redis.enabled", true)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)

	v.SetDefault("tenant.header", "X-Tenant-ID")
	v.SetDefault("tenant.query_param", "tenant")

	v.SetDefault("payment.notify_base_url", "http://localhost:8080")
	v.SetDefault("payment.min_amounts", map[string]int64{
		"usd": 50,
		"eur": 50,
		"gbp": 30,
		"try": 2500,
		"jpy": 50,
	})
	v.SetDefault("payment.intent_ttl_minutes", 24*60)
	v.SetDefault("payment.expiry_check_minutes", 10)
	v.SetDefault("payment.checkout_lock_seconds", 30)
	v.SetDefault("payment.provider_timeout_sec", 15)
	v.SetDefault("payment.webhook_rate_limit", 300)

	v.SetDefault("webhook.max_in_flight", 64)
	v.SetDefault("webhook.response_body_limit", 2048)
	v.SetDefault("webhook.allow_private_targets", false)
	v.SetDefault("webhook.ssrf_fail_closed", false)
}
