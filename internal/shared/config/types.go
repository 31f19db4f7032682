package config

import (
	"fmt"
	"strings"
	"time"
)

type ServerConfig struct {
	Host            string   `mapstructure:"host" yaml:"host"`
	Port            int      `mapstructure:"port" yaml:"port"`
	Mode            string   `mapstructure:"mode" yaml:"mode"`
	BaseURL         string   `mapstructure:"base_url" yaml:"base_url"`
	AllowedOrigins  []string `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	ShutdownTimeout int      `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver" yaml:"driver"`
	Host            string `mapstructure:"host" yaml:"host"`
	Port            int    `mapstructure:"port" yaml:"port"`
	Username        string `mapstructure:"username" yaml:"username"`
	Password        string `mapstructure:"password" yaml:"password"`
	Database        string `mapstructure:"database" yaml:"database"`
	SSLMode         string `mapstructure:"ssl_mode" yaml:"ssl_mode"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns" yaml:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns" yaml:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime" yaml:"conn_max_lifetime"`
}

// GetDSN renders the connection string for the configured driver. For sqlite
// the database field is the file path.
func (d *DatabaseConfig) GetDSN() string {
	switch d.Driver {
	case "postgres":
		sslMode := d.SSLMode
		if sslMode == "" {
			sslMode = "disable"
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
			d.Host, d.Port, d.Username, d.Password, d.Database, sslMode)
	case "sqlite":
		return d.Database
	default:
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			d.Username, d.Password, d.Host, d.Port, d.Database)
	}
}

type LoggerConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"`
	OutputPath string `mapstructure:"output_path" yaml:"output_path"`
}

type JWTConfig struct {
	Secret string `mapstructure:"secret" yaml:"secret"`
	Issuer string `mapstructure:"issuer" yaml:"issuer"`
}

type AuthConfig struct {
	JWT JWTConfig `mapstructure:"jwt" yaml:"jwt"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled" yaml:"enabled"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Password string `mapstructure:"password" yaml:"password"`
	DB       int    `mapstructure:"db" yaml:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type TenantConfig struct {
	Header     string `mapstructure:"header" yaml:"header"`
	QueryParam string `mapstructure:"query_param" yaml:"query_param"`
}

type PaymentConfig struct {
	// NotifyBaseURL is the public origin providers call back on, e.g.
	// https://api.example.com. The provider path is appended.
	NotifyBaseURL       string           `mapstructure:"notify_base_url" yaml:"notify_base_url"`
	MinAmounts          map[string]int64 `mapstructure:"min_amounts" yaml:"min_amounts"`
	IntentTTLMinutes    int              `mapstructure:"intent_ttl_minutes" yaml:"intent_ttl_minutes"`
	ExpiryCheckMinutes  int              `mapstructure:"expiry_check_minutes" yaml:"expiry_check_minutes"`
	CheckoutLockSeconds int              `mapstructure:"checkout_lock_seconds" yaml:"checkout_lock_seconds"`
	ProviderTimeoutSec  int              `mapstructure:"provider_timeout_sec" yaml:"provider_timeout_sec"`
	WebhookRateLimit    int              `mapstructure:"webhook_rate_limit" yaml:"webhook_rate_limit"`
}

// MinAmount returns the configured floor for a currency, or 1 when none is
// set. Viper lower-cases map keys so lookups are case-insensitive.
func (p *PaymentConfig) MinAmount(currency string) int64 {
	for k, v := range p.MinAmounts {
		if strings.EqualFold(k, currency) && v > 0 {
			return v
		}
	}
	return 1
}

func (p *PaymentConfig) IntentTTL() time.Duration {
	return time.Duration(p.IntentTTLMinutes) * time.Minute
}

type WebhookConfig struct {
	MaxInFlight         int  `mapstructure:"max_in_flight" yaml:"max_in_flight"`
	ResponseBodyLimit   int  `mapstructure:"response_body_limit" yaml:"response_body_limit"`
	AllowPrivateTargets bool `mapstructure:"allow_private_targets" yaml:"allow_private_targets"`
	SSRFFailClosed      bool `mapstructure:"ssrf_fail_closed" yaml:"ssrf_fail_closed"`
}
