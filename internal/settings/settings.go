// Package settings loads service-level settings (addresses, credentials,
// intervals) from an optional YAML file plus environment variables. Guild
// moderation rules are a separate concern, handled by the config package.
package settings

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings holds the runtime settings shared by the services.
type Settings struct {
	NATSURL     string `mapstructure:"NATS_URL"`
	RedisAddr   string `mapstructure:"REDIS_ADDR"`
	MetricsAddr string `mapstructure:"METRICS_ADDR"`

	// Guild config source: "dir" reads YAML files from ConfigDir,
	// "postgres" reads documents from PostgresDSN.
	ConfigSource   string        `mapstructure:"CONFIG_SOURCE"`
	ConfigDir      string        `mapstructure:"CONFIG_DIR"`
	PostgresDSN    string        `mapstructure:"POSTGRES_DSN"`
	ReloadInterval time.Duration `mapstructure:"RELOAD_INTERVAL"`

	// Spam tracker maintenance.
	ReapInterval time.Duration `mapstructure:"REAP_INTERVAL"`
	SpamIdleTTL  time.Duration `mapstructure:"SPAM_IDLE_TTL"`

	// Gateway connection to the chat platform.
	GatewayURL   string `mapstructure:"GATEWAY_URL"`
	GatewayToken string `mapstructure:"GATEWAY_TOKEN"`
}

// Load reads settings for the named service from warden.yaml (if present)
// and the environment, with env keys prefixed WARDEN_ (WARDEN_NATS_URL,
// WARDEN_REDIS_ADDR, ...).
func Load(serviceName string) (*Settings, error) {
	v := viper.New()
	v.SetConfigName("warden")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.SetEnvPrefix("WARDEN")

	v.SetDefault("NATS_URL", "nats://localhost:4222")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("METRICS_ADDR", ":9090")
	v.SetDefault("CONFIG_SOURCE", "dir")
	v.SetDefault("CONFIG_DIR", "./guilds")
	v.SetDefault("POSTGRES_DSN", "")
	v.SetDefault("RELOAD_INTERVAL", "30s")
	v.SetDefault("REAP_INTERVAL", "5m")
	v.SetDefault("SPAM_IDLE_TTL", "10m")
	v.SetDefault("GATEWAY_URL", "")
	v.SetDefault("GATEWAY_TOKEN", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("settings: read config for %s: %w", serviceName, err)
		}
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return nil, fmt.Errorf("settings: unmarshal for %s: %w", serviceName, err)
	}

	switch s.ConfigSource {
	case "dir", "postgres":
	default:
		return nil, fmt.Errorf("settings: unknown CONFIG_SOURCE %q (want dir or postgres)", s.ConfigSource)
	}

	return &s, nil
}
