// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the process configuration shared by every cmd/ binary.
type Config struct {
	Env               string
	Port              string
	DatabaseURL       string
	CatalogSource     string
	CatalogFile       string
	CatalogServiceURL string
	CatalogRefresh    time.Duration
	AccountServiceURL string
	RedisAddr         string
	RedisChannel      string
	ContactPhone      string
	LogMode           string
	OTelEnabled       bool
	PurchaseRate      int
	PurchaseBurst     int
	ShutdownTimeout   time.Duration
}

// Load reads defaults, an optional YAML file named by CONFIG_FILE, then the environment.
// Environment variables use the upper-cased key, e.g. DATABASE_URL for database_url.
func Load(defaultPort string) (Config, error) {
	v := viper.New()

	v.SetDefault("env", "dev")
	v.SetDefault("port", defaultPort)
	v.SetDefault("database_url", "")
	v.SetDefault("catalog_source", "file")
	v.SetDefault("catalog_file", "catalog.yaml")
	v.SetDefault("catalog_service_url", "http://localhost:8081")
	v.SetDefault("catalog_refresh_interval", 30*time.Second)
	v.SetDefault("account_service_url", "http://localhost:8082")
	v.SetDefault("redis_addr", "")
	v.SetDefault("redis_channel", "coursemarket.purchases")
	v.SetDefault("contact_phone", "")
	v.SetDefault("log_mode", "dev")
	v.SetDefault("otel_enabled", false)
	v.SetDefault("purchase_rate_per_minute", 30)
	v.SetDefault("purchase_burst", 5)
	v.SetDefault("shutdown_timeout", 10*time.Second)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config_file"); file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := Config{
		Env:               v.GetString("env"),
		Port:              v.GetString("port"),
		DatabaseURL:       v.GetString("database_url"),
		CatalogSource:     strings.ToLower(v.GetString("catalog_source")),
		CatalogFile:       v.GetString("catalog_file"),
		CatalogServiceURL: v.GetString("catalog_service_url"),
		CatalogRefresh:    v.GetDuration("catalog_refresh_interval"),
		AccountServiceURL: v.GetString("account_service_url"),
		RedisAddr:         v.GetString("redis_addr"),
		RedisChannel:      v.GetString("redis_channel"),
		ContactPhone:      v.GetString("contact_phone"),
		LogMode:           v.GetString("log_mode"),
		OTelEnabled:       v.GetBool("otel_enabled"),
		PurchaseRate:      v.GetInt("purchase_rate_per_minute"),
		PurchaseBurst:     v.GetInt("purchase_burst"),
		ShutdownTimeout:   v.GetDuration("shutdown_timeout"),
	}

	switch cfg.CatalogSource {
	case "file", "postgres":
	default:
		return Config{}, fmt.Errorf("unknown catalog_source %q", cfg.CatalogSource)
	}
	if cfg.PurchaseRate <= 0 {
		return Config{}, fmt.Errorf("purchase_rate_per_minute must be positive, got %d", cfg.PurchaseRate)
	}
	return cfg, nil
}
