package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort         string `mapstructure:"SERVER_PORT"`
	PostgresURL        string `mapstructure:"POSTGRES_URL"`
	RedisAddr          string `mapstructure:"REDIS_ADDR"`
	RedisPassword      string `mapstructure:"REDIS_PASSWORD"`
	JWTSecret          string `mapstructure:"JWT_SECRET"`
	AuthLatencyMs      int    `mapstructure:"AUTH_LATENCY_MS"`
	ZoneSource         string `mapstructure:"ZONE_SOURCE"`
	LogLevel           string `mapstructure:"LOG_LEVEL"`
	LogFormat          string `mapstructure:"LOG_FORMAT"`
	LocationTimeoutSec int    `mapstructure:"LOCATION_TIMEOUT_SEC"`
}

func Load() Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("SERVER_PORT", ":8080")
	v.SetDefault("POSTGRES_URL", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("JWT_SECRET", "dev-secret-change-me")
	v.SetDefault("AUTH_LATENCY_MS", 1000)
	v.SetDefault("ZONE_SOURCE", "static")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("LOCATION_TIMEOUT_SEC", 10)

	var cfg Config
	_ = v.Unmarshal(&cfg)
	return cfg
}

func (c Config) AuthLatency() time.Duration {
	return time.Duration(c.AuthLatencyMs) * time.Millisecond
}

func (c Config) LocationTimeout() time.Duration {
	return time.Duration(c.LocationTimeoutSec) * time.Second
}
