package config

import "github.com/spf13/viper"

// ClientConfig drives touristctl.
type ClientConfig struct {
	APIURL        string `mapstructure:"API_URL"`
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	Profile       string `mapstructure:"TOURISTCTL_PROFILE"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`
}

func LoadClient() ClientConfig {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("API_URL", "http://localhost:8080")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("TOURISTCTL_PROFILE", "default")
	v.SetDefault("LOG_LEVEL", "warn")

	var cfg ClientConfig
	_ = v.Unmarshal(&cfg)
	return cfg
}

// Server returns the subset of settings shared with the server connectors.
func (c ClientConfig) Server() Config {
	return Config{RedisAddr: c.RedisAddr, RedisPassword: c.RedisPassword}
}
