package config

type Config struct {
	Port          int    `mapstructure:"port"`
	LogLevel      string `mapstructure:"log_level"`
	LogFile       string `mapstructure:"log_file"`
	NATSURL       string `mapstructure:"nats_url"`
	RedisURL      string `mapstructure:"redis_url"`
	SyncInterval  int    `mapstructure:"sync_interval_seconds"`
	HistoryLimit  int    `mapstructure:"history_limit"`
	SendRateBurst int    `mapstructure:"send_rate_burst"`
}

const (
	DefaultSyncInterval  = 5
	DefaultHistoryLimit  = 100
	DefaultSendRateBurst = 5
)

// Normalize fills zero-valued tuning fields with their defaults.
func (c Config) Normalize() Config {
	if c.SyncInterval <= 0 {
		c.SyncInterval = DefaultSyncInterval
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = DefaultHistoryLimit
	}
	if c.SendRateBurst <= 0 {
		c.SendRateBurst = DefaultSendRateBurst
	}
	return c
}
