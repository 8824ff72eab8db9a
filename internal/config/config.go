package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Game     GameConfig     `mapstructure:"game"`
	Loop     LoopConfig     `mapstructure:"loop"`
	Hub      HubConfig      `mapstructure:"hub"`
	Rate     RateConfig     `mapstructure:"rate"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type AuthConfig struct {
	// AdminKey guards the operator override endpoint.
	AdminKey string `mapstructure:"admin_key"`
	// RequireToken controls whether realtime tokens must resolve through
	// a provider. When false, any non-empty token is accepted as the
	// user id (development mode).
	RequireToken bool `mapstructure:"require_token"`
	// Tokens is a static token -> user id map used when Redis is not
	// configured.
	Tokens map[string]string `mapstructure:"tokens"`
}

type GameConfig struct {
	RTP             float64 `mapstructure:"rtp"`              // return-to-player percentage
	GrowthRate      float64 `mapstructure:"growth_rate"`      // multiplier exponent per elapsed millisecond
	MinBet          float64 `mapstructure:"min_bet"`
	MaxBet          float64 `mapstructure:"max_bet"`
	StartingBalance float64 `mapstructure:"starting_balance"` // seed balance for unseen wallets
}

// LoopConfig is fixed at startup and drives the round timeline.
type LoopConfig struct {
	BettingWindowMs int64 `mapstructure:"betting_window_ms"`
	SettleDelayMs   int64 `mapstructure:"settle_delay_ms"`
	TickIntervalMs  int64 `mapstructure:"tick_interval_ms"`
	HistorySize     int   `mapstructure:"history_size"`
}

func (c LoopConfig) Validate() error {
	if c.BettingWindowMs <= 0 {
		return fmt.Errorf("loop.betting_window_ms must be positive, got %d", c.BettingWindowMs)
	}
	if c.SettleDelayMs <= 0 {
		return fmt.Errorf("loop.settle_delay_ms must be positive, got %d", c.SettleDelayMs)
	}
	if c.TickIntervalMs <= 0 {
		return fmt.Errorf("loop.tick_interval_ms must be positive, got %d", c.TickIntervalMs)
	}
	if c.HistorySize < 1 {
		return fmt.Errorf("loop.history_size must be >= 1, got %d", c.HistorySize)
	}
	return nil
}

type HubConfig struct {
	AuthTimeoutMs int64 `mapstructure:"auth_timeout_ms"`
	SendBuffer    int   `mapstructure:"send_buffer"`
}

type RateConfig struct {
	BetsPerSecond float64 `mapstructure:"bets_per_second"`
	Burst         int     `mapstructure:"burst"`
}

type DatabaseConfig struct {
	DSN string `mapstructure:"dsn"`
}

type RedisConfig struct {
	Addr       string `mapstructure:"addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	HistoryKey string `mapstructure:"history_key"`
	HistoryMax int    `mapstructure:"history_max"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./configs")

	// Environment variables support
	// e.g. CRASHGATE_LOOP_TICK_INTERVAL_MS
	viper.SetEnvPrefix("crashgate")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("log.level", "info")
	viper.SetDefault("game.rtp", 97.0)
	viper.SetDefault("game.growth_rate", 0.00006)
	viper.SetDefault("game.min_bet", 0.5)
	viper.SetDefault("game.max_bet", 500.0)
	viper.SetDefault("game.starting_balance", 1000.0)
	viper.SetDefault("loop.betting_window_ms", 4000)
	viper.SetDefault("loop.settle_delay_ms", 3000)
	viper.SetDefault("loop.tick_interval_ms", 100)
	viper.SetDefault("loop.history_size", 30)
	viper.SetDefault("hub.auth_timeout_ms", 5000)
	viper.SetDefault("hub.send_buffer", 256)
	viper.SetDefault("rate.bets_per_second", 5.0)
	viper.SetDefault("rate.burst", 10)
	viper.SetDefault("auth.require_token", false)
	viper.SetDefault("redis.history_key", "game:history")
	viper.SetDefault("redis.history_max", 100)
	viper.SetDefault("metrics.enabled", true)
	viper.SetDefault("metrics.path", "/metrics")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found, using defaults and env vars")
		} else {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Loop.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}
