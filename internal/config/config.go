package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Environment string          `mapstructure:"environment"`
	LogLevel    string          `mapstructure:"log_level"`
	Server      ServerConfig    `mapstructure:"server"`
	Database    DatabaseConfig  `mapstructure:"database"`
	Redis       RedisConfig     `mapstructure:"redis"`
	Predictor   PredictorConfig `mapstructure:"predictor"`
	Telegram    TelegramConfig  `mapstructure:"telegram"`
	Risk        RiskConfig      `mapstructure:"risk"`
}

type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	DBName      string `mapstructure:"dbname"`
	SSLMode     string `mapstructure:"sslmode"`
	DatabaseURL string `mapstructure:"database_url"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// PredictorConfig points at the ML sidecar serving prediction records.
type PredictorConfig struct {
	ServiceURL string `mapstructure:"service_url"`
	Timeout    int    `mapstructure:"timeout"`
}

type TelegramConfig struct {
	BotToken string `mapstructure:"bot_token"`
}

// RiskConfig seeds the risk sizer's initial settings. Runtime updates go
// through the settings API and are clamped there.
type RiskConfig struct {
	MaxRiskPerTrade    float64 `mapstructure:"max_risk_per_trade"`
	KellyFraction      float64 `mapstructure:"kelly_fraction"`
	FixedFraction      float64 `mapstructure:"fixed_fraction"`
	MinConfidence      float64 `mapstructure:"min_confidence"`
	MaxPositionSize    float64 `mapstructure:"max_position_size"`
	VolatilityLookback int     `mapstructure:"volatility_lookback"`
	EmergencyStopLoss  float64 `mapstructure:"emergency_stop_loss"`
	AccountBalance     float64 `mapstructure:"account_balance"`
}

func Load() (*Config, error) {
	// Development convenience; missing .env files are fine.
	_ = godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath("./configs")
	viper.AddConfigPath(".")

	setDefaults()

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Config file not found, use defaults and environment variables
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	config.Environment = strings.ToLower(config.Environment)

	return &config, nil
}

func setDefaults() {
	// Environment
	viper.SetDefault("environment", "development")
	viper.SetDefault("log_level", "info")

	// Server
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Database
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.dbname", "nexus_signals")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.database_url", "")

	// Redis
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// Predictor sidecar
	viper.SetDefault("predictor.service_url", "http://localhost:5000")
	viper.SetDefault("predictor.timeout", 30)

	// Telegram
	viper.SetDefault("telegram.bot_token", "")

	// Risk sizing
	viper.SetDefault("risk.max_risk_per_trade", 0.02)
	viper.SetDefault("risk.kelly_fraction", 0.25)
	viper.SetDefault("risk.fixed_fraction", 0.05)
	viper.SetDefault("risk.min_confidence", 0.6)
	viper.SetDefault("risk.max_position_size", 0.1)
	viper.SetDefault("risk.volatility_lookback", 24)
	viper.SetDefault("risk.emergency_stop_loss", 0.05)
	viper.SetDefault("risk.account_balance", 10000.0)
}
