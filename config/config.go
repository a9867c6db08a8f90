package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort  string `mapstructure:"APP_PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Catalog provider (paginated read API).
	CatalogAPIToken   string `mapstructure:"CATALOG_API_TOKEN"`
	CatalogBaseURL    string `mapstructure:"CATALOG_BASE_URL"`
	CatalogTimeoutSec int    `mapstructure:"CATALOG_TIMEOUT_SEC"`

	// Catalog cache.
	CacheFile          string `mapstructure:"CACHE_FILE"`
	CacheFreshnessHrs  int    `mapstructure:"CACHE_FRESHNESS_HOURS"`
	RefreshIntervalHrs int    `mapstructure:"REFRESH_INTERVAL_HOURS"`

	// Gemini (language-model collaborator).
	GeminiAPIKey  string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel   string `mapstructure:"GEMINI_MODEL"`
	LLMTimeoutSec int    `mapstructure:"LLM_TIMEOUT_SEC"`

	// Decisions below this confidence level prompt the user for
	// confirmation instead of being auto-accepted.
	AcceptConfidence string `mapstructure:"ACCEPT_CONFIDENCE"`

	// Redis configuration (conversation context store, refresh queue).
	RedisAddr      string `mapstructure:"REDIS_ADDR"`
	RedisPassword  string `mapstructure:"REDIS_PASSWORD"`
	RedisContextDB int    `mapstructure:"REDIS_CONTEXT_DB"`
	RedisQueueDB   int    `mapstructure:"REDIS_QUEUE_DB"`

	// Mongo (chat turn log).
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`
}

var AppConfig Config

func LoadConfig() {
	// Look for a config file named "config.yaml" in the current and "config" directory.
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	// Automatically use environment variables where available.
	viper.AutomaticEnv()

	// Set default values.
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("CATALOG_BASE_URL", "https://api.printify.com/v1")
	viper.SetDefault("CATALOG_TIMEOUT_SEC", 30)
	viper.SetDefault("CACHE_FILE", "product_cache.json")
	viper.SetDefault("CACHE_FRESHNESS_HOURS", 24)
	viper.SetDefault("REFRESH_INTERVAL_HOURS", 24)
	viper.SetDefault("GEMINI_MODEL", "models/gemini-1.5-pro")
	viper.SetDefault("LLM_TIMEOUT_SEC", 10)
	viper.SetDefault("ACCEPT_CONFIDENCE", "low")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CONTEXT_DB", 0)
	viper.SetDefault("REDIS_QUEUE_DB", 1)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "merchify")

	if err := viper.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	if err := viper.Unmarshal(&AppConfig); err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
