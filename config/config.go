package config

import (
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	DatabaseURL       string `mapstructure:"DATABASE_URL"`
	DatabaseName      string `mapstructure:"DATABASE_NAME"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisLockDB   int    `mapstructure:"REDIS_LOCK_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Scheduling rule limits.
	MaxDailyMinutes        int `mapstructure:"MAX_DAILY_MINUTES"`
	MaxWeeklyMinutes       int `mapstructure:"MAX_WEEKLY_MINUTES"`
	MinBreakMinutes        int `mapstructure:"MIN_BREAK_MINUTES"`
	MaxContinuousMinutes   int `mapstructure:"MAX_CONTINUOUS_MINUTES"`
	TravelTimeFloorMinutes int `mapstructure:"TRAVEL_TIME_FLOOR_MINUTES"`

	// Replacement matching.
	DefaultSearchRadiusKm float64 `mapstructure:"DEFAULT_SEARCH_RADIUS_KM"`
	MaxProposalResults    int     `mapstructure:"MAX_PROPOSAL_RESULTS"`

	// Conflict report cache TTL in minutes.
	ReportCacheTTLMin int `mapstructure:"REPORT_CACHE_TTL_MIN"`

	// Firebase service account file for push notifications.
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
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
	viper.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_CACHE_DB", 0)
	viper.SetDefault("REDIS_LOCK_DB", 1)
	viper.SetDefault("REDIS_QUEUE_DB", 2)
	viper.SetDefault("DATABASE_URL", "mongodb://localhost:27017")
	viper.SetDefault("DATABASE_NAME", "planora")
	viper.SetDefault("MAX_DAILY_MINUTES", 600)
	viper.SetDefault("MAX_WEEKLY_MINUTES", 2880)
	viper.SetDefault("MIN_BREAK_MINUTES", 30)
	viper.SetDefault("MAX_CONTINUOUS_MINUTES", 360)
	viper.SetDefault("TRAVEL_TIME_FLOOR_MINUTES", 15)
	viper.SetDefault("DEFAULT_SEARCH_RADIUS_KM", 25.0)
	viper.SetDefault("MAX_PROPOSAL_RESULTS", 5)
	viper.SetDefault("REPORT_CACHE_TTL_MIN", 60)
	viper.SetDefault("FIREBASE_CREDENTIALS_FILE", "serviceAccountKey.json")

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
