package config

import (
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	AI       AIConfig
	Enrich   EnrichConfig
	API      APIConfig
}

type ServerConfig struct {
	Port int
	Env  string // "development", "production"
}

type DatabaseConfig struct {
	Host    string
	Port    string
	Name    string
	User    string
	Pass    string
	Charset string
}

type RedisConfig struct {
	Addr string
	Pass string
	DB   int
}

// AIConfig points at the external AI service that generates cmdlet cards.
type AIConfig struct {
	BaseURL string
	APIKey  string
	// ItemTimeout bounds a single enrichment call; a timeout counts as a
	// per-item failure, it never stalls the whole job.
	ItemTimeout time.Duration
}

type EnrichConfig struct {
	// StaleAfter is the card age after which the stale sweep re-enriches.
	StaleAfter time.Duration
	// CardCacheTTL bounds how long a served card may live in the read cache.
	CardCacheTTL time.Duration
	// SweepEnabled turns the nightly stale sweep on.
	SweepEnabled bool
}

type APIConfig struct {
	Key string
}

// Load reads configuration from .env file and environment variables.
func Load() (*Config, error) {
	// Load .env file (ignore error if missing)
	_ = godotenv.Load()

	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("APP_PORT", 8080)
	viper.SetDefault("APP_ENV", "production")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_CHARSET", "utf8mb4")
	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("AI_SERVICE_URL", "http://localhost:8000")
	viper.SetDefault("AI_ITEM_TIMEOUT", "2m")
	viper.SetDefault("ENRICH_STALE_AFTER", "720h")
	viper.SetDefault("ENRICH_CARD_CACHE_TTL", "15m")
	viper.SetDefault("ENRICH_SWEEP_ENABLED", true)

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetInt("APP_PORT"),
			Env:  viper.GetString("APP_ENV"),
		},
		Database: loadDatabase(),
		Redis: RedisConfig{
			Addr: viper.GetString("REDIS_ADDR"),
			Pass: viper.GetString("REDIS_PASS"),
			DB:   viper.GetInt("REDIS_DB"),
		},
		AI: AIConfig{
			BaseURL:     viper.GetString("AI_SERVICE_URL"),
			APIKey:      viper.GetString("AI_SERVICE_API_KEY"),
			ItemTimeout: durationOr("AI_ITEM_TIMEOUT", 2*time.Minute),
		},
		Enrich: EnrichConfig{
			StaleAfter:   durationOr("ENRICH_STALE_AFTER", 30*24*time.Hour),
			CardCacheTTL: durationOr("ENRICH_CARD_CACHE_TTL", 15*time.Minute),
			SweepEnabled: viper.GetBool("ENRICH_SWEEP_ENABLED"),
		},
		API: APIConfig{
			Key: viper.GetString("API_KEY"),
		},
	}

	if cfg.Database.Name == "" {
		log.Println("WARNING: DB_NAME is not set")
	}

	return cfg, nil
}

// LoadDatabaseOnly reads only the database settings, for the bootstrap CLI
// path that runs before the full config is needed.
func LoadDatabaseOnly() (*DatabaseConfig, error) {
	_ = godotenv.Load()

	viper.AutomaticEnv()
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "3306")
	viper.SetDefault("DB_CHARSET", "utf8mb4")

	dbCfg := loadDatabase()
	return &dbCfg, nil
}

func loadDatabase() DatabaseConfig {
	return DatabaseConfig{
		Host:    viper.GetString("DB_HOST"),
		Port:    viper.GetString("DB_PORT"),
		Name:    viper.GetString("DB_NAME"),
		User:    viper.GetString("DB_USER"),
		Pass:    viper.GetString("DB_PASS"),
		Charset: viper.GetString("DB_CHARSET"),
	}
}

func durationOr(key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(viper.GetString(key))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// DSN returns the MySQL DSN string for GORM.
func (d *DatabaseConfig) DSN() string {
	return d.User + ":" + d.Pass + "@tcp(" + d.Host + ":" + d.Port + ")/" + d.Name + "?charset=" + d.Charset + "&parseTime=True&loc=Local"
}
