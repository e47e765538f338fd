package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	CORS     CORSConfig
	Log      LogConfig
	Planner  PlannerConfig
	Features FeatureConfig
	Cache    CacheConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Issuer     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// PlannerConfig holds the defaults applied when a request omits a parameter.
type PlannerConfig struct {
	MaxWorkload            int
	MaxElectiveWorkload    int
	CurrentStudentSemester int
	BypassCapstone         bool
	Strategy               string
	MaxPerRound            int
	MaxRounds              int
	MaxEmptyRounds         int
	PreferredPeriods       []string
	PreviewTTL             time.Duration
}

// FeatureConfig toggles the optional outer layers.
type FeatureConfig struct {
	Persistence bool
	Cache       bool
	Auth        bool
	Metrics     bool
}

// CacheConfig tunes the Redis result cache.
type CacheConfig struct {
	TTL time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Issuer:     v.GetString("JWT_ISSUER"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Planner = PlannerConfig{
		MaxWorkload:            v.GetInt("PLANNER_MAX_WORKLOAD"),
		MaxElectiveWorkload:    v.GetInt("PLANNER_MAX_ELECTIVE_WORKLOAD"),
		CurrentStudentSemester: v.GetInt("PLANNER_CURRENT_SEMESTER"),
		BypassCapstone:         v.GetBool("PLANNER_BYPASS_CAPSTONE"),
		Strategy:               v.GetString("PLANNER_STRATEGY"),
		MaxPerRound:            v.GetInt("PLANNER_MAX_PER_ROUND"),
		MaxRounds:              v.GetInt("PLANNER_MAX_ROUNDS"),
		MaxEmptyRounds:         v.GetInt("PLANNER_MAX_EMPTY_ROUNDS"),
		PreferredPeriods:       splitAndTrim(v.GetString("PLANNER_PREFERRED_PERIODS")),
		PreviewTTL:             parseDuration(v.GetString("PLANNER_PREVIEW_TTL"), 30*time.Minute),
	}

	cfg.Features = FeatureConfig{
		Persistence: v.GetBool("ENABLE_PERSISTENCE"),
		Cache:       v.GetBool("ENABLE_CACHE"),
		Auth:        v.GetBool("ENABLE_AUTH"),
		Metrics:     v.GetBool("ENABLE_METRICS"),
	}

	cfg.Cache = CacheConfig{
		TTL: parseDuration(v.GetString("CACHE_TTL"), 10*time.Minute),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "study_planner")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "study-planner")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("PLANNER_MAX_WORKLOAD", 800)
	v.SetDefault("PLANNER_MAX_ELECTIVE_WORKLOAD", 400)
	v.SetDefault("PLANNER_CURRENT_SEMESTER", 2)
	v.SetDefault("PLANNER_BYPASS_CAPSTONE", true)
	v.SetDefault("PLANNER_STRATEGY", "score")
	v.SetDefault("PLANNER_MAX_PER_ROUND", 7)
	v.SetDefault("PLANNER_MAX_ROUNDS", 20)
	v.SetDefault("PLANNER_MAX_EMPTY_ROUNDS", 3)
	v.SetDefault("PLANNER_PREFERRED_PERIODS", "morning,afternoon,evening")
	v.SetDefault("PLANNER_PREVIEW_TTL", "30m")

	v.SetDefault("ENABLE_PERSISTENCE", false)
	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_TTL", "10m")
	v.SetDefault("ENABLE_AUTH", false)
	v.SetDefault("ENABLE_METRICS", true)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
