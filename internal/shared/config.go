package shared

import (
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

type Config struct {
	AppEnv         string
	LogLevel       string
	HTTPAddr       string
	MetricsAddr    string
	StoreDriver    string
	MySQLDSN       string
	RedisAddr      string
	RedisDB        int
	RedisPass      string
	StatsCacheTTL  time.Duration
	JWTSecret      string
	JWTTTL         time.Duration
	CORSOrigins    []string
	RateLimit      int
	RequestTimeout time.Duration
	Blob           BlobConfig
	SeedWorkers    int
}

type BlobConfig struct {
	BaseURL   string
	CloudName string
	APIKey    string
	APISecret string
	RPS       int
}

// Enabled reports whether image uploads can be served.
func (b BlobConfig) Enabled() bool {
	return b.CloudName != "" && b.APIKey != "" && b.APISecret != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "prod")
	v.SetDefault("LOG_LEVEL", "")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("METRICS_ADDR", "")
	v.SetDefault("STORE_DRIVER", "mysql")
	v.SetDefault("MYSQL_DSN", "root:root@tcp(localhost:3306)/reviewhub?parseTime=true&charset=utf8mb4,utf8&loc=UTC")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("STATS_CACHE_TTL_SECONDS", 0)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("JWT_TTL_HOURS", 720)
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("RATE_LIMIT_PER_MINUTE", 300)
	v.SetDefault("REQUEST_TIMEOUT_SECONDS", 15)
	v.SetDefault("BLOB_BASE_URL", "https://api.cloudinary.com")
	v.SetDefault("BLOB_CLOUD_NAME", "")
	v.SetDefault("BLOB_API_KEY", "")
	v.SetDefault("BLOB_API_SECRET", "")
	v.SetDefault("BLOB_RPS", 5)
	v.SetDefault("SEED_WORKERS", 4)
}

// Load reads an optional .env in the working directory, then the
// environment. Environment variables win.
func Load() Config {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // missing file is fine
	v.AutomaticEnv()
	setDefaults(v)

	c := Config{
		AppEnv:         v.GetString("APP_ENV"),
		LogLevel:       v.GetString("LOG_LEVEL"),
		HTTPAddr:       v.GetString("HTTP_ADDR"),
		MetricsAddr:    v.GetString("METRICS_ADDR"),
		StoreDriver:    strings.ToLower(v.GetString("STORE_DRIVER")),
		MySQLDSN:       v.GetString("MYSQL_DSN"),
		RedisAddr:      v.GetString("REDIS_ADDR"),
		RedisPass:      v.GetString("REDIS_PASSWORD"),
		RedisDB:        v.GetInt("REDIS_DB"),
		StatsCacheTTL:  time.Duration(v.GetInt("STATS_CACHE_TTL_SECONDS")) * time.Second,
		JWTSecret:      v.GetString("JWT_SECRET"),
		JWTTTL:         time.Duration(v.GetInt("JWT_TTL_HOURS")) * time.Hour,
		CORSOrigins:    splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
		RateLimit:      v.GetInt("RATE_LIMIT_PER_MINUTE"),
		RequestTimeout: time.Duration(v.GetInt("REQUEST_TIMEOUT_SECONDS")) * time.Second,
		Blob: BlobConfig{
			BaseURL:   v.GetString("BLOB_BASE_URL"),
			CloudName: v.GetString("BLOB_CLOUD_NAME"),
			APIKey:    v.GetString("BLOB_API_KEY"),
			APISecret: v.GetString("BLOB_API_SECRET"),
			RPS:       v.GetInt("BLOB_RPS"),
		},
		SeedWorkers: v.GetInt("SEED_WORKERS"),
	}
	if c.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty")
	}
	if !c.Blob.Enabled() {
		log.Warn().Msg("blob store credentials missing; uploads disabled")
	}
	return c
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
