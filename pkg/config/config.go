package config

import (
	"errors"
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

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Access    AccessConfig
	Mail      MailConfig
	Scheduler SchedulerConfig
	Dashboard DashboardConfig
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
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// AccessConfig carries the static operator allow-list. The first handle on
// the list resolves to the super-admin tier, the rest to admin. The list is
// configuration only and is never written to the users table.
type AccessConfig struct {
	AdminAllowlist []string
}

// MailConfig configures outbound report email.
type MailConfig struct {
	SendgridAPIKey string
	FromName       string
	FromAddress    string
	AdminAddress   string
	// DepartmentAddresses maps branch codes (CSE, ECE, ...) to the inbox that
	// receives that branch's reports.
	DepartmentAddresses map[string]string
	QueueWorkers        int
	QueueRetries        int
}

// SchedulerConfig arms the periodic report jobs. Enablement is decided once
// at startup; there is no runtime toggle.
type SchedulerConfig struct {
	Enabled    bool
	WeeklySpec string
	DailySpec  string
}

// DashboardConfig tunes the cached dashboard statistics endpoint.
type DashboardConfig struct {
	CacheTTL time.Duration
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
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

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
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Access = AccessConfig{
		AdminAllowlist: splitAndTrim(v.GetString("ADMIN_ALLOWLIST")),
	}

	departments := map[string]string{}
	for _, code := range []string{"CSE", "AIML", "CSDS", "ECE", "IT", "EEE", "ME", "CE"} {
		departments[code] = v.GetString(code + "_DEPT_EMAIL")
	}
	cfg.Mail = MailConfig{
		SendgridAPIKey:      v.GetString("SENDGRID_API_KEY"),
		FromName:            v.GetString("MAIL_FROM_NAME"),
		FromAddress:         v.GetString("MAIL_FROM_ADDRESS"),
		AdminAddress:        v.GetString("ADMIN_EMAIL"),
		DepartmentAddresses: departments,
		QueueWorkers:        v.GetInt("MAIL_QUEUE_WORKERS"),
		QueueRetries:        v.GetInt("MAIL_QUEUE_RETRIES"),
	}

	cfg.Scheduler = SchedulerConfig{
		Enabled:    v.GetBool("SCHEDULER_ENABLED"),
		WeeklySpec: v.GetString("SCHEDULER_WEEKLY_SPEC"),
		DailySpec:  v.GetString("SCHEDULER_DAILY_SPEC"),
	}

	cfg.Dashboard = DashboardConfig{
		CacheTTL: parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "ncc_attendance")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ADMIN_ALLOWLIST", "")

	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("MAIL_FROM_NAME", "NCC Attendance")
	v.SetDefault("MAIL_FROM_ADDRESS", "reports@college.edu")
	v.SetDefault("ADMIN_EMAIL", "admin@college.edu")
	v.SetDefault("CSE_DEPT_EMAIL", "cse@college.edu")
	v.SetDefault("AIML_DEPT_EMAIL", "aiml@college.edu")
	v.SetDefault("CSDS_DEPT_EMAIL", "csds@college.edu")
	v.SetDefault("ECE_DEPT_EMAIL", "ece@college.edu")
	v.SetDefault("IT_DEPT_EMAIL", "it@college.edu")
	v.SetDefault("EEE_DEPT_EMAIL", "eee@college.edu")
	v.SetDefault("ME_DEPT_EMAIL", "me@college.edu")
	v.SetDefault("CE_DEPT_EMAIL", "ce@college.edu")
	v.SetDefault("MAIL_QUEUE_WORKERS", 1)
	v.SetDefault("MAIL_QUEUE_RETRIES", 3)

	v.SetDefault("SCHEDULER_ENABLED", false)
	v.SetDefault("SCHEDULER_WEEKLY_SPEC", "0 9 * * 1")
	v.SetDefault("SCHEDULER_DAILY_SPEC", "0 17 * * *")

	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")
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
