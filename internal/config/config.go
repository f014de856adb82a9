package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverMySQL    = "mysql"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	AppPort           string
	DbDriver          string
	DbHost            string
	DbPort            string
	DbUser            string
	DbPassword        string
	DbName            string
	DbParams          string
	SqlitePath        string
	PostgresDSN       string
	RunMigrations     bool
	JwtSecret         string
	JwtIssuer         string
	TranslationFolder string
	TrustedProxies    []string
	ShutdownTimeout   time.Duration
}

func LoadConfig() *Config {
	_ = godotenv.Load(".env")

	return &Config{
		AppPort:           getEnv("APP_PORT", "8080"),
		DbDriver:          strings.ToLower(getEnv("DB_DRIVER", DriverMySQL)),
		DbHost:            getEnv("MYSQL_HOST", "db"),
		DbPort:            getEnv("MYSQL_PORT", "3306"),
		DbUser:            getEnv("MYSQL_USER", "taskmanager"),
		DbPassword:        getEnv("MYSQL_PASSWORD", "taskmanager"),
		DbName:            getEnv("MYSQL_DATABASE", "taskmanager"),
		DbParams:          getEnv("MYSQL_PARAMS", "parseTime=true&multiStatements=true&clientFoundRows=true"),
		SqlitePath:        getEnv("SQLITE_PATH", "data/taskmanager.db"),
		PostgresDSN:       getEnv("POSTGRES_DSN", "postgres://taskmanager:taskmanager@db:5432/taskmanager?sslmode=disable"),
		RunMigrations:     getEnvBool("RUN_MIGRATIONS", true),
		JwtSecret:         getEnv("JWT_SECRET", ""),
		JwtIssuer:         getEnv("JWT_ISSUER", ""),
		TranslationFolder: getEnv("TRANSLATION_FOLDER", "pkg/translator/translation"),
		TrustedProxies:    parseTrustedProxies(os.Getenv("TRUSTED_PROXIES")),
		ShutdownTimeout:   getEnvDuration("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, exists := os.LookupEnv(key)
	if !exists {
		return fallback
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func parseTrustedProxies(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}

	parts := strings.Split(value, ",")
	proxies := make([]string, 0, len(parts))
	for _, part := range parts {
		proxy := strings.TrimSpace(part)
		if proxy == "" {
			continue
		}
		proxies = append(proxies, proxy)
	}

	if len(proxies) == 0 {
		return nil
	}

	return proxies
}
