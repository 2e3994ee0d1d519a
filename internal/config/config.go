package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config centraliza a configuração carregada do ambiente.
type Config struct {
	Port            int
	DBDSN           string
	RedisURL        string
	JWTAccessTTL    time.Duration
	JWTRefreshTTL   time.Duration
	JWTSecret       string
	AllowOrigins    []string
	Location        *time.Location
	AutoMigrate     bool
	LogLevel        string
	RateLimitPublic RateLimitConfig
	RateLimitAuth   RateLimitConfig
	PrazoMonitor    PrazoMonitorConfig
}

// RateLimitConfig representa limites simples para throttling.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// PrazoMonitorConfig controla o laço que publica contagens de prazos.
type PrazoMonitorConfig struct {
	Enabled  bool
	Interval time.Duration
}

// Load carrega variáveis de ambiente e aplica defaults seguros.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	portStr := getEnv("PORT", "3000")
	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 {
		return nil, errors.New("PORT inválida")
	}
	cfg.Port = port

	cfg.DBDSN = getEnv("DB_DSN", "")
	if cfg.DBDSN == "" {
		cfg.DBDSN = getEnv("DATABASE_URL", "")
	}
	if cfg.DBDSN == "" {
		return nil, errors.New("DB_DSN obrigatório")
	}

	cfg.RedisURL = getEnv("REDIS_URL", "")
	if cfg.RedisURL == "" {
		return nil, errors.New("REDIS_URL obrigatório")
	}

	cfg.JWTSecret = strings.TrimSpace(getEnv("JWT_SECRET", ""))
	if len(cfg.JWTSecret) < 32 {
		return nil, errors.New("JWT_SECRET deve ter pelo menos 32 caracteres")
	}

	accessTTL, err := parseDurationEnv("JWT_ACCESS_TTL", 8*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.JWTAccessTTL = accessTTL

	refreshTTL, err := parseDurationEnv("JWT_REFRESH_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.JWTRefreshTTL = refreshTTL

	for _, origin := range strings.Split(getEnv("ALLOW_ORIGINS", ""), ",") {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, origin)
		}
	}

	loc, err := time.LoadLocation(getEnv("TIMEZONE", "America/Sao_Paulo"))
	if err != nil {
		return nil, errors.New("TIMEZONE inválido")
	}
	cfg.Location = loc

	autoMigrate, err := parseBoolEnv("AUTO_MIGRATE", true)
	if err != nil {
		return nil, err
	}
	cfg.AutoMigrate = autoMigrate

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", "info")))

	publicRPS, err := parseFloatEnv("RATE_LIMIT_PUBLIC_RPS", 5)
	if err != nil {
		return nil, err
	}
	publicBurst, err := parseIntEnv("RATE_LIMIT_PUBLIC_BURST", 10)
	if err != nil {
		return nil, err
	}
	cfg.RateLimitPublic = RateLimitConfig{RequestsPerSecond: publicRPS, Burst: publicBurst}

	authRPS, err := parseFloatEnv("RATE_LIMIT_AUTH_RPS", 20)
	if err != nil {
		return nil, err
	}
	authBurst, err := parseIntEnv("RATE_LIMIT_AUTH_BURST", 60)
	if err != nil {
		return nil, err
	}
	cfg.RateLimitAuth = RateLimitConfig{RequestsPerSecond: authRPS, Burst: authBurst}

	monitorOn, err := parseBoolEnv("PRAZO_MONITOR_ENABLED", false)
	if err != nil {
		return nil, err
	}
	monitorInterval, err := parseDurationEnv("PRAZO_MONITOR_INTERVAL", 15*time.Minute)
	if err != nil {
		return nil, err
	}
	cfg.PrazoMonitor = PrazoMonitorConfig{Enabled: monitorOn, Interval: monitorInterval}

	return cfg, nil
}

func getEnv(key, def string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return def
}

func parseDurationEnv(key string, def time.Duration) (time.Duration, error) {
	val := getEnv(key, "")
	if val == "" {
		return def, nil
	}
	dur, err := time.ParseDuration(val)
	if err != nil {
		return 0, errors.New(key + " inválido")
	}
	return dur, nil
}

func parseBoolEnv(key string, def bool) (bool, error) {
	val := strings.TrimSpace(getEnv(key, ""))
	if val == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return false, errors.New(key + " inválido")
	}
	return b, nil
}

func parseIntEnv(key string, def int) (int, error) {
	val := strings.TrimSpace(getEnv(key, ""))
	if val == "" {
		return def, nil
	}
	n, err := strconv.Atoi(val)
	if err != nil || n <= 0 {
		return 0, errors.New(key + " inválido")
	}
	return n, nil
}

func parseFloatEnv(key string, def float64) (float64, error) {
	val := strings.TrimSpace(getEnv(key, ""))
	if val == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil || f <= 0 {
		return 0, errors.New(key + " inválido")
	}
	return f, nil
}
