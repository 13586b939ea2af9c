package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	DefaultAttendanceURL = "https://dashboard.42paris.fr/api/attendance"
	DefaultDatabaseURL   = "attendance.db"
	DefaultHTTPAddr      = ":8080"
	DefaultTimezone      = "Europe/Paris"
	DefaultFetchTimeout  = 30 * time.Second
	DefaultCacheTTL      = 5 * time.Minute
	DefaultRateLimit     = 30
	DefaultDailyGoal     = 7.0
)

type BotConfig struct {
	TelegramToken string
	OwnerChatID   int64
	DatabaseURL   string
	Debug         bool

	AttendanceURL      string
	FetchTimeout       time.Duration
	CacheTTL           time.Duration
	RateLimitPerMinute int

	HTTPAddr string

	Timezone           string
	Location           *time.Location
	DailyGoalHours     float64
	NonWorkingDaysFile []string
}

var instance *BotConfig
var once sync.Once

// GetBotConfig загружает конфигурацию один раз и завершает процесс при ошибке
func GetBotConfig() *BotConfig {
	once.Do(func() {
		if err := godotenv.Load(); err != nil {
			logrus.Warnf("no .env file loaded: %s", err.Error())
		}

		cfg, err := Load()
		if err != nil {
			logrus.Fatalf("invalid configuration: %s", err.Error())
		}
		instance = cfg
	})

	return instance
}

// Load читает конфигурацию из переменных окружения
func Load() (*BotConfig, error) {
	cfg := &BotConfig{}

	cfg.TelegramToken = getEnv("TELEGRAM_BOT_TOKEN", "")
	if cfg.TelegramToken == "" {
		return nil, errors.New("could not get bot token")
	}

	cfg.OwnerChatID = getEnvAsInt("OWNER_CHAT_ID", 0)
	cfg.DatabaseURL = getEnv("DATABASE_URL", DefaultDatabaseURL)
	if cfg.DatabaseURL == "" {
		return nil, errors.New("could not get db url")
	}
	cfg.Debug = getEnvAsBool("BOT_DEBUG", false)

	cfg.AttendanceURL = getEnv("ATTENDANCE_API_URL", DefaultAttendanceURL)
	if !strings.HasPrefix(cfg.AttendanceURL, "http://") && !strings.HasPrefix(cfg.AttendanceURL, "https://") {
		return nil, fmt.Errorf("invalid attendance api url %q", cfg.AttendanceURL)
	}
	cfg.FetchTimeout = getEnvAsDuration("FETCH_TIMEOUT", DefaultFetchTimeout)
	cfg.CacheTTL = getEnvAsDuration("CACHE_TTL", DefaultCacheTTL)
	cfg.RateLimitPerMinute = int(getEnvAsInt("RATE_LIMIT_PER_MINUTE", DefaultRateLimit))
	if cfg.RateLimitPerMinute <= 0 {
		return nil, errors.New("rate limit must be positive")
	}

	cfg.HTTPAddr = getEnv("HTTP_ADDR", DefaultHTTPAddr)

	cfg.Timezone = getEnv("TIMEZONE", DefaultTimezone)
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	cfg.Location = loc

	cfg.DailyGoalHours = getEnvAsFloat("DAILY_GOAL_HOURS", DefaultDailyGoal)
	if cfg.DailyGoalHours <= 0 || cfg.DailyGoalHours > 24 {
		return nil, fmt.Errorf("daily goal must be within (0, 24], got %v", cfg.DailyGoalHours)
	}

	if files := getEnv("NON_WORKING_DAYS_FILE", ""); files != "" {
		for _, f := range strings.Split(files, ",") {
			if f = strings.TrimSpace(f); f != "" {
				cfg.NonWorkingDaysFile = append(cfg.NonWorkingDaysFile, f)
			}
		}
	}

	return cfg, nil
}

// IsOwner проверяет, разрешен ли доступ чату; 0 - без ограничений
func (c *BotConfig) IsOwner(chatID int64) bool {
	return c.OwnerChatID == 0 || c.OwnerChatID == chatID
}

func getEnv(key string, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}

	return defaultVal
}

func getEnvAsBool(name string, defaultVal bool) bool {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseBool(valStr); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsInt(name string, defaultVal int64) int64 {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseInt(valStr, 10, 64); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsFloat(name string, defaultVal float64) float64 {
	valStr := getEnv(name, "")
	if val, err := strconv.ParseFloat(valStr, 64); err == nil {
		return val
	}

	return defaultVal
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valStr := getEnv(name, "")
	if val, err := time.ParseDuration(valStr); err == nil && val > 0 {
		return val
	}

	return defaultVal
}
