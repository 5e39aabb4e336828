package config

import (
	"os"
	"strconv"
)

// Config centralizes runtime settings for the bot and its flush worker.
type Config struct {
	Env      string
	LogLevel string

	TelegramBotToken    string
	TelegramBaseURL     string
	TelegramPollTimeout int

	SheetsSpreadsheetID string
	SheetsAccessToken   string
	SheetsBaseURL       string
	SheetsTimeoutMS     int
	SheetsMaxRetries    int

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisQueueKey string

	FlushIntervalMS  int
	FlushMaxAttempts int

	// RequiredFields overrides the default required-field set, comma separated.
	RequiredFields string

	SendRateRPS   float64
	SendRateBurst int
}

func Load() Config {
	return Config{
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		TelegramBotToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramBaseURL:     getEnv("TELEGRAM_BASE_URL", "https://api.telegram.org"),
		TelegramPollTimeout: getEnvInt("TELEGRAM_POLL_TIMEOUT_S", 30),

		SheetsSpreadsheetID: getEnv("SHEETS_SPREADSHEET_ID", ""),
		SheetsAccessToken:   getEnv("SHEETS_ACCESS_TOKEN", ""),
		SheetsBaseURL:       getEnv("SHEETS_BASE_URL", "https://sheets.googleapis.com"),
		SheetsTimeoutMS:     getEnvInt("SHEETS_TIMEOUT_MS", 10000),
		SheetsMaxRetries:    getEnvInt("SHEETS_MAX_RETRIES", 2),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisQueueKey: getEnv("REDIS_QUEUE_KEY", "shift_reports"),

		FlushIntervalMS:  getEnvInt("FLUSH_INTERVAL_MS", 30000),
		FlushMaxAttempts: getEnvInt("FLUSH_MAX_ATTEMPTS", 3),

		RequiredFields: getEnv("REQUIRED_FIELDS", ""),

		SendRateRPS:   getEnvFloat("SEND_RATE_RPS", 20),
		SendRateBurst: getEnvInt("SEND_RATE_BURST", 30),
	}
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvFloat(key string, fallback float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return parsed
}
