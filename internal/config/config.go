package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds application configuration
type Config struct {
	Port              string
	DBConn            string
	LogLevel          string
	RatesURL          string
	SMTPHost          string
	SMTPPort          string
	SMTPUsername      string
	SMTPPassword      string
	SenderEmail       string
	MaxHorizonDays    int
	ReminderCron      string
	ReminderLookahead int
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:         getEnv("PORT", "8080"),
		DBConn:       getEnv("DB_CONN", "host=localhost port=5432 user=test password=test dbname=budget sslmode=disable"),
		LogLevel:     getEnv("LOG_LEVEL", "INFO"),
		RatesURL:     getEnv("RATES_URL", ""),
		SMTPHost:     getEnv("SMTP_HOST", "localhost"),
		SMTPPort:     getEnv("SMTP_PORT", "587"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SenderEmail:  getEnv("SENDER_EMAIL", "no-reply@cashflow.local"),
		ReminderCron: getEnv("REMINDER_CRON", "0 8 * * *"),
	}

	var err error
	if cfg.MaxHorizonDays, err = getEnvInt("MAX_HORIZON_DAYS", 1825); err != nil {
		return nil, err
	}
	if cfg.ReminderLookahead, err = getEnvInt("REMINDER_LOOKAHEAD_DAYS", 3); err != nil {
		return nil, err
	}

	if cfg.DBConn == "" {
		return nil, fmt.Errorf("DB_CONN is required")
	}
	if cfg.MaxHorizonDays <= 0 {
		return nil, fmt.Errorf("MAX_HORIZON_DAYS must be positive")
	}

	return cfg, nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
