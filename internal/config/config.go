package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Chat     ChatConfig
	SMTP     SMTPConfig
}

type AppConfig struct {
	Port               string
	BaseURL            string
	Environment        string
	LogFilePath        string
	WsLogFilePath      string
	CorsAllowedOrigins string
	NatsURL            string
	RedisURL           string
}

type DatabaseConfig struct {
	Connection string
}

// ChatConfig tunes the conversation and realtime gateway.
type ChatConfig struct {
	DefaultSlotDurationMin int // fallback when the professional has none configured
	ReplayLimit            int // messages replayed on reconnect
	RetryQueueCapacity     int // per-client outbound retry queue
	HeartbeatIntervalSec   int // liveness sweep period
	SessionTimeoutMin      int // inactivity before a session is abandoned
	SweepIntervalMin       int // how often the abandonment sweeper runs
	SlotSearchDays         int // days scanned ahead when offering slots
	MaxSlotsPresented      int // numbered options shown per prompt
	InitTimeoutSec         int // storage bound during session initialization
}

type SMTPConfig struct {
	Host       string
	Port       int
	Email      string
	Password   string
	SenderName string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("Note: .env file not found, using system environment")
	}

	return &Config{
		App: AppConfig{
			Port:               getEnv("APP_PORT", "3000"),
			BaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
			Environment:        getEnv("GO_ENV", "development"),
			LogFilePath:        getEnv("LOG_FILE_PATH", "app.log"),
			WsLogFilePath:      getEnv("WS_LOG_FILE_PATH", "ws.log"),
			CorsAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),
			NatsURL:            getEnv("NATS_URL", "nats://localhost:4222"),
			RedisURL:           getEnv("REDIS_URL", ""),
		},
		Database: DatabaseConfig{
			Connection: getEnv("DB_CONNECTION_STRING", ""),
		},
		Chat: ChatConfig{
			DefaultSlotDurationMin: getEnvAsInt("CHAT_DEFAULT_SLOT_DURATION_MIN", 30),
			ReplayLimit:            getEnvAsInt("CHAT_REPLAY_LIMIT", 50),
			RetryQueueCapacity:     getEnvAsInt("CHAT_RETRY_QUEUE_CAPACITY", 10),
			HeartbeatIntervalSec:   getEnvAsInt("CHAT_HEARTBEAT_INTERVAL_SEC", 15),
			SessionTimeoutMin:      getEnvAsInt("CHAT_SESSION_TIMEOUT_MIN", 30),
			SweepIntervalMin:       getEnvAsInt("CHAT_SWEEP_INTERVAL_MIN", 10),
			SlotSearchDays:         getEnvAsInt("CHAT_SLOT_SEARCH_DAYS", 7),
			MaxSlotsPresented:      getEnvAsInt("CHAT_MAX_SLOTS_PRESENTED", 6),
			InitTimeoutSec:         getEnvAsInt("CHAT_INIT_TIMEOUT_SEC", 5),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getEnvAsInt("SMTP_PORT", 587),
			Email:      getEnv("SMTP_EMAIL", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			SenderName: getEnv("SMTP_SENDER_NAME", "MediBook"),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	strValue := getEnv(key, "")
	if value, err := strconv.Atoi(strValue); err == nil {
		return value
	}
	return fallback
}
