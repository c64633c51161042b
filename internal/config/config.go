package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	StateBackend       string
	StateFile          string
	DatabaseURL        string
	StateEncryptionKey string

	PlatformBaseURL string
	PlatformTimeout time.Duration

	PostingInterval            time.Duration
	EngagementInterval         time.Duration
	AccountsToCreate           int
	MaxDailyPostsPerUser       int
	MaxDailyEngagementsPerUser int
	PoliticalTopicsRatio       float64
	ControversialRatio         float64

	ProvisionDelay time.Duration
	BotEmailDomain string
	PersonaFile    string
	RandomSeed     int64

	ListenAddr    string
	AdminUsername string
	AdminPassword string
	JWTSecret     string

	TelegramBotToken string
	TelegramChatID   string

	WebhookURL        string
	WebhookTimeout    time.Duration
	WebhookMaxRetries int
	WebhookRetryBase  time.Duration
	WebhookRetryMax   time.Duration
}

func Load() Config {
	return Config{
		StateBackend:               getEnv("STATE_BACKEND", "file"),
		StateFile:                  getEnv("STATE_FILE", "data/bot-state.json"),
		DatabaseURL:                getEnv("DATABASE_URL", ""),
		StateEncryptionKey:         getEnv("STATE_ENCRYPTION_KEY", ""),
		PlatformBaseURL:            getEnv("PLATFORM_API_URL", "http://localhost:5000/api"),
		PlatformTimeout:            getDuration("PLATFORM_TIMEOUT", 10*time.Second),
		PostingInterval:            getDuration("POSTING_INTERVAL", 30*time.Second),
		EngagementInterval:         getDuration("ENGAGEMENT_INTERVAL", 15*time.Second),
		AccountsToCreate:           getInt("ACCOUNTS_TO_CREATE", 10),
		MaxDailyPostsPerUser:       getInt("MAX_DAILY_POSTS_PER_USER", 5),
		MaxDailyEngagementsPerUser: getInt("MAX_DAILY_ENGAGEMENTS_PER_USER", 20),
		PoliticalTopicsRatio:       getFloat("POLITICAL_TOPICS_RATIO", 0.7),
		ControversialRatio:         getFloat("CONTROVERSIAL_RATIO", 0.3),
		ProvisionDelay:             getDuration("PROVISION_DELAY", time.Second),
		BotEmailDomain:             getEnv("BOT_EMAIL_DOMAIN", "civicsim.example"),
		PersonaFile:                getEnv("PERSONA_FILE", ""),
		RandomSeed:                 getInt64("RANDOM_SEED", 0),
		ListenAddr:                 getEnv("LISTEN_ADDR", ":18090"),
		AdminUsername:              getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:              getEnv("ADMIN_PASSWORD", "change-me"),
		JWTSecret:                  getEnv("JWT_SECRET", "change-this-secret"),
		TelegramBotToken:           getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:             getEnv("TELEGRAM_CHAT_ID", ""),
		WebhookURL:                 getEnv("WEBHOOK_URL", ""),
		WebhookTimeout:             getDuration("WEBHOOK_TIMEOUT", 5*time.Second),
		WebhookMaxRetries:          getInt("WEBHOOK_MAX_RETRIES", 3),
		WebhookRetryBase:           getDuration("WEBHOOK_RETRY_BASE", 500*time.Millisecond),
		WebhookRetryMax:            getDuration("WEBHOOK_RETRY_MAX", 5*time.Second),
	}
}

// Validate rejects values the engine cannot run with.
func (c Config) Validate() error {
	if c.PostingInterval <= 0 {
		return fmt.Errorf("POSTING_INTERVAL must be positive, got %s", c.PostingInterval)
	}
	if c.EngagementInterval <= 0 {
		return fmt.Errorf("ENGAGEMENT_INTERVAL must be positive, got %s", c.EngagementInterval)
	}
	if c.EngagementInterval >= c.PostingInterval {
		return fmt.Errorf("ENGAGEMENT_INTERVAL (%s) must be shorter than POSTING_INTERVAL (%s)",
			c.EngagementInterval, c.PostingInterval)
	}
	if c.PlatformTimeout <= 0 {
		return fmt.Errorf("PLATFORM_TIMEOUT must be positive, got %s", c.PlatformTimeout)
	}
	if c.PoliticalTopicsRatio < 0 || c.PoliticalTopicsRatio > 1 {
		return fmt.Errorf("POLITICAL_TOPICS_RATIO must be within [0,1], got %v", c.PoliticalTopicsRatio)
	}
	if c.ControversialRatio < 0 || c.ControversialRatio > 1 {
		return fmt.Errorf("CONTROVERSIAL_RATIO must be within [0,1], got %v", c.ControversialRatio)
	}
	switch c.StateBackend {
	case "file", "postgres":
	default:
		return fmt.Errorf("STATE_BACKEND must be file or postgres, got %q", c.StateBackend)
	}
	return nil
}

func getEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getInt64(key string, fallback int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return n
}

// getDuration accepts Go duration syntax or a bare integer of milliseconds.
func getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	if ms, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
