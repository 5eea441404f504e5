package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort   string
	ProxyPort string

	JWTKey          []byte
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBConnStr  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	IdentityProvider string
	GoTrueURL        string
	GoTrueAPIKey     string
	AppBaseURL       string

	TicketingURL       string
	TicketingUsername  string
	TicketingPassword  string
	MentorshipProxyURL string

	ReferralAPIURL   string
	ReferralAPIToken string

	CORSAllowedOrigins []string

	MailQueueName   string
	MailMaxAttempts int
	MailRetryDelay  time.Duration
	SMTPAddr        string
	SMTPFrom        string
	SMTPUsername    string
	SMTPPassword    string

	InFlightLockTTL    time.Duration
	ResetRedirectDelay time.Duration
	OutboundTimeout    time.Duration
}

const (
	IdentityLocal  = "local"
	IdentityGoTrue = "gotrue"
)

var AppConfig *Config

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}
	AppConfig = FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() *Config {
	cfg := &Config{
		APIPort:         getEnv("API_PORT", "8080"),
		ProxyPort:       getEnv("PORT", "4000"),
		JWTKey:          []byte(getSecret("JWT_SECRET", "defaultsecret")),
		AccessTokenTTL:  getEnvAsDuration("ACCESS_TOKEN_TTL", time.Hour),
		RefreshTokenTTL: getEnvAsDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),

		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "user"),
		DBPassword: getSecret("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "alumni_connect"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getSecret("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),

		IdentityProvider: strings.ToLower(getEnv("IDENTITY_PROVIDER", IdentityLocal)),
		GoTrueURL:        strings.TrimRight(getEnv("GOTRUE_URL", ""), "/"),
		GoTrueAPIKey:     getSecret("GOTRUE_API_KEY", ""),
		AppBaseURL:       strings.TrimRight(getEnv("APP_BASE_URL", "http://localhost:5173"), "/"),

		TicketingURL:       getEnv("TICKETING_URL", ""),
		TicketingUsername:  getSecret("TICKETING_USERNAME", ""),
		TicketingPassword:  getSecret("TICKETING_PASSWORD", ""),
		MentorshipProxyURL: getEnv("MENTORSHIP_PROXY_URL", "http://localhost:4000/mentorship"),

		ReferralAPIURL:   strings.TrimRight(getEnv("REFERRAL_API_URL", "http://localhost:3000"), "/"),
		ReferralAPIToken: getSecret("REFERRAL_API_TOKEN", ""),

		CORSAllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:5173"}),

		MailQueueName:   getEnv("MAIL_QUEUE_NAME", "mail_outbox_queue"),
		MailMaxAttempts: getEnvAsInt("MAIL_MAX_ATTEMPTS", 3),
		MailRetryDelay:  getEnvAsDuration("MAIL_RETRY_DELAY", 30*time.Second),
		SMTPAddr:        getEnv("SMTP_ADDR", ""),
		SMTPFrom:        getEnv("SMTP_FROM", "no-reply@alumniconnect.local"),
		SMTPUsername:    getEnv("SMTP_USERNAME", ""),
		SMTPPassword:    getSecret("SMTP_PASSWORD", ""),

		InFlightLockTTL:    time.Duration(getEnvAsInt("INFLIGHT_LOCK_TTL_SECONDS", 30)) * time.Second,
		ResetRedirectDelay: getEnvAsDuration("RESET_REDIRECT_DELAY", 3*time.Second),
		OutboundTimeout:    getEnvAsDuration("OUTBOUND_TIMEOUT", 15*time.Second),
	}

	cfg.DBConnStr = "host=" + cfg.DBHost +
		" port=" + cfg.DBPort +
		" user=" + cfg.DBUser +
		" password=" + cfg.DBPassword +
		" dbname=" + cfg.DBName +
		" sslmode=" + cfg.DBSslMode
	return cfg
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

// getEnvAsDuration accepts a Go duration ("90s") or an integer <KEY>_SECONDS.
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
	}
	if val := os.Getenv(key + "_SECONDS"); val != "" {
		if seconds, err := strconv.Atoi(val); err == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return fallback
}

func getEnvAsList(key string, fallback []string) []string {
	raw := getEnv(key, "")
	if raw == "" {
		return fallback
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if v := strings.TrimRight(strings.TrimSpace(p), "/"); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

// getSecret reads <KEY>_FILE first so secrets can be mounted instead of exported.
func getSecret(key, fallback string) string {
	if file := os.Getenv(key + "_FILE"); file != "" {
		if data, err := os.ReadFile(file); err == nil {
			return strings.TrimSpace(string(data))
		}
		log.Printf("WARN: could not read %s_FILE=%s", key, file)
	}
	return getEnv(key, fallback)
}
