package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
// OTP constants live here rather than as package-level state so tests can
// construct services with a shortened expiry or a tighter rate window.
type Config struct {
	AppPort string
	AppEnv  string

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	// Brevo is the primary transactional-email channel; SMTP is the
	// fallback used when no API key is configured.
	BrevoAPIKey      string
	BrevoSenderName  string
	BrevoSenderEmail string
	SMTPHost         string
	SMTPPort         string
	SMTPFrom         string
	SMTPUsername     string
	SMTPPassword     string

	SNSRegion string

	AdminAPIKey string

	OTPTTL         time.Duration // validity window of an issued code
	RateWindow     time.Duration // sliding window for the issuance limit
	RateMax        int           // max issues per (email, purpose) per window
	AllowedOrigins []string
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	OTPs     string
	Accounts string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			OTPs:     getEnv("DYNAMO_TABLE_OTPS", "email_otps"),
			Accounts: getEnv("DYNAMO_TABLE_ACCOUNTS", "accounts"),
		},

		BrevoAPIKey:      getEnv("BREVO_API_KEY", ""),
		BrevoSenderName:  getEnv("BREVO_SENDER_NAME", "TechCreator"),
		BrevoSenderEmail: getEnv("BREVO_SENDER_EMAIL", "noreply@example.com"),
		SMTPHost:         getEnv("SMTP_HOST", "localhost"),
		SMTPPort:         getEnv("SMTP_PORT", "1025"),
		SMTPFrom:         getEnv("SMTP_FROM", "noreply@example.com"),
		SMTPUsername:     getEnv("SMTP_USERNAME", ""),
		SMTPPassword:     getEnv("SMTP_PASSWORD", ""),

		SNSRegion: getEnv("SNS_REGION", "us-east-1"),

		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),

		OTPTTL:         getEnvDuration("OTP_TTL", 10*time.Minute),
		RateWindow:     getEnvDuration("OTP_RATE_WINDOW", time.Hour),
		RateMax:        getEnvInt("OTP_RATE_MAX", 3),
		AllowedOrigins: strings.Split(getEnv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
