package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// minSecretLength is the shortest signing secret accepted with sign-in enabled
const minSecretLength = 32

// ErrWeakSecret is returned when sign-in is enabled without strong signing secrets
var ErrWeakSecret = errors.New("signing secret missing or too short")

// Config holds application configuration
type Config struct {
	ServerPort string
	// Reverse proxies allowed to set X-Forwarded-For, as addresses or CIDRs
	TrustedProxies []string

	// Document store backend: sqlite, postgres, mysql, badger or memory
	StoreDriver  string
	DatabasePath string
	DatabaseURL  string
	BadgerPath   string

	LogLevel  string
	LogFormat string

	// Sessions
	JWTSecret         string
	CSRFSecret        string
	SessionDuration   time.Duration
	AdminUsername     string
	AdminPasswordHash string

	// Birthday reminders (Amazon SES)
	AWSRegion          string
	SESFromEmail       string
	SESFromName        string
	AppBaseURL         string
	ReminderRecipients []string
	ReminderDays       int

	// Backup destination
	BackupBucket    string
	BackupRegion    string
	BackupEndpoint  string
	BackupPathStyle bool

	BirthdayHorizonDays int
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is applied first when present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		ServerPort:          getEnv("PORT", "8080"),
		TrustedProxies:      splitList(getEnv("TRUSTED_PROXIES", "")),
		StoreDriver:         strings.ToLower(getEnv("STORE_DRIVER", "sqlite")),
		DatabasePath:        getEnv("DB_PATH", "./familytree.db"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		BadgerPath:          getEnv("BADGER_PATH", "./familytree-data"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           getEnv("LOG_FORMAT", "json"),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		CSRFSecret:          getEnv("CSRF_SECRET", ""),
		SessionDuration:     getDuration("SESSION_DURATION", 24*time.Hour),
		AdminUsername:       getEnv("ADMIN_USERNAME", "admin"),
		AdminPasswordHash:   getEnv("ADMIN_PASSWORD_HASH", ""),
		AWSRegion:           getEnv("AWS_REGION", "us-east-1"),
		SESFromEmail:        getEnv("SES_FROM_EMAIL", ""),
		SESFromName:         getEnv("SES_FROM_NAME", "Family Tree"),
		AppBaseURL:          getEnv("APP_BASE_URL", "http://localhost:8080"),
		ReminderRecipients:  splitList(getEnv("REMINDER_RECIPIENTS", "")),
		ReminderDays:        getInt("REMINDER_DAYS", 7),
		BackupBucket:        getEnv("BACKUP_S3_BUCKET", ""),
		BackupRegion:        getEnv("BACKUP_S3_REGION", "us-east-1"),
		BackupEndpoint:      getEnv("BACKUP_S3_ENDPOINT", ""),
		BackupPathStyle:     getEnv("BACKUP_S3_PATH_STYLE", "false") == "true",
		BirthdayHorizonDays: getInt("BIRTHDAY_HORIZON_DAYS", 30),
	}
}

// AuthEnabled reports whether an admin password has been configured
func (c *Config) AuthEnabled() bool {
	return c.AdminPasswordHash != ""
}

// ResolveSecrets checks the session and CSRF signing secrets. With sign-in
// enabled both must be set and at least minSecretLength bytes long.
// Otherwise a missing secret is replaced with a random one and generated
// reports true; sessions signed with it end when the process exits.
func (c *Config) ResolveSecrets() (generated bool, err error) {
	secrets := []struct {
		key   string
		value *string
	}{
		{"JWT_SECRET", &c.JWTSecret},
		{"CSRF_SECRET", &c.CSRFSecret},
	}
	for _, s := range secrets {
		if c.AuthEnabled() {
			if len(*s.value) < minSecretLength {
				return false, fmt.Errorf("%s must be at least %d bytes when ADMIN_PASSWORD_HASH is set: %w", s.key, minSecretLength, ErrWeakSecret)
			}
			continue
		}
		if *s.value != "" {
			continue
		}
		random, err := randomSecret()
		if err != nil {
			return false, fmt.Errorf("failed to generate %s: %w", s.key, err)
		}
		*s.value = random
		generated = true
	}
	return generated, nil
}

func randomSecret() (string, error) {
	b := make([]byte, minSecretLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	n, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return n
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	d, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
