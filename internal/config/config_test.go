package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("PORT", "")
	t.Setenv("ADMIN_PASSWORD_HASH", "")
	t.Setenv("REMINDER_RECIPIENTS", "")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("CSRF_SECRET", "")
	t.Setenv("TRUSTED_PROXIES", "")

	cfg := Load()

	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "sqlite", cfg.StoreDriver)
	assert.Equal(t, 24*time.Hour, cfg.SessionDuration)
	assert.Equal(t, 30, cfg.BirthdayHorizonDays)
	assert.Empty(t, cfg.ReminderRecipients)
	assert.Empty(t, cfg.TrustedProxies)
	assert.Empty(t, cfg.JWTSecret, "there is no built-in signing secret")
	assert.Empty(t, cfg.CSRFSecret)
	assert.False(t, cfg.AuthEnabled())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Badger")
	t.Setenv("SESSION_DURATION", "90m")
	t.Setenv("REMINDER_RECIPIENTS", "a@example.com, ,b@example.com")
	t.Setenv("REMINDER_DAYS", "not-a-number")
	t.Setenv("BACKUP_S3_PATH_STYLE", "true")
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abc")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8, 192.168.1.1")

	cfg := Load()

	assert.Equal(t, "badger", cfg.StoreDriver)
	assert.Equal(t, 90*time.Minute, cfg.SessionDuration)
	assert.Equal(t, []string{"a@example.com", "b@example.com"}, cfg.ReminderRecipients)
	assert.Equal(t, 7, cfg.ReminderDays)
	assert.True(t, cfg.BackupPathStyle)
	assert.Equal(t, []string{"10.0.0.0/8", "192.168.1.1"}, cfg.TrustedProxies)
	assert.True(t, cfg.AuthEnabled())
}

func TestResolveSecrets(t *testing.T) {
	strong := strings.Repeat("s", minSecretLength)

	tests := []struct {
		name          string
		passwordHash  string
		jwtSecret     string
		csrfSecret    string
		wantErr       bool
		wantGenerated bool
	}{
		{name: "auth enabled without secrets", passwordHash: "$2a$10$abc", wantErr: true},
		{name: "auth enabled with placeholder secrets", passwordHash: "$2a$10$abc", jwtSecret: "change-me", csrfSecret: "change-me-too", wantErr: true},
		{name: "auth enabled with one short secret", passwordHash: "$2a$10$abc", jwtSecret: strong, csrfSecret: "short", wantErr: true},
		{name: "auth enabled with strong secrets", passwordHash: "$2a$10$abc", jwtSecret: strong, csrfSecret: strong},
		{name: "auth disabled without secrets", wantGenerated: true},
		{name: "auth disabled keeps configured secrets", jwtSecret: "dev", csrfSecret: "dev-csrf"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{AdminPasswordHash: tt.passwordHash, JWTSecret: tt.jwtSecret, CSRFSecret: tt.csrfSecret}

			generated, err := cfg.ResolveSecrets()
			if tt.wantErr {
				require.ErrorIs(t, err, ErrWeakSecret)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantGenerated, generated)
			if tt.wantGenerated {
				assert.Len(t, cfg.JWTSecret, 2*minSecretLength)
				assert.Len(t, cfg.CSRFSecret, 2*minSecretLength)
				assert.NotEqual(t, cfg.JWTSecret, cfg.CSRFSecret)
				return
			}
			assert.Equal(t, tt.jwtSecret, cfg.JWTSecret)
			assert.Equal(t, tt.csrfSecret, cfg.CSRFSecret)
		})
	}
}
