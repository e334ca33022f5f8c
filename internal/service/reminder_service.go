package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"familytree/internal/models"
)

// DigestSender delivers birthday digests
type DigestSender interface {
	IsEnabled() bool
	SendBirthdayDigest(ctx context.Context, toEmail string, birthdays []models.UpcomingBirthday, days int) error
}

// ReminderService emails upcoming birthdays to a fixed list of recipients
type ReminderService struct {
	store  *RelationshipService
	sender DigestSender
	logger *zap.Logger
}

// NewReminderService creates a new reminder service
func NewReminderService(store *RelationshipService, sender DigestSender, logger *zap.Logger) *ReminderService {
	return &ReminderService{store: store, sender: sender, logger: logger}
}

// SendDigest reloads the store and sends one digest to each recipient.
// Nothing is sent when email is disabled or no birthday is coming up.
// It returns the number of digests sent.
func (r *ReminderService) SendDigest(ctx context.Context, recipients []string, days int) (int, error) {
	if !r.sender.IsEnabled() {
		r.logger.Info("birthday digest skipped: email disabled")
		return 0, nil
	}
	if len(recipients) == 0 {
		r.logger.Info("birthday digest skipped: no recipients")
		return 0, nil
	}

	r.store.LoadAll(ctx)
	birthdays := r.store.UpcomingBirthdays(days)
	if len(birthdays) == 0 {
		r.logger.Info("birthday digest skipped: nothing upcoming", zap.Int("days", days))
		return 0, nil
	}

	sent := 0
	for _, to := range recipients {
		if err := r.sender.SendBirthdayDigest(ctx, to, birthdays, days); err != nil {
			return sent, fmt.Errorf("failed to send birthday digest: %w", err)
		}
		sent++
	}
	r.logger.Info("birthday digest sent",
		zap.Int("recipients", sent),
		zap.Int("birthdays", len(birthdays)),
	)
	return sent, nil
}
