package main

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"familytree/internal/security"
	"familytree/internal/service"
	"familytree/internal/validation"
)

var (
	reminderDays int
	reminderTo   []string

	remindersCmd = &cobra.Command{
		Use:   "reminders",
		Short: "Birthday reminder emails",
	}

	remindersSendCmd = &cobra.Command{
		Use:   "send",
		Short: "Email the upcoming birthday digest now",
		RunE:  runRemindersSend,
	}

	hashPasswordCmd = &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for ADMIN_PASSWORD_HASH",
		Long:  `Hashes the argument, or the first line of stdin when no argument is given.`,
		Args:  cobra.MaximumNArgs(1),
		RunE:  runHashPassword,
	}
)

func init() {
	remindersSendCmd.Flags().IntVar(&reminderDays, "days", 0, "horizon in days (default REMINDER_DAYS)")
	remindersSendCmd.Flags().StringSliceVar(&reminderTo, "to", nil, "recipients (default REMINDER_RECIPIENTS)")
	remindersCmd.AddCommand(remindersSendCmd)
}

func runRemindersSend(cmd *cobra.Command, args []string) error {
	days := reminderDays
	if days <= 0 {
		days = cfg.ReminderDays
	}
	recipients := reminderTo
	if len(recipients) == 0 {
		recipients = cfg.ReminderRecipients
	}
	if len(recipients) == 0 {
		return errors.New("no recipients: pass --to or set REMINDER_RECIPIENTS")
	}
	for _, to := range recipients {
		if err := validation.ValidateEmail(to); err != nil {
			return fmt.Errorf("recipient %q: %w", to, err)
		}
	}

	ctx := cmd.Context()
	email, err := service.NewEmailService(ctx, cfg.AWSRegion, cfg.SESFromEmail, cfg.SESFromName, cfg.AppBaseURL, logger)
	if err != nil {
		return err
	}
	if !email.IsEnabled() {
		return errors.New("email is disabled: set SES_FROM_EMAIL")
	}

	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	sent, err := service.NewReminderService(a.relationships, email, logger).SendDigest(ctx, recipients, days)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Sent %d digests\n", sent)
	return nil
}

func runHashPassword(cmd *cobra.Command, args []string) error {
	var password string
	if len(args) == 1 {
		password = args[0]
	} else {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("failed to read password: %w", err)
		}
		password = strings.TrimRight(line, "\r\n")
	}

	hash, err := security.HashPassword(password)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}
