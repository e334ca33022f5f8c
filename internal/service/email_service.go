package service

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
	"go.uber.org/zap"

	"familytree/internal/kinship"
	"familytree/internal/models"
)

// sesAPI is the part of the SES client used to send mail
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// EmailService handles sending emails via Amazon SES
type EmailService struct {
	client     sesAPI
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
	logger     *zap.Logger
}

// NewEmailService creates a new email service. It is disabled, and skips
// every send, when fromEmail is empty.
func NewEmailService(ctx context.Context, awsRegion, fromEmail, fromName, appBaseURL string, logger *zap.Logger) (*EmailService, error) {
	if fromEmail == "" {
		logger.Info("email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false, logger: logger}, nil
	}

	logger.Debug("initializing email service",
		zap.String("region", awsRegion),
		zap.String("from_email", fromEmail),
		zap.String("from_name", fromName),
		zap.String("app_base_url", appBaseURL),
	)

	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	logger.Info("email service enabled", zap.String("from", fromEmail), zap.String("region", awsRegion))

	return &EmailService{
		client:     sesv2.NewFromConfig(cfg),
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
		logger:     logger,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

var digestHTML = template.Must(template.New("digest").Parse(`<!DOCTYPE html>
<html>
<head>
	<meta charset="UTF-8">
	<style>
		body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
		.container { max-width: 600px; margin: 0 auto; padding: 20px; }
		.header { background-color: #28a745; color: white; padding: 20px; text-align: center; border-radius: 5px 5px 0 0; }
		.content { background-color: #f9f9f9; padding: 30px; border-radius: 0 0 5px 5px; }
		.when { font-weight: bold; color: #28a745; }
		.footer { text-align: center; margin-top: 20px; font-size: 12px; color: #666; }
	</style>
</head>
<body>
	<div class="container">
		<div class="header">
			<h1>🎂 Upcoming Birthdays</h1>
		</div>
		<div class="content">
			<p>Birthdays in the next {{.Days}} days:</p>
			<ul>
			{{range .Lines}}<li><span class="when">{{.When}}</span> {{.Name}}, {{.Date}}{{if .Turning}} (turning {{.Turning}}){{end}}{{if .Families}} · {{.Families}}{{end}}</li>
			{{end}}</ul>
			<p><a href="{{.BaseURL}}/birthdays">Open the family tree</a></p>
		</div>
		<div class="footer">
			<p>This is an automated email from Family Tree. Please do not reply.</p>
		</div>
	</div>
</body>
</html>
`))

type digestLine struct {
	When     string
	Name     string
	Date     string
	Turning  int
	Families string
}

// turning is the age reached on the next birthday, or 0 when the birth year
// is unknown
func turning(b models.UpcomingBirthday) int {
	if b.Person.BirthYear == 0 {
		return 0
	}
	return b.NextBirthday.Year() - b.Person.BirthYear
}

// SendBirthdayDigest emails a list of upcoming birthdays
func (s *EmailService) SendBirthdayDigest(ctx context.Context, toEmail string, birthdays []models.UpcomingBirthday, days int) error {
	if !s.enabled {
		s.logger.Info("skipping email send (service disabled)", zap.String("to", toEmail))
		return nil
	}

	lines := make([]digestLine, 0, len(birthdays))
	var text strings.Builder
	fmt.Fprintf(&text, "Birthdays in the next %d days:\n\n", days)
	for _, b := range birthdays {
		line := digestLine{
			When:     kinship.WhenLabel(b.DaysUntil),
			Name:     b.Person.FullName(),
			Date:     b.NextBirthday.Format("Monday, January 2"),
			Turning:  turning(b),
			Families: strings.Join(b.FamilyNames, ", "),
		}
		lines = append(lines, line)
		fmt.Fprintf(&text, "- %s: %s, %s", line.When, line.Name, line.Date)
		if line.Turning > 0 {
			fmt.Fprintf(&text, " (turning %d)", line.Turning)
		}
		text.WriteString("\n")
	}
	fmt.Fprintf(&text, "\nOpen the family tree: %s/birthdays\n\n---\nThis is an automated email from Family Tree. Please do not reply.\n", s.appBaseURL)

	var html strings.Builder
	err := digestHTML.Execute(&html, map[string]any{
		"Days":    days,
		"Lines":   lines,
		"BaseURL": s.appBaseURL,
	})
	if err != nil {
		return fmt.Errorf("failed to render digest: %w", err)
	}

	subject := fmt.Sprintf("%d upcoming birthday", len(birthdays))
	if len(birthdays) != 1 {
		subject += "s"
	}
	return s.sendEmail(ctx, toEmail, subject, html.String(), text.String())
}

// sendEmail sends an email using Amazon SES
func (s *EmailService) sendEmail(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	fromAddress := s.fromEmail
	if s.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data:    aws.String(subject),
					Charset: aws.String("UTF-8"),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data:    aws.String(htmlBody),
						Charset: aws.String("UTF-8"),
					},
					Text: &types.Content{
						Data:    aws.String(textBody),
						Charset: aws.String("UTF-8"),
					},
				},
			},
		},
	}

	result, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	fields := []zap.Field{zap.String("to", toEmail), zap.String("subject", subject)}
	if result.MessageId != nil {
		fields = append(fields, zap.String("message_id", *result.MessageId))
	}
	s.logger.Info("email sent", fields...)
	return nil
}
