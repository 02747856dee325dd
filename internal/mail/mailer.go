// Package mail sends invitation emails through Amazon SES. The mailer is a
// best-effort convenience on top of the invitation workflow: the token in
// the API response is authoritative and an email failure never fails the
// invitation itself.
package mail

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// Mailer sends transactional email via SES. A mailer built without a from
// address is disabled and silently skips every send.
type Mailer struct {
	client    *sesv2.Client
	fromEmail string
	fromName  string
	baseURL   string
	enabled   bool
	logger    *slog.Logger
}

// NewMailer creates a mailer. An empty fromEmail yields a disabled mailer
// and no AWS configuration is loaded.
func NewMailer(ctx context.Context, logger *slog.Logger, awsRegion, fromEmail, fromName, baseURL string) (*Mailer, error) {
	if fromEmail == "" {
		logger.Info("invitation email disabled: no from address configured")
		return &Mailer{enabled: false, logger: logger}, nil
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(awsRegion))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config: %w", err)
	}

	logger.Info("invitation email enabled", "from", fromEmail, "region", awsRegion)
	return &Mailer{
		client:    sesv2.NewFromConfig(cfg),
		fromEmail: fromEmail,
		fromName:  fromName,
		baseURL:   baseURL,
		enabled:   true,
		logger:    logger,
	}, nil
}

// Enabled reports whether the mailer will actually send anything.
func (m *Mailer) Enabled() bool {
	return m.enabled
}

// SendInvitation emails the invitee a link carrying the invitation token.
func (m *Mailer) SendInvitation(ctx context.Context, toEmail, inviterName, token string) error {
	if !m.enabled {
		m.logger.Debug("skipping invitation email, mailer disabled", "to", toEmail)
		return nil
	}

	link := fmt.Sprintf("%s/invite/%s", m.baseURL, token)

	subject := "You've been invited to share a parenting plan"
	textBody := fmt.Sprintf(
		"%s has invited you to join their family's parenting plan.\n\n"+
			"Open this link to accept the invitation:\n%s\n\n"+
			"If you weren't expecting this, you can ignore this email.\n",
		inviterName, link)
	htmlBody := fmt.Sprintf(
		`<p>%s has invited you to join their family's parenting plan.</p>`+
			`<p><a href="%s">Accept the invitation</a></p>`+
			`<p>If you weren't expecting this, you can ignore this email.</p>`,
		inviterName, link)

	fromAddress := m.fromEmail
	if m.fromName != "" {
		fromAddress = fmt.Sprintf("%s <%s>", m.fromName, m.fromEmail)
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

	if _, err := m.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("sending invitation email to %s: %w", toEmail, err)
	}
	m.logger.Info("invitation email sent", "to", toEmail)
	return nil
}
