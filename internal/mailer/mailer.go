package mailer

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"go.uber.org/zap"

	"github.com/clotsync/clotsync-api/pkg/config"
)

// Mailer sends a single outbound email. Implementations must be safe for
// concurrent use; delivery is best-effort and failures never propagate to
// request handlers.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// New selects a mailer from config. Provider "ses" uses AWS SES; anything
// else falls back to a no-op mailer that only logs.
func New(cfg config.MailerConfig, logger *zap.Logger) Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	switch cfg.Provider {
	case "ses":
		awsCfg := aws.Config{
			Region: cfg.SESRegion,
			Credentials: aws.NewCredentialsCache(
				credentials.NewStaticCredentialsProvider(cfg.SESAccessKeyID, cfg.SESSecretKey, ""),
			),
		}
		return &sesMailer{
			client:      ses.NewFromConfig(awsCfg),
			fromAddress: cfg.FromAddress,
			fromName:    cfg.FromName,
			logger:      logger,
		}
	case "noop", "":
		return &noopMailer{logger: logger}
	default:
		logger.Warn("unknown mailer provider, using noop", zap.String("provider", cfg.Provider))
		return &noopMailer{logger: logger}
	}
}

type sesMailer struct {
	client      *ses.Client
	fromAddress string
	fromName    string
	logger      *zap.Logger
}

func (m *sesMailer) Send(ctx context.Context, to, subject, body string) error {
	source := m.fromAddress
	if m.fromName != "" {
		source = fmt.Sprintf("%s <%s>", m.fromName, m.fromAddress)
	}
	input := &ses.SendEmailInput{
		Source:      aws.String(source),
		Destination: &types.Destination{ToAddresses: []string{to}},
		Message: &types.Message{
			Subject: &types.Content{Data: aws.String(subject), Charset: aws.String("UTF-8")},
			Body: &types.Body{
				Text: &types.Content{Data: aws.String(body), Charset: aws.String("UTF-8")},
			},
		},
	}
	result, err := m.client.SendEmail(ctx, input)
	if err != nil {
		return fmt.Errorf("send email via ses: %w", err)
	}
	m.logger.Debug("email sent", zap.String("to", to), zap.String("message_id", aws.ToString(result.MessageId)))
	return nil
}

type noopMailer struct {
	logger *zap.Logger
}

func (m *noopMailer) Send(ctx context.Context, to, subject, body string) error {
	m.logger.Debug("email suppressed (noop mailer)", zap.String("to", to), zap.String("subject", subject))
	return nil
}
