package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/Dosada05/card-league/models"
)

// sesAPI is the part of the SES v2 client the sender uses.
type sesAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender delivers email through Amazon SES v2.
type SESSender struct {
	client sesAPI
	from   string
	logger *slog.Logger
}

type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	From            string
}

// NewSESSender builds an SES client. Without static keys the default AWS
// credential chain is used.
func NewSESSender(ctx context.Context, cfg SESConfig, logger *slog.Logger) (*SESSender, error) {
	if cfg.Region == "" {
		return nil, fmt.Errorf("ses region is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("ses sender is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return newSESSender(sesv2.NewFromConfig(awsCfg), cfg.From, logger), nil
}

func newSESSender(client sesAPI, from string, logger *slog.Logger) *SESSender {
	return &SESSender{client: client, from: from, logger: orDefaultLogger(logger)}
}

func (s *SESSender) Channel() models.NotificationChannel {
	return models.ChannelEmail
}

func (s *SESSender) Send(ctx context.Context, to string, msg Message) error {
	if to == "" {
		return fmt.Errorf("recipient is required")
	}
	input := &sesv2.SendEmailInput{
		Destination: &types.Destination{
			ToAddresses: []string{to},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(msg.Body)},
				},
			},
		},
		FromEmailAddress: aws.String(s.from),
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		s.logger.ErrorContext(ctx, "failed to send SES email", slog.String("subject", msg.Subject), slog.Any("error", err))
		return fmt.Errorf("send ses email: %w", err)
	}
	return nil
}
