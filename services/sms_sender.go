package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nyaruka/phonenumbers"

	"github.com/Dosada05/card-league/models"
)

// NormalizePhone parses a phone number, using defaultRegion for numbers
// without a country code, and returns it in E.164 form.
func NormalizePhone(raw, defaultRegion string) (string, error) {
	num, err := phonenumbers.Parse(raw, defaultRegion)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidPhone, err)
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", ErrInvalidPhone
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// LogSMSSender writes text messages to the log instead of a carrier.
type LogSMSSender struct {
	region string
	logger *slog.Logger
}

func NewLogSMSSender(defaultRegion string, logger *slog.Logger) *LogSMSSender {
	return &LogSMSSender{region: defaultRegion, logger: orDefaultLogger(logger)}
}

func (s *LogSMSSender) Channel() models.NotificationChannel {
	return models.ChannelSMS
}

func (s *LogSMSSender) Send(ctx context.Context, to string, msg Message) error {
	number, err := NormalizePhone(to, s.region)
	if err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "sms sent",
		slog.String("to", number),
		slog.String("subject", msg.Subject),
		slog.Int("length", len(msg.Body)))
	return nil
}
