package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/Dosada05/card-league/metrics"
	"github.com/Dosada05/card-league/models"
)

// Message is the channel-neutral content of a notification.
type Message struct {
	Subject string
	Body    string
}

// Sender delivers messages over one channel.
type Sender interface {
	Channel() models.NotificationChannel
	Send(ctx context.Context, to string, msg Message) error
}

type NotificationService interface {
	// Notify sends msg to every recipient and reports one result per recipient.
	Notify(ctx context.Context, recipients []models.Recipient, msg Message) []models.DeliveryResult
	// NotifyNextMatch tells a team where it plays next. next may be nil when
	// the team has no more games.
	NotifyNextMatch(ctx context.Context, team models.Team, next *models.Game, opponent *models.Team) []models.DeliveryResult
}

type notificationService struct {
	senders map[models.NotificationChannel]Sender
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewNotificationService(logger *slog.Logger, m *metrics.Metrics, senders ...Sender) NotificationService {
	bySender := make(map[models.NotificationChannel]Sender, len(senders))
	for _, sender := range senders {
		if sender != nil {
			bySender[sender.Channel()] = sender
		}
	}
	return &notificationService{senders: bySender, metrics: m, logger: orDefaultLogger(logger)}
}

func (s *notificationService) Notify(ctx context.Context, recipients []models.Recipient, msg Message) []models.DeliveryResult {
	results := make([]models.DeliveryResult, 0, len(recipients))
	for _, rcpt := range recipients {
		result := models.DeliveryResult{Recipient: rcpt.Address, Channel: rcpt.Channel}

		sender, ok := s.senders[rcpt.Channel]
		switch {
		case strings.TrimSpace(rcpt.Address) == "":
			result.Reason = "missing address"
		case !ok:
			result.Reason = fmt.Sprintf("no sender for channel %q", rcpt.Channel)
		default:
			if err := sender.Send(ctx, rcpt.Address, msg); err != nil {
				result.Reason = err.Error()
				s.logger.WarnContext(ctx, "notification delivery failed",
					slog.String("channel", string(rcpt.Channel)),
					slog.Int("team_id", rcpt.TeamID),
					slog.Any("error", err))
			} else {
				result.OK = true
			}
		}

		s.metrics.ObserveNotification(string(rcpt.Channel), result.OK)
		results = append(results, result)
	}
	return results
}

func (s *notificationService) NotifyNextMatch(ctx context.Context, team models.Team, next *models.Game, opponent *models.Team) []models.DeliveryResult {
	recipients := RecipientsForTeam(team)
	if len(recipients) == 0 {
		s.logger.DebugContext(ctx, "team has no contact details, skipping notification", slog.Int("team_id", team.ID))
		return nil
	}
	return s.Notify(ctx, recipients, NextMatchMessage(team, next, opponent))
}

// RecipientsForTeam lists the contact addresses a team registered.
func RecipientsForTeam(team models.Team) []models.Recipient {
	var recipients []models.Recipient
	if email := strings.TrimSpace(derefString(team.ContactEmail)); email != "" {
		recipients = append(recipients, models.Recipient{Channel: models.ChannelEmail, Address: email, TeamID: team.ID})
	}
	if phone := strings.TrimSpace(derefString(team.ContactPhone)); phone != "" {
		recipients = append(recipients, models.Recipient{Channel: models.ChannelSMS, Address: phone, TeamID: team.ID})
	}
	return recipients
}

func NextMatchMessage(team models.Team, next *models.Game, opponent *models.Team) Message {
	if next == nil {
		return Message{
			Subject: "No more games scheduled",
			Body:    fmt.Sprintf("%s (team #%d) has no further games in this tournament.", team.Name, team.TeamNumber),
		}
	}
	against := "TBD"
	if opponent != nil {
		against = fmt.Sprintf("%s (team #%d)", opponent.Name, opponent.TeamNumber)
	}
	return Message{
		Subject: fmt.Sprintf("Your next game: round %d, table %d", next.Round, next.TableNumber),
		Body: fmt.Sprintf("%s (team #%d) plays round %d at table %d against %s.",
			team.Name, team.TeamNumber, next.Round, next.TableNumber, against),
	}
}
