package models

type NotificationChannel string

const (
	ChannelEmail NotificationChannel = "email"
	ChannelSMS   NotificationChannel = "sms"
)

// Recipient is one address on a notification roster.
type Recipient struct {
	Channel NotificationChannel `json:"channel"`
	Address string              `json:"address"`
	TeamID  int                 `json:"team_id,omitempty"`
}

// DeliveryResult reports the outcome of one send attempt.
type DeliveryResult struct {
	Recipient string              `json:"recipient"`
	Channel   NotificationChannel `json:"channel"`
	OK        bool                `json:"ok"`
	Reason    string              `json:"reason,omitempty"`
}
