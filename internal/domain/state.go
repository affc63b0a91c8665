package domain

import "time"

// AlertsConfig es el documento singleton "alerts_config".
type AlertsConfig struct {
	Enabled   bool      `json:"enabled" bson:"enabled"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// ScheduledTask: comando programado con $schedule. Al vencer se publica en ChannelID.
type ScheduledTask struct {
	ID        string    `json:"id" bson:"_id"`
	Command   string    `json:"command" bson:"command"`
	ChannelID string    `json:"channelId" bson:"channelId"`
	ExecuteAt time.Time `json:"executeAt" bson:"executeAt"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}
