package domain

import "time"

// AutoVocState es el documento singleton "autovoc_state".
type AutoVocState struct {
	GuildID   string    `json:"guildId" bson:"guildId"`
	ChannelID string    `json:"channelId" bson:"channelId"`
	Enabled   bool      `json:"enabled" bson:"enabled"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

// VoiceState guarda el ultimo join manual ($join), independiente de AutoVoc.
type VoiceState struct {
	GuildID   string    `json:"guildId" bson:"guildId"`
	ChannelID string    `json:"channelId" bson:"channelId"`
	Timestamp time.Time `json:"timestamp" bson:"timestamp"`
}

type AutoVocStatus int

const (
	AutoVocDisabled AutoVocStatus = iota
	AutoVocConnected
	AutoVocDisconnected
	AutoVocError
)

func (s AutoVocStatus) String() string {
	switch s {
	case AutoVocConnected:
		return "Actif & Connecté"
	case AutoVocDisconnected:
		return "Actif mais déconnecté"
	case AutoVocError:
		return "Erreur"
	default:
		return "Désactivé"
	}
}
