package service

import (
	"context"
	"time"

	"github.com/jose-valero/streambot/internal/domain"
)

// Lo implementa internal/adapters/discord.Voice
type VoiceGateway interface {
	JoinVoice(ctx context.Context, guildID, channelID string) error
	CurrentVoiceChannel() (string, bool)
}

// Lo implementa internal/adapters/discord.DirectMessenger
type DirectMessenger interface {
	SendDM(ctx context.Context, userID, content string) error
}

// Lo implementa internal/infra/storage.StateRepo
type AutoVocRepo interface {
	GetAutoVoc(ctx context.Context) (domain.AutoVocState, error)
	SaveAutoVoc(ctx context.Context, guildID, channelID string, enabled bool) error
	DisableAutoVoc(ctx context.Context) error
}

type CooldownRepo interface {
	GetGSCooldown(ctx context.Context) (domain.GSCooldown, error)
	SaveGSLastRun(ctx context.Context, at time.Time) error
}

type AlertsRepo interface {
	GetAlerts(ctx context.Context) (domain.AlertsConfig, error)
	SaveAlerts(ctx context.Context, enabled bool) error
}

// Alerter avisa al owner; AlertsService lo implementa.
type Alerter interface {
	Notify(ctx context.Context, text string)
}

// CommandPoster publica un comando en un canal (lo usa el scheduler).
type CommandPoster interface {
	PostCommand(ctx context.Context, channelID, content string) error
}

// Lo implementan storage.TaskRepo, mongostore.Tasks y memstore.Tasks.
type TaskRepo interface {
	Insert(ctx context.Context, t domain.ScheduledTask) error
	List(ctx context.Context) ([]domain.ScheduledTask, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) error
	DeleteAll(ctx context.Context) (int64, error)
}

// Pinger reporta si el store responde (health).
type Pinger interface {
	Ping(ctx context.Context) error
}
