package storage

import (
	"context"
	"errors"

	"github.com/jose-valero/streambot/internal/domain"
)

var ErrNotFound = errors.New("not found")

// Claves de los documentos singleton en bot_state.
const (
	KeyAutoVoc    = "autovoc_state"
	KeyGSLastRun  = "gs_last_run"
	KeyVoiceState = "voice_state"
	KeyAlerts     = "alerts_config"
)

// DocStore es el contrato key -> documento (upsert por clave). Get devuelve
// ErrNotFound cuando la clave no existe.
type DocStore interface {
	Get(ctx context.Context, key string, out any) error
	Put(ctx context.Context, key string, doc any) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

// TaskStore persiste los comandos programados.
type TaskStore interface {
	Insert(ctx context.Context, t domain.ScheduledTask) error
	List(ctx context.Context) ([]domain.ScheduledTask, error)
	Delete(ctx context.Context, id string) error
	DeleteMany(ctx context.Context, ids []string) error
	DeleteAll(ctx context.Context) (int64, error)
}
