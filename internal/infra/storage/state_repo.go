package storage

import (
	"context"
	"errors"
	"time"

	"github.com/jose-valero/streambot/internal/domain"
)

// StateRepo tipa los documentos singleton sobre cualquier DocStore
// (Postgres, Mongo o memoria).
type StateRepo struct {
	docs DocStore
	now  func() time.Time
}

func NewStateRepo(docs DocStore) *StateRepo {
	return &StateRepo{docs: docs, now: time.Now}
}

func (r *StateRepo) Ping(ctx context.Context) error { return r.docs.Ping(ctx) }

// ---------- autovoc ----------

func (r *StateRepo) GetAutoVoc(ctx context.Context) (domain.AutoVocState, error) {
	var st domain.AutoVocState
	err := r.docs.Get(ctx, KeyAutoVoc, &st)
	return st, err
}

func (r *StateRepo) SaveAutoVoc(ctx context.Context, guildID, channelID string, enabled bool) error {
	return r.docs.Put(ctx, KeyAutoVoc, domain.AutoVocState{
		GuildID:   guildID,
		ChannelID: channelID,
		Enabled:   enabled,
		Timestamp: r.now(),
	})
}

// DisableAutoVoc conserva guild/canal y solo apaga el flag (soft delete).
func (r *StateRepo) DisableAutoVoc(ctx context.Context) error {
	st, err := r.GetAutoVoc(ctx)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	st.Enabled = false
	st.Timestamp = r.now()
	return r.docs.Put(ctx, KeyAutoVoc, st)
}

// ---------- voice_state ----------

func (r *StateRepo) SaveVoiceState(ctx context.Context, guildID, channelID string) error {
	return r.docs.Put(ctx, KeyVoiceState, domain.VoiceState{
		GuildID:   guildID,
		ChannelID: channelID,
		Timestamp: r.now(),
	})
}

func (r *StateRepo) GetVoiceState(ctx context.Context) (domain.VoiceState, error) {
	var vs domain.VoiceState
	err := r.docs.Get(ctx, KeyVoiceState, &vs)
	return vs, err
}

func (r *StateRepo) ClearVoiceState(ctx context.Context) error {
	return r.docs.Delete(ctx, KeyVoiceState)
}

// ---------- gs cooldown ----------

// GetGSCooldown devuelve el cooldown vacio si nunca corrió una campaña.
func (r *StateRepo) GetGSCooldown(ctx context.Context) (domain.GSCooldown, error) {
	var c domain.GSCooldown
	err := r.docs.Get(ctx, KeyGSLastRun, &c)
	if errors.Is(err, ErrNotFound) {
		return domain.GSCooldown{}, nil
	}
	return c, err
}

func (r *StateRepo) SaveGSLastRun(ctx context.Context, at time.Time) error {
	return r.docs.Put(ctx, KeyGSLastRun, domain.GSCooldown{LastRunAt: at})
}

func (r *StateRepo) ResetGSCooldown(ctx context.Context) error {
	return r.docs.Delete(ctx, KeyGSLastRun)
}

// ---------- alerts ----------

func (r *StateRepo) GetAlerts(ctx context.Context) (domain.AlertsConfig, error) {
	var a domain.AlertsConfig
	err := r.docs.Get(ctx, KeyAlerts, &a)
	if errors.Is(err, ErrNotFound) {
		return domain.AlertsConfig{}, nil
	}
	return a, err
}

func (r *StateRepo) SaveAlerts(ctx context.Context, enabled bool) error {
	return r.docs.Put(ctx, KeyAlerts, domain.AlertsConfig{Enabled: enabled, Timestamp: r.now()})
}
