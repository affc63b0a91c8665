package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/jose-valero/streambot/internal/app/task"
	"github.com/jose-valero/streambot/internal/domain"
	"github.com/jose-valero/streambot/internal/infra/storage"
)

const DefaultAutoVocInterval = 10 * time.Minute

// AutoVocService mantiene al bot conectado al canal de voz designado.
// Cada tick compara el canal actual con el guardado y reconecta si derivó.
type AutoVocService struct {
	repo     AutoVocRepo
	voice    VoiceGateway
	alerts   Alerter
	log      *zap.Logger
	interval time.Duration

	mu     sync.Mutex
	ticker *task.Handle
}

func NewAutoVocService(repo AutoVocRepo, voice VoiceGateway, alerts Alerter, log *zap.Logger, interval time.Duration) *AutoVocService {
	if interval <= 0 {
		interval = DefaultAutoVocInterval
	}
	return &AutoVocService{repo: repo, voice: voice, alerts: alerts, log: log, interval: interval}
}

// Enable guarda el destino y hace un solo intento de conexión. Si el join
// falla, el estado queda guardado y el próximo tick reintenta.
func (s *AutoVocService) Enable(ctx context.Context, guildID, channelID string) error {
	if err := s.repo.SaveAutoVoc(ctx, guildID, channelID, true); err != nil {
		return fmt.Errorf("save autovoc: %w", err)
	}
	if err := s.voice.JoinVoice(ctx, guildID, channelID); err != nil {
		s.log.Warn("autovoc join failed, will retry next tick",
			zap.String("guild", guildID), zap.String("channel", channelID), zap.Error(err))
		return fmt.Errorf("join voice: %w", err)
	}
	s.log.Info("autovoc enabled", zap.String("guild", guildID), zap.String("channel", channelID))
	return nil
}

// Disable apaga la vigilancia. No desconecta.
func (s *AutoVocService) Disable(ctx context.Context) error {
	if err := s.repo.DisableAutoVoc(ctx); err != nil {
		return fmt.Errorf("disable autovoc: %w", err)
	}
	s.log.Info("autovoc disabled")
	return nil
}

// ReconcileTick nunca devuelve error: cualquier falla se loguea y se reintenta
// en el siguiente tick.
func (s *AutoVocService) ReconcileTick(ctx context.Context) {
	defer func() {
		if rec := recover(); rec != nil {
			s.log.Error("panic in autovoc tick", zap.Any("panic", rec))
		}
	}()

	st, err := s.repo.GetAutoVoc(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err != nil {
		s.log.Error("autovoc check error", zap.Error(err))
		return
	}
	if !st.Enabled {
		return
	}

	if cur, ok := s.voice.CurrentVoiceChannel(); ok && cur == st.ChannelID {
		return
	}

	s.log.Info("bot not in autovoc channel, reconnecting", zap.String("channel", st.ChannelID))
	if err := s.voice.JoinVoice(ctx, st.GuildID, st.ChannelID); err != nil {
		s.log.Error("autovoc reconnection failed", zap.Error(err))
		if s.alerts != nil {
			s.alerts.Notify(ctx, fmt.Sprintf("Reconnexion AutoVoc échouée pour <#%s>: %v", st.ChannelID, err))
		}
		return
	}
	s.log.Info("autovoc reconnected", zap.String("channel", st.ChannelID))
}

// CurrentStatus combina el estado persistido con la membresía real.
func (s *AutoVocService) CurrentStatus(ctx context.Context) domain.AutoVocStatus {
	st, err := s.repo.GetAutoVoc(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.AutoVocDisabled
	}
	if err != nil {
		return domain.AutoVocError
	}
	if !st.Enabled {
		return domain.AutoVocDisabled
	}
	if cur, ok := s.voice.CurrentVoiceChannel(); ok && cur == st.ChannelID {
		return domain.AutoVocConnected
	}
	return domain.AutoVocDisconnected
}

// Boot conecta una vez al arrancar si AutoVoc estaba activo.
func (s *AutoVocService) Boot(ctx context.Context) {
	st, err := s.repo.GetAutoVoc(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		return
	}
	if err != nil {
		s.log.Error("autovoc boot: state lookup failed", zap.Error(err))
		return
	}
	if !st.Enabled {
		return
	}
	s.log.Info("connecting to autovoc channel", zap.String("channel", st.ChannelID))
	if err := s.voice.JoinVoice(ctx, st.GuildID, st.ChannelID); err != nil {
		s.log.Error("autovoc connection failed", zap.Error(err))
		return
	}
	s.log.Info("autovoc connected")
}

// Start arranca el ticker de reconciliación. Llamarlo dos veces reemplaza el anterior.
func (s *AutoVocService) Start(ctx context.Context) *task.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ticker != nil {
		s.ticker.Cancel()
	}
	s.ticker = task.Every(ctx, s.interval, func(ctx context.Context) {
		tctx, cancel := context.WithTimeout(ctx, time.Minute)
		defer cancel()
		s.ReconcileTick(tctx)
	})
	s.log.Info("autovoc monitoring started", zap.Duration("every", s.interval))
	return s.ticker
}

func (s *AutoVocService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ticker != nil {
		s.ticker.Cancel()
		s.ticker = nil
	}
}
