package discord

import (
	"context"
	"errors"
	"sync"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

var ErrNotInVoice = errors.New("not connected to voice")

// Voice es la presencia en voz de la cuenta. Una cuenta de usuario solo
// puede estar en un canal de voz a la vez.
type Voice struct {
	s   *discordgo.Session
	log *zap.Logger

	mu   sync.Mutex
	mute bool
	deaf bool
}

func NewVoice(s *discordgo.Session, log *zap.Logger) *Voice {
	return &Voice{s: s, log: log}
}

// JoinVoice hace un solo intento. ChannelVoiceJoin no recibe ctx, así que si
// ctx vence primero devolvemos su error y el join sigue en segundo plano.
func (v *Voice) JoinVoice(ctx context.Context, guildID, channelID string) error {
	v.mu.Lock()
	mute, deaf := v.mute, v.deaf
	v.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		_, err := v.s.ChannelVoiceJoin(guildID, channelID, mute, deaf)
		done <- err
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return err
		}
	}
	v.log.Info("joined voice", zap.String("guild", guildID), zap.String("channel", channelID))
	return nil
}

// current devuelve la conexión activa, si hay.
func (v *Voice) current() (*discordgo.VoiceConnection, string) {
	v.s.RLock()
	defer v.s.RUnlock()
	for _, vc := range v.s.VoiceConnections {
		vc.RLock()
		ch := vc.ChannelID
		vc.RUnlock()
		if ch != "" {
			return vc, ch
		}
	}
	return nil, ""
}

func (v *Voice) CurrentVoiceChannel() (string, bool) {
	_, ch := v.current()
	return ch, ch != ""
}

func (v *Voice) Leave() error {
	vc, _ := v.current()
	if vc == nil {
		return ErrNotInVoice
	}
	return vc.Disconnect()
}

func (v *Voice) SetMute(on bool) error {
	v.mu.Lock()
	v.mute = on
	deaf := v.deaf
	v.mu.Unlock()
	return v.refresh(on, deaf)
}

func (v *Voice) SetDeaf(on bool) error {
	v.mu.Lock()
	v.deaf = on
	mute := v.mute
	v.mu.Unlock()
	return v.refresh(mute, on)
}

// refresh reenvía el estado de voz con los flags nuevos.
func (v *Voice) refresh(mute, deaf bool) error {
	vc, ch := v.current()
	if vc == nil {
		return ErrNotInVoice
	}
	return vc.ChangeChannel(ch, mute, deaf)
}

// ResolveVoiceChannel busca en los guilds cacheados un canal de voz o stage
// con ese id y devuelve su guild.
func (v *Voice) ResolveVoiceChannel(channelID string) (string, bool) {
	v.s.State.RLock()
	defer v.s.State.RUnlock()
	for _, g := range v.s.State.Guilds {
		for _, ch := range g.Channels {
			if ch.ID != channelID {
				continue
			}
			if ch.Type == discordgo.ChannelTypeGuildVoice || ch.Type == discordgo.ChannelTypeGuildStageVoice {
				return g.ID, true
			}
			return "", false
		}
	}
	return "", false
}

// FindMember busca al usuario en los guilds cacheados y su canal de voz ("" si no está en voz).
func (v *Voice) FindMember(userID string) (name, channelID string, found bool) {
	v.s.State.RLock()
	defer v.s.State.RUnlock()
	for _, g := range v.s.State.Guilds {
		for _, mem := range g.Members {
			if mem.User == nil || mem.User.ID != userID {
				continue
			}
			name = mem.User.Username
			for _, vs := range g.VoiceStates {
				if vs.UserID == userID && vs.ChannelID != "" {
					return name, vs.ChannelID, true
				}
			}
			return name, "", true
		}
	}
	return "", "", false
}

// AuthorVoice devuelve el canal de voz en el que está el autor dentro del guild.
func (v *Voice) AuthorVoice(guildID, userID string) (string, bool) {
	vs, err := v.s.State.VoiceState(guildID, userID)
	if err != nil || vs == nil || vs.ChannelID == "" {
		return "", false
	}
	return vs.ChannelID, true
}
