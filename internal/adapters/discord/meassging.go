package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/jose-valero/streambot/internal/app/task"
)

// límite de Discord por mensaje
const maxMessageLen = 2000

// Replier responde editando el mensaje del comando y lo borra tras un ttl.
// Todo es best-effort: los errores solo se loguean.
type Replier struct {
	s     *discordgo.Session
	group *task.Group
	log   *zap.Logger
}

func NewReplier(s *discordgo.Session, group *task.Group, log *zap.Logger) *Replier {
	return &Replier{s: s, group: group, log: log}
}

func clip(content string) string {
	r := []rune(content)
	if len(r) <= maxMessageLen {
		return content
	}
	return string(r[:maxMessageLen-3]) + "..."
}

// Edit reemplaza el contenido del mensaje. Si el mensaje no es de la propia
// cuenta no se puede editar y se manda uno nuevo en el canal.
func (r *Replier) Edit(ctx context.Context, m *discordgo.Message, content string) *discordgo.Message {
	content = clip(content)
	if r.s.State != nil && r.s.State.User != nil && m.Author != nil && m.Author.ID == r.s.State.User.ID {
		out, err := r.s.ChannelMessageEdit(m.ChannelID, m.ID, content, discordgo.WithContext(ctx))
		if err != nil {
			r.log.Warn("edit reply failed", zap.String("message", m.ID), zap.Error(err))
			return nil
		}
		return out
	}
	out, err := r.s.ChannelMessageSend(m.ChannelID, content, discordgo.WithContext(ctx))
	if err != nil {
		r.log.Warn("send reply failed", zap.String("channel", m.ChannelID), zap.Error(err))
		return nil
	}
	return out
}

// Reply edita y programa el borrado del mensaje del comando (y de la
// respuesta si fue un mensaje aparte).
func (r *Replier) Reply(ctx context.Context, m *discordgo.Message, content string, ttl time.Duration) {
	out := r.Edit(ctx, m, content)
	r.DeleteLater(m.ChannelID, m.ID, ttl)
	if out != nil && out.ID != m.ID {
		r.DeleteLater(out.ChannelID, out.ID, ttl)
	}
}

func (r *Replier) DeleteLater(channelID, messageID string, ttl time.Duration) {
	r.group.After(ttl, func(ctx context.Context) {
		if err := r.s.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
			r.log.Debug("delayed delete failed", zap.String("message", messageID), zap.Error(err))
		}
	})
}

// Messenger manda DMs (gs, alertas) y publica comandos programados.
type Messenger struct {
	s *discordgo.Session
}

func NewMessenger(s *discordgo.Session) *Messenger { return &Messenger{s: s} }

func (m *Messenger) SendDM(ctx context.Context, userID, content string) error {
	ch, err := m.s.UserChannelCreate(userID, discordgo.WithContext(ctx))
	if err != nil {
		return err
	}
	_, err = m.s.ChannelMessageSend(ch.ID, clip(content), discordgo.WithContext(ctx))
	return err
}

func (m *Messenger) PostCommand(ctx context.Context, channelID, content string) error {
	_, err := m.s.ChannelMessageSend(channelID, clip(content), discordgo.WithContext(ctx))
	return err
}
