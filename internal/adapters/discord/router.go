package discord

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/jose-valero/streambot/internal/app/service"
	"github.com/jose-valero/streambot/internal/infra/config"
)

const (
	commandTimeout = 12 * time.Second
	errorTTL       = 5 * time.Second
)

// StreamPipeline es el pipeline de video (externo). Puede ser nil.
type StreamPipeline interface {
	PlayLive(ctx context.Context, guildID, channelID, url string, opts config.StreamOpts) error
	PlayCam(ctx context.Context, guildID, channelID, url string, opts config.StreamOpts) error
	Stop()
}

// Lo implementa storage.StateRepo
type VoiceStateRepo interface {
	SaveVoiceState(ctx context.Context, guildID, channelID string) error
	ClearVoiceState(ctx context.Context) error
}

type Services struct {
	AutoVoc  *service.AutoVocService
	GS       *service.GSService
	Schedule *service.ScheduleService
	Alerts   *service.AlertsService
	Health   *service.HealthService
	State    VoiceStateRepo
}

type Router struct {
	ctx context.Context
	s   *discordgo.Session
	cfg config.Config
	log *zap.Logger

	voice   *Voice
	reply   *Replier
	svc     Services
	stream  StreamPipeline
	limit   *userLimiter
	restart func()

	commands map[string]command
}

// NewRouter: ctx es la vida del bot; restart la cancela.
func NewRouter(
	ctx context.Context,
	s *discordgo.Session,
	cfg config.Config,
	log *zap.Logger,
	voice *Voice,
	reply *Replier,
	svc Services,
	stream StreamPipeline,
	restart func(),
) *Router {
	r := &Router{
		ctx:     ctx,
		s:       s,
		cfg:     cfg,
		log:     log,
		voice:   voice,
		reply:   reply,
		svc:     svc,
		stream:  stream,
		limit:   newUserLimiter(5 * time.Second),
		restart: restart,
	}
	r.commands = r.commandTable()
	return r
}

func (r *Router) Handlers() {
	r.s.AddHandler(r.onMessageCreate)
}

func (r *Router) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Message == nil || !r.isOperator(s, m.Author) || m.Content == "" {
		return
	}
	line, ok := parseCommand(r.cfg.Prefix, m.Content)
	if !ok {
		return
	}
	cmd, ok := r.commands[line.Name]
	if !ok {
		return
	}

	log := r.log.With(
		zap.String("cmd", line.Name),
		zap.String("by", m.Author.ID),
		zap.String("channel", m.ChannelID),
	)
	log.Info("command received")

	defer func() {
		if rec := recover(); rec != nil {
			log.Error("panic in command", zap.Any("panic", rec))
			r.reply.Reply(r.ctx, m.Message, "⚠️ Erreur inattendue.", errorTTL)
		}
	}()

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if cmd.long {
		ctx, cancel = context.WithCancel(r.ctx)
	} else {
		ctx, cancel = context.WithTimeout(r.ctx, commandTimeout)
	}
	defer cancel()

	done := step(log, line.Name)
	c := &call{s: s, m: m, line: line, ttl: cmd.ttl}
	msg, err := cmd.run(ctx, c)
	done()

	if err != nil {
		log.Error("command failed", zap.Error(err))
		if msg == "" {
			msg = "Erreur: " + err.Error()
		}
		msg = "⚠️ " + msg
		c.ttl = max(c.ttl, errorTTL)
	}
	if msg == "" {
		return
	}
	rctx, rcancel := context.WithTimeout(r.ctx, 10*time.Second)
	defer rcancel()
	r.reply.Reply(rctx, m.Message, msg, c.ttl)
}
