// acá se arma la tabla de comandos de texto y cada handler despacha al servicio
// que corresponde; el router se encarga de responder y borrar.
package discord

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
)

const deletePause = 300 * time.Millisecond

func (r *Router) commandTable() map[string]command {
	short := 5 * time.Second
	return map[string]command{
		"autovoc":     {run: r.cmdAutoVoc, ttl: short},
		"gs":          {run: r.cmdGS, ttl: 10 * time.Second, long: true},
		"join":        {run: r.cmdJoin, ttl: short},
		"disconnect":  {run: r.cmdDisconnect, ttl: short},
		"find":        {run: r.cmdFind, ttl: short},
		"mute":        {run: r.cmdSelfFlag(true, false, "Mute activé"), ttl: short},
		"unmute":      {run: r.cmdSelfFlag(false, false, "Mute desactivé"), ttl: short},
		"deaf":        {run: r.cmdSelfFlag(true, true, "Deaf activé"), ttl: short},
		"undeaf":      {run: r.cmdSelfFlag(false, true, "Deaf désactivé"), ttl: short},
		"play-live":   {run: r.cmdPlay(false), ttl: short},
		"play-cam":    {run: r.cmdPlay(true), ttl: short},
		"stop-stream": {run: r.cmdStopStream, ttl: short},
		"uptime":      {run: r.cmdUptime, ttl: 15 * time.Second},
		"health":      {run: r.cmdHealth, ttl: 20 * time.Second},
		"config":      {run: r.cmdConfig, ttl: 15 * time.Second},
		"help":        {run: r.cmdHelp, ttl: 30 * time.Second},
		"restart":     {run: r.cmdRestart, ttl: short},
		"clear":       {run: r.cmdClear, ttl: 30 * time.Second, long: true},
		"clearall":    {run: r.cmdClearAll, ttl: short, long: true},
		"schedule":    {run: r.cmdSchedule, ttl: short},
		"alerts":      {run: r.cmdAlerts, ttl: short},
	}
}

//--> autovoc <channel_id> | autovoc | autovoc off
func (r *Router) cmdAutoVoc(ctx context.Context, c *call) (string, error) {
	arg := c.line.Arg(0)
	if arg == "" || strings.EqualFold(arg, "off") {
		if err := r.svc.AutoVoc.Disable(ctx); err != nil {
			return "Erreur de désactivation de l'autovoc", err
		}
		return "AutoVoc désactivé", nil
	}
	guildID, ok := r.voice.ResolveVoiceChannel(arg)
	if !ok {
		return "Channel vocal introuvable", nil
	}
	if err := r.svc.AutoVoc.Enable(ctx, guildID, arg); err != nil {
		return "Erreur d'activation de l'autovoc", err
	}
	return fmt.Sprintf("AutoVoc activé pour <#%s>", arg), nil
}

// ttl de la respuesta según el sub-comando de gs
func gsTTL(sub string) time.Duration {
	switch sub {
	case "", "list", "send", "confirm":
		return 30 * time.Second
	case "start":
		return 15 * time.Second
	default:
		return 10 * time.Second
	}
}

//--> gs <sub> ...; confirm puede tardar minutos, el resto lleva timeout normal
func (r *Router) cmdGS(ctx context.Context, c *call) (string, error) {
	sub := strings.ToLower(c.line.Arg(0))
	c.ttl = gsTTL(sub)

	var progress func(string)
	if sub == "confirm" {
		progress = func(text string) {
			pctx, cancel := context.WithTimeout(r.ctx, 10*time.Second)
			defer cancel()
			r.reply.Edit(pctx, c.m.Message, text)
		}
	} else {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, commandTimeout)
		defer cancel()
	}
	return r.svc.GS.Handle(ctx, c.authorID(), sub, c.line.Tail(2), progress)
}

//--> join <channel_id>
func (r *Router) cmdJoin(ctx context.Context, c *call) (string, error) {
	channelID := c.line.Arg(0)
	if channelID == "" {
		return "Usage: " + r.cfg.Prefix + "join <channel_id>", nil
	}
	guildID, ok := r.voice.ResolveVoiceChannel(channelID)
	if !ok {
		return "Channel vocal introuvable", nil
	}
	if err := r.voice.JoinVoice(ctx, guildID, channelID); err != nil {
		return "Erreur de connexion", err
	}
	if err := r.svc.State.SaveVoiceState(ctx, guildID, channelID); err != nil {
		r.log.Warn("save voice state", zap.Error(err))
	}
	return fmt.Sprintf("Connecté a <#%s>", channelID), nil
}

//--> disconnect: corta el stream, sale de voz y borra voice_state
func (r *Router) cmdDisconnect(ctx context.Context, c *call) (string, error) {
	if r.stream != nil {
		r.stream.Stop()
	}
	if err := r.voice.Leave(); err != nil && !errors.Is(err, ErrNotInVoice) {
		r.log.Warn("leave voice", zap.Error(err))
	}
	if err := r.svc.State.ClearVoiceState(ctx); err != nil {
		r.log.Warn("clear voice state", zap.Error(err))
	}
	return "Deconnecté du vocal", nil
}

//--> find <id | @mention>
func (r *Router) cmdFind(_ context.Context, c *call) (string, error) {
	arg := c.line.Arg(0)
	if arg == "" {
		return "Usage: " + r.cfg.Prefix + "find <user_id ou @mention>", nil
	}
	name, channelID, found := r.voice.FindMember(userIDFromArg(arg))
	switch {
	case !found:
		return "Utilisateur introuvable", nil
	case channelID == "":
		return name + " n'est pas en vocal", nil
	default:
		return fmt.Sprintf("%s est en vocal dans <#%s>", name, channelID), nil
	}
}

//--> mute/unmute/deaf/undeaf
func (r *Router) cmdSelfFlag(on, deaf bool, okText string) commandFunc {
	return func(_ context.Context, _ *call) (string, error) {
		var err error
		if deaf {
			err = r.voice.SetDeaf(on)
		} else {
			err = r.voice.SetMute(on)
		}
		if errors.Is(err, ErrNotInVoice) {
			return "Pas connecté en vocal", nil
		}
		if err != nil {
			return "", err
		}
		return okText, nil
	}
}

//--> play-live <url> / play-cam <url>
func (r *Router) cmdPlay(cam bool) commandFunc {
	return func(ctx context.Context, c *call) (string, error) {
		if r.stream == nil {
			return "Streaming non configuré", nil
		}
		url := c.line.Arg(0)
		if url == "" {
			return "Usage: " + r.cfg.Prefix + c.line.Name + " <url>", nil
		}
		channelID, ok := r.voice.AuthorVoice(c.m.GuildID, c.authorID())
		if !ok {
			return "Rejoins un canal vocal d'abord", nil
		}
		if err := r.voice.JoinVoice(ctx, c.m.GuildID, channelID); err != nil {
			return "Erreur de connexion", err
		}

		r.stream.Stop()
		go func() {
			play := r.stream.PlayLive
			if cam {
				play = r.stream.PlayCam
			}
			if err := play(r.ctx, c.m.GuildID, channelID, url, r.cfg.Stream); err != nil {
				r.log.Error("stream failed", zap.String("url", url), zap.Error(err))
			}
		}()
		return "Stream lancé", nil
	}
}

func (r *Router) cmdStopStream(context.Context, *call) (string, error) {
	if r.stream == nil {
		return "Streaming non configuré", nil
	}
	r.stream.Stop()
	return "Stream arreté", nil
}

func (r *Router) cmdUptime(ctx context.Context, _ *call) (string, error) {
	return r.svc.Health.Uptime(ctx), nil
}

func (r *Router) cmdHealth(ctx context.Context, _ *call) (string, error) {
	return r.svc.Health.Report(ctx), nil
}

func (r *Router) cmdConfig(context.Context, *call) (string, error) {
	return configText(r.cfg), nil
}

func (r *Router) cmdHelp(context.Context, *call) (string, error) {
	return helpText(r.cfg.Prefix), nil
}

//--> restart: responde y cancela el contexto principal a los 2s
func (r *Router) cmdRestart(context.Context, *call) (string, error) {
	r.log.Info("restart requested")
	r.reply.group.After(2*time.Second, func(context.Context) {
		r.log.Info("exiting for restart")
		r.restart()
	})
	return "**REDEMARRAGE**\nRedémarrage du bot en cours...", nil
}

//--> clear <n>: borra los últimos n mensajes del autor en el canal
func (r *Router) cmdClear(ctx context.Context, c *call) (string, error) {
	raw := c.line.Arg(0)
	if raw == "" {
		return "Usage: " + r.cfg.Prefix + "clear <nombre>", nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > 100 {
		return "Nombre invalide (1-100)", nil
	}
	if ok, wait := r.limit.Allow(c.authorID()); !ok {
		return fmt.Sprintf("Attends %s avant de relancer.", wait.Round(time.Second)), nil
	}

	batch, err := c.s.ChannelMessages(c.channelID(), 100, c.m.ID, "", "", discordgo.WithContext(ctx))
	if err != nil {
		return "Erreur lors de la suppression", err
	}
	ids := ownMessageIDs(batch, c.authorID())
	if len(ids) > n {
		ids = ids[:n]
	}
	deleted := r.deleteMessages(ctx, c.channelID(), ids)
	return fmt.Sprintf("%d messages supprimés", deleted), nil
}

//--> clearall: pagina hacia atrás hasta que no queden mensajes del autor
func (r *Router) cmdClearAll(ctx context.Context, c *call) (string, error) {
	if ok, wait := r.limit.Allow(c.authorID()); !ok {
		return fmt.Sprintf("Attends %s avant de relancer.", wait.Round(time.Second)), nil
	}
	total := 0
	before := c.m.ID
	for {
		batch, err := c.s.ChannelMessages(c.channelID(), 100, before, "", "", discordgo.WithContext(ctx))
		if err != nil {
			if total > 0 {
				r.log.Warn("clearall stopped early", zap.Int("deleted", total), zap.Error(err))
				break
			}
			return "Erreur lors de la suppression", err
		}
		if len(batch) == 0 {
			break
		}
		total += r.deleteMessages(ctx, c.channelID(), ownMessageIDs(batch, c.authorID()))
		if len(batch) < 100 || ctx.Err() != nil {
			break
		}
		before = batch[len(batch)-1].ID
	}
	return fmt.Sprintf("%d messages supprimés", total), nil
}

func ownMessageIDs(batch []*discordgo.Message, authorID string) []string {
	var ids []string
	for _, m := range batch {
		if m.Author != nil && m.Author.ID == authorID {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// deleteMessages borra de a uno con una pausa entre borrados.
func (r *Router) deleteMessages(ctx context.Context, channelID string, ids []string) int {
	deleted := 0
	for _, id := range ids {
		if err := r.s.ChannelMessageDelete(channelID, id, discordgo.WithContext(ctx)); err != nil {
			r.log.Debug("delete message failed", zap.String("message", id), zap.Error(err))
		} else {
			deleted++
		}
		select {
		case <-ctx.Done():
			return deleted
		case <-time.After(deletePause):
		}
	}
	return deleted
}

//--> schedule <temps> <commande> | list | clear
func (r *Router) cmdSchedule(ctx context.Context, c *call) (string, error) {
	sub := c.line.Arg(0)
	if strings.EqualFold(sub, "list") {
		c.ttl = 15 * time.Second
	}
	cmd := c.line.Tail(2)
	if cmd != "" && !strings.HasPrefix(cmd, r.cfg.Prefix) {
		cmd = r.cfg.Prefix + cmd
	}
	return r.svc.Schedule.Handle(ctx, r.cfg.Prefix, c.channelID(), sub, cmd)
}

//--> alerts on|off|status
func (r *Router) cmdAlerts(ctx context.Context, c *call) (string, error) {
	sub := c.line.Arg(0)
	if strings.EqualFold(sub, "status") {
		c.ttl = 10 * time.Second
	}
	return r.svc.Alerts.Handle(ctx, r.cfg.Prefix, sub)
}
