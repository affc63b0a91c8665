package service

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/jose-valero/streambot/internal/domain"
	"github.com/jose-valero/streambot/internal/infra/tracing"
)

const (
	DefaultGSSendTimeout = 15 * time.Second

	gsListPreview      = 300
	gsSendPreview      = 400
	gsSendPreviewUsers = 25
	gsFailedPreview    = 30
)

type GSOption func(*GSService)

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) GSOption {
	return func(s *GSService) { s.now = now }
}

// WithSleeper reemplaza la espera entre DMs.
func WithSleeper(sleep func(ctx context.Context, d time.Duration) error) GSOption {
	return func(s *GSService) { s.sleep = sleep }
}

// WithJitter reemplaza el jitter aleatorio; recibe el delay base.
func WithJitter(jitter func(base time.Duration) time.Duration) GSOption {
	return func(s *GSService) { s.jitter = jitter }
}

func WithSendTimeout(d time.Duration) GSOption {
	return func(s *GSService) {
		if d > 0 {
			s.sendTimeout = d
		}
	}
}

// GSService es el motor de sesiones de DM masivo ("gs").
type GSService struct {
	sessions *GSSessions
	cooldown CooldownRepo
	dm       DirectMessenger
	log      *zap.Logger
	prefix   string

	now         func() time.Time
	sleep       func(ctx context.Context, d time.Duration) error
	jitter      func(base time.Duration) time.Duration
	sendTimeout time.Duration
}

func NewGSService(sessions *GSSessions, cooldown CooldownRepo, dm DirectMessenger, log *zap.Logger, prefix string, opts ...GSOption) *GSService {
	s := &GSService{
		sessions:    sessions,
		cooldown:    cooldown,
		dm:          dm,
		log:         log,
		prefix:      prefix,
		now:         time.Now,
		sleep:       sleepCtx,
		jitter:      quarterJitter,
		sendTimeout: DefaultGSSendTimeout,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// quarterJitter devuelve un valor en [0, base/4].
func quarterJitter(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	return time.Duration(rand.Int63n(int64(base)/4 + 1))
}

func gsReply(format string, a ...any) string {
	return "**GS**\n" + fmt.Sprintf(format, a...)
}

func (s *GSService) noSession() string {
	return gsReply("Aucune session active. Fais: `%sgs start`", s.prefix)
}

func gsBusy() string {
	return gsReply("Envoi en cours, attends la fin de la campagne.")
}

func (s *GSService) Help() string {
	p := s.prefix
	return gsReply("Commandes:\n"+
		"`%[1]sgs start` démarre une session\n"+
		"`%[1]sgs add <@ID ...>` ajoute des destinataires (max %[2]d)\n"+
		"`%[1]sgs remove <@ID ...>` retire des destinataires\n"+
		"`%[1]sgs msg <texte>` définit le message\n"+
		"`%[1]sgs delay <ms>` délai entre chaque DM (%[3]d-%[4]d)\n"+
		"`%[1]sgs list` affiche la session\n"+
		"`%[1]sgs send` prévisualise puis `%[1]sgs confirm` envoie\n"+
		"`%[1]sgs clear` vide la liste et le message\n"+
		"`%[1]sgs stop` annule la session",
		p, domain.GSMaxRecipients, domain.GSMinDelay.Milliseconds(), domain.GSMaxDelay.Milliseconds())
}

// Handle despacha un sub-comando. arg es el resto del texto después del sub-comando.
// progress (opcional) recibe el aviso de inicio de confirm.
func (s *GSService) Handle(ctx context.Context, operatorID, sub, arg string, progress func(string)) (string, error) {
	switch strings.ToLower(sub) {
	case "":
		return s.Help(), nil
	case "start":
		return s.Start(ctx, operatorID)
	case "stop":
		return s.Stop(operatorID), nil
	case "clear":
		return s.Clear(operatorID), nil
	case "delay":
		return s.SetDelay(operatorID, arg), nil
	case "list":
		return s.List(operatorID), nil
	case "add":
		return s.Add(operatorID, arg), nil
	case "remove":
		return s.Remove(operatorID, arg), nil
	case "msg":
		return s.SetMessage(operatorID, arg), nil
	case "send":
		return s.Send(operatorID), nil
	case "confirm":
		return s.Confirm(ctx, operatorID, progress), nil
	default:
		return gsReply("Sous-commande inconnue: `%s`\n\n", sub) + strings.TrimPrefix(s.Help(), "**GS**\n"), nil
	}
}

// Start abre (o reemplaza) la sesión del operador si no hay cooldown activo.
// Si no se puede leer el cooldown se rechaza.
func (s *GSService) Start(ctx context.Context, operatorID string) (string, error) {
	unlock := s.sessions.Lock(operatorID)
	defer unlock()

	if cur, ok := s.sessions.Get(operatorID); ok && cur.Sending {
		return gsBusy(), nil
	}

	cd, err := s.cooldown.GetGSCooldown(ctx)
	if err != nil {
		return "", fmt.Errorf("read gs cooldown: %w", err)
	}
	if rem := cd.Remaining(s.now()); rem > 0 {
		return gsReply("Cooldown actif. Réessaie dans %s.", formatDelay(rem)), nil
	}

	s.sessions.Put(operatorID, domain.NewGSSession())
	s.log.Info("gs session started", zap.String("operator", operatorID))
	return gsReply("Session démarrée.\n\n"+
		"Ajoute des personnes: `%[1]sgs add <@ID ...>`\n"+
		"Définis le message: `%[1]sgs msg <texte>`\n"+
		"Puis: `%[1]sgs send`", s.prefix), nil
}

// withSession corre fn con el lock del operador tomado y la sesión cargada.
func (s *GSService) withSession(operatorID string, allowWhileSending bool, fn func(*domain.GSSession) string) string {
	unlock := s.sessions.Lock(operatorID)
	defer unlock()

	sess, ok := s.sessions.Get(operatorID)
	if !ok {
		return s.noSession()
	}
	if sess.Sending && !allowWhileSending {
		return gsBusy()
	}
	return fn(sess)
}

func (s *GSService) Stop(operatorID string) string {
	return s.withSession(operatorID, false, func(*domain.GSSession) string {
		s.sessions.Delete(operatorID)
		return gsReply("Session annulée.")
	})
}

// Clear vacía destinatarios y mensaje. No marca el cooldown.
func (s *GSService) Clear(operatorID string) string {
	return s.withSession(operatorID, false, func(sess *domain.GSSession) string {
		sess.Recipients.Reset()
		sess.Message = ""
		sess.AwaitingConfirm = false
		return gsReply("Liste et message réinitialisés.")
	})
}

func (s *GSService) SetDelay(operatorID, raw string) string {
	return s.withSession(operatorID, false, func(sess *domain.GSSession) string {
		fields := strings.Fields(raw)
		usage := gsReply("Usage: `%sgs delay <ms>` (entre %d et %d)",
			s.prefix, domain.GSMinDelay.Milliseconds(), domain.GSMaxDelay.Milliseconds())
		if len(fields) == 0 {
			return usage
		}
		ms, err := strconv.ParseInt(fields[0], 10, 64)
		if err != nil {
			return usage
		}
		// rango en enteros antes de convertir, un ms enorme desborda Duration
		if ms < domain.GSMinDelay.Milliseconds() || ms > domain.GSMaxDelay.Milliseconds() {
			return usage
		}
		sess.Delay = time.Duration(ms) * time.Millisecond
		sess.AwaitingConfirm = false
		return gsReply("Délai réglé à: %dms", ms)
	})
}

func (s *GSService) List(operatorID string) string {
	return s.withSession(operatorID, true, func(sess *domain.GSSession) string {
		ids := sess.Recipients.IDs()
		who := "(aucun)"
		if len(ids) > 0 {
			who = mentions(ids)
		}
		msg := "(vide)"
		if sess.Message != "" {
			msg = truncate(sess.Message, gsListPreview)
		}
		return gsReply("Destinataires (%d/%d): %s\n\nDélai: %dms\n\nMessage:\n%s",
			len(ids), domain.GSMaxRecipients, who, sess.Delay.Milliseconds(), msg)
	})
}

func (s *GSService) Add(operatorID, raw string) string {
	return s.withSession(operatorID, false, func(sess *domain.GSSession) string {
		if strings.TrimSpace(raw) == "" {
			return gsReply("Usage: `%sgs add <@ID ...>`", s.prefix)
		}
		ids := domain.ParseUserIDs(raw)
		if len(ids) == 0 {
			return gsReply("Aucun ID valide trouvé.")
		}
		added, dropped := sess.Recipients.Add(ids...)
		sess.AwaitingConfirm = false
		switch {
		case dropped && added == 0:
			return gsReply("Limite de %d destinataires déjà atteinte, rien ajouté.", domain.GSMaxRecipients)
		case dropped:
			return gsReply("Ajouté: %d. Limite de %d atteinte, le reste est ignoré.\nTotal: %d",
				added, domain.GSMaxRecipients, sess.Recipients.Len())
		default:
			return gsReply("Ajouté: %d\nTotal: %d", added, sess.Recipients.Len())
		}
	})
}

func (s *GSService) Remove(operatorID, raw string) string {
	return s.withSession(operatorID, false, func(sess *domain.GSSession) string {
		if strings.TrimSpace(raw) == "" {
			return gsReply("Usage: `%sgs remove <@ID ...>`", s.prefix)
		}
		ids := domain.ParseUserIDs(raw)
		if len(ids) == 0 {
			return gsReply("Aucun ID valide trouvé.")
		}
		sess.Recipients.Remove(ids...)
		sess.AwaitingConfirm = false
		return gsReply("Retiré.\nTotal: %d", sess.Recipients.Len())
	})
}

func (s *GSService) SetMessage(operatorID, text string) string {
	return s.withSession(operatorID, false, func(sess *domain.GSSession) string {
		text = strings.TrimSpace(text)
		if text == "" {
			return gsReply("Usage: `%sgs msg <texte>`", s.prefix)
		}
		sess.Message = text
		sess.AwaitingConfirm = false
		return gsReply("Message enregistré.")
	})
}

// Send valida la sesión, muestra la vista previa y habilita confirm.
func (s *GSService) Send(operatorID string) string {
	return s.withSession(operatorID, false, func(sess *domain.GSSession) string {
		if sess.Recipients.Len() == 0 {
			return gsReply("Aucun destinataire. Fais `%sgs add <@ID ...>`", s.prefix)
		}
		if sess.Message == "" {
			return gsReply("Aucun message. Fais `%sgs msg <texte>`", s.prefix)
		}
		sess.AwaitingConfirm = true

		ids := sess.Recipients.IDs()
		preview := ids
		more := ""
		if len(preview) > gsSendPreviewUsers {
			preview = preview[:gsSendPreviewUsers]
			more = fmt.Sprintf(" (+%d)", len(ids)-gsSendPreviewUsers)
		}
		return gsReply("Prévisualisation\n\nDestinataires (%d): %s%s\nDélai: %dms\n\nMessage:\n%s\n\nConfirme avec `%sgs confirm`",
			len(ids), mentions(preview), more, sess.Delay.Milliseconds(),
			truncate(sess.Message, gsSendPreview), s.prefix)
	})
}

// Confirm entrega la campaña. La sesión queda marcada Sending durante la
// entrega (sin tener el lock), se destruye al final y se marca el cooldown.
func (s *GSService) Confirm(ctx context.Context, operatorID string, progress func(string)) string {
	unlock := s.sessions.Lock(operatorID)
	sess, ok := s.sessions.Get(operatorID)
	switch {
	case !ok:
		unlock()
		return s.noSession()
	case sess.Sending:
		unlock()
		return gsBusy()
	case !sess.AwaitingConfirm:
		unlock()
		return gsReply("Rien à confirmer. Fais `%sgs send` d'abord.", s.prefix)
	}
	sess.AwaitingConfirm = false
	sess.Sending = true
	recipients := sess.Recipients.IDs()
	message := sess.Message
	delay := sess.Delay
	unlock()

	if progress != nil {
		progress(gsReply("Envoi en cours...\nDestinataires: %d\n(un délai est appliqué entre chaque DM)", len(recipients)))
	}

	sent, failed := s.deliver(ctx, operatorID, recipients, message, delay)

	unlock = s.sessions.Lock(operatorID)
	s.sessions.Delete(operatorID)
	unlock()

	if err := s.cooldown.SaveGSLastRun(context.WithoutCancel(ctx), s.now()); err != nil {
		s.log.Error("gs cooldown save failed", zap.Error(err))
	}

	s.log.Info("gs campaign done",
		zap.String("operator", operatorID), zap.Int("ok", sent), zap.Int("failed", len(failed)))

	failedText := "(aucun)"
	if len(failed) > 0 {
		shown := failed
		suffix := ""
		if len(shown) > gsFailedPreview {
			shown = shown[:gsFailedPreview]
			suffix = " ..."
		}
		failedText = strings.Join(shown, ", ") + suffix
	}
	return gsReply("Envoi terminé.\n\nOK: %d\nÉchecs: %d\n\nIDs en échec: %s", sent, len(failed), failedText)
}

// deliver manda los DMs en orden. Si ctx se cancela, los restantes cuentan como fallidos.
func (s *GSService) deliver(ctx context.Context, operatorID string, recipients []string, message string, delay time.Duration) (int, []string) {
	ctx, span := tracing.Start(ctx, "gs.deliver")
	span.SetAttributes(
		attribute.String("gs.operator", operatorID),
		attribute.Int("gs.recipients", len(recipients)),
	)
	defer span.End()

	sent := 0
	var failed []string
	for i, id := range recipients {
		if ctx.Err() != nil {
			failed = append(failed, recipients[i:]...)
			break
		}

		sctx, cancel := context.WithTimeout(ctx, s.sendTimeout)
		err := s.dm.SendDM(sctx, id, message)
		cancel()
		if err != nil {
			s.log.Warn("gs dm failed", zap.String("user", id), zap.Error(err))
			failed = append(failed, id)
		} else {
			sent++
		}

		if i == len(recipients)-1 {
			break
		}
		if err := s.sleep(ctx, delay+s.jitter(delay)); err != nil {
			failed = append(failed, recipients[i+1:]...)
			break
		}
	}
	span.SetAttributes(attribute.Int("gs.ok", sent), attribute.Int("gs.failed", len(failed)))
	return sent, failed
}
