package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jose-valero/streambot/internal/app/task"
	"github.com/jose-valero/streambot/internal/domain"
)

var reDelay = regexp.MustCompile(`^(\d+)([smhd])$`)

// maxScheduleDelay: tope de programación (un año).
const maxScheduleDelay = 365 * 24 * time.Hour

// ParseDelay acepta "10s", "5m", "2h", "1d".
func ParseDelay(s string) (time.Duration, bool) {
	m := reDelay.FindStringSubmatch(strings.ToLower(strings.TrimSpace(s)))
	if m == nil {
		return 0, false
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil || n <= 0 {
		return 0, false
	}
	unit := map[string]time.Duration{
		"s": time.Second,
		"m": time.Minute,
		"h": time.Hour,
		"d": 24 * time.Hour,
	}[m[2]]
	if n > int64(maxScheduleDelay/unit) {
		return 0, false
	}
	return time.Duration(n) * unit, true
}

// ScheduleService programa comandos. Al vencer, el texto del comando se
// publica en su canal y el router lo ejecuta como cualquier otro.
type ScheduleService struct {
	tasks  TaskRepo
	poster CommandPoster
	group  *task.Group
	log    *zap.Logger
	now    func() time.Time
	newID  func() string

	mu      sync.Mutex
	pending map[string]*task.Handle
}

func NewScheduleService(tasks TaskRepo, poster CommandPoster, group *task.Group, log *zap.Logger) *ScheduleService {
	return &ScheduleService{
		tasks:   tasks,
		poster:  poster,
		group:   group,
		log:     log,
		now:     time.Now,
		newID:   uuid.NewString,
		pending: map[string]*task.Handle{},
	}
}

func (s *ScheduleService) usage(prefix string) string {
	return fmt.Sprintf("Usage: `%[1]sschedule <temps> <commande>` ou `%[1]sschedule list` ou `%[1]sschedule clear`", prefix)
}

// Handle: sub es "list", "clear" o un delay; rest es el comando a programar.
func (s *ScheduleService) Handle(ctx context.Context, prefix, channelID, sub, rest string) (string, error) {
	switch strings.ToLower(sub) {
	case "":
		return s.usage(prefix), nil
	case "list":
		return s.List(ctx)
	case "clear":
		return s.Clear(ctx)
	}
	if strings.TrimSpace(rest) == "" {
		return fmt.Sprintf("Usage: `%[1]sschedule <temps> <commande>`\nExemple: `%[1]sschedule 10m %[1]sdisconnect`", prefix), nil
	}
	return s.Schedule(ctx, channelID, sub, rest)
}

func (s *ScheduleService) Schedule(ctx context.Context, channelID, delayText, command string) (string, error) {
	d, ok := ParseDelay(delayText)
	if !ok {
		return "❌ Format de temps invalide. Utilisez: `10s`, `5m`, `2h`, `1d`", nil
	}
	now := s.now()
	t := domain.ScheduledTask{
		ID:        s.newID(),
		Command:   strings.TrimSpace(command),
		ChannelID: channelID,
		ExecuteAt: now.Add(d),
		CreatedAt: now,
	}
	if err := s.tasks.Insert(ctx, t); err != nil {
		return "", fmt.Errorf("insert scheduled task: %w", err)
	}
	s.arm(t, d)
	s.log.Info("command scheduled", zap.String("id", t.ID), zap.String("command", t.Command), zap.Duration("in", d))
	return fmt.Sprintf("✅ Commande programmée: `%s`\nExécution dans: %s", t.Command, formatDelay(d)), nil
}

func (s *ScheduleService) List(ctx context.Context) (string, error) {
	items, err := s.tasks.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list scheduled tasks: %w", err)
	}
	if len(items) == 0 {
		return "📋 Aucune tâche programmée", nil
	}
	now := s.now()
	var b strings.Builder
	b.WriteString("**📋 Tâches Programmées**\n\n")
	for i, t := range items {
		fmt.Fprintf(&b, "%d. `%s` - Dans %s\n", i+1, t.Command, formatDelay(t.ExecuteAt.Sub(now)))
	}
	return b.String(), nil
}

// Clear cancela los timers en memoria y borra todo lo persistido.
func (s *ScheduleService) Clear(ctx context.Context) (string, error) {
	s.mu.Lock()
	for id, h := range s.pending {
		h.Cancel()
		delete(s.pending, id)
	}
	s.mu.Unlock()

	n, err := s.tasks.DeleteAll(ctx)
	if err != nil {
		return "", fmt.Errorf("clear scheduled tasks: %w", err)
	}
	s.log.Info("scheduled tasks cleared", zap.Int64("deleted", n))
	return "✅ Toutes les tâches programmées ont été annulées", nil
}

// Load rearma las tareas persistidas y borra las vencidas. Devuelve cuantas quedaron armadas.
func (s *ScheduleService) Load(ctx context.Context) (int, error) {
	items, err := s.tasks.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("load scheduled tasks: %w", err)
	}
	now := s.now()
	var expired []string
	armed := 0
	for _, t := range items {
		d := t.ExecuteAt.Sub(now)
		if d <= 0 {
			expired = append(expired, t.ID)
			continue
		}
		s.arm(t, d)
		armed++
	}
	if len(expired) > 0 {
		if err := s.tasks.DeleteMany(ctx, expired); err != nil {
			s.log.Warn("delete expired tasks", zap.Error(err))
		}
	}
	s.log.Info("scheduled tasks loaded", zap.Int("armed", armed), zap.Int("expired", len(expired)))
	return armed, nil
}

// Pending cuenta los timers armados.
func (s *ScheduleService) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

func (s *ScheduleService) arm(t domain.ScheduledTask, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending[t.ID] = s.group.After(d, func(ctx context.Context) {
		s.fire(ctx, t)
	})
}

func (s *ScheduleService) fire(ctx context.Context, t domain.ScheduledTask) {
	s.mu.Lock()
	delete(s.pending, t.ID)
	s.mu.Unlock()

	s.log.Info("executing scheduled command", zap.String("id", t.ID), zap.String("command", t.Command))
	if err := s.poster.PostCommand(ctx, t.ChannelID, t.Command); err != nil {
		s.log.Error("post scheduled command", zap.String("id", t.ID), zap.Error(err))
	}
	if err := s.tasks.Delete(ctx, t.ID); err != nil {
		s.log.Warn("delete fired task", zap.String("id", t.ID), zap.Error(err))
	}
}
