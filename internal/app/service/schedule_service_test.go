package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jose-valero/streambot/internal/app/task"
	"github.com/jose-valero/streambot/internal/domain"
	"github.com/jose-valero/streambot/internal/infra/memstore"
)

type fakePoster struct {
	mu    sync.Mutex
	posts []string
}

func (p *fakePoster) PostCommand(_ context.Context, channelID, content string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.posts = append(p.posts, channelID+":"+content)
	return nil
}

func (p *fakePoster) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.posts)
}

func TestParseDelay(t *testing.T) {
	cases := map[string]time.Duration{
		"10s": 10 * time.Second,
		"5m":  5 * time.Minute,
		"2h":  2 * time.Hour,
		"1d":  24 * time.Hour,
		"3M":  3 * time.Minute,
	}
	for in, want := range cases {
		got, ok := ParseDelay(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	got, ok := ParseDelay("365d")
	require.True(t, ok)
	assert.Equal(t, 365*24*time.Hour, got)

	// 99999999999d desborda Duration y daría un ExecuteAt en el pasado
	for _, bad := range []string{"", "0s", "10", "m", "5w", "1.5h", "-1m", "366d", "99999999999d", "9223372036854775808s"} {
		_, ok := ParseDelay(bad)
		assert.False(t, ok, bad)
	}
}

func TestScheduleFiresAndDeletes(t *testing.T) {
	ctx := context.Background()
	tasks := memstore.NewTasks()
	poster := &fakePoster{}
	svc := NewScheduleService(tasks, poster, task.NewGroup(ctx), zaptest.NewLogger(t))

	out, err := svc.Handle(ctx, "$", "chan1", "1s", "$disconnect")
	require.NoError(t, err)
	assert.Contains(t, out, "Commande programmée: `$disconnect`")
	assert.Contains(t, out, "Exécution dans: 1s")
	assert.Equal(t, 1, svc.Pending())

	assert.Eventually(t, func() bool { return poster.count() == 1 }, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, []string{"chan1:$disconnect"}, poster.posts)

	assert.Eventually(t, func() bool {
		items, _ := tasks.List(ctx)
		return len(items) == 0
	}, time.Second, 10*time.Millisecond)
	assert.Zero(t, svc.Pending())
}

func TestScheduleValidation(t *testing.T) {
	ctx := context.Background()
	svc := NewScheduleService(memstore.NewTasks(), &fakePoster{}, task.NewGroup(ctx), zaptest.NewLogger(t))

	out, err := svc.Handle(ctx, "$", "c", "", "")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage")

	out, err = svc.Handle(ctx, "$", "c", "10m", "")
	require.NoError(t, err)
	assert.Contains(t, out, "Exemple")

	out, err = svc.Handle(ctx, "$", "c", "tomorrow", "$help")
	require.NoError(t, err)
	assert.Contains(t, out, "Format de temps invalide")
	assert.Zero(t, svc.Pending())
}

func TestScheduleListAndClear(t *testing.T) {
	ctx := context.Background()
	tasks := memstore.NewTasks()
	group := task.NewGroup(ctx)
	svc := NewScheduleService(tasks, &fakePoster{}, group, zaptest.NewLogger(t))
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	out, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, out, "Aucune tâche")

	_, err = svc.Schedule(ctx, "c", "2h", "$uptime")
	require.NoError(t, err)
	_, err = svc.Schedule(ctx, "c", "1d", "$health")
	require.NoError(t, err)

	out, err = svc.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, out, "1. `$uptime` - Dans 2h 0m")
	assert.Contains(t, out, "2. `$health` - Dans 1j 0h")

	out, err = svc.Clear(ctx)
	require.NoError(t, err)
	assert.Contains(t, out, "annulées")
	assert.Zero(t, svc.Pending())
	items, err := tasks.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestScheduleLoadDropsExpired(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tasks := memstore.NewTasks()
	now := time.Now()

	require.NoError(t, tasks.Insert(ctx, domain.ScheduledTask{ID: "old", Command: "$a", ExecuteAt: now.Add(-time.Minute)}))
	require.NoError(t, tasks.Insert(ctx, domain.ScheduledTask{ID: "new", Command: "$b", ExecuteAt: now.Add(time.Hour)}))

	group := task.NewGroup(ctx)
	svc := NewScheduleService(tasks, &fakePoster{}, group, zaptest.NewLogger(t))
	armed, err := svc.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, armed)

	items, err := tasks.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "new", items[0].ID)

	group.CancelAll()
}
