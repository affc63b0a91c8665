package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jose-valero/streambot/internal/domain"
	"github.com/jose-valero/streambot/internal/infra/memstore"
	"github.com/jose-valero/streambot/internal/infra/storage"
)

func TestAlertsNotifyOnlyWhenEnabled(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewStateRepo(memstore.NewDocs())
	dm := &fakeDM{fail: map[string]bool{}}
	svc := NewAlertsService(repo, dm, "owner1", zaptest.NewLogger(t))

	svc.Notify(ctx, "voice down")
	assert.Empty(t, dm.sent)

	out, err := svc.Handle(ctx, "$", "on")
	require.NoError(t, err)
	assert.Contains(t, out, "Alertes activées")

	svc.Notify(ctx, "voice down")
	assert.Equal(t, []string{"owner1"}, dm.sent)

	out, err = svc.Handle(ctx, "$", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "État: Activées")

	_, err = svc.Handle(ctx, "$", "off")
	require.NoError(t, err)
	svc.Notify(ctx, "again")
	assert.Len(t, dm.sent, 1)
}

func TestAlertsInvalidSubcommand(t *testing.T) {
	svc := NewAlertsService(storage.NewStateRepo(memstore.NewDocs()), &fakeDM{}, "o", zaptest.NewLogger(t))

	out, err := svc.Handle(context.Background(), "$", "")
	require.NoError(t, err)
	assert.Contains(t, out, "Usage: `$alerts on`")

	out, err = svc.Handle(context.Background(), "$", "maybe")
	require.NoError(t, err)
	assert.Contains(t, out, "Commande invalide")
}

type stubStatus domain.AutoVocStatus

func (s stubStatus) CurrentStatus(context.Context) domain.AutoVocStatus { return domain.AutoVocStatus(s) }

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHealthReports(t *testing.T) {
	started := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	voice := &fakeVoice{current: "C1"}
	svc := NewHealthService(started, "memory", stubPinger{}, voice, stubStatus(domain.AutoVocConnected))
	svc.now = func() time.Time { return started.Add(26*time.Hour + 3*time.Minute + 4*time.Second) }

	up := svc.Uptime(context.Background())
	assert.Contains(t, up, "`1j 2h 3m 4s`")
	assert.Contains(t, up, "Stockage (memory):** Connecté")
	assert.Contains(t, up, "**AutoVoc:** Actif & Connecté")

	rep := svc.Report(context.Background())
	assert.Contains(t, rep, "CHECK SYSTEME COMPLET")
	assert.Contains(t, rep, "Vocal: Connecté")
}

func TestGrade(t *testing.T) {
	assert.Equal(t, "Excellent", grade(50, 100))
	assert.Equal(t, "Attention", grade(91, 100))
	assert.Equal(t, "Critique", grade(96, 100))
	assert.Equal(t, "Excellent", grade(0, 0))
}

func TestFormatters(t *testing.T) {
	assert.Equal(t, "12s", formatDelay(12*time.Second))
	assert.Equal(t, "4m 10s", formatDelay(4*time.Minute+10*time.Second))
	assert.Equal(t, "1h 5m", formatDelay(time.Hour+5*time.Minute))
	assert.Equal(t, "2j 3h", formatDelay(51*time.Hour))
	assert.Equal(t, "0s", formatDelay(-time.Second))

	assert.Equal(t, "5s", formatUptime(5*time.Second))
	assert.Equal(t, "1h 0s", formatUptime(time.Hour))

	assert.Equal(t, "abc...", truncate("abcdef", 3))
	assert.Equal(t, "abc", truncate("abc", 3))
}
