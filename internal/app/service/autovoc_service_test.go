package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jose-valero/streambot/internal/domain"
	"github.com/jose-valero/streambot/internal/infra/memstore"
	"github.com/jose-valero/streambot/internal/infra/storage"
)

type fakeVoice struct {
	mu      sync.Mutex
	current string
	joins   []string
	joinErr error
}

func (v *fakeVoice) JoinVoice(_ context.Context, _, channelID string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.joins = append(v.joins, channelID)
	if v.joinErr != nil {
		return v.joinErr
	}
	v.current = channelID
	return nil
}

func (v *fakeVoice) CurrentVoiceChannel() (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.current, v.current != ""
}

func (v *fakeVoice) joinCount() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.joins)
}

type fakeAlerter struct {
	msgs []string
}

func (a *fakeAlerter) Notify(_ context.Context, text string) { a.msgs = append(a.msgs, text) }

func newAutoVoc(t *testing.T) (*AutoVocService, *storage.StateRepo, *fakeVoice, *fakeAlerter) {
	repo := storage.NewStateRepo(memstore.NewDocs())
	voice := &fakeVoice{}
	alerts := &fakeAlerter{}
	return NewAutoVocService(repo, voice, alerts, zaptest.NewLogger(t), time.Minute), repo, voice, alerts
}

func TestAutoVocReconcileRejoinsOnDrift(t *testing.T) {
	ctx := context.Background()
	svc, repo, voice, _ := newAutoVoc(t)

	require.NoError(t, repo.SaveAutoVoc(ctx, "G", "C1", true))
	voice.current = "C2"

	svc.ReconcileTick(ctx)

	assert.Equal(t, []string{"C1"}, voice.joins)
	assert.Equal(t, domain.AutoVocConnected, svc.CurrentStatus(ctx))
}

func TestAutoVocReconcileNoopWhenConnected(t *testing.T) {
	ctx := context.Background()
	svc, repo, voice, _ := newAutoVoc(t)

	require.NoError(t, repo.SaveAutoVoc(ctx, "G", "C1", true))
	voice.current = "C1"

	svc.ReconcileTick(ctx)
	assert.Empty(t, voice.joins)
}

func TestAutoVocReconcileDisabledOrAbsent(t *testing.T) {
	ctx := context.Background()
	svc, repo, voice, _ := newAutoVoc(t)

	svc.ReconcileTick(ctx)
	assert.Empty(t, voice.joins)
	assert.Equal(t, domain.AutoVocDisabled, svc.CurrentStatus(ctx))

	require.NoError(t, repo.SaveAutoVoc(ctx, "G", "C1", false))
	svc.ReconcileTick(ctx)
	assert.Empty(t, voice.joins)
	assert.Equal(t, domain.AutoVocDisabled, svc.CurrentStatus(ctx))
}

func TestAutoVocReconcileFailureAlerts(t *testing.T) {
	ctx := context.Background()
	svc, repo, voice, alerts := newAutoVoc(t)

	require.NoError(t, repo.SaveAutoVoc(ctx, "G", "C1", true))
	voice.joinErr = errors.New("voice timeout")

	svc.ReconcileTick(ctx)

	require.Len(t, alerts.msgs, 1)
	assert.Contains(t, alerts.msgs[0], "<#C1>")
	assert.Equal(t, domain.AutoVocDisconnected, svc.CurrentStatus(ctx))
}

func TestAutoVocEnableKeepsStateWhenJoinFails(t *testing.T) {
	ctx := context.Background()
	svc, repo, voice, _ := newAutoVoc(t)
	voice.joinErr = errors.New("missing access")

	err := svc.Enable(ctx, "G", "C1")
	require.Error(t, err)

	st, err := repo.GetAutoVoc(ctx)
	require.NoError(t, err)
	assert.True(t, st.Enabled)
	assert.Equal(t, "C1", st.ChannelID)
}

func TestAutoVocDisableDoesNotDisconnect(t *testing.T) {
	ctx := context.Background()
	svc, _, voice, _ := newAutoVoc(t)

	require.NoError(t, svc.Enable(ctx, "G", "C1"))
	require.NoError(t, svc.Disable(ctx))

	cur, ok := voice.CurrentVoiceChannel()
	assert.True(t, ok)
	assert.Equal(t, "C1", cur)
	assert.Equal(t, domain.AutoVocDisabled, svc.CurrentStatus(ctx))
}

type brokenRepo struct{}

func (brokenRepo) GetAutoVoc(context.Context) (domain.AutoVocState, error) {
	return domain.AutoVocState{}, errors.New("connection refused")
}
func (brokenRepo) SaveAutoVoc(context.Context, string, string, bool) error { return nil }
func (brokenRepo) DisableAutoVoc(context.Context) error                    { return nil }

func TestAutoVocStatusErrorOnRepoFailure(t *testing.T) {
	svc := NewAutoVocService(brokenRepo{}, &fakeVoice{}, nil, zaptest.NewLogger(t), 0)
	assert.Equal(t, domain.AutoVocError, svc.CurrentStatus(context.Background()))
	assert.Equal(t, DefaultAutoVocInterval, svc.interval)
}

func TestAutoVocBootAndTicker(t *testing.T) {
	ctx := context.Background()
	repo := storage.NewStateRepo(memstore.NewDocs())
	voice := &fakeVoice{}
	svc := NewAutoVocService(repo, voice, nil, zaptest.NewLogger(t), 10*time.Millisecond)

	require.NoError(t, repo.SaveAutoVoc(ctx, "G", "C1", true))
	svc.Boot(ctx)
	assert.Equal(t, 1, voice.joinCount())

	voice.mu.Lock()
	voice.current = ""
	voice.mu.Unlock()

	h := svc.Start(ctx)
	assert.Eventually(t, func() bool { return voice.joinCount() >= 2 }, time.Second, 5*time.Millisecond)
	svc.Stop()
	<-h.Done()
}

func TestAutoVocBootLogsRepoFailure(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	voice := &fakeVoice{}
	svc := NewAutoVocService(brokenRepo{}, voice, nil, zap.New(core), time.Minute)

	svc.Boot(context.Background())

	assert.Zero(t, voice.joinCount())
	require.Equal(t, 1, logs.FilterMessage("autovoc boot: state lookup failed").Len())
}

func TestAutoVocBootSilentWithoutState(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	voice := &fakeVoice{}
	svc := NewAutoVocService(storage.NewStateRepo(memstore.NewDocs()), voice, nil, zap.New(core), time.Minute)

	svc.Boot(context.Background())

	assert.Zero(t, voice.joinCount())
	assert.Zero(t, logs.Len())
}
