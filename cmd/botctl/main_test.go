package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/jose-valero/streambot/internal/domain"
	"github.com/jose-valero/streambot/internal/infra/backend"
	"github.com/jose-valero/streambot/internal/infra/memstore"
	"github.com/jose-valero/streambot/internal/infra/storage"
)

func memStores() *backend.Stores {
	return &backend.Stores{
		Name:  "memory",
		Docs:  memstore.NewDocs(),
		Tasks: memstore.NewTasks(),
		Close: func(context.Context) error { return nil },
	}
}

func execute(t *testing.T, st *backend.Stores, args ...string) (string, error) {
	root := newRoot(func() (*backend.Stores, error) { return st, nil }, zaptest.NewLogger(t))
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestAutoVocStatusAndDisable(t *testing.T) {
	st := memStores()
	out, err := execute(t, st, "autovoc", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "never configured")

	require.NoError(t, storage.NewStateRepo(st.Docs).SaveAutoVoc(context.Background(), "G", "C", true))
	_, err = execute(t, st, "autovoc", "disable")
	require.NoError(t, err)

	out, err = execute(t, st, "autovoc", "status")
	require.NoError(t, err)
	assert.Contains(t, out, "enabled=false guild=G channel=C")
}

func TestScheduleListAndClear(t *testing.T) {
	st := memStores()
	ctx := context.Background()
	require.NoError(t, st.Tasks.Insert(ctx, domain.ScheduledTask{
		ID: "t1", Command: "$uptime", ChannelID: "chan", ExecuteAt: time.Now().Add(time.Hour),
	}))

	out, err := execute(t, st, "schedule", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "$uptime")

	out, err = execute(t, st, "schedule", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted 1")
}

func TestGSCooldownShowReset(t *testing.T) {
	st := memStores()
	repo := storage.NewStateRepo(st.Docs)
	require.NoError(t, repo.SaveGSLastRun(context.Background(), time.Now()))

	out, err := execute(t, st, "gs", "cooldown", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "last run")

	_, err = execute(t, st, "gs", "cooldown", "reset")
	require.NoError(t, err)
	out, err = execute(t, st, "gs", "cooldown", "show")
	require.NoError(t, err)
	assert.Contains(t, out, "never run")
}

func TestMigrateNeedsPostgres(t *testing.T) {
	_, err := execute(t, memStores(), "migrate")
	assert.Error(t, err)
}
