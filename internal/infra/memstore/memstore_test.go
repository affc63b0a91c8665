package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jose-valero/streambot/internal/domain"
	"github.com/jose-valero/streambot/internal/infra/storage"
)

func TestDocsGetMissing(t *testing.T) {
	var out map[string]any
	err := NewDocs().Get(context.Background(), "nope", &out)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestTasksListSortedByExecuteAt(t *testing.T) {
	ctx := context.Background()
	tasks := NewTasks()
	now := time.Now()

	require.NoError(t, tasks.Insert(ctx, domain.ScheduledTask{ID: "b", ExecuteAt: now.Add(2 * time.Minute)}))
	require.NoError(t, tasks.Insert(ctx, domain.ScheduledTask{ID: "a", ExecuteAt: now.Add(time.Minute)}))
	require.NoError(t, tasks.Insert(ctx, domain.ScheduledTask{ID: "c", ExecuteAt: now.Add(3 * time.Minute)}))

	list, err := tasks.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{list[0].ID, list[1].ID, list[2].ID})

	require.NoError(t, tasks.DeleteMany(ctx, []string{"a", "c"}))
	list, _ = tasks.List(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, "b", list[0].ID)

	n, err := tasks.DeleteAll(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}
