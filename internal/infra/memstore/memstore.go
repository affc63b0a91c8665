// Package memstore es el backend en memoria: se usa cuando no hay DATABASE_URL
// ni MONGO_URI configurados y en los tests.
package memstore

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"github.com/jose-valero/streambot/internal/domain"
	"github.com/jose-valero/streambot/internal/infra/storage"
)

type Docs struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewDocs() *Docs { return &Docs{docs: map[string][]byte{}} }

func (d *Docs) Get(_ context.Context, key string, out any) error {
	d.mu.RLock()
	raw, ok := d.docs[key]
	d.mu.RUnlock()
	if !ok {
		return storage.ErrNotFound
	}
	return json.Unmarshal(raw, out)
}

func (d *Docs) Put(_ context.Context, key string, doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	d.mu.Lock()
	d.docs[key] = raw
	d.mu.Unlock()
	return nil
}

func (d *Docs) Delete(_ context.Context, key string) error {
	d.mu.Lock()
	delete(d.docs, key)
	d.mu.Unlock()
	return nil
}

func (d *Docs) Ping(context.Context) error { return nil }

type Tasks struct {
	mu    sync.Mutex
	tasks map[string]domain.ScheduledTask
}

func NewTasks() *Tasks { return &Tasks{tasks: map[string]domain.ScheduledTask{}} }

func (t *Tasks) Insert(_ context.Context, task domain.ScheduledTask) error {
	t.mu.Lock()
	t.tasks[task.ID] = task
	t.mu.Unlock()
	return nil
}

func (t *Tasks) List(context.Context) ([]domain.ScheduledTask, error) {
	t.mu.Lock()
	out := make([]domain.ScheduledTask, 0, len(t.tasks))
	for _, task := range t.tasks {
		out = append(out, task)
	}
	t.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ExecuteAt.Before(out[j].ExecuteAt) })
	return out, nil
}

func (t *Tasks) Delete(_ context.Context, id string) error {
	t.mu.Lock()
	delete(t.tasks, id)
	t.mu.Unlock()
	return nil
}

func (t *Tasks) DeleteMany(ctx context.Context, ids []string) error {
	for _, id := range ids {
		_ = t.Delete(ctx, id)
	}
	return nil
}

func (t *Tasks) DeleteAll(context.Context) (int64, error) {
	t.mu.Lock()
	n := int64(len(t.tasks))
	t.tasks = map[string]domain.ScheduledTask{}
	t.mu.Unlock()
	return n, nil
}
