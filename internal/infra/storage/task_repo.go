package storage

import (
	"context"
	"database/sql"

	pq "github.com/lib/pq"

	"github.com/jose-valero/streambot/internal/domain"
	"github.com/jose-valero/streambot/internal/infra/tracing"
)

type TaskRepo struct{ db *sql.DB }

func NewTaskRepo(db *sql.DB) *TaskRepo { return &TaskRepo{db: db} }

func (r *TaskRepo) Insert(ctx context.Context, t domain.ScheduledTask) error {
	ctx, span := tracing.Start(ctx, "storage.tasks.insert")
	defer span.End()

	_, err := r.db.ExecContext(ctx, `
INSERT INTO scheduled_tasks (id, command, channel_id, execute_at, created_at)
VALUES ($1,$2,$3,$4,$5)
`, t.ID, t.Command, t.ChannelID, t.ExecuteAt, t.CreatedAt)
	return err
}

func (r *TaskRepo) List(ctx context.Context) ([]domain.ScheduledTask, error) {
	ctx, span := tracing.Start(ctx, "storage.tasks.list")
	defer span.End()

	rows, err := r.db.QueryContext(ctx, `
SELECT id, command, channel_id, execute_at, created_at
  FROM scheduled_tasks
 ORDER BY execute_at ASC
`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ScheduledTask
	for rows.Next() {
		var t domain.ScheduledTask
		if err := rows.Scan(&t.ID, &t.Command, &t.ChannelID, &t.ExecuteAt, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM scheduled_tasks WHERE id = $1`, id)
	return err
}

// DeleteMany borra en un solo round-trip (tareas vencidas al arrancar).
func (r *TaskRepo) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `
DELETE FROM scheduled_tasks
 WHERE id = ANY($1)
`, pq.Array(ids))
	return err
}

func (r *TaskRepo) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM scheduled_tasks`)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	return n, nil
}
