package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jose-valero/streambot/internal/infra/tracing"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// DocRepo guarda documentos JSON en la tabla bot_state.
type DocRepo struct{ db *sql.DB }

func NewDocRepo(db *sql.DB) *DocRepo { return &DocRepo{db: db} }

func (r *DocRepo) Get(ctx context.Context, key string, out any) error {
	ctx, span := tracing.Start(ctx, "storage.docs.get", trace.WithAttributes(attribute.String("key", key)))
	defer span.End()

	var raw []byte
	err := r.db.QueryRowContext(ctx, `
SELECT doc
  FROM bot_state
 WHERE key = $1
`, key).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (r *DocRepo) Put(ctx context.Context, key string, doc any) error {
	ctx, span := tracing.Start(ctx, "storage.docs.put", trace.WithAttributes(attribute.String("key", key)))
	defer span.End()

	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	_, err = r.db.ExecContext(ctx, `
INSERT INTO bot_state (key, doc, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET
  doc        = EXCLUDED.doc,
  updated_at = now()
`, key, raw)
	return err
}

func (r *DocRepo) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM bot_state WHERE key = $1`, key)
	return err
}

func (r *DocRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
