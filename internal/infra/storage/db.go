package storage

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"go.opentelemetry.io/otel/attribute"

	"github.com/jose-valero/streambot/internal/infra/tracing"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Pool son los límites del pool de conexiones. Ceros = defaults.
type Pool struct {
	MaxOpen     int
	MaxIdle     int
	MaxLifetime time.Duration
}

func (p Pool) withDefaults() Pool {
	if p.MaxOpen <= 0 {
		p.MaxOpen = 10
	}
	if p.MaxIdle <= 0 || p.MaxIdle > p.MaxOpen {
		p.MaxIdle = min(5, p.MaxOpen)
	}
	if p.MaxLifetime <= 0 {
		p.MaxLifetime = time.Hour
	}
	return p
}

// Open abre la conexión (pgx stdlib), aplica el pool y verifica health.
func Open(ctx context.Context, url string, pool Pool) (*sql.DB, error) {
	ctx, span := tracing.Start(ctx, "storage.open")
	defer span.End()

	db, err := sql.Open("pgx", url)
	if err != nil {
		return nil, err
	}
	pool = pool.withDefaults()
	db.SetMaxOpenConns(pool.MaxOpen)
	db.SetMaxIdleConns(pool.MaxIdle)
	db.SetConnMaxLifetime(pool.MaxLifetime)
	span.SetAttributes(attribute.Int("pool.max_open", pool.MaxOpen))

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		span.RecordError(err)
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// Migrate aplica las migraciones embebidas (bot_state, scheduled_tasks) y
// devuelve la versión resultante.
func Migrate(ctx context.Context, db *sql.DB) (int64, error) {
	ctx, span := tracing.Start(ctx, "storage.migrate")
	defer span.End()

	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return 0, err
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		span.RecordError(err)
		return 0, err
	}
	v, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return 0, err
	}
	span.SetAttributes(attribute.Int64("schema.version", v))
	return v, nil
}
