package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/jackc/pgx/v5/pgxpool"
)

// purga tareas programadas vencidas hace más de un día (el bot ya no las va a
// rearmar) y documentos de estado huérfanos.
func handler(ctx context.Context) (string, error) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return "no DATABASE_URL", nil
	}

	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return fmt.Sprintf("parse: %v", err), nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return fmt.Sprintf("pool: %v", err), nil
	}
	defer pool.Close()

	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	tasks, err := pool.Exec(cctx, `DELETE FROM scheduled_tasks WHERE execute_at < now() - INTERVAL '1 day';`)
	if err != nil {
		return fmt.Sprintf("scheduled_tasks: %v", err), nil
	}
	// voice_state sin tocar en 30 días ya no representa un join reciente
	docs, err := pool.Exec(cctx, `
DELETE FROM bot_state
WHERE key = 'voice_state'
  AND updated_at < now() - INTERVAL '30 days';`)
	if err != nil {
		return fmt.Sprintf("bot_state: %v", err), nil
	}

	return fmt.Sprintf("ok tasks=%d docs=%d", tasks.RowsAffected(), docs.RowsAffected()), nil
}

func main() { lambda.Start(handler) }
