// Package backend elige y abre el store según la config:
// DATABASE_URL (Postgres) > MONGO_URI (Mongo) > memoria.
package backend

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jose-valero/streambot/internal/infra/config"
	"github.com/jose-valero/streambot/internal/infra/memstore"
	"github.com/jose-valero/streambot/internal/infra/mongostore"
	"github.com/jose-valero/streambot/internal/infra/storage"
)

type Stores struct {
	Name  string
	Docs  storage.DocStore
	Tasks storage.TaskStore
	Close func(ctx context.Context) error
}

func Open(ctx context.Context, cfg config.Config, log *zap.Logger) (*Stores, error) {
	switch cfg.Backend() {
	case "postgres":
		db, err := storage.Open(ctx, cfg.DatabaseURL, storage.Pool{
			MaxOpen:     cfg.DB.MaxOpenConns,
			MaxIdle:     cfg.DB.MaxIdleConns,
			MaxLifetime: cfg.DB.ConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}
		version, err := storage.Migrate(ctx, db)
		if err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
		log.Info("postgres ready and migrated", zap.Int64("schema_version", version))
		return &Stores{
			Name:  "postgres",
			Docs:  storage.NewDocRepo(db),
			Tasks: storage.NewTaskRepo(db),
			Close: func(context.Context) error { return db.Close() },
		}, nil

	case "mongo":
		client, err := mongostore.Connect(ctx, cfg.MongoURI)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.MongoDatabase)
		log.Info("mongo ready", zap.String("database", cfg.MongoDatabase))
		return &Stores{
			Name:  "mongo",
			Docs:  mongostore.NewDocs(db),
			Tasks: mongostore.NewTasks(db),
			Close: client.Disconnect,
		}, nil

	default:
		log.Warn("no DATABASE_URL or MONGO_URI, state is kept in memory only")
		return &Stores{
			Name:  "memory",
			Docs:  memstore.NewDocs(),
			Tasks: memstore.NewTasks(),
			Close: func(context.Context) error { return nil },
		}, nil
	}
}
