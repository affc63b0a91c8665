// Package mongostore implementa los contratos de storage sobre MongoDB:
// coleccion bot_state (documentos singleton, _id = clave) y scheduled_tasks.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/jose-valero/streambot/internal/domain"
	"github.com/jose-valero/streambot/internal/infra/storage"
	"github.com/jose-valero/streambot/internal/infra/tracing"
)

const (
	stateCollection = "bot_state"
	tasksCollection = "scheduled_tasks"
)

// Connect abre el cliente y hace ping al primario.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

type Docs struct {
	coll *mongo.Collection
}

func NewDocs(db *mongo.Database) *Docs { return &Docs{coll: db.Collection(stateCollection)} }

func (d *Docs) Get(ctx context.Context, key string, out any) error {
	ctx, span := tracing.Start(ctx, "mongo.docs.get")
	defer span.End()

	err := d.coll.FindOne(ctx, bson.M{"_id": key}).Decode(out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return storage.ErrNotFound
	}
	return err
}

func (d *Docs) Put(ctx context.Context, key string, doc any) error {
	ctx, span := tracing.Start(ctx, "mongo.docs.put")
	defer span.End()

	_, err := d.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	return err
}

func (d *Docs) Delete(ctx context.Context, key string) error {
	_, err := d.coll.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

func (d *Docs) Ping(ctx context.Context) error {
	return d.coll.Database().Client().Ping(ctx, readpref.Primary())
}

type Tasks struct {
	coll *mongo.Collection
}

func NewTasks(db *mongo.Database) *Tasks { return &Tasks{coll: db.Collection(tasksCollection)} }

func (t *Tasks) Insert(ctx context.Context, task domain.ScheduledTask) error {
	_, err := t.coll.InsertOne(ctx, task)
	return err
}

func (t *Tasks) List(ctx context.Context) ([]domain.ScheduledTask, error) {
	cur, err := t.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "executeAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var out []domain.ScheduledTask
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (t *Tasks) Delete(ctx context.Context, id string) error {
	_, err := t.coll.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (t *Tasks) DeleteMany(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := t.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return err
}

func (t *Tasks) DeleteAll(ctx context.Context) (int64, error) {
	res, err := t.coll.DeleteMany(ctx, bson.M{})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

var (
	_ storage.DocStore  = (*Docs)(nil)
	_ storage.TaskStore = (*Tasks)(nil)
)
