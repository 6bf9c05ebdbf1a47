package kv

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// CollectionName is the MongoDB collection backing the store.
const CollectionName = "kv"

type kvDoc struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// Mongo stores one document per key in the kv collection.
type Mongo struct {
	c *mongo.Collection
}

// NewMongo returns a Store backed by db's kv collection.
func NewMongo(db *mongo.Database) *Mongo {
	return &Mongo{c: db.Collection(CollectionName)}
}

// Ping checks that the primary is reachable.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.c.Database().Client().Ping(ctx, readpref.Primary())
}

func (m *Mongo) Get(ctx context.Context, key string) (string, bool, error) {
	var doc kvDoc
	err := m.c.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return doc.Value, true, nil
}

func (m *Mongo) Set(ctx context.Context, key, value string) error {
	update := bson.M{
		"$set": bson.M{
			"value":      value,
			"updated_at": time.Now().UTC(),
		},
	}
	_, err := m.c.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
	return err
}

func (m *Mongo) Remove(ctx context.Context, key string) error {
	_, err := m.c.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

// RemoveStale deletes keys under prefix whose last write is before olderThan.
func (m *Mongo) RemoveStale(ctx context.Context, prefix string, olderThan time.Time) (int64, error) {
	filter := bson.M{
		"_id":        bson.M{"$regex": "^" + regexp.QuoteMeta(prefix)},
		"updated_at": bson.M{"$lt": olderThan.UTC()},
	}
	res, err := m.c.DeleteMany(ctx, filter)
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}
