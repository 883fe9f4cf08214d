package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	Name         = "shoppa_db"
	CollectionKV = "kv"
)

type kvDocument struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

func ConnectDB(ctx context.Context, dbURI string) (*mongo.Client, error) {
	c, err := mongo.Connect(ctx, options.Client().ApplyURI(dbURI))
	if err != nil {
		return nil, err
	}
	if err = c.Ping(ctx, nil); err != nil {
		c.Disconnect(ctx)
		return nil, err
	}

	_, err = c.Database(Name).Collection(CollectionKV).Indexes().CreateOne(
		ctx,
		mongo.IndexModel{
			Keys:    bson.D{{Key: "updated_at", Value: -1}},
			Options: options.Index().SetUnique(false),
		},
	)
	if err != nil {
		c.Disconnect(ctx)
		return nil, err
	}
	return c, nil
}

func NewMongoStore(ctx context.Context, dbURI string) (*MongoStore, error) {
	c, err := ConnectDB(ctx, dbURI)
	if err != nil {
		return nil, errors.Wrap(err, "error connecting to mongo")
	}
	return &MongoStore{client: c, coll: c.Database(Name).Collection(CollectionKV)}, nil
}

func (s *MongoStore) Get(ctx context.Context, key string) (string, bool, error) {
	var doc kvDocument
	err := s.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "error finding key: %s", key)
	}
	return doc.Value, true, nil
}

func (s *MongoStore) Set(ctx context.Context, key, value string) error {
	_, err := s.coll.ReplaceOne(
		ctx,
		bson.M{"_id": key},
		kvDocument{Key: key, Value: value, UpdatedAt: time.Now().UTC()},
		options.Replace().SetUpsert(true),
	)
	return errors.Wrapf(err, "error upserting key: %s", key)
}

func (s *MongoStore) Remove(ctx context.Context, key string) error {
	_, err := s.coll.DeleteOne(ctx, bson.M{"_id": key})
	return errors.Wrapf(err, "error deleting key: %s", key)
}

func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
