package kv

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoEntry struct {
	Key   string `bson:"_id"`
	Value string `bson:"value"`
}

type MongoStore struct {
	client *mongo.Client
	col    *mongo.Collection
}

func NewMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return &MongoStore{
		client: client,
		col:    client.Database(dbName).Collection("kv"),
	}, nil
}

func (m *MongoStore) Get(ctx context.Context, key string) (string, bool, error) {
	var entry mongoEntry
	err := m.col.FindOne(ctx, bson.M{"_id": key}).Decode(&entry)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return entry.Value, true, nil
}

func (m *MongoStore) Set(ctx context.Context, key, value string) error {
	_, err := m.col.ReplaceOne(ctx, bson.M{"_id": key}, mongoEntry{Key: key, Value: value}, options.Replace().SetUpsert(true))
	return err
}

func (m *MongoStore) Remove(ctx context.Context, key string) error {
	_, err := m.col.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

func (m *MongoStore) Close() error {
	return m.client.Disconnect(context.Background())
}
