// Package mongodb implements the key-value adapter on MongoDB, one document
// per storage key. Writes replace the whole payload, preserving the
// last-writer-wins semantics of the other backends.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const collectionName = "kv_store"

type document struct {
	Key       string    `bson:"_id"`
	Payload   []byte    `bson:"payload"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// Store is a MongoDB-backed implementation of repository.KeyValueStore.
type Store struct {
	client *mongo.Client
	dbName string
}

// NewStore connects to MongoDB and verifies the connection with a ping.
func NewStore(ctx context.Context, uri string, dbName string) (*Store, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	return &Store{client: client, dbName: dbName}, nil
}

// Load returns the payload stored under key, or (nil, nil) when absent.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	var doc document
	err := s.collection().FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("load key %s: %w", key, err)
	}
	return doc.Payload, nil
}

// Store upserts the payload under key.
func (s *Store) Store(ctx context.Context, key string, payload []byte) error {
	doc := document{Key: key, Payload: payload, UpdatedAt: time.Now().UTC()}
	opts := options.Replace().SetUpsert(true)
	if _, err := s.collection().ReplaceOne(ctx, bson.M{"_id": key}, doc, opts); err != nil {
		return fmt.Errorf("store key %s: %w", key, err)
	}
	return nil
}

// Delete removes the key; deleting an absent key succeeds.
func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.collection().DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("delete key %s: %w", key, err)
	}
	return nil
}

// Close closes the MongoDB connection.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) collection() *mongo.Collection {
	return s.client.Database(s.dbName).Collection(collectionName)
}
