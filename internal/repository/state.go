package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrStateNotFound is returned when no blob is stored under a key.
var ErrStateNotFound = errors.New("state not found")

// StateDocument is one stored JSON blob keyed by its storage key.
type StateDocument struct {
	Key       string    `bson:"_id"`
	Payload   string    `bson:"payload"`
	Version   int64     `bson:"version"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// StateRepository stores workspace blobs in MongoDB.
type StateRepository struct {
	collection *mongo.Collection
}

// NewStateRepository creates a state repository on the workspace_state collection.
func NewStateRepository(db *MongoDB) *StateRepository {
	return &StateRepository{collection: db.State}
}

// Load returns the blob stored under key.
func (r *StateRepository) Load(ctx context.Context, key string) ([]byte, error) {
	var doc StateDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load %q: %w", key, err)
	}
	return []byte(doc.Payload), nil
}

// Save upserts the blob under key and bumps its version.
func (r *StateRepository) Save(ctx context.Context, key string, data []byte) error {
	update := bson.M{
		"$set": bson.M{"payload": string(data), "updated_at": time.Now().UTC()},
		"$inc": bson.M{"version": 1},
	}
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": key}, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("save %q: %w", key, err)
	}
	return nil
}

// Delete removes the blob under key. Missing keys are not an error.
func (r *StateRepository) Delete(ctx context.Context, key string) error {
	_, err := r.collection.DeleteOne(ctx, bson.M{"_id": key})
	return err
}

// Version returns how many times key has been saved.
func (r *StateRepository) Version(ctx context.Context, key string) (int64, error) {
	var doc StateDocument
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return 0, ErrStateNotFound
	}
	return doc.Version, err
}
