package store

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eventdeck/eventdeck/internal/event"
)

// MongoStore implements EventStore using MongoDB. Slug uniqueness is
// enforced by a unique index; similarity is a $ne/$in query over the tags
// array.
type MongoStore struct {
	client *mongo.Client
	events *mongo.Collection
}

// NewMongoStore connects to MongoDB and ensures the slug index exists.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("store: failed to connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("store: failed to ping mongodb: %w", err)
	}

	events := client.Database(database).Collection("events")

	_, err = events.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "slug", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		client.Disconnect(context.Background())
		return nil, fmt.Errorf("store: failed to create slug index: %w", err)
	}

	return &MongoStore{client: client, events: events}, nil
}

// Create persists a new event record.
func (m *MongoStore) Create(ctx context.Context, e *event.Event) error {
	_, err := m.events.InsertOne(ctx, e)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateSlug
		}
		return fmt.Errorf("store: failed to insert event: %w", err)
	}
	return nil
}

// ListAll returns all records, most recent first.
func (m *MongoStore) ListAll(ctx context.Context) ([]*event.Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := m.events.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("store: failed to list events: %w", err)
	}

	events := make([]*event.Event, 0)
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("store: failed to decode events: %w", err)
	}
	return events, nil
}

// GetBySlug returns the record with the given slug.
func (m *MongoStore) GetBySlug(ctx context.Context, slug string) (*event.Event, error) {
	var e event.Event
	err := m.events.FindOne(ctx, bson.M{"slug": slug}).Decode(&e)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: failed to get event %q: %w", slug, err)
	}
	return &e, nil
}

// FindSimilar returns other records sharing at least one tag with the record
// identified by slug.
func (m *MongoStore) FindSimilar(ctx context.Context, slug string) ([]*event.Event, error) {
	source, err := m.GetBySlug(ctx, slug)
	if err == ErrNotFound {
		return []*event.Event{}, nil
	}
	if err != nil {
		return nil, err
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := m.events.Find(ctx, bson.M{
		"_id":  bson.M{"$ne": source.ID},
		"tags": bson.M{"$in": source.Tags},
	}, opts)
	if err != nil {
		return nil, fmt.Errorf("store: failed to find similar events: %w", err)
	}

	events := make([]*event.Event, 0)
	if err := cursor.All(ctx, &events); err != nil {
		return nil, fmt.Errorf("store: failed to decode similar events: %w", err)
	}
	return events, nil
}

// Close disconnects from MongoDB.
func (m *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}
