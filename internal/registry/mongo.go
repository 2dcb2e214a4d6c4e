package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/annel0/dungeon-rooms/internal/logging"
	"github.com/annel0/dungeon-rooms/internal/vec"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoConfig contains connection settings for the MongoDB registry.
type MongoConfig struct {
	URI        string // e.g. mongodb://localhost:27017
	Database   string // e.g. dungeon
	Collection string // e.g. generated_rooms
}

// MongoRegistry keys documents by Key(): the unique _id makes the second insert fail.
type MongoRegistry struct {
	client     *mongo.Client
	collection *mongo.Collection
	ctxTimeout time.Duration
}

type roomDoc struct {
	ID        string    `bson:"_id"`
	World     string    `bson:"world"`
	X         int       `bson:"x"`
	Z         int       `bson:"z"`
	Layer     int       `bson:"layer"`
	CreatedAt time.Time `bson:"created_at"`
}

// NewMongoRegistry establishes connection and returns the registry.
func NewMongoRegistry(ctx context.Context, cfg MongoConfig) (*MongoRegistry, error) {
	if cfg.URI == "" {
		cfg.URI = "mongodb://localhost:27017"
	}
	if cfg.Database == "" {
		cfg.Database = "dungeon"
	}
	if cfg.Collection == "" {
		cfg.Collection = "generated_rooms"
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, err
	}
	// ping
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	logging.GetRegistryLogger().Info("🍃 Реестр комнат подключён к MongoDB %s/%s", cfg.Database, cfg.Collection)
	return &MongoRegistry{
		client:     client,
		collection: client.Database(cfg.Database).Collection(cfg.Collection),
		ctxTimeout: 5 * time.Second,
	}, nil
}

func (m *MongoRegistry) TryRegisterGenerated(ctx context.Context, world string, cell vec.Vec2, layer int) (bool, error) {
	if err := validate(world); err != nil {
		return false, err
	}
	ctx, cancel := context.WithTimeout(ctx, m.ctxTimeout)
	defer cancel()

	doc := roomDoc{
		ID:        Key(world, cell, layer),
		World:     world,
		X:         cell.X,
		Z:         cell.Y,
		Layer:     layer,
		CreatedAt: time.Now().UTC(),
	}
	_, err := m.collection.InsertOne(ctx, doc)
	if mongo.IsDuplicateKeyError(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("mongo insert: %w", err)
	}
	return true, nil
}

func (m *MongoRegistry) IsGenerated(ctx context.Context, world string, cell vec.Vec2, layer int) (bool, error) {
	if err := validate(world); err != nil {
		return false, err
	}
	ctx, cancel := context.WithTimeout(ctx, m.ctxTimeout)
	defer cancel()

	n, err := m.collection.CountDocuments(ctx, bson.M{"_id": Key(world, cell, layer)})
	if err != nil {
		return false, fmt.Errorf("mongo count: %w", err)
	}
	return n > 0, nil
}

func (m *MongoRegistry) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), m.ctxTimeout)
	defer cancel()
	return m.client.Disconnect(ctx)
}
