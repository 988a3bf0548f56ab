package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/IshaanNene/NewsDentist/internal/types"
)

// artifactDoc is the MongoDB document shape for one artifact.
type artifactDoc struct {
	Name      string    `bson:"_id"`
	Content   string    `bson:"content"`
	Pending   bool      `bson:"pending"`
	Lines     int       `bson:"lines"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// MongoSink stores artifacts as documents keyed by name.
type MongoSink struct {
	client     *mongo.Client
	collection *mongo.Collection
	logger     *slog.Logger
}

// NewMongoSink connects to MongoDB and verifies the connection.
func NewMongoSink(uri, database, collection string, logger *slog.Logger) (*MongoSink, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, &types.StorageError{Backend: "mongodb", Err: fmt.Errorf("connect: %w", err)}
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, &types.StorageError{Backend: "mongodb", Err: fmt.Errorf("ping: %w", err)}
	}

	return &MongoSink{
		client:     client,
		collection: client.Database(database).Collection(collection),
		logger:     logger.With("component", "mongo_sink"),
	}, nil
}

func (s *MongoSink) Name() string { return "mongodb" }

func (s *MongoSink) Reserve(ctx context.Context, name string) error {
	return s.upsert(ctx, artifactDoc{Name: name, Content: types.PendingArtifact, Pending: true})
}

func (s *MongoSink) Commit(ctx context.Context, name, content string) error {
	lines := 0
	if content != "" {
		lines = strings.Count(content, "\n") + 1
	}
	if err := s.upsert(ctx, artifactDoc{Name: name, Content: content, Lines: lines}); err != nil {
		return err
	}
	s.logger.Info("artifact committed", "name", name, "lines", lines)
	return nil
}

// upsert replaces the whole document in one write.
func (s *MongoSink) upsert(ctx context.Context, doc artifactDoc) error {
	if err := ValidateName(doc.Name); err != nil {
		return &types.StorageError{Backend: "mongodb", Err: err}
	}
	doc.UpdatedAt = time.Now().UTC()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := s.collection.ReplaceOne(ctx, bson.M{"_id": doc.Name}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return &types.StorageError{Backend: "mongodb", Err: fmt.Errorf("upsert %s: %w", doc.Name, err)}
	}
	return nil
}

func (s *MongoSink) Read(ctx context.Context, name string) (string, error) {
	var doc artifactDoc
	err := s.collection.FindOne(ctx, bson.M{"_id": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", &types.StorageError{Backend: "mongodb", Err: fmt.Errorf("%s: %w", name, types.ErrNotFound)}
	}
	if err != nil {
		return "", &types.StorageError{Backend: "mongodb", Err: err}
	}
	return doc.Content, nil
}

func (s *MongoSink) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}
