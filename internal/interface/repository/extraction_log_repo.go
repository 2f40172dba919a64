package repository

import (
	"context"
	"fmt"

	"manifest-service/internal/domain/entity"
	"manifest-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// MongoExtractionLogRepository implements the ExtractionLogRepository interface
type MongoExtractionLogRepository struct {
	collection *mongo.Collection
}

// NewMongoExtractionLogRepository creates a new MongoDB extraction log repository
func NewMongoExtractionLogRepository(ctx context.Context, db *mongo.Database) (repository.ExtractionLogRepository, error) {
	collection := db.Collection("extraction_logs")

	// Index on recordId to trace a manifest row back to its attempts
	recordIDIndex := mongo.IndexModel{
		Keys: bson.D{
			{Key: "recordId", Value: 1},
			{Key: "createdAt", Value: -1},
		},
	}

	if _, err := collection.Indexes().CreateOne(ctx, recordIDIndex); err != nil {
		return nil, fmt.Errorf("failed to create extraction log index: %w", err)
	}

	return &MongoExtractionLogRepository{
		collection: collection,
	}, nil
}

// Save appends one extraction attempt
func (r *MongoExtractionLogRepository) Save(ctx context.Context, log *entity.ExtractionLog) error {
	if log.ID == "" {
		log.ID = primitive.NewObjectID().Hex()
	}

	if _, err := r.collection.InsertOne(ctx, log); err != nil {
		return fmt.Errorf("failed to save extraction log: %w", err)
	}
	return nil
}
