package repository

import (
	"context"
	"fmt"
	"time"

	"manifest-service/internal/domain/entity"
	"manifest-service/internal/domain/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoInboxRepository implements the InboxRepository interface
type MongoInboxRepository struct {
	collection *mongo.Collection
}

// NewMongoInboxRepository creates a new MongoDB inbox repository
func NewMongoInboxRepository(ctx context.Context, db *mongo.Database) (repository.InboxRepository, error) {
	collection := db.Collection("inbox_messages")

	// Index on messageId for fast lookups and uniqueness
	messageIDIndex := mongo.IndexModel{
		Keys:    bson.M{"messageId": 1},
		Options: options.Index().SetUnique(true),
	}

	// Index on receivedAt for finding the poll cursor
	receivedAtIndex := mongo.IndexModel{
		Keys: bson.M{"receivedAt": -1},
	}

	if _, err := collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		messageIDIndex,
		receivedAtIndex,
	}); err != nil {
		return nil, fmt.Errorf("failed to create inbox indexes: %w", err)
	}

	return &MongoInboxRepository{
		collection: collection,
	}, nil
}

// Save saves a message to MongoDB
func (r *MongoInboxRepository) Save(ctx context.Context, msg *entity.InboxMessage) error {
	if msg.ProcessStatus == "" {
		msg.ProcessStatus = entity.InboxStatusPending
	}

	_, err := r.collection.InsertOne(ctx, msg)
	return err
}

// GetLastMessage gets the most recently received message
func (r *MongoInboxRepository) GetLastMessage(ctx context.Context) (*entity.InboxMessage, error) {
	var msg entity.InboxMessage
	opts := options.FindOne().SetSort(bson.D{{Key: "receivedAt", Value: -1}})
	err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&msg)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &msg, nil
}

// FindByMessageIDs finds multiple messages by mailbox message IDs (batch operation)
func (r *MongoInboxRepository) FindByMessageIDs(ctx context.Context, messageIDs []string) (map[string]*entity.InboxMessage, error) {
	if len(messageIDs) == 0 {
		return make(map[string]*entity.InboxMessage), nil
	}

	filter := bson.M{"messageId": bson.M{"$in": messageIDs}}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	result := make(map[string]*entity.InboxMessage)
	for cursor.Next(ctx) {
		var msg entity.InboxMessage
		if err := cursor.Decode(&msg); err != nil {
			continue
		}
		result[msg.MessageID] = &msg
	}

	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// UpdateStatusByMessageID updates the status and, when processing starts, the start time
func (r *MongoInboxRepository) UpdateStatusByMessageID(ctx context.Context, messageID string, status string, startedAt time.Time) error {
	update := bson.M{
		"$set": bson.M{
			"processStatus": status,
		},
	}

	if status == entity.InboxStatusProcessing && !startedAt.IsZero() {
		update["$set"].(bson.M)["processStartedAt"] = startedAt
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"messageId": messageID},
		update,
	)

	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("no document found with messageID: %s", messageID)
	}

	return nil
}

// MarkAsProcessedByMessageID records the final outcome of a message
func (r *MongoInboxRepository) MarkAsProcessedByMessageID(ctx context.Context, messageID, status, handlerType, errorDetail string, recordIDs []string) error {
	update := bson.M{
		"$set": bson.M{
			"processedAt":   time.Now(),
			"processStatus": status,
			"handlerType":   handlerType,
		},
	}

	if len(recordIDs) > 0 {
		update["$set"].(bson.M)["recordIds"] = recordIDs
	}

	if errorDetail != "" {
		update["$set"].(bson.M)["errorDetail"] = errorDetail
	}

	result, err := r.collection.UpdateOne(
		ctx,
		bson.M{"messageId": messageID},
		update,
	)

	if err != nil {
		return fmt.Errorf("failed to mark as processed: %w", err)
	}

	if result.MatchedCount == 0 {
		return fmt.Errorf("no document found with messageID: %s", messageID)
	}

	return nil
}
