package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/numtrack/numtrack/internal/models"
	"github.com/numtrack/numtrack/pkg/logger"
)

type ReminderRepository struct {
	collection *mongo.Collection
	logger     logger.Logger
}

func NewReminderRepository(db *mongo.Database, log logger.Logger) *ReminderRepository {
	return &ReminderRepository{
		collection: db.Collection("reminders"),
		logger:     log,
	}
}

func (r *ReminderRepository) Create(ctx context.Context, reminder *models.Reminder) error {
	reminder.CreatedAt = time.Now()
	reminder.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, reminder)
	if err != nil {
		return fmt.Errorf("failed to insert reminder: %w", err)
	}

	reminder.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *ReminderRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Reminder, error) {
	var reminder models.Reminder
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&reminder)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find reminder: %w", err)
	}

	return &reminder, nil
}

func (r *ReminderRepository) FindAll(ctx context.Context) ([]*models.Reminder, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to find reminders: %w", err)
	}
	defer cursor.Close(ctx)

	var reminders []*models.Reminder
	for cursor.Next(ctx) {
		var reminder models.Reminder
		if err := cursor.Decode(&reminder); err != nil {
			return nil, fmt.Errorf("failed to decode reminder: %w", err)
		}
		reminders = append(reminders, &reminder)
	}

	return reminders, nil
}

func (r *ReminderRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.ReminderStatus) error {
	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"updated_at": time.Now(),
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update reminder status: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrRecordNotFound
	}

	return nil
}

func (r *ReminderRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "due_date", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "assignee", Value: 1}, {Key: "status", Value: 1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
