package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/numtrack/numtrack/internal/models"
	"github.com/numtrack/numtrack/pkg/logger"
)

type ActivityRepository struct {
	collection *mongo.Collection
	logger     logger.Logger
}

func NewActivityRepository(db *mongo.Database, log logger.Logger) *ActivityRepository {
	return &ActivityRepository{
		collection: db.Collection("activities"),
		logger:     log,
	}
}

func (r *ActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	activity.CreatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, activity)
	if err != nil {
		return fmt.Errorf("failed to insert activity: %w", err)
	}

	activity.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

// FindRecent returns activity entries newest first. A non-positive limit
// means no limit.
func (r *ActivityRepository) FindRecent(ctx context.Context, limit int64) ([]*models.Activity, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find activities: %w", err)
	}
	defer cursor.Close(ctx)

	var activities []*models.Activity
	for cursor.Next(ctx) {
		var activity models.Activity
		if err := cursor.Decode(&activity); err != nil {
			return nil, fmt.Errorf("failed to decode activity: %w", err)
		}
		activities = append(activities, &activity)
	}

	return activities, nil
}

func (r *ActivityRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "actor", Value: 1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
