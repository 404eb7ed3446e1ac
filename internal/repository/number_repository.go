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

type NumberRepository struct {
	collection *mongo.Collection
	logger     logger.Logger
}

func NewNumberRepository(db *mongo.Database, log logger.Logger) *NumberRepository {
	return &NumberRepository{
		collection: db.Collection("numbers"),
		logger:     log,
	}
}

func (r *NumberRepository) Create(ctx context.Context, number *models.Number) error {
	number.CreatedAt = time.Now()
	number.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, number)
	if err != nil {
		return fmt.Errorf("failed to insert number: %w", err)
	}

	number.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *NumberRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Number, error) {
	var number models.Number
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&number)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find number: %w", err)
	}

	return &number, nil
}

func (r *NumberRepository) FindByMobile(ctx context.Context, mobile string) (*models.Number, error) {
	var number models.Number
	err := r.collection.FindOne(ctx, bson.M{"mobile": mobile}).Decode(&number)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find number: %w", err)
	}

	return &number, nil
}

func (r *NumberRepository) FindAll(ctx context.Context) ([]*models.Number, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to find numbers: %w", err)
	}
	defer cursor.Close(ctx)

	var numbers []*models.Number
	for cursor.Next(ctx) {
		var number models.Number
		if err := cursor.Decode(&number); err != nil {
			return nil, fmt.Errorf("failed to decode number: %w", err)
		}
		numbers = append(numbers, &number)
	}

	return numbers, nil
}

// FindScheduled returns Non-RTS numbers with a scheduled RTS date. The
// sweeper decides per record whether the date is actually due.
func (r *NumberRepository) FindScheduled(ctx context.Context) ([]*models.Number, error) {
	filter := bson.M{
		"status":   models.StatusNonRTS,
		"rts_date": bson.M{"$ne": nil},
	}

	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find scheduled numbers: %w", err)
	}
	defer cursor.Close(ctx)

	var numbers []*models.Number
	for cursor.Next(ctx) {
		var number models.Number
		if err := cursor.Decode(&number); err != nil {
			return nil, fmt.Errorf("failed to decode number: %w", err)
		}
		numbers = append(numbers, &number)
	}

	return numbers, nil
}

// UpdateFields applies a targeted $set to one record and bumps updated_at.
func (r *NumberRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update number: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrRecordNotFound
	}

	return nil
}

// NextSerial returns one past the highest serial in the collection.
func (r *NumberRepository) NextSerial(ctx context.Context) (int, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "serial", Value: -1}})

	var number models.Number
	err := r.collection.FindOne(ctx, bson.M{}, opts).Decode(&number)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 1, nil
		}
		return 0, fmt.Errorf("failed to find max serial: %w", err)
	}

	return number.Serial + 1, nil
}

func (r *NumberRepository) CountByStatus(ctx context.Context, status models.NumberStatus) (int64, error) {
	count, err := r.collection.CountDocuments(ctx, bson.M{"status": status})
	if err != nil {
		return 0, fmt.Errorf("failed to count numbers: %w", err)
	}

	return count, nil
}

func (r *NumberRepository) CountByCategory(ctx context.Context) (map[string]int64, error) {
	pipeline := []bson.M{
		{"$group": bson.M{
			"_id":   "$category",
			"count": bson.M{"$sum": 1},
		}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate categories: %w", err)
	}
	defer cursor.Close(ctx)

	counts := make(map[string]int64)
	for cursor.Next(ctx) {
		var row struct {
			ID    string `bson:"_id"`
			Count int64  `bson:"count"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("failed to decode category count: %w", err)
		}
		counts[row.ID] = row.Count
	}

	return counts, nil
}

func (r *NumberRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "mobile", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "status", Value: 1}, {Key: "rts_date", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "serial", Value: -1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
