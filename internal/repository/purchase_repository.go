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

type PurchaseRepository struct {
	collection *mongo.Collection
	logger     logger.Logger
}

func NewPurchaseRepository(db *mongo.Database, log logger.Logger) *PurchaseRepository {
	return &PurchaseRepository{
		collection: db.Collection("purchases"),
		logger:     log,
	}
}

func (r *PurchaseRepository) Create(ctx context.Context, purchase *models.Purchase) error {
	purchase.CreatedAt = time.Now()
	purchase.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, purchase)
	if err != nil {
		return fmt.Errorf("failed to insert purchase: %w", err)
	}

	purchase.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *PurchaseRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Purchase, error) {
	var purchase models.Purchase
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&purchase)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find purchase: %w", err)
	}

	return &purchase, nil
}

func (r *PurchaseRepository) FindAll(ctx context.Context) ([]*models.Purchase, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to find purchases: %w", err)
	}
	defer cursor.Close(ctx)

	var purchases []*models.Purchase
	for cursor.Next(ctx) {
		var purchase models.Purchase
		if err := cursor.Decode(&purchase); err != nil {
			return nil, fmt.Errorf("failed to decode purchase: %w", err)
		}
		purchases = append(purchases, &purchase)
	}

	return purchases, nil
}

func (r *PurchaseRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "mobile", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "purchase_date", Value: -1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
