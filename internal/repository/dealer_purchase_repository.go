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

type DealerPurchaseRepository struct {
	collection *mongo.Collection
	logger     logger.Logger
}

func NewDealerPurchaseRepository(db *mongo.Database, log logger.Logger) *DealerPurchaseRepository {
	return &DealerPurchaseRepository{
		collection: db.Collection("dealerPurchases"),
		logger:     log,
	}
}

func (r *DealerPurchaseRepository) Create(ctx context.Context, purchase *models.DealerPurchase) error {
	purchase.CreatedAt = time.Now()
	purchase.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, purchase)
	if err != nil {
		return fmt.Errorf("failed to insert dealer purchase: %w", err)
	}

	purchase.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *DealerPurchaseRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.DealerPurchase, error) {
	var purchase models.DealerPurchase
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&purchase)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find dealer purchase: %w", err)
	}

	return &purchase, nil
}

func (r *DealerPurchaseRepository) FindAll(ctx context.Context) ([]*models.DealerPurchase, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to find dealer purchases: %w", err)
	}
	defer cursor.Close(ctx)

	var purchases []*models.DealerPurchase
	for cursor.Next(ctx) {
		var purchase models.DealerPurchase
		if err := cursor.Decode(&purchase); err != nil {
			return nil, fmt.Errorf("failed to decode dealer purchase: %w", err)
		}
		purchases = append(purchases, &purchase)
	}

	return purchases, nil
}

func (r *DealerPurchaseRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update dealer purchase: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrRecordNotFound
	}

	return nil
}

func (r *DealerPurchaseRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "mobile", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "payment_status", Value: 1}},
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
