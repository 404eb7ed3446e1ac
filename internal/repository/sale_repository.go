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

type SaleRepository struct {
	collection *mongo.Collection
	logger     logger.Logger
}

func NewSaleRepository(db *mongo.Database, log logger.Logger) *SaleRepository {
	return &SaleRepository{
		collection: db.Collection("sales"),
		logger:     log,
	}
}

func (r *SaleRepository) Create(ctx context.Context, sale *models.Sale) error {
	sale.CreatedAt = time.Now()
	sale.UpdatedAt = time.Now()

	result, err := r.collection.InsertOne(ctx, sale)
	if err != nil {
		return fmt.Errorf("failed to insert sale: %w", err)
	}

	sale.ID = result.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *SaleRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Sale, error) {
	var sale models.Sale
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&sale)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find sale: %w", err)
	}

	return &sale, nil
}

func (r *SaleRepository) FindAll(ctx context.Context) ([]*models.Sale, error) {
	return r.find(ctx, bson.M{})
}

// FindPortedOut returns the terminal records: sales whose number has left
// for another carrier.
func (r *SaleRepository) FindPortedOut(ctx context.Context) ([]*models.Sale, error) {
	return r.find(ctx, bson.M{"portout_date": bson.M{"$ne": nil}})
}

func (r *SaleRepository) find(ctx context.Context, filter bson.M) ([]*models.Sale, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find sales: %w", err)
	}
	defer cursor.Close(ctx)

	var sales []*models.Sale
	for cursor.Next(ctx) {
		var sale models.Sale
		if err := cursor.Decode(&sale); err != nil {
			return nil, fmt.Errorf("failed to decode sale: %w", err)
		}
		sales = append(sales, &sale)
	}

	return sales, nil
}

func (r *SaleRepository) UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return fmt.Errorf("failed to update sale: %w", err)
	}
	if result.MatchedCount == 0 {
		return models.ErrRecordNotFound
	}

	return nil
}

func (r *SaleRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "mobile", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "payment_status", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "portout_date", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	}

	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
