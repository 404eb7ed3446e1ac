package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/numtrack/numtrack/internal/models"
)

// Store interfaces mirror the repository method sets so services can be
// exercised against in-memory fakes.

type NumberStore interface {
	Create(ctx context.Context, number *models.Number) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Number, error)
	FindByMobile(ctx context.Context, mobile string) (*models.Number, error)
	FindAll(ctx context.Context) ([]*models.Number, error)
	FindScheduled(ctx context.Context) ([]*models.Number, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error
	NextSerial(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status models.NumberStatus) (int64, error)
	CountByCategory(ctx context.Context) (map[string]int64, error)
}

type SaleStore interface {
	Create(ctx context.Context, sale *models.Sale) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Sale, error)
	FindAll(ctx context.Context) ([]*models.Sale, error)
	FindPortedOut(ctx context.Context) ([]*models.Sale, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error
}

type PurchaseStore interface {
	Create(ctx context.Context, purchase *models.Purchase) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Purchase, error)
	FindAll(ctx context.Context) ([]*models.Purchase, error)
}

type DealerPurchaseStore interface {
	Create(ctx context.Context, purchase *models.DealerPurchase) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.DealerPurchase, error)
	FindAll(ctx context.Context) ([]*models.DealerPurchase, error)
	UpdateFields(ctx context.Context, id primitive.ObjectID, fields bson.M) error
}

type ReminderStore interface {
	Create(ctx context.Context, reminder *models.Reminder) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Reminder, error)
	FindAll(ctx context.Context) ([]*models.Reminder, error)
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status models.ReminderStatus) error
}

type ActivityStore interface {
	Create(ctx context.Context, activity *models.Activity) error
	FindRecent(ctx context.Context, limit int64) ([]*models.Activity, error)
}

type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	FindUserByEmail(ctx context.Context, email string) (*models.User, error)
	FindUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindAllUsers(ctx context.Context) ([]*models.User, error)
	CountUsers(ctx context.Context) (int64, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, displayName string) error
	UpdateLastLogin(ctx context.Context, id primitive.ObjectID) error
	CreateSession(ctx context.Context, session *models.Session) error
	FindSessionByToken(ctx context.Context, token string) (*models.Session, error)
	TouchSession(ctx context.Context, token string) error
	DeleteSessionByToken(ctx context.Context, token string) error
	DeleteUserSessions(ctx context.Context, userID primitive.ObjectID) error
}

// EventPublisher is satisfied by messaging.RabbitMQ. Event delivery is
// best-effort and never fails a mutation.
type EventPublisher interface {
	PublishEvent(routingKey string, payload interface{}) error
}

// NoopPublisher stands in when the message broker is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishEvent(string, interface{}) error { return nil }
