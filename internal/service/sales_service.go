package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/numtrack/numtrack/internal/models"
	"github.com/numtrack/numtrack/pkg/logger"
)

// SalesService owns the sale and port-out side of the number lifecycle.
type SalesService struct {
	sales      SaleStore
	numbers    NumberStore
	activities ActivityStore
	events     EventPublisher
	metrics    *MetricsCollector
	logger     logger.Logger
}

func NewSalesService(
	sales SaleStore,
	numbers NumberStore,
	activities ActivityStore,
	events EventPublisher,
	metrics *MetricsCollector,
	log logger.Logger,
) *SalesService {
	return &SalesService{
		sales:      sales,
		numbers:    numbers,
		activities: activities,
		events:     events,
		metrics:    metrics,
		logger:     log,
	}
}

type AddSaleInput struct {
	Mobile    string
	Buyer     string
	SalePrice float64
	SaleDate  time.Time
}

// AddSale records a sale. Payment and port-out start Pending; the sale
// price is mirrored onto the number record when one exists.
func (s *SalesService) AddSale(ctx context.Context, actor string, input AddSaleInput) (*models.Sale, error) {
	sale := &models.Sale{
		Mobile:        input.Mobile,
		Buyer:         input.Buyer,
		SalePrice:     input.SalePrice,
		SaleDate:      input.SaleDate,
		PaymentStatus: models.PaymentPending,
		PortOutStatus: models.PortOutPending,
		CreatedBy:     actor,
	}
	if err := s.sales.Create(ctx, sale); err != nil {
		s.logger.Error("Failed to create sale", logger.Field{Key: "error", Value: err.Error()})
		return nil, errors.New("failed to create sale")
	}

	number, err := s.numbers.FindByMobile(ctx, input.Mobile)
	if err == nil && number != nil {
		if err := s.numbers.UpdateFields(ctx, number.ID, bson.M{"sale_price": input.SalePrice}); err != nil {
			s.logger.Warn("Failed to mirror sale price onto number",
				logger.Field{Key: "mobile", Value: input.Mobile})
		}
	}

	s.recordActivity(ctx, actor, "Add Sale",
		fmt.Sprintf("Sold %s to %s for %.2f", input.Mobile, input.Buyer, input.SalePrice))
	s.metrics.IncrementMutation("sale", "add")
	s.publish("sale.added", map[string]interface{}{
		"mobile": input.Mobile,
		"buyer":  input.Buyer,
		"price":  input.SalePrice,
		"actor":  actor,
	})

	return sale, nil
}

// TogglePaymentStatus flips Pending to Done and back. Only the payment
// field changes.
func (s *SalesService) TogglePaymentStatus(ctx context.Context, actor string, id primitive.ObjectID) (models.PaymentStatus, error) {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return "", errors.New("failed to load sale")
	}
	if sale == nil {
		return "", models.ErrRecordNotFound
	}

	next := models.PaymentDone
	if sale.PaymentStatus == models.PaymentDone {
		next = models.PaymentPending
	}

	if err := s.sales.UpdateFields(ctx, id, bson.M{"payment_status": next}); err != nil {
		return "", err
	}

	s.recordActivity(ctx, actor, "Toggle Payment",
		fmt.Sprintf("Payment for %s set to %s", sale.Mobile, next))
	s.metrics.IncrementMutation("sale", "toggle_payment")
	s.publish("sale.payment.toggled", map[string]interface{}{
		"mobile": sale.Mobile,
		"status": next,
		"actor":  actor,
	})

	return next, nil
}

// CompletePortOut marks a sale's number as ported to the buyer's carrier.
// The port-out date is stamped once; completing twice is rejected.
func (s *SalesService) CompletePortOut(ctx context.Context, actor string, id primitive.ObjectID, date time.Time) error {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return errors.New("failed to load sale")
	}
	if sale == nil {
		return models.ErrRecordNotFound
	}
	if sale.PortOutStatus == models.PortOutDone {
		return errors.New("port-out already completed")
	}

	fields := bson.M{
		"portout_status": models.PortOutDone,
		"portout_date":   date,
	}
	if err := s.sales.UpdateFields(ctx, id, fields); err != nil {
		return err
	}

	s.recordActivity(ctx, actor, "Complete Port-Out",
		fmt.Sprintf("Ported out %s", sale.Mobile))
	s.metrics.IncrementMutation("sale", "portout")
	s.publish("sale.portout.completed", map[string]interface{}{
		"mobile": sale.Mobile,
		"actor":  actor,
	})

	return nil
}

func (s *SalesService) ListSales(ctx context.Context) ([]*models.Sale, error) {
	return s.sales.FindAll(ctx)
}

func (s *SalesService) ListPortOuts(ctx context.Context) ([]*models.Sale, error) {
	return s.sales.FindPortedOut(ctx)
}

func (s *SalesService) recordActivity(ctx context.Context, actor, action, description string) {
	activity := &models.Activity{
		Actor:       actor,
		Action:      action,
		Description: description,
	}
	if err := s.activities.Create(ctx, activity); err != nil {
		s.logger.Error("Failed to record activity", logger.Field{Key: "error", Value: err.Error()})
	}
}

func (s *SalesService) publish(routingKey string, payload interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEvent(routingKey, payload); err != nil {
		s.logger.Warn("Failed to publish event", logger.Field{Key: "routing_key", Value: routingKey})
	}
}
