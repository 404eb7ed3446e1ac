package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/numtrack/numtrack/internal/derive"
	"github.com/numtrack/numtrack/internal/models"
	"github.com/numtrack/numtrack/pkg/logger"
)

// InventoryService owns every mutation of number, purchase and reminder
// records. Each mutation touches exactly the targeted record, appends one
// Activity entry and publishes one event.
type InventoryService struct {
	numbers         NumberStore
	purchases       PurchaseStore
	dealerPurchases DealerPurchaseStore
	reminders       ReminderStore
	activities      ActivityStore
	events          EventPublisher
	metrics         *MetricsCollector
	logger          logger.Logger
}

func NewInventoryService(
	numbers NumberStore,
	purchases PurchaseStore,
	dealerPurchases DealerPurchaseStore,
	reminders ReminderStore,
	activities ActivityStore,
	events EventPublisher,
	metrics *MetricsCollector,
	log logger.Logger,
) *InventoryService {
	return &InventoryService{
		numbers:         numbers,
		purchases:       purchases,
		dealerPurchases: dealerPurchases,
		reminders:       reminders,
		activities:      activities,
		events:          events,
		metrics:         metrics,
		logger:          log,
	}
}

type UpdateRTSStatusInput struct {
	Status  models.NumberStatus
	RTSDate *time.Time
	Note    string
}

// UpdateRTSStatus changes a number's lifecycle status. Marking a number
// RTS clears any scheduled date; a future scheduled date keeps it Non-RTS
// until the sweeper flips it. A note is appended to the existing notes,
// newline separated.
func (s *InventoryService) UpdateRTSStatus(ctx context.Context, actor string, id primitive.ObjectID, input UpdateRTSStatusInput) (*models.Number, error) {
	if input.Status != models.StatusRTS && input.Status != models.StatusNonRTS {
		return nil, errors.New("invalid RTS status")
	}

	number, err := s.numbers.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to load number", logger.Field{Key: "error", Value: err.Error()})
		return nil, errors.New("failed to load number")
	}
	if number == nil {
		return nil, models.ErrRecordNotFound
	}

	fields := bson.M{"status": input.Status}
	if input.Status == models.StatusRTS {
		// RTS implies no pending schedule.
		fields["rts_date"] = nil
	} else {
		fields["rts_date"] = input.RTSDate
	}

	if input.Note != "" {
		notes := input.Note
		if number.Notes != "" {
			notes = number.Notes + "\n" + input.Note
		}
		fields["notes"] = notes
	}

	if err := s.numbers.UpdateFields(ctx, id, fields); err != nil {
		return nil, err
	}

	s.recordActivity(ctx, actor, "Update RTS Status",
		fmt.Sprintf("Marked %s as %s", number.Mobile, input.Status))
	s.metrics.IncrementMutation("number", "update_rts_status")
	s.publish("number.rts_status.updated", map[string]interface{}{
		"mobile": number.Mobile,
		"status": input.Status,
		"actor":  actor,
	})

	return s.numbers.FindByID(ctx, id)
}

func (s *InventoryService) SetActivationStatus(ctx context.Context, actor string, id primitive.ObjectID, status models.SubStatus) error {
	return s.setSubStatus(ctx, actor, id, "activation_status", "Update Activation Status", status)
}

func (s *InventoryService) SetUploadStatus(ctx context.Context, actor string, id primitive.ObjectID, status models.SubStatus) error {
	return s.setSubStatus(ctx, actor, id, "upload_status", "Update Upload Status", status)
}

func (s *InventoryService) setSubStatus(ctx context.Context, actor string, id primitive.ObjectID, field, action string, status models.SubStatus) error {
	switch status {
	case models.SubStatusDone, models.SubStatusPending, models.SubStatusFail:
	default:
		return errors.New("invalid sub-status")
	}

	number, err := s.numbers.FindByID(ctx, id)
	if err != nil {
		return errors.New("failed to load number")
	}
	if number == nil {
		return models.ErrRecordNotFound
	}

	if err := s.numbers.UpdateFields(ctx, id, bson.M{field: status}); err != nil {
		return err
	}

	s.recordActivity(ctx, actor, action,
		fmt.Sprintf("Set %s of %s to %s", field, number.Mobile, status))
	s.metrics.IncrementMutation("number", field)
	s.publish("number.substatus.updated", map[string]interface{}{
		"mobile": number.Mobile,
		"field":  field,
		"status": status,
		"actor":  actor,
	})

	return nil
}

// SetCOCPDates edits the contract window of a COCP number.
func (s *InventoryService) SetCOCPDates(ctx context.Context, actor string, id primitive.ObjectID, start, end *time.Time) error {
	number, err := s.numbers.FindByID(ctx, id)
	if err != nil {
		return errors.New("failed to load number")
	}
	if number == nil {
		return models.ErrRecordNotFound
	}
	if number.Category != models.CategoryCOCP {
		return errors.New("not a COCP number")
	}

	fields := bson.M{
		"cocp_start_date": start,
		"cocp_end_date":   end,
	}
	if err := s.numbers.UpdateFields(ctx, id, fields); err != nil {
		return err
	}

	s.recordActivity(ctx, actor, "Update COCP Dates",
		fmt.Sprintf("Edited COCP dates of %s", number.Mobile))
	s.metrics.IncrementMutation("number", "cocp_dates")

	return nil
}

type AssignmentInput struct {
	Assignee     *string
	Location     *string
	LocationType *string
}

// UpdateAssignment moves a number between holders and locations.
func (s *InventoryService) UpdateAssignment(ctx context.Context, actor string, id primitive.ObjectID, input AssignmentInput) error {
	number, err := s.numbers.FindByID(ctx, id)
	if err != nil {
		return errors.New("failed to load number")
	}
	if number == nil {
		return models.ErrRecordNotFound
	}

	fields := bson.M{}
	if input.Assignee != nil {
		fields["assignee"] = *input.Assignee
	}
	if input.Location != nil {
		fields["location"] = *input.Location
	}
	if input.LocationType != nil {
		fields["location_type"] = *input.LocationType
	}
	if len(fields) == 0 {
		return errors.New("nothing to update")
	}

	if err := s.numbers.UpdateFields(ctx, id, fields); err != nil {
		return err
	}

	s.recordActivity(ctx, actor, "Update Assignment",
		fmt.Sprintf("Reassigned %s", number.Mobile))
	s.metrics.IncrementMutation("number", "assignment")

	return nil
}

func (s *InventoryService) SetSafeCustodyDate(ctx context.Context, actor string, id primitive.ObjectID, date *time.Time) error {
	number, err := s.numbers.FindByID(ctx, id)
	if err != nil {
		return errors.New("failed to load number")
	}
	if number == nil {
		return models.ErrRecordNotFound
	}

	if err := s.numbers.UpdateFields(ctx, id, bson.M{"safe_custody_date": date}); err != nil {
		return err
	}

	s.recordActivity(ctx, actor, "Update Safe Custody",
		fmt.Sprintf("Edited safe custody date of %s", number.Mobile))
	s.metrics.IncrementMutation("number", "safe_custody_date")

	return nil
}

type AddPurchaseInput struct {
	Mobile       string
	Vendor       string
	Price        float64
	PurchaseDate time.Time
	Category     models.Category
}

// AddPurchase records an acquisition and synthesizes the matching Non-RTS
// number record. The numerology sum is computed once here, at write time.
func (s *InventoryService) AddPurchase(ctx context.Context, actor string, input AddPurchaseInput) (*models.Purchase, *models.Number, error) {
	existing, err := s.numbers.FindByMobile(ctx, input.Mobile)
	if err != nil {
		return nil, nil, errors.New("failed to check existing number")
	}
	if existing != nil {
		return nil, nil, models.ErrDuplicateMobile
	}

	if input.Category == "" {
		input.Category = models.CategoryPrepaid
	}

	purchase := &models.Purchase{
		Mobile:       input.Mobile,
		Vendor:       input.Vendor,
		Price:        input.Price,
		PurchaseDate: input.PurchaseDate,
		Category:     input.Category,
		CreatedBy:    actor,
	}
	if err := s.purchases.Create(ctx, purchase); err != nil {
		s.logger.Error("Failed to create purchase", logger.Field{Key: "error", Value: err.Error()})
		return nil, nil, errors.New("failed to create purchase")
	}

	serial, err := s.numbers.NextSerial(ctx)
	if err != nil {
		return nil, nil, errors.New("failed to allocate serial")
	}

	number := &models.Number{
		Serial:           serial,
		Mobile:           input.Mobile,
		Sum:              derive.DigitalRoot(input.Mobile),
		Status:           models.StatusNonRTS,
		Category:         input.Category,
		PurchaseSource:   input.Vendor,
		PurchasePrice:    input.Price,
		PurchaseDate:     input.PurchaseDate,
		ActivationStatus: models.SubStatusPending,
		UploadStatus:     models.SubStatusPending,
		CreatedBy:        actor,
	}
	if err := s.numbers.Create(ctx, number); err != nil {
		s.logger.Error("Failed to create number", logger.Field{Key: "error", Value: err.Error()})
		return nil, nil, errors.New("failed to create number")
	}

	s.recordActivity(ctx, actor, "Add Purchase",
		fmt.Sprintf("Purchased %s from %s for %.2f", input.Mobile, input.Vendor, input.Price))
	s.metrics.IncrementMutation("purchase", "add")
	s.publish("purchase.added", map[string]interface{}{
		"mobile": input.Mobile,
		"vendor": input.Vendor,
		"price":  input.Price,
		"actor":  actor,
	})

	return purchase, number, nil
}

type AddDealerPurchaseInput struct {
	Mobile       string
	Dealer       string
	Price        float64
	PurchaseDate time.Time
}

func (s *InventoryService) AddDealerPurchase(ctx context.Context, actor string, input AddDealerPurchaseInput) (*models.DealerPurchase, error) {
	purchase := &models.DealerPurchase{
		Mobile:        input.Mobile,
		Dealer:        input.Dealer,
		Price:         input.Price,
		PurchaseDate:  input.PurchaseDate,
		PaymentStatus: models.PaymentPending,
		PortOutStatus: models.PortOutPending,
		CreatedBy:     actor,
	}
	if err := s.dealerPurchases.Create(ctx, purchase); err != nil {
		s.logger.Error("Failed to create dealer purchase", logger.Field{Key: "error", Value: err.Error()})
		return nil, errors.New("failed to create dealer purchase")
	}

	s.recordActivity(ctx, actor, "Add Dealer Purchase",
		fmt.Sprintf("Added dealer purchase %s from %s", input.Mobile, input.Dealer))
	s.metrics.IncrementMutation("dealer_purchase", "add")

	return purchase, nil
}

type UpdateDealerPurchaseInput struct {
	Dealer        *string
	Price         *float64
	PaymentStatus *models.PaymentStatus
	PortOutStatus *models.PortOutStatus
}

func (s *InventoryService) UpdateDealerPurchase(ctx context.Context, actor string, id primitive.ObjectID, input UpdateDealerPurchaseInput) error {
	purchase, err := s.dealerPurchases.FindByID(ctx, id)
	if err != nil {
		return errors.New("failed to load dealer purchase")
	}
	if purchase == nil {
		return models.ErrRecordNotFound
	}

	fields := bson.M{}
	if input.Dealer != nil {
		fields["dealer"] = *input.Dealer
	}
	if input.Price != nil {
		fields["price"] = *input.Price
	}
	if input.PaymentStatus != nil {
		fields["payment_status"] = *input.PaymentStatus
	}
	if input.PortOutStatus != nil {
		fields["portout_status"] = *input.PortOutStatus
	}
	if len(fields) == 0 {
		return errors.New("nothing to update")
	}

	if err := s.dealerPurchases.UpdateFields(ctx, id, fields); err != nil {
		return err
	}

	s.recordActivity(ctx, actor, "Edit Dealer Purchase",
		fmt.Sprintf("Edited dealer purchase %s", purchase.Mobile))
	s.metrics.IncrementMutation("dealer_purchase", "edit")

	return nil
}

type AddReminderInput struct {
	Mobile   string
	Task     string
	Assignee string
	DueDate  time.Time
}

func (s *InventoryService) AddReminder(ctx context.Context, actor string, input AddReminderInput) (*models.Reminder, error) {
	reminder := &models.Reminder{
		Mobile:    input.Mobile,
		Task:      input.Task,
		Assignee:  input.Assignee,
		DueDate:   input.DueDate,
		Status:    models.ReminderUploadPending,
		CreatedBy: actor,
	}
	if err := s.reminders.Create(ctx, reminder); err != nil {
		s.logger.Error("Failed to create reminder", logger.Field{Key: "error", Value: err.Error()})
		return nil, errors.New("failed to create reminder")
	}

	s.recordActivity(ctx, actor, "Add Reminder",
		fmt.Sprintf("Reminder for %s assigned to %s", input.Mobile, input.Assignee))
	s.metrics.IncrementMutation("reminder", "add")

	return reminder, nil
}

func (s *InventoryService) MarkReminderDone(ctx context.Context, actor string, id primitive.ObjectID) error {
	reminder, err := s.reminders.FindByID(ctx, id)
	if err != nil {
		return errors.New("failed to load reminder")
	}
	if reminder == nil {
		return models.ErrRecordNotFound
	}

	if err := s.reminders.UpdateStatus(ctx, id, models.ReminderActDone); err != nil {
		return err
	}

	s.recordActivity(ctx, actor, "Complete Reminder",
		fmt.Sprintf("Marked reminder for %s done", reminder.Mobile))
	s.metrics.IncrementMutation("reminder", "done")

	return nil
}

func (s *InventoryService) ListNumbers(ctx context.Context) ([]*models.Number, error) {
	return s.numbers.FindAll(ctx)
}

func (s *InventoryService) GetNumber(ctx context.Context, id primitive.ObjectID) (*models.Number, error) {
	return s.numbers.FindByID(ctx, id)
}

func (s *InventoryService) ListPurchases(ctx context.Context) ([]*models.Purchase, error) {
	return s.purchases.FindAll(ctx)
}

func (s *InventoryService) ListDealerPurchases(ctx context.Context) ([]*models.DealerPurchase, error) {
	return s.dealerPurchases.FindAll(ctx)
}

func (s *InventoryService) ListReminders(ctx context.Context) ([]*models.Reminder, error) {
	return s.reminders.FindAll(ctx)
}

func (s *InventoryService) ListActivities(ctx context.Context, limit int64) ([]*models.Activity, error) {
	return s.activities.FindRecent(ctx, limit)
}

func (s *InventoryService) recordActivity(ctx context.Context, actor, action, description string) {
	activity := &models.Activity{
		Actor:       actor,
		Action:      action,
		Description: description,
	}
	if err := s.activities.Create(ctx, activity); err != nil {
		s.logger.Error("Failed to record activity", logger.Field{Key: "error", Value: err.Error()})
	}
}

func (s *InventoryService) publish(routingKey string, payload interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishEvent(routingKey, payload); err != nil {
		s.logger.Warn("Failed to publish event", logger.Field{Key: "routing_key", Value: routingKey})
	}
}
