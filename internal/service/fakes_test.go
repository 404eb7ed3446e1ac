package service

import (
	"context"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/numtrack/numtrack/internal/models"
	"github.com/numtrack/numtrack/pkg/logger"
)

// In-memory store fakes. UpdateFields applies the same bson.M documents
// the mongo repositories would, so the services are tested against the
// exact field sets they write.

type fakeNumberStore struct {
	mu      sync.Mutex
	numbers map[primitive.ObjectID]*models.Number
	serial  int
}

func newFakeNumberStore() *fakeNumberStore {
	return &fakeNumberStore{numbers: make(map[primitive.ObjectID]*models.Number)}
}

func (f *fakeNumberStore) Create(_ context.Context, number *models.Number) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	number.ID = primitive.NewObjectID()
	number.CreatedAt = time.Now()
	number.UpdatedAt = number.CreatedAt
	copied := *number
	f.numbers[number.ID] = &copied
	if number.Serial > f.serial {
		f.serial = number.Serial
	}
	return nil
}

func (f *fakeNumberStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Number, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.numbers[id]
	if !ok {
		return nil, nil
	}
	copied := *n
	return &copied, nil
}

func (f *fakeNumberStore) FindByMobile(_ context.Context, mobile string) (*models.Number, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.numbers {
		if n.Mobile == mobile {
			copied := *n
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeNumberStore) FindAll(_ context.Context) ([]*models.Number, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Number, 0, len(f.numbers))
	for _, n := range f.numbers {
		copied := *n
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeNumberStore) FindScheduled(_ context.Context) ([]*models.Number, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Number, 0)
	for _, n := range f.numbers {
		if n.Status == models.StatusNonRTS && n.RTSDate != nil {
			copied := *n
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeNumberStore) UpdateFields(_ context.Context, id primitive.ObjectID, fields bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, ok := f.numbers[id]
	if !ok {
		return models.ErrRecordNotFound
	}
	for key, value := range fields {
		switch key {
		case "status":
			n.Status = value.(models.NumberStatus)
		case "rts_date":
			n.RTSDate = asTimePtr(value)
		case "notes":
			n.Notes = value.(string)
		case "activation_status":
			n.ActivationStatus = value.(models.SubStatus)
		case "upload_status":
			n.UploadStatus = value.(models.SubStatus)
		case "sale_price":
			n.SalePrice = value.(float64)
		case "safe_custody_date":
			n.SafeCustodyDate = asTimePtr(value)
		case "assignee":
			n.Assignee = value.(string)
		case "location":
			n.Location = value.(string)
		case "location_type":
			n.LocationType = value.(string)
		case "cocp_start_date":
			n.COCPStartDate = asTimePtr(value)
		case "cocp_end_date":
			n.COCPEndDate = asTimePtr(value)
		}
	}
	n.UpdatedAt = time.Now()
	return nil
}

func (f *fakeNumberStore) NextSerial(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.serial + 1, nil
}

func (f *fakeNumberStore) CountByStatus(_ context.Context, status models.NumberStatus) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.numbers {
		if n.Status == status {
			count++
		}
	}
	return count, nil
}

func (f *fakeNumberStore) CountByCategory(_ context.Context) (map[string]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int64)
	for _, n := range f.numbers {
		out[string(n.Category)]++
	}
	return out, nil
}

func asTimePtr(value interface{}) *time.Time {
	switch v := value.(type) {
	case nil:
		return nil
	case *time.Time:
		return v
	case time.Time:
		return &v
	default:
		return nil
	}
}

type fakeSaleStore struct {
	mu    sync.Mutex
	sales map[primitive.ObjectID]*models.Sale
}

func newFakeSaleStore() *fakeSaleStore {
	return &fakeSaleStore{sales: make(map[primitive.ObjectID]*models.Sale)}
}

func (f *fakeSaleStore) Create(_ context.Context, sale *models.Sale) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sale.ID = primitive.NewObjectID()
	sale.CreatedAt = time.Now()
	sale.UpdatedAt = sale.CreatedAt
	copied := *sale
	f.sales[sale.ID] = &copied
	return nil
}

func (f *fakeSaleStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	sale, ok := f.sales[id]
	if !ok {
		return nil, nil
	}
	copied := *sale
	return &copied, nil
}

func (f *fakeSaleStore) FindAll(_ context.Context) ([]*models.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Sale, 0, len(f.sales))
	for _, sale := range f.sales {
		copied := *sale
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeSaleStore) FindPortedOut(_ context.Context) ([]*models.Sale, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Sale, 0)
	for _, sale := range f.sales {
		if sale.PortOutDate != nil {
			copied := *sale
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (f *fakeSaleStore) UpdateFields(_ context.Context, id primitive.ObjectID, fields bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	sale, ok := f.sales[id]
	if !ok {
		return models.ErrRecordNotFound
	}
	for key, value := range fields {
		switch key {
		case "payment_status":
			sale.PaymentStatus = value.(models.PaymentStatus)
		case "portout_status":
			sale.PortOutStatus = value.(models.PortOutStatus)
		case "portout_date":
			sale.PortOutDate = asTimePtr(value)
		}
	}
	sale.UpdatedAt = time.Now()
	return nil
}

type fakePurchaseStore struct {
	mu        sync.Mutex
	purchases map[primitive.ObjectID]*models.Purchase
}

func newFakePurchaseStore() *fakePurchaseStore {
	return &fakePurchaseStore{purchases: make(map[primitive.ObjectID]*models.Purchase)}
}

func (f *fakePurchaseStore) Create(_ context.Context, purchase *models.Purchase) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	purchase.ID = primitive.NewObjectID()
	purchase.CreatedAt = time.Now()
	copied := *purchase
	f.purchases[purchase.ID] = &copied
	return nil
}

func (f *fakePurchaseStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Purchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.purchases[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (f *fakePurchaseStore) FindAll(_ context.Context) ([]*models.Purchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Purchase, 0, len(f.purchases))
	for _, p := range f.purchases {
		copied := *p
		out = append(out, &copied)
	}
	return out, nil
}

type fakeDealerPurchaseStore struct {
	mu        sync.Mutex
	purchases map[primitive.ObjectID]*models.DealerPurchase
}

func newFakeDealerPurchaseStore() *fakeDealerPurchaseStore {
	return &fakeDealerPurchaseStore{purchases: make(map[primitive.ObjectID]*models.DealerPurchase)}
}

func (f *fakeDealerPurchaseStore) Create(_ context.Context, purchase *models.DealerPurchase) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	purchase.ID = primitive.NewObjectID()
	purchase.CreatedAt = time.Now()
	copied := *purchase
	f.purchases[purchase.ID] = &copied
	return nil
}

func (f *fakeDealerPurchaseStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.DealerPurchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.purchases[id]
	if !ok {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (f *fakeDealerPurchaseStore) FindAll(_ context.Context) ([]*models.DealerPurchase, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.DealerPurchase, 0, len(f.purchases))
	for _, p := range f.purchases {
		copied := *p
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeDealerPurchaseStore) UpdateFields(_ context.Context, id primitive.ObjectID, fields bson.M) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.purchases[id]
	if !ok {
		return models.ErrRecordNotFound
	}
	for key, value := range fields {
		switch key {
		case "dealer":
			p.Dealer = value.(string)
		case "price":
			p.Price = value.(float64)
		case "payment_status":
			p.PaymentStatus = value.(models.PaymentStatus)
		case "portout_status":
			p.PortOutStatus = value.(models.PortOutStatus)
		}
	}
	p.UpdatedAt = time.Now()
	return nil
}

type fakeReminderStore struct {
	mu        sync.Mutex
	reminders map[primitive.ObjectID]*models.Reminder
}

func newFakeReminderStore() *fakeReminderStore {
	return &fakeReminderStore{reminders: make(map[primitive.ObjectID]*models.Reminder)}
}

func (f *fakeReminderStore) Create(_ context.Context, reminder *models.Reminder) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	reminder.ID = primitive.NewObjectID()
	reminder.CreatedAt = time.Now()
	copied := *reminder
	f.reminders[reminder.ID] = &copied
	return nil
}

func (f *fakeReminderStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reminders[id]
	if !ok {
		return nil, nil
	}
	copied := *r
	return &copied, nil
}

func (f *fakeReminderStore) FindAll(_ context.Context) ([]*models.Reminder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Reminder, 0, len(f.reminders))
	for _, r := range f.reminders {
		copied := *r
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeReminderStore) UpdateStatus(_ context.Context, id primitive.ObjectID, status models.ReminderStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reminders[id]
	if !ok {
		return models.ErrRecordNotFound
	}
	r.Status = status
	r.UpdatedAt = time.Now()
	return nil
}

type fakeActivityStore struct {
	mu         sync.Mutex
	activities []*models.Activity
}

func newFakeActivityStore() *fakeActivityStore {
	return &fakeActivityStore{}
}

func (f *fakeActivityStore) Create(_ context.Context, activity *models.Activity) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	activity.ID = primitive.NewObjectID()
	activity.CreatedAt = time.Now()
	copied := *activity
	f.activities = append(f.activities, &copied)
	return nil
}

func (f *fakeActivityStore) FindRecent(_ context.Context, limit int64) ([]*models.Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Activity, 0, len(f.activities))
	for i := len(f.activities) - 1; i >= 0 && int64(len(out)) < limit; i-- {
		copied := *f.activities[i]
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeActivityStore) all() []*models.Activity {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.Activity, len(f.activities))
	copy(out, f.activities)
	return out
}

type fakeUserStore struct {
	mu       sync.Mutex
	users    map[primitive.ObjectID]*models.User
	sessions map[string]*models.Session
	clock    func() time.Time
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		users:    make(map[primitive.ObjectID]*models.User),
		sessions: make(map[string]*models.Session),
		clock:    time.Now,
	}
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now()
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserStore) FindUserByEmail(_ context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) FindUserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserStore) FindAllUsers(_ context.Context) ([]*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]*models.User, 0, len(f.users))
	for _, u := range f.users {
		copied := *u
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeUserStore) CountUsers(_ context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.users)), nil
}

func (f *fakeUserStore) UpdateProfile(_ context.Context, id primitive.ObjectID, displayName string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.ErrUserNotFound
	}
	u.DisplayName = displayName
	u.UpdatedAt = time.Now()
	return nil
}

func (f *fakeUserStore) UpdateLastLogin(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return models.ErrUserNotFound
	}
	now := time.Now()
	u.LastLoginAt = &now
	return nil
}

func (f *fakeUserStore) CreateSession(_ context.Context, session *models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	session.ID = primitive.NewObjectID()
	session.CreatedAt = time.Now()
	copied := *session
	f.sessions[session.Token] = &copied
	return nil
}

func (f *fakeUserStore) FindSessionByToken(_ context.Context, token string) (*models.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[token]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (f *fakeUserStore) TouchSession(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.sessions[token]
	if !ok {
		return models.ErrRecordNotFound
	}
	s.LastSeenAt = f.clock()
	return nil
}

func (f *fakeUserStore) DeleteSessionByToken(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, token)
	return nil
}

func (f *fakeUserStore) DeleteUserSessions(_ context.Context, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for token, s := range f.sessions {
		if s.UserID == userID {
			delete(f.sessions, token)
		}
	}
	return nil
}

type fakePublisher struct {
	mu     sync.Mutex
	events []string
}

func (f *fakePublisher) PublishEvent(routingKey string, _ interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, routingKey)
	return nil
}

func (f *fakePublisher) published() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.events))
	copy(out, f.events)
	return out
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...logger.Field)                 {}
func (nopLogger) Info(string, ...logger.Field)                  {}
func (nopLogger) Warn(string, ...logger.Field)                  {}
func (nopLogger) Error(string, ...logger.Field)                 {}
func (nopLogger) Fatal(string, ...logger.Field)                 {}
func (n nopLogger) WithField(string, interface{}) logger.Logger { return n }
func (n nopLogger) WithFields(logger.Fields) logger.Logger      { return n }
