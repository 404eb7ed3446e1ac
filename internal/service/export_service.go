package service

import (
	"context"
	"errors"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/numtrack/numtrack/pkg/logger"
)

const exportDateLayout = "2006-01-02"

// Export row types carry the display labels the CSV headers use.

type numberExportRow struct {
	Serial           int     `csv:"S.No"`
	Mobile           string  `csv:"Mobile Number"`
	Sum              int     `csv:"Sum"`
	Status           string  `csv:"Status"`
	Category         string  `csv:"Category"`
	PurchaseSource   string  `csv:"Purchase Source"`
	PurchasePrice    float64 `csv:"Purchase Price"`
	PurchaseDate     string  `csv:"Purchase Date"`
	SalePrice        float64 `csv:"Sale Price"`
	RTSDate          string  `csv:"RTS Date"`
	Location         string  `csv:"Location"`
	Assignee         string  `csv:"Assignee"`
	ActivationStatus string  `csv:"Activation"`
	UploadStatus     string  `csv:"Upload"`
	SafeCustodyDate  string  `csv:"Safe Custody Date"`
	Notes            string  `csv:"Notes"`
}

type saleExportRow struct {
	Mobile        string  `csv:"Mobile Number"`
	Buyer         string  `csv:"Buyer"`
	SalePrice     float64 `csv:"Sale Price"`
	SaleDate      string  `csv:"Sale Date"`
	PaymentStatus string  `csv:"Payment Status"`
	PortOutStatus string  `csv:"Port-Out Status"`
	PortOutDate   string  `csv:"Port-Out Date"`
}

type purchaseExportRow struct {
	Mobile       string  `csv:"Mobile Number"`
	Vendor       string  `csv:"Vendor"`
	Price        float64 `csv:"Price"`
	PurchaseDate string  `csv:"Purchase Date"`
	Category     string  `csv:"Category"`
}

type dealerPurchaseExportRow struct {
	Mobile        string  `csv:"Mobile Number"`
	Dealer        string  `csv:"Dealer"`
	Price         float64 `csv:"Price"`
	PurchaseDate  string  `csv:"Purchase Date"`
	PaymentStatus string  `csv:"Payment Status"`
	PortOutStatus string  `csv:"Port-Out Status"`
}

type reminderExportRow struct {
	Mobile   string `csv:"Mobile Number"`
	Task     string `csv:"Task"`
	Assignee string `csv:"Assignee"`
	DueDate  string `csv:"Due Date"`
	Status   string `csv:"Status"`
}

// ExportService renders the inventory screens as CSV downloads.
type ExportService struct {
	numbers         NumberStore
	sales           SaleStore
	purchases       PurchaseStore
	dealerPurchases DealerPurchaseStore
	reminders       ReminderStore
	metrics         *MetricsCollector
	logger          logger.Logger
}

func NewExportService(
	numbers NumberStore,
	sales SaleStore,
	purchases PurchaseStore,
	dealerPurchases DealerPurchaseStore,
	reminders ReminderStore,
	metrics *MetricsCollector,
	log logger.Logger,
) *ExportService {
	return &ExportService{
		numbers:         numbers,
		sales:           sales,
		purchases:       purchases,
		dealerPurchases: dealerPurchases,
		reminders:       reminders,
		metrics:         metrics,
		logger:          log,
	}
}

// ExportNumbers renders the full number inventory as CSV bytes.
func (s *ExportService) ExportNumbers(ctx context.Context) ([]byte, error) {
	numbers, err := s.numbers.FindAll(ctx)
	if err != nil {
		return nil, errors.New("failed to load numbers")
	}

	rows := make([]*numberExportRow, 0, len(numbers))
	for _, n := range numbers {
		rows = append(rows, &numberExportRow{
			Serial:           n.Serial,
			Mobile:           n.Mobile,
			Sum:              n.Sum,
			Status:           string(n.Status),
			Category:         string(n.Category),
			PurchaseSource:   n.PurchaseSource,
			PurchasePrice:    n.PurchasePrice,
			PurchaseDate:     formatDate(&n.PurchaseDate),
			SalePrice:        n.SalePrice,
			RTSDate:          formatDate(n.RTSDate),
			Location:         n.Location,
			Assignee:         n.Assignee,
			ActivationStatus: string(n.ActivationStatus),
			UploadStatus:     string(n.UploadStatus),
			SafeCustodyDate:  formatDate(n.SafeCustodyDate),
			Notes:            n.Notes,
		})
	}

	return s.marshal("numbers", rows)
}

func (s *ExportService) ExportSales(ctx context.Context) ([]byte, error) {
	sales, err := s.sales.FindAll(ctx)
	if err != nil {
		return nil, errors.New("failed to load sales")
	}

	rows := make([]*saleExportRow, 0, len(sales))
	for _, sale := range sales {
		rows = append(rows, &saleExportRow{
			Mobile:        sale.Mobile,
			Buyer:         sale.Buyer,
			SalePrice:     sale.SalePrice,
			SaleDate:      formatDate(&sale.SaleDate),
			PaymentStatus: string(sale.PaymentStatus),
			PortOutStatus: string(sale.PortOutStatus),
			PortOutDate:   formatDate(sale.PortOutDate),
		})
	}

	return s.marshal("sales", rows)
}

func (s *ExportService) ExportPurchases(ctx context.Context) ([]byte, error) {
	purchases, err := s.purchases.FindAll(ctx)
	if err != nil {
		return nil, errors.New("failed to load purchases")
	}

	rows := make([]*purchaseExportRow, 0, len(purchases))
	for _, p := range purchases {
		rows = append(rows, &purchaseExportRow{
			Mobile:       p.Mobile,
			Vendor:       p.Vendor,
			Price:        p.Price,
			PurchaseDate: formatDate(&p.PurchaseDate),
			Category:     string(p.Category),
		})
	}

	return s.marshal("purchases", rows)
}

func (s *ExportService) ExportDealerPurchases(ctx context.Context) ([]byte, error) {
	purchases, err := s.dealerPurchases.FindAll(ctx)
	if err != nil {
		return nil, errors.New("failed to load dealer purchases")
	}

	rows := make([]*dealerPurchaseExportRow, 0, len(purchases))
	for _, p := range purchases {
		rows = append(rows, &dealerPurchaseExportRow{
			Mobile:        p.Mobile,
			Dealer:        p.Dealer,
			Price:         p.Price,
			PurchaseDate:  formatDate(&p.PurchaseDate),
			PaymentStatus: string(p.PaymentStatus),
			PortOutStatus: string(p.PortOutStatus),
		})
	}

	return s.marshal("dealer_purchases", rows)
}

func (s *ExportService) ExportReminders(ctx context.Context) ([]byte, error) {
	reminders, err := s.reminders.FindAll(ctx)
	if err != nil {
		return nil, errors.New("failed to load reminders")
	}

	rows := make([]*reminderExportRow, 0, len(reminders))
	for _, r := range reminders {
		rows = append(rows, &reminderExportRow{
			Mobile:   r.Mobile,
			Task:     r.Task,
			Assignee: r.Assignee,
			DueDate:  formatDate(&r.DueDate),
			Status:   string(r.Status),
		})
	}

	return s.marshal("reminders", rows)
}

func (s *ExportService) marshal(entity string, rows interface{}) ([]byte, error) {
	data, err := gocsv.MarshalBytes(rows)
	if err != nil {
		s.logger.Error("Failed to marshal CSV",
			logger.Field{Key: "entity", Value: entity},
			logger.Field{Key: "error", Value: err.Error()})
		return nil, errors.New("failed to render CSV")
	}

	s.metrics.IncrementExport(entity)

	return data, nil
}

// formatDate renders dates as date-only strings; nil and zero dates
// become empty cells.
func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(exportDateLayout)
}
