package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Number is a tracked phone number through its whole lifecycle:
// purchased, activated, optionally parked in safe custody, marked
// ready-to-sell, sold and finally ported out.
type Number struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Serial           int                `bson:"serial" json:"serial"`
	Mobile           string             `bson:"mobile" json:"mobile"`
	Sum              int                `bson:"sum" json:"sum"`
	Status           NumberStatus       `bson:"status" json:"status"`
	Category         Category           `bson:"category" json:"category"`
	PurchaseSource   string             `bson:"purchase_source" json:"purchase_source"`
	PurchasePrice    float64            `bson:"purchase_price" json:"purchase_price"`
	PurchaseDate     time.Time          `bson:"purchase_date" json:"purchase_date"`
	SalePrice        float64            `bson:"sale_price" json:"sale_price"`
	RTSDate          *time.Time         `bson:"rts_date" json:"rts_date"`
	Location         string             `bson:"location" json:"location"`
	LocationType     string             `bson:"location_type" json:"location_type"`
	Assignee         string             `bson:"assignee" json:"assignee"`
	Notes            string             `bson:"notes" json:"notes"`
	ActivationStatus SubStatus          `bson:"activation_status" json:"activation_status"`
	UploadStatus     SubStatus          `bson:"upload_status" json:"upload_status"`
	SafeCustodyDate  *time.Time         `bson:"safe_custody_date" json:"safe_custody_date"`
	COCPStartDate    *time.Time         `bson:"cocp_start_date" json:"cocp_start_date"`
	COCPEndDate      *time.Time         `bson:"cocp_end_date" json:"cocp_end_date"`
	CreatedBy        string             `bson:"created_by" json:"created_by"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}

type NumberStatus string

const (
	StatusRTS    NumberStatus = "RTS"
	StatusNonRTS NumberStatus = "Non-RTS"
)

type Category string

const (
	CategoryPrepaid  Category = "Prepaid"
	CategoryPostpaid Category = "Postpaid"
	CategoryCOCP     Category = "COCP"
)

// SubStatus tracks the activation and document-upload steps of a number.
type SubStatus string

const (
	SubStatusDone    SubStatus = "Done"
	SubStatusPending SubStatus = "Pending"
	SubStatusFail    SubStatus = "Fail"
)
