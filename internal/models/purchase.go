package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Purchase is an acquisition record. Adding one also synthesizes a
// Non-RTS Number for the same mobile.
type Purchase struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Mobile       string             `bson:"mobile" json:"mobile"`
	Vendor       string             `bson:"vendor" json:"vendor"`
	Price        float64            `bson:"price" json:"price"`
	PurchaseDate time.Time          `bson:"purchase_date" json:"purchase_date"`
	Category     Category           `bson:"category" json:"category"`
	CreatedBy    string             `bson:"created_by" json:"created_by"`
	CreatedAt    time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time          `bson:"updated_at" json:"updated_at"`
}

// DealerPurchase is a bulk acquisition from a dealer, settled separately,
// with its own payment and port-in tracking.
type DealerPurchase struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Mobile        string             `bson:"mobile" json:"mobile"`
	Dealer        string             `bson:"dealer" json:"dealer"`
	Price         float64            `bson:"price" json:"price"`
	PurchaseDate  time.Time          `bson:"purchase_date" json:"purchase_date"`
	PaymentStatus PaymentStatus      `bson:"payment_status" json:"payment_status"`
	PortOutStatus PortOutStatus      `bson:"portout_status" json:"portout_status"`
	CreatedBy     string             `bson:"created_by" json:"created_by"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}
