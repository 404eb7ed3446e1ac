package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Sale records a sold number. Once the buyer ports the number to another
// carrier, PortOutDate is set and the record is terminal.
type Sale struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Mobile        string             `bson:"mobile" json:"mobile"`
	Buyer         string             `bson:"buyer" json:"buyer"`
	SalePrice     float64            `bson:"sale_price" json:"sale_price"`
	SaleDate      time.Time          `bson:"sale_date" json:"sale_date"`
	PaymentStatus PaymentStatus      `bson:"payment_status" json:"payment_status"`
	PortOutStatus PortOutStatus      `bson:"portout_status" json:"portout_status"`
	PortOutDate   *time.Time         `bson:"portout_date" json:"portout_date"`
	CreatedBy     string             `bson:"created_by" json:"created_by"`
	CreatedAt     time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt     time.Time          `bson:"updated_at" json:"updated_at"`
}

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentDone    PaymentStatus = "Done"
)

type PortOutStatus string

const (
	PortOutPending PortOutStatus = "Pending"
	PortOutDone    PortOutStatus = "Done"
)
