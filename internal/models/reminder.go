package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Reminder struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Mobile    string             `bson:"mobile" json:"mobile"`
	Task      string             `bson:"task" json:"task"`
	Assignee  string             `bson:"assignee" json:"assignee"`
	DueDate   time.Time          `bson:"due_date" json:"due_date"`
	Status    ReminderStatus     `bson:"status" json:"status"`
	CreatedBy string             `bson:"created_by" json:"created_by"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

type ReminderStatus string

const (
	ReminderUploadPending ReminderStatus = "Upload Pending"
	ReminderActDone       ReminderStatus = "ACT Done"
)
