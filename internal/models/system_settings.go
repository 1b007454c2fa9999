package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SystemSettings represents system-wide runtime settings editable by admins
type SystemSettings struct {
	ID                  primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	NotificationGateway string             `bson:"notificationGateway" json:"notificationGateway"` // PUSH, WEBHOOK, MOCK
	DemoDurationDays    int                `bson:"demoDurationDays" json:"demoDurationDays"`
	CreatedAt           time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time          `bson:"updatedAt" json:"updatedAt"`
	UpdatedBy           string             `bson:"updatedBy" json:"updatedBy"`
}
