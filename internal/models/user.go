package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SubscriptionStatus is the account state that drives the demo/subscription gate
type SubscriptionStatus string

const (
	SubscriptionDemo          SubscriptionStatus = "demo"
	SubscriptionSubscribed    SubscriptionStatus = "subscribed"
	SubscriptionNotSubscribed SubscriptionStatus = "not_subscribed"
)

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an app user (player) or an administrator
type User struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Email              string             `bson:"email" json:"email"`
	Name               string             `bson:"name" json:"name"`
	Password           string             `bson:"password" json:"-"` // bcrypt hash
	Role               string             `bson:"role" json:"role"`
	SubscriptionStatus SubscriptionStatus `bson:"subscriptionStatus" json:"subscriptionStatus"`
	DemoExpiresAt      *time.Time         `bson:"demoExpiresAt,omitempty" json:"demoExpiresAt,omitempty"`
	SubscribedAt       *time.Time         `bson:"subscribedAt,omitempty" json:"subscribedAt,omitempty"`
	LastActivity       time.Time          `bson:"lastActivity,omitempty" json:"lastActivity,omitempty"`
	CreatedAt          time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// IsAdmin reports whether the user has the admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
