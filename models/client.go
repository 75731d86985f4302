package models

import "time"

// Client is the person who books services. Only the fields the scheduling
// side needs are modelled here; account management lives elsewhere.
type Client struct {
	ID        string    `bson:"_id" json:"id"`
	Name      string    `bson:"name" json:"name"`
	Email     string    `bson:"email" json:"email,omitempty"`
	Phone     string    `bson:"phone" json:"phone,omitempty"`
	FCMToken  string    `bson:"fcm_token,omitempty" json:"-"`
	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
