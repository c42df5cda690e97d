package models

import "time"

// Connection stores the account-level link to an external system. Its presence
// (and Active flag) decides whether the sync dispatcher attempts that system
// or records a skipped outcome.
type Connection struct {
	ID          string    `bson:"id" json:"id"`
	System      string    `bson:"system" json:"system"` // "calendar" | "crm"
	AccountID   string    `bson:"accountId" json:"accountId"`
	Token       []byte    `bson:"token,omitempty" json:"-"` // serialized oauth2 token / API key material
	Active      bool      `bson:"active" json:"active"`
	ConnectedAt time.Time `bson:"connectedAt" json:"connectedAt"`
}
