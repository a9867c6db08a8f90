package models

import "time"

// TurnRecord is the audit log entry for one conversation turn. Duplicate
// marks a turn whose user text repeats the session's previous turn, which
// usually means a client double-submitted.
type TurnRecord struct {
	ID         string    `json:"id" bson:"id"`
	SessionID  string    `json:"session_id" bson:"sessionId"`
	UserText   string    `json:"user_text" bson:"userText"`
	Intent     string    `json:"intent" bson:"intent"`
	Response   string    `json:"response" bson:"response"`
	ProductID  string    `json:"product_id,omitempty" bson:"productId,omitempty"`
	Confidence string    `json:"confidence,omitempty" bson:"confidence,omitempty"`
	Duplicate  bool      `json:"duplicate" bson:"duplicate"`
	CreatedAt  time.Time `json:"created_at" bson:"createdAt"`
}
