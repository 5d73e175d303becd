package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// QARecord is one answered question. Records are append-only.
type QARecord struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    string             `bson:"user_id" json:"user_id"`
	Username  string             `bson:"username" json:"username"`
	Question  string             `bson:"question" json:"question"`
	Answer    string             `bson:"answer" json:"answer"`
	Timestamp time.Time          `bson:"timestamp" json:"timestamp"`
}
