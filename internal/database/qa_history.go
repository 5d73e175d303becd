package database

import (
	"context"
	"fmt"
	"time"

	"github.com/AnshRaj112/serenify-advisor/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (s *MongoStore) InsertQA(ctx context.Context, rec *models.QARecord) error {
	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	if _, err := s.db.Collection(QACollection).InsertOne(ctx, rec); err != nil {
		return fmt.Errorf("insert qa record: %w", err)
	}
	return nil
}

// CountQASince counts the user's records with timestamp >= since.
func (s *MongoStore) CountQASince(ctx context.Context, userID string, since time.Time) (int64, error) {
	n, err := s.db.Collection(QACollection).CountDocuments(ctx, bson.M{
		"user_id":   userID,
		"timestamp": bson.M{"$gte": since.UTC()},
	})
	if err != nil {
		return 0, fmt.Errorf("count qa records: %w", err)
	}
	return n, nil
}

// RecentQA returns up to limit records for the user, newest first.
func (s *MongoStore) RecentQA(ctx context.Context, userID string, limit int64) ([]models.QARecord, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}}).
		SetLimit(limit)

	cur, err := s.db.Collection(QACollection).Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find qa records: %w", err)
	}
	defer cur.Close(ctx)

	records := make([]models.QARecord, 0, limit)
	if err := cur.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode qa records: %w", err)
	}
	return records, nil
}
