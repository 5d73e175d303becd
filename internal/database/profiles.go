package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/AnshRaj112/serenify-advisor/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

func (s *MongoStore) CreateProfile(ctx context.Context, p *models.UserProfile) error {
	if _, err := s.db.Collection(ProfilesCollection).InsertOne(ctx, p); err != nil {
		return fmt.Errorf("insert profile: %w", err)
	}
	return nil
}

func (s *MongoStore) FindProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	var p models.UserProfile
	err := s.db.Collection(ProfilesCollection).FindOne(ctx, bson.M{"user_id": userID}).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return &p, nil
}

// UpdateProfile overwrites the editable fields of the profile owned by p.UserID.
func (s *MongoStore) UpdateProfile(ctx context.Context, p *models.UserProfile) error {
	res, err := s.db.Collection(ProfilesCollection).UpdateOne(ctx,
		bson.M{"user_id": p.UserID},
		bson.M{"$set": bson.M{
			"age":          p.Age,
			"goals":        p.Goals,
			"stress_level": p.StressLevel,
			"preferences":  p.Preferences,
			"updated_at":   p.UpdatedAt.UTC(),
		}},
	)
	if err != nil {
		return fmt.Errorf("update profile: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
