package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AnshRaj112/serenify-advisor/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// CreateUser inserts u and returns its hex id.
func (s *MongoStore) CreateUser(ctx context.Context, u *models.User) (string, error) {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	_, err := s.db.Collection(UsersCollection).InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return "", ErrDuplicateUsername
	}
	if err != nil {
		return "", fmt.Errorf("insert user: %w", err)
	}
	return u.ID.Hex(), nil
}

func (s *MongoStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"username": username})
}

// FindUserByID looks a user up by hex id. Malformed ids are reported as not found.
func (s *MongoStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.findUser(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	err := s.db.Collection(UsersCollection).FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return &u, nil
}

// TouchLastLogin stamps the user's last_login.
func (s *MongoStore) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := s.db.Collection(UsersCollection).UpdateOne(ctx,
		bson.M{"_id": oid},
		bson.M{"$set": bson.M{"last_login": at.UTC()}},
	)
	if err != nil {
		return fmt.Errorf("update last_login: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
