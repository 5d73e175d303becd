package services

import (
	"context"
	"time"

	"github.com/AnshRaj112/serenify-advisor/internal/models"
)

// UserStore persists accounts. Implementations return database.ErrNotFound
// and database.ErrDuplicateUsername.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) (string, error)
	FindUserByUsername(ctx context.Context, username string) (*models.User, error)
	FindUserByID(ctx context.Context, id string) (*models.User, error)
	TouchLastLogin(ctx context.Context, id string, at time.Time) error
}

// ProfileStore persists one UserProfile per user.
type ProfileStore interface {
	CreateProfile(ctx context.Context, p *models.UserProfile) error
	FindProfile(ctx context.Context, userID string) (*models.UserProfile, error)
	UpdateProfile(ctx context.Context, p *models.UserProfile) error
}

// QAStore persists answered questions.
type QAStore interface {
	QACounter
	InsertQA(ctx context.Context, rec *models.QARecord) error
	RecentQA(ctx context.Context, userID string, limit int64) ([]models.QARecord, error)
}

// QACounter is the slice of QAStore the rate limiter needs.
type QACounter interface {
	CountQASince(ctx context.Context, userID string, since time.Time) (int64, error)
}
