package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/AnshRaj112/serenify-advisor/internal/database"
	"github.com/AnshRaj112/serenify-advisor/internal/models"
	"github.com/AnshRaj112/serenify-advisor/pkg/utils"
)

const storeTimeout = 5 * time.Second

// AuthService registers accounts and maps signed session cookies to
// identities.
type AuthService struct {
	users    UserStore
	profiles ProfileStore
	sessions SessionStore
	cookies  *CookieCodec
	logger   *slog.Logger
	now      func() time.Time
}

func NewAuthService(users UserStore, profiles ProfileStore, sessions SessionStore, cookies *CookieCodec, logger *slog.Logger) *AuthService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		users:    users,
		profiles: profiles,
		sessions: sessions,
		cookies:  cookies,
		logger:   logger,
		now:      time.Now,
	}
}

// Register creates an active user and its default profile. Bad input is
// reported as *utils.ValidationError; a taken name as ErrUsernameTaken.
func (s *AuthService) Register(ctx context.Context, username, password string) (models.Identity, error) {
	username = utils.NormalizeUsername(username)
	if err := utils.ValidateUsername(username); err != nil {
		return models.Identity{}, err
	}
	if ok, reason := utils.ValidatePassword(password); !ok {
		return models.Identity{}, &utils.ValidationError{Field: "password", Message: reason}
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	_, err := s.users.FindUserByUsername(ctx, username)
	if err == nil {
		return models.Identity{}, ErrUsernameTaken
	}
	if !errors.Is(err, database.ErrNotFound) {
		return models.Identity{}, fmt.Errorf("check username: %w", err)
	}

	hashed, err := utils.HashPassword(password)
	if err != nil {
		return models.Identity{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	userID, err := s.users.CreateUser(ctx, &models.User{
		Username:  username,
		Password:  hashed,
		IsActive:  true,
		CreatedAt: now,
	})
	if errors.Is(err, database.ErrDuplicateUsername) {
		return models.Identity{}, ErrUsernameTaken
	}
	if err != nil {
		return models.Identity{}, fmt.Errorf("create user: %w", err)
	}

	if err := s.profiles.CreateProfile(ctx, models.NewProfile(userID, username, now)); err != nil {
		return models.Identity{}, fmt.Errorf("create profile: %w", err)
	}

	s.logger.InfoContext(ctx, "user registered", "user_id", userID, "username", username)
	return models.Identity{UserID: userID, Username: username}, nil
}

// Login checks credentials and opens a session. It returns the signed cookie
// value for the new session. Unknown users, inactive accounts and wrong
// passwords all yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, username, password string) (models.Identity, string, error) {
	username = utils.NormalizeUsername(username)
	if username == "" || password == "" {
		return models.Identity{}, "", ErrInvalidCredentials
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	user, err := s.users.FindUserByUsername(ctx, username)
	if errors.Is(err, database.ErrNotFound) {
		return models.Identity{}, "", ErrInvalidCredentials
	}
	if err != nil {
		return models.Identity{}, "", fmt.Errorf("find user: %w", err)
	}
	if !user.IsActive {
		return models.Identity{}, "", ErrInvalidCredentials
	}

	valid, err := utils.VerifyPassword(password, user.Password)
	if err != nil {
		s.logger.ErrorContext(ctx, "stored password hash unreadable", "user_id", user.ID.Hex(), "error", err)
	}
	if err != nil || !valid {
		return models.Identity{}, "", ErrInvalidCredentials
	}

	userID := user.ID.Hex()
	if err := s.users.TouchLastLogin(ctx, userID, s.now()); err != nil {
		s.logger.WarnContext(ctx, "failed to update last login", "user_id", userID, "error", err)
	}

	token, err := s.sessions.Create(ctx, userID)
	if err != nil {
		return models.Identity{}, "", fmt.Errorf("create session: %w", err)
	}
	cookie, err := s.cookies.Encode(token)
	if err != nil {
		return models.Identity{}, "", err
	}

	return models.Identity{UserID: userID, Username: user.Username}, cookie, nil
}

// Logout ends the session behind cookie. Invalid cookies are ignored.
func (s *AuthService) Logout(ctx context.Context, cookie string) error {
	token, err := s.cookies.Decode(cookie)
	if err != nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	if err := s.sessions.Delete(ctx, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// Resolve maps a cookie value to the identity of a live, active user. Every
// failure (bad signature, expired session, missing user, store error) resolves
// to anonymous.
func (s *AuthService) Resolve(ctx context.Context, cookie string) (models.Identity, bool) {
	if cookie == "" {
		return models.Identity{}, false
	}
	token, err := s.cookies.Decode(cookie)
	if err != nil {
		return models.Identity{}, false
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	userID, err := s.sessions.Lookup(ctx, token)
	if err != nil {
		if !errors.Is(err, ErrSessionNotFound) {
			s.logger.ErrorContext(ctx, "session lookup failed", "kind", errorKind(err), "error", err)
		}
		return models.Identity{}, false
	}

	user, err := s.users.FindUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			s.logger.ErrorContext(ctx, "error loading user", "user_id", userID, "kind", errorKind(err), "error", err)
		}
		return models.Identity{}, false
	}
	if !user.IsActive {
		return models.Identity{}, false
	}

	return models.Identity{UserID: userID, Username: user.Username}, true
}
