package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/AnshRaj112/serenify-advisor/internal/database"
	"github.com/AnshRaj112/serenify-advisor/internal/models"
	"github.com/AnshRaj112/serenify-advisor/pkg/utils"
)

const (
	MinAge = 13
	MaxAge = 120
)

// ProfileInput is the profile form as submitted.
type ProfileInput struct {
	Age         string
	Goals       string
	StressLevel []string
	Therapy     bool
	Meditation  bool
}

type ProfileService struct {
	profiles ProfileStore
	logger   *slog.Logger
	now      func() time.Time
}

func NewProfileService(profiles ProfileStore, logger *slog.Logger) *ProfileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProfileService{profiles: profiles, logger: logger, now: time.Now}
}

// Profile returns the stored profile, or a default one when none exists yet.
func (s *ProfileService) Profile(ctx context.Context, id models.Identity) (*models.UserProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	p, err := s.profiles.FindProfile(ctx, id.UserID)
	if errors.Is(err, database.ErrNotFound) {
		return models.NewProfile(id.UserID, id.Username, s.now().UTC()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("find profile: %w", err)
	}
	return p, nil
}

// UpdateProfile validates in and replaces the editable profile fields.
func (s *ProfileService) UpdateProfile(ctx context.Context, id models.Identity, in ProfileInput) (*models.UserProfile, error) {
	age, err := ParseAge(in.Age)
	if err != nil {
		return nil, err
	}
	stress, err := ParseStressLevels(in.StressLevel)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	now := s.now().UTC()
	p := &models.UserProfile{
		UserID:      id.UserID,
		Username:    id.Username,
		Age:         age,
		Goals:       ParseGoals(in.Goals),
		StressLevel: stress,
		Preferences: models.Preferences{Therapy: in.Therapy, Meditation: in.Meditation},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.profiles.UpdateProfile(ctx, p)
	if errors.Is(err, database.ErrNotFound) {
		// accounts that predate profile creation get one on first save
		err = s.profiles.CreateProfile(ctx, p)
	}
	if err != nil {
		return nil, fmt.Errorf("update profile: %w", err)
	}

	s.logger.InfoContext(ctx, "profile updated", "user_id", id.UserID)
	return p, nil
}

// ParseAge accepts an empty string (no age) or a whole number in 13..120.
func ParseAge(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	age, err := strconv.Atoi(raw)
	if err != nil {
		return nil, &utils.ValidationError{Field: "age", Message: "Age must be a whole number"}
	}
	if age < MinAge || age > MaxAge {
		return nil, &utils.ValidationError{
			Field:   "age",
			Message: fmt.Sprintf("Age must be between %d and %d", MinAge, MaxAge),
		}
	}
	return &age, nil
}

// ParseGoals splits one goal per line, trimming and dropping blanks.
func ParseGoals(raw string) []string {
	goals := []string{}
	for _, line := range strings.Split(raw, "\n") {
		line = utils.SanitizeInput(line)
		if line != "" {
			goals = append(goals, line)
		}
	}
	return goals
}

// ParseStressLevels requires at least one known tag and returns them
// de-duplicated in canonical order.
func ParseStressLevels(raw []string) ([]string, error) {
	if len(raw) == 0 {
		return nil, &utils.ValidationError{Field: "stress_level", Message: "Please select at least one stress level"}
	}
	seen := make(map[string]bool, len(raw))
	for _, tag := range raw {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if !isStressLevel(tag) {
			return nil, &utils.ValidationError{Field: "stress_level", Message: "Invalid stress level: " + utils.SanitizeInput(tag)}
		}
		seen[tag] = true
	}
	out := make([]string, 0, len(seen))
	for _, tag := range models.StressLevels {
		if seen[tag] {
			out = append(out, tag)
		}
	}
	return out, nil
}

func isStressLevel(tag string) bool {
	for _, s := range models.StressLevels {
		if s == tag {
			return true
		}
	}
	return false
}
