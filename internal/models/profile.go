package models

import "time"

// Stress level tags accepted on a profile.
const (
	StressLow    = "low"
	StressMedium = "medium"
	StressHigh   = "high"
)

// StressLevels lists the valid tags in display order.
var StressLevels = []string{StressLow, StressMedium, StressHigh}

// Preferences records self-reported care practices.
type Preferences struct {
	Therapy    bool `bson:"therapy" json:"therapy"`
	Meditation bool `bson:"meditation" json:"meditation"`
}

// UserProfile is stored in the user_data collection, one per user.
type UserProfile struct {
	UserID      string      `bson:"user_id" json:"user_id"`
	Username    string      `bson:"username" json:"username"`
	Age         *int        `bson:"age" json:"age,omitempty"`
	Goals       []string    `bson:"goals" json:"goals"`
	StressLevel []string    `bson:"stress_level" json:"stress_level"`
	Preferences Preferences `bson:"preferences" json:"preferences"`
	CreatedAt   time.Time   `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time   `bson:"updated_at" json:"updated_at"`
}

// NewProfile returns the default profile created at registration.
func NewProfile(userID, username string, now time.Time) *UserProfile {
	return &UserProfile{
		UserID:      userID,
		Username:    username,
		Goals:       []string{},
		StressLevel: []string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// HasStress reports whether tag is among the profile's stress levels.
func (p *UserProfile) HasStress(tag string) bool {
	for _, s := range p.StressLevel {
		if s == tag {
			return true
		}
	}
	return false
}
