package services

import (
	"fmt"
	"strings"

	"github.com/AnshRaj112/serenify-advisor/internal/models"
)

const noContext = "No additional context available."

// BuildUserContext summarises the profile for the model. A nil profile is
// treated as empty.
func BuildUserContext(p *models.UserProfile) string {
	if p == nil {
		return noContext
	}

	var parts []string
	if p.Age != nil && *p.Age > 0 {
		parts = append(parts, fmt.Sprintf("Age: %d.", *p.Age))
	}
	if len(p.Goals) > 0 {
		parts = append(parts, fmt.Sprintf("Mental Health Goals: %s.", strings.Join(p.Goals, ", ")))
	}
	if len(p.StressLevel) > 0 {
		parts = append(parts, fmt.Sprintf("Stress Level: %s.", strings.Join(p.StressLevel, ", ")))
	}
	if p.Preferences.Therapy {
		parts = append(parts, "Attends therapy or counseling.")
	}
	if p.Preferences.Meditation {
		parts = append(parts, "Practices meditation.")
	}

	if len(parts) == 0 {
		return noContext
	}
	return strings.Join(parts, " ")
}

// BuildPrompt embeds the user context and question in the advisor
// instructions.
func BuildPrompt(userContext, question string) string {
	return "You are a compassionate and professional mental health advisor. " +
		"Provide supportive, evidence-based guidance while being empathetic and non-judgmental. " +
		"Always recommend professional help for serious mental health concerns.\n\n" +
		"User context: " + userContext + "\n\n" +
		"Question: \"" + question + "\"\n\n" +
		"Please provide a thoughtful, empathetic response with actionable advice. " +
		"Keep your response focused and helpful, around 150-200 words."
}
