package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/AnshRaj112/serenify-advisor/internal/database"
	"github.com/AnshRaj112/serenify-advisor/internal/models"
	"github.com/AnshRaj112/serenify-advisor/pkg/utils"
)

// Question outcomes, also used as metric label values.
const (
	OutcomeAnswered      = "answered"
	OutcomeRateLimited   = "rate_limited"
	OutcomeNotConfigured = "not_configured"
	OutcomeUnavailable   = "unavailable"
)

const (
	MinQuestionLength = 10
	MaxQuestionLength = 1000

	DefaultAITimeout = 30 * time.Second
	RecentHistoryLen = 5
)

// AdvisorConfig carries the AI settings the advisor is built with.
type AdvisorConfig struct {
	APIKey    string
	Model     string
	Timeout   time.Duration
	AskLimit  int
	AskWindow time.Duration
}

// OutcomeRecorder counts question outcomes.
type OutcomeRecorder interface {
	QuestionOutcome(outcome string)
}

// Result is what a question produced. Answer is set only when Outcome is
// OutcomeAnswered. Crisis marks questions with self-harm language, whatever
// the outcome.
type Result struct {
	Outcome  string
	Question string
	Answer   string
	Crisis   bool
}

type Advisor struct {
	cfg       AdvisorConfig
	limiter   *RateLimiter
	profiles  ProfileStore
	qa        QAStore
	generator Generator
	logger    *slog.Logger
	outcomes  OutcomeRecorder
	now       func() time.Time
}

// NewAdvisor wires the question flow. generator may be nil when no API key is
// configured; questions then end with OutcomeNotConfigured.
func NewAdvisor(cfg AdvisorConfig, limiter *RateLimiter, profiles ProfileStore, qa QAStore, generator Generator, logger *slog.Logger, outcomes OutcomeRecorder) *Advisor {
	if cfg.Model == "" {
		cfg.Model = DefaultGeminiModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultAITimeout
	}
	if cfg.AskLimit <= 0 {
		cfg.AskLimit = DefaultAskLimit
	}
	if cfg.AskWindow <= 0 {
		cfg.AskWindow = DefaultAskWindow
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Advisor{
		cfg:       cfg,
		limiter:   limiter,
		profiles:  profiles,
		qa:        qa,
		generator: generator,
		logger:    logger,
		outcomes:  outcomes,
		now:       time.Now,
	}
}

// ValidateQuestion checks the form rules for a raw question.
func ValidateQuestion(raw string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(raw))
	switch {
	case n == 0:
		return &utils.ValidationError{Field: "question", Message: "Please enter a question"}
	case n < MinQuestionLength:
		return &utils.ValidationError{Field: "question", Message: "Question must be at least 10 characters"}
	case n > MaxQuestionLength:
		return &utils.ValidationError{Field: "question", Message: "Question must be at most 1000 characters"}
	}
	return nil
}

// Ask runs one question for id: rate limit, sanitize, build the prompt from
// the profile, call the model and store the answer.
func (a *Advisor) Ask(ctx context.Context, id models.Identity, raw string) Result {
	res := a.ask(ctx, id, raw)
	if screen := ScreenQuestion(raw); screen.SelfHarm {
		res.Crisis = true
		a.logger.WarnContext(ctx, "self-harm language in question",
			"user_id", id.UserID,
			"matched", screen.Matched,
		)
	}
	if a.outcomes != nil {
		a.outcomes.QuestionOutcome(res.Outcome)
	}
	return res
}

func (a *Advisor) ask(ctx context.Context, id models.Identity, raw string) Result {
	if !a.limiter.Allow(ctx, id.UserID, a.cfg.AskLimit, a.cfg.AskWindow) {
		a.logger.InfoContext(ctx, "question rate limited", "user_id", id.UserID)
		return Result{Outcome: OutcomeRateLimited}
	}

	question := utils.SanitizeInput(raw)
	prompt := BuildPrompt(BuildUserContext(a.loadProfile(ctx, id.UserID)), question)

	if a.cfg.APIKey == "" || a.generator == nil {
		a.logger.ErrorContext(ctx, "gemini request error: missing API key")
		return Result{Outcome: OutcomeNotConfigured, Question: question}
	}

	genCtx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	answer, err := a.generator.Generate(genCtx, prompt)
	cancel()
	if err == nil {
		answer = strings.TrimSpace(answer)
		if answer == "" {
			err = ErrEmptyResponse
		}
	}
	if err != nil {
		a.logger.ErrorContext(ctx, "gemini request error",
			"user_id", id.UserID,
			"model", a.cfg.Model,
			"kind", errorKind(err),
			"error", err,
		)
		return Result{Outcome: OutcomeUnavailable, Question: question}
	}

	storeCtx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	rec := &models.QARecord{
		UserID:    id.UserID,
		Username:  id.Username,
		Question:  question,
		Answer:    answer,
		Timestamp: a.now().UTC(),
	}
	if err := a.qa.InsertQA(storeCtx, rec); err != nil {
		a.logger.ErrorContext(ctx, "failed to save answered question",
			"user_id", id.UserID,
			"kind", errorKind(err),
			"error", err,
		)
	}

	return Result{Outcome: OutcomeAnswered, Question: question, Answer: answer}
}

func (a *Advisor) loadProfile(ctx context.Context, userID string) *models.UserProfile {
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()

	p, err := a.profiles.FindProfile(ctx, userID)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			a.logger.ErrorContext(ctx, "user data fetch error", "user_id", userID, "kind", errorKind(err), "error", err)
		}
		return nil
	}
	return p
}

// History returns the user's most recent answered questions, newest first.
func (a *Advisor) History(ctx context.Context, id models.Identity, limit int64) ([]models.QARecord, error) {
	if limit <= 0 {
		limit = RecentHistoryLen
	}
	ctx, cancel := context.WithTimeout(ctx, storeTimeout)
	defer cancel()
	return a.qa.RecentQA(ctx, id.UserID, limit)
}
