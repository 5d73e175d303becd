package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/AnshRaj112/serenify-advisor/internal/database"
	"github.com/AnshRaj112/serenify-advisor/internal/logging"
	"github.com/AnshRaj112/serenify-advisor/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var alice = models.Identity{UserID: "u-alice", Username: "alice"}

func newTestAdvisor(store *database.MemoryStore, gen Generator, rec *counterRecorder) *Advisor {
	limiter := NewRateLimiter(store, logging.Discard(), rec)
	return NewAdvisor(AdvisorConfig{APIKey: "test-key"}, limiter, store, store, gen, logging.Discard(), rec)
}

func TestAsk_AnswersAndPersists(t *testing.T) {
	store := database.NewMemoryStore()
	gen := &recordingGenerator{reply: "  Try breathing exercises.\n"}
	rec := &counterRecorder{}
	a := newTestAdvisor(store, gen, rec)

	res := a.Ask(context.Background(), alice, "How do I <b>cope</b>?")

	assert.Equal(t, OutcomeAnswered, res.Outcome)
	assert.Equal(t, "Try breathing exercises.", res.Answer)
	assert.Equal(t, "How do I bcope/b?", res.Question)
	assert.Equal(t, 1, rec.outcomes[OutcomeAnswered])

	history, err := a.History(context.Background(), alice, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "How do I bcope/b?", history[0].Question)
	assert.Equal(t, "Try breathing exercises.", history[0].Answer)
	assert.Equal(t, "alice", history[0].Username)

	require.Equal(t, 1, gen.calls())
	assert.Contains(t, gen.prompts[0], "No additional context available.")
	assert.Contains(t, gen.prompts[0], "How do I bcope/b?")
}

func TestAsk_UsesProfileContext(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	age := 41
	p := models.NewProfile(alice.UserID, alice.Username, time.Now())
	p.Age = &age
	p.StressLevel = []string{models.StressHigh}
	require.NoError(t, store.CreateProfile(ctx, p))

	gen := &recordingGenerator{reply: "ok"}
	a := newTestAdvisor(store, gen, nil)

	a.Ask(ctx, alice, "What helps with stress at work?")
	require.Equal(t, 1, gen.calls())
	assert.Contains(t, gen.prompts[0], "User context: Age: 41. Stress Level: high.")
}

func TestAsk_ProfileLookupFailureDegrades(t *testing.T) {
	store := database.NewMemoryStore()
	gen := &recordingGenerator{reply: "ok"}
	limiter := NewRateLimiter(store, logging.Discard(), nil)
	a := NewAdvisor(AdvisorConfig{APIKey: "k"}, limiter, brokenProfileStore{store}, store, gen, logging.Discard(), nil)

	res := a.Ask(context.Background(), alice, "What helps with stress at work?")
	assert.Equal(t, OutcomeAnswered, res.Outcome)
	assert.Contains(t, gen.prompts[0], "No additional context available.")
}

func TestAsk_RateLimitedMakesNoCallsAndNoInserts(t *testing.T) {
	store := database.NewMemoryStore()
	seedQA(t, store, alice.UserID, DefaultAskLimit, time.Now().Add(-time.Minute))
	gen := &recordingGenerator{reply: "should not be used"}
	rec := &counterRecorder{}
	a := newTestAdvisor(store, gen, rec)

	res := a.Ask(context.Background(), alice, "How do I cope with anxiety?")

	assert.Equal(t, OutcomeRateLimited, res.Outcome)
	assert.Empty(t, res.Answer)
	assert.Zero(t, gen.calls())
	assert.Equal(t, DefaultAskLimit, store.QACount())
	assert.Equal(t, 1, rec.outcomes[OutcomeRateLimited])
}

func TestAsk_EmptyAnswerIsUnavailable(t *testing.T) {
	store := database.NewMemoryStore()
	gen := &recordingGenerator{reply: "   "}
	a := newTestAdvisor(store, gen, nil)

	res := a.Ask(context.Background(), alice, "How do I cope with anxiety?")

	assert.Equal(t, OutcomeUnavailable, res.Outcome)
	assert.Zero(t, store.QACount())
}

func TestAsk_GeneratorErrorIsUnavailableAndLogged(t *testing.T) {
	store := database.NewMemoryStore()
	logger, buf := bufferLogger()
	limiter := NewRateLimiter(store, logger, nil)
	gen := generatorFunc(func(context.Context, string) (string, error) {
		return "", errors.New("quota exceeded")
	})
	a := NewAdvisor(AdvisorConfig{APIKey: "k"}, limiter, store, store, gen, logger, nil)

	res := a.Ask(context.Background(), alice, "How do I cope with anxiety?")

	assert.Equal(t, OutcomeUnavailable, res.Outcome)
	assert.Zero(t, store.QACount())
	assert.Contains(t, buf.String(), "quota exceeded")
	assert.Contains(t, buf.String(), `"kind":"*errors.errorString"`)
}

func TestAsk_GeneratorGetsDeadline(t *testing.T) {
	store := database.NewMemoryStore()
	var hadDeadline bool
	gen := generatorFunc(func(ctx context.Context, _ string) (string, error) {
		_, hadDeadline = ctx.Deadline()
		return "fine", nil
	})
	limiter := NewRateLimiter(store, logging.Discard(), nil)
	a := NewAdvisor(AdvisorConfig{APIKey: "k", Timeout: time.Second}, limiter, store, store, gen, logging.Discard(), nil)

	a.Ask(context.Background(), alice, "How do I cope with anxiety?")
	assert.True(t, hadDeadline)
}

func TestAsk_NotConfigured(t *testing.T) {
	store := database.NewMemoryStore()
	gen := &recordingGenerator{reply: "unused"}
	limiter := NewRateLimiter(store, logging.Discard(), nil)
	a := NewAdvisor(AdvisorConfig{}, limiter, store, store, gen, logging.Discard(), nil)

	res := a.Ask(context.Background(), alice, "How do I cope with anxiety?")
	assert.Equal(t, OutcomeNotConfigured, res.Outcome)
	assert.Zero(t, gen.calls())

	a = NewAdvisor(AdvisorConfig{APIKey: "k"}, limiter, store, store, nil, logging.Discard(), nil)
	res = a.Ask(context.Background(), alice, "How do I cope with anxiety?")
	assert.Equal(t, OutcomeNotConfigured, res.Outcome)
	assert.Zero(t, store.QACount())
}

func TestAsk_CountFailureFailsOpen(t *testing.T) {
	gen := &recordingGenerator{reply: "still answered"}
	rec := &counterRecorder{}
	limiter := NewRateLimiter(brokenQAStore{}, logging.Discard(), rec)
	a := NewAdvisor(AdvisorConfig{APIKey: "k"}, limiter, database.NewMemoryStore(), brokenQAStore{}, gen, logging.Discard(), rec)

	res := a.Ask(context.Background(), alice, "How do I cope with anxiety?")

	// the insert also fails; the answer is still returned
	assert.Equal(t, OutcomeAnswered, res.Outcome)
	assert.Equal(t, "still answered", res.Answer)
	assert.Equal(t, 1, rec.failures)
}

func TestValidateQuestion(t *testing.T) {
	assert.Error(t, ValidateQuestion(""))
	assert.Error(t, ValidateQuestion("   "))
	assert.Error(t, ValidateQuestion("too short"))
	assert.NoError(t, ValidateQuestion("ten chars!"))
	assert.NoError(t, ValidateQuestion(strings.Repeat("a", MaxQuestionLength)))
	assert.Error(t, ValidateQuestion(strings.Repeat("a", MaxQuestionLength+1)))
}

// register -> login -> ask, with a stubbed model.
func TestEndToEnd_RegisterLoginAsk(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	auth, _ := newTestAuth(store)

	registered, err := auth.Register(ctx, "alice", "Passw0rd")
	require.NoError(t, err)
	_, err = store.FindProfile(ctx, registered.UserID)
	require.NoError(t, err)

	id, cookie, err := auth.Login(ctx, "alice", "Passw0rd")
	require.NoError(t, err)
	resolved, ok := auth.Resolve(ctx, cookie)
	require.True(t, ok)
	assert.Equal(t, id, resolved)

	_, badCookie, err := auth.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, ok = auth.Resolve(ctx, badCookie)
	assert.False(t, ok)

	gen := &recordingGenerator{reply: "Try breathing exercises."}
	a := newTestAdvisor(store, gen, nil)
	res := a.Ask(ctx, resolved, "How do I cope with anxiety?")

	assert.Equal(t, OutcomeAnswered, res.Outcome)
	assert.Equal(t, "Try breathing exercises.", res.Answer)
	require.Equal(t, 1, store.QACount())

	history, err := a.History(ctx, resolved, 5)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, id.UserID, history[0].UserID)
	assert.Equal(t, "How do I cope with anxiety?", history[0].Question)
	assert.Equal(t, "Try breathing exercises.", history[0].Answer)
}
