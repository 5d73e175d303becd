package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/AnshRaj112/serenify-advisor/internal/database"
	"github.com/AnshRaj112/serenify-advisor/internal/logging"
	"github.com/AnshRaj112/serenify-advisor/internal/models"
)

var errStoreDown = errors.New("store unavailable")

type countFunc func(ctx context.Context, userID string, since time.Time) (int64, error)

func (f countFunc) CountQASince(ctx context.Context, userID string, since time.Time) (int64, error) {
	return f(ctx, userID, since)
}

type generatorFunc func(ctx context.Context, prompt string) (string, error)

func (f generatorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// recordingGenerator returns a fixed reply and remembers the prompts it saw.
type recordingGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (g *recordingGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

func (g *recordingGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

type counterRecorder struct {
	mu       sync.Mutex
	failures int
	outcomes map[string]int
}

func (c *counterRecorder) RateLimitCheckFailed() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failures++
}

func (c *counterRecorder) QuestionOutcome(outcome string) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.outcomes == nil {
		c.outcomes = make(map[string]int)
	}
	c.outcomes[outcome]++
}

// brokenQAStore fails every call.
type brokenQAStore struct{}

func (brokenQAStore) CountQASince(context.Context, string, time.Time) (int64, error) {
	return 0, errStoreDown
}
func (brokenQAStore) InsertQA(context.Context, *models.QARecord) error { return errStoreDown }
func (brokenQAStore) RecentQA(context.Context, string, int64) ([]models.QARecord, error) {
	return nil, errStoreDown
}

// brokenProfileStore fails every lookup.
type brokenProfileStore struct{ *database.MemoryStore }

func (brokenProfileStore) FindProfile(context.Context, string) (*models.UserProfile, error) {
	return nil, errStoreDown
}

func bufferLogger() (*slog.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	return logging.NewWithWriter(&buf, "debug"), &buf
}
