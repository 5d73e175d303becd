package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/AnshRaj112/serenify-advisor/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// MemoryStore is an in-memory stand-in for MongoStore, used for local
// development (STORAGE_BACKEND=memory) and tests.
type MemoryStore struct {
	mu       sync.Mutex
	users    map[primitive.ObjectID]*models.User
	profiles map[string]*models.UserProfile
	qa       []models.QARecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[primitive.ObjectID]*models.User),
		profiles: make(map[string]*models.UserProfile),
	}
}

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

// --- users ---

func (m *MemoryStore) CreateUser(ctx context.Context, u *models.User) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, existing := range m.users {
		if existing.Username == u.Username {
			return "", ErrDuplicateUsername
		}
	}
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	cp := *u
	m.users[u.ID] = &cp
	return u.ID.Hex(), nil
}

func (m *MemoryStore) FindUserByUsername(ctx context.Context, username string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryStore) FindUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[oid]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryStore) TouchLastLogin(ctx context.Context, id string, at time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[oid]
	if !ok {
		return ErrNotFound
	}
	t := at.UTC()
	u.LastLogin = &t
	return nil
}

// SetActive flips a user's active flag. There is no HTTP surface for it;
// operators deactivate accounts directly in the database.
func (m *MemoryStore) SetActive(id string, active bool) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[oid]
	if !ok {
		return ErrNotFound
	}
	u.IsActive = active
	return nil
}

// --- profiles ---

func (m *MemoryStore) CreateProfile(ctx context.Context, p *models.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.profiles[p.UserID] = cloneProfile(p)
	return nil
}

func (m *MemoryStore) FindProfile(ctx context.Context, userID string) (*models.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneProfile(p), nil
}

func (m *MemoryStore) UpdateProfile(ctx context.Context, p *models.UserProfile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.profiles[p.UserID]
	if !ok {
		return ErrNotFound
	}
	updated := cloneProfile(p)
	updated.Username = existing.Username
	updated.CreatedAt = existing.CreatedAt
	m.profiles[p.UserID] = updated
	return nil
}

func cloneProfile(p *models.UserProfile) *models.UserProfile {
	cp := *p
	if p.Age != nil {
		age := *p.Age
		cp.Age = &age
	}
	cp.Goals = append([]string{}, p.Goals...)
	cp.StressLevel = append([]string{}, p.StressLevel...)
	return &cp
}

// --- qa history ---

func (m *MemoryStore) InsertQA(ctx context.Context, rec *models.QARecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if rec.ID.IsZero() {
		rec.ID = primitive.NewObjectID()
	}
	m.qa = append(m.qa, *rec)
	return nil
}

func (m *MemoryStore) CountQASince(ctx context.Context, userID string, since time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var n int64
	for _, rec := range m.qa {
		if rec.UserID == userID && !rec.Timestamp.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *MemoryStore) RecentQA(ctx context.Context, userID string, limit int64) ([]models.QARecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.QARecord
	for _, rec := range m.qa {
		if rec.UserID == userID {
			out = append(out, rec)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

// QACount returns the total number of stored records.
func (m *MemoryStore) QACount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.qa)
}
