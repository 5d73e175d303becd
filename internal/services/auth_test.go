package services

import (
	"context"
	"testing"
	"time"

	"github.com/AnshRaj112/serenify-advisor/internal/database"
	"github.com/AnshRaj112/serenify-advisor/internal/logging"
	"github.com/AnshRaj112/serenify-advisor/internal/models"
	"github.com/AnshRaj112/serenify-advisor/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuth(store *database.MemoryStore) (*AuthService, *MemorySessionStore) {
	sessions := NewMemorySessionStore(time.Hour)
	return NewAuthService(store, store, sessions, NewCookieCodec("test-secret", time.Hour), logging.Discard()), sessions
}

func TestRegister_CreatesUserAndDefaultProfile(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	auth, _ := newTestAuth(store)

	id, err := auth.Register(ctx, "Alice", "Passw0rd")
	require.NoError(t, err)
	assert.Equal(t, "alice", id.Username)
	require.NotEmpty(t, id.UserID)

	u, err := store.FindUserByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, u.IsActive)
	assert.NotEqual(t, "Passw0rd", u.Password)

	p, err := store.FindProfile(ctx, id.UserID)
	require.NoError(t, err)
	assert.Equal(t, "alice", p.Username)
	assert.Nil(t, p.Age)
	assert.Empty(t, p.Goals)
	assert.Empty(t, p.StressLevel)
	assert.False(t, p.Preferences.Therapy)
}

func TestRegister_Validation(t *testing.T) {
	ctx := context.Background()
	auth, _ := newTestAuth(database.NewMemoryStore())

	tests := []struct {
		name     string
		username string
		password string
		field    string
	}{
		{"short username", "al", "Passw0rd", "username"},
		{"bad characters", "al ice", "Passw0rd", "username"},
		{"short password", "alice", "Pa0", "password"},
		{"no letter", "alice", "12345678", "password"},
		{"no number", "alice", "Password", "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := auth.Register(ctx, tt.username, tt.password)
			var verr *utils.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestRegister_DuplicateUsernameAnyCase(t *testing.T) {
	ctx := context.Background()
	auth, _ := newTestAuth(database.NewMemoryStore())

	_, err := auth.Register(ctx, "alice", "Passw0rd")
	require.NoError(t, err)

	_, err = auth.Register(ctx, "ALICE", "Passw0rd2")
	assert.ErrorIs(t, err, ErrUsernameTaken)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	auth, _ := newTestAuth(store)

	registered, err := auth.Register(ctx, "alice", "Passw0rd")
	require.NoError(t, err)

	id, cookie, err := auth.Login(ctx, "Alice", "Passw0rd")
	require.NoError(t, err)
	assert.Equal(t, registered, id)
	require.NotEmpty(t, cookie)

	u, _ := store.FindUserByID(ctx, id.UserID)
	assert.NotNil(t, u.LastLogin)

	resolved, ok := auth.Resolve(ctx, cookie)
	require.True(t, ok)
	assert.Equal(t, id, resolved)
}

func TestLogin_GenericFailure(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	auth, _ := newTestAuth(store)

	id, err := auth.Register(ctx, "alice", "Passw0rd")
	require.NoError(t, err)

	_, cookie, err := auth.Login(ctx, "alice", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, cookie)

	_, _, err = auth.Login(ctx, "nobody", "Passw0rd")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, _, err = auth.Login(ctx, "", "")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	require.NoError(t, store.SetActive(id.UserID, false))
	_, _, err = auth.Login(ctx, "alice", "Passw0rd")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_CorruptedHashIsInvalidCredentials(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	auth, _ := newTestAuth(store)

	_, err := store.CreateUser(ctx, &models.User{
		Username: "mallory",
		Password: "$argon2id$v=19$m=65536,t=3,p=0$c2FsdHNhbHRzYWx0$aGFzaGhhc2hoYXNo",
		IsActive: true,
	})
	require.NoError(t, err)

	_, cookie, err := auth.Login(ctx, "mallory", "Passw0rd")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Empty(t, cookie)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	auth, _ := newTestAuth(database.NewMemoryStore())

	_, err := auth.Register(ctx, "alice", "Passw0rd")
	require.NoError(t, err)
	_, cookie, err := auth.Login(ctx, "alice", "Passw0rd")
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, cookie))
	_, ok := auth.Resolve(ctx, cookie)
	assert.False(t, ok)

	assert.NoError(t, auth.Logout(ctx, "not-a-cookie"))
}

func TestResolve_AnonymousOnBadState(t *testing.T) {
	ctx := context.Background()
	store := database.NewMemoryStore()
	auth, sessions := newTestAuth(store)

	_, ok := auth.Resolve(ctx, "")
	assert.False(t, ok)

	_, ok = auth.Resolve(ctx, "corrupted.cookie.value")
	assert.False(t, ok)

	// session pointing at a user that does not exist
	token, err := sessions.Create(ctx, "000000000000000000000000")
	require.NoError(t, err)
	cookie, err := auth.cookies.Encode(token)
	require.NoError(t, err)
	_, ok = auth.Resolve(ctx, cookie)
	assert.False(t, ok)

	// session pointing at a malformed id
	token, err = sessions.Create(ctx, "not-an-object-id")
	require.NoError(t, err)
	cookie, err = auth.cookies.Encode(token)
	require.NoError(t, err)
	_, ok = auth.Resolve(ctx, cookie)
	assert.False(t, ok)

	// deactivated user
	id, err := auth.Register(ctx, "alice", "Passw0rd")
	require.NoError(t, err)
	_, cookie, err = auth.Login(ctx, "alice", "Passw0rd")
	require.NoError(t, err)
	require.NoError(t, store.SetActive(id.UserID, false))
	_, ok = auth.Resolve(ctx, cookie)
	assert.False(t, ok)
}
