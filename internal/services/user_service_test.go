package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/placeit-be/internal/auth"
	"github.com/isdelr/placeit-be/internal/models"
	"github.com/isdelr/placeit-be/internal/store"
)

// countingStore records how often the credential store is touched.
type countingStore struct {
	store.UserStore
	lookups int
	creates int
	findErr error
}

func (c *countingStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	c.lookups++
	if c.findErr != nil {
		return models.User{}, c.findErr
	}
	return c.UserStore.FindByEmail(ctx, email)
}

func (c *countingStore) Create(ctx context.Context, u *models.User) error {
	c.creates++
	return c.UserStore.Create(ctx, u)
}

func newUserService(t *testing.T) (*UserService, *countingStore, *auth.TokenManager) {
	t.Helper()
	cs := &countingStore{UserStore: store.NewMemoryStore()}
	tokens := auth.NewTokenManager("test-secret", time.Hour)
	return NewUserService(cs, tokens, 4), cs, tokens
}

func clientMessage(t *testing.T, err error) string {
	t.Helper()
	var ce *ClientError
	require.True(t, errors.As(err, &ce), "expected ClientError, got %v", err)
	return ce.Message
}

func TestRegisterValidation(t *testing.T) {
	svc, cs, _ := newUserService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		msg      string
	}{
		{"missing email", "", "secret1", MsgCredentialsRequired},
		{"blank email", "   ", "secret1", MsgCredentialsRequired},
		{"missing password", "a@b.com", "", MsgCredentialsRequired},
		{"short password", "a@b.com", "12345", MsgPasswordTooShort},
		{"short multibyte password", "a@b.com", "ééé", MsgPasswordTooShort},
	}
	for _, tt := range tests {
		_, err := svc.Register(ctx, tt.email, tt.password)
		require.ErrorIs(t, err, ErrValidation, tt.name)
		assert.Equal(t, tt.msg, clientMessage(t, err), tt.name)
	}

	assert.Zero(t, cs.lookups, "validation must happen before the store is consulted")
	assert.Zero(t, cs.creates)
}

func TestRegisterDuplicate(t *testing.T) {
	svc, cs, _ := newUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "a@b.com", "secret1")
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Empty(t, user.PasswordHash)

	_, err = svc.Register(ctx, "  A@B.com ", "secret2")
	require.ErrorIs(t, err, ErrConflict)
	assert.Equal(t, MsgEmailExists, clientMessage(t, err))
	assert.Equal(t, 1, cs.creates)
}

func TestRegisterStoresHashedPassword(t *testing.T) {
	svc, cs, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "Hash@Example.com", "secret1")
	require.NoError(t, err)

	stored, err := cs.UserStore.FindByEmail(ctx, "hash@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.True(t, auth.CheckPassword("secret1", stored.PasswordHash))
}

func TestRegisterCountsCharactersNotBytes(t *testing.T) {
	svc, _, _ := newUserService(t)

	// six characters, twelve bytes
	_, err := svc.Register(context.Background(), "u@b.com", "éééééé")
	require.NoError(t, err)
}

func TestRegisterStoreFailure(t *testing.T) {
	svc, cs, _ := newUserService(t)
	cs.findErr = errors.New("connection reset")

	_, err := svc.Register(context.Background(), "a@b.com", "secret1")
	require.Error(t, err)
	var ce *ClientError
	assert.False(t, errors.As(err, &ce), "store failures must not leak as client errors")
}

func TestLoginDoesNotRevealWhichPartFailed(t *testing.T) {
	svc, _, _ := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.com", "secret1")
	require.NoError(t, err)

	_, errWrongPass := svc.Login(ctx, "a@b.com", "wrong")
	_, errUnknown := svc.Login(ctx, "nobody@b.com", "secret1")

	require.ErrorIs(t, errWrongPass, ErrInvalidCredentials)
	require.ErrorIs(t, errUnknown, ErrInvalidCredentials)
	assert.Equal(t, clientMessage(t, errWrongPass), clientMessage(t, errUnknown))
	assert.Equal(t, MsgInvalidCredentials, clientMessage(t, errUnknown))
}

func TestLoginIssuesTokenForStoredUser(t *testing.T) {
	svc, cs, tokens := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "a@b.com", "secret1")
	require.NoError(t, err)

	res, err := svc.Login(ctx, "A@b.com", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, res.Token)

	stored, err := cs.UserStore.FindByEmail(ctx, "a@b.com")
	require.NoError(t, err)

	claims, err := tokens.ValidateJWT(res.Token)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, claims.UserID)
	assert.Equal(t, models.PublicUser{ID: stored.ID, Email: "a@b.com"}, res.User)
}

func TestGetUserByID(t *testing.T) {
	svc, _, _ := newUserService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "a@b.com", "secret1")
	require.NoError(t, err)

	got, err := svc.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@b.com", got.Email)
	assert.Empty(t, got.PasswordHash)

	_, err = svc.GetUserByID(ctx, "missing")
	require.ErrorIs(t, err, ErrNotFound)
}
