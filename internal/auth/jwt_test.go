package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdelr/placeit-be/internal/models"
)

func TestGenerateAndValidate(t *testing.T) {
	t.Parallel()

	m := NewTokenManager("super-secret", time.Hour)
	user := models.User{ID: "user-123", Email: "a@b.com"}

	tok, err := m.GenerateJWT(user)
	require.NoError(t, err)

	claims, err := m.ValidateJWT(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "user-123", claims.Subject)
	assert.Equal(t, "a@b.com", claims.Email)
}

func TestTokenEmbedsUserIDWithoutVerification(t *testing.T) {
	t.Parallel()

	m := NewTokenManager("super-secret", time.Hour)
	tok, err := m.GenerateJWT(models.User{ID: "abc", Email: "a@b.com"})
	require.NoError(t, err)

	claims := &Claims{}
	_, _, err = jwt.NewParser().ParseUnverified(tok, claims)
	require.NoError(t, err)
	assert.Equal(t, "abc", claims.UserID)
}

func TestValidateExpired(t *testing.T) {
	t.Parallel()

	m := NewTokenManager("secret", -time.Second)
	tok, err := m.GenerateJWT(models.User{ID: "u1"})
	require.NoError(t, err)

	_, err = m.ValidateJWT(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateWrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewTokenManager("right-secret", time.Hour).GenerateJWT(models.User{ID: "u2"})
	require.NoError(t, err)

	_, err = NewTokenManager("wrong-secret", time.Hour).ValidateJWT(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateRejectsOtherAlgorithms(t *testing.T) {
	t.Parallel()

	tok := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: "u3"})
	s, err := tok.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenManager("secret", time.Hour).ValidateJWT(s)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestJWTMiddleware(t *testing.T) {
	t.Parallel()

	m := NewTokenManager("secret", time.Hour)
	tok, err := m.GenerateJWT(models.User{ID: "u4", Email: "x@y.z"})
	require.NoError(t, err)

	var seen *Claims
	h := m.JWTMiddleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name   string
		setup  func(r *http.Request)
		status int
	}{
		{"missing", func(r *http.Request) {}, http.StatusUnauthorized},
		{"garbage", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") }, http.StatusUnauthorized},
		{"header", func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+tok) }, http.StatusNoContent},
		{"cookie", func(r *http.Request) { r.AddCookie(&http.Cookie{Name: CookieName, Value: tok}) }, http.StatusNoContent},
	}
	for _, tt := range tests {
		seen = nil
		req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
		tt.setup(req)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		assert.Equal(t, tt.status, rec.Code, tt.name)
		if tt.status == http.StatusNoContent {
			require.NotNil(t, seen, tt.name)
			assert.Equal(t, "u4", seen.UserID, tt.name)
		} else {
			assert.Contains(t, rec.Body.String(), "message", tt.name)
		}
	}
}

func TestPasswordHashing(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("secret1", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", hash)
	assert.True(t, CheckPassword("secret1", hash))
	assert.False(t, CheckPassword("wrong", hash))

	other, err := HashPassword("secret1", 4)
	require.NoError(t, err)
	assert.NotEqual(t, hash, other, "salted hashes should differ")

	long := make([]byte, MaxPasswordLen+1)
	for i := range long {
		long[i] = 'a'
	}
	_, err = HashPassword(string(long), 4)
	require.ErrorIs(t, err, ErrPasswordTooLong)
}
