package authn

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtlib "awaaznow/internal/lib/jwt"
	"awaaznow/internal/models"
	"awaaznow/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

type fakeUserProvider struct {
	users map[int64]models.User
}

func (f *fakeUserProvider) UserByID(_ context.Context, id int64) (models.User, error) {
	u, ok := f.users[id]
	if !ok {
		return models.User{}, storage.ErrUserNotFound
	}
	return u, nil
}

func newProtectedHandler(t *testing.T, users *fakeUserProvider) (http.Handler, *models.User, *bool) {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	var gotUser models.User
	called := false

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true

		u, ok := UserFromContext(r.Context())
		require.True(t, ok)
		gotUser = u

		w.WriteHeader(http.StatusOK)
	})

	return New(log, users, testSecret)(next), &gotUser, &called
}

func TestAuthn_ValidToken(t *testing.T) {
	users := &fakeUserProvider{users: map[int64]models.User{
		7: {ID: 7, Email: "alice@x.com", Username: "alice", PassHash: []byte("hash")},
	}}
	handler, gotUser, called := newProtectedHandler(t, users)

	token, err := jwtlib.NewToken(7, testSecret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/news", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, *called)
	assert.Equal(t, int64(7), gotUser.ID)
	assert.Equal(t, "alice", gotUser.Username)
	assert.Nil(t, gotUser.PassHash, "password hash must not travel past the middleware")
}

func TestAuthn_MissingHeader(t *testing.T) {
	handler, _, called := newProtectedHandler(t, &fakeUserProvider{})

	req := httptest.NewRequest(http.MethodGet, "/news", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Not authorized, no token")
	assert.False(t, *called)
}

func TestAuthn_MalformedHeader(t *testing.T) {
	handler, _, called := newProtectedHandler(t, &fakeUserProvider{})

	req := httptest.NewRequest(http.MethodGet, "/news", nil)
	req.Header.Set("Authorization", "Basic abcdef")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Not authorized, no token")
	assert.False(t, *called)
}

func TestAuthn_ExpiredToken(t *testing.T) {
	handler, _, called := newProtectedHandler(t, &fakeUserProvider{})

	token, err := jwtlib.NewToken(7, testSecret, -time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/news", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Not authorized, token has expired")
	assert.False(t, *called)
}

func TestAuthn_InvalidToken(t *testing.T) {
	handler, _, called := newProtectedHandler(t, &fakeUserProvider{})

	req := httptest.NewRequest(http.MethodGet, "/news", nil)
	req.Header.Set("Authorization", "Bearer not.a.token")

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Not authorized, invalid token")
	assert.False(t, *called)
}

func TestAuthn_UserGone(t *testing.T) {
	handler, _, called := newProtectedHandler(t, &fakeUserProvider{users: map[int64]models.User{}})

	token, err := jwtlib.NewToken(99, testSecret, time.Hour)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/news", nil)
	req.Header.Set("Authorization", "Bearer "+token)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Contains(t, rr.Body.String(), "Not authorized, user not found")
	assert.False(t, *called)
}
