package register_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"awaaznow/internal/auth"
	"awaaznow/internal/http_server/handlers/register"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistrar struct {
	userID int64
	token  string
	err    error

	gotEmail    string
	gotUsername string
}

func (f *fakeRegistrar) Register(_ context.Context, email, username, _ string) (int64, string, error) {
	f.gotEmail = email
	f.gotUsername = username

	if f.err != nil {
		return 0, "", f.err
	}
	return f.userID, f.token, nil
}

func newHandler(registrar *fakeRegistrar) http.HandlerFunc {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return register.New(log, validator.New(), registrar, "local")
}

func doRequest(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	return rr
}

func TestRegister_Success(t *testing.T) {
	registrar := &fakeRegistrar{userID: 1, token: "session-token"}
	handler := newHandler(registrar)

	rr := doRequest(t, handler, `{"email": "alice@x.com", "username": "alice", "password": "secret1"}`)

	require.Equal(t, http.StatusCreated, rr.Code)

	var got register.Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))

	assert.Equal(t, "OK", got.Status)
	assert.Equal(t, int64(1), got.UserID)
	assert.Equal(t, "alice", got.Username)
	assert.Equal(t, "alice@x.com", got.Email)
	assert.Equal(t, "session-token", got.Token)
	assert.Equal(t, "alice@x.com", registrar.gotEmail)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	handler := newHandler(&fakeRegistrar{err: auth.ErrEmailTaken})

	rr := doRequest(t, handler, `{"email": "alice@x.com", "username": "alice", "password": "secret1"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), auth.ErrEmailTaken.Error())
}

func TestRegister_DuplicateUsername(t *testing.T) {
	handler := newHandler(&fakeRegistrar{err: auth.ErrUsernameTaken})

	rr := doRequest(t, handler, `{"email": "alice@x.com", "username": "alice", "password": "secret1"}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), auth.ErrUsernameTaken.Error())
}

func TestRegister_ValidationErrors(t *testing.T) {
	cases := []struct {
		name string
		body string
		want string
	}{
		{"missing email", `{"username": "alice", "password": "secret1"}`, "field Email is a required field"},
		{"bad email", `{"email": "nope", "username": "alice", "password": "secret1"}`, "field Email is not a valid email"},
		{"short password", `{"email": "alice@x.com", "username": "alice", "password": "abc"}`, "field Pass is too short"},
		{"missing username", `{"email": "alice@x.com", "password": "secret1"}`, "field Username is a required field"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := newHandler(&fakeRegistrar{userID: 1, token: "t"})

			rr := doRequest(t, handler, tc.body)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.want)
		})
	}
}

func TestRegister_MalformedJSON(t *testing.T) {
	handler := newHandler(&fakeRegistrar{})

	rr := doRequest(t, handler, `{"email": `)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "Failed to decode request")
}

func TestRegister_InternalError(t *testing.T) {
	handler := newHandler(&fakeRegistrar{err: errors.New("db down")})

	rr := doRequest(t, handler, `{"email": "alice@x.com", "username": "alice", "password": "secret1"}`)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
