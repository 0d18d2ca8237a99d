package auth

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alrashid-edu/portal/core"
	"github.com/alrashid-edu/portal/core/session"
)

var testLogger = core.NewStdLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags))

func upstreamStub(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv
}

func loginStub(t *testing.T, status int, body interface{}) *httptest.Server {
	return upstreamStub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var creds Credentials
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&creds))

		w.WriteHeader(status)
		if body != nil {
			assert.NoError(t, json.NewEncoder(w).Encode(body))
		}
	})
}

func TestGateway_Login(t *testing.T) {
	srv := loginStub(t, http.StatusOK, map[string]interface{}{
		"access_token":  "at",
		"refresh_token": "rt",
		"role":          "student",
	})
	store := session.NewMemoryStore()
	g := NewGateway(srv.URL, srv.Client(), store, testLogger)

	sess, err := g.Login(context.Background(), Credentials{StudentID: 1234, ParentID: 5678})
	assert.NoError(t, err)
	assert.Equal(t, "at", sess.AccessToken)
	assert.Equal(t, "rt", sess.RefreshToken)
	assert.Equal(t, session.RoleStudent, sess.Role)

	// the session was persisted as part of the login itself
	stored, ok := store.Get()
	assert.True(t, ok)
	assert.Equal(t, sess, stored)
}

func TestGateway_LoginRejected(t *testing.T) {
	tests := []struct {
		name   string
		status int
	}{
		{"badRequest", http.StatusBadRequest},
		{"unauthorized", http.StatusUnauthorized},
		{"forbidden", http.StatusForbidden},
		{"notFound", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := loginStub(t, tt.status, nil)
			store := session.NewMemoryStore()
			g := NewGateway(srv.URL, srv.Client(), store, testLogger)

			_, err := g.Login(context.Background(), Credentials{StudentID: 1, ParentID: 2})
			assert.ErrorIs(t, err, ErrInvalidCredentials)

			_, ok := store.Get()
			assert.False(t, ok)
		})
	}
}

func TestGateway_LoginFrozen(t *testing.T) {
	// the upstream reports a frozen account with a success-shaped body
	srv := loginStub(t, http.StatusOK, map[string]interface{}{
		"access_token": "at",
		"role":         "student",
		"frozen":       true,
	})
	store := session.NewMemoryStore()
	g := NewGateway(srv.URL, srv.Client(), store, testLogger)

	_, err := g.Login(context.Background(), Credentials{StudentID: 1, ParentID: 2})
	assert.ErrorIs(t, err, ErrAccountFrozen)

	// no session may be written for a frozen account
	_, ok := store.Get()
	assert.False(t, ok)
}

func TestGateway_LoginUpstreamFailure(t *testing.T) {
	srv := loginStub(t, http.StatusInternalServerError, nil)
	store := session.NewMemoryStore()
	g := NewGateway(srv.URL, srv.Client(), store, testLogger)

	_, err := g.Login(context.Background(), Credentials{StudentID: 1, ParentID: 2})
	assert.True(t, core.IsTransport(err))

	_, ok := store.Get()
	assert.False(t, ok)
}

func TestGateway_LoginUnreachable(t *testing.T) {
	srv := loginStub(t, http.StatusOK, nil)
	srv.Close() // connection refused from here on
	store := session.NewMemoryStore()
	g := NewGateway(srv.URL, http.DefaultClient, store, testLogger)

	_, err := g.Login(context.Background(), Credentials{StudentID: 1, ParentID: 2})
	assert.True(t, core.IsTransport(err))

	_, ok := store.Get()
	assert.False(t, ok)
}

func TestGateway_LoginMissingToken(t *testing.T) {
	srv := loginStub(t, http.StatusOK, map[string]interface{}{"role": "student"})
	store := session.NewMemoryStore()
	g := NewGateway(srv.URL, srv.Client(), store, testLogger)

	_, err := g.Login(context.Background(), Credentials{StudentID: 1, ParentID: 2})
	assert.True(t, core.IsTransport(err))

	_, ok := store.Get()
	assert.False(t, ok)
}

func profileStub(t *testing.T, status int, body interface{}) *httptest.Server {
	return upstreamStub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/auth/profile", r.URL.Path)
		assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))

		w.WriteHeader(status)
		if body != nil {
			assert.NoError(t, json.NewEncoder(w).Encode(body))
		}
	})
}

func authedStore() *session.MemoryStore {
	store := session.NewMemoryStore()
	store.Set(session.Session{AccessToken: "at", Role: session.RoleStudent})
	return store
}

func TestGateway_FetchProfile(t *testing.T) {
	srv := profileStub(t, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"user": map[string]interface{}{"studentName": "Sara", "role": "student"},
			"results": []map[string]interface{}{{
				"studentName": "Sara",
				"percentage":  91.5,
				"subjects": []map[string]interface{}{
					{"subject": "Math", "marksScored": 80, "maxMarks": 100, "passedMarks": 50},
				},
			}},
		},
	})
	g := NewGateway(srv.URL, srv.Client(), authedStore(), testLogger)

	out := g.FetchProfile(context.Background())
	assert.Equal(t, ProfileOK, out.Status)
	assert.NoError(t, out.Err)
	assert.Equal(t, "Sara", out.Profile.User.StudentName)
	if assert.Len(t, out.Profile.Results, 1) {
		assert.Equal(t, 91.5, out.Profile.Results[0].Percentage)
		assert.True(t, out.Profile.Results[0].Subjects[0].Passed())
	}
}

func TestGateway_FetchProfileEmpty(t *testing.T) {
	// an authenticated student with no uploaded results is not an error
	srv := profileStub(t, http.StatusOK, map[string]interface{}{
		"data": map[string]interface{}{
			"user":    map[string]interface{}{"studentName": "Sara"},
			"results": []interface{}{},
		},
	})
	g := NewGateway(srv.URL, srv.Client(), authedStore(), testLogger)

	out := g.FetchProfile(context.Background())
	assert.Equal(t, ProfileEmpty, out.Status)
	assert.NoError(t, out.Err)
	assert.Equal(t, "Sara", out.Profile.User.StudentName)
}

func TestGateway_FetchProfileNotAuthenticated(t *testing.T) {
	g := NewGateway("http://unused.invalid", http.DefaultClient, session.NewMemoryStore(), testLogger)

	out := g.FetchProfile(context.Background())
	assert.Equal(t, ProfileError, out.Status)
	assert.ErrorIs(t, out.Err, ErrNotAuthenticated)
}

func TestGateway_FetchProfileExpiredToken(t *testing.T) {
	srv := profileStub(t, http.StatusUnauthorized, nil)
	g := NewGateway(srv.URL, srv.Client(), authedStore(), testLogger)

	out := g.FetchProfile(context.Background())
	assert.Equal(t, ProfileError, out.Status)
	assert.ErrorIs(t, out.Err, ErrNotAuthenticated)
}

func TestGateway_FetchProfileUpstreamFailure(t *testing.T) {
	srv := profileStub(t, http.StatusBadGateway, nil)
	g := NewGateway(srv.URL, srv.Client(), authedStore(), testLogger)

	out := g.FetchProfile(context.Background())
	assert.Equal(t, ProfileError, out.Status)
	assert.True(t, core.IsTransport(out.Err))
}

func TestGateway_Logout(t *testing.T) {
	store := authedStore()
	g := NewGateway("http://unused.invalid", http.DefaultClient, store, testLogger)

	g.Logout()
	_, ok := store.Get()
	assert.False(t, ok)
}
