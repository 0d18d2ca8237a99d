// Package auth talks to the remote school API on the portal's behalf and
// normalizes every outcome - success, frozen account, bad credentials,
// unreachable upstream - into typed results the handlers can render.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"

	"github.com/alrashid-edu/portal/core"
	"github.com/alrashid-edu/portal/core/session"
)

var (
	// ErrInvalidCredentials is deliberately generic: it must not reveal
	// whether the student or the parent number was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountFrozen means the account is suspended; the visitor should
	// contact the administration.
	ErrAccountFrozen = errors.New("account frozen")
	// ErrNotAuthenticated means no access token is persisted.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// Gateway issues login and profile requests against the upstream API. It
// persists successful logins into the given Store itself, so there is no
// window where a token exists without being stored.
type Gateway struct {
	baseURL string
	client  *http.Client
	store   session.Store
	logger  core.Logger
}

func NewGateway(baseURL string, client *http.Client, store session.Store, logger core.Logger) *Gateway {
	if client == nil {
		client = http.DefaultClient
	}
	return &Gateway{baseURL: baseURL, client: client, store: store, logger: logger}
}

// Login exchanges the credential pair for a session. The store is only
// written on the fully-successful path; rejected and frozen logins leave it
// untouched.
func (g *Gateway) Login(ctx context.Context, creds Credentials) (session.Session, error) {
	body, err := json.Marshal(creds)
	if err != nil {
		return session.Session{}, errors.Wrap(err, "marshaling credentials")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/auth/login", bytes.NewReader(body))
	if err != nil {
		return session.Session{}, errors.Wrap(err, "building login request")
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := g.client.Do(req)
	if err != nil {
		terr := &core.TransportError{Op: "auth.login", Err: err}
		g.logger.Error("login request failed", terr)
		return session.Session{}, terr
	}
	defer res.Body.Close()

	switch {
	case res.StatusCode >= http.StatusOK && res.StatusCode < http.StatusMultipleChoices:
		// fall through to the payload check
	case res.StatusCode == http.StatusBadRequest,
		res.StatusCode == http.StatusUnauthorized,
		res.StatusCode == http.StatusForbidden,
		res.StatusCode == http.StatusNotFound:
		return session.Session{}, ErrInvalidCredentials
	default:
		terr := &core.TransportError{Op: "auth.login", StatusCode: res.StatusCode}
		g.logger.Error("login request rejected", terr)
		return session.Session{}, terr
	}

	var payload loginResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		terr := &core.TransportError{Op: "auth.login", Err: errors.Wrap(err, "decoding response")}
		g.logger.Error("login response malformed", terr)
		return session.Session{}, terr
	}

	// a frozen account is a success-shaped response; check the flag before
	// trusting the 200
	if payload.Frozen {
		return session.Session{}, ErrAccountFrozen
	}
	if payload.AccessToken == "" {
		terr := &core.TransportError{Op: "auth.login", Err: errors.New("no access token in response")}
		g.logger.Error("login response malformed", terr)
		return session.Session{}, terr
	}

	sess := session.Session{
		AccessToken:  payload.AccessToken,
		RefreshToken: payload.RefreshToken,
		Role:         session.ParseRole(payload.Role),
	}
	g.store.Set(sess)
	return sess, nil
}

// FetchProfile loads the student's profile and results with the persisted
// access token. An authenticated 2xx with zero results is a distinct state
// from a failure, and is rendered differently.
func (g *Gateway) FetchProfile(ctx context.Context) ProfileOutcome {
	sess, ok := g.store.Get()
	if !ok {
		return ProfileOutcome{Status: ProfileError, Err: ErrNotAuthenticated}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/auth/profile", nil)
	if err != nil {
		return ProfileOutcome{Status: ProfileError, Err: errors.Wrap(err, "building profile request")}
	}
	req.Header.Set("Authorization", "Bearer "+sess.AccessToken)

	res, err := g.client.Do(req)
	if err != nil {
		terr := &core.TransportError{Op: "auth.profile", Err: err}
		g.logger.Error("profile request failed", terr)
		return ProfileOutcome{Status: ProfileError, Err: terr}
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusUnauthorized {
		return ProfileOutcome{Status: ProfileError, Err: ErrNotAuthenticated}
	}
	if res.StatusCode < http.StatusOK || res.StatusCode >= http.StatusMultipleChoices {
		terr := &core.TransportError{Op: "auth.profile", StatusCode: res.StatusCode}
		g.logger.Error("profile request rejected", terr)
		return ProfileOutcome{Status: ProfileError, Err: terr}
	}

	var payload profileEnvelope
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		terr := &core.TransportError{Op: "auth.profile", Err: errors.Wrap(err, "decoding response")}
		g.logger.Error("profile response malformed", terr)
		return ProfileOutcome{Status: ProfileError, Err: terr}
	}

	if len(payload.Data.Results) == 0 {
		return ProfileOutcome{Status: ProfileEmpty, Profile: payload.Data}
	}
	return ProfileOutcome{Status: ProfileOK, Profile: payload.Data}
}

// Logout destroys the persisted session.
func (g *Gateway) Logout() {
	g.store.Clear()
}
