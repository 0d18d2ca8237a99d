package portalapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/alrashid-edu/portal/core/session"
)

// loginPath is where unauthorized visitors are sent.
const loginPath = "/auth/login"

// guardStateKey exposes the guard's decision on the request context.
const guardStateKey = "guardState"

// GuardState tracks the route guard through a protected page mount: the
// check runs to completion before any protected content is written.
type GuardState int

const (
	GuardChecking GuardState = iota
	GuardAuthorized
	GuardRedirecting
)

func (s GuardState) String() string {
	switch s {
	case GuardChecking:
		return "checking"
	case GuardAuthorized:
		return "authorized"
	case GuardRedirecting:
		return "redirecting"
	}
	return "unknown"
}

// Decide resolves the guard for a page requiring one of the given roles; no
// roles means any authenticated visitor is allowed. Token expiry is not
// re-checked here: a stale token surfaces on the next upstream call.
func Decide(q *session.Query, roles ...session.Role) GuardState {
	if !q.IsAuthenticated() {
		return GuardRedirecting
	}
	if len(roles) == 0 {
		return GuardAuthorized
	}
	role := q.Role()
	for _, r := range roles {
		if role == r {
			return GuardAuthorized
		}
	}
	return GuardRedirecting
}

func (s *server) requireRole(roles ...session.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctx.Set(guardStateKey, GuardChecking)

			state := Decide(session.NewQuery(s.store(ctx)), roles...)
			ctx.Set(guardStateKey, state)

			if state != GuardAuthorized {
				return ctx.Redirect(http.StatusFound, loginPath)
			}
			return next(ctx)
		}
	}
}
