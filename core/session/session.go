// Package session holds the client-held proof of authentication: the tokens
// and role tag persisted in cookies between page loads, and the read API the
// rest of the portal uses to learn the current login state.
package session

// Role drives access to the restricted portal areas.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
	RoleUnknown Role = "unknown"
)

// ParseRole maps the upstream role string to a known Role; anything
// unrecognized degrades to RoleUnknown rather than failing.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin:
		return RoleAdmin
	case RoleStudent:
		return RoleStudent
	}
	return RoleUnknown
}

// Session is created on a successful login and destroyed on logout; the
// portal never expires it on its own.
type Session struct {
	AccessToken  string
	RefreshToken string
	Role         Role
}

func (s Session) IsZero() bool {
	return s.AccessToken == "" && s.RefreshToken == "" && (s.Role == "" || s.Role == RoleUnknown)
}

// normalize enforces the invariant that a role is only meaningful while an
// access token is present.
func (s Session) normalize() Session {
	if s.AccessToken == "" {
		s.Role = RoleUnknown
		return s
	}
	if s.Role == "" {
		s.Role = RoleUnknown
	}
	return s
}
