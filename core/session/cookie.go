package session

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Cookie names are fixed; they are the contract with the browser.
const (
	accessTokenCookie  = "access_token"
	refreshTokenCookie = "refresh_token"
	roleCookie         = "user_role"

	accessTokenMaxAge  = 24 * time.Hour
	refreshTokenMaxAge = 7 * 24 * time.Hour
)

// CookieStore is the canonical Store: three cookies on the visitor's
// browser. A Set is reflected on the response and overlays subsequent Gets
// within the same request, so readers in the same page context see writes
// immediately.
type CookieStore struct {
	ctx     echo.Context
	secure  bool
	overlay *Session // non-nil after a Set/Clear in this request
}

var _ Store = (*CookieStore)(nil)

func NewCookieStore(ctx echo.Context, secure bool) *CookieStore {
	return &CookieStore{ctx: ctx, secure: secure}
}

func (s *CookieStore) Set(sess Session) {
	sess = sess.normalize()
	s.setCookie(accessTokenCookie, sess.AccessToken, accessTokenMaxAge)
	if sess.RefreshToken != "" {
		s.setCookie(refreshTokenCookie, sess.RefreshToken, refreshTokenMaxAge)
	}
	s.setCookie(roleCookie, string(sess.Role), accessTokenMaxAge)
	s.overlay = &sess
}

func (s *CookieStore) Get() (Session, bool) {
	if s.overlay != nil {
		if s.overlay.IsZero() {
			return Session{}, false
		}
		return *s.overlay, true
	}

	sess := Session{
		AccessToken:  s.readCookie(accessTokenCookie),
		RefreshToken: s.readCookie(refreshTokenCookie),
		Role:         ParseRole(s.readCookie(roleCookie)),
	}
	if sess.AccessToken == "" {
		return Session{}, false
	}
	if sess.Role == RoleUnknown {
		// the role cookie may have been dropped; the access token itself
		// can carry the role when the upstream issues JWTs
		sess.Role = RoleFromToken(sess.AccessToken)
	}
	return sess.normalize(), true
}

func (s *CookieStore) Clear() {
	s.expireCookie(accessTokenCookie)
	s.expireCookie(refreshTokenCookie)
	s.expireCookie(roleCookie)
	s.overlay = &Session{}
}

func (s *CookieStore) readCookie(name string) string {
	c, err := s.ctx.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}

func (s *CookieStore) setCookie(name, value string, maxAge time.Duration) {
	s.ctx.SetCookie(&http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(maxAge / time.Second),
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *CookieStore) expireCookie(name string) {
	s.ctx.SetCookie(&http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
