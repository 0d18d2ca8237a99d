package session

import "github.com/dgrijalva/jwt-go"

// RoleFromToken recovers the role tag from the upstream access token when it
// happens to be a JWT carrying a "role" claim. The token is treated as
// opaque otherwise. No signature check is done here: the upstream API is the
// only party that verifies tokens, this is a display hint only.
func RoleFromToken(token string) Role {
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return RoleUnknown
	}
	role, _ := claims["role"].(string)
	return ParseRole(role)
}
