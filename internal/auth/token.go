package auth

import (
	"net/http"
	"strings"
)

// AccessTokenCookie is the HttpOnly cookie the API sets on login.
const AccessTokenCookie = "access_token"

// ExtractAccessToken reads the session cookie first and falls back to an
// "Authorization: Bearer" header. The scheme is matched case-insensitively.
func ExtractAccessToken(r *http.Request) string {
	if c, err := r.Cookie(AccessTokenCookie); err == nil && c.Value != "" {
		return c.Value
	}

	scheme, token, ok := strings.Cut(strings.TrimSpace(r.Header.Get("Authorization")), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
