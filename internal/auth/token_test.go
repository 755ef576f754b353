package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractAccessToken(t *testing.T) {
	tests := []struct {
		name   string
		cookie *http.Cookie
		header string
		want   string
	}{
		{"session cookie wins over header", &http.Cookie{Name: AccessTokenCookie, Value: "from-cookie"}, "Bearer from-header", "from-cookie"},
		{"bearer header", nil, "Bearer from-header", "from-header"},
		{"lower-case scheme", nil, "bearer from-header", "from-header"},
		{"padding is trimmed", nil, "  Bearer   from-header  ", "from-header"},
		{"empty cookie falls through", &http.Cookie{Name: AccessTokenCookie, Value: ""}, "Bearer from-header", "from-header"},
		{"other cookie ignored", &http.Cookie{Name: "session", Value: "x"}, "", ""},
		{"basic auth rejected", nil, "Basic dXNlcjpwYXNz", ""},
		{"scheme without token", nil, "Bearer", ""},
		{"nothing", nil, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
			if tt.cookie != nil {
				req.AddCookie(tt.cookie)
			}
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			assert.Equal(t, tt.want, ExtractAccessToken(req))
		})
	}
}
