// Package session manages the "jwt" cookie mirroring the bearer token,
// so browser clients authenticate without storing the token themselves.
package session

import (
	"net/http"
	"time"
)

// CookieName is the session cookie carrying the signed token.
const CookieName = "jwt"

const cookieTTL = 7 * 24 * time.Hour

// Write sets the session cookie. Cross-site frontends need
// SameSite=None, which browsers only accept over HTTPS, so None+Secure
// is reserved for production.
func Write(w http.ResponseWriter, token string, isProd bool) {
	c := &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(cookieTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if isProd {
		c.SameSite = http.SameSiteNoneMode
		c.Secure = true
	}
	http.SetCookie(w, c)
}

// Clear expires the session cookie immediately.
func Clear(w http.ResponseWriter, isProd bool) {
	c := &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if isProd {
		c.SameSite = http.SameSiteNoneMode
		c.Secure = true
	}
	http.SetCookie(w, c)
}

// Read returns the token from the session cookie, or an empty string.
func Read(r *http.Request) string {
	c, err := r.Cookie(CookieName)
	if err != nil {
		return ""
	}
	return c.Value
}
