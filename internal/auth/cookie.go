package auth

import (
	"net/http"
	"time"
)

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	Secure bool
	// Persist gives the cookie a Max-Age equal to MaxAge. Otherwise it lives
	// until the browser session ends.
	Persist bool
	MaxAge  time.Duration
}

// Set delivers token to the client. The cookie is http-only, same-site lax
// and scoped to the whole application path.
func (c CookieConfig) Set(w http.ResponseWriter, token string) {
	ck := &http.Cookie{
		Name:     c.Name,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
	}
	if c.Persist && c.MaxAge > 0 {
		ck.MaxAge = int(c.MaxAge / time.Second)
		ck.Expires = time.Now().Add(c.MaxAge)
	}
	http.SetCookie(w, ck)
}

// Clear tells the client to drop the session cookie.
func (c CookieConfig) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     c.Name,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   c.Secure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})
}

// Token reads the session token from r; "" when absent.
func (c CookieConfig) Token(r *http.Request) string {
	ck, err := r.Cookie(c.Name)
	if err != nil {
		return ""
	}
	return ck.Value
}
